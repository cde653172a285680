// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package server

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"fmt"
	"log/slog"
	"math/big"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/walkthewalk/walkthewalk/internal/config"
	"golang.org/x/crypto/acme/autocert"
)

// TLSMode is the resolved TLS mode.
type TLSMode string

const (
	TLSModeOff        TLSMode = "off"
	TLSModeACME       TLSMode = "acme"
	TLSModeSelfSigned TLSMode = "selfsigned"
	TLSModeManual     TLSMode = "manual"
)

// TLSResult carries everything the server loop needs to listen.
type TLSResult struct {
	TLSConfig   *tls.Config
	HTTPHandler http.Handler // ACME HTTP-01 challenge + redirect, ACME mode only
	Mode        TLSMode
}

// SetupTLS resolves the configured TLS mode and builds its tls.Config.
func SetupTLS(cfg *config.Config) (*TLSResult, error) {
	switch mode := resolveTLSMode(cfg); mode {
	case TLSModeOff:
		slog.Info("tls_mode", "mode", "off")
		return &TLSResult{Mode: TLSModeOff}, nil
	case TLSModeACME:
		return setupACME(cfg)
	case TLSModeSelfSigned:
		return setupSelfSigned(cfg)
	case TLSModeManual:
		return setupManual(cfg)
	default:
		return nil, fmt.Errorf("unknown TLS mode: %s", mode)
	}
}

func resolveTLSMode(cfg *config.Config) TLSMode {
	switch strings.ToLower(cfg.TLS.Mode) {
	case "off":
		return TLSModeOff
	case "acme":
		return TLSModeACME
	case "selfsigned":
		return TLSModeSelfSigned
	case "manual":
		return TLSModeManual
	}

	// Auto-detection.
	if config.IsLocalhost(cfg.Server.Host) {
		return TLSModeOff
	}
	if cfg.TLS.CertFile != "" && cfg.TLS.KeyFile != "" {
		return TLSModeManual
	}
	if canUseACME(cfg) {
		return TLSModeACME
	}
	return TLSModeSelfSigned
}

// canUseACME reports whether auto-detection may pick ACME: a real DNS name,
// an account email, and ports 80/443 free for the HTTP-01 challenge.
func canUseACME(cfg *config.Config) bool {
	if config.IsLocalhost(cfg.Server.Host) || net.ParseIP(cfg.Server.Host) != nil {
		return false
	}
	if cfg.TLS.Email == "" {
		return false
	}
	return portFree(80) && portFree(443)
}

func portFree(port int) bool {
	lc := &net.ListenConfig{}
	ln, err := lc.Listen(context.Background(), "tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		return false
	}
	_ = ln.Close()
	return true
}

func setupACME(cfg *config.Config) (*TLSResult, error) {
	if cfg.TLS.Email == "" {
		return nil, fmt.Errorf("ACME mode requires tls-email to be set")
	}
	if !portFree(80) || !portFree(443) {
		return nil, fmt.Errorf("ACME mode requires ports 80 and 443")
	}

	certDir := filepath.Join(cfg.TLS.CertDir, "acme")
	if err := os.MkdirAll(certDir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create ACME cert directory: %w", err)
	}

	manager := &autocert.Manager{
		Prompt:     autocert.AcceptTOS,
		Email:      cfg.TLS.Email,
		Cache:      autocert.DirCache(certDir),
		HostPolicy: autocert.HostWhitelist(cfg.Server.Host),
	}

	tlsConfig := manager.TLSConfig()
	tlsConfig.MinVersion = tls.VersionTLS12

	slog.Info("tls_mode", "mode", "acme", "host", cfg.Server.Host, "email", cfg.TLS.Email)

	return &TLSResult{
		Mode:        TLSModeACME,
		TLSConfig:   tlsConfig,
		HTTPHandler: manager.HTTPHandler(nil),
	}, nil
}

func setupManual(cfg *config.Config) (*TLSResult, error) {
	if cfg.TLS.CertFile == "" || cfg.TLS.KeyFile == "" {
		return nil, fmt.Errorf("manual TLS mode requires both tls-cert-file and tls-key-file")
	}

	cert, err := tls.LoadX509KeyPair(cfg.TLS.CertFile, cfg.TLS.KeyFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load certificate: %w", err)
	}

	slog.Info("tls_mode", "mode", "manual", "cert", cfg.TLS.CertFile)

	return &TLSResult{Mode: TLSModeManual, TLSConfig: certConfig(&cert)}, nil
}

// setupSelfSigned loads a cached self-signed certificate or generates a
// fresh one when missing or close to expiry.
func setupSelfSigned(cfg *config.Config) (*TLSResult, error) {
	certDir := filepath.Join(cfg.TLS.CertDir, "selfsigned")
	if err := os.MkdirAll(certDir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create cert directory: %w", err)
	}

	certFile := filepath.Join(certDir, "cert.pem")
	keyFile := filepath.Join(certDir, "key.pem")

	if cert, err := tls.LoadX509KeyPair(certFile, keyFile); err == nil && !expiringSoon(&cert) {
		slog.Info("tls_mode", "mode", "selfsigned", "cert", certFile)
		return &TLSResult{Mode: TLSModeSelfSigned, TLSConfig: certConfig(&cert)}, nil
	}

	slog.Info("generating self-signed certificate", "host", cfg.Server.Host)
	cert, err := generateSelfSigned(cfg.Server.Host, certFile, keyFile)
	if err != nil {
		return nil, err
	}
	slog.Warn("accept the self-signed certificate in your browser on first visit")

	return &TLSResult{Mode: TLSModeSelfSigned, TLSConfig: certConfig(cert)}, nil
}

func generateSelfSigned(host, certFile, keyFile string) (*tls.Certificate, error) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("failed to generate private key: %w", err)
	}

	serial, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 128))
	if err != nil {
		return nil, fmt.Errorf("failed to generate serial number: %w", err)
	}

	now := time.Now()
	template := x509.Certificate{
		SerialNumber:          serial,
		Subject:               pkix.Name{CommonName: host},
		NotBefore:             now,
		NotAfter:              now.Add(365 * 24 * time.Hour),
		KeyUsage:              x509.KeyUsageKeyEncipherment | x509.KeyUsageDigitalSignature,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		BasicConstraintsValid: true,
		DNSNames:              []string{"localhost"},
		IPAddresses:           []net.IP{net.ParseIP("127.0.0.1"), net.ParseIP("::1")},
	}
	if ip := net.ParseIP(host); ip != nil {
		template.IPAddresses = append(template.IPAddresses, ip)
	} else {
		template.DNSNames = append(template.DNSNames, host)
	}

	der, err := x509.CreateCertificate(rand.Reader, &template, &template, &key.PublicKey, key)
	if err != nil {
		return nil, fmt.Errorf("failed to create certificate: %w", err)
	}

	certPEM := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der})
	if err := os.WriteFile(certFile, certPEM, 0o600); err != nil {
		return nil, fmt.Errorf("failed to write cert file: %w", err)
	}

	keyDER, err := x509.MarshalECPrivateKey(key)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal private key: %w", err)
	}
	keyPEM := pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: keyDER})
	if err := os.WriteFile(keyFile, keyPEM, 0o600); err != nil {
		return nil, fmt.Errorf("failed to write key file: %w", err)
	}

	cert, err := tls.LoadX509KeyPair(certFile, keyFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load generated cert: %w", err)
	}
	return &cert, nil
}

func expiringSoon(cert *tls.Certificate) bool {
	if len(cert.Certificate) == 0 {
		return true
	}
	leaf, err := x509.ParseCertificate(cert.Certificate[0])
	if err != nil {
		return true
	}
	return time.Until(leaf.NotAfter) < 30*24*time.Hour
}

func certConfig(cert *tls.Certificate) *tls.Config {
	return &tls.Config{
		Certificates: []tls.Certificate{*cert},
		MinVersion:   tls.VersionTLS12,
	}
}
