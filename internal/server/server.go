// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package server

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/urfave/cli/v3"
	"github.com/walkthewalk/walkthewalk/internal/config"
	"github.com/walkthewalk/walkthewalk/internal/database"
	"github.com/walkthewalk/walkthewalk/internal/handlers"
	"github.com/walkthewalk/walkthewalk/internal/i18n"
	appmiddleware "github.com/walkthewalk/walkthewalk/internal/middleware"
	"github.com/walkthewalk/walkthewalk/internal/repository"
	"github.com/walkthewalk/walkthewalk/internal/services/auth"
	"github.com/walkthewalk/walkthewalk/internal/services/email"
	"github.com/walkthewalk/walkthewalk/internal/services/magiclink"
	"github.com/walkthewalk/walkthewalk/internal/services/nudge"
	"github.com/walkthewalk/walkthewalk/internal/services/session"
)

// Run starts the server with the given CLI command.
func Run(ctx context.Context, cmd *cli.Command) error {
	cfg := config.NewFromCLI(cmd)
	setupLogger(cfg.Log.Level, cfg.Log.Format)

	slog.Info("starting server",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"base_url", cfg.Server.BaseURL,
	)

	// Database (migrations run on open)
	db, err := database.Open(cfg.Database.DSN)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			slog.Error("failed to close database", "error", closeErr)
		}
	}()

	// i18n
	if initErr := i18n.Init(); initErr != nil {
		return fmt.Errorf("failed to init i18n: %w", initErr)
	}

	// Repository and services
	repo := repository.New(db)
	authService := auth.NewService(repo)
	linkService := magiclink.NewService(repo)

	secure := shouldUseSecureCookies(cfg)
	sessions, err := session.NewManager(&cfg.Session, secure)
	if err != nil {
		return fmt.Errorf("failed to create session manager: %w", err)
	}

	var mailer nudge.Mailer
	mailer, err = email.NewService(&cfg.SMTP)
	if err != nil {
		slog.Warn("SMTP not configured, nudges will fail until it is", "error", err)
		mailer = unconfiguredMailer{}
	}

	linkTTL := time.Duration(cfg.MagicLink.ExpiryHours) * time.Hour
	nudgeService := nudge.NewService(repo, linkService, mailer, cfg.Server.BaseURL, linkTTL)

	// Echo
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	setupMiddleware(e, cfg)

	h := handlers.New(repo, authService, sessions, linkService, nudgeService)
	setupRoutes(e, h, sessions)

	return startWithGracefulShutdown(e, cfg)
}

func setupRoutes(e *echo.Echo, h *handlers.Handlers, sessions *session.Manager) {
	e.GET("/health", h.Health)

	// Recipient surface, reachable without a session
	e.POST("/api/magic/action", h.MagicAction)
	e.GET("/magic/:token", h.MagicPage)

	e.POST("/api/auth/register", h.Register)
	e.POST("/api/auth/login", h.Login)
	e.POST("/api/auth/logout", h.Logout)

	// Owner surface
	api := e.Group("/api", appmiddleware.RequireAuth(sessions))
	api.GET("/backlogs", h.ListBacklogs)
	api.POST("/backlogs", h.CreateBacklog)
	api.GET("/backlogs/:id", h.GetBacklog)
	api.DELETE("/backlogs/:id", h.DeleteBacklog)
	api.POST("/backlogs/:id/promises", h.CreatePromise)
	api.GET("/backlogs/:id/links", h.ListBacklogLinks)
	api.PATCH("/promises/:id", h.UpdatePromise)
	api.DELETE("/promises/:id", h.DeletePromise)
	api.POST("/nudges", h.SendNudge)
	api.POST("/links/:id/revoke", h.RevokeLink)
}

// shouldUseSecureCookies reports whether session cookies should carry the
// Secure flag.
func shouldUseSecureCookies(cfg *config.Config) bool {
	return strings.HasPrefix(cfg.Server.BaseURL, "https://")
}

// unconfiguredMailer stands in when SMTP settings are absent so the rest
// of the app keeps working.
type unconfiguredMailer struct{}

func (unconfiguredMailer) Send(_ context.Context, _ email.Message) error {
	return errors.New("SMTP is not configured")
}

func startWithGracefulShutdown(e *echo.Echo, cfg *config.Config) error {
	tlsResult, err := SetupTLS(cfg)
	if err != nil {
		return fmt.Errorf("TLS setup failed: %w", err)
	}

	errChan := make(chan error, 2)

	// HTTP redirect server for ACME mode
	var httpServer *http.Server

	switch tlsResult.Mode {
	case TLSModeOff:
		addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		go func() {
			slog.Info("server running", "url", cfg.Server.BaseURL)
			if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errChan <- err
			}
		}()

	case TLSModeACME:
		go func() {
			slog.Info("server running", "url", cfg.Server.BaseURL)
			if err := startTLSServer(e, ":443", tlsResult.TLSConfig); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errChan <- err
			}
		}()

		httpServer = &http.Server{
			Addr:              ":80",
			Handler:           tlsResult.HTTPHandler,
			ReadHeaderTimeout: 10 * time.Second,
		}
		go func() {
			slog.Info("HTTP to HTTPS redirect active", "addr", ":80")
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errChan <- err
			}
		}()

	case TLSModeSelfSigned, TLSModeManual:
		addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		go func() {
			slog.Info("server running", "url", cfg.Server.BaseURL)
			if err := startTLSServer(e, addr, tlsResult.TLSConfig); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errChan <- err
			}
		}()
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
		slog.Info("shutting down server")
	case err := <-errChan:
		slog.Error("server error", "error", err)
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		slog.Error("failed to shutdown main server", "error", err)
	}
	if httpServer != nil {
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			slog.Error("failed to shutdown HTTP redirect server", "error", err)
		}
	}

	slog.Info("server stopped")
	return nil
}

// startTLSServer starts the Echo server with a custom TLS configuration.
func startTLSServer(e *echo.Echo, addr string, tlsConfig *tls.Config) error {
	lc := &net.ListenConfig{}
	ln, err := lc.Listen(context.Background(), "tcp", addr)
	if err != nil {
		return err
	}
	e.TLSListener = tls.NewListener(ln, tlsConfig)
	e.TLSServer.TLSConfig = tlsConfig
	return e.Server.Serve(e.TLSListener)
}
