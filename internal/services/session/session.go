// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package session implements signed cookie sessions for owner logins.
package session

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gorilla/securecookie"
	"github.com/walkthewalk/walkthewalk/internal/config"
)

const userIDKey = "user_id"

// Manager encodes and decodes the session cookie. Sessions carry only the
// user ID; the user record is loaded fresh per request.
type Manager struct {
	sc         *securecookie.SecureCookie
	cookieName string
	maxAge     int
	secure     bool
}

// NewManager creates a session manager from configuration. An empty hash
// key generates an ephemeral one, which invalidates sessions on restart
// and is only acceptable for development.
func NewManager(cfg *config.SessionConfig, secure bool) (*Manager, error) {
	hashKey, err := keyFromHex(cfg.HashKey)
	if err != nil {
		return nil, fmt.Errorf("invalid session hash key: %w", err)
	}
	if hashKey == nil {
		hashKey = securecookie.GenerateRandomKey(32)
		slog.Warn("session hash key not configured, using ephemeral key")
	}

	var blockKey []byte
	if cfg.BlockKey != "" {
		blockKey, err = keyFromHex(cfg.BlockKey)
		if err != nil {
			return nil, fmt.Errorf("invalid session block key: %w", err)
		}
	}

	sc := securecookie.New(hashKey, blockKey)
	sc.MaxAge(cfg.MaxAge)

	return &Manager{
		sc:         sc,
		cookieName: cfg.CookieName,
		maxAge:     cfg.MaxAge,
		secure:     secure,
	}, nil
}

func keyFromHex(s string) ([]byte, error) {
	if s == "" {
		return nil, nil
	}
	key, err := hex.DecodeString(s)
	if err != nil {
		return nil, err
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("expected 32 bytes, got %d", len(key))
	}
	return key, nil
}

// SetUser writes a signed session cookie for the given user.
func (m *Manager) SetUser(w http.ResponseWriter, userID string) error {
	encoded, err := m.sc.Encode(m.cookieName, map[string]string{userIDKey: userID})
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     m.cookieName,
		Value:    encoded,
		Path:     "/",
		MaxAge:   m.maxAge,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Clear expires the session cookie.
func (m *Manager) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     m.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// UserID extracts the authenticated user ID from the request's session
// cookie. A missing or tampered cookie yields ok == false.
func (m *Manager) UserID(r *http.Request) (string, bool) {
	cookie, err := r.Cookie(m.cookieName)
	if err != nil {
		return "", false
	}

	values := map[string]string{}
	if err := m.sc.Decode(m.cookieName, cookie.Value, &values); err != nil {
		return "", false
	}

	id, ok := values[userIDKey]
	return id, ok && id != ""
}

// GenerateKey returns a fresh 32-byte key as hex, for provisioning config.
func GenerateKey() (string, error) {
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		return "", err
	}
	return hex.EncodeToString(key), nil
}
