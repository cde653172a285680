// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package session_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walkthewalk/walkthewalk/internal/config"
	"github.com/walkthewalk/walkthewalk/internal/services/session"
)

func testConfig(t *testing.T) *config.SessionConfig {
	t.Helper()
	hashKey, err := session.GenerateKey()
	require.NoError(t, err)
	return &config.SessionConfig{
		CookieName: "_session",
		MaxAge:     3600,
		HashKey:    hashKey,
	}
}

func TestSetUserAndUserID(t *testing.T) {
	m, err := session.NewManager(testConfig(t), false)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	require.NoError(t, m.SetUser(rec, "user-123"))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.True(t, cookies[0].HttpOnly)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookies[0])

	id, ok := m.UserID(req)
	require.True(t, ok)
	assert.Equal(t, "user-123", id)
}

func TestUserID_NoCookie(t *testing.T) {
	m, err := session.NewManager(testConfig(t), false)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)

	_, ok := m.UserID(req)
	assert.False(t, ok)
}

func TestUserID_TamperedCookie(t *testing.T) {
	m, err := session.NewManager(testConfig(t), false)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "_session", Value: "forged-value"})

	_, ok := m.UserID(req)
	assert.False(t, ok)
}

func TestUserID_DifferentKeyRejected(t *testing.T) {
	cfg := testConfig(t)
	first, err := session.NewManager(cfg, false)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	require.NoError(t, first.SetUser(rec, "user-123"))

	second, err := session.NewManager(testConfig(t), false)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(rec.Result().Cookies()[0])

	_, ok := second.UserID(req)
	assert.False(t, ok)
}

func TestClear(t *testing.T) {
	m, err := session.NewManager(testConfig(t), false)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	m.Clear(rec)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Negative(t, cookies[0].MaxAge)
}

func TestNewManager_InvalidHashKey(t *testing.T) {
	_, err := session.NewManager(&config.SessionConfig{
		CookieName: "_session",
		HashKey:    "not-hex",
	}, false)

	assert.Error(t, err)
}
