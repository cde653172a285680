// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/walkthewalk/walkthewalk/internal/services/auth"
)

// RegisterRequest is the body for POST /api/auth/register.
type RegisterRequest struct {
	Email    string  `json:"email"`
	Password string  `json:"password"`
	Name     *string `json:"name,omitempty"`
}

// Register creates a new owner account and opens a session for it.
func (h *Handlers) Register(c echo.Context) error {
	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		return jsonError(c, http.StatusBadRequest, KindInvalidRequest, "invalid request body")
	}

	user, err := h.auth.Register(c.Request().Context(), auth.RegisterParams{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
	})
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidEmail), errors.Is(err, auth.ErrWeakPassword):
			return jsonError(c, http.StatusBadRequest, KindInvalidRequest, err.Error())
		case errors.Is(err, auth.ErrUserExists):
			return jsonError(c, http.StatusConflict, KindInvalidRequest, "email already registered")
		default:
			return internalError(c, "register", err)
		}
	}

	if err := h.sessions.SetUser(c.Response(), user.ID); err != nil {
		return internalError(c, "register_session", err)
	}

	slog.Info("register_success", "user_id", user.ID)
	return c.JSON(http.StatusCreated, user)
}

// LoginRequest is the body for POST /api/auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login verifies credentials and opens a session.
func (h *Handlers) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return jsonError(c, http.StatusBadRequest, KindInvalidRequest, "invalid request body")
	}

	user, err := h.auth.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			return jsonError(c, http.StatusUnauthorized, KindUnauthorized, "invalid email or password")
		}
		return internalError(c, "login", err)
	}

	if err := h.sessions.SetUser(c.Response(), user.ID); err != nil {
		return internalError(c, "login_session", err)
	}

	slog.Info("login_success", "user_id", user.ID)
	return c.JSON(http.StatusOK, user)
}

// Logout clears the session cookie.
func (h *Handlers) Logout(c echo.Context) error {
	h.sessions.Clear(c.Response())
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
