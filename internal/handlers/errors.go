// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/walkthewalk/walkthewalk/internal/repository"
	"github.com/walkthewalk/walkthewalk/internal/services/magiclink"
)

// Error kinds carried in the "error" field of JSON error bodies.
const (
	KindInvalidRequest = "invalid_request"
	KindInvalidToken   = "invalid_or_revoked_token"
	KindTokenExpired   = "token_expired"
	KindNotFound       = "not_found"
	KindForbidden      = "forbidden"
	KindNotImplemented = "not_implemented"
	KindInternalError  = "internal_error"
	KindUnauthorized   = "unauthorized"
)

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func jsonError(c echo.Context, status int, kind, message string) error {
	return c.JSON(status, ErrorBody{Error: kind, Message: message})
}

// internalError logs the underlying cause and returns an opaque 500 body.
// Raw store errors never reach the client.
func internalError(c echo.Context, op string, err error) error {
	slog.Error("internal_error", "op", op, "error", err)
	return jsonError(c, http.StatusInternalServerError, KindInternalError, "something went wrong")
}

// magicLinkError maps magic-link service sentinels to taxonomy responses.
func magicLinkError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, magiclink.ErrInvalidRequest):
		return jsonError(c, http.StatusBadRequest, KindInvalidRequest, "token, action and promiseId are required; action must be a known value")
	case errors.Is(err, magiclink.ErrInvalidToken):
		return jsonError(c, http.StatusUnauthorized, KindInvalidToken, "this link is not valid")
	case errors.Is(err, magiclink.ErrTokenExpired):
		return jsonError(c, http.StatusUnauthorized, KindTokenExpired, "this link has expired")
	case errors.Is(err, magiclink.ErrPromiseNotFound):
		return jsonError(c, http.StatusNotFound, KindNotFound, "promise not found")
	case errors.Is(err, magiclink.ErrForbidden):
		return jsonError(c, http.StatusForbidden, KindForbidden, "this link does not grant access to that promise")
	case errors.Is(err, magiclink.ErrNotImplemented):
		return jsonError(c, http.StatusNotImplemented, KindNotImplemented, "comments are not supported yet")
	default:
		return internalError(c, "magic_link_action", err)
	}
}

// notFoundOrInternal maps repository.ErrNotFound to a 404 and everything
// else to an opaque 500.
func notFoundOrInternal(c echo.Context, op string, err error, message string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return jsonError(c, http.StatusNotFound, KindNotFound, message)
	}
	return internalError(c, op, err)
}
