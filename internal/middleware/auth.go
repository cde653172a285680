// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/walkthewalk/walkthewalk/internal/services/session"
)

// userIDContextKey is the echo context key holding the authenticated user ID.
const userIDContextKey = "user_id"

// RequireAuth rejects requests without a valid session cookie and stores
// the session's user ID in the echo context for downstream handlers.
func RequireAuth(sessions *session.Manager) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			userID, ok := sessions.UserID(c.Request())
			if !ok {
				return c.JSON(http.StatusUnauthorized, map[string]string{
					"error":   "unauthorized",
					"message": "authentication required",
				})
			}
			c.Set(userIDContextKey, userID)
			return next(c)
		}
	}
}

// UserID returns the authenticated user ID stored by RequireAuth, or ""
// when the request is unauthenticated.
func UserID(c echo.Context) string {
	id, _ := c.Get(userIDContextKey).(string)
	return id
}
