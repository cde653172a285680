// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/walkthewalk/walkthewalk/internal/repository"
	"github.com/walkthewalk/walkthewalk/internal/services/auth"
	"github.com/walkthewalk/walkthewalk/internal/services/magiclink"
	"github.com/walkthewalk/walkthewalk/internal/services/nudge"
	"github.com/walkthewalk/walkthewalk/internal/services/session"
)

// Handlers contains all HTTP handlers.
type Handlers struct {
	repo     *repository.Repository
	auth     *auth.Service
	sessions *session.Manager
	links    *magiclink.Service
	nudges   *nudge.Service
}

// New creates a new Handlers instance.
func New(repo *repository.Repository, authSvc *auth.Service, sessions *session.Manager, links *magiclink.Service, nudges *nudge.Service) *Handlers {
	return &Handlers{
		repo:     repo,
		auth:     authSvc,
		sessions: sessions,
		links:    links,
		nudges:   nudges,
	}
}

// Health returns the health status.
func (h *Handlers) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
	})
}
