// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/walkthewalk/walkthewalk/internal/middleware"
	"github.com/walkthewalk/walkthewalk/internal/models"
)

// CreatePromiseRequest is the body for POST /api/backlogs/:id/promises.
type CreatePromiseRequest struct {
	Description string  `json:"description"`
	DueDate     *string `json:"dueDate,omitempty"`
}

// CreatePromise adds an open promise to one of the session user's backlogs.
func (h *Handlers) CreatePromise(c echo.Context) error {
	var req CreatePromiseRequest
	if err := c.Bind(&req); err != nil {
		return jsonError(c, http.StatusBadRequest, KindInvalidRequest, "invalid request body")
	}
	req.Description = strings.TrimSpace(req.Description)
	if req.Description == "" {
		return jsonError(c, http.StatusBadRequest, KindInvalidRequest, "description is required")
	}

	ctx := c.Request().Context()

	backlog, err := h.repo.GetBacklogForOwner(ctx, c.Param("id"), middleware.UserID(c))
	if err != nil {
		return notFoundOrInternal(c, "get_backlog", err, "backlog not found")
	}

	promise := &models.Promise{
		BacklogID:   backlog.ID,
		Description: req.Description,
		Status:      models.PromiseStatusOpen,
	}
	if req.DueDate != nil && *req.DueDate != "" {
		due, err := parseDueDate(*req.DueDate)
		if err != nil {
			return jsonError(c, http.StatusBadRequest, KindInvalidRequest, "dueDate must be an RFC 3339 timestamp or YYYY-MM-DD")
		}
		promise.DueDate = due
	}

	if err := h.repo.CreatePromise(ctx, promise); err != nil {
		return internalError(c, "create_promise", err)
	}
	return c.JSON(http.StatusCreated, promise)
}

// UpdatePromiseRequest is the body for PATCH /api/promises/:id. Absent
// fields keep their current value.
type UpdatePromiseRequest struct {
	Description *string `json:"description,omitempty"`
	Status      *string `json:"status,omitempty"`
	DueDate     *string `json:"dueDate,omitempty"`
}

// UpdatePromise applies a partial update to a promise owned by the
// session user. Moving a promise to done stamps completed_at; moving it
// out of done clears it.
func (h *Handlers) UpdatePromise(c echo.Context) error {
	var req UpdatePromiseRequest
	if err := c.Bind(&req); err != nil {
		return jsonError(c, http.StatusBadRequest, KindInvalidRequest, "invalid request body")
	}

	ctx := c.Request().Context()

	promise, err := h.repo.GetPromiseForOwner(ctx, c.Param("id"), middleware.UserID(c))
	if err != nil {
		return notFoundOrInternal(c, "get_promise", err, "promise not found")
	}

	if req.Description != nil {
		desc := strings.TrimSpace(*req.Description)
		if desc == "" {
			return jsonError(c, http.StatusBadRequest, KindInvalidRequest, "description must not be empty")
		}
		promise.Description = desc
	}

	if req.Status != nil {
		status := models.PromiseStatus(*req.Status)
		if !models.ValidPromiseStatus(status) {
			return jsonError(c, http.StatusBadRequest, KindInvalidRequest, "status must be one of open, done, cancelled, snoozed")
		}
		if status == models.PromiseStatusDone && promise.Status != models.PromiseStatusDone {
			now := time.Now().UTC()
			promise.CompletedAt = &now
		}
		if status != models.PromiseStatusDone {
			promise.CompletedAt = nil
		}
		promise.Status = status
	}

	if req.DueDate != nil {
		if *req.DueDate == "" {
			promise.DueDate = nil
		} else {
			due, err := parseDueDate(*req.DueDate)
			if err != nil {
				return jsonError(c, http.StatusBadRequest, KindInvalidRequest, "dueDate must be an RFC 3339 timestamp or YYYY-MM-DD")
			}
			promise.DueDate = due
		}
	}

	if err := h.repo.UpdatePromise(ctx, promise); err != nil {
		return internalError(c, "update_promise", err)
	}
	return c.JSON(http.StatusOK, promise)
}

// DeletePromise removes a promise owned by the session user.
func (h *Handlers) DeletePromise(c echo.Context) error {
	ctx := c.Request().Context()

	promise, err := h.repo.GetPromiseForOwner(ctx, c.Param("id"), middleware.UserID(c))
	if err != nil {
		return notFoundOrInternal(c, "get_promise", err, "promise not found")
	}

	if err := h.repo.DeletePromise(ctx, promise.ID); err != nil {
		return internalError(c, "delete_promise", err)
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
