// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/walkthewalk/walkthewalk/internal/middleware"
	"github.com/walkthewalk/walkthewalk/internal/services/nudge"
)

// SendNudgeRequest is the body for POST /api/nudges.
type SendNudgeRequest struct {
	BacklogID string `json:"backlogId"`
}

// SendNudgeResponse reports a delivered nudge. The magic link's plaintext
// token lives only in the email.
type SendNudgeResponse struct {
	Success     bool   `json:"success"`
	MagicLinkID string `json:"magicLinkId"`
}

// SendNudge emails the backlog's contact a recap with a fresh magic link.
func (h *Handlers) SendNudge(c echo.Context) error {
	var req SendNudgeRequest
	if err := c.Bind(&req); err != nil {
		return jsonError(c, http.StatusBadRequest, KindInvalidRequest, "invalid request body")
	}
	if req.BacklogID == "" {
		return jsonError(c, http.StatusBadRequest, KindInvalidRequest, "backlogId is required")
	}

	result, err := h.nudges.Send(c.Request().Context(), middleware.UserID(c), req.BacklogID)
	if err != nil {
		switch {
		case errors.Is(err, nudge.ErrBacklogNotFound):
			return jsonError(c, http.StatusNotFound, KindNotFound, "backlog not found")
		case errors.Is(err, nudge.ErrNoContactEmail):
			return jsonError(c, http.StatusBadRequest, KindInvalidRequest, "the backlog's contact has no email address")
		default:
			return internalError(c, "send_nudge", err)
		}
	}

	return c.JSON(http.StatusOK, SendNudgeResponse{
		Success:     true,
		MagicLinkID: result.MagicLinkID,
	})
}
