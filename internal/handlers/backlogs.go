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

// CreateBacklogRequest is the body for POST /api/backlogs. Each backlog
// gets its own contact record, mirroring the one-backlog-per-recipient
// relationship.
type CreateBacklogRequest struct {
	ContactName  string  `json:"contactName"`
	ContactEmail *string `json:"contactEmail,omitempty"`
	Title        *string `json:"title,omitempty"`
}

// CreateBacklog creates a contact and a backlog owned by the session user.
func (h *Handlers) CreateBacklog(c echo.Context) error {
	var req CreateBacklogRequest
	if err := c.Bind(&req); err != nil {
		return jsonError(c, http.StatusBadRequest, KindInvalidRequest, "invalid request body")
	}
	req.ContactName = strings.TrimSpace(req.ContactName)
	if req.ContactName == "" {
		return jsonError(c, http.StatusBadRequest, KindInvalidRequest, "contactName is required")
	}

	ctx := c.Request().Context()
	ownerID := middleware.UserID(c)

	contact := &models.Contact{
		UserID: ownerID,
		Name:   req.ContactName,
		Email:  req.ContactEmail,
	}
	if err := h.repo.CreateContact(ctx, contact); err != nil {
		return internalError(c, "create_contact", err)
	}

	backlog := &models.Backlog{
		OwnerID:   ownerID,
		ContactID: &contact.ID,
		Title:     req.Title,
	}
	if err := h.repo.CreateBacklog(ctx, backlog); err != nil {
		return internalError(c, "create_backlog", err)
	}

	return c.JSON(http.StatusCreated, models.BacklogWithStats{
		Backlog: *backlog,
		Contact: contact,
	})
}

// ListBacklogs returns the session user's backlogs with contact and
// promise counts.
func (h *Handlers) ListBacklogs(c echo.Context) error {
	backlogs, err := h.repo.ListBacklogsForOwner(c.Request().Context(), middleware.UserID(c))
	if err != nil {
		return internalError(c, "list_backlogs", err)
	}
	return c.JSON(http.StatusOK, backlogs)
}

// BacklogDetail is the response for GET /api/backlogs/:id.
type BacklogDetail struct {
	models.Backlog
	Contact  *models.Contact  `json:"contact,omitempty"`
	Promises []models.Promise `json:"promises"`
}

// GetBacklog returns one backlog with its contact and promises.
func (h *Handlers) GetBacklog(c echo.Context) error {
	ctx := c.Request().Context()

	backlog, err := h.repo.GetBacklogForOwner(ctx, c.Param("id"), middleware.UserID(c))
	if err != nil {
		return notFoundOrInternal(c, "get_backlog", err, "backlog not found")
	}

	detail := BacklogDetail{Backlog: *backlog}

	if backlog.ContactID != nil {
		contact, err := h.repo.GetContactByID(ctx, *backlog.ContactID)
		if err == nil {
			detail.Contact = contact
		}
	}

	promises, err := h.repo.ListPromisesForBacklog(ctx, backlog.ID)
	if err != nil {
		return internalError(c, "list_promises", err)
	}
	detail.Promises = promises

	return c.JSON(http.StatusOK, detail)
}

// DeleteBacklog removes a backlog owned by the session user. Promises and
// magic links cascade in the schema.
func (h *Handlers) DeleteBacklog(c echo.Context) error {
	err := h.repo.DeleteBacklogForOwner(c.Request().Context(), c.Param("id"), middleware.UserID(c))
	if err != nil {
		return notFoundOrInternal(c, "delete_backlog", err, "backlog not found")
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// ListBacklogLinks returns every magic link issued for a backlog,
// including revoked and expired ones. Token hashes stay server-side.
func (h *Handlers) ListBacklogLinks(c echo.Context) error {
	ctx := c.Request().Context()

	backlog, err := h.repo.GetBacklogForOwner(ctx, c.Param("id"), middleware.UserID(c))
	if err != nil {
		return notFoundOrInternal(c, "get_backlog", err, "backlog not found")
	}

	links, err := h.repo.ListMagicLinksForBacklog(ctx, backlog.ID)
	if err != nil {
		return internalError(c, "list_links", err)
	}
	return c.JSON(http.StatusOK, links)
}

// RevokeLink revokes a magic link that belongs to one of the session
// user's backlogs.
func (h *Handlers) RevokeLink(c echo.Context) error {
	err := h.links.Revoke(c.Request().Context(), c.Param("id"), middleware.UserID(c))
	if err != nil {
		return notFoundOrInternal(c, "revoke_link", err, "magic link not found")
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// parseDueDate accepts RFC 3339 timestamps or plain dates.
func parseDueDate(s string) (*time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return &t, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
