// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"bytes"
	"embed"
	"errors"
	"html/template"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/walkthewalk/walkthewalk/internal/i18n"
	"github.com/walkthewalk/walkthewalk/internal/models"
	"github.com/walkthewalk/walkthewalk/internal/services/magiclink"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var pageTemplates = template.Must(template.New("").ParseFS(templateFS, "templates/*.tmpl"))

// MagicActionRequest is the body for POST /api/magic/action.
type MagicActionRequest struct {
	Token     string `json:"token"`
	Action    string `json:"action"`
	PromiseID string `json:"promiseId"`
	Comment   string `json:"comment,omitempty"`
}

// MagicActionResponse is the success body for POST /api/magic/action.
type MagicActionResponse struct {
	Success   bool   `json:"success"`
	Action    string `json:"action"`
	PromiseID string `json:"promiseId"`
}

// MagicAction applies a recipient action authorized by a magic-link token.
func (h *Handlers) MagicAction(c echo.Context) error {
	var req MagicActionRequest
	if err := c.Bind(&req); err != nil {
		return jsonError(c, http.StatusBadRequest, KindInvalidRequest, "invalid request body")
	}

	result, err := h.links.Act(c.Request().Context(), magiclink.ActionRequest{
		Token:     req.Token,
		Action:    magiclink.Action(req.Action),
		PromiseID: req.PromiseID,
		Comment:   req.Comment,
	})
	if err != nil {
		return magicLinkError(c, err)
	}

	return c.JSON(http.StatusOK, MagicActionResponse{
		Success:   true,
		Action:    string(result.Action),
		PromiseID: result.PromiseID,
	})
}

type magicPagePromise struct {
	ID          string
	Description string
	Done        bool
	Due         string
}

type magicPageData struct {
	Title         string
	Greeting      string
	Promises      []magicPagePromise
	Token         string
	MarkDoneLabel string
	DoneLabel     string
}

type magicErrorData struct {
	Title string
	Body  string
}

// MagicPage renders the recipient view for a magic link: the backlog's
// promises with mark-done controls. Invalid, revoked and expired tokens
// all get the same error page.
func (h *Handlers) MagicPage(c echo.Context) error {
	ctx := c.Request().Context()

	link, err := h.links.Authenticate(ctx, c.Param("token"))
	if err != nil {
		if errors.Is(err, magiclink.ErrInvalidToken) || errors.Is(err, magiclink.ErrTokenExpired) {
			return renderPage(c, http.StatusUnauthorized, "magic_error.html.tmpl", magicErrorData{
				Title: i18n.T(ctx, "magic_error_title"),
				Body:  i18n.T(ctx, "magic_error_body"),
			})
		}
		return internalError(c, "magic_page", err)
	}

	promises, err := h.repo.ListPromisesForBacklog(ctx, link.BacklogID)
	if err != nil {
		return internalError(c, "magic_page_promises", err)
	}

	title := i18n.T(ctx, "magic_page_title")
	contactName := "there"
	if backlog, err := h.repo.GetBacklogByID(ctx, link.BacklogID); err == nil {
		if backlog.Title != nil && *backlog.Title != "" {
			title = *backlog.Title
		}
		if backlog.ContactID != nil {
			if contact, err := h.repo.GetContactByID(ctx, *backlog.ContactID); err == nil {
				contactName = contact.Name
			}
		}
	}

	data := magicPageData{
		Title:         title,
		Greeting:      i18n.TData(ctx, "magic_page_greeting", map[string]any{"Name": contactName}),
		Token:         c.Param("token"),
		MarkDoneLabel: i18n.T(ctx, "magic_page_mark_done"),
		DoneLabel:     i18n.T(ctx, "magic_page_done"),
	}
	for _, p := range promises {
		view := magicPagePromise{
			ID:          p.ID,
			Description: p.Description,
			Done:        p.Status == models.PromiseStatusDone,
		}
		if p.DueDate != nil {
			view.Due = p.DueDate.Format(time.DateOnly)
		}
		data.Promises = append(data.Promises, view)
	}

	return renderPage(c, http.StatusOK, "magic.html.tmpl", data)
}

func renderPage(c echo.Context, status int, name string, data any) error {
	var buf bytes.Buffer
	if err := pageTemplates.ExecuteTemplate(&buf, name, data); err != nil {
		return internalError(c, "render_page", err)
	}
	return c.HTML(status, buf.String())
}
