// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package nudge composes and sends recap emails carrying magic links.
package nudge

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	html "html/template"
	"log/slog"
	"strings"
	text "text/template"
	"time"

	"github.com/walkthewalk/walkthewalk/internal/i18n"
	"github.com/walkthewalk/walkthewalk/internal/models"
	"github.com/walkthewalk/walkthewalk/internal/repository"
	"github.com/walkthewalk/walkthewalk/internal/services/email"
	"github.com/walkthewalk/walkthewalk/internal/services/magiclink"
)

var (
	// ErrBacklogNotFound is returned when the backlog does not exist or
	// belongs to another owner.
	ErrBacklogNotFound = errors.New("backlog not found")
	// ErrNoContactEmail is returned when the backlog's contact has no email
	// address to deliver to.
	ErrNoContactEmail = errors.New("contact has no email address")
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var (
	htmlTmpl = html.Must(html.New("nudge.html.tmpl").ParseFS(templateFS, "templates/nudge.html.tmpl"))
	textTmpl = text.Must(text.New("nudge.txt.tmpl").ParseFS(templateFS, "templates/nudge.txt.tmpl"))
)

// Mailer dispatches a composed message. Satisfied by email.Service.
type Mailer interface {
	Send(ctx context.Context, message email.Message) error
}

// Service sends nudges: it verifies ownership, mints a fresh magic link
// for the backlog and emails the contact a recap with the link embedded.
type Service struct {
	repo    *repository.Repository
	links   *magiclink.Service
	mailer  Mailer
	baseURL string
	linkTTL time.Duration
}

// NewService creates a nudge service. A zero linkTTL issues links without
// expiry.
func NewService(repo *repository.Repository, links *magiclink.Service, mailer Mailer, baseURL string, linkTTL time.Duration) *Service {
	return &Service{
		repo:    repo,
		links:   links,
		mailer:  mailer,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		linkTTL: linkTTL,
	}
}

// Result reports a sent nudge. The plaintext token is not part of the
// result; it lives only in the delivered email.
type Result struct {
	MagicLinkID string `json:"magicLinkId"`
}

// Send delivers a recap email for a backlog to its contact.
func (s *Service) Send(ctx context.Context, ownerID, backlogID string) (*Result, error) {
	backlog, err := s.repo.GetBacklogForOwner(ctx, backlogID, ownerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrBacklogNotFound
		}
		return nil, fmt.Errorf("failed to load backlog: %w", err)
	}

	if backlog.ContactID == nil {
		return nil, ErrNoContactEmail
	}
	contact, err := s.repo.GetContactByID(ctx, *backlog.ContactID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNoContactEmail
		}
		return nil, fmt.Errorf("failed to load contact: %w", err)
	}
	if !contact.HasEmail() {
		return nil, ErrNoContactEmail
	}

	promises, err := s.repo.ListPromisesForBacklog(ctx, backlogID)
	if err != nil {
		return nil, fmt.Errorf("failed to load promises: %w", err)
	}

	owner, err := s.repo.GetUserByID(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load owner: %w", err)
	}

	// Every nudge mints a fresh link; outstanding links stay valid.
	issued, err := s.links.Issue(ctx, backlogID, s.linkTTL)
	if err != nil {
		return nil, err
	}

	message, err := s.compose(ctx, owner, contact, backlog, promises, issued.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to compose nudge email: %w", err)
	}

	if err := s.mailer.Send(ctx, message); err != nil {
		return nil, fmt.Errorf("failed to send nudge email: %w", err)
	}

	slog.Info("nudge_sent",
		"backlog_id", backlogID,
		"magic_link_id", issued.ID,
		"contact_id", contact.ID,
	)

	return &Result{MagicLinkID: issued.ID}, nil
}

type promiseView struct {
	Description string
	Due         string
}

type emailData struct {
	Greeting    string
	Intro       string
	OpenHeading string
	NoOpen      string
	CTA         string
	Footer      string
	MagicURL    string
	Promises    []promiseView
}

// compose renders the HTML and text bodies. The plaintext token is placed
// verbatim in the URL path; its alphabet needs no percent-encoding.
func (s *Service) compose(ctx context.Context, owner *models.User, contact *models.Contact, backlog *models.Backlog, promises []models.Promise, plaintext string) (email.Message, error) {
	magicURL := fmt.Sprintf("%s/magic/%s", s.baseURL, plaintext)

	title := i18n.T(ctx, "nudge_default_title")
	if backlog.Title != nil && *backlog.Title != "" {
		title = strings.ToLower(*backlog.Title)
	}

	var open []promiseView
	for i := range promises {
		if promises[i].Status != models.PromiseStatusOpen {
			continue
		}
		view := promiseView{Description: promises[i].Description}
		if promises[i].DueDate != nil {
			view.Due = i18n.TData(ctx, "nudge_due", map[string]any{
				"Date": promises[i].DueDate.Format("Mon, Jan 2 2006"),
			})
		}
		open = append(open, view)
	}

	data := emailData{
		Greeting:    i18n.TData(ctx, "nudge_greeting", map[string]any{"RecipientName": contact.Name}),
		Intro:       i18n.TData(ctx, "nudge_intro", map[string]any{"OwnerName": owner.DisplayName(), "Title": title}),
		OpenHeading: i18n.TData(ctx, "nudge_open_promises", map[string]any{"Count": len(open)}),
		NoOpen:      i18n.T(ctx, "nudge_no_open_promises"),
		CTA:         i18n.T(ctx, "nudge_cta"),
		Footer:      i18n.T(ctx, "nudge_footer"),
		MagicURL:    magicURL,
		Promises:    open,
	}

	var htmlBuf, textBuf bytes.Buffer
	if err := htmlTmpl.Execute(&htmlBuf, data); err != nil {
		return email.Message{}, err
	}
	if err := textTmpl.Execute(&textBuf, data); err != nil {
		return email.Message{}, err
	}

	return email.Message{
		To:       *contact.Email,
		Subject:  i18n.TData(ctx, "nudge_subject", map[string]any{"OwnerName": owner.DisplayName()}),
		TextBody: textBuf.String(),
		HTMLBody: htmlBuf.String(),
	}, nil
}
