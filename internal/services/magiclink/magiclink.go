// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package magiclink implements the magic-link capability lifecycle:
// issuance of token-backed links bound to a backlog, bearer verification
// of presented tokens, and the recipient action flow.
package magiclink

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/walkthewalk/walkthewalk/internal/models"
	"github.com/walkthewalk/walkthewalk/internal/repository"
	"github.com/walkthewalk/walkthewalk/internal/token"
)

var (
	// ErrInvalidRequest is returned when required fields are missing or the
	// action is not a known value.
	ErrInvalidRequest = errors.New("missing or invalid request fields")
	// ErrInvalidToken is returned when no active link matches the presented
	// token. Revoked links are excluded from the candidate set, so a revoked
	// token is indistinguishable from one that never existed.
	ErrInvalidToken = errors.New("invalid or revoked token")
	// ErrTokenExpired is returned when the token hash matched a link whose
	// expiry has passed.
	ErrTokenExpired = errors.New("token has expired")
	// ErrPromiseNotFound is returned when the referenced promise does not exist.
	ErrPromiseNotFound = errors.New("promise not found")
	// ErrForbidden is returned when the promise exists but belongs to a
	// different backlog than the link's.
	ErrForbidden = errors.New("promise does not belong to this backlog")
	// ErrNotImplemented is returned for recognized actions the data model
	// does not support yet.
	ErrNotImplemented = errors.New("comments are not yet implemented")
)

// Action is a recipient-side mutation requested through a magic link.
type Action string

const (
	ActionMarkDone Action = "mark_done"
	ActionComment  Action = "comment"
)

// ValidAction reports whether a is a known action value.
func ValidAction(a Action) bool {
	return a == ActionMarkDone || a == ActionComment
}

// Service issues and verifies magic links. All state lives in the store;
// the service itself is stateless and safe for concurrent use.
type Service struct {
	repo *repository.Repository
}

// NewService creates a new magic link service.
func NewService(repo *repository.Repository) *Service {
	return &Service{repo: repo}
}

// IssuedLink is the result of minting a new magic link. Token is the
// plaintext secret, returned exactly once for embedding in the outbound
// email; it is never persisted.
type IssuedLink struct {
	ID        string
	BacklogID string
	Token     string
	ExpiresAt *time.Time
}

// Issue mints a fresh link for a backlog. Ownership of the backlog must
// already be verified by the caller. A zero ttl means the link never
// expires. Every nudge mints a new link; outstanding links for the same
// backlog stay independently valid.
func (s *Service) Issue(ctx context.Context, backlogID string, ttl time.Duration) (*IssuedLink, error) {
	// Opportunistic housekeeping: expired links are dead weight in the
	// verification scan, so each issuance purges them. Best-effort only.
	if err := s.repo.DeleteExpiredMagicLinks(ctx); err != nil {
		slog.Warn("magic_link_purge_failed", "error", err)
	}

	pair, err := token.GeneratePair()
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	link := &models.MagicLink{
		BacklogID: backlogID,
		TokenHash: pair.Hash,
	}
	if ttl > 0 {
		expiresAt := time.Now().UTC().Add(ttl)
		link.ExpiresAt = &expiresAt
	}

	if err := s.repo.CreateMagicLink(ctx, link); err != nil {
		return nil, fmt.Errorf("failed to create magic link: %w", err)
	}

	slog.Info("magic_link_issued", "link_id", link.ID, "backlog_id", backlogID)

	return &IssuedLink{
		ID:        link.ID,
		BacklogID: backlogID,
		Token:     pair.Token,
		ExpiresAt: link.ExpiresAt,
	}, nil
}

// Authenticate locates the link matching a presented plaintext token.
//
// The store cannot be queried by hash without treating the hash as a lookup
// key, so all non-revoked links are scanned and each candidate is checked
// with a constant-time comparison; first match wins. Expiry is checked only
// after a hash match so that a matching-but-expired token reports
// ErrTokenExpired rather than blending into the no-match case.
func (s *Service) Authenticate(ctx context.Context, plaintext string) (*models.MagicLink, error) {
	if plaintext == "" {
		return nil, ErrInvalidToken
	}

	links, err := s.repo.ListActiveMagicLinks(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load magic links: %w", err)
	}

	for i := range links {
		if !token.Verify(plaintext, links[i].TokenHash) {
			continue
		}
		if links[i].Expired(time.Now()) {
			return nil, ErrTokenExpired
		}
		return &links[i], nil
	}

	return nil, ErrInvalidToken
}

// ActionRequest is a recipient's mutation request authenticated by a
// bearer token.
type ActionRequest struct {
	Token     string `json:"token"`
	Action    Action `json:"action"`
	PromiseID string `json:"promiseId"`
	Comment   string `json:"comment,omitempty"`
}

// ActionResult reports a successfully applied action. The token is never
// echoed back.
type ActionResult struct {
	Action    Action `json:"action"`
	PromiseID string `json:"promiseId"`
}

// Act authenticates the request's token and applies the requested mutation
// to a promise inside the link's backlog.
func (s *Service) Act(ctx context.Context, req ActionRequest) (*ActionResult, error) {
	if req.Token == "" || req.PromiseID == "" || !ValidAction(req.Action) {
		return nil, ErrInvalidRequest
	}

	link, err := s.Authenticate(ctx, req.Token)
	if err != nil {
		return nil, err
	}

	promise, err := s.repo.GetPromiseByID(ctx, req.PromiseID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPromiseNotFound
		}
		return nil, fmt.Errorf("failed to load promise: %w", err)
	}

	// The link is a capability for exactly one backlog.
	if promise.BacklogID != link.BacklogID {
		slog.Warn("magic_action_forbidden",
			"link_id", link.ID,
			"promise_id", promise.ID,
		)
		return nil, ErrForbidden
	}

	switch req.Action {
	case ActionMarkDone:
		if err := s.repo.MarkPromiseDone(ctx, promise.ID, time.Now().UTC()); err != nil {
			return nil, fmt.Errorf("failed to mark promise done: %w", err)
		}
	case ActionComment:
		return nil, ErrNotImplemented
	}

	// Best-effort audit stamp; a failure here must not undo the action.
	if err := s.repo.TouchMagicLink(ctx, link.ID, time.Now().UTC()); err != nil {
		slog.Warn("magic_link_touch_failed", "link_id", link.ID, "error", err)
	}

	slog.Info("magic_action_applied",
		"link_id", link.ID,
		"action", req.Action,
		"promise_id", promise.ID,
	)

	return &ActionResult{Action: req.Action, PromiseID: promise.ID}, nil
}

// Revoke permanently invalidates a link, scoped to the backlog owner.
func (s *Service) Revoke(ctx context.Context, linkID, ownerID string) error {
	if err := s.repo.RevokeMagicLinkForOwner(ctx, linkID, ownerID); err != nil {
		return err
	}
	slog.Info("magic_link_revoked", "link_id", linkID)
	return nil
}
