// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/walkthewalk/walkthewalk/internal/models"
)

// CreateMagicLink persists a new magic link. Only the token hash is stored;
// the plaintext token never reaches this layer.
func (r *Repository) CreateMagicLink(ctx context.Context, link *models.MagicLink) error {
	link.ID = uuid.NewString()
	link.CreatedAt = time.Now().UTC()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO magic_links (id, backlog_id, token_hash, created_at, expires_at, revoked, last_used_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		link.ID, link.BacklogID, link.TokenHash, link.CreatedAt,
		link.ExpiresAt, link.Revoked, link.LastUsedAt)
	return err
}

// ListActiveMagicLinks returns all non-revoked links. Revoked links are
// excluded here so that a presented revoked token is indistinguishable from
// one that never existed. There is no lookup by hash: the verifier scans
// these candidates with a constant-time comparison.
func (r *Repository) ListActiveMagicLinks(ctx context.Context) ([]models.MagicLink, error) {
	var links []models.MagicLink
	err := r.db.SelectContext(ctx, &links,
		`SELECT * FROM magic_links WHERE revoked = 0 ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	return links, nil
}

// ListMagicLinksForBacklog returns all links of a backlog, newest first,
// including revoked and expired ones for the owner-facing listing.
func (r *Repository) ListMagicLinksForBacklog(ctx context.Context, backlogID string) ([]models.MagicLink, error) {
	var links []models.MagicLink
	err := r.db.SelectContext(ctx, &links,
		`SELECT * FROM magic_links WHERE backlog_id = ? ORDER BY created_at DESC`, backlogID)
	if err != nil {
		return nil, err
	}
	return links, nil
}

// TouchMagicLink stamps a link's last_used_at after a successful action.
func (r *Repository) TouchMagicLink(ctx context.Context, id string, usedAt time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE magic_links SET last_used_at = ? WHERE id = ?`, usedAt, id)
	return err
}

// RevokeMagicLinkForOwner permanently revokes a link, scoped to the owner
// of its backlog. Returns ErrNotFound if no such link exists for the owner.
// Revocation is terminal; there is no way back to active.
func (r *Repository) RevokeMagicLinkForOwner(ctx context.Context, id, ownerID string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE magic_links SET revoked = 1
		 WHERE id = ? AND backlog_id IN (SELECT id FROM backlogs WHERE owner_id = ?)`,
		id, ownerID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteExpiredMagicLinks removes links whose expiry has passed. Expired
// links are invalid either way; this is housekeeping for the linear scan.
func (r *Repository) DeleteExpiredMagicLinks(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM magic_links WHERE expires_at IS NOT NULL AND expires_at < ?`, time.Now().UTC())
	return err
}
