// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/walkthewalk/walkthewalk/internal/models"
)

// CreateBacklog creates a new backlog for an owner.
func (r *Repository) CreateBacklog(ctx context.Context, backlog *models.Backlog) error {
	backlog.ID = uuid.NewString()
	backlog.CreatedAt = time.Now().UTC()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO backlogs (id, owner_id, contact_id, title, created_at) VALUES (?, ?, ?, ?, ?)`,
		backlog.ID, backlog.OwnerID, backlog.ContactID, backlog.Title, backlog.CreatedAt)
	return err
}

// GetBacklogByID retrieves a backlog by ID regardless of owner. Used by the
// magic-link path where authorization comes from the link, not a session.
func (r *Repository) GetBacklogByID(ctx context.Context, id string) (*models.Backlog, error) {
	var backlog models.Backlog
	if err := r.db.GetContext(ctx, &backlog, `SELECT * FROM backlogs WHERE id = ?`, id); err != nil {
		return nil, wrapError(err)
	}
	return &backlog, nil
}

// GetBacklogForOwner retrieves a backlog by ID, scoped to its owner.
// Another owner's backlog is indistinguishable from a missing one.
func (r *Repository) GetBacklogForOwner(ctx context.Context, id, ownerID string) (*models.Backlog, error) {
	var backlog models.Backlog
	err := r.db.GetContext(ctx, &backlog,
		`SELECT * FROM backlogs WHERE id = ? AND owner_id = ?`, id, ownerID)
	if err != nil {
		return nil, wrapError(err)
	}
	return &backlog, nil
}

// ListBacklogsForOwner returns all backlogs of an owner with their contact
// and promise counts, newest first.
func (r *Repository) ListBacklogsForOwner(ctx context.Context, ownerID string) ([]models.BacklogWithStats, error) {
	var backlogs []models.Backlog
	err := r.db.SelectContext(ctx, &backlogs,
		`SELECT * FROM backlogs WHERE owner_id = ? ORDER BY created_at DESC`, ownerID)
	if err != nil {
		return nil, err
	}

	result := make([]models.BacklogWithStats, 0, len(backlogs))
	for i := range backlogs {
		entry := models.BacklogWithStats{Backlog: backlogs[i]}

		if backlogs[i].ContactID != nil {
			contact, err := r.GetContactByID(ctx, *backlogs[i].ContactID)
			if err == nil {
				entry.Contact = contact
			}
		}

		stats, err := r.backlogStats(ctx, backlogs[i].ID)
		if err != nil {
			return nil, err
		}
		entry.Stats = stats

		result = append(result, entry)
	}
	return result, nil
}

func (r *Repository) backlogStats(ctx context.Context, backlogID string) (models.BacklogStats, error) {
	rows := []struct {
		Status models.PromiseStatus `db:"status"`
		Count  int                  `db:"count"`
	}{}
	err := r.db.SelectContext(ctx, &rows,
		`SELECT status, COUNT(*) AS count FROM promises WHERE backlog_id = ? GROUP BY status`, backlogID)
	if err != nil {
		return models.BacklogStats{}, err
	}

	var stats models.BacklogStats
	for _, row := range rows {
		stats.Total += row.Count
		switch row.Status {
		case models.PromiseStatusOpen:
			stats.Open += row.Count
		case models.PromiseStatusDone:
			stats.Done += row.Count
		}
	}
	return stats, nil
}

// DeleteBacklogForOwner deletes a backlog and (via foreign keys) its
// promises and magic links. Returns ErrNotFound if the backlog does not
// exist or belongs to another owner.
func (r *Repository) DeleteBacklogForOwner(ctx context.Context, id, ownerID string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM backlogs WHERE id = ? AND owner_id = ?`, id, ownerID)
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
