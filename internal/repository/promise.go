// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/walkthewalk/walkthewalk/internal/models"
)

// CreatePromise creates a new promise in a backlog with status open.
func (r *Repository) CreatePromise(ctx context.Context, promise *models.Promise) error {
	promise.ID = uuid.NewString()
	promise.CreatedAt = time.Now().UTC()
	if promise.Status == "" {
		promise.Status = models.PromiseStatusOpen
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO promises (id, backlog_id, description, status, due_date, created_at, completed_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		promise.ID, promise.BacklogID, promise.Description, promise.Status,
		promise.DueDate, promise.CreatedAt, promise.CompletedAt)
	return err
}

// GetPromiseByID retrieves a promise by ID.
func (r *Repository) GetPromiseByID(ctx context.Context, id string) (*models.Promise, error) {
	var promise models.Promise
	if err := r.db.GetContext(ctx, &promise, `SELECT * FROM promises WHERE id = ?`, id); err != nil {
		return nil, wrapError(err)
	}
	return &promise, nil
}

// GetPromiseForOwner retrieves a promise by ID, scoped to the owner of its
// backlog.
func (r *Repository) GetPromiseForOwner(ctx context.Context, id, ownerID string) (*models.Promise, error) {
	var promise models.Promise
	err := r.db.GetContext(ctx, &promise,
		`SELECT p.* FROM promises p
		 JOIN backlogs b ON b.id = p.backlog_id
		 WHERE p.id = ? AND b.owner_id = ?`, id, ownerID)
	if err != nil {
		return nil, wrapError(err)
	}
	return &promise, nil
}

// ListPromisesForBacklog returns all promises of a backlog, oldest first.
func (r *Repository) ListPromisesForBacklog(ctx context.Context, backlogID string) ([]models.Promise, error) {
	var promises []models.Promise
	err := r.db.SelectContext(ctx, &promises,
		`SELECT * FROM promises WHERE backlog_id = ? ORDER BY created_at ASC`, backlogID)
	if err != nil {
		return nil, err
	}
	return promises, nil
}

// UpdatePromise saves the mutable fields of a promise.
func (r *Repository) UpdatePromise(ctx context.Context, promise *models.Promise) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE promises SET description = ?, status = ?, due_date = ?, completed_at = ? WHERE id = ?`,
		promise.Description, promise.Status, promise.DueDate, promise.CompletedAt, promise.ID)
	return err
}

// MarkPromiseDone sets a promise to done and stamps its completion time.
// Idempotent: marking an already-done promise re-stamps completed_at.
func (r *Repository) MarkPromiseDone(ctx context.Context, id string, completedAt time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE promises SET status = ?, completed_at = ? WHERE id = ?`,
		models.PromiseStatusDone, completedAt, id)
	return err
}

// DeletePromise deletes a promise by ID.
func (r *Repository) DeletePromise(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM promises WHERE id = ?`, id)
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
