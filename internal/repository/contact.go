// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/walkthewalk/walkthewalk/internal/models"
)

// CreateContact creates a new contact belonging to a user.
func (r *Repository) CreateContact(ctx context.Context, contact *models.Contact) error {
	contact.ID = uuid.NewString()
	contact.CreatedAt = time.Now().UTC()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO contacts (id, user_id, name, email, created_at) VALUES (?, ?, ?, ?, ?)`,
		contact.ID, contact.UserID, contact.Name, contact.Email, contact.CreatedAt)
	return err
}

// GetContactByID retrieves a contact by ID.
func (r *Repository) GetContactByID(ctx context.Context, id string) (*models.Contact, error) {
	var contact models.Contact
	if err := r.db.GetContext(ctx, &contact, `SELECT * FROM contacts WHERE id = ?`, id); err != nil {
		return nil, wrapError(err)
	}
	return &contact, nil
}

// DeleteContact deletes a contact by ID.
func (r *Repository) DeleteContact(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM contacts WHERE id = ?`, id)
	return err
}
