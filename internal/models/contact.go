// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package models

import "time"

// Contact is the person a backlog's promises are made to. A contact needs
// an email address before nudges can be sent to them.
type Contact struct { //nolint:govet // fieldalignment: readability over optimization
	ID        string    `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"user_id"`
	Name      string    `db:"name" json:"name"`
	Email     *string   `db:"email" json:"email,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// HasEmail reports whether the contact can receive nudge emails.
func (c *Contact) HasEmail() bool {
	return c.Email != nil && *c.Email != ""
}
