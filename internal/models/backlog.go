// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package models

import "time"

// Backlog groups the promises an owner made to a single contact.
type Backlog struct { //nolint:govet // fieldalignment: readability over optimization
	ID        string    `db:"id" json:"id"`
	OwnerID   string    `db:"owner_id" json:"owner_id"`
	ContactID *string   `db:"contact_id" json:"contact_id,omitempty"`
	Title     *string   `db:"title" json:"title,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// BacklogStats summarizes promise counts for the dashboard listing.
type BacklogStats struct {
	Total int `json:"total"`
	Open  int `json:"open"`
	Done  int `json:"done"`
}

// BacklogWithStats is a backlog joined with its contact and promise counts.
type BacklogWithStats struct {
	Backlog
	Contact *Contact     `json:"contact,omitempty"`
	Stats   BacklogStats `json:"stats"`
}
