// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package models

import "time"

// PromiseStatus is the lifecycle state of a promise.
type PromiseStatus string

const (
	PromiseStatusOpen      PromiseStatus = "open"
	PromiseStatusDone      PromiseStatus = "done"
	PromiseStatusCancelled PromiseStatus = "cancelled"
	PromiseStatusSnoozed   PromiseStatus = "snoozed"
)

// ValidPromiseStatus reports whether s is a known status value.
func ValidPromiseStatus(s PromiseStatus) bool {
	switch s {
	case PromiseStatusOpen, PromiseStatusDone, PromiseStatusCancelled, PromiseStatusSnoozed:
		return true
	}
	return false
}

// Promise is a single commitment inside a backlog. Owners manage the full
// lifecycle; recipients may only mark promises done via a magic link.
type Promise struct { //nolint:govet // fieldalignment: readability over optimization
	ID          string        `db:"id" json:"id"`
	BacklogID   string        `db:"backlog_id" json:"backlog_id"`
	Description string        `db:"description" json:"description"`
	Status      PromiseStatus `db:"status" json:"status"`
	DueDate     *time.Time    `db:"due_date" json:"due_date,omitempty"`
	CreatedAt   time.Time     `db:"created_at" json:"created_at"`
	CompletedAt *time.Time    `db:"completed_at" json:"completed_at,omitempty"`
}
