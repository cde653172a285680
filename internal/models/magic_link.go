// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package models

import "time"

// MagicLink is a bearer capability scoped to a single backlog. Only the
// SHA-256 hash of the secret token is stored; the plaintext exists solely
// in the outbound email and the verification input path.
//
// Links are reusable recap links, not one-time redemption tokens: a link
// stays valid until it expires or is explicitly revoked. LastUsedAt is
// audit telemetry, not an access-control input.
type MagicLink struct { //nolint:govet // fieldalignment: readability over optimization
	ID         string     `db:"id" json:"id"`
	BacklogID  string     `db:"backlog_id" json:"backlog_id"`
	TokenHash  string     `db:"token_hash" json:"-"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
	ExpiresAt  *time.Time `db:"expires_at" json:"expires_at,omitempty"`
	Revoked    bool       `db:"revoked" json:"revoked"`
	LastUsedAt *time.Time `db:"last_used_at" json:"last_used_at,omitempty"`
}

// Expired reports whether the link's expiry has passed. A nil ExpiresAt
// means the link never expires.
func (l *MagicLink) Expired(now time.Time) bool {
	return l.ExpiresAt != nil && !l.ExpiresAt.After(now)
}

// Valid reports whether the link authorizes access: not revoked and not
// expired. Expiry and revocation are both terminal.
func (l *MagicLink) Valid(now time.Time) bool {
	return !l.Revoked && !l.Expired(now)
}
