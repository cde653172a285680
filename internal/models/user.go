// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package models

import (
	"strings"
	"time"
)

// User is an owner account. Owners authenticate with email and password;
// recipients never have accounts and act through magic links instead.
type User struct { //nolint:govet // fieldalignment: readability over optimization
	ID           string    `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	Name         *string   `db:"name" json:"name,omitempty"`
	PasswordHash string    `db:"password_hash" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// DisplayName returns the user's name, falling back to the local part of
// their email address.
func (u *User) DisplayName() string {
	if u.Name != nil && *u.Name != "" {
		return *u.Name
	}
	if at := strings.IndexByte(u.Email, '@'); at > 0 {
		return u.Email[:at]
	}
	return u.Email
}
