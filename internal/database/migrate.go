// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package database

import (
	"database/sql"
	"embed"

	"github.com/pressly/goose/v3"
)

// The embedded migrations define the full schema: users, contacts,
// backlogs, promises and magic_links.
//
//go:embed migrations/*.sql
var migrationsFS embed.FS

const migrationsDir = "migrations"

func prepareGoose() error {
	goose.SetBaseFS(migrationsFS)
	return goose.SetDialect("sqlite3")
}

// RunMigrations applies all pending migrations. Called on every Open so a
// fresh database file is usable immediately.
func RunMigrations(db *sql.DB) error {
	if err := prepareGoose(); err != nil {
		return err
	}
	return goose.Up(db, migrationsDir)
}

// MigrateDown rolls back the last migration.
func MigrateDown(db *sql.DB) error {
	if err := prepareGoose(); err != nil {
		return err
	}
	return goose.Down(db, migrationsDir)
}

// MigrateReset rolls back all migrations, dropping every table including
// persisted magic links.
func MigrateReset(db *sql.DB) error {
	if err := prepareGoose(); err != nil {
		return err
	}
	return goose.Reset(db, migrationsDir)
}
