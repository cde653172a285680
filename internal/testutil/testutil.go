// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package testutil provides test helpers and fixtures.
package testutil

import (
	"context"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"github.com/vinovest/sqlx"
	"github.com/walkthewalk/walkthewalk/internal/database"
	"github.com/walkthewalk/walkthewalk/internal/models"
	"github.com/walkthewalk/walkthewalk/internal/repository"
	"github.com/walkthewalk/walkthewalk/internal/token"
)

// NewTestDB creates an in-memory SQLite database for tests.
// Returns both the database connection and the repository for convenience.
func NewTestDB(t *testing.T) (*sqlx.DB, *repository.Repository) {
	t.Helper()
	db, err := database.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Close()
	})
	repo := repository.New(db)
	return db, repo
}

// NewTestUser creates a test user in the database.
func NewTestUser(t *testing.T, repo *repository.Repository, email string) *models.User {
	t.Helper()
	user := &models.User{
		Email:        email,
		PasswordHash: "$2a$10$test-hash-not-a-real-one",
	}
	require.NoError(t, repo.CreateUser(context.Background(), user))
	return user
}

// NewTestBacklog creates a backlog with a contact for the given owner.
func NewTestBacklog(t *testing.T, repo *repository.Repository, ownerID, contactName string) (*models.Backlog, *models.Contact) {
	t.Helper()
	ctx := context.Background()

	email := contactName + "@example.com"
	contact := &models.Contact{
		UserID: ownerID,
		Name:   contactName,
		Email:  &email,
	}
	require.NoError(t, repo.CreateContact(ctx, contact))

	backlog := &models.Backlog{
		OwnerID:   ownerID,
		ContactID: &contact.ID,
	}
	require.NoError(t, repo.CreateBacklog(ctx, backlog))
	return backlog, contact
}

// NewTestPromise creates an open promise in a backlog.
func NewTestPromise(t *testing.T, repo *repository.Repository, backlogID, description string) *models.Promise {
	t.Helper()
	promise := &models.Promise{
		BacklogID:   backlogID,
		Description: description,
		Status:      models.PromiseStatusOpen,
	}
	require.NoError(t, repo.CreatePromise(context.Background(), promise))
	return promise
}

// NewTestMagicLink mints a magic link for a backlog and persists its hash.
// Returns the link and the plaintext token.
func NewTestMagicLink(t *testing.T, repo *repository.Repository, backlogID string, expiresAt *time.Time) (*models.MagicLink, string) {
	t.Helper()
	pair, err := token.GeneratePair()
	require.NoError(t, err)

	link := &models.MagicLink{
		BacklogID: backlogID,
		TokenHash: pair.Hash,
		ExpiresAt: expiresAt,
	}
	require.NoError(t, repo.CreateMagicLink(context.Background(), link))
	return link, pair.Token
}

// NewEchoContext creates an Echo context for handler tests.
func NewEchoContext(e *echo.Echo, method, path string, body io.Reader) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, path, body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	return c, rec
}
