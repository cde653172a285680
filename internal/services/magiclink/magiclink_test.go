// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package magiclink_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walkthewalk/walkthewalk/internal/models"
	"github.com/walkthewalk/walkthewalk/internal/repository"
	"github.com/walkthewalk/walkthewalk/internal/services/magiclink"
	"github.com/walkthewalk/walkthewalk/internal/testutil"
	"github.com/walkthewalk/walkthewalk/internal/token"
)

func newFixture(t *testing.T) (*magiclink.Service, *repository.Repository, *models.Backlog, *models.Promise) {
	t.Helper()
	_, repo := testutil.NewTestDB(t)
	owner := testutil.NewTestUser(t, repo, "owner@example.com")
	backlog, _ := testutil.NewTestBacklog(t, repo, owner.ID, "alice")
	promise := testutil.NewTestPromise(t, repo, backlog.ID, "call back")
	return magiclink.NewService(repo), repo, backlog, promise
}

func TestIssue(t *testing.T) {
	svc, repo, backlog, _ := newFixture(t)
	ctx := context.Background()

	issued, err := svc.Issue(ctx, backlog.ID, 0)

	require.NoError(t, err)
	assert.NotEmpty(t, issued.ID)
	assert.NotEmpty(t, issued.Token)
	assert.Nil(t, issued.ExpiresAt)

	// Only the hash is persisted
	links, err := repo.ListMagicLinksForBacklog(ctx, backlog.ID)
	require.NoError(t, err)
	require.Len(t, links, 1)
	assert.Equal(t, token.Hash(issued.Token), links[0].TokenHash)
	assert.NotContains(t, links[0].TokenHash, issued.Token)
}

func TestIssue_WithTTL(t *testing.T) {
	svc, _, backlog, _ := newFixture(t)

	issued, err := svc.Issue(context.Background(), backlog.ID, 24*time.Hour)

	require.NoError(t, err)
	require.NotNil(t, issued.ExpiresAt)
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), *issued.ExpiresAt, time.Minute)
}

func TestIssue_PurgesExpiredLinks(t *testing.T) {
	svc, repo, backlog, _ := newFixture(t)
	ctx := context.Background()

	expired := time.Now().UTC().Add(-time.Hour)
	testutil.NewTestMagicLink(t, repo, backlog.ID, &expired)
	active, _ := testutil.NewTestMagicLink(t, repo, backlog.ID, nil)

	issued, err := svc.Issue(ctx, backlog.ID, 0)
	require.NoError(t, err)

	// The expired link is gone; the active one and the new one remain
	links, err := repo.ListMagicLinksForBacklog(ctx, backlog.ID)
	require.NoError(t, err)
	require.Len(t, links, 2)
	ids := []string{links[0].ID, links[1].ID}
	assert.Contains(t, ids, active.ID)
	assert.Contains(t, ids, issued.ID)
}

func TestIssue_MultipleIndependentLinks(t *testing.T) {
	svc, _, backlog, promise := newFixture(t)
	ctx := context.Background()

	first, err := svc.Issue(ctx, backlog.ID, 0)
	require.NoError(t, err)
	second, err := svc.Issue(ctx, backlog.ID, 0)
	require.NoError(t, err)
	require.NotEqual(t, first.Token, second.Token)

	// Both links are valid at the same time
	for _, tok := range []string{first.Token, second.Token} {
		_, err := svc.Act(ctx, magiclink.ActionRequest{
			Token:     tok,
			Action:    magiclink.ActionMarkDone,
			PromiseID: promise.ID,
		})
		require.NoError(t, err)
	}
}

func TestAct_MarkDone(t *testing.T) {
	svc, repo, backlog, promise := newFixture(t)
	ctx := context.Background()

	issued, err := svc.Issue(ctx, backlog.ID, 0)
	require.NoError(t, err)

	result, err := svc.Act(ctx, magiclink.ActionRequest{
		Token:     issued.Token,
		Action:    magiclink.ActionMarkDone,
		PromiseID: promise.ID,
	})

	require.NoError(t, err)
	assert.Equal(t, magiclink.ActionMarkDone, result.Action)
	assert.Equal(t, promise.ID, result.PromiseID)

	updated, err := repo.GetPromiseByID(ctx, promise.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PromiseStatusDone, updated.Status)
	require.NotNil(t, updated.CompletedAt)

	links, err := repo.ListMagicLinksForBacklog(ctx, backlog.ID)
	require.NoError(t, err)
	require.Len(t, links, 1)
	assert.NotNil(t, links[0].LastUsedAt)
}

func TestAct_MarkDoneIdempotent(t *testing.T) {
	svc, repo, backlog, promise := newFixture(t)
	ctx := context.Background()

	issued, err := svc.Issue(ctx, backlog.ID, 0)
	require.NoError(t, err)

	req := magiclink.ActionRequest{
		Token:     issued.Token,
		Action:    magiclink.ActionMarkDone,
		PromiseID: promise.ID,
	}
	_, err = svc.Act(ctx, req)
	require.NoError(t, err)
	_, err = svc.Act(ctx, req)
	require.NoError(t, err)

	updated, err := repo.GetPromiseByID(ctx, promise.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PromiseStatusDone, updated.Status)
}

func TestAct_InvalidRequest(t *testing.T) {
	svc, _, backlog, promise := newFixture(t)
	ctx := context.Background()

	issued, err := svc.Issue(ctx, backlog.ID, 0)
	require.NoError(t, err)

	tests := []struct {
		name string
		req  magiclink.ActionRequest
	}{
		{"missing token", magiclink.ActionRequest{Action: magiclink.ActionMarkDone, PromiseID: promise.ID}},
		{"missing promise", magiclink.ActionRequest{Token: issued.Token, Action: magiclink.ActionMarkDone}},
		{"missing action", magiclink.ActionRequest{Token: issued.Token, PromiseID: promise.ID}},
		{"unknown action", magiclink.ActionRequest{Token: issued.Token, Action: "delete", PromiseID: promise.ID}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Act(ctx, tt.req)
			assert.ErrorIs(t, err, magiclink.ErrInvalidRequest)
		})
	}
}

func TestAct_UnknownToken(t *testing.T) {
	svc, _, _, promise := newFixture(t)

	// Well-formed but never issued
	stray, err := token.Generate(32)
	require.NoError(t, err)

	_, err = svc.Act(context.Background(), magiclink.ActionRequest{
		Token:     stray,
		Action:    magiclink.ActionMarkDone,
		PromiseID: promise.ID,
	})

	assert.ErrorIs(t, err, magiclink.ErrInvalidToken)
}

func TestAct_ExpiredLink(t *testing.T) {
	svc, repo, backlog, promise := newFixture(t)
	ctx := context.Background()

	past := time.Now().Add(-time.Hour)
	_, plaintext := testutil.NewTestMagicLink(t, repo, backlog.ID, &past)

	_, err := svc.Act(ctx, magiclink.ActionRequest{
		Token:     plaintext,
		Action:    magiclink.ActionMarkDone,
		PromiseID: promise.ID,
	})

	assert.ErrorIs(t, err, magiclink.ErrTokenExpired)

	// No mutation happened
	unchanged, err := repo.GetPromiseByID(ctx, promise.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PromiseStatusOpen, unchanged.Status)
}

func TestAct_RevokedLink(t *testing.T) {
	svc, repo, backlog, promise := newFixture(t)
	ctx := context.Background()

	owner, err := repo.GetUserByEmail(ctx, "owner@example.com")
	require.NoError(t, err)

	issued, err := svc.Issue(ctx, backlog.ID, 0)
	require.NoError(t, err)
	require.NoError(t, svc.Revoke(ctx, issued.ID, owner.ID))

	_, err = svc.Act(ctx, magiclink.ActionRequest{
		Token:     issued.Token,
		Action:    magiclink.ActionMarkDone,
		PromiseID: promise.ID,
	})

	// Revoked is indistinguishable from never-issued
	assert.ErrorIs(t, err, magiclink.ErrInvalidToken)
}

func TestAct_WrongBacklog(t *testing.T) {
	svc, repo, backlog, _ := newFixture(t)
	ctx := context.Background()

	other := testutil.NewTestUser(t, repo, "other@example.com")
	otherBacklog, _ := testutil.NewTestBacklog(t, repo, other.ID, "bob")
	otherPromise := testutil.NewTestPromise(t, repo, otherBacklog.ID, "water plants")

	issued, err := svc.Issue(ctx, backlog.ID, 0)
	require.NoError(t, err)

	_, err = svc.Act(ctx, magiclink.ActionRequest{
		Token:     issued.Token,
		Action:    magiclink.ActionMarkDone,
		PromiseID: otherPromise.ID,
	})

	assert.ErrorIs(t, err, magiclink.ErrForbidden)

	unchanged, err := repo.GetPromiseByID(ctx, otherPromise.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PromiseStatusOpen, unchanged.Status)
}

func TestAct_PromiseNotFound(t *testing.T) {
	svc, _, backlog, _ := newFixture(t)
	ctx := context.Background()

	issued, err := svc.Issue(ctx, backlog.ID, 0)
	require.NoError(t, err)

	_, err = svc.Act(ctx, magiclink.ActionRequest{
		Token:     issued.Token,
		Action:    magiclink.ActionMarkDone,
		PromiseID: "00000000-0000-0000-0000-000000000000",
	})

	assert.ErrorIs(t, err, magiclink.ErrPromiseNotFound)
}

func TestAct_CommentNotImplemented(t *testing.T) {
	svc, repo, backlog, promise := newFixture(t)
	ctx := context.Background()

	issued, err := svc.Issue(ctx, backlog.ID, 0)
	require.NoError(t, err)

	_, err = svc.Act(ctx, magiclink.ActionRequest{
		Token:     issued.Token,
		Action:    magiclink.ActionComment,
		PromiseID: promise.ID,
		Comment:   "on it!",
	})

	assert.ErrorIs(t, err, magiclink.ErrNotImplemented)

	// Failed attempts do not stamp last_used_at
	links, err := repo.ListMagicLinksForBacklog(ctx, backlog.ID)
	require.NoError(t, err)
	require.Len(t, links, 1)
	assert.Nil(t, links[0].LastUsedAt)
}

func TestAuthenticate(t *testing.T) {
	svc, _, backlog, _ := newFixture(t)
	ctx := context.Background()

	issued, err := svc.Issue(ctx, backlog.ID, 0)
	require.NoError(t, err)

	link, err := svc.Authenticate(ctx, issued.Token)

	require.NoError(t, err)
	assert.Equal(t, issued.ID, link.ID)
	assert.Equal(t, backlog.ID, link.BacklogID)
}

func TestAuthenticate_EmptyToken(t *testing.T) {
	svc, _, _, _ := newFixture(t)

	_, err := svc.Authenticate(context.Background(), "")

	assert.ErrorIs(t, err, magiclink.ErrInvalidToken)
}

func TestValidAction(t *testing.T) {
	assert.True(t, magiclink.ValidAction(magiclink.ActionMarkDone))
	assert.True(t, magiclink.ValidAction(magiclink.ActionComment))
	assert.False(t, magiclink.ValidAction("snooze"))
	assert.False(t, magiclink.ValidAction(""))
}
