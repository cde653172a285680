// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package nudge_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walkthewalk/walkthewalk/internal/i18n"
	"github.com/walkthewalk/walkthewalk/internal/models"
	"github.com/walkthewalk/walkthewalk/internal/services/email"
	"github.com/walkthewalk/walkthewalk/internal/services/magiclink"
	"github.com/walkthewalk/walkthewalk/internal/services/nudge"
	"github.com/walkthewalk/walkthewalk/internal/testutil"
)

func init() {
	_ = i18n.Init()
}

// fakeMailer captures sent messages instead of dialing SMTP.
type fakeMailer struct {
	sent []email.Message
	err  error
}

func (f *fakeMailer) Send(_ context.Context, message email.Message) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, message)
	return nil
}

func TestSend(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()

	owner := testutil.NewTestUser(t, repo, "owner@example.com")
	backlog, contact := testutil.NewTestBacklog(t, repo, owner.ID, "alice")
	testutil.NewTestPromise(t, repo, backlog.ID, "call back about the quote")
	done := testutil.NewTestPromise(t, repo, backlog.ID, "send invoice")
	require.NoError(t, repo.MarkPromiseDone(ctx, done.ID, time.Now().UTC()))

	mailer := &fakeMailer{}
	links := magiclink.NewService(repo)
	svc := nudge.NewService(repo, links, mailer, "https://walkthewalk.app/", 0)

	result, err := svc.Send(ctx, owner.ID, backlog.ID)

	require.NoError(t, err)
	assert.NotEmpty(t, result.MagicLinkID)

	require.Len(t, mailer.sent, 1)
	msg := mailer.sent[0]
	assert.Equal(t, *contact.Email, msg.To)
	assert.Contains(t, msg.Subject, "owner")

	// Only open promises are listed
	assert.Contains(t, msg.TextBody, "call back about the quote")
	assert.NotContains(t, msg.TextBody, "send invoice")

	// The link in the email must authenticate against the stored hash
	assert.Contains(t, msg.TextBody, "https://walkthewalk.app/magic/")
	assert.Contains(t, msg.HTMLBody, "https://walkthewalk.app/magic/")

	links2, err := repo.ListMagicLinksForBacklog(ctx, backlog.ID)
	require.NoError(t, err)
	require.Len(t, links2, 1)
	assert.Equal(t, result.MagicLinkID, links2[0].ID)
}

func TestSend_TokenInEmailIsValid(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()

	owner := testutil.NewTestUser(t, repo, "owner@example.com")
	backlog, _ := testutil.NewTestBacklog(t, repo, owner.ID, "alice")
	promise := testutil.NewTestPromise(t, repo, backlog.ID, "call back")

	mailer := &fakeMailer{}
	links := magiclink.NewService(repo)
	svc := nudge.NewService(repo, links, mailer, "https://walkthewalk.app", 0)

	_, err := svc.Send(ctx, owner.ID, backlog.ID)
	require.NoError(t, err)

	// Extract the token from the URL in the text body
	body := mailer.sent[0].TextBody
	marker := "https://walkthewalk.app/magic/"
	idx := strings.Index(body, marker)
	require.GreaterOrEqual(t, idx, 0)
	plaintext := body[idx+len(marker):]
	if nl := strings.IndexAny(plaintext, "\r\n"); nl >= 0 {
		plaintext = plaintext[:nl]
	}

	_, err = links.Act(ctx, magiclink.ActionRequest{
		Token:     plaintext,
		Action:    magiclink.ActionMarkDone,
		PromiseID: promise.ID,
	})
	require.NoError(t, err)

	updated, err := repo.GetPromiseByID(ctx, promise.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PromiseStatusDone, updated.Status)
}

func TestSend_WrongOwner(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()

	owner := testutil.NewTestUser(t, repo, "owner@example.com")
	other := testutil.NewTestUser(t, repo, "other@example.com")
	backlog, _ := testutil.NewTestBacklog(t, repo, owner.ID, "alice")

	svc := nudge.NewService(repo, magiclink.NewService(repo), &fakeMailer{}, "https://walkthewalk.app", 0)

	_, err := svc.Send(ctx, other.ID, backlog.ID)

	assert.ErrorIs(t, err, nudge.ErrBacklogNotFound)
}

func TestSend_NoContactEmail(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()

	owner := testutil.NewTestUser(t, repo, "owner@example.com")

	contact := &models.Contact{UserID: owner.ID, Name: "alice"} // no email
	require.NoError(t, repo.CreateContact(ctx, contact))
	backlog := &models.Backlog{OwnerID: owner.ID, ContactID: &contact.ID}
	require.NoError(t, repo.CreateBacklog(ctx, backlog))

	svc := nudge.NewService(repo, magiclink.NewService(repo), &fakeMailer{}, "https://walkthewalk.app", 0)

	_, err := svc.Send(ctx, owner.ID, backlog.ID)

	assert.ErrorIs(t, err, nudge.ErrNoContactEmail)
}

func TestSend_LinkTTL(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()

	owner := testutil.NewTestUser(t, repo, "owner@example.com")
	backlog, _ := testutil.NewTestBacklog(t, repo, owner.ID, "alice")

	svc := nudge.NewService(repo, magiclink.NewService(repo), &fakeMailer{}, "https://walkthewalk.app", 7*24*time.Hour)

	_, err := svc.Send(ctx, owner.ID, backlog.ID)
	require.NoError(t, err)

	links, err := repo.ListMagicLinksForBacklog(ctx, backlog.ID)
	require.NoError(t, err)
	require.Len(t, links, 1)
	require.NotNil(t, links[0].ExpiresAt)
	assert.WithinDuration(t, time.Now().Add(7*24*time.Hour), *links[0].ExpiresAt, time.Minute)
}
