package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hongminglow/lateral-entry-be/internal/apperr"
	"github.com/hongminglow/lateral-entry-be/internal/models"
	"github.com/hongminglow/lateral-entry-be/internal/storage/storagetest"
)

func newTestResolver(t *testing.T) (*Resolver, *storagetest.Memory) {
	t.Helper()
	store := storagetest.New()
	mgr := newTestManager(t, store, nil)
	return NewResolver(store, store, store, mgr, nil), store
}

func attemptFor(subject string) LoginAttempt {
	return LoginAttempt{
		Identity:  Identity{Subject: subject, Email: subject + "@example.org", Name: "Person " + subject, EmailVerified: true},
		IPAddress: "10.0.0.9",
		UserAgent: "test",
	}
}

func TestResolveUnknownIdentityRequestsAccessOnce(t *testing.T) {
	r, store := newTestResolver(t)
	ctx := context.Background()

	res, err := r.Resolve(ctx, attemptFor("X"))
	require.NoError(t, err)
	assert.Equal(t, OutcomeAccessRequested, res.Outcome)

	res, err = r.Resolve(ctx, attemptFor("X"))
	require.NoError(t, err)
	assert.Equal(t, OutcomeAlreadyPending, res.Outcome)
	assert.Len(t, store.Pending, 1)
	assert.Empty(t, store.Sessions)
}

func TestResolveApprovedUserCreatesSession(t *testing.T) {
	r, store := newTestResolver(t)
	ctx := context.Background()
	user := store.AddUser(models.User{GoogleID: "G", Email: "g@example.org", Role: models.RoleAppointee, IsApproved: true, IsActive: true})

	res, err := r.Resolve(ctx, attemptFor("G"))
	require.NoError(t, err)
	assert.Equal(t, OutcomeSessionCreated, res.Outcome)
	assert.Contains(t, store.Sessions, res.SessionID)
	require.NotNil(t, store.Users[user.ID].LastLogin)
	assert.Equal(t, []string{models.ActionLogin}, store.AuditActions())
}

func TestResolveFailsClosed(t *testing.T) {
	r, store := newTestResolver(t)
	ctx := context.Background()
	store.AddUser(models.User{GoogleID: "P", Email: "p@example.org", IsApproved: false, IsActive: true})
	store.AddUser(models.User{GoogleID: "D", Email: "d@example.org", IsApproved: true, IsActive: false})

	res, err := r.Resolve(ctx, attemptFor("P"))
	require.NoError(t, err)
	assert.Equal(t, OutcomePendingApproval, res.Outcome)

	_, err = r.Resolve(ctx, attemptFor("D"))
	assert.ErrorIs(t, err, apperr.ErrAccountDeactivated)
	assert.Empty(t, store.Sessions)
}

func TestResolveRejectsUnverifiedEmail(t *testing.T) {
	r, store := newTestResolver(t)
	attempt := attemptFor("U")
	attempt.Identity.EmailVerified = false

	_, err := r.Resolve(context.Background(), attempt)
	assert.ErrorIs(t, err, apperr.ErrForbidden)
	assert.Empty(t, store.Pending)
}

func TestApprovePendingCreatesUserAndAudits(t *testing.T) {
	r, store := newTestResolver(t)
	ctx := context.Background()
	admin := store.AddUser(models.User{GoogleID: "A", Email: "a@example.org", Role: models.RoleAdmin, IsApproved: true, IsActive: true})
	_, err := r.Resolve(ctx, attemptFor("N"))
	require.NoError(t, err)

	var pendingID int64
	for id := range store.Pending {
		pendingID = id
	}
	entrant := int64(77)
	user, err := r.ApprovePending(ctx, models.Actor{UserID: admin.ID}, pendingID, &entrant)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAppointee, user.Role)
	assert.True(t, user.IsApproved)
	assert.True(t, user.IsActive)
	assert.Equal(t, entrant, *user.EntrantID)
	assert.Empty(t, store.Pending)
	assert.Equal(t, []string{models.ActionApproveUser}, store.AuditActions())

	res, err := r.Resolve(ctx, attemptFor("N"))
	require.NoError(t, err)
	assert.Equal(t, OutcomeSessionCreated, res.Outcome)

	_, err = r.ApprovePending(ctx, models.Actor{UserID: admin.ID}, pendingID, nil)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestRejectPending(t *testing.T) {
	r, store := newTestResolver(t)
	ctx := context.Background()
	_, err := r.Resolve(ctx, attemptFor("R"))
	require.NoError(t, err)
	var pendingID int64
	for id := range store.Pending {
		pendingID = id
	}

	require.NoError(t, r.RejectPending(ctx, models.Actor{UserID: 1}, pendingID, ""))
	assert.Empty(t, store.Pending)
	require.Len(t, store.Audit, 1)
	assert.Equal(t, "rejected: No reason provided", *store.Audit[0].NewValue)

	assert.ErrorIs(t, r.RejectPending(ctx, models.Actor{UserID: 1}, pendingID, "x"), apperr.ErrNotFound)
}

func TestStatus(t *testing.T) {
	r, store := newTestResolver(t)
	ctx := context.Background()
	store.AddUser(models.User{GoogleID: "OK", Email: "ok@example.org", IsApproved: true, IsActive: true})
	_, err := r.Resolve(ctx, attemptFor("WAIT"))
	require.NoError(t, err)

	st, err := r.Status(ctx, "OK")
	require.NoError(t, err)
	assert.Equal(t, AccountStatus{Status: "approved", Active: true}, st)

	st, err = r.Status(ctx, "WAIT")
	require.NoError(t, err)
	assert.Equal(t, "pending", st.Status)

	st, err = r.Status(ctx, "nobody")
	require.NoError(t, err)
	assert.Equal(t, "not_found", st.Status)
}

func TestLogoutAudits(t *testing.T) {
	r, store := newTestResolver(t)
	ctx := context.Background()
	user := store.AddUser(models.User{GoogleID: "L", Email: "l@example.org", IsApproved: true, IsActive: true})
	res, err := r.Resolve(ctx, attemptFor("L"))
	require.NoError(t, err)

	require.NoError(t, r.Logout(ctx, res.SessionID, models.Actor{UserID: user.ID}))
	assert.Empty(t, store.Sessions)
	assert.Equal(t, []string{models.ActionLogin, models.ActionLogout}, store.AuditActions())
}
