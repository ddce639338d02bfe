package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hongminglow/lateral-entry-be/internal/models"
	"github.com/hongminglow/lateral-entry-be/internal/storage"
)

func newMock(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return New(db), mock
}

var userCols = []string{
	"id", "google_id", "email", "name", "role", "is_approved", "is_active",
	"entrant_id", "picture_url", "last_login", "created_at",
}

func TestMigrateWrapsFailure(t *testing.T) {
	store, mock := newMock(t)
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS lateral_entrants").WillReturnError(errors.New("permission denied"))

	err := store.migrate(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "apply migrations")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateUserDuplicate(t *testing.T) {
	store, mock := newMock(t)
	mock.ExpectQuery("INSERT INTO users").WillReturnError(&pgconn.PgError{Code: "23505"})

	_, err := store.CreateUser(context.Background(), models.User{GoogleID: "g-1", Email: "a@example.org"})
	assert.ErrorIs(t, err, storage.ErrAlreadyExists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindSessionJoinsUser(t *testing.T) {
	store, mock := newMock(t)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	entrant := int64(9)

	cols := append([]string{"id", "user_id", "access_token", "refresh_token", "ip_address", "user_agent", "created_at", "expires_at"}, userCols...)
	rows := sqlmock.NewRows(cols).AddRow(
		"sid", int64(4), "enc-a", "enc-r", "10.0.0.1", "curl", now, now.Add(time.Hour),
		int64(4), "g-4", "u4@example.org", "Asha", "appointee", true, true, entrant, "", nil, now,
	)
	mock.ExpectQuery("FROM sessions s").WithArgs("sid").WillReturnRows(rows)

	got, err := store.FindSession(context.Background(), "sid")
	require.NoError(t, err)
	assert.Equal(t, int64(4), got.Session.UserID)
	assert.Equal(t, models.RoleAppointee, got.User.Role)
	require.NotNil(t, got.User.EntrantID)
	assert.Equal(t, entrant, *got.User.EntrantID)
	assert.Nil(t, got.User.LastLogin)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindSessionMissing(t *testing.T) {
	store, mock := newMock(t)
	mock.ExpectQuery("FROM sessions s").WithArgs("nope").WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := store.FindSession(context.Background(), "nope")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestDeleteExpiredSessionsCounts(t *testing.T) {
	store, mock := newMock(t)
	now := time.Now()
	mock.ExpectExec("DELETE FROM sessions WHERE expires_at").WithArgs(now).WillReturnResult(sqlmock.NewResult(0, 3))

	n, err := store.DeleteExpiredSessions(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}

func TestApprovePendingUserIsTransactional(t *testing.T) {
	store, mock := newMock(t)
	now := time.Now()
	actor := int64(1)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM pending_users").WithArgs(int64(7)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("INSERT INTO users").WillReturnRows(sqlmock.NewRows(userCols).AddRow(
		int64(42), "g-7", "p@example.org", "Priya", "appointee", true, true, nil, "", nil, now,
	))
	mock.ExpectExec("INSERT INTO audit_log").
		WithArgs(actor, models.ActionApproveUser, models.EntityUser, "42",
			sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	user, err := store.ApprovePendingUser(context.Background(), 7,
		models.User{GoogleID: "g-7", Email: "p@example.org", Name: "Priya", Role: models.RoleAppointee, IsApproved: true, IsActive: true},
		models.AuditEntry{UserID: &actor, Action: models.ActionApproveUser, EntityType: models.EntityUser})
	require.NoError(t, err)
	assert.Equal(t, int64(42), user.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApprovePendingUserMissingRollsBack(t *testing.T) {
	store, mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM pending_users").WithArgs(int64(7)).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	_, err := store.ApprovePendingUser(context.Background(), 7, models.User{}, models.AuditEntry{})
	assert.ErrorIs(t, err, storage.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplyProfileEditUsesWhitelistedColumn(t *testing.T) {
	store, mock := newMock(t)
	bio := "new bio"

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE lateral_entrants SET bio = $1")).
		WithArgs(bio, int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO audit_log").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	err := store.ApplyProfileEdit(context.Background(), 3, models.FieldBio, &bio, models.AuditEntry{Action: models.ActionApplyEdit})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApproveEditRequestClearsEmptyValue(t *testing.T) {
	store, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT entrant_id, field_name, new_value FROM field_edit_requests").
		WithArgs(int64(8)).
		WillReturnRows(sqlmock.NewRows([]string{"entrant_id", "field_name", "new_value"}).AddRow(int64(3), "bio", ""))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE lateral_entrants SET bio = $1")).
		WithArgs(nil, int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE field_edit_requests").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO audit_log").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	err := store.ApproveEditRequest(context.Background(), 8,
		models.Review{Status: models.EditApproved, ReviewerID: 1, At: time.Now()},
		models.AuditEntry{Action: models.ActionApproveEdit})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplyProfileEditRejectsUnknownColumn(t *testing.T) {
	store, mock := newMock(t)
	value := "x"

	mock.ExpectBegin()
	mock.ExpectRollback()

	err := store.ApplyProfileEdit(context.Background(), 3, models.ProfileField("name = 'x', id"), &value, models.AuditEntry{})
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestVisibilitySettingsGroupsByProfile(t *testing.T) {
	store, mock := newMock(t)
	rows := sqlmock.NewRows([]string{"entrant_id", "field_name", "visibility_level"}).
		AddRow(int64(1), "bio", "private").
		AddRow(int64(2), "phone", "lateral_entrants_only")
	mock.ExpectQuery("FROM field_visibility_settings").WithArgs("{1,2,3}").WillReturnRows(rows)

	got, err := store.VisibilitySettings(context.Background(), 1, 2, 3)
	require.NoError(t, err)
	assert.Equal(t, "private", got[1]["bio"])
	assert.Equal(t, "lateral_entrants_only", got[2]["phone"])
	assert.Empty(t, got[3])
}

func TestSetVisibilityUpsertsAndRecordsHistory(t *testing.T) {
	store, mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO field_visibility_settings").
		WithArgs(int64(1), "bio", "private").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO visibility_audit").
		WithArgs(int64(1), "bio", "public", "private", int64(5)).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	err := store.SetVisibility(context.Background(), models.VisibilityChange{
		EntrantID: 1, FieldName: "bio", OldVisibility: "public", NewVisibility: "private", ChangedBy: 5,
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRejectEditRequestNotPending(t *testing.T) {
	store, mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE field_edit_requests").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := store.RejectEditRequest(context.Background(), 11, models.Review{Status: models.EditRejected}, models.AuditEntry{})
	assert.ErrorIs(t, err, storage.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertSocialPostDuplicate(t *testing.T) {
	store, mock := newMock(t)
	mock.ExpectExec("INSERT INTO social_feed_items").WillReturnError(&pgconn.PgError{Code: "23505"})

	err := store.InsertSocialPost(context.Background(), models.SocialPost{ExternalID: "tw-1"})
	assert.ErrorIs(t, err, storage.ErrAlreadyExists)
}

func TestListAuditFiltersByAction(t *testing.T) {
	store, mock := newMock(t)
	now := time.Now()

	mock.ExpectQuery("SELECT COUNT").WithArgs("login").WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(1)))
	mock.ExpectQuery("FROM audit_log a").WithArgs("login", 50, 0).WillReturnRows(sqlmock.NewRows([]string{
		"id", "user_id", "action", "entity_type", "entity_id", "old_value", "new_value",
		"ip_address", "user_agent", "created_at", "name", "email",
	}).AddRow(int64(1), int64(2), "login", "session", "", nil, nil, "10.0.0.1", "curl", now, "Asha", "a@example.org"))

	entries, total, err := store.ListAudit(context.Background(), models.AuditQuery{Action: "login", Page: 1, PerPage: 50})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, entries, 1)
	require.NotNil(t, entries[0].UserName)
	assert.Equal(t, "Asha", *entries[0].UserName)
	assert.NoError(t, mock.ExpectationsWereMet())
}
