package moderation

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hongminglow/lateral-entry-be/internal/apperr"
	"github.com/hongminglow/lateral-entry-be/internal/models"
	"github.com/hongminglow/lateral-entry-be/internal/storage/storagetest"
)

type fixture struct {
	svc     *Service
	store   *storagetest.Memory
	profile models.Profile
	owner   *models.UserContext
	admin   models.Actor
	root    string
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	store := storagetest.New()
	root := t.TempDir()
	svc := New(Stores{
		Profiles: store, Edits: store, Uploads: store, Flags: store,
		Settings: store, Audit: store, Stats: store,
	}, NewFiles(root), nil)

	bio := "old bio"
	profile := store.AddProfile(models.Profile{Name: "Asha Rao", Bio: &bio})
	owner := store.AddUser(models.User{Email: "asha@example.org", Role: models.RoleAppointee, IsApproved: true, IsActive: true, EntrantID: &profile.ID})
	admin := store.AddUser(models.User{Email: "admin@example.org", Role: models.RoleAdmin, IsApproved: true, IsActive: true})

	return fixture{
		svc:     svc,
		store:   store,
		profile: profile,
		owner:   &models.UserContext{UserID: owner.ID, Role: models.RoleAppointee, IsApproved: true, IsActive: true, EntrantID: &profile.ID},
		admin:   models.Actor{UserID: admin.ID, IPAddress: "10.0.0.1", UserAgent: "test"},
		root:    root,
	}
}

func (f fixture) ownerActor() models.Actor {
	return models.Actor{UserID: f.owner.UserID}
}

func (f fixture) setModeration(t *testing.T, value string) {
	t.Helper()
	_, err := f.svc.UpdateSetting(context.Background(), f.admin, models.SettingModerationEnabled, value)
	require.NoError(t, err)
}

func TestNameEditQueuedThenApproved(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.svc.SubmitEdit(ctx, f.ownerActor(), f.owner, f.profile.ID, "name", "New Name")
	require.NoError(t, err)
	assert.False(t, res.Applied)
	require.NotNil(t, res.Request)
	assert.Equal(t, models.EditPending, res.Request.Status)
	assert.Equal(t, "Asha Rao", f.store.Profiles[f.profile.ID].Name)

	require.NoError(t, f.svc.ApproveEdit(ctx, f.admin, res.Request.ID))
	assert.Equal(t, "New Name", f.store.Profiles[f.profile.ID].Name)
	assert.Equal(t, models.EditApproved, f.store.EditRequests[res.Request.ID].Status)
	assert.Contains(t, f.store.AuditActions(), models.ActionApproveEdit)
}

func TestSubmitEditAppliesWhenModerationOff(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.setModeration(t, "false")

	res, err := f.svc.SubmitEdit(ctx, f.ownerActor(), f.owner, f.profile.ID, "bio", "new bio")
	require.NoError(t, err)
	assert.True(t, res.Applied)
	assert.Nil(t, res.Request)
	assert.Equal(t, "new bio", *f.store.Profiles[f.profile.ID].Bio)
	assert.Empty(t, f.store.EditRequests)

	last := f.store.Audit[len(f.store.Audit)-1]
	assert.Equal(t, models.ActionApplyEdit, last.Action)
	require.NotNil(t, last.OldValue)
	assert.Equal(t, "old bio", *last.OldValue)
}

func TestClearingFieldStoresNullOnBothPaths(t *testing.T) {
	ctx := context.Background()

	direct := newFixture(t)
	direct.setModeration(t, "false")
	res, err := direct.svc.SubmitEdit(ctx, direct.ownerActor(), direct.owner, direct.profile.ID, "bio", "")
	require.NoError(t, err)
	require.True(t, res.Applied)
	assert.Nil(t, direct.store.Profiles[direct.profile.ID].Bio)

	queued := newFixture(t)
	res, err = queued.svc.SubmitEdit(ctx, queued.ownerActor(), queued.owner, queued.profile.ID, "bio", "")
	require.NoError(t, err)
	require.False(t, res.Applied)
	require.NotNil(t, res.Request)
	require.NotNil(t, queued.store.Profiles[queued.profile.ID].Bio)

	require.NoError(t, queued.svc.ApproveEdit(ctx, queued.admin, res.Request.ID))
	assert.Nil(t, queued.store.Profiles[queued.profile.ID].Bio)
	last := queued.store.Audit[len(queued.store.Audit)-1]
	assert.Equal(t, models.ActionApproveEdit, last.Action)
	assert.Nil(t, last.NewValue)
}

func TestSubmitEditRejections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.SubmitEdit(ctx, f.ownerActor(), f.owner, f.profile.ID, "id", "7")
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = f.svc.SubmitEdit(ctx, f.ownerActor(), f.owner, f.profile.ID, "name", "  ")
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = f.svc.SubmitEdit(ctx, f.ownerActor(), f.owner, f.profile.ID+100, "bio", "x")
	assert.ErrorIs(t, err, apperr.ErrForbidden)
	assert.Empty(t, f.store.EditRequests)
}

func TestReviewingTwiceIsRejected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	req, err := f.svc.Propose(ctx, f.owner.UserID, f.profile.ID, "position", "Joint Secretary")
	require.NoError(t, err)
	require.NoError(t, f.svc.RejectEdit(ctx, f.admin, req.ID, "not verified"))

	stored := f.store.EditRequests[req.ID]
	assert.Equal(t, models.EditRejected, stored.Status)
	require.NotNil(t, stored.RejectionReason)
	assert.Equal(t, "not verified", *stored.RejectionReason)
	assert.Nil(t, f.store.Profiles[f.profile.ID].Position)

	assert.ErrorIs(t, f.svc.ApproveEdit(ctx, f.admin, req.ID), apperr.ErrValidation)
	assert.ErrorIs(t, f.svc.ApproveEdit(ctx, f.admin, 999), apperr.ErrNotFound)
}

func TestListEditsValidatesStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.svc.Propose(ctx, f.owner.UserID, f.profile.ID, "bio", "b")
	require.NoError(t, err)

	pending, err := f.svc.ListEdits(ctx, "")
	require.NoError(t, err)
	assert.Len(t, pending, 1)

	_, err = f.svc.ListEdits(ctx, "bogus")
	assert.ErrorIs(t, err, apperr.ErrValidation)

	mine, err := f.svc.ListMyEdits(ctx, f.owner.UserID)
	require.NoError(t, err)
	assert.Len(t, mine, 1)
}

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

func TestUploadStoresAndQueuesImage(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.svc.files.now = func() time.Time { return time.Unix(1700000000, 0) }

	up, err := f.svc.Upload(ctx, f.owner.UserID, ImageKind, "", "my photo.png", bytes.NewReader(pngHeader))
	require.NoError(t, err)
	assert.Equal(t, models.EditPending, up.ModerationStatus)
	assert.Equal(t, "image", up.Purpose)
	assert.Equal(t, "image/png", up.FileType)

	name := "1700000000_" + strconv.FormatInt(f.owner.UserID, 10) + "_my_photo.png"
	assert.Equal(t, "/uploads/images/"+name, up.FilePath)
	_, err = os.Stat(filepath.Join(f.root, "images", name))
	assert.NoError(t, err)
}

func TestUploadRejectsBadFiles(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Upload(ctx, f.owner.UserID, ImageKind, "", "script.exe", bytes.NewReader(pngHeader))
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = f.svc.Upload(ctx, f.owner.UserID, ImageKind, "", "fake.png", bytes.NewReader([]byte("plain text, not an image")))
	assert.ErrorIs(t, err, apperr.ErrValidation)

	big := bytes.Repeat([]byte("a"), int(DocumentKind.MaxBytes)+1)
	_, err = f.svc.Upload(ctx, f.owner.UserID, DocumentKind, "", "notes.txt", bytes.NewReader(big))
	assert.ErrorIs(t, err, apperr.ErrValidation)

	entries, err := os.ReadDir(filepath.Join(f.root, "documents"))
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.Empty(t, f.store.Uploads)
}

func TestDeleteUploadOwnership(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	up, err := f.svc.Upload(ctx, f.owner.UserID, DocumentKind, "cv", "cv.txt", bytes.NewReader([]byte("curriculum vitae")))
	require.NoError(t, err)

	stranger := &models.UserContext{UserID: 999, Role: models.RoleAppointee}
	assert.ErrorIs(t, f.svc.DeleteUpload(ctx, stranger, up.ID), apperr.ErrForbidden)

	require.NoError(t, f.svc.DeleteUpload(ctx, f.owner, up.ID))
	assert.Empty(t, f.store.Uploads)
	entries, err := os.ReadDir(filepath.Join(f.root, "documents"))
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestReviewUpload(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	up, err := f.svc.Upload(ctx, f.owner.UserID, ImageKind, "profile_photo", "me.png", bytes.NewReader(pngHeader))
	require.NoError(t, err)

	require.NoError(t, f.svc.RejectUpload(ctx, f.admin, up.ID, "blurry"))
	assert.Equal(t, models.EditRejected, f.store.Uploads[up.ID].ModerationStatus)
	assert.ErrorIs(t, f.svc.ApproveUpload(ctx, f.admin, up.ID), apperr.ErrValidation)
	assert.Contains(t, f.store.AuditActions(), models.ActionRejectUpload)
}

func TestReportContentValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	entrant := f.profile.ID

	_, err := f.svc.ReportContent(ctx, f.owner.UserID, Report{ContentType: models.FlagProfileField, ContentID: "name", EntrantID: &entrant, Reason: "offensive"})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = f.svc.ReportContent(ctx, f.owner.UserID, Report{ContentType: models.FlagProfileField, ContentID: "bio", Reason: "offensive"})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = f.svc.ReportContent(ctx, f.owner.UserID, Report{ContentType: "comment", ContentID: "1", Reason: "spam"})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = f.svc.ReportContent(ctx, f.owner.UserID, Report{ContentType: models.FlagUpload, ContentID: "404", Reason: "spam"})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestResolveFlagRemovesField(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	entrant := f.profile.ID

	flag, err := f.svc.ReportContent(ctx, f.owner.UserID, Report{ContentType: models.FlagProfileField, ContentID: "bio", EntrantID: &entrant, Reason: "inaccurate"})
	require.NoError(t, err)

	assert.ErrorIs(t, f.svc.ResolveFlag(ctx, f.admin, flag.ID, "archive", ""), apperr.ErrValidation)
	require.NoError(t, f.svc.ResolveFlag(ctx, f.admin, flag.ID, models.FlagActionRemove, "removed"))
	assert.Nil(t, f.store.Profiles[f.profile.ID].Bio)
	assert.ErrorIs(t, f.svc.ResolveFlag(ctx, f.admin, flag.ID, models.FlagActionKeep, ""), apperr.ErrValidation)

	resolved, err := f.svc.ListFlags(ctx, "resolved")
	require.NoError(t, err)
	assert.Len(t, resolved, 1)
}

func TestUpdateSettingValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.UpdateSetting(ctx, f.admin, models.SettingModerationEnabled, "")
	assert.ErrorIs(t, err, apperr.ErrValidation)
	_, err = f.svc.UpdateSetting(ctx, f.admin, models.SettingModerationEnabled, "maybe")
	assert.ErrorIs(t, err, apperr.ErrValidation)
	_, err = f.svc.UpdateSetting(ctx, f.admin, "unknown_key", "1")
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	updated, err := f.svc.UpdateSetting(ctx, f.admin, models.SettingModerationEnabled, "FALSE")
	require.NoError(t, err)
	assert.Equal(t, "false", updated.Value)

	enabled, err := f.svc.ModerationEnabled(ctx)
	require.NoError(t, err)
	assert.False(t, enabled)

	last := f.store.Audit[len(f.store.Audit)-1]
	assert.Equal(t, models.ActionUpdateSetting, last.Action)
	assert.Equal(t, "true", *last.OldValue)
}

func TestModerationEnabledWhenSettingMissing(t *testing.T) {
	f := newFixture(t)
	delete(f.store.Settings, models.SettingModerationEnabled)

	enabled, err := f.svc.ModerationEnabled(context.Background())
	require.NoError(t, err)
	assert.True(t, enabled)
}

func TestDashboardCountsBacklog(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.svc.Propose(ctx, f.owner.UserID, f.profile.ID, "bio", "b")
	require.NoError(t, err)

	stats, err := f.svc.Dashboard(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.PendingEdits)
	assert.Equal(t, int64(2), stats.TotalUsers)
}
