package storage

import (
	"context"
	"errors"
	"time"

	"github.com/hongminglow/lateral-entry-be/internal/models"
)

// ErrNotFound indicates a record does not exist.
var ErrNotFound = errors.New("record not found")

// ErrAlreadyExists indicates a uniqueness conflict.
var ErrAlreadyExists = errors.New("record already exists")

// UserStore persists approved identities.
type UserStore interface {
	CreateUser(ctx context.Context, user models.User) (models.User, error)
	GetUser(ctx context.Context, id int64) (models.User, error)
	FindUserByGoogleID(ctx context.Context, googleID string) (models.User, error)
	ListUsers(ctx context.Context, q models.UserQuery) ([]models.UserListItem, int64, error)
	UpdateUser(ctx context.Context, id int64, patch models.UserPatch) (models.User, error)
	DeleteUser(ctx context.Context, id int64) error
	TouchLastLogin(ctx context.Context, id int64, at time.Time) error
}

// PendingUserStore persists access requests awaiting an admin decision.
type PendingUserStore interface {
	CreatePendingUser(ctx context.Context, pending models.PendingUser) (models.PendingUser, error)
	GetPendingUser(ctx context.Context, id int64) (models.PendingUser, error)
	FindPendingByGoogleID(ctx context.Context, googleID string) (models.PendingUser, error)
	ListPendingUsers(ctx context.Context) ([]models.PendingUser, error)
	// ApprovePendingUser creates user, removes the pending row and appends entry in one
	// transaction. entry.EntityID is set to the new user id.
	ApprovePendingUser(ctx context.Context, pendingID int64, user models.User, entry models.AuditEntry) (models.User, error)
	// RejectPendingUser removes the pending row and appends entry in one transaction.
	RejectPendingUser(ctx context.Context, pendingID int64, entry models.AuditEntry) error
}

// SessionStore persists sessions. Expiry is decided by the caller.
type SessionStore interface {
	CreateSession(ctx context.Context, session models.Session) error
	FindSession(ctx context.Context, id string) (models.SessionWithUser, error)
	UpdateSessionAccessToken(ctx context.Context, id, accessToken string) error
	DeleteSession(ctx context.Context, id string) error
	DeleteUserSessions(ctx context.Context, userID int64) (int64, error)
	DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error)
	ListUserSessions(ctx context.Context, userID int64, now time.Time) ([]models.Session, error)
}

// ProfileStore persists lateral entrant profiles.
type ProfileStore interface {
	GetProfile(ctx context.Context, id int64) (models.Profile, error)
	ListProfiles(ctx context.Context, q models.ProfileQuery) ([]models.Profile, int64, error)
	// ApplyProfileEdit writes one field and appends entry in one transaction.
	ApplyProfileEdit(ctx context.Context, entrantID int64, field models.ProfileField, value *string, entry models.AuditEntry) error
}

// VisibilityStore persists per-field visibility levels. Absent rows mean public.
type VisibilityStore interface {
	VisibilitySettings(ctx context.Context, entrantIDs ...int64) (map[int64]map[string]string, error)
	// SetVisibility upserts every change and records its history row in one transaction.
	SetVisibility(ctx context.Context, changes ...models.VisibilityChange) error
}

// EditRequestStore persists the field edit moderation queue.
type EditRequestStore interface {
	CreateEditRequest(ctx context.Context, req models.FieldEditRequest) (models.FieldEditRequest, error)
	GetEditRequest(ctx context.Context, id int64) (models.FieldEditRequest, error)
	ListEditRequests(ctx context.Context, status models.EditStatus) ([]models.FieldEditRequest, error)
	ListUserEditRequests(ctx context.Context, userID int64) ([]models.FieldEditRequest, error)
	// ApproveEditRequest applies the requested value to the profile, marks the request
	// approved and appends entry in one transaction.
	ApproveEditRequest(ctx context.Context, id int64, review models.Review, entry models.AuditEntry) error
	// RejectEditRequest marks the request rejected and appends entry in one transaction.
	RejectEditRequest(ctx context.Context, id int64, review models.Review, entry models.AuditEntry) error
}

// UploadStore persists uploaded file metadata.
type UploadStore interface {
	CreateUpload(ctx context.Context, upload models.Upload) (models.Upload, error)
	GetUpload(ctx context.Context, id int64) (models.Upload, error)
	ListUploads(ctx context.Context, status models.EditStatus) ([]models.Upload, error)
	ListUserUploads(ctx context.Context, userID int64) ([]models.Upload, error)
	DeleteUpload(ctx context.Context, id int64) error
	ReviewUpload(ctx context.Context, id int64, review models.Review, entry models.AuditEntry) error
}

// FlagStore persists content reports.
type FlagStore interface {
	CreateFlag(ctx context.Context, flag models.FlaggedContent) (models.FlaggedContent, error)
	GetFlag(ctx context.Context, id int64) (models.FlaggedContent, error)
	ListFlags(ctx context.Context, status string) ([]models.FlaggedContent, error)
	// ResolveFlag marks the flag resolved, removes the reported content when the action
	// is remove, and appends entry in one transaction.
	ResolveFlag(ctx context.Context, id int64, resolution models.FlagResolution, entry models.AuditEntry) error
}

// AuditStore is the append-only audit log.
type AuditStore interface {
	AppendAudit(ctx context.Context, entry models.AuditEntry) error
	ListAudit(ctx context.Context, q models.AuditQuery) ([]models.AuditEntry, int64, error)
}

// SettingsStore persists admin switches.
type SettingsStore interface {
	GetSetting(ctx context.Context, key string) (models.AdminSetting, error)
	ListSettings(ctx context.Context) ([]models.AdminSetting, error)
	// UpdateSetting stores value and appends entry in one transaction. It returns the
	// setting as it was before the change.
	UpdateSetting(ctx context.Context, key, value string, updatedBy int64, entry models.AuditEntry) (models.AdminSetting, error)
}

// StatsStore answers dashboard counters.
type StatsStore interface {
	DashboardStats(ctx context.Context, loginsSince time.Time) (models.DashboardStats, error)
}

// FeedStore persists aggregated social posts, news and jobs. Insert methods return
// ErrAlreadyExists for a duplicate external id or URL.
type FeedStore interface {
	InsertSocialPost(ctx context.Context, post models.SocialPost) error
	ListSocialPosts(ctx context.Context, q models.FeedQuery) ([]models.SocialPost, int64, error)
	InsertNewsArticle(ctx context.Context, article models.NewsArticle) error
	ListNewsArticles(ctx context.Context, q models.FeedQuery) ([]models.NewsArticle, int64, error)
	NewsCategories(ctx context.Context) ([]string, error)
	InsertJob(ctx context.Context, job models.JobListing) error
	ListJobs(ctx context.Context, q models.FeedQuery) ([]models.JobListing, int64, error)
	JobDomains(ctx context.Context) ([]string, error)
}

// JobStore persists per-user job preferences and bookmarks.
type JobStore interface {
	GetJobPreferences(ctx context.Context, userID int64) (models.JobPreferences, error)
	SaveJobPreferences(ctx context.Context, prefs models.JobPreferences) error
	SaveJob(ctx context.Context, userID, jobID int64) error
	UnsaveJob(ctx context.Context, userID, jobID int64) error
	ListSavedJobs(ctx context.Context, userID int64) ([]models.JobListing, error)
}

// LinkedInStore persists LinkedIn connections and sync history.
type LinkedInStore interface {
	UpsertLinkedInConnection(ctx context.Context, conn models.LinkedInConnection) error
	GetLinkedInConnection(ctx context.Context, userID int64) (models.LinkedInConnection, error)
	DeleteLinkedInConnection(ctx context.Context, userID int64) error
	RecordLinkedInSync(ctx context.Context, sync models.LinkedInSync) error
}

// AIStore persists generated suggestions and usage counters.
type AIStore interface {
	CreateSuggestion(ctx context.Context, s models.AISuggestion, tokensUsed int) (models.AISuggestion, error)
	GetSuggestion(ctx context.Context, id int64) (models.AISuggestion, error)
	AcceptSuggestion(ctx context.Context, id int64, at time.Time) error
	AIUsageStats(ctx context.Context, userID int64) ([]models.AIUsageStat, error)
}
