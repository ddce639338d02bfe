// Package storagetest provides an in-memory implementation of every storage interface for
// service and handler tests.
package storagetest

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/hongminglow/lateral-entry-be/internal/models"
	"github.com/hongminglow/lateral-entry-be/internal/storage"
)

var (
	_ storage.UserStore        = (*Memory)(nil)
	_ storage.PendingUserStore = (*Memory)(nil)
	_ storage.SessionStore     = (*Memory)(nil)
	_ storage.ProfileStore     = (*Memory)(nil)
	_ storage.VisibilityStore  = (*Memory)(nil)
	_ storage.EditRequestStore = (*Memory)(nil)
	_ storage.UploadStore      = (*Memory)(nil)
	_ storage.FlagStore        = (*Memory)(nil)
	_ storage.AuditStore       = (*Memory)(nil)
	_ storage.SettingsStore    = (*Memory)(nil)
	_ storage.StatsStore       = (*Memory)(nil)
	_ storage.FeedStore        = (*Memory)(nil)
	_ storage.JobStore         = (*Memory)(nil)
	_ storage.LinkedInStore    = (*Memory)(nil)
	_ storage.AIStore          = (*Memory)(nil)
)

// Memory is a mutex-guarded map store. Fields are exported so tests can seed and inspect
// state directly; take no lock when doing so from a single goroutine.
type Memory struct {
	mu  sync.Mutex
	seq int64

	Users        map[int64]models.User
	Pending      map[int64]models.PendingUser
	Sessions     map[string]models.Session
	Profiles     map[int64]models.Profile
	Visibility   map[int64]map[string]string
	VisHistory   []models.VisibilityChange
	EditRequests map[int64]models.FieldEditRequest
	Uploads      map[int64]models.Upload
	Flags        map[int64]models.FlaggedContent
	Audit        []models.AuditEntry
	Settings     map[string]models.AdminSetting
	Posts        []models.SocialPost
	Articles     []models.NewsArticle
	Jobs         []models.JobListing
	JobPrefs     map[int64]models.JobPreferences
	SavedJobs    map[int64][]int64
	LinkedIn     map[int64]models.LinkedInConnection
	Syncs        []models.LinkedInSync
	Suggestions  map[int64]models.AISuggestion
	Usage        []usage

	// Now stamps created and updated times.
	Now func() time.Time
}

type usage struct {
	userID  int64
	feature string
	tokens  int
}

// New returns an empty store seeded with moderation enabled.
func New() *Memory {
	return &Memory{
		Users:        map[int64]models.User{},
		Pending:      map[int64]models.PendingUser{},
		Sessions:     map[string]models.Session{},
		Profiles:     map[int64]models.Profile{},
		Visibility:   map[int64]map[string]string{},
		EditRequests: map[int64]models.FieldEditRequest{},
		Uploads:      map[int64]models.Upload{},
		Flags:        map[int64]models.FlaggedContent{},
		Settings: map[string]models.AdminSetting{
			models.SettingModerationEnabled: {
				Key:         models.SettingModerationEnabled,
				Value:       "true",
				Description: "Require admin approval for profile edits",
			},
		},
		JobPrefs:    map[int64]models.JobPreferences{},
		SavedJobs:   map[int64][]int64{},
		LinkedIn:    map[int64]models.LinkedInConnection{},
		Suggestions: map[int64]models.AISuggestion{},
		Now:         time.Now,
	}
}

func (m *Memory) next() int64 {
	m.seq++
	return m.seq
}

func (m *Memory) appendAudit(entry models.AuditEntry) {
	entry.ID = m.next()
	entry.CreatedAt = m.Now()
	m.Audit = append(m.Audit, entry)
}

func page(total, pageNum, perPage int) (int, int) {
	if perPage <= 0 {
		perPage = 20
	}
	if pageNum <= 0 {
		pageNum = 1
	}
	start := (pageNum - 1) * perPage
	if start > total {
		start = total
	}
	end := start + perPage
	if end > total {
		end = total
	}
	return start, end
}

func contains(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

// AddUser seeds an approved, active user and returns it with its id.
func (m *Memory) AddUser(user models.User) models.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	if user.ID == 0 {
		user.ID = m.next()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = m.Now()
	}
	m.Users[user.ID] = user
	return user
}

// AddProfile seeds a profile and returns it with its id.
func (m *Memory) AddProfile(profile models.Profile) models.Profile {
	m.mu.Lock()
	defer m.mu.Unlock()
	if profile.ID == 0 {
		profile.ID = m.next()
	}
	m.Profiles[profile.ID] = profile
	return profile
}

// AuditActions lists logged actions in order.
func (m *Memory) AuditActions() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.Audit))
	for _, e := range m.Audit {
		out = append(out, e.Action)
	}
	return out
}

// Users

func (m *Memory) CreateUser(_ context.Context, user models.User) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.createUser(user)
}

func (m *Memory) createUser(user models.User) (models.User, error) {
	for _, u := range m.Users {
		if u.GoogleID == user.GoogleID || strings.EqualFold(u.Email, user.Email) {
			return models.User{}, storage.ErrAlreadyExists
		}
	}
	user.ID = m.next()
	user.CreatedAt = m.Now()
	m.Users[user.ID] = user
	return user, nil
}

func (m *Memory) GetUser(_ context.Context, id int64) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.Users[id]
	if !ok {
		return models.User{}, storage.ErrNotFound
	}
	return u, nil
}

func (m *Memory) FindUserByGoogleID(_ context.Context, googleID string) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.Users {
		if u.GoogleID == googleID {
			return u, nil
		}
	}
	return models.User{}, storage.ErrNotFound
}

func (m *Memory) ListUsers(_ context.Context, q models.UserQuery) ([]models.UserListItem, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var all []models.UserListItem
	for _, u := range m.Users {
		if q.Search != "" && !contains(u.Name, q.Search) && !contains(u.Email, q.Search) {
			continue
		}
		item := models.UserListItem{User: u}
		if u.EntrantID != nil {
			if p, ok := m.Profiles[*u.EntrantID]; ok {
				name := p.Name
				item.EntrantName = &name
			}
		}
		all = append(all, item)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID > all[j].ID })
	start, end := page(len(all), q.Page, q.PerPage)
	return all[start:end], int64(len(all)), nil
}

func (m *Memory) UpdateUser(_ context.Context, id int64, patch models.UserPatch) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.Users[id]
	if !ok {
		return models.User{}, storage.ErrNotFound
	}
	if patch.Role != nil {
		u.Role = *patch.Role
	}
	if patch.IsActive != nil {
		u.IsActive = *patch.IsActive
	}
	if patch.ClearEntrantID {
		u.EntrantID = nil
	} else if patch.EntrantID != nil {
		v := *patch.EntrantID
		u.EntrantID = &v
	}
	m.Users[id] = u
	return u, nil
}

func (m *Memory) DeleteUser(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.Users[id]; !ok {
		return storage.ErrNotFound
	}
	delete(m.Users, id)
	for sid, s := range m.Sessions {
		if s.UserID == id {
			delete(m.Sessions, sid)
		}
	}
	return nil
}

func (m *Memory) TouchLastLogin(_ context.Context, id int64, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.Users[id]
	if !ok {
		return storage.ErrNotFound
	}
	u.LastLogin = &at
	m.Users[id] = u
	return nil
}

// Pending users

func (m *Memory) CreatePendingUser(_ context.Context, pending models.PendingUser) (models.PendingUser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.Pending {
		if p.GoogleID == pending.GoogleID {
			return models.PendingUser{}, storage.ErrAlreadyExists
		}
	}
	pending.ID = m.next()
	pending.RequestedAt = m.Now()
	m.Pending[pending.ID] = pending
	return pending, nil
}

func (m *Memory) GetPendingUser(_ context.Context, id int64) (models.PendingUser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.Pending[id]
	if !ok {
		return models.PendingUser{}, storage.ErrNotFound
	}
	return p, nil
}

func (m *Memory) FindPendingByGoogleID(_ context.Context, googleID string) (models.PendingUser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.Pending {
		if p.GoogleID == googleID {
			return p, nil
		}
	}
	return models.PendingUser{}, storage.ErrNotFound
}

func (m *Memory) ListPendingUsers(_ context.Context) ([]models.PendingUser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.PendingUser, 0, len(m.Pending))
	for _, p := range m.Pending {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (m *Memory) ApprovePendingUser(_ context.Context, pendingID int64, user models.User, entry models.AuditEntry) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.Pending[pendingID]; !ok {
		return models.User{}, storage.ErrNotFound
	}
	created, err := m.createUser(user)
	if err != nil {
		return models.User{}, err
	}
	delete(m.Pending, pendingID)
	entry.EntityID = strconv.FormatInt(created.ID, 10)
	m.appendAudit(entry)
	return created, nil
}

func (m *Memory) RejectPendingUser(_ context.Context, pendingID int64, entry models.AuditEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.Pending[pendingID]; !ok {
		return storage.ErrNotFound
	}
	delete(m.Pending, pendingID)
	m.appendAudit(entry)
	return nil
}

// Sessions

func (m *Memory) CreateSession(_ context.Context, session models.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.Sessions[session.ID]; ok {
		return storage.ErrAlreadyExists
	}
	m.Sessions[session.ID] = session
	return nil
}

func (m *Memory) FindSession(_ context.Context, id string) (models.SessionWithUser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.Sessions[id]
	if !ok {
		return models.SessionWithUser{}, storage.ErrNotFound
	}
	u, ok := m.Users[s.UserID]
	if !ok {
		return models.SessionWithUser{}, storage.ErrNotFound
	}
	return models.SessionWithUser{Session: s, User: u}, nil
}

func (m *Memory) UpdateSessionAccessToken(_ context.Context, id, accessToken string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.Sessions[id]
	if !ok {
		return storage.ErrNotFound
	}
	s.AccessToken = accessToken
	m.Sessions[id] = s
	return nil
}

func (m *Memory) DeleteSession(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.Sessions, id)
	return nil
}

func (m *Memory) DeleteUserSessions(_ context.Context, userID int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for id, s := range m.Sessions {
		if s.UserID == userID {
			delete(m.Sessions, id)
			n++
		}
	}
	return n, nil
}

func (m *Memory) DeleteExpiredSessions(_ context.Context, now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for id, s := range m.Sessions {
		if !s.ExpiresAt.After(now) {
			delete(m.Sessions, id)
			n++
		}
	}
	return n, nil
}

func (m *Memory) ListUserSessions(_ context.Context, userID int64, now time.Time) ([]models.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Session
	for _, s := range m.Sessions {
		if s.UserID == userID && s.ExpiresAt.After(now) {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// Profiles and visibility

func (m *Memory) GetProfile(_ context.Context, id int64) (models.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.Profiles[id]
	if !ok {
		return models.Profile{}, storage.ErrNotFound
	}
	return p, nil
}

func (m *Memory) ListProfiles(_ context.Context, q models.ProfileQuery) ([]models.Profile, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var all []models.Profile
	for _, p := range m.Profiles {
		if q.Search != "" && !contains(p.Name, q.Search) && !contains(deref(p.Position), q.Search) {
			continue
		}
		all = append(all, p)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Name < all[j].Name })
	start, end := page(len(all), q.Page, q.PerPage)
	return all[start:end], int64(len(all)), nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func (m *Memory) ApplyProfileEdit(_ context.Context, entrantID int64, field models.ProfileField, value *string, entry models.AuditEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.setField(entrantID, field, value); err != nil {
		return err
	}
	m.appendAudit(entry)
	return nil
}

func (m *Memory) setField(entrantID int64, field models.ProfileField, value *string) error {
	p, ok := m.Profiles[entrantID]
	if !ok {
		return storage.ErrNotFound
	}
	p.Set(field, value)
	p.UpdatedAt = m.Now()
	m.Profiles[entrantID] = p
	return nil
}

func (m *Memory) VisibilitySettings(_ context.Context, entrantIDs ...int64) (map[int64]map[string]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[int64]map[string]string, len(entrantIDs))
	for _, id := range entrantIDs {
		levels := map[string]string{}
		for field, level := range m.Visibility[id] {
			levels[field] = level
		}
		out[id] = levels
	}
	return out, nil
}

func (m *Memory) SetVisibility(_ context.Context, changes ...models.VisibilityChange) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range changes {
		if m.Visibility[c.EntrantID] == nil {
			m.Visibility[c.EntrantID] = map[string]string{}
		}
		m.Visibility[c.EntrantID][c.FieldName] = c.NewVisibility
		m.VisHistory = append(m.VisHistory, c)
	}
	return nil
}

// Field edit requests

func (m *Memory) CreateEditRequest(_ context.Context, req models.FieldEditRequest) (models.FieldEditRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	req.ID = m.next()
	req.CreatedAt = m.Now()
	if req.Status == "" {
		req.Status = models.EditPending
	}
	m.EditRequests[req.ID] = req
	return req, nil
}

func (m *Memory) GetEditRequest(_ context.Context, id int64) (models.FieldEditRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.EditRequests[id]
	if !ok {
		return models.FieldEditRequest{}, storage.ErrNotFound
	}
	return r, nil
}

func (m *Memory) ListEditRequests(_ context.Context, status models.EditStatus) ([]models.FieldEditRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.FieldEditRequest
	for _, r := range m.EditRequests {
		if r.Status == status {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (m *Memory) ListUserEditRequests(_ context.Context, userID int64) ([]models.FieldEditRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.FieldEditRequest
	for _, r := range m.EditRequests {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (m *Memory) ApproveEditRequest(_ context.Context, id int64, review models.Review, entry models.AuditEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.EditRequests[id]
	if !ok {
		return storage.ErrNotFound
	}
	if err := m.setField(r.EntrantID, r.FieldName, r.AppliedValue()); err != nil {
		return err
	}
	m.EditRequests[id] = reviewed(r, review)
	m.appendAudit(entry)
	return nil
}

func (m *Memory) RejectEditRequest(_ context.Context, id int64, review models.Review, entry models.AuditEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.EditRequests[id]
	if !ok {
		return storage.ErrNotFound
	}
	m.EditRequests[id] = reviewed(r, review)
	m.appendAudit(entry)
	return nil
}

func reviewed(r models.FieldEditRequest, review models.Review) models.FieldEditRequest {
	at := review.At
	by := review.ReviewerID
	r.Status = review.Status
	r.ReviewedBy = &by
	r.ReviewedAt = &at
	r.RejectionReason = review.Reason
	return r
}

// Uploads

func (m *Memory) CreateUpload(_ context.Context, upload models.Upload) (models.Upload, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	upload.ID = m.next()
	upload.UploadedAt = m.Now()
	if upload.ModerationStatus == "" {
		upload.ModerationStatus = models.EditPending
	}
	m.Uploads[upload.ID] = upload
	return upload, nil
}

func (m *Memory) GetUpload(_ context.Context, id int64) (models.Upload, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.Uploads[id]
	if !ok {
		return models.Upload{}, storage.ErrNotFound
	}
	return u, nil
}

func (m *Memory) ListUploads(_ context.Context, status models.EditStatus) ([]models.Upload, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Upload
	for _, u := range m.Uploads {
		if u.ModerationStatus == status {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (m *Memory) ListUserUploads(_ context.Context, userID int64) ([]models.Upload, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Upload
	for _, u := range m.Uploads {
		if u.UserID == userID {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (m *Memory) DeleteUpload(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.Uploads[id]; !ok {
		return storage.ErrNotFound
	}
	delete(m.Uploads, id)
	return nil
}

func (m *Memory) ReviewUpload(_ context.Context, id int64, review models.Review, entry models.AuditEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.Uploads[id]
	if !ok {
		return storage.ErrNotFound
	}
	at := review.At
	by := review.ReviewerID
	u.ModerationStatus = review.Status
	u.ModeratedBy = &by
	u.ModeratedAt = &at
	u.RejectionReason = review.Reason
	m.Uploads[id] = u
	m.appendAudit(entry)
	return nil
}

// Flags

func (m *Memory) CreateFlag(_ context.Context, flag models.FlaggedContent) (models.FlaggedContent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	flag.ID = m.next()
	flag.ReportedAt = m.Now()
	if flag.Status == "" {
		flag.Status = "pending"
	}
	m.Flags[flag.ID] = flag
	return flag, nil
}

func (m *Memory) GetFlag(_ context.Context, id int64) (models.FlaggedContent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.Flags[id]
	if !ok {
		return models.FlaggedContent{}, storage.ErrNotFound
	}
	return f, nil
}

func (m *Memory) ListFlags(_ context.Context, status string) ([]models.FlaggedContent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.FlaggedContent
	for _, f := range m.Flags {
		if f.Status == status {
			out = append(out, f)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (m *Memory) ResolveFlag(_ context.Context, id int64, resolution models.FlagResolution, entry models.AuditEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.Flags[id]
	if !ok {
		return storage.ErrNotFound
	}
	if resolution.Action == models.FlagActionRemove {
		switch f.ContentType {
		case models.FlagProfileField:
			field, err := models.ParseProfileField(f.ContentID)
			if err != nil || f.EntrantID == nil {
				return storage.ErrNotFound
			}
			if err := m.setField(*f.EntrantID, field, nil); err != nil {
				return err
			}
		case models.FlagUpload:
			uploadID, _ := strconv.ParseInt(f.ContentID, 10, 64)
			delete(m.Uploads, uploadID)
		}
	}
	at := resolution.At
	by := resolution.ResolverID
	notes := resolution.Notes
	f.Status = "resolved"
	f.ResolvedBy = &by
	f.ResolvedAt = &at
	f.AdminNotes = &notes
	m.Flags[id] = f
	m.appendAudit(entry)
	return nil
}

// Audit and settings

func (m *Memory) AppendAudit(_ context.Context, entry models.AuditEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.appendAudit(entry)
	return nil
}

func (m *Memory) ListAudit(_ context.Context, q models.AuditQuery) ([]models.AuditEntry, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var all []models.AuditEntry
	for i := len(m.Audit) - 1; i >= 0; i-- {
		if q.Action == "" || m.Audit[i].Action == q.Action {
			all = append(all, m.Audit[i])
		}
	}
	start, end := page(len(all), q.Page, q.PerPage)
	return all[start:end], int64(len(all)), nil
}

func (m *Memory) GetSetting(_ context.Context, key string) (models.AdminSetting, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.Settings[key]
	if !ok {
		return models.AdminSetting{}, storage.ErrNotFound
	}
	return s, nil
}

func (m *Memory) ListSettings(_ context.Context) ([]models.AdminSetting, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.AdminSetting, 0, len(m.Settings))
	for _, s := range m.Settings {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func (m *Memory) UpdateSetting(_ context.Context, key, value string, updatedBy int64, entry models.AuditEntry) (models.AdminSetting, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	old, ok := m.Settings[key]
	if !ok {
		return models.AdminSetting{}, storage.ErrNotFound
	}
	now := m.Now()
	updated := old
	updated.Value = value
	updated.UpdatedAt = &now
	updated.UpdatedBy = &updatedBy
	m.Settings[key] = updated
	m.appendAudit(entry)
	return old, nil
}

func (m *Memory) DashboardStats(_ context.Context, loginsSince time.Time) (models.DashboardStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stats := models.DashboardStats{PendingApprovals: int64(len(m.Pending))}
	for _, u := range m.Users {
		if u.IsActive {
			stats.TotalUsers++
		}
	}
	for _, r := range m.EditRequests {
		if r.Status == models.EditPending {
			stats.PendingEdits++
		}
	}
	for _, u := range m.Uploads {
		if u.ModerationStatus == models.EditPending {
			stats.PendingUploads++
		}
	}
	for _, f := range m.Flags {
		if f.Status == "pending" {
			stats.FlaggedContent++
		}
	}
	seen := map[int64]bool{}
	for _, s := range m.Sessions {
		if !s.CreatedAt.Before(loginsSince) && !seen[s.UserID] {
			seen[s.UserID] = true
			stats.RecentLogins++
		}
	}
	return stats, nil
}

// Feed

func (m *Memory) InsertSocialPost(_ context.Context, post models.SocialPost) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.Posts {
		if p.ExternalID == post.ExternalID {
			return storage.ErrAlreadyExists
		}
	}
	post.ID = m.next()
	m.Posts = append(m.Posts, post)
	return nil
}

func (m *Memory) ListSocialPosts(_ context.Context, q models.FeedQuery) ([]models.SocialPost, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var all []models.SocialPost
	for _, p := range m.Posts {
		if q.Filter == "" || p.Platform == q.Filter {
			all = append(all, p)
		}
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i].PostedAt.After(all[j].PostedAt) })
	start, end := page(len(all), q.Page, q.PerPage)
	return all[start:end], int64(len(all)), nil
}

func (m *Memory) InsertNewsArticle(_ context.Context, article models.NewsArticle) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.Articles {
		if a.ArticleURL == article.ArticleURL {
			return storage.ErrAlreadyExists
		}
	}
	article.ID = m.next()
	m.Articles = append(m.Articles, article)
	return nil
}

func (m *Memory) ListNewsArticles(_ context.Context, q models.FeedQuery) ([]models.NewsArticle, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var all []models.NewsArticle
	for _, a := range m.Articles {
		if q.Filter == "" || a.Category == q.Filter {
			all = append(all, a)
		}
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i].PublishedAt.After(all[j].PublishedAt) })
	start, end := page(len(all), q.Page, q.PerPage)
	return all[start:end], int64(len(all)), nil
}

func (m *Memory) NewsCategories(_ context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	seen := map[string]bool{}
	var out []string
	for _, a := range m.Articles {
		if a.Category != "" && !seen[a.Category] {
			seen[a.Category] = true
			out = append(out, a.Category)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (m *Memory) InsertJob(_ context.Context, job models.JobListing) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, j := range m.Jobs {
		if j.ExternalID == job.ExternalID {
			return storage.ErrAlreadyExists
		}
	}
	job.ID = m.next()
	if job.Status == "" {
		job.Status = "active"
	}
	m.Jobs = append(m.Jobs, job)
	return nil
}

func (m *Memory) ListJobs(_ context.Context, q models.FeedQuery) ([]models.JobListing, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var all []models.JobListing
	for _, j := range m.Jobs {
		if j.Status != "active" {
			continue
		}
		if q.Filter != "" && j.Domain != q.Filter {
			continue
		}
		if q.Search != "" && !contains(j.Title, q.Search) && !contains(j.Description, q.Search) {
			continue
		}
		all = append(all, j)
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i].PostedDate.After(all[j].PostedDate) })
	start, end := page(len(all), q.Page, q.PerPage)
	return all[start:end], int64(len(all)), nil
}

func (m *Memory) JobDomains(_ context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	seen := map[string]bool{}
	var out []string
	for _, j := range m.Jobs {
		if j.Domain != "" && !seen[j.Domain] {
			seen[j.Domain] = true
			out = append(out, j.Domain)
		}
	}
	sort.Strings(out)
	return out, nil
}

// Jobs

func (m *Memory) GetJobPreferences(_ context.Context, userID int64) (models.JobPreferences, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.JobPrefs[userID]
	if !ok {
		return models.JobPreferences{}, storage.ErrNotFound
	}
	return p, nil
}

func (m *Memory) SaveJobPreferences(_ context.Context, prefs models.JobPreferences) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.JobPrefs[prefs.UserID] = prefs
	return nil
}

func (m *Memory) SaveJob(_ context.Context, userID, jobID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	found := false
	for _, j := range m.Jobs {
		if j.ID == jobID {
			found = true
		}
	}
	if !found {
		return storage.ErrNotFound
	}
	for _, id := range m.SavedJobs[userID] {
		if id == jobID {
			return storage.ErrAlreadyExists
		}
	}
	m.SavedJobs[userID] = append(m.SavedJobs[userID], jobID)
	return nil
}

func (m *Memory) UnsaveJob(_ context.Context, userID, jobID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := m.SavedJobs[userID]
	for i, id := range ids {
		if id == jobID {
			m.SavedJobs[userID] = append(ids[:i], ids[i+1:]...)
			break
		}
	}
	return nil
}

func (m *Memory) ListSavedJobs(_ context.Context, userID int64) ([]models.JobListing, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.JobListing
	ids := m.SavedJobs[userID]
	for i := len(ids) - 1; i >= 0; i-- {
		for _, j := range m.Jobs {
			if j.ID == ids[i] {
				out = append(out, j)
			}
		}
	}
	return out, nil
}

// LinkedIn

func (m *Memory) UpsertLinkedInConnection(_ context.Context, conn models.LinkedInConnection) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if conn.ConnectedAt.IsZero() {
		conn.ConnectedAt = m.Now()
	}
	m.LinkedIn[conn.UserID] = conn
	return nil
}

func (m *Memory) GetLinkedInConnection(_ context.Context, userID int64) (models.LinkedInConnection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.LinkedIn[userID]
	if !ok {
		return models.LinkedInConnection{}, storage.ErrNotFound
	}
	return c, nil
}

func (m *Memory) DeleteLinkedInConnection(_ context.Context, userID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.LinkedIn, userID)
	return nil
}

func (m *Memory) RecordLinkedInSync(_ context.Context, sync models.LinkedInSync) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Syncs = append(m.Syncs, sync)
	return nil
}

// AI

func (m *Memory) CreateSuggestion(_ context.Context, s models.AISuggestion, tokensUsed int) (models.AISuggestion, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s.ID = m.next()
	s.CreatedAt = m.Now()
	m.Suggestions[s.ID] = s
	m.Usage = append(m.Usage, usage{userID: s.UserID, feature: s.SuggestionType, tokens: tokensUsed})
	return s, nil
}

func (m *Memory) GetSuggestion(_ context.Context, id int64) (models.AISuggestion, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.Suggestions[id]
	if !ok {
		return models.AISuggestion{}, storage.ErrNotFound
	}
	return s, nil
}

func (m *Memory) AcceptSuggestion(_ context.Context, id int64, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.Suggestions[id]
	if !ok {
		return storage.ErrNotFound
	}
	s.Status = "accepted"
	s.AcceptedAt = &at
	m.Suggestions[id] = s
	return nil
}

func (m *Memory) AIUsageStats(_ context.Context, userID int64) ([]models.AIUsageStat, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	byFeature := map[string]*models.AIUsageStat{}
	for _, u := range m.Usage {
		if u.userID != userID {
			continue
		}
		stat, ok := byFeature[u.feature]
		if !ok {
			stat = &models.AIUsageStat{FeatureType: u.feature}
			byFeature[u.feature] = stat
		}
		stat.Count++
		stat.TotalTokens += int64(u.tokens)
	}
	out := make([]models.AIUsageStat, 0, len(byFeature))
	for _, s := range byFeature {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FeatureType < out[j].FeatureType })
	return out, nil
}
