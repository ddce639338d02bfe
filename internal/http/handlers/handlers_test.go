package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/hongminglow/lateral-entry-be/internal/ai"
	"github.com/hongminglow/lateral-entry-be/internal/auth"
	"github.com/hongminglow/lateral-entry-be/internal/config"
	"github.com/hongminglow/lateral-entry-be/internal/feed"
	"github.com/hongminglow/lateral-entry-be/internal/middleware"
	"github.com/hongminglow/lateral-entry-be/internal/models"
	"github.com/hongminglow/lateral-entry-be/internal/moderation"
	"github.com/hongminglow/lateral-entry-be/internal/profiles"
	"github.com/hongminglow/lateral-entry-be/internal/storage/storagetest"
)

const testKey = "MDEyMzQ1Njc4OWFiY2RlZjAxMjM0NTY3ODlhYmNkZWY="

type fakeGoogle struct {
	identity auth.Identity
	err      error
}

func (f fakeGoogle) Configured() bool { return true }

func (f fakeGoogle) AuthCodeURL(state string) string {
	return "https://accounts.example/auth?state=" + url.QueryEscape(state)
}

func (f fakeGoogle) Exchange(context.Context, string) (auth.Identity, *oauth2.Token, error) {
	return f.identity, nil, f.err
}

type env struct {
	mux      *http.ServeMux
	store    *storagetest.Memory
	sessions *auth.SessionManager
	states   *auth.StateSigner
	google   *fakeGoogle
	profile  models.Profile
	owner    models.User
	admin    models.User
	other    models.User
}

func newEnv(t *testing.T) *env {
	t.Helper()
	store := storagetest.New()
	sessions := auth.NewSessionManager(store, auth.NewTokenCodec(testKey), nil, time.Hour, nil)
	resolver := auth.NewResolver(store, store, store, sessions, nil)
	accounts := auth.NewAccounts(store, store, sessions, nil)
	states := auth.NewStateSigner("test-secret", "test")
	gate := middleware.NewGate(sessions, nil)
	mod := moderation.New(moderation.Stores{
		Profiles: store, Edits: store, Uploads: store, Flags: store,
		Settings: store, Audit: store, Stats: store,
	}, moderation.NewFiles(t.TempDir()), nil)
	google := &fakeGoogle{}

	mux := http.NewServeMux()
	NewHealthHandler(time.Now(), nil, nil).Register(mux)
	NewAuthHandler(google, resolver, sessions, states, false, nil).Register(mux, gate)
	NewAdminHandler(resolver, accounts, mod, nil).Register(mux, gate)
	NewModerationHandler(mod).Register(mux, gate)
	NewProfileHandler(profiles.NewService(store, store, nil), mod).Register(mux, gate)
	NewUploadHandler(mod).Register(mux, gate)
	NewFeedHandler(feed.NewService(feed.NewMonitor(config.MonitorConfig{}, nil, nil), store, store, nil)).Register(mux, gate)
	NewAIHandler(ai.NewService(ai.NewClient(config.AIConfig{}, nil), store, nil)).Register(mux, gate)

	bio := "private bio"
	dept := "Finance"
	profile := store.AddProfile(models.Profile{Name: "Asha Rao", Bio: &bio, Department: &dept})
	store.Visibility[profile.ID] = map[string]string{"bio": "private"}

	e := &env{mux: mux, store: store, sessions: sessions, states: states, google: google, profile: profile}
	e.owner = store.AddUser(models.User{GoogleID: "g-owner", Email: "asha@example.org", Name: "Asha", Role: models.RoleAppointee, IsApproved: true, IsActive: true, EntrantID: &profile.ID})
	e.admin = store.AddUser(models.User{GoogleID: "g-admin", Email: "admin@example.org", Name: "Admin", Role: models.RoleAdmin, IsApproved: true, IsActive: true})
	e.other = store.AddUser(models.User{GoogleID: "g-other", Email: "ravi@example.org", Name: "Ravi", Role: models.RoleAppointee, IsApproved: true, IsActive: true})
	return e
}

func (e *env) login(t *testing.T, user models.User) *http.Cookie {
	t.Helper()
	id, err := e.sessions.Create(context.Background(), user.ID, "10.0.0.1", "test", nil)
	require.NoError(t, err)
	return &http.Cookie{Name: middleware.SessionCookie, Value: id}
}

func (e *env) do(t *testing.T, method, target string, body any, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	e.mux.ServeHTTP(rec, req)
	return rec
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder, data any) envelope {
	t.Helper()
	var out envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	if data != nil {
		require.NoError(t, json.Unmarshal(out.Data, data))
	}
	return out
}

func TestHealth(t *testing.T) {
	e := newEnv(t)
	for _, path := range []string{"/health", "/api/health"} {
		rec := e.do(t, http.MethodGet, path, nil, nil)
		assert.Equal(t, http.StatusOK, rec.Code, path)
		var body map[string]string
		decodeEnvelope(t, rec, &body)
		assert.Equal(t, "healthy", body["status"])
	}
}

func TestGoogleLoginSetsStateCookie(t *testing.T) {
	e := newEnv(t)
	rec := e.do(t, http.MethodGet, "/api/auth/google/login", nil, nil)

	require.Equal(t, http.StatusFound, rec.Code)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, stateCookie, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)
	assert.Contains(t, rec.Header().Get("Location"), url.QueryEscape(cookies[0].Value))
}

func TestGoogleRoutesWithoutCredentials(t *testing.T) {
	h := NewAuthHandler(nil, nil, nil, auth.NewStateSigner("s", "test"), false, nil)
	for _, target := range []string{"/api/auth/google/login", "/api/auth/google/callback?state=x&code=y"} {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, target, nil)
		if strings.Contains(target, "login") {
			h.handleLogin(rec, req)
		} else {
			h.handleCallback(rec, req)
		}
		assert.Equal(t, http.StatusInternalServerError, rec.Code, target)
		assert.Empty(t, rec.Header().Get("Location"), target)
		assert.Empty(t, rec.Result().Cookies(), target)
	}
}

func callback(t *testing.T, e *env, state, cookieState, code string) *httptest.ResponseRecorder {
	t.Helper()
	target := "/api/auth/google/callback?state=" + url.QueryEscape(state) + "&code=" + code
	req := httptest.NewRequest(http.MethodGet, target, nil)
	if cookieState != "" {
		req.AddCookie(&http.Cookie{Name: stateCookie, Value: cookieState})
	}
	rec := httptest.NewRecorder()
	e.mux.ServeHTTP(rec, req)
	return rec
}

func TestGoogleCallbackRejectsBadState(t *testing.T) {
	e := newEnv(t)
	state, err := e.states.Issue(statePurpose, 0)
	require.NoError(t, err)

	assert.Equal(t, http.StatusBadRequest, callback(t, e, state, "", "c").Code)
	assert.Equal(t, http.StatusBadRequest, callback(t, e, state, state+"x", "c").Code)
	assert.Equal(t, http.StatusBadRequest, callback(t, e, "forged", "forged", "c").Code)

	rec := callback(t, e, state, state, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "No authorization code received", decodeEnvelope(t, rec, nil).Message)
}

func TestGoogleCallbackOutcomes(t *testing.T) {
	e := newEnv(t)
	state, err := e.states.Issue(statePurpose, 0)
	require.NoError(t, err)

	e.google.identity = auth.Identity{Subject: "g-new", Email: "new@example.org", Name: "New", EmailVerified: true}
	rec := callback(t, e, state, state, "code")
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, requestedPage, rec.Header().Get("Location"))

	rec = callback(t, e, state, state, "code")
	assert.Equal(t, pendingPage, rec.Header().Get("Location"))
	assert.Len(t, e.store.Pending, 1)

	e.google.identity = auth.Identity{Subject: "g-owner", Email: "asha@example.org", EmailVerified: true}
	rec = callback(t, e, state, state, "code")
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))
	var session *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == middleware.SessionCookie {
			session = c
		}
	}
	require.NotNil(t, session)
	assert.True(t, session.HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, session.SameSite)
	assert.Equal(t, int(time.Hour.Seconds()), session.MaxAge)
	assert.Contains(t, e.store.Sessions, session.Value)
}

func TestGoogleCallbackUpstreamFailure(t *testing.T) {
	e := newEnv(t)
	state, err := e.states.Issue(statePurpose, 0)
	require.NoError(t, err)
	e.google.err = errors.New("boom")

	rec := callback(t, e, state, state, "code")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestMeAndLogout(t *testing.T) {
	e := newEnv(t)
	rec := e.do(t, http.MethodGet, "/api/auth/me", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	var anon map[string]any
	decodeEnvelope(t, rec, &anon)
	assert.Equal(t, false, anon["authenticated"])

	cookie := e.login(t, e.owner)
	rec = e.do(t, http.MethodGet, "/api/auth/me", nil, cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	var me struct {
		Authenticated bool               `json:"authenticated"`
		User          models.UserContext `json:"user"`
	}
	decodeEnvelope(t, rec, &me)
	assert.True(t, me.Authenticated)
	assert.Equal(t, e.owner.ID, me.User.UserID)

	rec = e.do(t, http.MethodPost, "/api/auth/logout", nil, cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, e.store.Sessions, cookie.Value)
	assert.Contains(t, e.store.AuditActions(), models.ActionLogout)

	rec = e.do(t, http.MethodGet, "/api/auth/me", nil, cookie)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAdminRoutesAreGated(t *testing.T) {
	e := newEnv(t)

	rec := e.do(t, http.MethodGet, "/api/admin/users", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = e.do(t, http.MethodGet, "/api/admin/users", nil, e.login(t, e.owner))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = e.do(t, http.MethodGet, "/api/admin/users", nil, e.login(t, e.admin))
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Users      []models.UserListItem `json:"users"`
		Pagination models.Pagination     `json:"pagination"`
	}
	decodeEnvelope(t, rec, &body)
	assert.Len(t, body.Users, 3)
	assert.Equal(t, int64(3), body.Pagination.Total)
}

func TestAdminDeactivationEndsSessions(t *testing.T) {
	e := newEnv(t)
	victim := e.login(t, e.other)
	admin := e.login(t, e.admin)

	rec := e.do(t, http.MethodPatch, "/api/admin/users/"+strconv.FormatInt(e.other.ID, 10), map[string]any{"is_active": false}, admin)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = e.do(t, http.MethodGet, "/api/profiles/me", nil, victim)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAdminUpdateSettingValidates(t *testing.T) {
	e := newEnv(t)
	admin := e.login(t, e.admin)

	rec := e.do(t, http.MethodPatch, "/api/admin/settings/"+models.SettingModerationEnabled, map[string]string{}, admin)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "value is required", decodeEnvelope(t, rec, nil).Message)

	rec = e.do(t, http.MethodPatch, "/api/admin/settings/"+models.SettingModerationEnabled, map[string]string{"value": "false"}, admin)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "false", e.store.Settings[models.SettingModerationEnabled].Value)
}

func TestProfileReadFiltersPrivateFields(t *testing.T) {
	e := newEnv(t)
	target := "/api/profiles/" + strconv.FormatInt(e.profile.ID, 10)

	var anon profiles.Detail
	rec := e.do(t, http.MethodGet, target, nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decodeEnvelope(t, rec, &anon)
	assert.Nil(t, anon.Profile["bio"])
	assert.Equal(t, "Finance", anon.Profile["department"])
	assert.Equal(t, "Asha Rao", anon.Profile["name"])
	assert.False(t, anon.IsOwnProfile)

	var own profiles.Detail
	rec = e.do(t, http.MethodGet, target, nil, e.login(t, e.owner))
	decodeEnvelope(t, rec, &own)
	assert.Equal(t, "private bio", own.Profile["bio"])
	assert.True(t, own.IsOwnProfile)

	rec = e.do(t, http.MethodGet, "/api/profiles/abc", nil, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = e.do(t, http.MethodGet, "/api/profiles/999", nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestProfileListIsPaginated(t *testing.T) {
	e := newEnv(t)
	rec := e.do(t, http.MethodGet, "/api/profiles?per_page=500", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Profiles   []map[string]any  `json:"profiles"`
		Pagination models.Pagination `json:"pagination"`
	}
	decodeEnvelope(t, rec, &body)
	require.Len(t, body.Profiles, 1)
	assert.Nil(t, body.Profiles[0]["bio"])
	assert.Equal(t, models.MaxPerPage, body.Pagination.PerPage)
}

func TestFieldEditIsQueuedForOwnerOnly(t *testing.T) {
	e := newEnv(t)
	target := "/api/profiles/" + strconv.FormatInt(e.profile.ID, 10) + "/fields/name"

	rec := e.do(t, http.MethodPatch, target, map[string]string{"value": "X"}, e.login(t, e.other))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	owner := e.login(t, e.owner)
	rec = e.do(t, http.MethodPatch, target, map[string]string{}, owner)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = e.do(t, http.MethodPatch, target, map[string]string{"value": "Asha R."}, owner)
	require.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, "Asha Rao", e.store.Profiles[e.profile.ID].Name)
	require.Len(t, e.store.EditRequests, 1)

	rec = e.do(t, http.MethodGet, "/api/profiles/me/edit-requests", nil, owner)
	require.Equal(t, http.StatusOK, rec.Code)
	var mine struct {
		Requests []models.FieldEditRequest `json:"requests"`
	}
	decodeEnvelope(t, rec, &mine)
	require.Len(t, mine.Requests, 1)
	assert.Equal(t, models.EditPending, mine.Requests[0].Status)
}

func TestApproveEditAppliesValue(t *testing.T) {
	e := newEnv(t)
	owner := e.login(t, e.owner)
	target := "/api/profiles/" + strconv.FormatInt(e.profile.ID, 10) + "/fields/name"
	require.Equal(t, http.StatusAccepted, e.do(t, http.MethodPatch, target, map[string]string{"value": "Asha R."}, owner).Code)

	var reqID int64
	for id := range e.store.EditRequests {
		reqID = id
	}
	admin := e.login(t, e.admin)
	rec := e.do(t, http.MethodPost, "/api/admin/moderation/field-edits/"+strconv.FormatInt(reqID, 10)+"/approve", nil, admin)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Asha R.", e.store.Profiles[e.profile.ID].Name)

	rec = e.do(t, http.MethodPost, "/api/admin/moderation/field-edits/"+strconv.FormatInt(reqID, 10)+"/approve", nil, admin)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBulkVisibility(t *testing.T) {
	e := newEnv(t)
	owner := e.login(t, e.owner)
	target := "/api/profiles/" + strconv.FormatInt(e.profile.ID, 10) + "/visibility/bulk"

	rec := e.do(t, http.MethodPatch, target, map[string]any{"updates": []map[string]string{
		{"field_name": "phone", "visibility_level": "secret"},
	}}, owner)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = e.do(t, http.MethodPatch, target, map[string]any{"updates": []map[string]string{
		{"field_name": "phone", "visibility_level": "private"},
		{"field_name": "email", "visibility_level": "lateral_entrants_only"},
	}}, owner)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "private", e.store.Visibility[e.profile.ID]["phone"])
	assert.Equal(t, "lateral_entrants_only", e.store.Visibility[e.profile.ID]["email"])

	rec = e.do(t, http.MethodGet, "/api/profiles/"+strconv.FormatInt(e.profile.ID, 10)+"/visibility", nil, e.login(t, e.other))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

var pngBytes = append([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), make([]byte, 64)...)

func multipartUpload(t *testing.T, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.WriteField("purpose", "profile_photo"))
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func TestImageUploadAndOwnership(t *testing.T) {
	e := newEnv(t)
	owner := e.login(t, e.owner)

	body, contentType := multipartUpload(t, "me.png", pngBytes)
	req := httptest.NewRequest(http.MethodPost, "/api/uploads/image", body)
	req.Header.Set("Content-Type", contentType)
	req.AddCookie(owner)
	rec := httptest.NewRecorder()
	e.mux.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created struct {
		Upload models.Upload `json:"upload"`
	}
	decodeEnvelope(t, rec, &created)
	assert.Equal(t, "profile_photo", created.Upload.Purpose)
	assert.Equal(t, models.EditPending, created.Upload.ModerationStatus)
	assert.True(t, strings.HasPrefix(created.Upload.FilePath, "/uploads/images/"))

	target := "/api/uploads/" + strconv.FormatInt(created.Upload.ID, 10)
	assert.Equal(t, http.StatusForbidden, e.do(t, http.MethodDelete, target, nil, e.login(t, e.other)).Code)
	assert.Equal(t, http.StatusOK, e.do(t, http.MethodDelete, target, nil, owner).Code)
	assert.Empty(t, e.store.Uploads)
}

func TestUploadRejectsMissingAndWrongFiles(t *testing.T) {
	e := newEnv(t)
	owner := e.login(t, e.owner)

	req := httptest.NewRequest(http.MethodPost, "/api/uploads/image", strings.NewReader(""))
	req.Header.Set("Content-Type", "multipart/form-data; boundary=x")
	req.AddCookie(owner)
	rec := httptest.NewRecorder()
	e.mux.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	body, contentType := multipartUpload(t, "script.sh", []byte("#!/bin/sh"))
	req = httptest.NewRequest(http.MethodPost, "/api/uploads/image", body)
	req.Header.Set("Content-Type", contentType)
	req.AddCookie(owner)
	rec = httptest.NewRecorder()
	e.mux.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, e.store.Uploads)
}

func TestReportAndResolveFlag(t *testing.T) {
	e := newEnv(t)
	reporter := e.login(t, e.other)

	rec := e.do(t, http.MethodPost, "/api/flags", map[string]any{"content_type": "comment", "content_id": "1", "reason": "x"}, reporter)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = e.do(t, http.MethodPost, "/api/flags", map[string]any{
		"content_type": models.FlagProfileField,
		"content_id":   "bio",
		"entrant_id":   e.profile.ID,
		"reason":       "inaccurate",
	}, reporter)
	require.Equal(t, http.StatusCreated, rec.Code)
	var created struct {
		Flag models.FlaggedContent `json:"flag"`
	}
	decodeEnvelope(t, rec, &created)

	admin := e.login(t, e.admin)
	target := "/api/admin/moderation/flagged-content/" + strconv.FormatInt(created.Flag.ID, 10) + "/resolve"
	rec = e.do(t, http.MethodPost, target, map[string]string{"action": "delete"}, admin)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = e.do(t, http.MethodPost, target, map[string]string{"action": "remove", "notes": "cleared"}, admin)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, e.store.Profiles[e.profile.ID].Bio)
}

func TestSaveJobTwice(t *testing.T) {
	e := newEnv(t)
	e.store.Jobs = []models.JobListing{{ID: 7, Title: "Policy Analyst", Domain: "policy", Status: "active"}}
	user := e.login(t, e.owner)

	assert.Equal(t, http.StatusOK, e.do(t, http.MethodPost, "/api/jobs/7/save", nil, user).Code)
	rec := e.do(t, http.MethodPost, "/api/jobs/7/save", nil, user)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Job already saved", decodeEnvelope(t, rec, nil).Message)
	assert.Equal(t, http.StatusNotFound, e.do(t, http.MethodPost, "/api/jobs/8/save", nil, user).Code)
}

func TestFeedRefreshIsAdminOnly(t *testing.T) {
	e := newEnv(t)
	assert.Equal(t, http.StatusForbidden, e.do(t, http.MethodPost, "/api/feed/news/refresh", nil, e.login(t, e.owner)).Code)

	rec := e.do(t, http.MethodPost, "/api/feed/news/refresh", nil, e.login(t, e.admin))
	require.Equal(t, http.StatusOK, rec.Code)
	var res feed.RefreshResult
	decodeEnvelope(t, rec, &res)
	assert.Zero(t, res.Fetched)
}

func TestAIWithoutProviderIsUpstreamError(t *testing.T) {
	e := newEnv(t)
	user := e.login(t, e.owner)

	rec := e.do(t, http.MethodPost, "/api/ai/improve-text", map[string]string{}, user)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = e.do(t, http.MethodPost, "/api/ai/improve-text", map[string]string{"text": "I did things"}, user)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Empty(t, e.store.Suggestions)
}
