package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hongminglow/lateral-entry-be/internal/models"
)

type stubValidator struct {
	users map[string]*models.UserContext
	err   error
}

func (s stubValidator) Validate(_ context.Context, id string) (*models.UserContext, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.users[id], nil
}

func int64Ptr(v int64) *int64 { return &v }

func testGate() *Gate {
	return NewGate(stubValidator{users: map[string]*models.UserContext{
		"admin":      {UserID: 1, Role: models.RoleAdmin, IsApproved: true, IsActive: true},
		"appointee":  {UserID: 2, Role: models.RoleAppointee, IsApproved: true, IsActive: true, EntrantID: int64Ptr(5)},
		"unapproved": {UserID: 3, Role: models.RoleAppointee, IsApproved: false, IsActive: true},
	}}, nil)
}

func okHandler(w http.ResponseWriter, r *http.Request) {
	if user, ok := UserFrom(r.Context()); ok {
		w.Header().Set("X-User", user.Email+string(user.Role))
	}
	w.WriteHeader(http.StatusOK)
}

func serve(h http.Handler, session string, pathID string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if session != "" {
		req.AddCookie(&http.Cookie{Name: SessionCookie, Value: session})
	}
	if pathID != "" {
		req.SetPathValue("id", pathID)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeCode(t *testing.T, rec *httptest.ResponseRecorder) int {
	t.Helper()
	var body struct {
		Code int `json:"code"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Code
}

func TestRequireAuth(t *testing.T) {
	h := testGate().Auth(okHandler)

	cases := []struct {
		name    string
		session string
		want    int
	}{
		{"no cookie", "", http.StatusUnauthorized},
		{"unknown session", "nope", http.StatusUnauthorized},
		{"unapproved", "unapproved", http.StatusForbidden},
		{"approved", "appointee", http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := serve(h, tc.session, "")
			assert.Equal(t, tc.want, rec.Code)
			if tc.want != http.StatusOK {
				assert.Equal(t, tc.want, decodeCode(t, rec))
			}
		})
	}
}

func TestRequireAuthStorageFailure(t *testing.T) {
	gate := NewGate(stubValidator{err: errors.New("db down")}, nil)
	rec := serve(gate.Auth(okHandler), "any", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "db down")
}

func TestRequireAdmin(t *testing.T) {
	h := testGate().Admin(okHandler)
	assert.Equal(t, http.StatusUnauthorized, serve(h, "", "").Code)
	assert.Equal(t, http.StatusForbidden, serve(h, "appointee", "").Code)
	assert.Equal(t, http.StatusOK, serve(h, "admin", "").Code)
}

func TestRequireOwnProfile(t *testing.T) {
	gate := testGate()
	h := gate.Protect(gate.RequireOwnProfile("id"), http.HandlerFunc(okHandler))

	assert.Equal(t, http.StatusUnauthorized, serve(h, "", "5").Code)
	assert.Equal(t, http.StatusBadRequest, serve(h, "appointee", "").Code)
	assert.Equal(t, http.StatusBadRequest, serve(h, "appointee", "abc").Code)
	assert.Equal(t, http.StatusForbidden, serve(h, "appointee", "6").Code)
	assert.Equal(t, http.StatusForbidden, serve(h, "admin", "5").Code)
	assert.Equal(t, http.StatusOK, serve(h, "appointee", "5").Code)
}

func TestOptionalAuthNeverRejects(t *testing.T) {
	h := testGate().Optional(okHandler)

	rec := serve(h, "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("X-User"))

	rec = serve(h, "nope", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("X-User"))

	rec = serve(h, "admin", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "admin", rec.Header().Get("X-User"))

	failing := NewGate(stubValidator{err: errors.New("db down")}, nil)
	assert.Equal(t, http.StatusOK, serve(failing.Optional(okHandler), "x", "").Code)
}

func TestProtectShortCircuits(t *testing.T) {
	ran := false
	checks := []Check{
		func(r *http.Request) (*http.Request, error) { return nil, errors.New("stop") },
		func(r *http.Request) (*http.Request, error) { ran = true; return r, nil },
	}
	rec := serve(testGate().Protect(checks, http.HandlerFunc(okHandler)), "", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.False(t, ran)
}
