package middleware

import (
	"context"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/hongminglow/lateral-entry-be/internal/apperr"
	"github.com/hongminglow/lateral-entry-be/internal/http/respond"
	"github.com/hongminglow/lateral-entry-be/internal/models"
)

// SessionCookie carries the opaque session id.
const SessionCookie = "session_id"

// SessionValidator resolves a session id to its user, or nil for no valid session.
type SessionValidator interface {
	Validate(ctx context.Context, sessionID string) (*models.UserContext, error)
}

// Check is one step of a route policy. It either returns the request to continue with,
// possibly carrying more context, or an error that ends the request.
type Check func(r *http.Request) (*http.Request, error)

// Gate runs ordered policy checks in front of handlers.
type Gate struct {
	sessions SessionValidator
	logger   *zap.Logger
}

// NewGate builds a gate backed by sessions.
func NewGate(sessions SessionValidator, logger *zap.Logger) *Gate {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Gate{sessions: sessions, logger: logger}
}

// Protect runs checks in order before next. The first failing check short-circuits.
func (g *Gate) Protect(checks []Check, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		for _, check := range checks {
			var err error
			if r, err = check(r); err != nil {
				respond.Fail(w, err)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// Auth is Protect with RequireAuth.
func (g *Gate) Auth(next http.HandlerFunc) http.Handler {
	return g.Protect(g.RequireAuth(), next)
}

// Admin is Protect with RequireAdmin.
func (g *Gate) Admin(next http.HandlerFunc) http.Handler {
	return g.Protect(g.RequireAdmin(), next)
}

// Optional is Protect with OptionalAuth.
func (g *Gate) Optional(next http.HandlerFunc) http.Handler {
	return g.Protect(g.OptionalAuth(), next)
}

// RequireAuth demands a valid session of an approved user.
func (g *Gate) RequireAuth() []Check {
	return []Check{g.authenticate, requireApproved}
}

// RequireAdmin demands an authenticated admin.
func (g *Gate) RequireAdmin() []Check {
	return append(g.RequireAuth(), requireRole(models.RoleAdmin))
}

// RequireOwnProfile demands that the path value param names the caller's linked profile.
func (g *Gate) RequireOwnProfile(param string) []Check {
	return append(g.RequireAuth(), requireOwnProfile(param))
}

// OptionalAuth attaches the user when a valid session exists and never rejects.
func (g *Gate) OptionalAuth() []Check {
	return []Check{g.attach}
}

func (g *Gate) authenticate(r *http.Request) (*http.Request, error) {
	cookie, err := r.Cookie(SessionCookie)
	if err != nil || cookie.Value == "" {
		return nil, apperr.New(apperr.ErrAuthenticationRequired, "Authentication required")
	}
	user, err := g.sessions.Validate(r.Context(), cookie.Value)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperr.New(apperr.ErrAuthenticationRequired, "Invalid or expired session")
	}
	return r.WithContext(WithUser(r.Context(), user)), nil
}

func (g *Gate) attach(r *http.Request) (*http.Request, error) {
	cookie, err := r.Cookie(SessionCookie)
	if err != nil || cookie.Value == "" {
		return r, nil
	}
	user, err := g.sessions.Validate(r.Context(), cookie.Value)
	if err != nil {
		g.logger.Warn("optional auth: validate session", zap.Error(err))
		return r, nil
	}
	if user == nil {
		return r, nil
	}
	return r.WithContext(WithUser(r.Context(), user)), nil
}

// requireApproved covers validators that return unapproved users; SessionManager already
// drops their sessions and answers 401.
func requireApproved(r *http.Request) (*http.Request, error) {
	user, ok := UserFrom(r.Context())
	if !ok {
		return nil, apperr.New(apperr.ErrAuthenticationRequired, "Authentication required")
	}
	if !user.IsApproved {
		return nil, apperr.New(apperr.ErrApprovalPending, "Account pending approval")
	}
	return r, nil
}

func requireRole(role models.Role) Check {
	return func(r *http.Request) (*http.Request, error) {
		user, ok := UserFrom(r.Context())
		if !ok || user.Role != role {
			return nil, apperr.New(apperr.ErrForbidden, "Insufficient permissions")
		}
		return r, nil
	}
}

func requireOwnProfile(param string) Check {
	return func(r *http.Request) (*http.Request, error) {
		raw := r.PathValue(param)
		if raw == "" {
			return nil, apperr.New(apperr.ErrValidation, "Profile id is required")
		}
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			return nil, apperr.New(apperr.ErrValidation, "Profile id must be a positive integer")
		}
		user, _ := UserFrom(r.Context())
		if !user.OwnsProfile(id) {
			return nil, apperr.New(apperr.ErrForbidden, "You can only modify your own profile")
		}
		return r, nil
	}
}
