package handlers

import (
	"context"
	"net/http"

	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/hongminglow/lateral-entry-be/internal/apperr"
	"github.com/hongminglow/lateral-entry-be/internal/auth"
	"github.com/hongminglow/lateral-entry-be/internal/http/respond"
	"github.com/hongminglow/lateral-entry-be/internal/middleware"
)

const (
	stateCookie  = "oauth_state"
	statePurpose = "google"

	pendingPage   = "/pages/pending-approval.html"
	requestedPage = "/pages/access-requested.html"
)

// GoogleAuth is the part of the Google provider the login flow needs.
type GoogleAuth interface {
	Configured() bool
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (auth.Identity, *oauth2.Token, error)
}

// AuthHandler owns the Google login flow and the caller's own session endpoints.
type AuthHandler struct {
	google   GoogleAuth
	resolver *auth.Resolver
	sessions *auth.SessionManager
	states   *auth.StateSigner
	secure   bool
	logger   *zap.Logger
}

// NewAuthHandler constructs the handler. secure marks cookies Secure.
func NewAuthHandler(google GoogleAuth, resolver *auth.Resolver, sessions *auth.SessionManager, states *auth.StateSigner, secure bool, logger *zap.Logger) *AuthHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthHandler{google: google, resolver: resolver, sessions: sessions, states: states, secure: secure, logger: logger}
}

// Register attaches auth routes to the mux.
func (h *AuthHandler) Register(mux *http.ServeMux, gate *middleware.Gate) {
	mux.HandleFunc("GET /api/auth/google/login", h.handleLogin)
	mux.HandleFunc("GET /api/auth/google/callback", h.handleCallback)
	mux.Handle("POST /api/auth/logout", gate.Optional(h.handleLogout))
	mux.Handle("GET /api/auth/me", gate.Optional(h.handleMe))
	mux.HandleFunc("GET /api/auth/status", h.handleStatus)
	mux.Handle("GET /api/auth/sessions", gate.Auth(h.handleSessions))
}

var errGoogleUnconfigured = apperr.New(apperr.ErrConfig, "Google sign-in is not configured")

func (h *AuthHandler) googleReady() bool {
	return h.google != nil && h.google.Configured()
}

func (h *AuthHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	if !h.googleReady() {
		respond.Fail(w, errGoogleUnconfigured)
		return
	}
	state, err := h.states.Issue(statePurpose, 0)
	if err != nil {
		respond.Fail(w, apperr.Wrap(apperr.ErrCrypto, "Could not start login", err))
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookie,
		Value:    state,
		Path:     "/api/auth",
		MaxAge:   int(auth.StateTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, h.google.AuthCodeURL(state), http.StatusFound)
}

func (h *AuthHandler) handleCallback(w http.ResponseWriter, r *http.Request) {
	if !h.googleReady() {
		respond.Fail(w, errGoogleUnconfigured)
		return
	}
	q := r.URL.Query()
	state := q.Get("state")
	cookie, err := r.Cookie(stateCookie)
	if state == "" || err != nil || cookie.Value != state {
		respond.Error(w, http.StatusBadRequest, "Invalid state parameter")
		return
	}
	h.clearCookie(w, stateCookie, "/api/auth")
	if _, err := h.states.Verify(state, statePurpose); err != nil {
		respond.Error(w, http.StatusBadRequest, "Invalid state parameter")
		return
	}
	code := q.Get("code")
	if code == "" {
		respond.Error(w, http.StatusBadRequest, "No authorization code received")
		return
	}

	identity, tokens, err := h.google.Exchange(r.Context(), code)
	if err != nil {
		h.logger.Warn("google exchange failed", zap.Error(err))
		respond.Fail(w, apperr.Wrap(apperr.ErrUpstream, "Authentication failed", err))
		return
	}
	result, err := h.resolver.Resolve(r.Context(), auth.LoginAttempt{
		Identity:  identity,
		Tokens:    tokens,
		IPAddress: middleware.ClientIP(r),
		UserAgent: r.UserAgent(),
	})
	if err != nil {
		respond.Fail(w, err)
		return
	}

	switch result.Outcome {
	case auth.OutcomeSessionCreated:
		http.SetCookie(w, &http.Cookie{
			Name:     middleware.SessionCookie,
			Value:    result.SessionID,
			Path:     "/",
			MaxAge:   int(h.sessions.Lifetime().Seconds()),
			HttpOnly: true,
			Secure:   h.secure,
			SameSite: http.SameSiteLaxMode,
		})
		http.Redirect(w, r, "/", http.StatusFound)
	case auth.OutcomeAccessRequested:
		http.Redirect(w, r, requestedPage, http.StatusFound)
	default:
		http.Redirect(w, r, pendingPage, http.StatusFound)
	}
}

func (h *AuthHandler) handleLogout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(middleware.SessionCookie); err == nil && cookie.Value != "" {
		if err := h.resolver.Logout(r.Context(), cookie.Value, middleware.ActorFrom(r)); err != nil {
			respond.Fail(w, err)
			return
		}
	}
	h.clearCookie(w, middleware.SessionCookie, "/")
	respond.JSON(w, http.StatusOK, "Logged out successfully", nil)
}

func (h *AuthHandler) handleMe(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	if user == nil {
		respond.JSON(w, http.StatusUnauthorized, "Not authenticated", map[string]any{"authenticated": false})
		return
	}
	respond.JSON(w, http.StatusOK, "ok", map[string]any{"authenticated": true, "user": user})
}

func (h *AuthHandler) handleStatus(w http.ResponseWriter, r *http.Request) {
	status, err := h.resolver.Status(r.Context(), r.URL.Query().Get("google_id"))
	if err != nil {
		respond.Fail(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, "ok", status)
}

func (h *AuthHandler) handleSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.sessions.ListActive(r.Context(), userID(r))
	if err != nil {
		respond.Fail(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, "ok", map[string]any{"sessions": sessions})
}

func (h *AuthHandler) clearCookie(w http.ResponseWriter, name, path string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     path,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})
}
