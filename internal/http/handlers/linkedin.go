package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/hongminglow/lateral-entry-be/internal/http/respond"
	"github.com/hongminglow/lateral-entry-be/internal/linkedin"
	"github.com/hongminglow/lateral-entry-be/internal/middleware"
)

// LinkedInHandler links a LinkedIn account to the caller and syncs from it.
type LinkedInHandler struct {
	svc    *linkedin.Service
	logger *zap.Logger
}

func NewLinkedInHandler(svc *linkedin.Service, logger *zap.Logger) *LinkedInHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LinkedInHandler{svc: svc, logger: logger}
}

// Register attaches LinkedIn routes to the mux.
func (h *LinkedInHandler) Register(mux *http.ServeMux, gate *middleware.Gate) {
	mux.Handle("GET /api/linkedin/connect", gate.Auth(h.handleConnect))
	mux.Handle("GET /api/linkedin/callback", gate.Auth(h.handleCallback))
	mux.Handle("GET /api/linkedin/status", gate.Auth(h.handleStatus))
	mux.Handle("POST /api/linkedin/disconnect", gate.Auth(h.handleDisconnect))
	mux.Handle("POST /api/linkedin/sync", gate.Auth(h.handleSync))
}

func (h *LinkedInHandler) handleConnect(w http.ResponseWriter, r *http.Request) {
	target, err := h.svc.ConnectURL(userID(r))
	if err != nil {
		respond.Fail(w, err)
		return
	}
	http.Redirect(w, r, target, http.StatusFound)
}

// handleCallback always answers with a redirect back to the settings page.
func (h *LinkedInHandler) handleCallback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	providerErr := q.Get("error")
	var err error
	if providerErr == "" {
		err = h.svc.Callback(r.Context(), userID(r), q.Get("code"), q.Get("state"))
		if err != nil {
			h.logger.Warn("linkedin callback failed", zap.Int64("user_id", userID(r)), zap.Error(err))
		}
	}
	http.Redirect(w, r, linkedin.CallbackRedirect(providerErr, err), http.StatusFound)
}

func (h *LinkedInHandler) handleStatus(w http.ResponseWriter, r *http.Request) {
	status, err := h.svc.Status(r.Context(), userID(r))
	if err != nil {
		respond.Fail(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, "ok", status)
}

func (h *LinkedInHandler) handleDisconnect(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Disconnect(r.Context(), userID(r)); err != nil {
		respond.Fail(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, "LinkedIn disconnected", nil)
}

func (h *LinkedInHandler) handleSync(w http.ResponseWriter, r *http.Request) {
	n, err := h.svc.Sync(r.Context(), currentUser(r))
	if err != nil {
		respond.Fail(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, "Profile changes submitted for approval", map[string]int{"fields_synced": n})
}
