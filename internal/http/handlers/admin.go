package handlers

import (
	"context"
	"net/http"

	"github.com/hongminglow/lateral-entry-be/internal/auth"
	"github.com/hongminglow/lateral-entry-be/internal/http/respond"
	"github.com/hongminglow/lateral-entry-be/internal/middleware"
	"github.com/hongminglow/lateral-entry-be/internal/models"
	"github.com/hongminglow/lateral-entry-be/internal/models/dto"
	"github.com/hongminglow/lateral-entry-be/internal/moderation"
)

// Purger removes expired sessions on demand.
type Purger interface {
	Run(ctx context.Context, actor *models.Actor) (int64, error)
}

// AdminHandler serves account administration, settings, audit and dashboard routes.
// Every route requires an admin.
type AdminHandler struct {
	resolver   *auth.Resolver
	accounts   *auth.Accounts
	moderation *moderation.Service
	purger     Purger
}

func NewAdminHandler(resolver *auth.Resolver, accounts *auth.Accounts, mod *moderation.Service, purger Purger) *AdminHandler {
	return &AdminHandler{resolver: resolver, accounts: accounts, moderation: mod, purger: purger}
}

// Register attaches admin routes to the mux.
func (h *AdminHandler) Register(mux *http.ServeMux, gate *middleware.Gate) {
	mux.Handle("GET /api/admin/users/pending", gate.Admin(h.handlePending))
	mux.Handle("POST /api/admin/users/pending/{id}/approve", gate.Admin(h.handleApprovePending))
	mux.Handle("POST /api/admin/users/pending/{id}/reject", gate.Admin(h.handleRejectPending))
	mux.Handle("GET /api/admin/users", gate.Admin(h.handleUsers))
	mux.Handle("PATCH /api/admin/users/{id}", gate.Admin(h.handleUpdateUser))
	mux.Handle("DELETE /api/admin/users/{id}", gate.Admin(h.handleDeleteUser))
	mux.Handle("GET /api/admin/settings", gate.Admin(h.handleSettings))
	mux.Handle("PATCH /api/admin/settings/{key}", gate.Admin(h.handleUpdateSetting))
	mux.Handle("GET /api/admin/audit-log", gate.Admin(h.handleAuditLog))
	mux.Handle("GET /api/admin/stats/dashboard", gate.Admin(h.handleDashboard))
	mux.Handle("POST /api/admin/sessions/purge", gate.Admin(h.handlePurge))
}

func (h *AdminHandler) handlePending(w http.ResponseWriter, r *http.Request) {
	pending, err := h.resolver.ListPending(r.Context())
	if err != nil {
		respond.Fail(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, "ok", map[string]any{"pending_users": pending})
}

func (h *AdminHandler) handleApprovePending(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respond.Fail(w, err)
		return
	}
	var req dto.ApprovePendingRequest
	if err := decode(r, &req); err != nil {
		respond.Fail(w, err)
		return
	}
	user, err := h.resolver.ApprovePending(r.Context(), middleware.ActorFrom(r), id, req.EntrantID)
	if err != nil {
		respond.Fail(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, "User approved successfully", map[string]any{"user": user})
}

func (h *AdminHandler) handleRejectPending(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respond.Fail(w, err)
		return
	}
	var req dto.ReasonRequest
	if err := decode(r, &req); err != nil {
		respond.Fail(w, err)
		return
	}
	if err := h.resolver.RejectPending(r.Context(), middleware.ActorFrom(r), id, req.Reason); err != nil {
		respond.Fail(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, "User request rejected", nil)
}

func (h *AdminHandler) handleUsers(w http.ResponseWriter, r *http.Request) {
	pageNum, perPage := page(r)
	users, total, err := h.accounts.ListUsers(r.Context(), models.UserQuery{
		Search:  r.URL.Query().Get("search"),
		Page:    pageNum,
		PerPage: perPage,
	})
	if err != nil {
		respond.Fail(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, "ok", paginated("users", users, pageNum, perPage, total))
}

func (h *AdminHandler) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respond.Fail(w, err)
		return
	}
	var req dto.UserPatchRequest
	if err := decode(r, &req); err != nil {
		respond.Fail(w, err)
		return
	}
	user, err := h.accounts.UpdateUser(r.Context(), middleware.ActorFrom(r), id, req.Patch())
	if err != nil {
		respond.Fail(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, "User updated successfully", map[string]any{"user": user})
}

func (h *AdminHandler) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respond.Fail(w, err)
		return
	}
	if err := h.accounts.DeleteUser(r.Context(), middleware.ActorFrom(r), id); err != nil {
		respond.Fail(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, "User deleted successfully", nil)
}

func (h *AdminHandler) handleSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.moderation.Settings(r.Context())
	if err != nil {
		respond.Fail(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, "ok", map[string]any{"settings": settings})
}

func (h *AdminHandler) handleUpdateSetting(w http.ResponseWriter, r *http.Request) {
	var req dto.SettingRequest
	if err := decode(r, &req); err != nil {
		respond.Fail(w, err)
		return
	}
	setting, err := h.moderation.UpdateSetting(r.Context(), middleware.ActorFrom(r), r.PathValue("key"), req.Value)
	if err != nil {
		respond.Fail(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, "Setting updated successfully", map[string]any{"setting": setting})
}

func (h *AdminHandler) handleAuditLog(w http.ResponseWriter, r *http.Request) {
	pageNum, perPage := page(r)
	entries, total, err := h.moderation.AuditLog(r.Context(), models.AuditQuery{
		Action:  r.URL.Query().Get("action"),
		Page:    pageNum,
		PerPage: perPage,
	})
	if err != nil {
		respond.Fail(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, "ok", paginated("logs", entries, pageNum, perPage, total))
}

func (h *AdminHandler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := h.moderation.Dashboard(r.Context())
	if err != nil {
		respond.Fail(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, "ok", stats)
}

func (h *AdminHandler) handlePurge(w http.ResponseWriter, r *http.Request) {
	actor := middleware.ActorFrom(r)
	n, err := h.purger.Run(r.Context(), &actor)
	if err != nil {
		respond.Fail(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, "Expired sessions purged", map[string]int64{"purged": n})
}
