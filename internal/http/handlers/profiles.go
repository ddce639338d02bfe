package handlers

import (
	"net/http"

	"github.com/hongminglow/lateral-entry-be/internal/http/respond"
	"github.com/hongminglow/lateral-entry-be/internal/middleware"
	"github.com/hongminglow/lateral-entry-be/internal/models"
	"github.com/hongminglow/lateral-entry-be/internal/models/dto"
	"github.com/hongminglow/lateral-entry-be/internal/moderation"
	"github.com/hongminglow/lateral-entry-be/internal/profiles"
)

// ProfileHandler serves the directory, visibility management and self edits.
type ProfileHandler struct {
	profiles   *profiles.Service
	moderation *moderation.Service
}

func NewProfileHandler(p *profiles.Service, mod *moderation.Service) *ProfileHandler {
	return &ProfileHandler{profiles: p, moderation: mod}
}

// Register attaches profile routes to the mux.
func (h *ProfileHandler) Register(mux *http.ServeMux, gate *middleware.Gate) {
	own := gate.RequireOwnProfile("id")
	mux.Handle("GET /api/profiles", gate.Optional(h.handleList))
	mux.Handle("GET /api/profiles/me", gate.Auth(h.handleMine))
	mux.Handle("GET /api/profiles/me/edit-requests", gate.Auth(h.handleMyEdits))
	mux.Handle("GET /api/profiles/{id}", gate.Optional(h.handleGet))
	mux.Handle("GET /api/profiles/{id}/visibility", gate.Auth(h.handleVisibility))
	mux.Handle("PATCH /api/profiles/{id}/visibility/bulk", gate.Protect(own, http.HandlerFunc(h.handleBulkVisibility)))
	mux.Handle("PATCH /api/profiles/{id}/visibility/{field}", gate.Protect(own, http.HandlerFunc(h.handleSetVisibility)))
	mux.Handle("PATCH /api/profiles/{id}/fields/{field}", gate.Protect(own, http.HandlerFunc(h.handleEditField)))
}

func (h *ProfileHandler) handleList(w http.ResponseWriter, r *http.Request) {
	pageNum, perPage := page(r)
	list, total, err := h.profiles.List(r.Context(), models.ProfileQuery{
		Search:  r.URL.Query().Get("search"),
		Page:    pageNum,
		PerPage: perPage,
	}, currentUser(r))
	if err != nil {
		respond.Fail(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, "ok", paginated("profiles", list, pageNum, perPage, total))
}

func (h *ProfileHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respond.Fail(w, err)
		return
	}
	detail, err := h.profiles.Get(r.Context(), id, currentUser(r))
	if err != nil {
		respond.Fail(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, "ok", detail)
}

func (h *ProfileHandler) handleMine(w http.ResponseWriter, r *http.Request) {
	profile, err := h.profiles.Mine(r.Context(), currentUser(r))
	if err != nil {
		respond.Fail(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, "ok", map[string]any{"profile": profile})
}

func (h *ProfileHandler) handleMyEdits(w http.ResponseWriter, r *http.Request) {
	edits, err := h.moderation.ListMyEdits(r.Context(), userID(r))
	if err != nil {
		respond.Fail(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, "ok", map[string]any{"requests": edits})
}

func (h *ProfileHandler) handleVisibility(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respond.Fail(w, err)
		return
	}
	settings, err := h.profiles.Visibility(r.Context(), id, currentUser(r))
	if err != nil {
		respond.Fail(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, "ok", map[string]any{"entrant_id": id, "settings": settings})
}

func (h *ProfileHandler) handleSetVisibility(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respond.Fail(w, err)
		return
	}
	var req dto.VisibilityRequest
	if err := decode(r, &req); err != nil {
		respond.Fail(w, err)
		return
	}
	field := r.PathValue("field")
	if err := h.profiles.SetVisibility(r.Context(), id, currentUser(r), field, req.VisibilityLevel); err != nil {
		respond.Fail(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, "Visibility updated successfully", map[string]string{
		"field_name":       field,
		"visibility_level": req.VisibilityLevel,
	})
}

func (h *ProfileHandler) handleBulkVisibility(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respond.Fail(w, err)
		return
	}
	var req dto.BulkVisibilityRequest
	if err := decode(r, &req); err != nil {
		respond.Fail(w, err)
		return
	}
	levels := req.Levels()
	if err := h.profiles.BulkSetVisibility(r.Context(), id, currentUser(r), levels); err != nil {
		respond.Fail(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, "Visibility settings updated", map[string]int{"updated": len(levels)})
}

func (h *ProfileHandler) handleEditField(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respond.Fail(w, err)
		return
	}
	var req dto.FieldEditRequest
	if err := decode(r, &req); err != nil {
		respond.Fail(w, err)
		return
	}
	result, err := h.moderation.SubmitEdit(r.Context(), middleware.ActorFrom(r), currentUser(r), id, r.PathValue("field"), *req.Value)
	if err != nil {
		respond.Fail(w, err)
		return
	}
	if result.Applied {
		respond.JSON(w, http.StatusOK, "Field updated successfully", map[string]any{"requires_approval": false})
		return
	}
	respond.JSON(w, http.StatusAccepted, "Edit submitted for approval", map[string]any{
		"requires_approval": true,
		"request":           result.Request,
	})
}
