package handlers

import (
	"net/http"

	"github.com/hongminglow/lateral-entry-be/internal/http/respond"
	"github.com/hongminglow/lateral-entry-be/internal/middleware"
	"github.com/hongminglow/lateral-entry-be/internal/models/dto"
	"github.com/hongminglow/lateral-entry-be/internal/moderation"
)

// ModerationHandler serves the admin review queues for edits, uploads and flags.
type ModerationHandler struct {
	svc *moderation.Service
}

func NewModerationHandler(svc *moderation.Service) *ModerationHandler {
	return &ModerationHandler{svc: svc}
}

// Register attaches moderation routes to the mux.
func (h *ModerationHandler) Register(mux *http.ServeMux, gate *middleware.Gate) {
	const base = "/api/admin/moderation"
	mux.Handle("GET "+base+"/field-edits", gate.Admin(h.handleEdits))
	mux.Handle("POST "+base+"/field-edits/{id}/approve", gate.Admin(h.handleApproveEdit))
	mux.Handle("POST "+base+"/field-edits/{id}/reject", gate.Admin(h.handleRejectEdit))
	mux.Handle("GET "+base+"/uploads", gate.Admin(h.handleUploads))
	mux.Handle("POST "+base+"/uploads/{id}/approve", gate.Admin(h.handleApproveUpload))
	mux.Handle("POST "+base+"/uploads/{id}/reject", gate.Admin(h.handleRejectUpload))
	mux.Handle("GET "+base+"/flagged-content", gate.Admin(h.handleFlags))
	mux.Handle("POST "+base+"/flagged-content/{id}/resolve", gate.Admin(h.handleResolveFlag))
}

func (h *ModerationHandler) handleEdits(w http.ResponseWriter, r *http.Request) {
	edits, err := h.svc.ListEdits(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		respond.Fail(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, "ok", map[string]any{"requests": edits})
}

func (h *ModerationHandler) handleApproveEdit(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respond.Fail(w, err)
		return
	}
	if err := h.svc.ApproveEdit(r.Context(), middleware.ActorFrom(r), id); err != nil {
		respond.Fail(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, "Edit request approved", nil)
}

func (h *ModerationHandler) handleRejectEdit(w http.ResponseWriter, r *http.Request) {
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
	if err := h.svc.RejectEdit(r.Context(), middleware.ActorFrom(r), id, req.Reason); err != nil {
		respond.Fail(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, "Edit request rejected", nil)
}

func (h *ModerationHandler) handleUploads(w http.ResponseWriter, r *http.Request) {
	uploads, err := h.svc.ListUploads(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		respond.Fail(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, "ok", map[string]any{"uploads": uploads})
}

func (h *ModerationHandler) handleApproveUpload(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respond.Fail(w, err)
		return
	}
	if err := h.svc.ApproveUpload(r.Context(), middleware.ActorFrom(r), id); err != nil {
		respond.Fail(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, "Upload approved", nil)
}

func (h *ModerationHandler) handleRejectUpload(w http.ResponseWriter, r *http.Request) {
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
	if err := h.svc.RejectUpload(r.Context(), middleware.ActorFrom(r), id, req.Reason); err != nil {
		respond.Fail(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, "Upload rejected", nil)
}

func (h *ModerationHandler) handleFlags(w http.ResponseWriter, r *http.Request) {
	flags, err := h.svc.ListFlags(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		respond.Fail(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, "ok", map[string]any{"flags": flags})
}

func (h *ModerationHandler) handleResolveFlag(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respond.Fail(w, err)
		return
	}
	var req dto.ResolveFlagRequest
	if err := decode(r, &req); err != nil {
		respond.Fail(w, err)
		return
	}
	if err := h.svc.ResolveFlag(r.Context(), middleware.ActorFrom(r), id, req.Action, req.Notes); err != nil {
		respond.Fail(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, "Flag resolved", nil)
}
