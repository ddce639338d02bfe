package handlers

import (
	"net/http"

	"github.com/hongminglow/lateral-entry-be/internal/ai"
	"github.com/hongminglow/lateral-entry-be/internal/http/respond"
	"github.com/hongminglow/lateral-entry-be/internal/middleware"
	"github.com/hongminglow/lateral-entry-be/internal/models/dto"
)

// AIHandler serves writing suggestions for profile text.
type AIHandler struct {
	svc *ai.Service
}

func NewAIHandler(svc *ai.Service) *AIHandler {
	return &AIHandler{svc: svc}
}

// Register attaches AI routes to the mux.
func (h *AIHandler) Register(mux *http.ServeMux, gate *middleware.Gate) {
	mux.Handle("POST /api/ai/suggest-bio", gate.Auth(h.handleSuggestBio))
	mux.Handle("POST /api/ai/improve-text", gate.Auth(h.handleImprove))
	mux.Handle("POST /api/ai/accept-suggestion/{id}", gate.Auth(h.handleAccept))
	mux.Handle("GET /api/ai/usage-stats", gate.Auth(h.handleUsage))
}

func (h *AIHandler) handleSuggestBio(w http.ResponseWriter, r *http.Request) {
	var req dto.SuggestBioRequest
	if err := decode(r, &req); err != nil {
		respond.Fail(w, err)
		return
	}
	sg, err := h.svc.SuggestBio(r.Context(), userID(r), ai.BioContext{
		Position:   req.Position,
		Department: req.Department,
		Expertise:  req.Expertise,
	})
	if err != nil {
		respond.Fail(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, "ok", map[string]any{"suggestion": sg.OutputData, "suggestion_id": sg.ID})
}

func (h *AIHandler) handleImprove(w http.ResponseWriter, r *http.Request) {
	var req dto.ImproveTextRequest
	if err := decode(r, &req); err != nil {
		respond.Fail(w, err)
		return
	}
	out, err := h.svc.ImproveText(r.Context(), userID(r), req.Text, req.FieldType)
	if err != nil {
		respond.Fail(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, "ok", out)
}

func (h *AIHandler) handleAccept(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respond.Fail(w, err)
		return
	}
	if err := h.svc.Accept(r.Context(), userID(r), id); err != nil {
		respond.Fail(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, "Suggestion accepted", nil)
}

func (h *AIHandler) handleUsage(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.UsageStats(r.Context(), userID(r))
	if err != nil {
		respond.Fail(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, "ok", map[string]any{"usage": stats})
}
