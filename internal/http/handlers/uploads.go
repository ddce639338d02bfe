package handlers

import (
	"errors"
	"net/http"

	"github.com/hongminglow/lateral-entry-be/internal/apperr"
	"github.com/hongminglow/lateral-entry-be/internal/http/respond"
	"github.com/hongminglow/lateral-entry-be/internal/middleware"
	"github.com/hongminglow/lateral-entry-be/internal/models/dto"
	"github.com/hongminglow/lateral-entry-be/internal/moderation"
)

// multipart overhead allowed on top of a kind's file limit
const formSlack = 1 << 20

// UploadHandler accepts files and content reports from signed-in users.
type UploadHandler struct {
	svc *moderation.Service
}

func NewUploadHandler(svc *moderation.Service) *UploadHandler {
	return &UploadHandler{svc: svc}
}

// Register attaches upload and flag routes to the mux.
func (h *UploadHandler) Register(mux *http.ServeMux, gate *middleware.Gate) {
	mux.Handle("POST /api/uploads/image", gate.Auth(h.upload(moderation.ImageKind)))
	mux.Handle("POST /api/uploads/document", gate.Auth(h.upload(moderation.DocumentKind)))
	mux.Handle("GET /api/uploads/my-uploads", gate.Auth(h.handleMine))
	mux.Handle("DELETE /api/uploads/{id}", gate.Auth(h.handleDelete))
	mux.Handle("POST /api/flags", gate.Auth(h.handleReport))
}

func (h *UploadHandler) upload(kind moderation.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, kind.MaxBytes+formSlack)
		file, header, err := r.FormFile("file")
		if err != nil {
			var tooLarge *http.MaxBytesError
			switch {
			case errors.As(err, &tooLarge):
				respond.Fail(w, apperr.Newf(apperr.ErrValidation, "File too large. Max size: %dMB", kind.MaxBytes>>20))
			case errors.Is(err, http.ErrMissingFile):
				respond.Fail(w, apperr.New(apperr.ErrValidation, "No file provided"))
			default:
				respond.Fail(w, apperr.Wrap(apperr.ErrValidation, "Invalid multipart form", err))
			}
			return
		}
		defer file.Close()

		upload, err := h.svc.Upload(r.Context(), userID(r), kind, r.FormValue("purpose"), header.Filename, file)
		if err != nil {
			respond.Fail(w, err)
			return
		}
		respond.JSON(w, http.StatusCreated, "File uploaded, pending moderation", map[string]any{"upload": upload})
	}
}

func (h *UploadHandler) handleMine(w http.ResponseWriter, r *http.Request) {
	uploads, err := h.svc.ListMyUploads(r.Context(), userID(r))
	if err != nil {
		respond.Fail(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, "ok", map[string]any{"uploads": uploads})
}

func (h *UploadHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respond.Fail(w, err)
		return
	}
	if err := h.svc.DeleteUpload(r.Context(), currentUser(r), id); err != nil {
		respond.Fail(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, "File deleted successfully", nil)
}

func (h *UploadHandler) handleReport(w http.ResponseWriter, r *http.Request) {
	var req dto.FlagRequest
	if err := decode(r, &req); err != nil {
		respond.Fail(w, err)
		return
	}
	flag, err := h.svc.ReportContent(r.Context(), userID(r), moderation.Report{
		ContentType: req.ContentType,
		ContentID:   req.ContentID,
		EntrantID:   req.EntrantID,
		Reason:      req.Reason,
	})
	if err != nil {
		respond.Fail(w, err)
		return
	}
	respond.JSON(w, http.StatusCreated, "Content reported", map[string]any{"flag": flag})
}
