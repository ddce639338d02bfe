package moderation

import (
	"context"
	"io"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/hongminglow/lateral-entry-be/internal/apperr"
	"github.com/hongminglow/lateral-entry-be/internal/models"
)

// Upload stores a file for the caller and queues it for moderation.
func (s *Service) Upload(ctx context.Context, userID int64, kind Kind, purpose, filename string, r io.Reader) (models.Upload, error) {
	if s.files == nil {
		return models.Upload{}, apperr.New(apperr.ErrConfig, "uploads are not configured")
	}
	if purpose = strings.TrimSpace(purpose); purpose == "" {
		purpose = kind.Name
	}
	stored, err := s.files.Save(kind, userID, filename, r)
	if err != nil {
		return models.Upload{}, err
	}
	upload, err := s.uploads.CreateUpload(ctx, models.Upload{
		UserID:   userID,
		FilePath: stored.URL,
		FileType: stored.ContentType,
		FileSize: stored.Size,
		Purpose:  purpose,
	})
	if err != nil {
		s.removeFile(stored.URL)
		return models.Upload{}, err
	}
	return upload, nil
}

// ListUploads returns uploads in status, pending by default.
func (s *Service) ListUploads(ctx context.Context, status string) ([]models.Upload, error) {
	st, err := parseStatus(status)
	if err != nil {
		return nil, err
	}
	return s.uploads.ListUploads(ctx, st)
}

// ListMyUploads returns the caller's uploads.
func (s *Service) ListMyUploads(ctx context.Context, userID int64) ([]models.Upload, error) {
	return s.uploads.ListUserUploads(ctx, userID)
}

// DeleteUpload removes an upload owned by user, or any upload for an admin.
func (s *Service) DeleteUpload(ctx context.Context, user *models.UserContext, id int64) error {
	upload, err := s.uploads.GetUpload(ctx, id)
	if err != nil {
		return notFound(err, "File not found")
	}
	if upload.UserID != user.UserID && !user.IsAdmin() {
		return apperr.New(apperr.ErrForbidden, "You can only delete your own files")
	}
	if err := s.uploads.DeleteUpload(ctx, id); err != nil {
		return notFound(err, "File not found")
	}
	s.removeFile(upload.FilePath)
	return nil
}

// ApproveUpload marks a pending upload approved.
func (s *Service) ApproveUpload(ctx context.Context, actor models.Actor, id int64) error {
	return s.reviewUpload(ctx, actor, id, models.EditApproved, "")
}

// RejectUpload marks a pending upload rejected.
func (s *Service) RejectUpload(ctx context.Context, actor models.Actor, id int64, reason string) error {
	return s.reviewUpload(ctx, actor, id, models.EditRejected, reason)
}

func (s *Service) reviewUpload(ctx context.Context, actor models.Actor, id int64, status models.EditStatus, reason string) error {
	upload, err := s.uploads.GetUpload(ctx, id)
	if err != nil {
		return notFound(err, "Upload not found")
	}
	if upload.ModerationStatus != models.EditPending {
		return apperr.Newf(apperr.ErrValidation, "Upload already %s", upload.ModerationStatus)
	}

	review := models.Review{Status: status, ReviewerID: actor.UserID, At: s.now()}
	action := models.ActionApproveUpload
	if status == models.EditRejected {
		action = models.ActionRejectUpload
		if reason = strings.TrimSpace(reason); reason != "" {
			review.Reason = &reason
		}
	}
	old := string(models.EditPending)
	err = s.uploads.ReviewUpload(ctx, id, review,
		entry(actor, action, models.EntityUpload, strconv.FormatInt(id, 10), &old, strPtr(string(status))))
	return notFound(err, "Upload not found")
}

func (s *Service) removeFile(url string) {
	if s.files == nil {
		return
	}
	if err := s.files.Remove(url); err != nil {
		s.logger.Warn("remove upload file", zap.String("path", url), zap.Error(err))
	}
}
