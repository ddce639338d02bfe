package moderation

import (
	"context"
	"strconv"
	"strings"

	"github.com/hongminglow/lateral-entry-be/internal/apperr"
	"github.com/hongminglow/lateral-entry-be/internal/models"
)

const (
	flagPending  = "pending"
	flagResolved = "resolved"
)

// Report is a user's complaint about a profile field or an upload.
type Report struct {
	ContentType string
	ContentID   string
	EntrantID   *int64
	Reason      string
}

// ReportContent files a flag for admin review.
func (s *Service) ReportContent(ctx context.Context, reporterID int64, rep Report) (models.FlaggedContent, error) {
	if strings.TrimSpace(rep.Reason) == "" {
		return models.FlaggedContent{}, apperr.New(apperr.ErrValidation, "A reason is required")
	}
	switch rep.ContentType {
	case models.FlagProfileField:
		field, err := models.ParseProfileField(rep.ContentID)
		if err != nil {
			return models.FlaggedContent{}, apperr.Wrap(apperr.ErrValidation, "Invalid field name", err)
		}
		if field == models.FieldName {
			return models.FlaggedContent{}, apperr.New(apperr.ErrValidation, "The name field cannot be flagged for removal")
		}
		if rep.EntrantID == nil {
			return models.FlaggedContent{}, apperr.New(apperr.ErrValidation, "entrant_id is required for profile fields")
		}
		if _, err := s.profiles.GetProfile(ctx, *rep.EntrantID); err != nil {
			return models.FlaggedContent{}, notFound(err, "Profile not found")
		}
	case models.FlagUpload:
		id, err := strconv.ParseInt(rep.ContentID, 10, 64)
		if err != nil {
			return models.FlaggedContent{}, apperr.Wrap(apperr.ErrValidation, "Invalid upload id", err)
		}
		if _, err := s.uploads.GetUpload(ctx, id); err != nil {
			return models.FlaggedContent{}, notFound(err, "Upload not found")
		}
	default:
		return models.FlaggedContent{}, apperr.Newf(apperr.ErrValidation, "Invalid content type %q", rep.ContentType)
	}

	return s.flags.CreateFlag(ctx, models.FlaggedContent{
		ContentType: rep.ContentType,
		ContentID:   rep.ContentID,
		EntrantID:   rep.EntrantID,
		Reason:      strings.TrimSpace(rep.Reason),
		ReportedBy:  reporterID,
	})
}

// ListFlags returns flags in status, pending by default.
func (s *Service) ListFlags(ctx context.Context, status string) ([]models.FlaggedContent, error) {
	switch status {
	case "":
		status = flagPending
	case flagPending, flagResolved:
	default:
		return nil, apperr.Newf(apperr.ErrValidation, "Invalid status %q", status)
	}
	return s.flags.ListFlags(ctx, status)
}

// ResolveFlag closes a pending flag. A remove decision clears the flagged content.
func (s *Service) ResolveFlag(ctx context.Context, actor models.Actor, id int64, action, notes string) error {
	if action != models.FlagActionRemove && action != models.FlagActionKeep {
		return apperr.New(apperr.ErrValidation, "Action must be remove or keep")
	}
	flag, err := s.flags.GetFlag(ctx, id)
	if err != nil {
		return notFound(err, "Flag not found")
	}
	if flag.Status != flagPending {
		return apperr.New(apperr.ErrValidation, "Flag already resolved")
	}

	var file string
	if action == models.FlagActionRemove && flag.ContentType == models.FlagUpload {
		if uploadID, err := strconv.ParseInt(flag.ContentID, 10, 64); err == nil {
			if upload, err := s.uploads.GetUpload(ctx, uploadID); err == nil {
				file = upload.FilePath
			}
		}
	}

	resolution := models.FlagResolution{Action: action, Notes: notes, ResolverID: actor.UserID, At: s.now()}
	old := flagPending
	err = s.flags.ResolveFlag(ctx, id, resolution,
		entry(actor, models.ActionResolveFlag, models.EntityFlaggedContent, strconv.FormatInt(id, 10), &old, strPtr(action)))
	if err != nil {
		return notFound(err, "Flagged content no longer exists")
	}
	if file != "" {
		s.removeFile(file)
	}
	return nil
}
