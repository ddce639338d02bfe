package moderation

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/hongminglow/lateral-entry-be/internal/apperr"
	"github.com/hongminglow/lateral-entry-be/internal/models"
	"github.com/hongminglow/lateral-entry-be/internal/storage"
)

// EditResult tells the caller whether a submitted edit went live or was queued.
type EditResult struct {
	Applied bool                     `json:"applied"`
	Request *models.FieldEditRequest `json:"request,omitempty"`
}

// ModerationEnabled reports the moderation_enabled switch. A missing setting counts as on.
func (s *Service) ModerationEnabled(ctx context.Context) (bool, error) {
	setting, err := s.settings.GetSetting(ctx, models.SettingModerationEnabled)
	if errors.Is(err, storage.ErrNotFound) {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("read moderation setting: %w", err)
	}
	return strings.EqualFold(strings.TrimSpace(setting.Value), "true"), nil
}

// SubmitEdit changes one field of the caller's own profile. With moderation on the change
// is queued for review; otherwise it is applied and logged as apply_edit.
func (s *Service) SubmitEdit(ctx context.Context, actor models.Actor, user *models.UserContext, entrantID int64, fieldName, value string) (EditResult, error) {
	if !user.OwnsProfile(entrantID) {
		return EditResult{}, apperr.New(apperr.ErrForbidden, "You can only modify your own profile")
	}
	field, current, newValue, err := s.prepareEdit(ctx, entrantID, fieldName, value)
	if err != nil {
		return EditResult{}, err
	}

	enabled, err := s.ModerationEnabled(ctx)
	if err != nil {
		return EditResult{}, err
	}
	if enabled {
		req, err := s.queue(ctx, actor.UserID, entrantID, field, current, value)
		if err != nil {
			return EditResult{}, err
		}
		return EditResult{Request: &req}, nil
	}

	err = s.profiles.ApplyProfileEdit(ctx, entrantID, field, newValue,
		entry(actor, models.ActionApplyEdit, models.EntityEntrant, strconv.FormatInt(entrantID, 10), current, newValue))
	if err != nil {
		return EditResult{}, notFound(err, "Profile not found")
	}
	return EditResult{Applied: true}, nil
}

// Propose queues an edit regardless of the moderation switch.
func (s *Service) Propose(ctx context.Context, userID, entrantID int64, fieldName, value string) (models.FieldEditRequest, error) {
	field, current, _, err := s.prepareEdit(ctx, entrantID, fieldName, value)
	if err != nil {
		return models.FieldEditRequest{}, err
	}
	return s.queue(ctx, userID, entrantID, field, current, value)
}

func (s *Service) prepareEdit(ctx context.Context, entrantID int64, fieldName, value string) (models.ProfileField, *string, *string, error) {
	field, err := models.ParseProfileField(fieldName)
	if err != nil {
		return "", nil, nil, apperr.Wrap(apperr.ErrValidation, "Invalid field name", err)
	}
	if field == models.FieldName && strings.TrimSpace(value) == "" {
		return "", nil, nil, apperr.New(apperr.ErrValidation, "Name cannot be empty")
	}
	profile, err := s.profiles.GetProfile(ctx, entrantID)
	if err != nil {
		return "", nil, nil, notFound(err, "Profile not found")
	}
	return field, profile.Value(field), models.ClearedValue(value), nil
}

func (s *Service) queue(ctx context.Context, userID, entrantID int64, field models.ProfileField, current *string, value string) (models.FieldEditRequest, error) {
	req, err := s.edits.CreateEditRequest(ctx, models.FieldEditRequest{
		UserID:    userID,
		EntrantID: entrantID,
		FieldName: field,
		OldValue:  current,
		NewValue:  value,
	})
	if err != nil {
		return models.FieldEditRequest{}, fmt.Errorf("queue edit request: %w", err)
	}
	s.logger.Info("edit queued", zap.Int64("request_id", req.ID), zap.String("field", string(field)))
	return req, nil
}

// ListEdits returns requests in status, pending by default.
func (s *Service) ListEdits(ctx context.Context, status string) ([]models.FieldEditRequest, error) {
	st, err := parseStatus(status)
	if err != nil {
		return nil, err
	}
	return s.edits.ListEditRequests(ctx, st)
}

// ListMyEdits returns the caller's own requests.
func (s *Service) ListMyEdits(ctx context.Context, userID int64) ([]models.FieldEditRequest, error) {
	return s.edits.ListUserEditRequests(ctx, userID)
}

// ApproveEdit applies a pending request to its profile.
func (s *Service) ApproveEdit(ctx context.Context, actor models.Actor, id int64) error {
	req, err := s.pendingEdit(ctx, id)
	if err != nil {
		return err
	}
	review := models.Review{Status: models.EditApproved, ReviewerID: actor.UserID, At: s.now()}
	err = s.edits.ApproveEditRequest(ctx, id, review,
		entry(actor, models.ActionApproveEdit, models.EntityFieldEditRequest, strconv.FormatInt(id, 10), req.OldValue, req.AppliedValue()))
	return notFound(err, "Edit request is no longer pending or its profile is gone")
}

// RejectEdit closes a pending request without touching the profile.
func (s *Service) RejectEdit(ctx context.Context, actor models.Actor, id int64, reason string) error {
	req, err := s.pendingEdit(ctx, id)
	if err != nil {
		return err
	}
	review := models.Review{Status: models.EditRejected, ReviewerID: actor.UserID, At: s.now()}
	if reason = strings.TrimSpace(reason); reason != "" {
		review.Reason = &reason
	}
	err = s.edits.RejectEditRequest(ctx, id, review,
		entry(actor, models.ActionRejectEdit, models.EntityFieldEditRequest, strconv.FormatInt(id, 10), req.OldValue, strPtr(req.NewValue)))
	return notFound(err, "Edit request is no longer pending")
}

func (s *Service) pendingEdit(ctx context.Context, id int64) (models.FieldEditRequest, error) {
	req, err := s.edits.GetEditRequest(ctx, id)
	if err != nil {
		return models.FieldEditRequest{}, notFound(err, "Edit request not found")
	}
	if req.Status != models.EditPending {
		return models.FieldEditRequest{}, apperr.Newf(apperr.ErrValidation, "Edit request already %s", req.Status)
	}
	return req, nil
}

func parseStatus(status string) (models.EditStatus, error) {
	if status == "" {
		return models.EditPending, nil
	}
	st, ok := models.ParseEditStatus(status)
	if !ok {
		return "", apperr.Newf(apperr.ErrValidation, "Invalid status %q", status)
	}
	return st, nil
}
