// Package profiles serves lateral entrant profiles through the field visibility filter and
// lets owners manage the visibility of their own fields.
package profiles

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/hongminglow/lateral-entry-be/internal/apperr"
	"github.com/hongminglow/lateral-entry-be/internal/models"
	"github.com/hongminglow/lateral-entry-be/internal/storage"
	"github.com/hongminglow/lateral-entry-be/internal/visibility"
)

// Detail is a single filtered profile.
type Detail struct {
	Profile      map[string]any `json:"profile"`
	IsOwnProfile bool           `json:"is_own_profile"`
}

// Service reads profiles and manages visibility.
type Service struct {
	profiles   storage.ProfileStore
	visibility storage.VisibilityStore
	logger     *zap.Logger
	now        func() time.Time
}

// NewService wires the service.
func NewService(profiles storage.ProfileStore, vis storage.VisibilityStore, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{profiles: profiles, visibility: vis, logger: logger, now: time.Now}
}

// List returns one page of profiles, each filtered for viewer. viewer may be nil.
func (s *Service) List(ctx context.Context, q models.ProfileQuery, viewer *models.UserContext) ([]map[string]any, int64, error) {
	q.Page, q.PerPage = models.ClampPage(q.Page, q.PerPage)
	rows, total, err := s.profiles.ListProfiles(ctx, q)
	if err != nil {
		return nil, 0, fmt.Errorf("list profiles: %w", err)
	}
	ids := make([]int64, len(rows))
	for i, p := range rows {
		ids[i] = p.ID
	}
	settings := map[int64]map[string]string{}
	if len(ids) > 0 {
		if settings, err = s.visibility.VisibilitySettings(ctx, ids...); err != nil {
			return nil, 0, fmt.Errorf("load visibility: %w", err)
		}
	}

	out := make([]map[string]any, 0, len(rows))
	for _, p := range rows {
		out = append(out, visibility.Filter(p.Fields(), visibility.Levels(settings[p.ID]), visibility.ViewerFor(viewer, p.ID)))
	}
	return out, total, nil
}

// Get returns one profile filtered for viewer.
func (s *Service) Get(ctx context.Context, id int64, viewer *models.UserContext) (Detail, error) {
	p, err := s.profile(ctx, id)
	if err != nil {
		return Detail{}, err
	}
	settings, err := s.visibility.VisibilitySettings(ctx, id)
	if err != nil {
		return Detail{}, fmt.Errorf("load visibility: %w", err)
	}
	v := visibility.ViewerFor(viewer, id)
	return Detail{
		Profile:      visibility.Filter(p.Fields(), visibility.Levels(settings[id]), v),
		IsOwnProfile: v.Owner,
	}, nil
}

// Mine returns the caller's own profile unfiltered.
func (s *Service) Mine(ctx context.Context, user *models.UserContext) (map[string]any, error) {
	if user == nil || user.EntrantID == nil {
		return nil, apperr.New(apperr.ErrNotFound, "No profile linked to your account")
	}
	p, err := s.profile(ctx, *user.EntrantID)
	if err != nil {
		return nil, err
	}
	return p.Fields(), nil
}

// Visibility lists the effective level of every field. Owner or admin only.
func (s *Service) Visibility(ctx context.Context, id int64, user *models.UserContext) ([]models.FieldVisibility, error) {
	if !user.OwnsProfile(id) && !user.IsAdmin() {
		return nil, apperr.New(apperr.ErrForbidden, "Access denied")
	}
	if _, err := s.profile(ctx, id); err != nil {
		return nil, err
	}
	settings, err := s.visibility.VisibilitySettings(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load visibility: %w", err)
	}
	return visibility.Effective(settings[id]), nil
}

// SetVisibility changes one field's level on the caller's own profile.
func (s *Service) SetVisibility(ctx context.Context, id int64, user *models.UserContext, field, level string) error {
	return s.BulkSetVisibility(ctx, id, user, map[string]string{field: level})
}

// BulkSetVisibility validates every requested change before writing any of them.
func (s *Service) BulkSetVisibility(ctx context.Context, id int64, user *models.UserContext, levels map[string]string) error {
	if !user.OwnsProfile(id) {
		return apperr.New(apperr.ErrForbidden, "You can only modify your own profile")
	}
	if len(levels) == 0 {
		return apperr.New(apperr.ErrValidation, "No visibility settings provided")
	}
	for field, raw := range levels {
		if _, err := models.ParseProfileField(field); err != nil {
			return apperr.Wrap(apperr.ErrValidation, "Invalid field name", err)
		}
		if visibility.IsAnchor(field) {
			return apperr.Newf(apperr.ErrValidation, "Field %s is always visible", field)
		}
		if _, err := visibility.ParseLevel(raw); err != nil {
			return apperr.Wrap(apperr.ErrValidation, "Invalid visibility level", err)
		}
	}

	settings, err := s.visibility.VisibilitySettings(ctx, id)
	if err != nil {
		return fmt.Errorf("load visibility: %w", err)
	}
	current := settings[id]
	now := s.now()
	changes := make([]models.VisibilityChange, 0, len(levels))
	for _, f := range models.EditableFields {
		raw, ok := levels[string(f)]
		if !ok {
			continue
		}
		old := current[string(f)]
		if old == "" {
			old = string(visibility.Public)
		}
		changes = append(changes, models.VisibilityChange{
			EntrantID:     id,
			FieldName:     string(f),
			OldVisibility: old,
			NewVisibility: raw,
			ChangedBy:     user.UserID,
			ChangedAt:     now,
		})
	}
	if err := s.visibility.SetVisibility(ctx, changes...); err != nil {
		return fmt.Errorf("set visibility: %w", err)
	}
	s.logger.Info("visibility updated", zap.Int64("entrant_id", id), zap.Int("fields", len(changes)))
	return nil
}

func (s *Service) profile(ctx context.Context, id int64) (models.Profile, error) {
	p, err := s.profiles.GetProfile(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return models.Profile{}, apperr.New(apperr.ErrNotFound, "Profile not found")
	}
	return p, err
}
