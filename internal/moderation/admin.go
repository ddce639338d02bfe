package moderation

import (
	"context"
	"strings"
	"time"

	"github.com/hongminglow/lateral-entry-be/internal/apperr"
	"github.com/hongminglow/lateral-entry-be/internal/models"
)

// RecentLoginWindow bounds the dashboard's recent login counter.
const RecentLoginWindow = 24 * time.Hour

// Settings lists every admin setting.
func (s *Service) Settings(ctx context.Context) ([]models.AdminSetting, error) {
	return s.settings.ListSettings(ctx)
}

// UpdateSetting changes one setting and records the old and new values.
func (s *Service) UpdateSetting(ctx context.Context, actor models.Actor, key, value string) (models.AdminSetting, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return models.AdminSetting{}, apperr.New(apperr.ErrValidation, "Value is required")
	}
	if key == models.SettingModerationEnabled {
		value = strings.ToLower(value)
		if value != "true" && value != "false" {
			return models.AdminSetting{}, apperr.New(apperr.ErrValidation, "moderation_enabled must be true or false")
		}
	}
	current, err := s.settings.GetSetting(ctx, key)
	if err != nil {
		return models.AdminSetting{}, notFound(err, "Setting not found")
	}
	if _, err := s.settings.UpdateSetting(ctx, key, value, actor.UserID,
		entry(actor, models.ActionUpdateSetting, models.EntityAdminSetting, key, &current.Value, &value)); err != nil {
		return models.AdminSetting{}, notFound(err, "Setting not found")
	}
	now := s.now()
	updated := current
	updated.Value = value
	updated.UpdatedAt = &now
	updated.UpdatedBy = &actor.UserID
	return updated, nil
}

// AuditLog pages through the audit trail.
func (s *Service) AuditLog(ctx context.Context, q models.AuditQuery) ([]models.AuditEntry, int64, error) {
	return s.audit.ListAudit(ctx, q)
}

// Dashboard returns the moderation backlog counters.
func (s *Service) Dashboard(ctx context.Context) (models.DashboardStats, error) {
	return s.stats.DashboardStats(ctx, s.now().Add(-RecentLoginWindow))
}
