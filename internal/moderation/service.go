// Package moderation implements the edit path of profiles and the admin review queues:
// field edit requests, uploads, content flags, settings and the audit trail.
package moderation

import (
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/hongminglow/lateral-entry-be/internal/apperr"
	"github.com/hongminglow/lateral-entry-be/internal/models"
	"github.com/hongminglow/lateral-entry-be/internal/storage"
)

// Stores groups the persistence the service needs.
type Stores struct {
	Profiles storage.ProfileStore
	Edits    storage.EditRequestStore
	Uploads  storage.UploadStore
	Flags    storage.FlagStore
	Settings storage.SettingsStore
	Audit    storage.AuditStore
	Stats    storage.StatsStore
}

// Service is the moderation workflow.
type Service struct {
	profiles storage.ProfileStore
	edits    storage.EditRequestStore
	uploads  storage.UploadStore
	flags    storage.FlagStore
	settings storage.SettingsStore
	audit    storage.AuditStore
	stats    storage.StatsStore
	files    *Files
	logger   *zap.Logger
	now      func() time.Time
}

// New wires the service. files may be nil when uploads are disabled.
func New(stores Stores, files *Files, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		profiles: stores.Profiles,
		edits:    stores.Edits,
		uploads:  stores.Uploads,
		flags:    stores.Flags,
		settings: stores.Settings,
		audit:    stores.Audit,
		stats:    stores.Stats,
		files:    files,
		logger:   logger,
		now:      time.Now,
	}
}

func notFound(err error, message string) error {
	if errors.Is(err, storage.ErrNotFound) {
		return apperr.New(apperr.ErrNotFound, message)
	}
	return err
}

func entry(actor models.Actor, action, entityType, entityID string, old, updated *string) models.AuditEntry {
	e := models.AuditEntry{
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		OldValue:   old,
		NewValue:   updated,
		IPAddress:  actor.IPAddress,
		UserAgent:  actor.UserAgent,
	}
	if actor.UserID != 0 {
		id := actor.UserID
		e.UserID = &id
	}
	return e
}

func strPtr(s string) *string {
	return &s
}
