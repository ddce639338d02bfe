package models

import "time"

// FieldVisibility is one stored (profile, field) visibility setting.
type FieldVisibility struct {
	FieldName       string `json:"field_name"`
	VisibilityLevel string `json:"visibility_level"`
}

// VisibilityChange records a visibility transition for history.
type VisibilityChange struct {
	EntrantID     int64
	FieldName     string
	OldVisibility string
	NewVisibility string
	ChangedBy     int64
	ChangedAt     time.Time
}
