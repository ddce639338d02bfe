package models

import "time"

// Flagged content types.
const (
	FlagProfileField = "profile_field"
	FlagUpload       = "upload"
)

// Flag resolutions.
const (
	FlagActionRemove = "remove"
	FlagActionKeep   = "keep"
)

// FlaggedContent is a user report against a profile field or an upload.
type FlaggedContent struct {
	ID          int64      `json:"id"`
	ContentType string     `json:"content_type"`
	ContentID   string     `json:"content_id"`
	EntrantID   *int64     `json:"entrant_id"`
	Reason      string     `json:"reason"`
	ReportedBy  int64      `json:"reported_by"`
	Status      string     `json:"status"`
	ResolvedBy  *int64     `json:"resolved_by"`
	ResolvedAt  *time.Time `json:"resolved_at"`
	AdminNotes  *string    `json:"admin_notes"`
	ReportedAt  time.Time  `json:"reported_at"`

	ReporterName  string `json:"reporter_name,omitempty"`
	ReporterEmail string `json:"reporter_email,omitempty"`
}

// FlagResolution is what an admin decides on a flag.
type FlagResolution struct {
	Action     string
	Notes      string
	ResolverID int64
	At         time.Time
}
