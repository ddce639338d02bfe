// Package dto holds the JSON request bodies accepted by the HTTP handlers. Tags are read by
// go-playground/validator.
package dto

import "github.com/hongminglow/lateral-entry-be/internal/models"

type ApprovePendingRequest struct {
	EntrantID *int64 `json:"entrant_id" validate:"omitempty,gt=0"`
}

type ReasonRequest struct {
	Reason string `json:"reason" validate:"max=1000"`
}

// UserPatchRequest distinguishes an omitted entrant_id from an explicit null through
// UnlinkEntrant.
type UserPatchRequest struct {
	Role          *string `json:"role" validate:"omitempty,oneof=admin appointee"`
	IsActive      *bool   `json:"is_active"`
	EntrantID     *int64  `json:"entrant_id" validate:"omitempty,gt=0"`
	UnlinkEntrant bool    `json:"unlink_entrant"`
}

// Patch converts the request into the storage patch.
func (r UserPatchRequest) Patch() models.UserPatch {
	p := models.UserPatch{IsActive: r.IsActive, EntrantID: r.EntrantID, ClearEntrantID: r.UnlinkEntrant}
	if r.Role != nil {
		role := models.Role(*r.Role)
		p.Role = &role
	}
	return p
}

type ResolveFlagRequest struct {
	Action string `json:"action" validate:"required,oneof=remove keep"`
	Notes  string `json:"notes" validate:"max=2000"`
}

type SettingRequest struct {
	Value string `json:"value" validate:"required"`
}

type VisibilityRequest struct {
	VisibilityLevel string `json:"visibility_level" validate:"required,oneof=public lateral_entrants_only private"`
}

type VisibilityUpdate struct {
	FieldName       string `json:"field_name" validate:"required"`
	VisibilityLevel string `json:"visibility_level" validate:"required,oneof=public lateral_entrants_only private"`
}

type BulkVisibilityRequest struct {
	Updates []VisibilityUpdate `json:"updates" validate:"required,min=1,dive"`
}

// Levels folds the updates into field -> level. A repeated field keeps its last level.
func (r BulkVisibilityRequest) Levels() map[string]string {
	out := make(map[string]string, len(r.Updates))
	for _, u := range r.Updates {
		out[u.FieldName] = u.VisibilityLevel
	}
	return out
}

// FieldEditRequest carries the proposed value. An empty string clears the field; a missing
// value is rejected.
type FieldEditRequest struct {
	Value *string `json:"value" validate:"required"`
}

type FlagRequest struct {
	ContentType string `json:"content_type" validate:"required,oneof=profile_field upload"`
	ContentID   string `json:"content_id" validate:"required"`
	EntrantID   *int64 `json:"entrant_id" validate:"omitempty,gt=0"`
	Reason      string `json:"reason" validate:"required,max=1000"`
}

type JobPreferencesRequest struct {
	Keywords             string `json:"keywords" validate:"max=500"`
	PreferredLocations   string `json:"preferred_locations" validate:"max=500"`
	ExperienceLevel      string `json:"experience_level" validate:"max=100"`
	JobTypes             string `json:"job_types" validate:"max=200"`
	NotificationsEnabled *bool  `json:"notifications_enabled"`
}

// Preferences converts the request. Notifications default to on.
func (r JobPreferencesRequest) Preferences(userID int64) models.JobPreferences {
	notify := true
	if r.NotificationsEnabled != nil {
		notify = *r.NotificationsEnabled
	}
	return models.JobPreferences{
		UserID:               userID,
		Keywords:             r.Keywords,
		PreferredLocations:   r.PreferredLocations,
		ExperienceLevel:      r.ExperienceLevel,
		JobTypes:             r.JobTypes,
		NotificationsEnabled: notify,
	}
}

type RefreshJobsRequest struct {
	Query  string `json:"query" validate:"max=200"`
	Domain string `json:"domain" validate:"max=100"`
}

type SuggestBioRequest struct {
	Position   string `json:"position" validate:"max=200"`
	Department string `json:"department" validate:"max=200"`
	Expertise  string `json:"expertise" validate:"max=500"`
}

type ImproveTextRequest struct {
	Text      string `json:"text" validate:"required,max=5000"`
	FieldType string `json:"field_type" validate:"omitempty,oneof=bio achievements responsibilities general"`
}
