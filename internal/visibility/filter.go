// Package visibility decides which profile fields a viewer may read.
package visibility

import (
	"fmt"

	"github.com/hongminglow/lateral-entry-be/internal/models"
)

// Level is the access tier assigned to one profile field.
type Level string

const (
	Public     Level = "public"
	Restricted Level = "lateral_entrants_only"
	Private    Level = "private"
)

// ParseLevel validates a level name coming from a request.
func ParseLevel(value string) (Level, error) {
	switch Level(value) {
	case Public, Restricted, Private:
		return Level(value), nil
	}
	return "", fmt.Errorf("invalid visibility level %q", value)
}

// anchors are readable by everyone so listings can always identify a profile.
var anchors = map[string]struct{}{
	string(models.FieldID):       {},
	string(models.FieldName):     {},
	string(models.FieldPhotoURL): {},
}

// IsAnchor reports whether field is always visible.
func IsAnchor(field string) bool {
	_, ok := anchors[field]
	return ok
}

// Viewer is who is looking at a profile. The zero value is the anonymous viewer.
type Viewer struct {
	Role  models.Role
	Owner bool
}

// ViewerFor derives the viewer of profileID from an optional user.
func ViewerFor(user *models.UserContext, profileID int64) Viewer {
	if user == nil {
		return Viewer{}
	}
	return Viewer{Role: user.Role, Owner: user.OwnsProfile(profileID)}
}

// Visible applies the precedence rule to one field.
func Visible(field string, level Level, viewer Viewer) bool {
	switch {
	case IsAnchor(field):
		return true
	case viewer.Owner:
		return true
	case viewer.Role == models.RoleAdmin:
		return true
	case level == Public || level == "":
		return true
	case level == Restricted:
		return viewer.Role == models.RoleAppointee
	default:
		return false
	}
}

// Filter returns a copy of fields where every value the viewer may not read is nil. Keys
// are never dropped. Fields without a setting are public. fields is not modified.
func Filter(fields map[string]any, settings map[string]Level, viewer Viewer) map[string]any {
	out := make(map[string]any, len(fields))
	for field, value := range fields {
		if Visible(field, settings[field], viewer) {
			out[field] = value
		} else {
			out[field] = nil
		}
	}
	return out
}

// Levels converts stored settings, treating unknown values as private.
func Levels(stored map[string]string) map[string]Level {
	out := make(map[string]Level, len(stored))
	for field, raw := range stored {
		level, err := ParseLevel(raw)
		if err != nil {
			level = Private
		}
		out[field] = level
	}
	return out
}

// Effective lists the level of every editable field, filling in the public default.
func Effective(stored map[string]string) []models.FieldVisibility {
	levels := Levels(stored)
	out := make([]models.FieldVisibility, 0, len(models.EditableFields))
	for _, f := range models.EditableFields {
		level, ok := levels[string(f)]
		if !ok {
			level = Public
		}
		out = append(out, models.FieldVisibility{FieldName: string(f), VisibilityLevel: string(level)})
	}
	return out
}
