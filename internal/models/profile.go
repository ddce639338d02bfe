package models

import (
	"fmt"
	"time"
)

// ProfileField names one column of a lateral entrant profile. Only values produced by
// ParseProfileField ever reach SQL, so the set below doubles as the identifier whitelist.
type ProfileField string

const (
	FieldID                    ProfileField = "id"
	FieldName                  ProfileField = "name"
	FieldPhotoURL              ProfileField = "photo_url"
	FieldBatchYear             ProfileField = "batch_year"
	FieldPosition              ProfileField = "position"
	FieldDepartment            ProfileField = "department"
	FieldMinistry              ProfileField = "ministry"
	FieldState                 ProfileField = "state"
	FieldEducationalBackground ProfileField = "educational_background"
	FieldPreviousExperience    ProfileField = "previous_experience"
	FieldDateOfAppointment     ProfileField = "date_of_appointment"
	FieldProfileSummary        ProfileField = "profile_summary"
	FieldBio                   ProfileField = "bio"
	FieldAchievements          ProfileField = "achievements"
	FieldEmail                 ProfileField = "email"
	FieldPhone                 ProfileField = "phone"
	FieldLinkedInURL           ProfileField = "linkedin_url"
	FieldTwitterHandle         ProfileField = "twitter_handle"
)

// EditableFields is every profile column an owner may change, in column order.
var EditableFields = []ProfileField{
	FieldName, FieldPhotoURL, FieldBatchYear, FieldPosition, FieldDepartment, FieldMinistry,
	FieldState, FieldEducationalBackground, FieldPreviousExperience, FieldDateOfAppointment,
	FieldProfileSummary, FieldBio, FieldAchievements, FieldEmail, FieldPhone,
	FieldLinkedInURL, FieldTwitterHandle,
}

var editable = func() map[ProfileField]struct{} {
	out := make(map[ProfileField]struct{}, len(EditableFields))
	for _, f := range EditableFields {
		out[f] = struct{}{}
	}
	return out
}()

// ParseProfileField validates a caller-supplied field name against the editable set.
func ParseProfileField(name string) (ProfileField, error) {
	f := ProfileField(name)
	if _, ok := editable[f]; !ok {
		return "", fmt.Errorf("unknown profile field %q", name)
	}
	return f, nil
}

// Profile is a lateral entrant record. Text columns are nullable.
type Profile struct {
	ID                    int64
	Name                  string
	PhotoURL              *string
	BatchYear             *string
	Position              *string
	Department            *string
	Ministry              *string
	State                 *string
	EducationalBackground *string
	PreviousExperience    *string
	DateOfAppointment     *string
	ProfileSummary        *string
	Bio                   *string
	Achievements          *string
	Email                 *string
	Phone                 *string
	LinkedInURL           *string
	TwitterHandle         *string
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// Value returns the current value of an editable field.
func (p Profile) Value(field ProfileField) *string {
	if field == FieldName {
		name := p.Name
		return &name
	}
	if ptr := p.fieldPtr(field); ptr != nil {
		return *ptr
	}
	return nil
}

// Set assigns an editable field in memory.
func (p *Profile) Set(field ProfileField, value *string) {
	if field == FieldName {
		if value != nil {
			p.Name = *value
		}
		return
	}
	if ptr := p.fieldPtr(field); ptr != nil {
		*ptr = value
	}
}

func (p *Profile) fieldPtr(field ProfileField) **string {
	switch field {
	case FieldPhotoURL:
		return &p.PhotoURL
	case FieldBatchYear:
		return &p.BatchYear
	case FieldPosition:
		return &p.Position
	case FieldDepartment:
		return &p.Department
	case FieldMinistry:
		return &p.Ministry
	case FieldState:
		return &p.State
	case FieldEducationalBackground:
		return &p.EducationalBackground
	case FieldPreviousExperience:
		return &p.PreviousExperience
	case FieldDateOfAppointment:
		return &p.DateOfAppointment
	case FieldProfileSummary:
		return &p.ProfileSummary
	case FieldBio:
		return &p.Bio
	case FieldAchievements:
		return &p.Achievements
	case FieldEmail:
		return &p.Email
	case FieldPhone:
		return &p.Phone
	case FieldLinkedInURL:
		return &p.LinkedInURL
	case FieldTwitterHandle:
		return &p.TwitterHandle
	}
	return nil
}

// Fields flattens the profile into the field→value mapping the visibility filter works on.
func (p Profile) Fields() map[string]any {
	out := make(map[string]any, len(EditableFields)+1)
	out[string(FieldID)] = p.ID
	for _, f := range EditableFields {
		if v := p.Value(f); v != nil {
			out[string(f)] = *v
		} else {
			out[string(f)] = nil
		}
	}
	return out
}

// ProfileQuery selects a page of profiles.
type ProfileQuery struct {
	Search  string
	Page    int
	PerPage int
}
