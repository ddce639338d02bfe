package models

import "time"

// EditStatus is the lifecycle state of a FieldEditRequest.
type EditStatus string

const (
	EditPending  EditStatus = "pending"
	EditApproved EditStatus = "approved"
	EditRejected EditStatus = "rejected"
)

// ParseEditStatus validates a status filter.
func ParseEditStatus(value string) (EditStatus, bool) {
	switch EditStatus(value) {
	case EditPending, EditApproved, EditRejected:
		return EditStatus(value), true
	}
	return "", false
}

// FieldEditRequest is a queued change to one profile field.
type FieldEditRequest struct {
	ID              int64        `json:"id"`
	UserID          int64        `json:"user_id"`
	EntrantID       int64        `json:"entrant_id"`
	FieldName       ProfileField `json:"field_name"`
	OldValue        *string      `json:"old_value"`
	NewValue        string       `json:"new_value"`
	Status          EditStatus   `json:"status"`
	ReviewedBy      *int64       `json:"reviewed_by"`
	ReviewedAt      *time.Time   `json:"reviewed_at"`
	RejectionReason *string      `json:"rejection_reason"`
	CreatedAt       time.Time    `json:"created_at"`

	UserName    string  `json:"user_name,omitempty"`
	UserEmail   string  `json:"user_email,omitempty"`
	EntrantName *string `json:"entrant_name,omitempty"`
}

// ClearedValue maps a submitted field value to what gets stored: an empty string
// clears the column.
func ClearedValue(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}

// AppliedValue is the column value approving r would store.
func (r FieldEditRequest) AppliedValue() *string {
	return ClearedValue(r.NewValue)
}

// Upload is a user-submitted file awaiting or past moderation.
type Upload struct {
	ID               int64      `json:"id"`
	UserID           int64      `json:"user_id"`
	FilePath         string     `json:"file_path"`
	FileType         string     `json:"file_type"`
	FileSize         int64      `json:"file_size"`
	Purpose          string     `json:"purpose"`
	ModerationStatus EditStatus `json:"moderation_status"`
	ModeratedBy      *int64     `json:"moderated_by"`
	ModeratedAt      *time.Time `json:"moderated_at"`
	RejectionReason  *string    `json:"rejection_reason"`
	UploadedAt       time.Time  `json:"uploaded_at"`

	UserName  string `json:"user_name,omitempty"`
	UserEmail string `json:"user_email,omitempty"`
}

// Review is the outcome an admin records on a queued item.
type Review struct {
	Status     EditStatus
	ReviewerID int64
	Reason     *string
	At         time.Time
}
