package models

import "time"

// Audit actions.
const (
	ActionLogin         = "login"
	ActionLogout        = "logout"
	ActionApproveUser   = "approve_user"
	ActionRejectUser    = "reject_user"
	ActionUpdateUser    = "update_user"
	ActionDeleteUser    = "delete_user"
	ActionApplyEdit     = "apply_edit"
	ActionApproveEdit   = "approve_edit"
	ActionRejectEdit    = "reject_edit"
	ActionApproveUpload = "approve_upload"
	ActionRejectUpload  = "reject_upload"
	ActionResolveFlag   = "resolve_flag"
	ActionUpdateSetting = "update_setting"
	ActionPurgeSessions = "purge_sessions"
)

// Audit entity types.
const (
	EntitySession          = "session"
	EntityUser             = "user"
	EntityPendingUser      = "pending_user"
	EntityEntrant          = "lateral_entrant"
	EntityFieldEditRequest = "field_edit_request"
	EntityUpload           = "upload"
	EntityAdminSetting     = "admin_setting"
	EntityFlaggedContent   = "flagged_content"
)

// AuditEntry is one append-only audit log row.
type AuditEntry struct {
	ID         int64     `json:"id"`
	UserID     *int64    `json:"user_id"`
	Action     string    `json:"action"`
	EntityType string    `json:"entity_type"`
	EntityID   string    `json:"entity_id"`
	OldValue   *string   `json:"old_value"`
	NewValue   *string   `json:"new_value"`
	IPAddress  string    `json:"ip_address"`
	UserAgent  string    `json:"user_agent"`
	CreatedAt  time.Time `json:"created_at"`

	UserName  *string `json:"user_name,omitempty"`
	UserEmail *string `json:"user_email,omitempty"`
}

// AuditQuery pages through the audit log.
type AuditQuery struct {
	Action  string
	Page    int
	PerPage int
}

// Actor identifies who performs an audited action and from where.
type Actor struct {
	UserID    int64
	IPAddress string
	UserAgent string
}
