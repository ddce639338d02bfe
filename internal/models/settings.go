package models

import "time"

// SettingModerationEnabled gates whether profile edits need admin approval.
const SettingModerationEnabled = "moderation_enabled"

// AdminSetting is a key/value runtime switch managed by admins.
type AdminSetting struct {
	Key         string     `json:"setting_key"`
	Value       string     `json:"setting_value"`
	Description string     `json:"description"`
	UpdatedAt   *time.Time `json:"updated_at"`
	UpdatedBy   *int64     `json:"updated_by"`
}

// DashboardStats summarises the moderation backlog.
type DashboardStats struct {
	PendingApprovals int64 `json:"pending_approvals"`
	TotalUsers       int64 `json:"total_users"`
	PendingEdits     int64 `json:"pending_edits"`
	PendingUploads   int64 `json:"pending_uploads"`
	FlaggedContent   int64 `json:"flagged_content"`
	RecentLogins     int64 `json:"recent_logins"`
}
