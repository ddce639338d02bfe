package models

import "time"

// User captures an approved identity that may hold sessions.
type User struct {
	ID         int64      `json:"id"`
	GoogleID   string     `json:"google_id"`
	Email      string     `json:"email"`
	Name       string     `json:"name"`
	Role       Role       `json:"role"`
	IsApproved bool       `json:"is_approved"`
	IsActive   bool       `json:"is_active"`
	EntrantID  *int64     `json:"entrant_id"`
	PictureURL string     `json:"picture_url"`
	LastLogin  *time.Time `json:"last_login"`
	CreatedAt  time.Time  `json:"created_at"`
}

// UserListItem is a User joined with the name of its linked profile.
type UserListItem struct {
	User
	EntrantName *string `json:"entrant_name"`
}

// PendingUser is an OAuth identity waiting for an admin decision.
type PendingUser struct {
	ID          int64     `json:"id"`
	GoogleID    string    `json:"google_id"`
	Email       string    `json:"email"`
	Name        string    `json:"name"`
	PictureURL  string    `json:"picture_url"`
	IPAddress   string    `json:"ip_address"`
	UserAgent   string    `json:"user_agent"`
	RequestedAt time.Time `json:"requested_at"`
}

// UserPatch lists the admin-editable user attributes. Nil means untouched.
type UserPatch struct {
	Role           *Role
	IsActive       *bool
	EntrantID      *int64
	ClearEntrantID bool
}

// Empty reports whether the patch changes nothing.
func (p UserPatch) Empty() bool {
	return p.Role == nil && p.IsActive == nil && p.EntrantID == nil && !p.ClearEntrantID
}

// UserQuery pages through users with an optional name/email search.
type UserQuery struct {
	Search  string
	Page    int
	PerPage int
}
