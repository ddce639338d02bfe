package models

import "time"

// Session is the persisted proof of authentication. Token fields hold ciphertext.
type Session struct {
	ID           string
	UserID       int64
	AccessToken  string
	RefreshToken string
	IPAddress    string
	UserAgent    string
	CreatedAt    time.Time
	ExpiresAt    time.Time
}

// SessionWithUser is the row produced by joining a session with its owner.
type SessionWithUser struct {
	Session Session
	User    User
}

// SessionInfo is the token-free view of a session shown to its owner.
type SessionInfo struct {
	ID        string    `json:"id"`
	IPAddress string    `json:"ip_address"`
	UserAgent string    `json:"user_agent"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// UserContext is what an authenticated request carries to handlers.
type UserContext struct {
	SessionID  string `json:"-"`
	UserID     int64  `json:"id"`
	Email      string `json:"email"`
	Name       string `json:"name"`
	Role       Role   `json:"role"`
	IsApproved bool   `json:"is_approved"`
	IsActive   bool   `json:"is_active"`
	EntrantID  *int64 `json:"entrant_id"`
	PictureURL string `json:"picture_url"`
}

// IsAdmin reports whether the user holds the admin role.
func (u *UserContext) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// OwnsProfile reports whether the user is linked to the given profile.
func (u *UserContext) OwnsProfile(profileID int64) bool {
	return u != nil && u.EntrantID != nil && *u.EntrantID == profileID
}
