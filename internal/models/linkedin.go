package models

import "time"

// LinkedInConnection links a user to a LinkedIn member. AccessToken holds ciphertext.
type LinkedInConnection struct {
	UserID      int64
	LinkedInID  string
	AccessToken string
	ProfileData string
	ConnectedAt time.Time
}

// LinkedInSync is one entry in the sync history.
type LinkedInSync struct {
	UserID       int64
	SyncType     string
	FieldsSynced int
	Status       string
	ErrorMessage *string
}
