package models

import "time"

// SocialPost is an aggregated social media post.
type SocialPost struct {
	ID          int64     `json:"id"`
	Platform    string    `json:"platform"`
	ExternalID  string    `json:"external_id"`
	Author      string    `json:"author"`
	Content     string    `json:"content"`
	PostURL     string    `json:"post_url"`
	PostedAt    time.Time `json:"posted_at"`
	LikesCount  int64     `json:"likes_count"`
	SharesCount int64     `json:"shares_count"`
}

// NewsArticle is an aggregated news article, unique by URL.
type NewsArticle struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Summary     string    `json:"summary"`
	Source      string    `json:"source"`
	ArticleURL  string    `json:"article_url"`
	PublishedAt time.Time `json:"published_at"`
	Category    string    `json:"category"`
}

// JobListing is an aggregated job opening, unique by external id.
type JobListing struct {
	ID              int64     `json:"id"`
	ExternalID      string    `json:"external_id"`
	Title           string    `json:"title"`
	Organization    string    `json:"organization"`
	Location        string    `json:"location"`
	Domain          string    `json:"domain"`
	Description     string    `json:"description"`
	ExperienceLevel string    `json:"experience_level"`
	ApplyURL        string    `json:"apply_url"`
	Status          string    `json:"status"`
	PostedDate      time.Time `json:"posted_date"`
}

// FeedQuery pages through an aggregated feed with one optional filter.
type FeedQuery struct {
	Filter  string
	Search  string
	Page    int
	PerPage int
}

// JobPreferences are a user's saved job search criteria.
type JobPreferences struct {
	UserID               int64  `json:"user_id"`
	Keywords             string `json:"keywords"`
	PreferredLocations   string `json:"preferred_locations"`
	ExperienceLevel      string `json:"experience_level"`
	JobTypes             string `json:"job_types"`
	NotificationsEnabled bool   `json:"notifications_enabled"`
}
