package models

import "time"

// AI suggestion types.
const (
	SuggestionBio         = "bio_generation"
	SuggestionImproveText = "text_improvement"
)

// AISuggestion is one generated text kept for the user to accept.
type AISuggestion struct {
	ID             int64      `json:"id"`
	UserID         int64      `json:"user_id"`
	SuggestionType string     `json:"suggestion_type"`
	InputData      string     `json:"input_data"`
	OutputData     string     `json:"output_data"`
	Status         string     `json:"status"`
	AcceptedAt     *time.Time `json:"accepted_at"`
	CreatedAt      time.Time  `json:"created_at"`
}

// AIUsageStat aggregates token use per feature.
type AIUsageStat struct {
	FeatureType string `json:"feature_type"`
	Count       int64  `json:"count"`
	TotalTokens int64  `json:"total_tokens"`
}
