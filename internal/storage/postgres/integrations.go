package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/hongminglow/lateral-entry-be/internal/models"
)

// UpsertLinkedInConnection stores or replaces a user's LinkedIn link.
func (s *Store) UpsertLinkedInConnection(ctx context.Context, c models.LinkedInConnection) error {
	const query = `
		INSERT INTO linkedin_connections (user_id, linkedin_id, access_token, profile_data, connected_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (user_id) DO UPDATE SET
			linkedin_id = EXCLUDED.linkedin_id,
			access_token = EXCLUDED.access_token,
			profile_data = EXCLUDED.profile_data,
			connected_at = NOW()`
	_, err := s.db.ExecContext(ctx, query, c.UserID, c.LinkedInID, c.AccessToken, c.ProfileData)
	return mapErr(err)
}

// GetLinkedInConnection fetches a user's LinkedIn link.
func (s *Store) GetLinkedInConnection(ctx context.Context, userID int64) (models.LinkedInConnection, error) {
	var c models.LinkedInConnection
	err := s.db.QueryRowContext(ctx, `
		SELECT user_id, linkedin_id, access_token, profile_data, connected_at
		FROM linkedin_connections WHERE user_id = $1`, userID,
	).Scan(&c.UserID, &c.LinkedInID, &c.AccessToken, &c.ProfileData, &c.ConnectedAt)
	return c, mapErr(err)
}

// DeleteLinkedInConnection unlinks LinkedIn; a missing link is not an error.
func (s *Store) DeleteLinkedInConnection(ctx context.Context, userID int64) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM linkedin_connections WHERE user_id = $1`, userID)
	return err
}

// RecordLinkedInSync appends a sync history row.
func (s *Store) RecordLinkedInSync(ctx context.Context, sync models.LinkedInSync) error {
	const query = `
		INSERT INTO linkedin_sync_history (user_id, sync_type, fields_synced, status, error_message)
		VALUES ($1, $2, $3, $4, $5)`
	_, err := s.db.ExecContext(ctx, query, sync.UserID, sync.SyncType, sync.FieldsSynced, sync.Status, sync.ErrorMessage)
	return err
}

const suggestionColumns = `id, user_id, suggestion_type, input_data, output_data, status, accepted_at, created_at`

// CreateSuggestion stores a generated suggestion together with its usage row.
func (s *Store) CreateSuggestion(ctx context.Context, sg models.AISuggestion, tokensUsed int) (models.AISuggestion, error) {
	var created models.AISuggestion
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		err := tx.QueryRowContext(ctx, `
			INSERT INTO ai_suggestions (user_id, suggestion_type, input_data, output_data, status)
			VALUES ($1, $2, $3, $4, 'generated')
			RETURNING `+suggestionColumns,
			sg.UserID, sg.SuggestionType, sg.InputData, sg.OutputData,
		).Scan(&created.ID, &created.UserID, &created.SuggestionType, &created.InputData, &created.OutputData,
			&created.Status, &created.AcceptedAt, &created.CreatedAt)
		if err != nil {
			return mapErr(err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO ai_usage (user_id, feature_type, tokens_used) VALUES ($1, $2, $3)`,
			sg.UserID, sg.SuggestionType, tokensUsed); err != nil {
			return fmt.Errorf("record ai usage: %w", err)
		}
		return nil
	})
	if err != nil {
		return models.AISuggestion{}, err
	}
	return created, nil
}

// GetSuggestion fetches one suggestion.
func (s *Store) GetSuggestion(ctx context.Context, id int64) (models.AISuggestion, error) {
	var sg models.AISuggestion
	err := s.db.QueryRowContext(ctx, `SELECT `+suggestionColumns+` FROM ai_suggestions WHERE id = $1`, id).
		Scan(&sg.ID, &sg.UserID, &sg.SuggestionType, &sg.InputData, &sg.OutputData, &sg.Status, &sg.AcceptedAt, &sg.CreatedAt)
	return sg, mapErr(err)
}

// AcceptSuggestion marks a suggestion as used.
func (s *Store) AcceptSuggestion(ctx context.Context, id int64, at time.Time) error {
	return expectOne(s.db.ExecContext(ctx,
		`UPDATE ai_suggestions SET status = 'accepted', accepted_at = $1 WHERE id = $2`, at, id))
}

// AIUsageStats aggregates a user's usage per feature.
func (s *Store) AIUsageStats(ctx context.Context, userID int64) ([]models.AIUsageStat, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT feature_type, COUNT(*), COALESCE(SUM(tokens_used), 0)
		FROM ai_usage
		WHERE user_id = $1
		GROUP BY feature_type
		ORDER BY feature_type`, userID)
	if err != nil {
		return nil, fmt.Errorf("ai usage stats: %w", err)
	}
	defer rows.Close()

	out := []models.AIUsageStat{}
	for rows.Next() {
		var st models.AIUsageStat
		if err := rows.Scan(&st.FeatureType, &st.Count, &st.TotalTokens); err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	return out, rows.Err()
}
