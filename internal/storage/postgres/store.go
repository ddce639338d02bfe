package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" database/sql driver

	"github.com/hongminglow/lateral-entry-be/internal/models"
	"github.com/hongminglow/lateral-entry-be/internal/storage"
)

// Ensure Store satisfies every storage interface at compile time.
var (
	_ storage.UserStore        = (*Store)(nil)
	_ storage.PendingUserStore = (*Store)(nil)
	_ storage.SessionStore     = (*Store)(nil)
	_ storage.ProfileStore     = (*Store)(nil)
	_ storage.VisibilityStore  = (*Store)(nil)
	_ storage.EditRequestStore = (*Store)(nil)
	_ storage.UploadStore      = (*Store)(nil)
	_ storage.FlagStore        = (*Store)(nil)
	_ storage.AuditStore       = (*Store)(nil)
	_ storage.SettingsStore    = (*Store)(nil)
	_ storage.StatsStore       = (*Store)(nil)
	_ storage.FeedStore        = (*Store)(nil)
	_ storage.JobStore         = (*Store)(nil)
	_ storage.LinkedInStore    = (*Store)(nil)
	_ storage.AIStore          = (*Store)(nil)
)

// Store provides Postgres-backed persistence for the directory.
type Store struct {
	db *sql.DB
}

// queryer is satisfied by both *sql.DB and *sql.Tx.
type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Open connects to databaseURL, verifies the connection and runs migrations.
func Open(ctx context.Context, databaseURL string) (*Store, error) {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)
	db.SetConnMaxIdleTime(10 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	s := New(db)
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// New wraps an existing handle without running migrations.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Close releases database resources.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Ping reports whether the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS lateral_entrants (
			id BIGSERIAL PRIMARY KEY,
			name TEXT NOT NULL,
			photo_url TEXT,
			batch_year TEXT,
			position TEXT,
			department TEXT,
			ministry TEXT,
			state TEXT,
			educational_background TEXT,
			previous_experience TEXT,
			date_of_appointment TEXT,
			profile_summary TEXT,
			bio TEXT,
			achievements TEXT,
			email TEXT,
			phone TEXT,
			linkedin_url TEXT,
			twitter_handle TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);`,
		`CREATE TABLE IF NOT EXISTS users (
			id BIGSERIAL PRIMARY KEY,
			google_id TEXT UNIQUE NOT NULL,
			email TEXT UNIQUE NOT NULL,
			name TEXT NOT NULL,
			role TEXT NOT NULL DEFAULT 'appointee' CHECK (role IN ('admin', 'appointee')),
			is_approved BOOLEAN NOT NULL DEFAULT FALSE,
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			entrant_id BIGINT REFERENCES lateral_entrants(id) ON DELETE SET NULL,
			picture_url TEXT NOT NULL DEFAULT '',
			last_login TIMESTAMPTZ,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);`,
		`CREATE TABLE IF NOT EXISTS pending_users (
			id BIGSERIAL PRIMARY KEY,
			google_id TEXT UNIQUE NOT NULL,
			email TEXT NOT NULL,
			name TEXT NOT NULL,
			picture_url TEXT NOT NULL DEFAULT '',
			ip_address TEXT NOT NULL DEFAULT '',
			user_agent TEXT NOT NULL DEFAULT '',
			requested_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);`,
		`CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			access_token TEXT NOT NULL DEFAULT '',
			refresh_token TEXT NOT NULL DEFAULT '',
			ip_address TEXT NOT NULL DEFAULT '',
			user_agent TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			expires_at TIMESTAMPTZ NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS sessions_user_id_idx ON sessions (user_id);`,
		`CREATE INDEX IF NOT EXISTS sessions_expires_at_idx ON sessions (expires_at);`,
		`CREATE TABLE IF NOT EXISTS field_visibility_settings (
			entrant_id BIGINT NOT NULL REFERENCES lateral_entrants(id) ON DELETE CASCADE,
			field_name TEXT NOT NULL,
			visibility_level TEXT NOT NULL CHECK (visibility_level IN ('public', 'lateral_entrants_only', 'private')),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			PRIMARY KEY (entrant_id, field_name)
		);`,
		`CREATE TABLE IF NOT EXISTS visibility_audit (
			id BIGSERIAL PRIMARY KEY,
			entrant_id BIGINT NOT NULL,
			field_name TEXT NOT NULL,
			old_visibility TEXT NOT NULL,
			new_visibility TEXT NOT NULL,
			changed_by BIGINT,
			changed_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);`,
		`CREATE TABLE IF NOT EXISTS field_edit_requests (
			id BIGSERIAL PRIMARY KEY,
			user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			entrant_id BIGINT NOT NULL REFERENCES lateral_entrants(id) ON DELETE CASCADE,
			field_name TEXT NOT NULL,
			old_value TEXT,
			new_value TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'pending',
			reviewed_by BIGINT,
			reviewed_at TIMESTAMPTZ,
			rejection_reason TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);`,
		`CREATE INDEX IF NOT EXISTS field_edit_requests_status_idx ON field_edit_requests (status);`,
		`CREATE TABLE IF NOT EXISTS uploads (
			id BIGSERIAL PRIMARY KEY,
			user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			file_path TEXT NOT NULL,
			file_type TEXT NOT NULL DEFAULT '',
			file_size BIGINT NOT NULL DEFAULT 0,
			purpose TEXT NOT NULL DEFAULT '',
			moderation_status TEXT NOT NULL DEFAULT 'pending',
			moderated_by BIGINT,
			moderated_at TIMESTAMPTZ,
			rejection_reason TEXT,
			uploaded_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);`,
		`CREATE TABLE IF NOT EXISTS flagged_content (
			id BIGSERIAL PRIMARY KEY,
			content_type TEXT NOT NULL,
			content_id TEXT NOT NULL,
			entrant_id BIGINT,
			reason TEXT NOT NULL DEFAULT '',
			reported_by BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			status TEXT NOT NULL DEFAULT 'pending',
			resolved_by BIGINT,
			resolved_at TIMESTAMPTZ,
			admin_notes TEXT,
			reported_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);`,
		`CREATE TABLE IF NOT EXISTS audit_log (
			id BIGSERIAL PRIMARY KEY,
			user_id BIGINT REFERENCES users(id) ON DELETE SET NULL,
			action TEXT NOT NULL,
			entity_type TEXT NOT NULL DEFAULT '',
			entity_id TEXT NOT NULL DEFAULT '',
			old_value TEXT,
			new_value TEXT,
			ip_address TEXT NOT NULL DEFAULT '',
			user_agent TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);`,
		`CREATE INDEX IF NOT EXISTS audit_log_action_idx ON audit_log (action);`,
		`CREATE TABLE IF NOT EXISTS admin_settings (
			setting_key TEXT PRIMARY KEY,
			setting_value TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			updated_at TIMESTAMPTZ,
			updated_by BIGINT
		);`,
		`INSERT INTO admin_settings (setting_key, setting_value, description)
			VALUES ('moderation_enabled', 'true', 'Require admin approval for profile edits')
			ON CONFLICT (setting_key) DO NOTHING;`,
		`CREATE TABLE IF NOT EXISTS social_feed_items (
			id BIGSERIAL PRIMARY KEY,
			platform TEXT NOT NULL DEFAULT '',
			external_id TEXT UNIQUE NOT NULL,
			author TEXT NOT NULL DEFAULT '',
			content TEXT NOT NULL DEFAULT '',
			post_url TEXT NOT NULL DEFAULT '',
			posted_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			likes_count BIGINT NOT NULL DEFAULT 0,
			shares_count BIGINT NOT NULL DEFAULT 0
		);`,
		`CREATE TABLE IF NOT EXISTS news_articles (
			id BIGSERIAL PRIMARY KEY,
			title TEXT NOT NULL DEFAULT '',
			summary TEXT NOT NULL DEFAULT '',
			source TEXT NOT NULL DEFAULT '',
			article_url TEXT UNIQUE NOT NULL,
			published_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			category TEXT NOT NULL DEFAULT 'general'
		);`,
		`CREATE TABLE IF NOT EXISTS job_listings (
			id BIGSERIAL PRIMARY KEY,
			external_id TEXT UNIQUE NOT NULL,
			title TEXT NOT NULL DEFAULT '',
			organization TEXT NOT NULL DEFAULT '',
			location TEXT NOT NULL DEFAULT '',
			domain TEXT NOT NULL DEFAULT 'general',
			description TEXT NOT NULL DEFAULT '',
			experience_level TEXT NOT NULL DEFAULT '',
			apply_url TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL DEFAULT 'active',
			posted_date TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);`,
		`CREATE TABLE IF NOT EXISTS user_job_preferences (
			user_id BIGINT PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
			keywords TEXT NOT NULL DEFAULT '',
			preferred_locations TEXT NOT NULL DEFAULT '',
			experience_level TEXT NOT NULL DEFAULT '',
			job_types TEXT NOT NULL DEFAULT '',
			notifications_enabled BOOLEAN NOT NULL DEFAULT TRUE
		);`,
		`CREATE TABLE IF NOT EXISTS saved_jobs (
			user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			job_id BIGINT NOT NULL REFERENCES job_listings(id) ON DELETE CASCADE,
			saved_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			PRIMARY KEY (user_id, job_id)
		);`,
		`CREATE TABLE IF NOT EXISTS linkedin_connections (
			user_id BIGINT PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
			linkedin_id TEXT NOT NULL,
			access_token TEXT NOT NULL,
			profile_data TEXT NOT NULL DEFAULT '',
			connected_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);`,
		`CREATE TABLE IF NOT EXISTS linkedin_sync_history (
			id BIGSERIAL PRIMARY KEY,
			user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			sync_type TEXT NOT NULL,
			fields_synced INT NOT NULL DEFAULT 0,
			status TEXT NOT NULL,
			error_message TEXT,
			synced_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);`,
		`CREATE TABLE IF NOT EXISTS ai_suggestions (
			id BIGSERIAL PRIMARY KEY,
			user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			suggestion_type TEXT NOT NULL,
			input_data TEXT NOT NULL DEFAULT '',
			output_data TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL DEFAULT 'generated',
			accepted_at TIMESTAMPTZ,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);`,
		`CREATE TABLE IF NOT EXISTS ai_usage (
			id BIGSERIAL PRIMARY KEY,
			user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			feature_type TEXT NOT NULL,
			tokens_used INT NOT NULL DEFAULT 0,
			used_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply migrations: %w", err)
		}
	}
	return nil
}

// withTx runs fn inside a transaction, committing only when fn succeeds.
func (s *Store) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// mapErr translates driver errors into storage sentinels.
func mapErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return storage.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return storage.ErrAlreadyExists
		case "23503":
			return storage.ErrNotFound
		}
	}
	return err
}

// expectOne turns a zero-row write into ErrNotFound.
func expectOne(res sql.Result, err error) error {
	if err != nil {
		return mapErr(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func insertAudit(ctx context.Context, q queryer, entry models.AuditEntry) error {
	const query = `
		INSERT INTO audit_log (user_id, action, entity_type, entity_id, old_value, new_value, ip_address, user_agent)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	if _, err := q.ExecContext(ctx, query,
		entry.UserID, entry.Action, entry.EntityType, entry.EntityID,
		entry.OldValue, entry.NewValue, entry.IPAddress, entry.UserAgent,
	); err != nil {
		return fmt.Errorf("append audit entry: %w", err)
	}
	return nil
}

func limitOffset(pageNum, perPage int) (int, int) {
	if perPage <= 0 {
		perPage = 20
	}
	if pageNum <= 0 {
		pageNum = 1
	}
	return perPage, (pageNum - 1) * perPage
}

// bigintArray renders ids as a Postgres array literal for ANY($1::bigint[]).
func bigintArray(ids []int64) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return "{" + strings.Join(parts, ",") + "}"
}

func likePattern(search string) string {
	return "%" + strings.TrimSpace(search) + "%"
}
