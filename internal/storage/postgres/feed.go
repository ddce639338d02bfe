package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/hongminglow/lateral-entry-be/internal/models"
)

// InsertSocialPost stores a post; a known external id yields storage.ErrAlreadyExists.
func (s *Store) InsertSocialPost(ctx context.Context, p models.SocialPost) error {
	const query = `
		INSERT INTO social_feed_items (platform, external_id, author, content, post_url, posted_at, likes_count, shares_count)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := s.db.ExecContext(ctx, query,
		p.Platform, p.ExternalID, p.Author, p.Content, p.PostURL, p.PostedAt, p.LikesCount, p.SharesCount)
	return mapErr(err)
}

// ListSocialPosts pages through posts, optionally for one platform.
func (s *Store) ListSocialPosts(ctx context.Context, q models.FeedQuery) ([]models.SocialPost, int64, error) {
	where, args := filterClause("platform", q.Filter)
	var total int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM social_feed_items `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count social posts: %w", err)
	}

	limit, offset := limitOffset(q.Page, q.PerPage)
	query := fmt.Sprintf(`
		SELECT id, platform, external_id, author, content, post_url, posted_at, likes_count, shares_count
		FROM social_feed_items %s
		ORDER BY posted_at DESC
		LIMIT $%d OFFSET $%d`, where, len(args)+1, len(args)+2)
	rows, err := s.db.QueryContext(ctx, query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("list social posts: %w", err)
	}
	defer rows.Close()

	var out []models.SocialPost
	for rows.Next() {
		var p models.SocialPost
		if err := rows.Scan(&p.ID, &p.Platform, &p.ExternalID, &p.Author, &p.Content, &p.PostURL,
			&p.PostedAt, &p.LikesCount, &p.SharesCount); err != nil {
			return nil, 0, err
		}
		out = append(out, p)
	}
	return out, total, rows.Err()
}

// InsertNewsArticle stores an article; a known URL yields storage.ErrAlreadyExists.
func (s *Store) InsertNewsArticle(ctx context.Context, a models.NewsArticle) error {
	const query = `
		INSERT INTO news_articles (title, summary, source, article_url, published_at, category)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := s.db.ExecContext(ctx, query, a.Title, a.Summary, a.Source, a.ArticleURL, a.PublishedAt, a.Category)
	return mapErr(err)
}

// ListNewsArticles pages through articles, optionally for one category.
func (s *Store) ListNewsArticles(ctx context.Context, q models.FeedQuery) ([]models.NewsArticle, int64, error) {
	where, args := filterClause("category", q.Filter)
	var total int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM news_articles `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count news: %w", err)
	}

	limit, offset := limitOffset(q.Page, q.PerPage)
	query := fmt.Sprintf(`
		SELECT id, title, summary, source, article_url, published_at, category
		FROM news_articles %s
		ORDER BY published_at DESC
		LIMIT $%d OFFSET $%d`, where, len(args)+1, len(args)+2)
	rows, err := s.db.QueryContext(ctx, query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("list news: %w", err)
	}
	defer rows.Close()

	var out []models.NewsArticle
	for rows.Next() {
		var a models.NewsArticle
		if err := rows.Scan(&a.ID, &a.Title, &a.Summary, &a.Source, &a.ArticleURL, &a.PublishedAt, &a.Category); err != nil {
			return nil, 0, err
		}
		out = append(out, a)
	}
	return out, total, rows.Err()
}

// NewsCategories lists distinct article categories.
func (s *Store) NewsCategories(ctx context.Context) ([]string, error) {
	return s.distinct(ctx, `SELECT DISTINCT category FROM news_articles WHERE category <> '' ORDER BY category`)
}

// InsertJob stores a listing; a known external id yields storage.ErrAlreadyExists.
func (s *Store) InsertJob(ctx context.Context, j models.JobListing) error {
	const query = `
		INSERT INTO job_listings (external_id, title, organization, location, domain, description, experience_level, apply_url, status, posted_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 'active', $9)`
	_, err := s.db.ExecContext(ctx, query, j.ExternalID, j.Title, j.Organization, j.Location, j.Domain,
		j.Description, j.ExperienceLevel, j.ApplyURL, j.PostedDate)
	return mapErr(err)
}

const jobColumns = `j.id, j.external_id, j.title, j.organization, j.location, j.domain, j.description,
	j.experience_level, j.apply_url, j.status, j.posted_date`

// ListJobs pages through active listings filtered by domain and free text.
func (s *Store) ListJobs(ctx context.Context, q models.FeedQuery) ([]models.JobListing, int64, error) {
	clauses := []string{"j.status = 'active'"}
	var args []any
	if q.Filter != "" {
		args = append(args, q.Filter)
		clauses = append(clauses, fmt.Sprintf("j.domain = $%d", len(args)))
	}
	if strings.TrimSpace(q.Search) != "" {
		args = append(args, likePattern(q.Search))
		clauses = append(clauses, fmt.Sprintf("(j.title ILIKE $%d OR j.description ILIKE $%d)", len(args), len(args)))
	}
	where := "WHERE " + strings.Join(clauses, " AND ")

	var total int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM job_listings j `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count jobs: %w", err)
	}

	limit, offset := limitOffset(q.Page, q.PerPage)
	query := fmt.Sprintf(`SELECT %s FROM job_listings j %s ORDER BY j.posted_date DESC LIMIT $%d OFFSET $%d`,
		jobColumns, where, len(args)+1, len(args)+2)
	rows, err := s.db.QueryContext(ctx, query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("list jobs: %w", err)
	}
	defer rows.Close()

	out, err := scanJobs(rows)
	return out, total, err
}

// JobDomains lists distinct domains of active listings.
func (s *Store) JobDomains(ctx context.Context) ([]string, error) {
	return s.distinct(ctx, `SELECT DISTINCT domain FROM job_listings WHERE status = 'active' AND domain <> '' ORDER BY domain`)
}

// GetJobPreferences fetches a user's job search preferences.
func (s *Store) GetJobPreferences(ctx context.Context, userID int64) (models.JobPreferences, error) {
	var p models.JobPreferences
	err := s.db.QueryRowContext(ctx, `
		SELECT user_id, keywords, preferred_locations, experience_level, job_types, notifications_enabled
		FROM user_job_preferences WHERE user_id = $1`, userID,
	).Scan(&p.UserID, &p.Keywords, &p.PreferredLocations, &p.ExperienceLevel, &p.JobTypes, &p.NotificationsEnabled)
	return p, mapErr(err)
}

// SaveJobPreferences upserts a user's job search preferences.
func (s *Store) SaveJobPreferences(ctx context.Context, p models.JobPreferences) error {
	const query = `
		INSERT INTO user_job_preferences (user_id, keywords, preferred_locations, experience_level, job_types, notifications_enabled)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id) DO UPDATE SET
			keywords = EXCLUDED.keywords,
			preferred_locations = EXCLUDED.preferred_locations,
			experience_level = EXCLUDED.experience_level,
			job_types = EXCLUDED.job_types,
			notifications_enabled = EXCLUDED.notifications_enabled`
	_, err := s.db.ExecContext(ctx, query, p.UserID, p.Keywords, p.PreferredLocations, p.ExperienceLevel, p.JobTypes, p.NotificationsEnabled)
	return mapErr(err)
}

// SaveJob bookmarks a listing for a user.
func (s *Store) SaveJob(ctx context.Context, userID, jobID int64) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO saved_jobs (user_id, job_id) VALUES ($1, $2)`, userID, jobID)
	return mapErr(err)
}

// UnsaveJob removes a bookmark; a missing one is not an error.
func (s *Store) UnsaveJob(ctx context.Context, userID, jobID int64) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM saved_jobs WHERE user_id = $1 AND job_id = $2`, userID, jobID)
	return err
}

// ListSavedJobs lists a user's bookmarks, most recently saved first.
func (s *Store) ListSavedJobs(ctx context.Context, userID int64) ([]models.JobListing, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+jobColumns+`
		FROM saved_jobs sj
		JOIN job_listings j ON sj.job_id = j.id
		WHERE sj.user_id = $1
		ORDER BY sj.saved_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list saved jobs: %w", err)
	}
	defer rows.Close()
	return scanJobs(rows)
}

type rowsScanner interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanJobs(rows rowsScanner) ([]models.JobListing, error) {
	var out []models.JobListing
	for rows.Next() {
		var j models.JobListing
		if err := rows.Scan(&j.ID, &j.ExternalID, &j.Title, &j.Organization, &j.Location, &j.Domain, &j.Description,
			&j.ExperienceLevel, &j.ApplyURL, &j.Status, &j.PostedDate); err != nil {
			return nil, err
		}
		out = append(out, j)
	}
	return out, rows.Err()
}

func (s *Store) distinct(ctx context.Context, query string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []string{}
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// filterClause builds an optional single-column equality filter. column is a constant.
func filterClause(column, value string) (string, []any) {
	if value == "" {
		return "", nil
	}
	return "WHERE " + column + " = $1", []any{value}
}
