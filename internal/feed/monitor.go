// Package feed aggregates social posts, news and job listings from the monitoring
// provider and serves them back paginated.
package feed

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/hongminglow/lateral-entry-be/internal/config"
)

// Monitor talks to the discovery provider. An unconfigured monitor returns no items.
type Monitor struct {
	baseURL string
	apiKey  string
	client  *http.Client
	logger  *zap.Logger
}

// NewMonitor builds a client with the configured timeout.
func NewMonitor(cfg config.MonitorConfig, client *http.Client, logger *zap.Logger) *Monitor {
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Monitor{baseURL: strings.TrimRight(cfg.URL, "/"), apiKey: cfg.APIKey, client: client, logger: logger}
}

// Configured reports whether a key is set.
func (m *Monitor) Configured() bool {
	return m != nil && m.apiKey != "" && m.baseURL != ""
}

// Timestamp accepts RFC 3339, a bare date or a SQL-style datetime.
type Timestamp struct {
	time.Time
}

var timestampLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02 15:04:05", "2006-01-02"}

func (t *Timestamp) UnmarshalJSON(b []byte) error {
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil || raw == "" {
		return nil
	}
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return nil
}

// Or returns fallback when the timestamp was absent or unparseable.
func (t Timestamp) Or(fallback time.Time) time.Time {
	if t.IsZero() {
		return fallback
	}
	return t.Time
}

// Post is one social item as the provider returns it.
type Post struct {
	ID       string    `json:"id"`
	Platform string    `json:"platform"`
	Author   string    `json:"author"`
	Content  string    `json:"content"`
	URL      string    `json:"url"`
	PostedAt Timestamp `json:"posted_at"`
	Likes    int64     `json:"likes"`
	Shares   int64     `json:"shares"`
}

// Article is one news item as the provider returns it.
type Article struct {
	Title       string    `json:"title"`
	Summary     string    `json:"summary"`
	Source      string    `json:"source"`
	URL         string    `json:"url"`
	PublishedAt Timestamp `json:"published_at"`
	Category    string    `json:"category"`
}

// Job is one search result as the provider returns it.
type Job struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	Company         string    `json:"company"`
	Location        string    `json:"location"`
	Description     string    `json:"description"`
	ExperienceLevel string    `json:"experience_level"`
	URL             string    `json:"url"`
	PostedDate      Timestamp `json:"posted_date"`
}

// SocialPosts searches social platforms for keywords.
func (m *Monitor) SocialPosts(ctx context.Context, keywords, platforms []string) ([]Post, error) {
	if len(platforms) == 0 {
		platforms = []string{"twitter", "linkedin"}
	}
	var out struct {
		Posts []Post `json:"posts"`
	}
	err := m.post(ctx, "/social/search", map[string]any{
		"keywords":    keywords,
		"platforms":   platforms,
		"max_results": 50,
	}, &out)
	return out.Posts, err
}

// NewsArticles searches news published in the last daysBack days.
func (m *Monitor) NewsArticles(ctx context.Context, query string, daysBack int) ([]Article, error) {
	var out struct {
		Articles []Article `json:"articles"`
	}
	err := m.post(ctx, "/news/search", map[string]any{
		"query":       query,
		"days_back":   daysBack,
		"max_results": 100,
	}, &out)
	return out.Articles, err
}

// Jobs searches job boards and employer sites.
func (m *Monitor) Jobs(ctx context.Context, query, location string, maxResults int) ([]Job, error) {
	payload := map[string]any{
		"query":       query,
		"max_results": maxResults,
		"filters":     map[string]bool{"job_boards": true, "company_websites": true},
	}
	if location != "" {
		payload["location"] = location
	}
	var out struct {
		Results []Job `json:"results"`
	}
	err := m.post(ctx, "/search", payload, &out)
	return out.Results, err
}

// post sends payload and decodes a 200 response into out. Any other status leaves out
// empty without an error.
func (m *Monitor) post(ctx context.Context, endpoint string, payload any, out any) error {
	if !m.Configured() {
		return nil
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal monitor payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.baseURL+endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create monitor request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+m.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		return fmt.Errorf("monitor %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		m.logger.Warn("monitor returned non-200",
			zap.String("endpoint", endpoint),
			zap.Int("status", resp.StatusCode),
			zap.String("body", strings.TrimSpace(string(b))))
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode monitor %s: %w", endpoint, err)
	}
	return nil
}
