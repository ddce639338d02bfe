package feed

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/hongminglow/lateral-entry-be/internal/apperr"
	"github.com/hongminglow/lateral-entry-be/internal/models"
	"github.com/hongminglow/lateral-entry-be/internal/storage"
)

// Default discovery queries.
var (
	SocialKeywords = []string{"lateral entry", "government jobs", "civil service"}
	NewsQuery      = "lateral entry OR government recruitment OR civil service"
	JobsQuery      = "government jobs India"
)

const (
	newsDaysBack  = 7
	jobMaxResults = 50
	defaultDomain = "general"
	newsCategory  = "general"
)

// RefreshResult counts what a refresh fetched and stored. Duplicates are skipped.
type RefreshResult struct {
	Fetched  int `json:"fetched"`
	Inserted int `json:"inserted"`
	Skipped  int `json:"skipped"`
}

func (r *RefreshResult) record(err error) error {
	switch {
	case err == nil:
		r.Inserted++
	case errors.Is(err, storage.ErrAlreadyExists):
		r.Skipped++
	default:
		return err
	}
	return nil
}

// Service refreshes and lists the aggregated feeds.
type Service struct {
	monitor *Monitor
	feed    storage.FeedStore
	jobs    storage.JobStore
	logger  *zap.Logger
	now     func() time.Time
}

// NewService wires the feed service.
func NewService(monitor *Monitor, feed storage.FeedStore, jobs storage.JobStore, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{monitor: monitor, feed: feed, jobs: jobs, logger: logger, now: time.Now}
}

// RefreshSocial pulls recent posts and stores the new ones.
func (s *Service) RefreshSocial(ctx context.Context) (RefreshResult, error) {
	posts, err := s.monitor.SocialPosts(ctx, SocialKeywords, nil)
	if err != nil {
		return RefreshResult{}, apperr.Wrap(apperr.ErrUpstream, "Social feed provider failed", err)
	}
	res := RefreshResult{Fetched: len(posts)}
	for _, p := range posts {
		if p.ID == "" {
			res.Skipped++
			continue
		}
		err := s.feed.InsertSocialPost(ctx, models.SocialPost{
			Platform:    p.Platform,
			ExternalID:  p.ID,
			Author:      p.Author,
			Content:     p.Content,
			PostURL:     p.URL,
			PostedAt:    p.PostedAt.Or(s.now()),
			LikesCount:  p.Likes,
			SharesCount: p.Shares,
		})
		if err := res.record(err); err != nil {
			return res, fmt.Errorf("store social post %s: %w", p.ID, err)
		}
	}
	s.logger.Info("social feed refreshed", zap.Int("fetched", res.Fetched), zap.Int("inserted", res.Inserted))
	return res, nil
}

// RefreshNews pulls the last week of articles and stores the new ones.
func (s *Service) RefreshNews(ctx context.Context) (RefreshResult, error) {
	articles, err := s.monitor.NewsArticles(ctx, NewsQuery, newsDaysBack)
	if err != nil {
		return RefreshResult{}, apperr.Wrap(apperr.ErrUpstream, "News provider failed", err)
	}
	res := RefreshResult{Fetched: len(articles)}
	for _, a := range articles {
		if a.URL == "" {
			res.Skipped++
			continue
		}
		category := a.Category
		if category == "" {
			category = newsCategory
		}
		err := s.feed.InsertNewsArticle(ctx, models.NewsArticle{
			Title:       a.Title,
			Summary:     a.Summary,
			Source:      a.Source,
			ArticleURL:  a.URL,
			PublishedAt: a.PublishedAt.Or(s.now()),
			Category:    category,
		})
		if err := res.record(err); err != nil {
			return res, fmt.Errorf("store article %s: %w", a.URL, err)
		}
	}
	s.logger.Info("news refreshed", zap.Int("fetched", res.Fetched), zap.Int("inserted", res.Inserted))
	return res, nil
}

// RefreshJobs discovers listings for query and files them under domain.
func (s *Service) RefreshJobs(ctx context.Context, query, domain string) (RefreshResult, error) {
	if strings.TrimSpace(query) == "" {
		query = JobsQuery
	}
	if strings.TrimSpace(domain) == "" {
		domain = defaultDomain
	}
	jobs, err := s.monitor.Jobs(ctx, query, "", jobMaxResults)
	if err != nil {
		return RefreshResult{}, apperr.Wrap(apperr.ErrUpstream, "Job discovery provider failed", err)
	}
	res := RefreshResult{Fetched: len(jobs)}
	for _, j := range jobs {
		externalID := j.ID
		if externalID == "" {
			externalID = j.URL
		}
		if externalID == "" || j.Title == "" {
			res.Skipped++
			continue
		}
		err := s.feed.InsertJob(ctx, models.JobListing{
			ExternalID:      externalID,
			Title:           j.Title,
			Organization:    j.Company,
			Location:        j.Location,
			Domain:          domain,
			Description:     j.Description,
			ExperienceLevel: j.ExperienceLevel,
			ApplyURL:        j.URL,
			PostedDate:      j.PostedDate.Or(s.now()),
		})
		if err := res.record(err); err != nil {
			return res, fmt.Errorf("store job %s: %w", externalID, err)
		}
	}
	s.logger.Info("jobs refreshed", zap.String("domain", domain), zap.Int("fetched", res.Fetched), zap.Int("inserted", res.Inserted))
	return res, nil
}

// Social lists posts, optionally for one platform.
func (s *Service) Social(ctx context.Context, q models.FeedQuery) ([]models.SocialPost, int64, error) {
	q.Page, q.PerPage = models.ClampPage(q.Page, q.PerPage)
	return s.feed.ListSocialPosts(ctx, q)
}

// News lists articles, optionally for one category.
func (s *Service) News(ctx context.Context, q models.FeedQuery) ([]models.NewsArticle, int64, error) {
	q.Page, q.PerPage = models.ClampPage(q.Page, q.PerPage)
	return s.feed.ListNewsArticles(ctx, q)
}

// NewsCategories lists known article categories.
func (s *Service) NewsCategories(ctx context.Context) ([]string, error) {
	return s.feed.NewsCategories(ctx)
}
