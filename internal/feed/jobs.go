package feed

import (
	"context"
	"errors"
	"strings"

	"github.com/hongminglow/lateral-entry-be/internal/apperr"
	"github.com/hongminglow/lateral-entry-be/internal/models"
	"github.com/hongminglow/lateral-entry-be/internal/storage"
)

// ScoredJob is a listing annotated with its match against the viewer's preferences.
type ScoredJob struct {
	models.JobListing
	Relevance *float64 `json:"relevance,omitempty"`
}

// Jobs lists active listings. When userID is non-zero and the user saved preferences,
// each listing carries a relevance score.
func (s *Service) Jobs(ctx context.Context, q models.FeedQuery, userID int64) ([]ScoredJob, int64, error) {
	q.Page, q.PerPage = models.ClampPage(q.Page, q.PerPage)
	jobs, total, err := s.feed.ListJobs(ctx, q)
	if err != nil {
		return nil, 0, err
	}
	var prefs *models.JobPreferences
	if userID != 0 {
		p, err := s.jobs.GetJobPreferences(ctx, userID)
		switch {
		case err == nil:
			prefs = &p
		case !errors.Is(err, storage.ErrNotFound):
			return nil, 0, err
		}
	}

	out := make([]ScoredJob, 0, len(jobs))
	for _, j := range jobs {
		sj := ScoredJob{JobListing: j}
		if prefs != nil {
			score := Relevance(j, *prefs)
			sj.Relevance = &score
		}
		out = append(out, sj)
	}
	return out, total, nil
}

// Relevance scores a listing in [0, 1]: keyword hits weigh 0.4, a preferred location 0.3 and
// a matching experience level 0.3.
func Relevance(job models.JobListing, prefs models.JobPreferences) float64 {
	var score float64
	if keywords := splitCSV(prefs.Keywords); len(keywords) > 0 {
		text := strings.ToLower(job.Title + " " + job.Description)
		matched := 0
		for _, kw := range keywords {
			if strings.Contains(text, kw) {
				matched++
			}
		}
		score += float64(matched) / float64(len(keywords)) * 0.4
	}
	if job.Location != "" {
		location := strings.ToLower(job.Location)
		for _, loc := range splitCSV(prefs.PreferredLocations) {
			if strings.Contains(location, loc) {
				score += 0.3
				break
			}
		}
	}
	if level := strings.ToLower(strings.TrimSpace(prefs.ExperienceLevel)); level != "" &&
		strings.Contains(strings.ToLower(job.ExperienceLevel), level) {
		score += 0.3
	}
	if score > 1 {
		score = 1
	}
	return score
}

func splitCSV(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.ToLower(strings.TrimSpace(part)); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// JobDomains lists domains with active listings.
func (s *Service) JobDomains(ctx context.Context) ([]string, error) {
	return s.feed.JobDomains(ctx)
}

// Preferences returns the user's preferences, or nil when none were saved.
func (s *Service) Preferences(ctx context.Context, userID int64) (*models.JobPreferences, error) {
	p, err := s.jobs.GetJobPreferences(ctx, userID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// SavePreferences replaces the user's preferences.
func (s *Service) SavePreferences(ctx context.Context, userID int64, prefs models.JobPreferences) error {
	prefs.UserID = userID
	return s.jobs.SaveJobPreferences(ctx, prefs)
}

// SaveJob bookmarks a listing.
func (s *Service) SaveJob(ctx context.Context, userID, jobID int64) error {
	err := s.jobs.SaveJob(ctx, userID, jobID)
	switch {
	case errors.Is(err, storage.ErrAlreadyExists):
		return apperr.New(apperr.ErrValidation, "Job already saved")
	case errors.Is(err, storage.ErrNotFound):
		return apperr.New(apperr.ErrNotFound, "Job not found")
	}
	return err
}

// UnsaveJob removes a bookmark.
func (s *Service) UnsaveJob(ctx context.Context, userID, jobID int64) error {
	return s.jobs.UnsaveJob(ctx, userID, jobID)
}

// SavedJobs lists the user's bookmarks.
func (s *Service) SavedJobs(ctx context.Context, userID int64) ([]models.JobListing, error) {
	return s.jobs.ListSavedJobs(ctx, userID)
}
