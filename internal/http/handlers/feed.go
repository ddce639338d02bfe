package handlers

import (
	"net/http"

	"github.com/hongminglow/lateral-entry-be/internal/feed"
	"github.com/hongminglow/lateral-entry-be/internal/http/respond"
	"github.com/hongminglow/lateral-entry-be/internal/middleware"
	"github.com/hongminglow/lateral-entry-be/internal/models"
	"github.com/hongminglow/lateral-entry-be/internal/models/dto"
)

// FeedHandler serves the social, news and jobs feeds. Refreshes are admin only.
type FeedHandler struct {
	svc *feed.Service
}

func NewFeedHandler(svc *feed.Service) *FeedHandler {
	return &FeedHandler{svc: svc}
}

// Register attaches feed and job routes to the mux.
func (h *FeedHandler) Register(mux *http.ServeMux, gate *middleware.Gate) {
	mux.Handle("GET /api/feed/social", gate.Auth(h.handleSocial))
	mux.Handle("POST /api/feed/social/refresh", gate.Admin(h.handleRefreshSocial))
	mux.Handle("GET /api/feed/news", gate.Auth(h.handleNews))
	mux.Handle("POST /api/feed/news/refresh", gate.Admin(h.handleRefreshNews))
	mux.Handle("GET /api/feed/news/categories", gate.Auth(h.handleCategories))

	mux.Handle("GET /api/jobs", gate.Auth(h.handleJobs))
	mux.Handle("POST /api/jobs/refresh", gate.Admin(h.handleRefreshJobs))
	mux.Handle("GET /api/jobs/domains", gate.Auth(h.handleDomains))
	mux.Handle("GET /api/jobs/preferences", gate.Auth(h.handlePreferences))
	mux.Handle("POST /api/jobs/preferences", gate.Auth(h.handleSavePreferences))
	mux.Handle("GET /api/jobs/saved", gate.Auth(h.handleSaved))
	mux.Handle("POST /api/jobs/{id}/save", gate.Auth(h.handleSave))
	mux.Handle("POST /api/jobs/{id}/unsave", gate.Auth(h.handleUnsave))
}

func feedQuery(r *http.Request, filterParam string) models.FeedQuery {
	pageNum, perPage := page(r)
	q := r.URL.Query()
	return models.FeedQuery{Filter: q.Get(filterParam), Search: q.Get("search"), Page: pageNum, PerPage: perPage}
}

func (h *FeedHandler) handleSocial(w http.ResponseWriter, r *http.Request) {
	q := feedQuery(r, "platform")
	posts, total, err := h.svc.Social(r.Context(), q)
	if err != nil {
		respond.Fail(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, "ok", paginated("posts", posts, q.Page, q.PerPage, total))
}

func (h *FeedHandler) handleNews(w http.ResponseWriter, r *http.Request) {
	q := feedQuery(r, "category")
	articles, total, err := h.svc.News(r.Context(), q)
	if err != nil {
		respond.Fail(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, "ok", paginated("articles", articles, q.Page, q.PerPage, total))
}

func (h *FeedHandler) handleCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.svc.NewsCategories(r.Context())
	if err != nil {
		respond.Fail(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, "ok", map[string]any{"categories": categories})
}

func (h *FeedHandler) handleRefreshSocial(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.RefreshSocial(r.Context())
	if err != nil {
		respond.Fail(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, "Social feed refreshed", res)
}

func (h *FeedHandler) handleRefreshNews(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.RefreshNews(r.Context())
	if err != nil {
		respond.Fail(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, "News feed refreshed", res)
}

func (h *FeedHandler) handleJobs(w http.ResponseWriter, r *http.Request) {
	q := feedQuery(r, "domain")
	jobs, total, err := h.svc.Jobs(r.Context(), q, userID(r))
	if err != nil {
		respond.Fail(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, "ok", paginated("jobs", jobs, q.Page, q.PerPage, total))
}

func (h *FeedHandler) handleRefreshJobs(w http.ResponseWriter, r *http.Request) {
	var req dto.RefreshJobsRequest
	if err := decode(r, &req); err != nil {
		respond.Fail(w, err)
		return
	}
	res, err := h.svc.RefreshJobs(r.Context(), req.Query, req.Domain)
	if err != nil {
		respond.Fail(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, "Jobs refreshed", res)
}

func (h *FeedHandler) handleDomains(w http.ResponseWriter, r *http.Request) {
	domains, err := h.svc.JobDomains(r.Context())
	if err != nil {
		respond.Fail(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, "ok", map[string]any{"domains": domains})
}

func (h *FeedHandler) handlePreferences(w http.ResponseWriter, r *http.Request) {
	prefs, err := h.svc.Preferences(r.Context(), userID(r))
	if err != nil {
		respond.Fail(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, "ok", map[string]any{"preferences": prefs})
}

func (h *FeedHandler) handleSavePreferences(w http.ResponseWriter, r *http.Request) {
	var req dto.JobPreferencesRequest
	if err := decode(r, &req); err != nil {
		respond.Fail(w, err)
		return
	}
	uid := userID(r)
	prefs := req.Preferences(uid)
	if err := h.svc.SavePreferences(r.Context(), uid, prefs); err != nil {
		respond.Fail(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, "Preferences saved", map[string]any{"preferences": prefs})
}

func (h *FeedHandler) handleSaved(w http.ResponseWriter, r *http.Request) {
	jobs, err := h.svc.SavedJobs(r.Context(), userID(r))
	if err != nil {
		respond.Fail(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, "ok", map[string]any{"jobs": jobs})
}

func (h *FeedHandler) handleSave(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respond.Fail(w, err)
		return
	}
	if err := h.svc.SaveJob(r.Context(), userID(r), id); err != nil {
		respond.Fail(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, "Job saved", nil)
}

func (h *FeedHandler) handleUnsave(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respond.Fail(w, err)
		return
	}
	if err := h.svc.UnsaveJob(r.Context(), userID(r), id); err != nil {
		respond.Fail(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, "Job removed from saved", nil)
}
