package handlers

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/hongminglow/lateral-entry-be/internal/http/respond"
)

// Pinger reports whether a backing dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler returns uptime and database reachability.
type HealthHandler struct {
	startedAt time.Time
	db        Pinger
	logger    *zap.Logger
}

// NewHealthHandler creates a health endpoint handler. db may be nil.
func NewHealthHandler(startedAt time.Time, db Pinger, logger *zap.Logger) *HealthHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HealthHandler{startedAt: startedAt, db: db, logger: logger}
}

// Register wires the handler into a ServeMux.
func (h *HealthHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", h.handle)
	mux.HandleFunc("GET /api/health", h.handle)
}

func (h *HealthHandler) handle(w http.ResponseWriter, r *http.Request) {
	body := map[string]string{
		"status":   "healthy",
		"uptime":   time.Since(h.startedAt).Truncate(time.Second).String(),
		"database": "unchecked",
	}
	if h.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.db.Ping(ctx); err != nil {
			h.logger.Warn("health: database ping failed", zap.Error(err))
			body["status"] = "unhealthy"
			body["database"] = "unreachable"
			respond.JSON(w, http.StatusServiceUnavailable, "unhealthy", body)
			return
		}
		body["database"] = "connected"
	}
	respond.JSON(w, http.StatusOK, "ok", body)
}
