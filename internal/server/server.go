package server

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/hongminglow/lateral-entry-be/internal/config"
	"github.com/hongminglow/lateral-entry-be/internal/http/handlers"
	"github.com/hongminglow/lateral-entry-be/internal/middleware"
)

// Registrar attaches a group of gated routes.
type Registrar interface {
	Register(mux *http.ServeMux, gate *middleware.Gate)
}

// Deps is everything the HTTP layer is built from.
type Deps struct {
	Gate     *middleware.Gate
	Health   *handlers.HealthHandler
	Routes   []Registrar
	Registry *prometheus.Registry
	// UploadRoot is served read-only under /uploads/. Empty disables it.
	UploadRoot string
	Logger     *zap.Logger
}

// Server wraps an http.Server with configured routes.
type Server struct {
	inner *http.Server
}

// New wires up middleware, routes, and returns a ready server.
func New(cfg config.Config, deps Deps) *Server {
	return &Server{inner: &http.Server{
		Addr:              cfg.HTTPAddress(),
		Handler:           Handler(cfg, deps),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		// AI and feed providers may take up to a minute
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  120 * time.Second,
	}}
}

// Handler builds the full middleware chain around the route table.
func Handler(cfg config.Config, deps Deps) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	registry := deps.Registry
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	mux := http.NewServeMux()
	if deps.Health != nil {
		deps.Health.Register(mux)
	}
	mux.Handle("GET /metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	if deps.UploadRoot != "" {
		mux.Handle("GET /uploads/", http.StripPrefix("/uploads/", http.FileServer(http.Dir(deps.UploadRoot))))
	}
	for _, r := range deps.Routes {
		r.Register(mux, deps.Gate)
	}

	metrics := middleware.NewMetrics(registry)
	return middleware.CORS(cfg.CORSOrigins, middleware.Logging(logger, metrics.Middleware(mux)))
}

// Start begins serving HTTP traffic.
func (s *Server) Start() error {
	return s.inner.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.inner.Shutdown(ctx)
}
