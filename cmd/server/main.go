package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/hongminglow/lateral-entry-be/internal/ai"
	"github.com/hongminglow/lateral-entry-be/internal/auth"
	"github.com/hongminglow/lateral-entry-be/internal/config"
	"github.com/hongminglow/lateral-entry-be/internal/cron"
	"github.com/hongminglow/lateral-entry-be/internal/feed"
	"github.com/hongminglow/lateral-entry-be/internal/http/handlers"
	"github.com/hongminglow/lateral-entry-be/internal/linkedin"
	"github.com/hongminglow/lateral-entry-be/internal/logging"
	"github.com/hongminglow/lateral-entry-be/internal/middleware"
	"github.com/hongminglow/lateral-entry-be/internal/moderation"
	"github.com/hongminglow/lateral-entry-be/internal/profiles"
	"github.com/hongminglow/lateral-entry-be/internal/server"
	postgres "github.com/hongminglow/lateral-entry-be/internal/storage/postgres"
)

func main() {
	loadLocalEnv()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogDev)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	ctx := context.Background()
	store, err := postgres.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("init database", zap.Error(err))
	}
	defer store.Close()

	codec := auth.NewTokenCodec(cfg.TokenEncryptionKey)
	states := auth.NewStateSigner(cfg.SecretKey, cfg.BaseURL)
	google := auth.NewGoogleProvider(ctx, cfg.Google)
	if !google.Configured() {
		logger.Warn("google sign-in disabled", zap.String("missing", "GOOGLE_CLIENT_ID/GOOGLE_CLIENT_SECRET"))
	}
	sessions := auth.NewSessionManager(store, codec, google, cfg.SessionLifetime, logger)
	resolver := auth.NewResolver(store, store, store, sessions, logger)
	accounts := auth.NewAccounts(store, store, sessions, logger)
	gate := middleware.NewGate(sessions, logger)

	files := moderation.NewFiles(cfg.UploadFolder)
	mod := moderation.New(moderation.Stores{
		Profiles: store,
		Edits:    store,
		Uploads:  store,
		Flags:    store,
		Settings: store,
		Audit:    store,
		Stats:    store,
	}, files, logger)
	profileSvc := profiles.NewService(store, store, logger)
	feedSvc := feed.NewService(feed.NewMonitor(cfg.Monitor, nil, logger), store, store, logger)
	aiSvc := ai.NewService(ai.NewClient(cfg.AI, nil), store, logger)
	linkedinSvc := linkedin.NewService(cfg.LinkedIn, states, codec, store, mod, logger)

	purger := cron.NewPurger(sessions, store, logger)
	scheduler, err := cron.NewScheduler(cfg.SessionPurgeSchedule, purger, logger)
	if err != nil {
		logger.Fatal("init scheduler", zap.Error(err))
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	srv := server.New(cfg, server.Deps{
		Gate:   gate,
		Health: handlers.NewHealthHandler(time.Now(), store, logger),
		Routes: []server.Registrar{
			handlers.NewAuthHandler(google, resolver, sessions, states, cfg.Production(), logger),
			handlers.NewAdminHandler(resolver, accounts, mod, purger),
			handlers.NewModerationHandler(mod),
			handlers.NewProfileHandler(profileSvc, mod),
			handlers.NewUploadHandler(mod),
			handlers.NewFeedHandler(feedSvc),
			handlers.NewLinkedInHandler(linkedinSvc, logger),
			handlers.NewAIHandler(aiSvc),
		},
		Registry:   registry,
		UploadRoot: files.Root(),
		Logger:     logger,
	})

	scheduler.Start()
	go func() {
		logger.Info("lateral entry backend listening", zap.String("addr", cfg.HTTPAddress()), zap.String("env", cfg.Env))
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("http server error", zap.Error(err))
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctxShutdown); err != nil {
		logger.Warn("graceful shutdown error", zap.Error(err))
	}
	if err := scheduler.Stop(ctxShutdown); err != nil {
		logger.Warn("scheduler stop", zap.Error(err))
	}
}

func loadLocalEnv() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found; relying on existing environment")
	}
}
