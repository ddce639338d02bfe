// Package cron runs periodic maintenance jobs.
package cron

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/hongminglow/lateral-entry-be/internal/models"
	"github.com/hongminglow/lateral-entry-be/internal/storage"
)

const jobTimeout = time.Minute

// SessionPurger deletes expired sessions.
type SessionPurger interface {
	PurgeExpired(ctx context.Context) (int64, error)
}

// Purger removes expired sessions and records who asked for it.
type Purger struct {
	sessions SessionPurger
	audit    storage.AuditStore
	logger   *zap.Logger
}

// NewPurger wires a purger.
func NewPurger(sessions SessionPurger, audit storage.AuditStore, logger *zap.Logger) *Purger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Purger{sessions: sessions, audit: audit, logger: logger}
}

// Run purges once. A nil actor marks a scheduled run, which is logged but not audited.
func (p *Purger) Run(ctx context.Context, actor *models.Actor) (int64, error) {
	n, err := p.sessions.PurgeExpired(ctx)
	if err != nil {
		return 0, fmt.Errorf("purge sessions: %w", err)
	}
	p.logger.Info("expired sessions purged", zap.Int64("count", n), zap.Bool("scheduled", actor == nil))
	if actor == nil {
		return n, nil
	}

	uid := actor.UserID
	count := strconv.FormatInt(n, 10)
	err = p.audit.AppendAudit(ctx, models.AuditEntry{
		UserID:     &uid,
		Action:     models.ActionPurgeSessions,
		EntityType: models.EntitySession,
		NewValue:   &count,
		IPAddress:  actor.IPAddress,
		UserAgent:  actor.UserAgent,
	})
	if err != nil {
		return n, fmt.Errorf("audit session purge: %w", err)
	}
	return n, nil
}

// Scheduler owns the cron runner.
type Scheduler struct {
	logger *zap.Logger
	server *cron.Cron
}

// NewScheduler registers the purge job on schedule, a standard five-field cron expression. An
// empty schedule yields a scheduler with no jobs.
func NewScheduler(schedule string, purger *Purger, logger *zap.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	server := cron.New(cron.WithChain(cron.Recover(cronLogger{logger})))
	s := &Scheduler{logger: logger, server: server}
	if schedule == "" {
		return s, nil
	}
	if _, err := server.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()
		if _, err := purger.Run(ctx, nil); err != nil {
			logger.Error("scheduled session purge failed", zap.Error(err))
		}
	}); err != nil {
		return nil, fmt.Errorf("schedule session purge %q: %w", schedule, err)
	}
	logger.Info("session purge scheduled", zap.String("schedule", schedule))
	return s, nil
}

// Jobs reports how many jobs are registered.
func (s *Scheduler) Jobs() int {
	return len(s.server.Entries())
}

// Start runs the scheduler in the background.
func (s *Scheduler) Start() {
	s.server.Start()
}

// Stop waits for running jobs or ctx, whichever ends first.
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.server.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// cronLogger adapts zap to cron.Logger.
type cronLogger struct {
	logger *zap.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Sugar().Infow(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Sugar().Errorw(msg, append(keysAndValues, "error", err)...)
}
