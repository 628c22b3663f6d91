// Package jobs runs the background maintenance and reminder jobs.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron"
	"go.uber.org/zap"
)

// Pinger keeps the database connection alive
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Reminders sends the daily reminders
type Reminders interface {
	SendDailyReminders(ctx context.Context) (int, error)
}

// Purger deletes generation attempts that fell out of the rate limit window
type Purger interface {
	PurgeAttempts(ctx context.Context) (int64, error)
}

// Config holds the job schedule
type Config struct {
	KeepAliveInterval time.Duration
	ReminderTime      string // HH:MM in the scheduler's location
	PurgeInterval     time.Duration
}

// Scheduler manages scheduled tasks for the application
type Scheduler struct {
	scheduler *gocron.Scheduler
	cfg       Config
	db        Pinger
	reminders Reminders
	attempts  Purger
	logger    *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc
}

// New creates a new scheduler instance. reminders and attempts may be nil,
// in which case their jobs are not scheduled.
func New(loc *time.Location, cfg Config, db Pinger, reminders Reminders, attempts Purger, logger *zap.Logger) *Scheduler {
	if cfg.KeepAliveInterval <= 0 {
		cfg.KeepAliveInterval = 5 * time.Minute
	}
	if cfg.PurgeInterval <= 0 {
		cfg.PurgeInterval = time.Hour
	}
	s := gocron.NewScheduler(loc)
	s.SingletonModeAll()
	return &Scheduler{
		scheduler: s,
		cfg:       cfg,
		db:        db,
		reminders: reminders,
		attempts:  attempts,
		logger:    logger,
	}
}

// Start registers every job and runs the scheduler in the background
func (s *Scheduler) Start(ctx context.Context) error {
	s.ctx, s.cancel = context.WithCancel(ctx)

	if _, err := s.scheduler.Every(s.cfg.KeepAliveInterval).Do(s.KeepAlive); err != nil {
		return fmt.Errorf("failed to schedule keep-alive: %w", err)
	}
	if s.reminders != nil {
		if _, err := s.scheduler.Every(1).Day().At(s.cfg.ReminderTime).Do(s.SendReminders); err != nil {
			return fmt.Errorf("failed to schedule reminders at %q: %w", s.cfg.ReminderTime, err)
		}
	}
	if s.attempts != nil {
		if _, err := s.scheduler.Every(s.cfg.PurgeInterval).Do(s.PurgeAttempts); err != nil {
			return fmt.Errorf("failed to schedule generation log purge: %w", err)
		}
	}

	s.scheduler.StartAsync()
	s.logger.Info("job scheduler started",
		zap.Int("jobs", len(s.scheduler.Jobs())),
		zap.Duration("keepalive", s.cfg.KeepAliveInterval),
		zap.String("reminders_at", s.cfg.ReminderTime))
	return nil
}

// Stop terminates all scheduled tasks
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
	if s.cancel != nil {
		s.cancel()
	}
	s.logger.Info("job scheduler stopped")
}

// JobCount returns the number of registered jobs
func (s *Scheduler) JobCount() int {
	return len(s.scheduler.Jobs())
}

func (s *Scheduler) context() context.Context {
	if s.ctx != nil {
		return s.ctx
	}
	return context.Background()
}

// KeepAlive pings the database
func (s *Scheduler) KeepAlive() {
	ctx, cancel := context.WithTimeout(s.context(), 10*time.Second)
	defer cancel()
	if err := s.db.PingContext(ctx); err != nil {
		s.logger.Warn("database keep-alive failed", zap.Error(err))
		return
	}
	s.logger.Debug("database keep-alive ok")
}

// SendReminders runs the daily reminder round
func (s *Scheduler) SendReminders() {
	sent, err := s.reminders.SendDailyReminders(s.context())
	if err != nil {
		s.logger.Error("daily reminders finished with errors", zap.Int("sent", sent), zap.Error(err))
	}
}

// PurgeAttempts removes expired generation attempts
func (s *Scheduler) PurgeAttempts() {
	n, err := s.attempts.PurgeAttempts(s.context())
	if err != nil {
		s.logger.Warn("generation log purge failed", zap.Error(err))
		return
	}
	if n > 0 {
		s.logger.Debug("generation log purged", zap.Int64("removed", n))
	}
}
