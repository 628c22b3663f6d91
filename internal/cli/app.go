package cli

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"mentormind/internal/ai"
	"mentormind/internal/config"
	"mentormind/internal/database"
	"mentormind/internal/notify"
	"mentormind/internal/progression"
	"mentormind/internal/service"
)

// Options customize how the application is assembled. Zero values mean
// "build from configuration".
type Options struct {
	Config    *config.Config
	Logger    *zap.Logger
	Generator service.Generator
	Notifier  notify.Notifier
	Now       func() time.Time
}

// App holds the open database and every service built on it
type App struct {
	Config     *config.Config
	DB         *database.DB
	Logger     *zap.Logger
	Location   *time.Location
	Migrations []string

	Users       *service.UserService
	Progression *service.ProgressionService
	Study       *service.StudyService
	Generation  *service.GenerationService
	Stats       *service.StatsService
	Backup      *service.BackupService
	Report      *service.ReportService
	Reminders   *service.ReminderService
}

// Open connects to the configured database, applies pending migrations,
// seeds the badge catalog and wires the services
func Open(ctx context.Context, opts Options) (*App, error) {
	cfg, logger := opts.Config, opts.Logger
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	db, err := database.InitializeWithConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	logger.Debug("database connection established", zap.String("type", db.Dialect.Name()))

	applied, err := db.RunMigrations(ctx, cfg.MigrationsPath)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	if len(applied) > 0 {
		logger.Info("migrations applied", zap.Strings("files", applied))
	}

	deps := service.Deps{DB: db, Location: loc, Now: opts.Now, Logger: logger}
	progress := service.NewProgressionService(deps)

	rules, err := progression.DefaultBadgeCatalog()
	if err != nil {
		db.Close()
		return nil, err
	}
	if _, err := progress.SeedBadges(ctx, rules); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to seed badges: %w", err)
	}

	gen := opts.Generator
	if gen == nil && cfg.AIEnabled() {
		gemini, err := ai.NewGemini(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, logger)
		if err != nil {
			db.Close()
			return nil, err
		}
		gen = gemini
	}

	notifier := opts.Notifier
	if notifier == nil {
		if notifier, err = buildNotifier(ctx, cfg, logger); err != nil {
			db.Close()
			return nil, err
		}
	}

	generation := service.NewGenerationService(deps, gen, service.RateLimit{
		Max:    cfg.AIRateLimit,
		Window: cfg.AIRateWindow,
	})
	study := service.NewStudyService(deps)
	if gen != nil {
		study.WithPlanner(generation)
	}

	return &App{
		Config:      cfg,
		DB:          db,
		Logger:      logger,
		Location:    loc,
		Migrations:  applied,
		Users:       service.NewUserService(deps),
		Progression: progress,
		Study:       study,
		Generation:  generation,
		Stats:       service.NewStatsService(deps),
		Backup:      service.NewBackupService(deps),
		Report:      service.NewReportService(deps),
		Reminders:   service.NewReminderService(deps, notifier),
	}, nil
}

// buildNotifier combines every configured delivery channel, falling back
// to the log when none is configured
func buildNotifier(ctx context.Context, cfg *config.Config, logger *zap.Logger) (notify.Notifier, error) {
	var channels notify.Multi
	if cfg.SESFromEmail != "" {
		email, err := notify.NewEmailNotifier(ctx, cfg.AWSRegion, cfg.SESFromEmail, cfg.SESFromName, logger)
		if err != nil {
			return nil, err
		}
		channels = append(channels, email)
	}
	if cfg.TelegramBotToken != "" {
		telegram, err := notify.NewTelegramNotifier(cfg.TelegramBotToken, logger)
		if err != nil {
			return nil, err
		}
		channels = append(channels, telegram)
	}

	switch len(channels) {
	case 0:
		return notify.NewLogNotifier(logger), nil
	case 1:
		return channels[0], nil
	}
	return channels, nil
}

// Close releases the database connection
func (a *App) Close() error {
	return a.DB.Close()
}
