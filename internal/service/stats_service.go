package service

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"mentormind/internal/models"
	"mentormind/internal/progression"
	"mentormind/internal/repository"
)

const (
	dashboardDays    = 7
	rankingSize      = 20
	focusRankingSize = 10
	focusRankingDays = 7
	weakPointLimit   = 10
)

// Dashboard is the daily overview of a user
type Dashboard struct {
	User              *models.User              `json:"user"`
	Progress          progression.LevelProgress `json:"progress"`
	FocusToday        int                       `json:"focus_today"`
	PendingFlashcards int                       `json:"pending_flashcards"`
	PendingTasks      int                       `json:"pending_tasks"`
	LastDays          []models.DayTotal         `json:"last_days"`
	Goal              *models.DailyGoal         `json:"goal"`
	StreakAtRisk      bool                      `json:"streak_at_risk"`
}

// Profile holds lifetime counters of a user
type Profile struct {
	User     *models.User                 `json:"user"`
	Progress progression.LevelProgress    `json:"progress"`
	Stats    progression.AchievementStats `json:"stats"`
	Badges   []models.BadgeStatus         `json:"badges"`
}

// WeakPointReport lists the most missed topics and totals per subject
type WeakPointReport struct {
	Top       []models.WeakPoint       `json:"top"`
	BySubject []models.SubjectWeakness `json:"by_subject"`
}

// StatsService answers read-only statistics queries
type StatsService struct {
	Deps
}

// NewStatsService creates a new stats service
func NewStatsService(deps Deps) *StatsService {
	return &StatsService{Deps: deps}
}

// Dashboard gathers today's figures. The goal record is created first;
// the remaining reads run concurrently.
func (s *StatsService) Dashboard(ctx context.Context, userID int64) (*Dashboard, error) {
	today := s.today()
	goal, err := repository.NewGoalRepository(s.DB).GetOrCreate(ctx, userID, today)
	if err != nil {
		return nil, err
	}
	d := &Dashboard{Goal: goal}

	var totals []models.DayTotal
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		user, err := repository.NewUserRepository(s.DB).GetByID(gctx, userID)
		d.User = user
		return err
	})
	g.Go(func() error {
		n, err := repository.NewFocusRepository(s.DB).MinutesOn(gctx, userID, today)
		d.FocusToday = n
		return err
	})
	g.Go(func() error {
		n, err := repository.NewFlashcardRepository(s.DB).CountDue(gctx, userID, today)
		d.PendingFlashcards = n
		return err
	})
	g.Go(func() error {
		n, err := repository.NewPlanRepository(s.DB).CountPendingOn(gctx, userID, today)
		d.PendingTasks = n
		return err
	})
	g.Go(func() error {
		var err error
		totals, err = repository.NewFocusRepository(s.DB).DailyMinutes(gctx, userID, today.AddDays(-(dashboardDays - 1)))
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to build dashboard: %w", err)
	}

	d.Progress = d.User.Progress()
	d.LastDays = fillDays(totals, today, dashboardDays)
	d.StreakAtRisk = progression.StreakAtRisk(d.User.LastStudyDate, d.User.StreakDays, today)
	return d, nil
}

// fillDays returns one total per day ending at today, oldest first, with
// zero for days that have no data
func fillDays(totals []models.DayTotal, today progression.Date, days int) []models.DayTotal {
	byDay := make(map[string]int, len(totals))
	for _, t := range totals {
		byDay[t.Date.String()] = t.Total
	}
	out := make([]models.DayTotal, days)
	for i := range out {
		day := today.AddDays(i - days + 1)
		out[i] = models.DayTotal{Date: day, Total: byDay[day.String()]}
	}
	return out
}

// Profile returns lifetime counters and badge status
func (s *StatsService) Profile(ctx context.Context, userID int64) (*Profile, error) {
	user, err := repository.NewUserRepository(s.DB).GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	badges := repository.NewBadgeRepository(s.DB)
	stats, err := badges.AchievementStats(ctx, userID)
	if err != nil {
		return nil, err
	}
	status, err := badges.ListWithStatus(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &Profile{User: user, Progress: user.Progress(), Stats: stats, Badges: status}, nil
}

// Ranking returns the top users by XP
func (s *StatsService) Ranking(ctx context.Context) ([]models.RankingEntry, error) {
	return repository.NewUserRepository(s.DB).Ranking(ctx, rankingSize)
}

// FocusRanking returns the top users by focus minutes over the last week
func (s *StatsService) FocusRanking(ctx context.Context) ([]models.FocusRankingEntry, error) {
	since := s.today().AddDays(-focusRankingDays)
	return repository.NewFocusRepository(s.DB).WeeklyRanking(ctx, since, focusRankingSize)
}

// WeakPoints reports the topics a user gets wrong most often
func (s *StatsService) WeakPoints(ctx context.Context, userID int64) (*WeakPointReport, error) {
	repo := repository.NewWeakPointRepository(s.DB)
	top, err := repo.Top(ctx, userID, weakPointLimit)
	if err != nil {
		return nil, err
	}
	bySubject, err := repo.BySubject(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &WeakPointReport{Top: top, BySubject: bySubject}, nil
}

// ReviewPerformance summarizes review events of the last days days
func (s *StatsService) ReviewPerformance(ctx context.Context, userID int64, days int) (models.ReviewPerformance, error) {
	if days <= 0 {
		days = 30
	}
	since := s.now().Add(-time.Duration(days) * 24 * time.Hour)
	return repository.NewFlashcardRepository(s.DB).Performance(ctx, userID, since)
}
