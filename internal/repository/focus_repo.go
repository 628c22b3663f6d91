package repository

import (
	"context"
	"fmt"

	"mentormind/internal/database"
	"mentormind/internal/models"
	"mentormind/internal/progression"
)

// FocusRepository handles completed focus sessions
type FocusRepository struct {
	db database.DBTX
}

// NewFocusRepository creates a new focus session repository
func NewFocusRepository(db database.DBTX) *FocusRepository {
	return &FocusRepository{db: db}
}

// Record inserts a completed session and sets its ID
func (r *FocusRepository) Record(ctx context.Context, s *models.FocusSession) error {
	if s.SessionType == "" {
		s.SessionType = "pomodoro"
	}
	query := `
		INSERT INTO focus_sessions (user_id, duration_minutes, session_type, session_date, xp_earned, completed_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	s.CompletedAt = s.CompletedAt.UTC()
	id, err := r.db.ExecReturningID(ctx, query, s.UserID, s.DurationMinutes, s.SessionType, s.SessionDate, s.XPEarned, s.CompletedAt)
	if err != nil {
		return fmt.Errorf("failed to record focus session: %w", err)
	}
	s.ID = id
	return nil
}

// MinutesOn returns the focus minutes logged on day
func (r *FocusRepository) MinutesOn(ctx context.Context, userID int64, day progression.Date) (int, error) {
	var total int
	query := "SELECT COALESCE(SUM(duration_minutes), 0) FROM focus_sessions WHERE user_id = ? AND session_date = ?"
	if err := r.db.GetContext(ctx, &total, query, userID, day); err != nil {
		return 0, fmt.Errorf("failed to sum focus minutes: %w", err)
	}
	return total, nil
}

// DailyMinutes returns per-day focus totals from day onward, oldest first.
// Days without sessions are omitted.
func (r *FocusRepository) DailyMinutes(ctx context.Context, userID int64, from progression.Date) ([]models.DayTotal, error) {
	query := `
		SELECT session_date AS day, SUM(duration_minutes) AS total
		FROM focus_sessions
		WHERE user_id = ? AND session_date >= ?
		GROUP BY session_date
		ORDER BY session_date
	`
	var totals []models.DayTotal
	if err := r.db.SelectContext(ctx, &totals, query, userID, from); err != nil {
		return nil, fmt.Errorf("failed to load daily focus minutes: %w", err)
	}
	return totals, nil
}

// Count returns the number of completed sessions
func (r *FocusRepository) Count(ctx context.Context, userID int64) (int, error) {
	var n int
	if err := r.db.GetContext(ctx, &n, "SELECT COUNT(*) FROM focus_sessions WHERE user_id = ?", userID); err != nil {
		return 0, fmt.Errorf("failed to count focus sessions: %w", err)
	}
	return n, nil
}

// WeeklyRanking ranks users by focus minutes logged on or after since,
// highest first
func (r *FocusRepository) WeeklyRanking(ctx context.Context, since progression.Date, limit int) ([]models.FocusRankingEntry, error) {
	query := `
		SELECT u.id, u.name, SUM(f.duration_minutes) AS minutes
		FROM focus_sessions f
		JOIN users u ON u.id = f.user_id
		WHERE f.session_date >= ?
		GROUP BY u.id, u.name
		ORDER BY minutes DESC, u.id
		LIMIT ?
	`
	var entries []models.FocusRankingEntry
	if err := r.db.SelectContext(ctx, &entries, query, since, limit); err != nil {
		return nil, fmt.Errorf("failed to load focus ranking: %w", err)
	}
	for i := range entries {
		entries[i].Position = i + 1
	}
	return entries, nil
}
