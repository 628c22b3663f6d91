package repository

import (
	"context"
	"fmt"

	"mentormind/internal/database"
	"mentormind/internal/models"
	"mentormind/internal/progression"
)

const goalColumns = `id, user_id, date, focus_goal_minutes, focus_achieved_minutes,
	flashcards_goal, flashcards_done, tasks_goal, tasks_done`

var goalKey = []string{"user_id", "date"}

// GoalRepository handles daily goal records
type GoalRepository struct {
	db database.DBTX
}

// NewGoalRepository creates a new goal repository
func NewGoalRepository(db database.DBTX) *GoalRepository {
	return &GoalRepository{db: db}
}

// Accumulate adds delta to one counter of the (user, date) record, creating
// the record with default targets first if needed. It is a single statement,
// so concurrent increments never lose updates.
func (r *GoalRepository) Accumulate(ctx context.Context, userID int64, date progression.Date, field progression.GoalField, delta int) (*models.DailyGoal, error) {
	if err := progression.ValidateIncrement(field, delta); err != nil {
		return nil, err
	}

	query := r.db.GetDialect().IncrementOnConflict("daily_goals", goalKey, field.AchievedColumn())
	if _, err := r.db.ExecContext(ctx, query, userID, date, delta); err != nil {
		return nil, fmt.Errorf("failed to accumulate %s goal: %w", field, err)
	}
	return r.Get(ctx, userID, date)
}

// GetOrCreate returns the (user, date) record, inserting defaults if absent
func (r *GoalRepository) GetOrCreate(ctx context.Context, userID int64, date progression.Date) (*models.DailyGoal, error) {
	query := r.db.GetDialect().InsertIgnore("daily_goals", goalKey)
	if _, err := r.db.ExecContext(ctx, query, userID, date); err != nil {
		return nil, fmt.Errorf("failed to create daily goal: %w", err)
	}
	return r.Get(ctx, userID, date)
}

// Get loads the (user, date) record
func (r *GoalRepository) Get(ctx context.Context, userID int64, date progression.Date) (*models.DailyGoal, error) {
	goal := &models.DailyGoal{}
	err := r.db.GetContext(ctx, goal, "SELECT "+goalColumns+" FROM daily_goals WHERE user_id = ? AND date = ?", userID, date)
	if err != nil {
		return nil, wrapNotFound(err, "failed to get goal for %s", date)
	}
	return goal, nil
}

// ListRange returns records between from and to inclusive, oldest first
func (r *GoalRepository) ListRange(ctx context.Context, userID int64, from, to progression.Date) ([]models.DailyGoal, error) {
	query := "SELECT " + goalColumns + " FROM daily_goals WHERE user_id = ? AND date >= ? AND date <= ? ORDER BY date"
	var goals []models.DailyGoal
	if err := r.db.SelectContext(ctx, &goals, query, userID, from, to); err != nil {
		return nil, fmt.Errorf("failed to list goals: %w", err)
	}
	return goals, nil
}

// ListByUser returns every record of a user, oldest first
func (r *GoalRepository) ListByUser(ctx context.Context, userID int64) ([]models.DailyGoal, error) {
	var goals []models.DailyGoal
	if err := r.db.SelectContext(ctx, &goals, "SELECT "+goalColumns+" FROM daily_goals WHERE user_id = ? ORDER BY date", userID); err != nil {
		return nil, fmt.Errorf("failed to list goals: %w", err)
	}
	return goals, nil
}

// Restore inserts a full record as exported, keeping its id
func (r *GoalRepository) Restore(ctx context.Context, g *models.DailyGoal) error {
	query := `
		INSERT INTO daily_goals (id, user_id, date, focus_goal_minutes, focus_achieved_minutes,
			flashcards_goal, flashcards_done, tasks_goal, tasks_done)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query, g.ID, g.UserID, g.Date, g.FocusGoalMinutes, g.FocusAchievedMinutes,
		g.FlashcardsGoal, g.FlashcardsDone, g.TasksGoal, g.TasksDone)
	if err != nil {
		return fmt.Errorf("failed to restore goal %d: %w", g.ID, err)
	}
	return nil
}
