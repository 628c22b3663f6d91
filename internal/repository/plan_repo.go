package repository

import (
	"context"
	"fmt"
	"time"

	"mentormind/internal/database"
	"mentormind/internal/models"
	"mentormind/internal/progression"
)

const taskColumns = `id, plan_id, user_id, title, subject, description, scheduled_date,
	duration_minutes, priority, is_completed, completed_at`

// PlanRepository handles study plans and their tasks
type PlanRepository struct {
	db database.DBTX
}

// NewPlanRepository creates a new plan repository
func NewPlanRepository(db database.DBTX) *PlanRepository {
	return &PlanRepository{db: db}
}

// CreatePlan inserts a plan and sets its ID
func (r *PlanRepository) CreatePlan(ctx context.Context, p *models.StudyPlan) error {
	query := `
		INSERT INTO study_plans (user_id, title, objective, daily_hours, deadline, subjects, is_active, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	p.CreatedAt = p.CreatedAt.UTC()
	id, err := r.db.ExecReturningID(ctx, query, p.UserID, p.Title, p.Objective, p.DailyHours, p.Deadline, p.Subjects, p.IsActive, p.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create study plan: %w", err)
	}
	p.ID = id
	return nil
}

// AddTask inserts a task and sets its ID
func (r *PlanRepository) AddTask(ctx context.Context, t *models.StudyTask) error {
	query := `
		INSERT INTO study_tasks (plan_id, user_id, title, subject, description, scheduled_date, duration_minutes, priority)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	id, err := r.db.ExecReturningID(ctx, query, t.PlanID, t.UserID, t.Title, t.Subject, t.Description,
		t.ScheduledDate, t.DurationMinutes, t.Priority)
	if err != nil {
		return fmt.Errorf("failed to add study task: %w", err)
	}
	t.ID = id
	return nil
}

// GetTask loads a task owned by userID
func (r *PlanRepository) GetTask(ctx context.Context, id, userID int64) (*models.StudyTask, error) {
	task := &models.StudyTask{}
	err := r.db.GetContext(ctx, task, "SELECT "+taskColumns+" FROM study_tasks WHERE id = ? AND user_id = ?", id, userID)
	if err != nil {
		return nil, wrapNotFound(err, "failed to get task %d", id)
	}
	return task, nil
}

// CompleteTask marks an open task owned by userID as done. A task that is
// missing, owned by someone else or already completed yields ErrNotFound.
func (r *PlanRepository) CompleteTask(ctx context.Context, id, userID int64, at time.Time) error {
	query := "UPDATE study_tasks SET is_completed = ?, completed_at = ? WHERE id = ? AND user_id = ? AND is_completed = " +
		r.db.GetDialect().BoolValue(false)
	result, err := r.db.ExecContext(ctx, query, true, at.UTC(), id, userID)
	if err != nil {
		return fmt.Errorf("failed to complete task: %w", err)
	}
	return requireAffected(result, "failed to complete open task %d", id)
}

// CountPendingOn counts open tasks scheduled on day
func (r *PlanRepository) CountPendingOn(ctx context.Context, userID int64, day progression.Date) (int, error) {
	query := "SELECT COUNT(*) FROM study_tasks WHERE user_id = ? AND scheduled_date = ? AND is_completed = " +
		r.db.GetDialect().BoolValue(false)
	var n int
	if err := r.db.GetContext(ctx, &n, query, userID, day); err != nil {
		return 0, fmt.Errorf("failed to count pending tasks: %w", err)
	}
	return n, nil
}

// Upcoming lists open tasks scheduled from day onward, soonest first
func (r *PlanRepository) Upcoming(ctx context.Context, userID int64, day progression.Date, limit int) ([]models.StudyTask, error) {
	query := "SELECT " + taskColumns + " FROM study_tasks WHERE user_id = ? AND scheduled_date >= ? AND is_completed = " +
		r.db.GetDialect().BoolValue(false) + " ORDER BY scheduled_date, priority DESC, id LIMIT ?"
	var tasks []models.StudyTask
	if err := r.db.SelectContext(ctx, &tasks, query, userID, day, limit); err != nil {
		return nil, fmt.Errorf("failed to list upcoming tasks: %w", err)
	}
	return tasks, nil
}

// ListTasks returns every task of a plan
func (r *PlanRepository) ListTasks(ctx context.Context, planID int64) ([]models.StudyTask, error) {
	var tasks []models.StudyTask
	err := r.db.SelectContext(ctx, &tasks, "SELECT "+taskColumns+" FROM study_tasks WHERE plan_id = ? ORDER BY scheduled_date, id", planID)
	if err != nil {
		return nil, fmt.Errorf("failed to list plan tasks: %w", err)
	}
	return tasks, nil
}
