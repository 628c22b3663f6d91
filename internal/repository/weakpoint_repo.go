package repository

import (
	"context"
	"fmt"

	"mentormind/internal/database"
	"mentormind/internal/models"
)

var weakPointKey = []string{"user_id", "subject", "topic"}

// WeakPointRepository tracks topics a user answers incorrectly
type WeakPointRepository struct {
	db database.DBTX
}

// NewWeakPointRepository creates a new weak point repository
func NewWeakPointRepository(db database.DBTX) *WeakPointRepository {
	return &WeakPointRepository{db: db}
}

// Record counts one more error on (subject, topic)
func (r *WeakPointRepository) Record(ctx context.Context, userID int64, subject, topic string) error {
	query := r.db.GetDialect().IncrementOnConflict("weak_points", weakPointKey, "error_count", "last_error_at")
	if _, err := r.db.ExecContext(ctx, query, userID, subject, topic, 1); err != nil {
		return fmt.Errorf("failed to record weak point: %w", err)
	}
	return nil
}

// Top returns the topics with the most errors
func (r *WeakPointRepository) Top(ctx context.Context, userID int64, limit int) ([]models.WeakPoint, error) {
	query := `
		SELECT id, user_id, subject, topic, error_count, last_error_at
		FROM weak_points
		WHERE user_id = ?
		ORDER BY error_count DESC, id
		LIMIT ?
	`
	var points []models.WeakPoint
	if err := r.db.SelectContext(ctx, &points, query, userID, limit); err != nil {
		return nil, fmt.Errorf("failed to list weak points: %w", err)
	}
	return points, nil
}

// BySubject aggregates errors per subject, worst first
func (r *WeakPointRepository) BySubject(ctx context.Context, userID int64) ([]models.SubjectWeakness, error) {
	query := `
		SELECT subject, COUNT(*) AS topics, SUM(error_count) AS total_errors
		FROM weak_points
		WHERE user_id = ?
		GROUP BY subject
		ORDER BY total_errors DESC, subject
	`
	var subjects []models.SubjectWeakness
	if err := r.db.SelectContext(ctx, &subjects, query, userID); err != nil {
		return nil, fmt.Errorf("failed to group weak points: %w", err)
	}
	return subjects, nil
}
