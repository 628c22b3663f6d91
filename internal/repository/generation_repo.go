package repository

import (
	"context"
	"fmt"
	"time"

	"mentormind/internal/database"
)

// GenerationRepository logs calls to the generation backend so the per-user
// limit holds across processes
type GenerationRepository struct {
	db database.DBTX
}

// NewGenerationRepository creates a new generation event repository
func NewGenerationRepository(db database.DBTX) *GenerationRepository {
	return &GenerationRepository{db: db}
}

// Record logs one generation attempt of kind
func (r *GenerationRepository) Record(ctx context.Context, userID int64, kind string, at time.Time) error {
	query := "INSERT INTO generation_events (user_id, kind, created_at) VALUES (?, ?, ?)"
	if _, err := r.db.ExecContext(ctx, query, userID, kind, at.UTC()); err != nil {
		return fmt.Errorf("failed to record generation event: %w", err)
	}
	return nil
}

// CountSince counts a user's attempts at or after since
func (r *GenerationRepository) CountSince(ctx context.Context, userID int64, since time.Time) (int, error) {
	var n int
	query := "SELECT COUNT(*) FROM generation_events WHERE user_id = ? AND created_at >= ?"
	if err := r.db.GetContext(ctx, &n, query, userID, since.UTC()); err != nil {
		return 0, fmt.Errorf("failed to count generation events: %w", err)
	}
	return n, nil
}

// DeleteBefore removes attempts older than before and returns how many went
func (r *GenerationRepository) DeleteBefore(ctx context.Context, before time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, "DELETE FROM generation_events WHERE created_at < ?", before.UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to purge generation events: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to purge generation events: %w", err)
	}
	return n, nil
}
