package repository

import (
	"context"
	"fmt"
	"time"

	"mentormind/internal/database"
	"mentormind/internal/models"
	"mentormind/internal/progression"
)

const flashcardColumns = `id, user_id, summary_id, deck_name, front, back, repetitions,
	ease_factor, interval_days, next_review, last_reviewed, created_at`

// FlashcardRepository handles flashcards and their review history
type FlashcardRepository struct {
	db database.DBTX
}

// NewFlashcardRepository creates a new flashcard repository
func NewFlashcardRepository(db database.DBTX) *FlashcardRepository {
	return &FlashcardRepository{db: db}
}

// Create inserts a card and sets its ID
func (r *FlashcardRepository) Create(ctx context.Context, card *models.Flashcard) error {
	query := `
		INSERT INTO flashcards (user_id, summary_id, deck_name, front, back, repetitions,
			ease_factor, interval_days, next_review, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	card.CreatedAt = card.CreatedAt.UTC()
	id, err := r.db.ExecReturningID(ctx, query, card.UserID, card.SummaryID, card.DeckName, card.Front, card.Back,
		card.Repetitions, card.EaseFactor, card.IntervalDays, card.NextReview, card.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create flashcard: %w", err)
	}
	card.ID = id
	return nil
}

// GetForUser loads a card owned by userID
func (r *FlashcardRepository) GetForUser(ctx context.Context, id, userID int64) (*models.Flashcard, error) {
	card := &models.Flashcard{}
	err := r.db.GetContext(ctx, card, "SELECT "+flashcardColumns+" FROM flashcards WHERE id = ? AND user_id = ?", id, userID)
	if err != nil {
		return nil, wrapNotFound(err, "failed to get flashcard %d", id)
	}
	return card, nil
}

// UpdateSchedule stores the result of a review
func (r *FlashcardRepository) UpdateSchedule(ctx context.Context, id int64, state progression.SchedulingState, nextReview, reviewedOn progression.Date) error {
	query := `
		UPDATE flashcards
		SET repetitions = ?, ease_factor = ?, interval_days = ?, next_review = ?, last_reviewed = ?
		WHERE id = ?
	`
	result, err := r.db.ExecContext(ctx, query, state.Repetitions, state.EaseFactor, state.IntervalDays, nextReview, reviewedOn, id)
	if err != nil {
		return fmt.Errorf("failed to update flashcard schedule: %w", err)
	}
	return requireAffected(result, "failed to update flashcard %d", id)
}

// AppendReview records a review event and sets its ID
func (r *FlashcardRepository) AppendReview(ctx context.Context, review *models.FlashcardReview) error {
	query := `
		INSERT INTO flashcard_reviews (flashcard_id, user_id, quality, prev_interval, prev_ease,
			new_interval, new_ease, reviewed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	review.ReviewedAt = review.ReviewedAt.UTC()
	id, err := r.db.ExecReturningID(ctx, query, review.FlashcardID, review.UserID, review.Quality,
		review.PrevInterval, review.PrevEase, review.NewInterval, review.NewEase, review.ReviewedAt)
	if err != nil {
		return fmt.Errorf("failed to record review: %w", err)
	}
	review.ID = id
	return nil
}

// ListDue returns cards due on or before day, most overdue first
func (r *FlashcardRepository) ListDue(ctx context.Context, userID int64, day progression.Date, limit int) ([]models.Flashcard, error) {
	query := "SELECT " + flashcardColumns + `
		FROM flashcards
		WHERE user_id = ? AND next_review <= ?
		ORDER BY next_review, id
		LIMIT ?
	`
	var cards []models.Flashcard
	if err := r.db.SelectContext(ctx, &cards, query, userID, day, limit); err != nil {
		return nil, fmt.Errorf("failed to list due flashcards: %w", err)
	}
	return cards, nil
}

// CountDue counts cards due on or before day
func (r *FlashcardRepository) CountDue(ctx context.Context, userID int64, day progression.Date) (int, error) {
	var n int
	err := r.db.GetContext(ctx, &n, "SELECT COUNT(*) FROM flashcards WHERE user_id = ? AND next_review <= ?", userID, day)
	if err != nil {
		return 0, fmt.Errorf("failed to count due flashcards: %w", err)
	}
	return n, nil
}

// ListByUser returns all of a user's cards
func (r *FlashcardRepository) ListByUser(ctx context.Context, userID int64) ([]models.Flashcard, error) {
	var cards []models.Flashcard
	err := r.db.SelectContext(ctx, &cards, "SELECT "+flashcardColumns+" FROM flashcards WHERE user_id = ? ORDER BY id", userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list flashcards: %w", err)
	}
	return cards, nil
}

// ListReviews returns a user's review events since a point in time, oldest first
func (r *FlashcardRepository) ListReviews(ctx context.Context, userID int64, since time.Time) ([]models.FlashcardReview, error) {
	query := `
		SELECT id, flashcard_id, user_id, quality, prev_interval, prev_ease, new_interval, new_ease, reviewed_at
		FROM flashcard_reviews
		WHERE user_id = ? AND reviewed_at >= ?
		ORDER BY reviewed_at, id
	`
	var reviews []models.FlashcardReview
	if err := r.db.SelectContext(ctx, &reviews, query, userID, since.UTC()); err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}
	return reviews, nil
}

// CountReviewsForCard counts the review events of one card
func (r *FlashcardRepository) CountReviewsForCard(ctx context.Context, flashcardID int64) (int, error) {
	var n int
	if err := r.db.GetContext(ctx, &n, "SELECT COUNT(*) FROM flashcard_reviews WHERE flashcard_id = ?", flashcardID); err != nil {
		return 0, fmt.Errorf("failed to count reviews: %w", err)
	}
	return n, nil
}

// Performance summarizes review events since a point in time
func (r *FlashcardRepository) Performance(ctx context.Context, userID int64, since time.Time) (models.ReviewPerformance, error) {
	query := fmt.Sprintf(`
		SELECT COUNT(*) AS reviews,
		       COALESCE(SUM(CASE WHEN quality >= %d THEN 1 ELSE 0 END), 0) AS successful,
		       COALESCE(AVG(quality), 0) AS average_quality
		FROM flashcard_reviews
		WHERE user_id = ? AND reviewed_at >= ?
	`, progression.PassingQuality)

	var perf models.ReviewPerformance
	if err := r.db.GetContext(ctx, &perf, query, userID, since.UTC()); err != nil {
		return perf, fmt.Errorf("failed to load review performance: %w", err)
	}
	return perf, nil
}

// Restore inserts a card as exported, keeping its id
func (r *FlashcardRepository) Restore(ctx context.Context, c *models.Flashcard) error {
	query := `
		INSERT INTO flashcards (id, user_id, summary_id, deck_name, front, back, repetitions,
			ease_factor, interval_days, next_review, last_reviewed, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query, c.ID, c.UserID, c.SummaryID, c.DeckName, c.Front, c.Back,
		c.Repetitions, c.EaseFactor, c.IntervalDays, c.NextReview, c.LastReviewed, c.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to restore flashcard %d: %w", c.ID, err)
	}
	return nil
}

// RestoreReview inserts a review event as exported, keeping its id
func (r *FlashcardRepository) RestoreReview(ctx context.Context, v *models.FlashcardReview) error {
	query := `
		INSERT INTO flashcard_reviews (id, flashcard_id, user_id, quality, prev_interval, prev_ease,
			new_interval, new_ease, reviewed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query, v.ID, v.FlashcardID, v.UserID, v.Quality, v.PrevInterval,
		v.PrevEase, v.NewInterval, v.NewEase, v.ReviewedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to restore review %d: %w", v.ID, err)
	}
	return nil
}
