package repository

import (
	"context"
	"fmt"

	"mentormind/internal/database"
	"mentormind/internal/models"
)

// QuizRepository handles quizzes and graded attempts
type QuizRepository struct {
	db database.DBTX
}

// NewQuizRepository creates a new quiz repository
func NewQuizRepository(db database.DBTX) *QuizRepository {
	return &QuizRepository{db: db}
}

// Create inserts a quiz and sets its ID
func (r *QuizRepository) Create(ctx context.Context, q *models.Quiz) error {
	q.TotalQuestions = len(q.Questions)
	q.CreatedAt = q.CreatedAt.UTC()
	query := `
		INSERT INTO quizzes (user_id, title, subject, questions, total_questions, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	id, err := r.db.ExecReturningID(ctx, query, q.UserID, q.Title, q.Subject, q.Questions, q.TotalQuestions, q.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create quiz: %w", err)
	}
	q.ID = id
	return nil
}

// GetForUser loads a quiz owned by userID
func (r *QuizRepository) GetForUser(ctx context.Context, id, userID int64) (*models.Quiz, error) {
	quiz := &models.Quiz{}
	query := "SELECT id, user_id, title, subject, questions, total_questions, created_at FROM quizzes WHERE id = ? AND user_id = ?"
	if err := r.db.GetContext(ctx, quiz, query, id, userID); err != nil {
		return nil, wrapNotFound(err, "failed to get quiz %d", id)
	}
	return quiz, nil
}

// RecordAttempt stores a graded attempt and sets its ID
func (r *QuizRepository) RecordAttempt(ctx context.Context, a *models.QuizAttempt) error {
	a.CompletedAt = a.CompletedAt.UTC()
	query := `
		INSERT INTO quiz_attempts (quiz_id, user_id, answers, score, total, time_spent_seconds, completed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	id, err := r.db.ExecReturningID(ctx, query, a.QuizID, a.UserID, a.Answers, a.Score, a.Total, a.TimeSpentSeconds, a.CompletedAt)
	if err != nil {
		return fmt.Errorf("failed to record quiz attempt: %w", err)
	}
	a.ID = id
	return nil
}

// ListAttempts returns a user's most recent attempts
func (r *QuizRepository) ListAttempts(ctx context.Context, userID int64, limit int) ([]models.QuizAttempt, error) {
	query := `
		SELECT id, quiz_id, user_id, answers, score, total, time_spent_seconds, completed_at
		FROM quiz_attempts
		WHERE user_id = ?
		ORDER BY completed_at DESC, id DESC
		LIMIT ?
	`
	var attempts []models.QuizAttempt
	if err := r.db.SelectContext(ctx, &attempts, query, userID, limit); err != nil {
		return nil, fmt.Errorf("failed to list quiz attempts: %w", err)
	}
	return attempts, nil
}
