package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"mentormind/internal/database"
	"mentormind/internal/models"
	"mentormind/internal/progression"
)

const userColumns = `id, username, email, password_hash, name, xp, level, total_focus_minutes,
	streak_days, last_study_date, telegram_chat_id, reminders_enabled, created_at`

// UserRepository handles user and XP ledger database operations
type UserRepository struct {
	db database.DBTX
}

// NewUserRepository creates a new user repository
func NewUserRepository(db database.DBTX) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts a new user with zero progression
func (r *UserRepository) Create(ctx context.Context, username, email, passwordHash, name string, createdAt time.Time) (*models.User, error) {
	query := `
		INSERT INTO users (username, email, password_hash, name, created_at)
		VALUES (?, ?, ?, ?, ?)
	`
	id, err := r.db.ExecReturningID(ctx, query, username, email, passwordHash, name, createdAt.UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return r.GetByID(ctx, id)
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	user := &models.User{}
	err := r.db.GetContext(ctx, user, "SELECT "+userColumns+" FROM users WHERE id = ?", id)
	if err != nil {
		return nil, wrapNotFound(err, "failed to get user %d", id)
	}
	return user, nil
}

// FindByUsernameOrEmail returns the user holding either identifier, or nil if none does
func (r *UserRepository) FindByUsernameOrEmail(ctx context.Context, username, email string) (*models.User, error) {
	user := &models.User{}
	err := r.db.GetContext(ctx, user, "SELECT "+userColumns+" FROM users WHERE username = ? OR email = ?", username, email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	return user, nil
}

// List returns every user ordered by ID
func (r *UserRepository) List(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := r.db.SelectContext(ctx, &users, "SELECT "+userColumns+" FROM users ORDER BY id"); err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// ListForReminders returns users that opted into daily reminders
func (r *UserRepository) ListForReminders(ctx context.Context) ([]models.User, error) {
	query := "SELECT " + userColumns + " FROM users WHERE reminders_enabled = " +
		r.db.GetDialect().BoolValue(true) + " ORDER BY id"

	var users []models.User
	if err := r.db.SelectContext(ctx, &users, query); err != nil {
		return nil, fmt.Errorf("failed to list reminder recipients: %w", err)
	}
	return users, nil
}

// AddXP increments the user's experience and returns the new total.
// The increment takes the row lock for the rest of the transaction.
func (r *UserRepository) AddXP(ctx context.Context, userID int64, amount int) (int, error) {
	result, err := r.db.ExecContext(ctx, "UPDATE users SET xp = xp + ? WHERE id = ?", amount, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to add xp: %w", err)
	}
	if err := requireAffected(result, "failed to add xp to user %d", userID); err != nil {
		return 0, err
	}

	var xp int
	if err := r.db.GetContext(ctx, &xp, "SELECT xp FROM users WHERE id = ?", userID); err != nil {
		return 0, fmt.Errorf("failed to read xp: %w", err)
	}
	return xp, nil
}

// SetLevel stores the level derived from the user's XP
func (r *UserRepository) SetLevel(ctx context.Context, userID int64, level int) error {
	if _, err := r.db.ExecContext(ctx, "UPDATE users SET level = ? WHERE id = ?", level, userID); err != nil {
		return fmt.Errorf("failed to set level: %w", err)
	}
	return nil
}

// AddFocusMinutes increments the lifetime focus total
func (r *UserRepository) AddFocusMinutes(ctx context.Context, userID int64, minutes int) error {
	result, err := r.db.ExecContext(ctx, "UPDATE users SET total_focus_minutes = total_focus_minutes + ? WHERE id = ?", minutes, userID)
	if err != nil {
		return fmt.Errorf("failed to add focus minutes: %w", err)
	}
	return requireAffected(result, "failed to add focus minutes to user %d", userID)
}

// UpdateStreak stores the streak and the day it was last extended
func (r *UserRepository) UpdateStreak(ctx context.Context, userID int64, streak int, studiedOn progression.Date) error {
	_, err := r.db.ExecContext(ctx, "UPDATE users SET streak_days = ?, last_study_date = ? WHERE id = ?", streak, studiedOn, userID)
	if err != nil {
		return fmt.Errorf("failed to update streak: %w", err)
	}
	return nil
}

// SetTelegramChat links a Telegram chat for reminders (0 unlinks)
func (r *UserRepository) SetTelegramChat(ctx context.Context, userID, chatID int64) error {
	result, err := r.db.ExecContext(ctx, "UPDATE users SET telegram_chat_id = ? WHERE id = ?", chatID, userID)
	if err != nil {
		return fmt.Errorf("failed to set telegram chat: %w", err)
	}
	return requireAffected(result, "failed to set telegram chat for user %d", userID)
}

// SetRemindersEnabled toggles daily reminders
func (r *UserRepository) SetRemindersEnabled(ctx context.Context, userID int64, enabled bool) error {
	result, err := r.db.ExecContext(ctx, "UPDATE users SET reminders_enabled = ? WHERE id = ?", enabled, userID)
	if err != nil {
		return fmt.Errorf("failed to update reminders: %w", err)
	}
	return requireAffected(result, "failed to update reminders for user %d", userID)
}

// RecordXPEvent appends to the XP ledger
func (r *UserRepository) RecordXPEvent(ctx context.Context, userID int64, source progression.XPSource, amount int, at time.Time) (*models.XPEvent, error) {
	event := &models.XPEvent{
		ID:        uuid.New().String(),
		UserID:    userID,
		Source:    source,
		Amount:    amount,
		CreatedAt: at.UTC(),
	}
	query := "INSERT INTO xp_events (id, user_id, source, amount, created_at) VALUES (?, ?, ?, ?, ?)"
	if _, err := r.db.ExecContext(ctx, query, event.ID, event.UserID, string(event.Source), event.Amount, event.CreatedAt); err != nil {
		return nil, fmt.Errorf("failed to record xp event: %w", err)
	}
	return event, nil
}

// ListXPEvents returns a user's ledger entries since a point in time, oldest first
func (r *UserRepository) ListXPEvents(ctx context.Context, userID int64, since time.Time) ([]models.XPEvent, error) {
	query := `
		SELECT id, user_id, source, amount, created_at
		FROM xp_events
		WHERE user_id = ? AND created_at >= ?
		ORDER BY created_at, id
	`
	var events []models.XPEvent
	if err := r.db.SelectContext(ctx, &events, query, userID, since.UTC()); err != nil {
		return nil, fmt.Errorf("failed to list xp events: %w", err)
	}
	return events, nil
}

// SumXPEvents returns the ledger total for a user
func (r *UserRepository) SumXPEvents(ctx context.Context, userID int64) (int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COALESCE(SUM(amount), 0) FROM xp_events WHERE user_id = ?", userID); err != nil {
		return 0, fmt.Errorf("failed to sum xp events: %w", err)
	}
	return total, nil
}

// Ranking returns the top users by XP
func (r *UserRepository) Ranking(ctx context.Context, limit int) ([]models.RankingEntry, error) {
	query := `
		SELECT id, name, xp, level, streak_days
		FROM users
		ORDER BY xp DESC, id
		LIMIT ?
	`
	var entries []models.RankingEntry
	if err := r.db.SelectContext(ctx, &entries, query, limit); err != nil {
		return nil, fmt.Errorf("failed to load ranking: %w", err)
	}
	for i := range entries {
		entries[i].Position = i + 1
	}
	return entries, nil
}

// Restore inserts a user as exported, keeping its id
func (r *UserRepository) Restore(ctx context.Context, u *models.User) error {
	query := `
		INSERT INTO users (id, username, email, password_hash, name, xp, level, total_focus_minutes,
			streak_days, last_study_date, telegram_chat_id, reminders_enabled, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query, u.ID, u.Username, u.Email, u.PasswordHash, u.Name, u.XP, u.Level,
		u.TotalFocusMinutes, u.StreakDays, u.LastStudyDate, u.TelegramChatID, u.RemindersEnabled, u.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to restore user %d: %w", u.ID, err)
	}
	return nil
}

// RestoreXPEvent inserts a ledger entry as exported
func (r *UserRepository) RestoreXPEvent(ctx context.Context, e *models.XPEvent) error {
	query := "INSERT INTO xp_events (id, user_id, source, amount, created_at) VALUES (?, ?, ?, ?, ?)"
	if _, err := r.db.ExecContext(ctx, query, e.ID, e.UserID, string(e.Source), e.Amount, e.CreatedAt.UTC()); err != nil {
		return fmt.Errorf("failed to restore xp event %s: %w", e.ID, err)
	}
	return nil
}
