package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"go.uber.org/zap"

	"mentormind/internal/database"
	"mentormind/internal/models"
	"mentormind/internal/repository"
)

// BackupVersion identifies the layout of exported files
const BackupVersion = "1.0"

// BackupData represents the complete database backup structure
type BackupData struct {
	Version      string                   `json:"version"`
	ExportedAt   time.Time                `json:"exported_at"`
	DatabaseType string                   `json:"database_type"`
	Users        []models.User            `json:"users"`
	Flashcards   []models.Flashcard       `json:"flashcards"`
	Reviews      []models.FlashcardReview `json:"reviews"`
	Goals        []models.DailyGoal       `json:"goals"`
	XPEvents     []models.XPEvent         `json:"xp_events"`
	Badges       []repository.EarnedBadge `json:"badges"`
}

// userBackup keeps the password hash, which models.User hides from JSON
type userBackup struct {
	models.User
	PasswordHash string `json:"password_hash"`
}

// MarshalJSON writes users with their password hashes
func (b BackupData) MarshalJSON() ([]byte, error) {
	type plain BackupData
	users := make([]userBackup, len(b.Users))
	for i, u := range b.Users {
		users[i] = userBackup{User: u, PasswordHash: u.PasswordHash}
	}
	return json.Marshal(struct {
		plain
		Users []userBackup `json:"users"`
	}{plain: plain(b), Users: users})
}

// UnmarshalJSON reads users together with their password hashes
func (b *BackupData) UnmarshalJSON(data []byte) error {
	type plain BackupData
	aux := struct {
		*plain
		Users []userBackup `json:"users"`
	}{plain: (*plain)(b)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	b.Users = make([]models.User, len(aux.Users))
	for i, u := range aux.Users {
		b.Users[i] = u.User
		b.Users[i].PasswordHash = u.PasswordHash
	}
	return nil
}

// BackupService handles database backup and restore operations
type BackupService struct {
	Deps
}

// NewBackupService creates a new backup service
func NewBackupService(deps Deps) *BackupService {
	return &BackupService{Deps: deps}
}

// Collect reads everything that is exported
func (s *BackupService) Collect(ctx context.Context) (*BackupData, error) {
	backup := &BackupData{
		Version:      BackupVersion,
		ExportedAt:   s.now().UTC(),
		DatabaseType: s.DB.GetDialect().Name(),
	}

	users := repository.NewUserRepository(s.DB)
	list, err := users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to export users: %w", err)
	}
	backup.Users = list

	cards := repository.NewFlashcardRepository(s.DB)
	goals := repository.NewGoalRepository(s.DB)
	for _, u := range list {
		userCards, err := cards.ListByUser(ctx, u.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to export flashcards: %w", err)
		}
		for i := range userCards {
			// Summaries are not exported, so the link cannot be restored
			userCards[i].SummaryID = nil
		}
		backup.Flashcards = append(backup.Flashcards, userCards...)

		reviews, err := cards.ListReviews(ctx, u.ID, time.Time{})
		if err != nil {
			return nil, fmt.Errorf("failed to export reviews: %w", err)
		}
		backup.Reviews = append(backup.Reviews, reviews...)

		userGoals, err := goals.ListByUser(ctx, u.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to export goals: %w", err)
		}
		backup.Goals = append(backup.Goals, userGoals...)

		events, err := users.ListXPEvents(ctx, u.ID, time.Time{})
		if err != nil {
			return nil, fmt.Errorf("failed to export xp events: %w", err)
		}
		backup.XPEvents = append(backup.XPEvents, events...)
	}

	earned, err := repository.NewBadgeRepository(s.DB).ListEarned(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to export badges: %w", err)
	}
	backup.Badges = earned
	return backup, nil
}

// ExportToWriter writes a JSON backup to w
func (s *BackupService) ExportToWriter(ctx context.Context, w io.Writer) (*BackupData, error) {
	backup, err := s.Collect(ctx)
	if err != nil {
		return nil, err
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(backup); err != nil {
		return nil, fmt.Errorf("failed to encode backup: %w", err)
	}

	s.logger().Info("database exported",
		zap.Int("users", len(backup.Users)),
		zap.Int("flashcards", len(backup.Flashcards)),
		zap.Int("reviews", len(backup.Reviews)),
		zap.Int("goals", len(backup.Goals)),
		zap.Int("xp_events", len(backup.XPEvents)),
		zap.Int("badges", len(backup.Badges)))
	return backup, nil
}

// Export creates a complete backup of the database to a file
func (s *BackupService) Export(ctx context.Context, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	if _, err := s.ExportToWriter(ctx, file); err != nil {
		return err
	}
	return file.Close()
}

// Import restores a database from a backup file
func (s *BackupService) Import(ctx context.Context, inputPath string) error {
	file, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf("failed to open input file: %w", err)
	}
	defer file.Close()

	return s.ImportFromReader(ctx, file)
}

// ImportFromReader restores a backup into the database in one transaction.
// Rows keep their exported ids, so the target should be freshly migrated.
func (s *BackupService) ImportFromReader(ctx context.Context, r io.Reader) error {
	var backup BackupData
	if err := json.NewDecoder(r).Decode(&backup); err != nil {
		return fmt.Errorf("failed to decode backup: %w", err)
	}
	if backup.Version != BackupVersion {
		return fmt.Errorf("unsupported backup version %q", backup.Version)
	}

	err := s.DB.WithTx(ctx, func(tx *database.Tx) error {
		users := repository.NewUserRepository(tx)
		for i := range backup.Users {
			if err := users.Restore(ctx, &backup.Users[i]); err != nil {
				return err
			}
		}
		cards := repository.NewFlashcardRepository(tx)
		for i := range backup.Flashcards {
			if err := cards.Restore(ctx, &backup.Flashcards[i]); err != nil {
				return err
			}
		}
		for i := range backup.Reviews {
			if err := cards.RestoreReview(ctx, &backup.Reviews[i]); err != nil {
				return err
			}
		}
		goals := repository.NewGoalRepository(tx)
		for i := range backup.Goals {
			if err := goals.Restore(ctx, &backup.Goals[i]); err != nil {
				return err
			}
		}
		for i := range backup.XPEvents {
			if err := users.RestoreXPEvent(ctx, &backup.XPEvents[i]); err != nil {
				return err
			}
		}
		badges := repository.NewBadgeRepository(tx)
		for _, e := range backup.Badges {
			if err := badges.RestoreEarned(ctx, e); err != nil {
				return err
			}
		}
		return resetSequences(ctx, tx, "users", "flashcards", "flashcard_reviews", "daily_goals")
	})
	if err != nil {
		return fmt.Errorf("failed to import backup: %w", err)
	}

	s.logger().Info("database imported",
		zap.String("version", backup.Version),
		zap.Time("exported_at", backup.ExportedAt),
		zap.Int("users", len(backup.Users)))
	return nil
}

// userTables lists every table holding user data, children before parents
var userTables = []string{
	"generation_events",
	"user_badges",
	"xp_events",
	"chat_messages",
	"mentor_messages",
	"weak_points",
	"quiz_attempts",
	"quizzes",
	"study_tasks",
	"study_plans",
	"flashcard_reviews",
	"flashcards",
	"summaries",
	"documents",
	"focus_sessions",
	"daily_goals",
	"users",
}

// Clear deletes all user data, keeping the schema and the badge catalog
func (s *BackupService) Clear(ctx context.Context) error {
	err := s.DB.WithTx(ctx, func(tx *database.Tx) error {
		for _, table := range userTables {
			if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
				return fmt.Errorf("failed to clear %s: %w", table, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.logger().Warn("all user data cleared")
	return nil
}

// resetSequences moves id sequences past restored rows where the dialect
// keeps them separately from the table
func resetSequences(ctx context.Context, tx *database.Tx, tables ...string) error {
	for _, table := range tables {
		query := tx.GetDialect().ResetSequence(table)
		if query == "" {
			continue
		}
		if _, err := tx.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to reset %s sequence: %w", table, err)
		}
	}
	return nil
}
