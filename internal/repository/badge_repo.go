package repository

import (
	"context"
	"fmt"
	"time"

	"mentormind/internal/database"
	"mentormind/internal/models"
	"mentormind/internal/progression"
)

const badgeColumns = "id, name, description, icon, xp_reward, requirement_type, requirement_value"

// BadgeRepository handles the badge catalog and earned badges
type BadgeRepository struct {
	db database.DBTX
}

// NewBadgeRepository creates a new badge repository
func NewBadgeRepository(db database.DBTX) *BadgeRepository {
	return &BadgeRepository{db: db}
}

// Seed inserts catalog rules that are not stored yet and returns how many were added
func (r *BadgeRepository) Seed(ctx context.Context, rules []progression.BadgeRule) (int, error) {
	query := r.db.GetDialect().InsertIgnore("badges",
		[]string{"name", "description", "icon", "xp_reward", "requirement_type", "requirement_value"})

	added := 0
	for _, rule := range rules {
		result, err := r.db.ExecContext(ctx, query, rule.Name, rule.Description, rule.Icon, rule.XPReward,
			string(rule.Requirement), rule.Threshold)
		if err != nil {
			return added, fmt.Errorf("failed to seed badge %q: %w", rule.Name, err)
		}
		if n, err := result.RowsAffected(); err == nil && n > 0 {
			added++
		}
	}
	return added, nil
}

// List returns the stored catalog
func (r *BadgeRepository) List(ctx context.Context) ([]models.Badge, error) {
	var badges []models.Badge
	if err := r.db.SelectContext(ctx, &badges, "SELECT "+badgeColumns+" FROM badges ORDER BY id"); err != nil {
		return nil, fmt.Errorf("failed to list badges: %w", err)
	}
	return badges, nil
}

// EarnedIDs returns the set of badge IDs a user holds
func (r *BadgeRepository) EarnedIDs(ctx context.Context, userID int64) (map[int64]bool, error) {
	var ids []int64
	if err := r.db.SelectContext(ctx, &ids, "SELECT badge_id FROM user_badges WHERE user_id = ?", userID); err != nil {
		return nil, fmt.Errorf("failed to list earned badges: %w", err)
	}
	earned := make(map[int64]bool, len(ids))
	for _, id := range ids {
		earned[id] = true
	}
	return earned, nil
}

// Award gives a badge to a user. It reports false if the user already had it.
func (r *BadgeRepository) Award(ctx context.Context, userID, badgeID int64, at time.Time) (bool, error) {
	query := r.db.GetDialect().InsertIgnore("user_badges", []string{"user_id", "badge_id", "earned_at"})
	result, err := r.db.ExecContext(ctx, query, userID, badgeID, at.UTC())
	if err != nil {
		return false, fmt.Errorf("failed to award badge %d: %w", badgeID, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to award badge %d: %w", badgeID, err)
	}
	return n > 0, nil
}

// ListWithStatus returns the whole catalog marked with the user's earned dates
func (r *BadgeRepository) ListWithStatus(ctx context.Context, userID int64) ([]models.BadgeStatus, error) {
	query := `
		SELECT b.id, b.name, b.description, b.icon, b.xp_reward, b.requirement_type, b.requirement_value,
		       ub.earned_at
		FROM badges b
		LEFT JOIN user_badges ub ON ub.badge_id = b.id AND ub.user_id = ?
		ORDER BY b.id
	`
	var badges []models.BadgeStatus
	if err := r.db.SelectContext(ctx, &badges, query, userID); err != nil {
		return nil, fmt.Errorf("failed to list badge status: %w", err)
	}
	return badges, nil
}

// AchievementStats loads the counters badge rules are evaluated against
func (r *BadgeRepository) AchievementStats(ctx context.Context, userID int64) (progression.AchievementStats, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM focus_sessions WHERE user_id = u.id) AS focus_sessions,
			(SELECT COUNT(*) FROM documents WHERE user_id = u.id) AS documents,
			(SELECT COUNT(*) FROM flashcard_reviews WHERE user_id = u.id) AS flashcard_reviews,
			(SELECT COUNT(*) FROM summaries WHERE user_id = u.id) AS summaries,
			u.streak_days,
			u.level
		FROM users u
		WHERE u.id = ?
	`
	var stats progression.AchievementStats
	if err := r.db.GetContext(ctx, &stats, query, userID); err != nil {
		return stats, wrapNotFound(err, "failed to load achievement stats for user %d", userID)
	}
	return stats, nil
}

// EarnedBadge is an export row of user_badges keyed by badge name
type EarnedBadge struct {
	UserID   int64     `db:"user_id" json:"user_id"`
	Name     string    `db:"name" json:"name"`
	EarnedAt time.Time `db:"earned_at" json:"earned_at"`
}

// ListEarned returns every awarded badge
func (r *BadgeRepository) ListEarned(ctx context.Context) ([]EarnedBadge, error) {
	query := `
		SELECT ub.user_id, b.name, ub.earned_at
		FROM user_badges ub
		JOIN badges b ON b.id = ub.badge_id
		ORDER BY ub.user_id, ub.earned_at
	`
	var earned []EarnedBadge
	if err := r.db.SelectContext(ctx, &earned, query); err != nil {
		return nil, fmt.Errorf("failed to list earned badges: %w", err)
	}
	return earned, nil
}

// RestoreEarned awards a badge identified by name
func (r *BadgeRepository) RestoreEarned(ctx context.Context, e EarnedBadge) error {
	var badgeID int64
	err := r.db.GetContext(ctx, &badgeID, "SELECT id FROM badges WHERE name = ?", e.Name)
	if err != nil {
		return wrapNotFound(err, "failed to find badge %q", e.Name)
	}
	_, err = r.Award(ctx, e.UserID, badgeID, e.EarnedAt)
	return err
}
