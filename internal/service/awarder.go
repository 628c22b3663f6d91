package service

import (
	"context"
	"fmt"
	"time"

	"mentormind/internal/database"
	"mentormind/internal/models"
	"mentormind/internal/progression"
	"mentormind/internal/repository"
)

// Outcome reports the effects of one progression event
type Outcome struct {
	XPEarned   int                       `json:"xp_earned"`
	TotalXP    int                       `json:"total_xp"`
	Progress   progression.LevelProgress `json:"progress"`
	LeveledUp  bool                      `json:"leveled_up"`
	Streak     int                       `json:"streak,omitempty"`
	NextReview progression.Date          `json:"next_review,omitempty"`
	Goal       *models.DailyGoal         `json:"goal,omitempty"`
	NewBadges  []models.Badge            `json:"new_badges,omitempty"`
}

// awarder grants XP inside a transaction, keeps the stored level in step
// with the total and appends every grant to the ledger
type awarder struct {
	userID     int64
	user       *models.User
	users      *repository.UserRepository
	badges     *repository.BadgeRepository
	at         time.Time
	startLevel int
	out        Outcome
}

func newAwarder(ctx context.Context, tx database.DBTX, userID int64, at time.Time) (*awarder, error) {
	users := repository.NewUserRepository(tx)
	user, err := users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	progress, err := progression.LevelOf(user.XP)
	if err != nil {
		return nil, fmt.Errorf("failed to read level of user %d: %w", userID, err)
	}
	return &awarder{
		userID:     userID,
		user:       user,
		users:      users,
		badges:     repository.NewBadgeRepository(tx),
		at:         at,
		startLevel: progress.Level,
		out: Outcome{
			TotalXP:  user.XP,
			Progress: progress,
		},
	}, nil
}

// grant adds amount XP from source. Zero grants touch nothing.
func (a *awarder) grant(ctx context.Context, source progression.XPSource, amount int) error {
	if amount < 0 {
		return fmt.Errorf("%w: %d", progression.ErrNegativeXP, amount)
	}
	if amount == 0 {
		return nil
	}

	total, err := a.users.AddXP(ctx, a.userID, amount)
	if err != nil {
		return err
	}
	progress, err := progression.LevelOf(total)
	if err != nil {
		return fmt.Errorf("failed to compute level: %w", err)
	}
	if err := a.users.SetLevel(ctx, a.userID, progress.Level); err != nil {
		return err
	}
	if _, err := a.users.RecordXPEvent(ctx, a.userID, source, amount, a.at); err != nil {
		return err
	}

	a.out.XPEarned += amount
	a.out.TotalXP = total
	a.out.Progress = progress
	return nil
}

// settle awards every badge whose rule is now satisfied. Badge rewards can
// raise the level, which can satisfy further rules, so it repeats until a
// pass adds nothing. Each pass adds at least one badge from a finite
// catalog, so the loop ends.
func (a *awarder) settle(ctx context.Context) error {
	catalog, err := a.badges.List(ctx)
	if err != nil {
		return err
	}
	earned, err := a.badges.EarnedIDs(ctx, a.userID)
	if err != nil {
		return err
	}

	for {
		stats, err := a.badges.AchievementStats(ctx, a.userID)
		if err != nil {
			return err
		}

		added := false
		for _, badge := range catalog {
			if earned[badge.ID] || !badge.Satisfied(stats) {
				continue
			}
			ok, err := a.badges.Award(ctx, a.userID, badge.ID, a.at)
			if err != nil {
				return err
			}
			earned[badge.ID] = true
			if !ok {
				continue
			}
			added = true
			a.out.NewBadges = append(a.out.NewBadges, badge)
			if err := a.grant(ctx, progression.SourceBadge, badge.XPReward); err != nil {
				return err
			}
		}
		if !added {
			return nil
		}
	}
}

func (a *awarder) outcome() *Outcome {
	out := a.out
	out.LeveledUp = out.Progress.Level > a.startLevel
	return &out
}
