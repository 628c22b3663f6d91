package models

import (
	"time"

	"mentormind/internal/progression"
)

// User is a student account together with its progression state
type User struct {
	ID                int64            `db:"id" json:"id"`
	Username          string           `db:"username" json:"username"`
	Email             string           `db:"email" json:"email"`
	PasswordHash      string           `db:"password_hash" json:"-"`
	Name              string           `db:"name" json:"name"`
	XP                int              `db:"xp" json:"xp"`
	Level             int              `db:"level" json:"level"`
	TotalFocusMinutes int              `db:"total_focus_minutes" json:"total_focus_minutes"`
	StreakDays        int              `db:"streak_days" json:"streak_days"`
	LastStudyDate     progression.Date `db:"last_study_date" json:"last_study_date"`
	TelegramChatID    int64            `db:"telegram_chat_id" json:"telegram_chat_id,omitempty"`
	RemindersEnabled  bool             `db:"reminders_enabled" json:"reminders_enabled"`
	CreatedAt         time.Time        `db:"created_at" json:"created_at"`
}

// Progress returns the user's position on the leveling curve
func (u *User) Progress() progression.LevelProgress {
	p, err := progression.LevelOf(u.XP)
	if err != nil {
		return progression.LevelProgress{Level: 1, XPForNext: progression.BaseLevelXP}
	}
	return p
}

// XPEvent is one entry of the append-only XP ledger
type XPEvent struct {
	ID        string               `db:"id" json:"id"`
	UserID    int64                `db:"user_id" json:"user_id"`
	Source    progression.XPSource `db:"source" json:"source"`
	Amount    int                  `db:"amount" json:"amount"`
	CreatedAt time.Time            `db:"created_at" json:"created_at"`
}

// RankingEntry is one row of the XP leaderboard
type RankingEntry struct {
	Position   int    `db:"-" json:"position"`
	UserID     int64  `db:"id" json:"user_id"`
	Name       string `db:"name" json:"name"`
	XP         int    `db:"xp" json:"xp"`
	Level      int    `db:"level" json:"level"`
	StreakDays int    `db:"streak_days" json:"streak_days"`
}

// FocusRankingEntry is one row of the weekly focus leaderboard
type FocusRankingEntry struct {
	Position int    `db:"-" json:"position"`
	UserID   int64  `db:"id" json:"user_id"`
	Name     string `db:"name" json:"name"`
	Minutes  int    `db:"minutes" json:"minutes"`
}
