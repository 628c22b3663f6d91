package models

import (
	"time"

	"mentormind/internal/progression"
)

// Badge is a stored badge rule
type Badge struct {
	ID int64 `db:"id" json:"id"`
	progression.BadgeRule
}

// BadgeStatus is a badge together with whether, and when, a user earned it
type BadgeStatus struct {
	Badge
	EarnedAt *time.Time `db:"earned_at" json:"earned_at,omitempty"`
}

// Earned reports whether the badge was awarded
func (b BadgeStatus) Earned() bool {
	return b.EarnedAt != nil
}
