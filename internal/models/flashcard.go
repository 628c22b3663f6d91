package models

import (
	"time"

	"mentormind/internal/progression"
)

// DefaultDeck is used when a flashcard is created without a deck name
const DefaultDeck = "General"

// Flashcard is a front/back card with its spaced-repetition state
type Flashcard struct {
	ID           int64            `db:"id" json:"id"`
	UserID       int64            `db:"user_id" json:"user_id"`
	SummaryID    *int64           `db:"summary_id" json:"summary_id,omitempty"`
	DeckName     string           `db:"deck_name" json:"deck_name"`
	Front        string           `db:"front" json:"front"`
	Back         string           `db:"back" json:"back"`
	Repetitions  int              `db:"repetitions" json:"repetitions"`
	EaseFactor   float64          `db:"ease_factor" json:"ease_factor"`
	IntervalDays int              `db:"interval_days" json:"interval_days"`
	NextReview   progression.Date `db:"next_review" json:"next_review"`
	LastReviewed progression.Date `db:"last_reviewed" json:"last_reviewed"`
	CreatedAt    time.Time        `db:"created_at" json:"created_at"`
}

// State returns the scheduling state stored on the card
func (f *Flashcard) State() progression.SchedulingState {
	return progression.SchedulingState{
		Repetitions:  f.Repetitions,
		EaseFactor:   f.EaseFactor,
		IntervalDays: f.IntervalDays,
	}
}

// IsDue reports whether the card should be reviewed on day
func (f *Flashcard) IsDue(day progression.Date) bool {
	return !f.NextReview.After(day)
}

// FlashcardReview records one scheduling mutation
type FlashcardReview struct {
	ID           int64     `db:"id" json:"id"`
	FlashcardID  int64     `db:"flashcard_id" json:"flashcard_id"`
	UserID       int64     `db:"user_id" json:"user_id"`
	Quality      int       `db:"quality" json:"quality"`
	PrevInterval int       `db:"prev_interval" json:"prev_interval"`
	PrevEase     float64   `db:"prev_ease" json:"prev_ease"`
	NewInterval  int       `db:"new_interval" json:"new_interval"`
	NewEase      float64   `db:"new_ease" json:"new_ease"`
	ReviewedAt   time.Time `db:"reviewed_at" json:"reviewed_at"`
}

// ReviewPerformance summarizes review events over a period
type ReviewPerformance struct {
	Reviews        int     `db:"reviews" json:"reviews"`
	Successful     int     `db:"successful" json:"successful"`
	AverageQuality float64 `db:"average_quality" json:"average_quality"`
}

// SuccessRate returns the percentage of successful recalls
func (p ReviewPerformance) SuccessRate() float64 {
	if p.Reviews == 0 {
		return 0
	}
	return float64(p.Successful) * 100 / float64(p.Reviews)
}
