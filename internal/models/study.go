package models

import (
	"time"

	"mentormind/internal/progression"
)

// FocusSession is a completed block of focused study time
type FocusSession struct {
	ID              int64            `db:"id" json:"id"`
	UserID          int64            `db:"user_id" json:"user_id"`
	DurationMinutes int              `db:"duration_minutes" json:"duration_minutes"`
	SessionType     string           `db:"session_type" json:"session_type"`
	SessionDate     progression.Date `db:"session_date" json:"session_date"`
	XPEarned        int              `db:"xp_earned" json:"xp_earned"`
	CompletedAt     time.Time        `db:"completed_at" json:"completed_at"`
}

// DayTotal is an aggregate for one calendar day
type DayTotal struct {
	Date  progression.Date `db:"day" json:"date"`
	Total int              `db:"total" json:"total"`
}

// Document is study material whose text was extracted before registration
type Document struct {
	ID           int64     `db:"id" json:"id"`
	UserID       int64     `db:"user_id" json:"user_id"`
	OriginalName string    `db:"original_name" json:"original_name"`
	Subject      string    `db:"subject" json:"subject"`
	ContentText  string    `db:"content_text" json:"-"`
	PageCount    int       `db:"page_count" json:"page_count"`
	UploadedAt   time.Time `db:"uploaded_at" json:"uploaded_at"`
}

// Summary is an AI-generated digest of a text
type Summary struct {
	ID           int64      `db:"id" json:"id"`
	UserID       int64      `db:"user_id" json:"user_id"`
	DocumentID   *int64     `db:"document_id" json:"document_id,omitempty"`
	Title        string     `db:"title" json:"title"`
	OriginalText string     `db:"original_text" json:"-"`
	ShortSummary string     `db:"short_summary" json:"short_summary"`
	FullSummary  string     `db:"full_summary" json:"full_summary"`
	Topics       StringList `db:"topics" json:"topics"`
	MindMap      string     `db:"mind_map" json:"mind_map"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
}

// StudyPlan groups scheduled tasks toward an objective
type StudyPlan struct {
	ID         int64            `db:"id" json:"id"`
	UserID     int64            `db:"user_id" json:"user_id"`
	Title      string           `db:"title" json:"title"`
	Objective  string           `db:"objective" json:"objective"`
	DailyHours float64          `db:"daily_hours" json:"daily_hours"`
	Deadline   progression.Date `db:"deadline" json:"deadline"`
	Subjects   StringList       `db:"subjects" json:"subjects"`
	IsActive   bool             `db:"is_active" json:"is_active"`
	CreatedAt  time.Time        `db:"created_at" json:"created_at"`
}

// StudyTask is one scheduled piece of work, optionally part of a plan
type StudyTask struct {
	ID              int64            `db:"id" json:"id"`
	PlanID          *int64           `db:"plan_id" json:"plan_id,omitempty"`
	UserID          int64            `db:"user_id" json:"user_id"`
	Title           string           `db:"title" json:"title"`
	Subject         string           `db:"subject" json:"subject"`
	Description     string           `db:"description" json:"description"`
	ScheduledDate   progression.Date `db:"scheduled_date" json:"scheduled_date"`
	DurationMinutes int              `db:"duration_minutes" json:"duration_minutes"`
	Priority        int              `db:"priority" json:"priority"`
	IsCompleted     bool             `db:"is_completed" json:"is_completed"`
	CompletedAt     *time.Time       `db:"completed_at" json:"completed_at,omitempty"`
}
