package models

import "time"

// QuizQuestion is a multiple-choice question; Correct indexes Options
type QuizQuestion struct {
	Question    string   `json:"question"`
	Options     []string `json:"options"`
	Correct     int      `json:"correct"`
	Explanation string   `json:"explanation"`
}

// Quiz is a generated set of questions on a subject
type Quiz struct {
	ID             int64        `db:"id" json:"id"`
	UserID         int64        `db:"user_id" json:"user_id"`
	Title          string       `db:"title" json:"title"`
	Subject        string       `db:"subject" json:"subject"`
	Questions      QuestionList `db:"questions" json:"questions"`
	TotalQuestions int          `db:"total_questions" json:"total_questions"`
	CreatedAt      time.Time    `db:"created_at" json:"created_at"`
}

// QuizAttempt is a graded submission. Unanswered questions hold -1.
type QuizAttempt struct {
	ID               int64     `db:"id" json:"id"`
	QuizID           int64     `db:"quiz_id" json:"quiz_id"`
	UserID           int64     `db:"user_id" json:"user_id"`
	Answers          IntList   `db:"answers" json:"answers"`
	Score            int       `db:"score" json:"score"`
	Total            int       `db:"total" json:"total"`
	TimeSpentSeconds int       `db:"time_spent_seconds" json:"time_spent_seconds"`
	CompletedAt      time.Time `db:"completed_at" json:"completed_at"`
}

// QuestionResult is the grading of one answer
type QuestionResult struct {
	Question    string `json:"question"`
	UserAnswer  int    `json:"user_answer"`
	Correct     int    `json:"correct"`
	IsCorrect   bool   `json:"is_correct"`
	Explanation string `json:"explanation"`
}

// WeakPoint is a topic the user keeps getting wrong
type WeakPoint struct {
	ID          int64     `db:"id" json:"id"`
	UserID      int64     `db:"user_id" json:"user_id"`
	Subject     string    `db:"subject" json:"subject"`
	Topic       string    `db:"topic" json:"topic"`
	ErrorCount  int       `db:"error_count" json:"error_count"`
	LastErrorAt time.Time `db:"last_error_at" json:"last_error_at"`
}

// SubjectWeakness aggregates weak points per subject
type SubjectWeakness struct {
	Subject     string `db:"subject" json:"subject"`
	Topics      int    `db:"topics" json:"topics"`
	TotalErrors int    `db:"total_errors" json:"total_errors"`
}
