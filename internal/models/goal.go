package models

import "mentormind/internal/progression"

// DailyGoal holds a user's targets and achievements for one day
type DailyGoal struct {
	ID                   int64            `db:"id" json:"id"`
	UserID               int64            `db:"user_id" json:"user_id"`
	Date                 progression.Date `db:"date" json:"date"`
	FocusGoalMinutes     int              `db:"focus_goal_minutes" json:"focus_goal_minutes"`
	FocusAchievedMinutes int              `db:"focus_achieved_minutes" json:"focus_achieved_minutes"`
	FlashcardsGoal       int              `db:"flashcards_goal" json:"flashcards_goal"`
	FlashcardsDone       int              `db:"flashcards_done" json:"flashcards_done"`
	TasksGoal            int              `db:"tasks_goal" json:"tasks_goal"`
	TasksDone            int              `db:"tasks_done" json:"tasks_done"`
}

// Achieved returns the achieved counter of field
func (g *DailyGoal) Achieved(field progression.GoalField) int {
	switch field {
	case progression.GoalFocusMinutes:
		return g.FocusAchievedMinutes
	case progression.GoalFlashcards:
		return g.FlashcardsDone
	case progression.GoalTasks:
		return g.TasksDone
	}
	return 0
}

// Target returns the daily target of field
func (g *DailyGoal) Target(field progression.GoalField) int {
	switch field {
	case progression.GoalFocusMinutes:
		return g.FocusGoalMinutes
	case progression.GoalFlashcards:
		return g.FlashcardsGoal
	case progression.GoalTasks:
		return g.TasksGoal
	}
	return 0
}

// Met reports whether every target of the day was reached
func (g *DailyGoal) Met() bool {
	for _, f := range progression.GoalFields {
		if g.Achieved(f) < g.Target(f) {
			return false
		}
	}
	return true
}
