package progression

import (
	"errors"
	"fmt"
)

// GoalField names one of the counters of a daily goal record
type GoalField string

const (
	GoalFocusMinutes GoalField = "focus_minutes"
	GoalFlashcards   GoalField = "flashcards"
	GoalTasks        GoalField = "tasks"
)

// Daily targets of a new goal record
const (
	DefaultFocusGoalMinutes = 60
	DefaultFlashcardsGoal   = 10
	DefaultTasksGoal        = 3
)

var (
	ErrInvalidGoalField = errors.New("unknown daily goal field")
	ErrNegativeDelta    = errors.New("goal increment must not be negative")
)

// GoalFields lists every valid field in display order
var GoalFields = []GoalField{GoalFocusMinutes, GoalFlashcards, GoalTasks}

// ParseGoalField validates a field name
func ParseGoalField(s string) (GoalField, error) {
	f := GoalField(s)
	if err := f.Validate(); err != nil {
		return "", err
	}
	return f, nil
}

// Validate reports ErrInvalidGoalField for unknown fields
func (f GoalField) Validate() error {
	switch f {
	case GoalFocusMinutes, GoalFlashcards, GoalTasks:
		return nil
	}
	return fmt.Errorf("%w: %q", ErrInvalidGoalField, string(f))
}

// AchievedColumn returns the storage column holding the achieved counter.
// Only whitelisted names ever reach SQL.
func (f GoalField) AchievedColumn() string {
	switch f {
	case GoalFocusMinutes:
		return "focus_achieved_minutes"
	case GoalFlashcards:
		return "flashcards_done"
	case GoalTasks:
		return "tasks_done"
	}
	return ""
}

// ValidateIncrement checks the arguments of a goal accumulation
func ValidateIncrement(field GoalField, delta int) error {
	if err := field.Validate(); err != nil {
		return err
	}
	if delta < 0 {
		return ErrNegativeDelta
	}
	return nil
}
