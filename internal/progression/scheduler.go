package progression

import (
	"errors"
	"math"
)

const (
	DefaultEaseFactor = 2.5
	MinEaseFactor     = 1.3
	PassingQuality    = 3
	MaxQuality        = 5
)

var ErrInvalidQuality = errors.New("review quality must be between 0 and 5")

// SchedulingState is the SM-2 memory model of a single flashcard
type SchedulingState struct {
	Repetitions  int     `json:"repetitions"`
	EaseFactor   float64 `json:"ease_factor"`
	IntervalDays int     `json:"interval_days"`
}

// NewSchedulingState returns the state of a freshly created card
func NewSchedulingState() SchedulingState {
	return SchedulingState{Repetitions: 0, EaseFactor: DefaultEaseFactor, IntervalDays: 1}
}

// ValidateQuality checks a self-graded recall quality
func ValidateQuality(quality int) error {
	if quality < 0 || quality > MaxQuality {
		return ErrInvalidQuality
	}
	return nil
}

// IsSuccessfulRecall reports whether quality counts as a correct answer
func IsSuccessfulRecall(quality int) bool {
	return quality >= PassingQuality
}

// healed repairs values that can only come from bad stored data
func (s SchedulingState) healed() SchedulingState {
	if math.IsNaN(s.EaseFactor) || s.EaseFactor < MinEaseFactor {
		s.EaseFactor = MinEaseFactor
	}
	if s.IntervalDays < 1 {
		s.IntervalDays = 1
	}
	if s.Repetitions < 0 {
		s.Repetitions = 0
	}
	return s
}

// Schedule applies one review of the given quality to prev and returns the
// new state. The interval of a mature card grows by the ease factor the card
// had before this review.
func Schedule(quality int, prev SchedulingState) (SchedulingState, error) {
	if err := ValidateQuality(quality); err != nil {
		return SchedulingState{}, err
	}

	prev = prev.healed()
	next := prev

	if !IsSuccessfulRecall(quality) {
		next.Repetitions = 0
		next.IntervalDays = 1
	} else {
		switch prev.Repetitions {
		case 0:
			next.IntervalDays = 1
		case 1:
			next.IntervalDays = 6
		default:
			next.IntervalDays = int(math.Floor(float64(prev.IntervalDays) * prev.EaseFactor))
		}
		next.Repetitions = prev.Repetitions + 1
	}

	miss := float64(MaxQuality - quality)
	next.EaseFactor = prev.EaseFactor + (0.1 - miss*(0.08+miss*0.02))
	if next.EaseFactor < MinEaseFactor {
		next.EaseFactor = MinEaseFactor
	}
	if next.IntervalDays < 1 {
		next.IntervalDays = 1
	}

	return next, nil
}

// NextReview returns the day the card becomes due again
func (s SchedulingState) NextReview(today Date) Date {
	return today.AddDays(s.IntervalDays)
}
