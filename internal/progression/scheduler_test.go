package progression

import (
	"errors"
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestSchedule(t *testing.T) {
	tests := []struct {
		name    string
		quality int
		prev    SchedulingState
		want    SchedulingState
	}{
		{
			name:    "first perfect review",
			quality: 5,
			prev:    NewSchedulingState(),
			want:    SchedulingState{Repetitions: 1, EaseFactor: 2.6, IntervalDays: 1},
		},
		{
			name:    "second perfect review",
			quality: 5,
			prev:    SchedulingState{Repetitions: 1, EaseFactor: 2.6, IntervalDays: 1},
			want:    SchedulingState{Repetitions: 2, EaseFactor: 2.7, IntervalDays: 6},
		},
		{
			name:    "mature card uses ease before update",
			quality: 5,
			prev:    SchedulingState{Repetitions: 2, EaseFactor: 2.7, IntervalDays: 6},
			want:    SchedulingState{Repetitions: 3, EaseFactor: 2.8, IntervalDays: 16},
		},
		{
			name:    "hesitant recall lowers ease",
			quality: 3,
			prev:    SchedulingState{Repetitions: 2, EaseFactor: 2.5, IntervalDays: 6},
			want:    SchedulingState{Repetitions: 3, EaseFactor: 2.36, IntervalDays: 15},
		},
		{
			name:    "quality four keeps ease",
			quality: 4,
			prev:    NewSchedulingState(),
			want:    SchedulingState{Repetitions: 1, EaseFactor: 2.5, IntervalDays: 1},
		},
		{
			name:    "difficult recall resets a mature card",
			quality: 2,
			prev:    SchedulingState{Repetitions: 5, EaseFactor: 2.0, IntervalDays: 10},
			want:    SchedulingState{Repetitions: 0, EaseFactor: 1.68, IntervalDays: 1},
		},
		{
			name:    "blackout resets",
			quality: 0,
			prev:    SchedulingState{Repetitions: 4, EaseFactor: 2.5, IntervalDays: 40},
			want:    SchedulingState{Repetitions: 0, EaseFactor: 1.7, IntervalDays: 1},
		},
		{
			name:    "failure floors ease",
			quality: 0,
			prev:    SchedulingState{Repetitions: 3, EaseFactor: 1.35, IntervalDays: 10},
			want:    SchedulingState{Repetitions: 0, EaseFactor: 1.3, IntervalDays: 1},
		},
		{
			name:    "corrupt ease is healed",
			quality: 4,
			prev:    SchedulingState{Repetitions: 2, EaseFactor: 0.5, IntervalDays: 10},
			want:    SchedulingState{Repetitions: 3, EaseFactor: 1.3, IntervalDays: 13},
		},
		{
			name:    "corrupt interval is healed",
			quality: 5,
			prev:    SchedulingState{Repetitions: 3, EaseFactor: 2.5, IntervalDays: 0},
			want:    SchedulingState{Repetitions: 4, EaseFactor: 2.6, IntervalDays: 2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Schedule(tt.quality, tt.prev)
			if err != nil {
				t.Fatalf("Schedule() error = %v", err)
			}
			if got.Repetitions != tt.want.Repetitions || got.IntervalDays != tt.want.IntervalDays ||
				!almostEqual(got.EaseFactor, tt.want.EaseFactor) {
				t.Errorf("Schedule(%d, %+v) = %+v, want %+v", tt.quality, tt.prev, got, tt.want)
			}
		})
	}
}

func TestScheduleRejectsInvalidQuality(t *testing.T) {
	for _, q := range []int{-1, 6, 100} {
		if _, err := Schedule(q, NewSchedulingState()); !errors.Is(err, ErrInvalidQuality) {
			t.Errorf("Schedule(%d) error = %v, want %v", q, err, ErrInvalidQuality)
		}
	}
}

func TestScheduleInvariants(t *testing.T) {
	state := NewSchedulingState()
	qualities := []int{5, 4, 3, 0, 1, 2, 5, 5, 3, 0, 0, 0, 4, 5}
	for i, q := range qualities {
		next, err := Schedule(q, state)
		if err != nil {
			t.Fatalf("step %d: Schedule() error = %v", i, err)
		}
		if next.EaseFactor < MinEaseFactor {
			t.Fatalf("step %d: ease %v below floor", i, next.EaseFactor)
		}
		if next.IntervalDays < 1 {
			t.Fatalf("step %d: interval %d below 1", i, next.IntervalDays)
		}
		if q < PassingQuality && (next.Repetitions != 0 || next.IntervalDays != 1) {
			t.Fatalf("step %d: failed review did not reset: %+v", i, next)
		}
		if q >= PassingQuality && next.Repetitions != state.Repetitions+1 {
			t.Fatalf("step %d: repetitions = %d, want %d", i, next.Repetitions, state.Repetitions+1)
		}
		state = next
	}
}

func TestNextReview(t *testing.T) {
	today := NewDate(2024, 3, 10)
	s := SchedulingState{Repetitions: 2, EaseFactor: 2.5, IntervalDays: 6}
	if got, want := s.NextReview(today), NewDate(2024, 3, 16); !got.Equal(want) {
		t.Errorf("NextReview() = %v, want %v", got, want)
	}
}

func TestReviewXP(t *testing.T) {
	tests := []struct {
		quality int
		want    int
	}{
		{0, 2}, {2, 2}, {3, 5}, {5, 5},
	}
	for _, tt := range tests {
		if got := ReviewXP(tt.quality); got != tt.want {
			t.Errorf("ReviewXP(%d) = %d, want %d", tt.quality, got, tt.want)
		}
	}
}
