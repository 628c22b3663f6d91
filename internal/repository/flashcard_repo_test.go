package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mentormind/internal/models"
	"mentormind/internal/progression"
)

func newCard(userID int64, front string, due progression.Date) *models.Flashcard {
	state := progression.NewSchedulingState()
	return &models.Flashcard{
		UserID:       userID,
		DeckName:     models.DefaultDeck,
		Front:        front,
		Back:         "back of " + front,
		Repetitions:  state.Repetitions,
		EaseFactor:   state.EaseFactor,
		IntervalDays: state.IntervalDays,
		NextReview:   due,
		CreatedAt:    testNow,
	}
}

func TestFlashcardRepositoryDueAndSchedule(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := NewFlashcardRepository(db)
	user := createUser(t, db, "ana")
	today := progression.NewDate(2024, 3, 10)

	overdue := newCard(user.ID, "overdue", today.AddDays(-2))
	dueToday := newCard(user.ID, "today", today)
	later := newCard(user.ID, "later", today.AddDays(3))
	for _, c := range []*models.Flashcard{later, dueToday, overdue} {
		require.NoError(t, repo.Create(ctx, c))
	}

	due, err := repo.ListDue(ctx, user.ID, today, 10)
	require.NoError(t, err)
	require.Len(t, due, 2)
	assert.Equal(t, "overdue", due[0].Front)
	assert.Equal(t, "today", due[1].Front)

	n, err := repo.CountDue(ctx, user.ID, today)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	next := progression.SchedulingState{Repetitions: 1, EaseFactor: 2.6, IntervalDays: 1}
	require.NoError(t, repo.UpdateSchedule(ctx, dueToday.ID, next, today.AddDays(1), today))

	got, err := repo.GetForUser(ctx, dueToday.ID, user.ID)
	require.NoError(t, err)
	assert.Equal(t, next, got.State())
	assert.True(t, got.NextReview.Equal(today.AddDays(1)))
	assert.True(t, got.LastReviewed.Equal(today))
	assert.False(t, got.IsDue(today))
}

func TestFlashcardRepositoryOwnership(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := NewFlashcardRepository(db)
	owner := createUser(t, db, "owner")
	other := createUser(t, db, "other")

	card := newCard(owner.ID, "mine", progression.NewDate(2024, 3, 10))
	require.NoError(t, repo.Create(ctx, card))

	_, err := repo.GetForUser(ctx, card.ID, other.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	err = repo.UpdateSchedule(ctx, 9999, progression.NewSchedulingState(), progression.NewDate(2024, 3, 11), progression.NewDate(2024, 3, 10))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFlashcardRepositoryPerformance(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := NewFlashcardRepository(db)
	user := createUser(t, db, "bo")
	card := newCard(user.ID, "q", progression.NewDate(2024, 3, 10))
	require.NoError(t, repo.Create(ctx, card))

	empty, err := repo.Performance(ctx, user.ID, testNow.AddDate(0, 0, -7))
	require.NoError(t, err)
	assert.Equal(t, 0, empty.Reviews)
	assert.Equal(t, 0.0, empty.SuccessRate())

	for i, q := range []int{5, 4, 1, 3} {
		review := &models.FlashcardReview{
			FlashcardID: card.ID, UserID: user.ID, Quality: q,
			PrevInterval: 1, PrevEase: 2.5, NewInterval: 1, NewEase: 2.5,
			ReviewedAt: testNow.Add(timeStep(i)),
		}
		require.NoError(t, repo.AppendReview(ctx, review))
		assert.NotZero(t, review.ID)
	}

	perf, err := repo.Performance(ctx, user.ID, testNow.AddDate(0, 0, -7))
	require.NoError(t, err)
	assert.Equal(t, 4, perf.Reviews)
	assert.Equal(t, 3, perf.Successful)
	assert.InDelta(t, 3.25, perf.AverageQuality, 1e-9)
	assert.InDelta(t, 75.0, perf.SuccessRate(), 1e-9)

	n, err := repo.CountReviewsForCard(ctx, card.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
}
