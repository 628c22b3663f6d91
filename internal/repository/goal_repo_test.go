package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"mentormind/internal/progression"
)

func TestGoalRepositoryAccumulate(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := NewGoalRepository(db)
	user := createUser(t, db, "ana")
	day := progression.NewDate(2024, 3, 10)

	goal, err := repo.Accumulate(ctx, user.ID, day, progression.GoalFocusMinutes, 25)
	require.NoError(t, err)
	assert.Equal(t, 25, goal.FocusAchievedMinutes)
	assert.Equal(t, progression.DefaultFocusGoalMinutes, goal.FocusGoalMinutes)
	assert.Equal(t, progression.DefaultFlashcardsGoal, goal.FlashcardsGoal)
	assert.Equal(t, progression.DefaultTasksGoal, goal.TasksGoal)

	goal, err = repo.Accumulate(ctx, user.ID, day, progression.GoalFocusMinutes, 25)
	require.NoError(t, err)
	assert.Equal(t, 50, goal.FocusAchievedMinutes)

	goal, err = repo.Accumulate(ctx, user.ID, day, progression.GoalTasks, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, goal.TasksDone)
	assert.Equal(t, 50, goal.FocusAchievedMinutes)

	other, err := repo.Accumulate(ctx, user.ID, day.AddDays(1), progression.GoalFlashcards, 1)
	require.NoError(t, err)
	assert.NotEqual(t, goal.ID, other.ID)
	assert.Equal(t, 0, other.FocusAchievedMinutes)
}

func TestGoalRepositoryRejectsInvalidInput(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := NewGoalRepository(db)
	user := createUser(t, db, "bo")
	day := progression.NewDate(2024, 3, 10)

	_, err := repo.Accumulate(ctx, user.ID, day, progression.GoalTasks, -1)
	assert.ErrorIs(t, err, progression.ErrNegativeDelta)

	_, err = repo.Accumulate(ctx, user.ID, day, "xp", 1)
	assert.ErrorIs(t, err, progression.ErrInvalidGoalField)

	_, err = repo.Get(ctx, user.ID, day)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGoalRepositoryConcurrentAccumulate(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := NewGoalRepository(db)
	user := createUser(t, db, "cy")
	day := progression.NewDate(2024, 3, 10)

	const workers = 8
	const perWorker = 5

	var g errgroup.Group
	for w := 0; w < workers; w++ {
		g.Go(func() error {
			for i := 0; i < perWorker; i++ {
				if _, err := repo.Accumulate(ctx, user.ID, day, progression.GoalFlashcards, 1); err != nil {
					return err
				}
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	goal, err := repo.Get(ctx, user.ID, day)
	require.NoError(t, err)
	assert.Equal(t, workers*perWorker, goal.FlashcardsDone)
}

func TestGoalRepositoryGetOrCreate(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := NewGoalRepository(db)
	user := createUser(t, db, "di")
	day := progression.NewDate(2024, 3, 10)

	first, err := repo.GetOrCreate(ctx, user.ID, day)
	require.NoError(t, err)
	_, err = repo.Accumulate(ctx, user.ID, day, progression.GoalTasks, 2)
	require.NoError(t, err)

	again, err := repo.GetOrCreate(ctx, user.ID, day)
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID)
	assert.Equal(t, 2, again.TasksDone)

	goals, err := repo.ListRange(ctx, user.ID, day.AddDays(-7), day)
	require.NoError(t, err)
	assert.Len(t, goals, 1)
}
