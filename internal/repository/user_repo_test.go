package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mentormind/internal/progression"
)

func TestUserRepositoryCreateAndGet(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := NewUserRepository(db)

	user := createUser(t, db, "ana")
	assert.Equal(t, 0, user.XP)
	assert.Equal(t, 1, user.Level)
	assert.True(t, user.LastStudyDate.IsZero())
	assert.True(t, user.RemindersEnabled)

	found, err := repo.FindByUsernameOrEmail(ctx, "nobody", "ana@example.com")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, user.ID, found.ID)

	missing, err := repo.FindByUsernameOrEmail(ctx, "nobody", "nobody@example.com")
	require.NoError(t, err)
	assert.Nil(t, missing)

	_, err = repo.GetByID(ctx, 999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUserRepositoryXPAndStreak(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := NewUserRepository(db)
	user := createUser(t, db, "bo")

	xp, err := repo.AddXP(ctx, user.ID, 40)
	require.NoError(t, err)
	assert.Equal(t, 40, xp)

	xp, err = repo.AddXP(ctx, user.ID, 70)
	require.NoError(t, err)
	assert.Equal(t, 110, xp)

	_, err = repo.AddXP(ctx, 12345, 10)
	assert.ErrorIs(t, err, ErrNotFound)

	day := progression.NewDate(2024, 3, 10)
	require.NoError(t, repo.UpdateStreak(ctx, user.ID, 3, day))
	require.NoError(t, repo.SetLevel(ctx, user.ID, 2))
	require.NoError(t, repo.AddFocusMinutes(ctx, user.ID, 25))

	got, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, got.StreakDays)
	assert.True(t, got.LastStudyDate.Equal(day))
	assert.Equal(t, 2, got.Level)
	assert.Equal(t, 25, got.TotalFocusMinutes)
}

func TestUserRepositoryLedger(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := NewUserRepository(db)
	user := createUser(t, db, "cy")

	_, err := repo.RecordXPEvent(ctx, user.ID, progression.SourceFocusSession, 50, testNow)
	require.NoError(t, err)
	_, err = repo.RecordXPEvent(ctx, user.ID, progression.SourceTask, 15, testNow.Add(1))
	require.NoError(t, err)

	total, err := repo.SumXPEvents(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 65, total)

	events, err := repo.ListXPEvents(ctx, user.ID, testNow.Add(-1))
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, progression.SourceFocusSession, events[0].Source)
	assert.NotEqual(t, events[0].ID, events[1].ID)
}

func TestUserRepositoryRanking(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := NewUserRepository(db)

	low := createUser(t, db, "low")
	high := createUser(t, db, "high")
	_, err := repo.AddXP(ctx, low.ID, 10)
	require.NoError(t, err)
	_, err = repo.AddXP(ctx, high.ID, 500)
	require.NoError(t, err)

	ranking, err := repo.Ranking(ctx, 20)
	require.NoError(t, err)
	require.Len(t, ranking, 2)
	assert.Equal(t, high.ID, ranking[0].UserID)
	assert.Equal(t, 1, ranking[0].Position)
	assert.Equal(t, 2, ranking[1].Position)
}

func TestUserRepositoryReminderRecipients(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := NewUserRepository(db)

	on := createUser(t, db, "on")
	off := createUser(t, db, "off")
	require.NoError(t, repo.SetRemindersEnabled(ctx, off.ID, false))
	require.NoError(t, repo.SetTelegramChat(ctx, on.ID, 4242))

	users, err := repo.ListForReminders(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, on.ID, users[0].ID)
	assert.Equal(t, int64(4242), users[0].TelegramChatID)
}
