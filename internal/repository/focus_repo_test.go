package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mentormind/internal/models"
	"mentormind/internal/progression"
)

func TestFocusRepositoryWeeklyRanking(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := NewFocusRepository(db)
	today := progression.NewDate(2024, 3, 10)

	ana := createUser(t, db, "ana")
	bo := createUser(t, db, "bo")
	cy := createUser(t, db, "cy")
	createUser(t, db, "idle")

	sessions := []struct {
		userID  int64
		minutes int
		daysAgo int
	}{
		{ana.ID, 25, 0},
		{ana.ID, 25, 6},
		{bo.ID, 90, 3},
		{bo.ID, 500, 8},
		{cy.ID, 10, 7},
		{cy.ID, 600, 30},
	}
	for i, s := range sessions {
		require.NoError(t, repo.Record(ctx, &models.FocusSession{
			UserID:          s.userID,
			DurationMinutes: s.minutes,
			SessionDate:     today.AddDays(-s.daysAgo),
			CompletedAt:     testNow.Add(timeStep(i)),
		}))
	}

	since := today.AddDays(-7)
	ranking, err := repo.WeeklyRanking(ctx, since, 10)
	require.NoError(t, err)
	require.Len(t, ranking, 3)
	assert.Equal(t, models.FocusRankingEntry{Position: 1, UserID: bo.ID, Name: "bo", Minutes: 90}, ranking[0])
	assert.Equal(t, models.FocusRankingEntry{Position: 2, UserID: ana.ID, Name: "ana", Minutes: 50}, ranking[1])
	assert.Equal(t, models.FocusRankingEntry{Position: 3, UserID: cy.ID, Name: "cy", Minutes: 10}, ranking[2])

	top, err := repo.WeeklyRanking(ctx, since, 1)
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.Equal(t, bo.ID, top[0].UserID)
}
