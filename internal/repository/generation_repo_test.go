package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerationRepositoryWindow(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := NewGenerationRepository(db)
	ana := createUser(t, db, "ana")
	bo := createUser(t, db, "bo")

	require.NoError(t, repo.Record(ctx, ana.ID, "quiz", testNow.Add(-2*time.Hour)))
	require.NoError(t, repo.Record(ctx, ana.ID, "chat", testNow.Add(-30*time.Minute)))
	require.NoError(t, repo.Record(ctx, ana.ID, "explain", testNow))
	require.NoError(t, repo.Record(ctx, bo.ID, "chat", testNow))

	n, err := repo.CountSince(ctx, ana.ID, testNow.Add(-time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = repo.CountSince(ctx, bo.ID, testNow.Add(-time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	removed, err := repo.DeleteBefore(ctx, testNow.Add(-time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	n, err = repo.CountSince(ctx, ana.ID, testNow.Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}
