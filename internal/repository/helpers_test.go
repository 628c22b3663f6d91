package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"mentormind/internal/database"
	"mentormind/internal/models"
)

var testNow = time.Date(2024, 3, 10, 9, 30, 0, 0, time.UTC)

func newTestDB(t *testing.T) *database.DB {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping database test in short mode")
	}

	db, err := database.Initialize(filepath.Join(t.TempDir(), "repo.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, err = db.RunMigrations(context.Background(), "")
	require.NoError(t, err)
	return db
}

func createUser(t *testing.T, db database.DBTX, username string) *models.User {
	t.Helper()
	user, err := NewUserRepository(db).Create(context.Background(), username, username+"@example.com", "hash", username, testNow)
	require.NoError(t, err)
	return user
}

func timeStep(i int) time.Duration {
	return time.Duration(i) * time.Minute
}
