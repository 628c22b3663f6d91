package service

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"mentormind/internal/database"
	"mentormind/internal/models"
	"mentormind/internal/progression"
	"mentormind/internal/repository"
)

var testNow = time.Date(2024, 3, 10, 9, 30, 0, 0, time.UTC)

// fixture is a migrated database with the badge catalog and a settable clock
type fixture struct {
	db   *database.DB
	deps Deps

	mu  sync.Mutex
	now time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping database test in short mode")
	}

	db, err := database.Initialize(filepath.Join(t.TempDir(), "service.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	ctx := context.Background()
	_, err = db.RunMigrations(ctx, "")
	require.NoError(t, err)

	rules, err := progression.DefaultBadgeCatalog()
	require.NoError(t, err)
	_, err = repository.NewBadgeRepository(db).Seed(ctx, rules)
	require.NoError(t, err)

	f := &fixture{db: db, now: testNow}
	f.deps = Deps{
		DB:       db,
		Location: time.UTC,
		Now:      f.clock,
		Logger:   zaptest.NewLogger(t),
	}
	return f
}

func (f *fixture) clock() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

// advance moves the clock forward by days
func (f *fixture) advance(days int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.AddDate(0, 0, days)
}

func (f *fixture) today() progression.Date {
	return progression.DateOf(f.clock())
}

func (f *fixture) createUser(t *testing.T, username string) *models.User {
	t.Helper()
	user, err := repository.NewUserRepository(f.db).Create(context.Background(), username, username+"@example.com", "hash", username, f.clock())
	require.NoError(t, err)
	return user
}

func (f *fixture) reload(t *testing.T, userID int64) *models.User {
	t.Helper()
	user, err := repository.NewUserRepository(f.db).GetByID(context.Background(), userID)
	require.NoError(t, err)
	return user
}

func badgeNames(badges []models.Badge) []string {
	names := make([]string, 0, len(badges))
	for _, b := range badges {
		names = append(names, b.Name)
	}
	return names
}
