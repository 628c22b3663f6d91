package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"DB_TYPE", "DB_PATH", "REMINDER_HOUR", "AI_RATE_WINDOW", "DEBUG", "GEMINI_API_KEY"} {
		t.Setenv(key, "")
	}

	cfg := Load()
	assert.Equal(t, "sqlite", cfg.DatabaseType)
	assert.Equal(t, "./mentormind.db", cfg.DatabasePath)
	assert.Equal(t, 18, cfg.ReminderHour)
	assert.Equal(t, time.Hour, cfg.AIRateWindow)
	assert.False(t, cfg.Debug)
	assert.False(t, cfg.AIEnabled())
	assert.NoError(t, cfg.Validate())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DB_TYPE", "postgres")
	t.Setenv("DATABASE_URL", "postgres://localhost/mentormind")
	t.Setenv("REMINDER_HOUR", "7")
	t.Setenv("AI_RATE_WINDOW", "30m")
	t.Setenv("DEBUG", "true")
	t.Setenv("TIMEZONE", "America/Sao_Paulo")

	cfg := Load()
	assert.Equal(t, "postgres", cfg.DatabaseType)
	assert.Equal(t, 7, cfg.ReminderHour)
	assert.Equal(t, "07:00", cfg.ReminderTime())
	assert.Equal(t, 30*time.Minute, cfg.AIRateWindow)
	assert.True(t, cfg.Debug)

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, "America/Sao_Paulo", loc.String())
}

func TestLoadIgnoresMalformedNumbers(t *testing.T) {
	t.Setenv("REMINDER_HOUR", "soon")
	t.Setenv("AI_RATE_LIMIT", "")
	cfg := Load()
	assert.Equal(t, 18, cfg.ReminderHour)
	assert.Equal(t, 20, cfg.AIRateLimit)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"postgres without url", func(c *Config) { c.DatabaseType = "postgres"; c.DatabaseURL = "" }, true},
		{"mysql with url", func(c *Config) { c.DatabaseType = "mysql"; c.DatabaseURL = "u:p@tcp(db)/m" }, false},
		{"bad hour", func(c *Config) { c.ReminderHour = 24 }, true},
		{"bad timezone", func(c *Config) { c.Timezone = "Mars/Olympus" }, true},
		{"zero rate limit", func(c *Config) { c.AIRateLimit = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{DatabaseType: "sqlite", ReminderHour: 18, AIRateLimit: 20, Timezone: "UTC"}
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.env")
	require.NoError(t, os.WriteFile(path, []byte("MENTORMIND_TEST_VALUE=from-file\n"), 0o600))

	t.Setenv("MENTORMIND_TEST_VALUE", "")
	os.Unsetenv("MENTORMIND_TEST_VALUE")

	require.NoError(t, LoadDotEnv(path))
	assert.Equal(t, "from-file", os.Getenv("MENTORMIND_TEST_VALUE"))

	assert.NoError(t, LoadDotEnv(filepath.Join(dir, "missing.env")))
}
