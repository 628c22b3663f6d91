package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	DatabaseType   string
	DatabasePath   string
	DatabaseURL    string
	MigrationsPath string

	Timezone          string
	KeepAliveInterval time.Duration

	GeminiAPIKey string
	GeminiModel  string
	AIRateLimit  int
	AIRateWindow time.Duration

	ReminderHour     int
	AWSRegion        string
	SESFromEmail     string
	SESFromName      string
	TelegramBotToken string

	LogLevel string
	Debug    bool
}

// LoadDotEnv loads variables from the given .env files (".env" when none
// are given) without overriding the real environment. Missing files are
// not an error.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load %s: %w", f, err)
		}
	}
	return nil
}

// Load reads configuration from environment variables with sensible defaults
func Load() *Config {
	return &Config{
		DatabaseType:      getEnv("DB_TYPE", "sqlite"),
		DatabasePath:      getEnv("DB_PATH", "./mentormind.db"),
		DatabaseURL:       getEnv("DATABASE_URL", ""),
		MigrationsPath:    getEnv("MIGRATIONS_PATH", ""),
		Timezone:          getEnv("TIMEZONE", "Local"),
		KeepAliveInterval: getEnvDuration("KEEPALIVE_INTERVAL", 5*time.Minute),
		GeminiAPIKey:      getEnv("GEMINI_API_KEY", ""),
		GeminiModel:       getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
		AIRateLimit:       getEnvInt("AI_RATE_LIMIT", 20),
		AIRateWindow:      getEnvDuration("AI_RATE_WINDOW", time.Hour),
		ReminderHour:      getEnvInt("REMINDER_HOUR", 18),
		AWSRegion:         getEnv("AWS_REGION", "us-east-1"),
		SESFromEmail:      getEnv("SES_FROM_EMAIL", ""),
		SESFromName:       getEnv("SES_FROM_NAME", "MentorMind"),
		TelegramBotToken:  getEnv("TELEGRAM_BOT_TOKEN", ""),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		Debug:             getEnvBool("DEBUG", false),
	}
}

// Validate reports settings that cannot work together
func (c *Config) Validate() error {
	var errs []error
	switch strings.ToLower(c.DatabaseType) {
	case "postgres", "postgresql", "pgx", "mysql":
		if c.DatabaseURL == "" {
			errs = append(errs, fmt.Errorf("DATABASE_URL is required for DB_TYPE=%s", c.DatabaseType))
		}
	}
	if c.ReminderHour < 0 || c.ReminderHour > 23 {
		errs = append(errs, fmt.Errorf("REMINDER_HOUR must be between 0 and 23, got %d", c.ReminderHour))
	}
	if c.AIRateLimit < 1 {
		errs = append(errs, fmt.Errorf("AI_RATE_LIMIT must be positive, got %d", c.AIRateLimit))
	}
	if _, err := c.Location(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Location resolves the configured timezone that defines "today"
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" || c.Timezone == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// ReminderTime returns the HH:MM wall clock time of the daily reminder
func (c *Config) ReminderTime() string {
	return fmt.Sprintf("%02d:00", c.ReminderHour)
}

// AIEnabled reports whether a generation backend is configured
func (c *Config) AIEnabled() bool {
	return c.GeminiAPIKey != ""
}

// getEnv reads an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return v
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if v, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return v
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if v, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return v
	}
	return defaultValue
}
