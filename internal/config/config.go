// Package config reads the process configuration from environment
// variables. Values come from the environment directly; main loads a .env
// file first when one exists.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config is the process configuration with defaults applied.
type Config struct {
	// DBType selects the storage driver: "postgres" or "sqlite".
	DBType string
	// DatabaseURL is the Postgres DSN; required when DBType is postgres.
	DatabaseURL string
	// SQLitePath is the database file used when DBType is sqlite.
	SQLitePath string
	// Port the HTTP API listens on.
	Port string
	// LogMode switches zap between development and production encoding.
	LogMode string
	// CacheTTL bounds how long catalog counts are served from memory.
	CacheTTL time.Duration
	// MasteryStrict switches daily mastery to the history-based count.
	MasteryStrict bool
	// DefaultDailyGoal applies to users without a daily goal setting.
	DefaultDailyGoal int
	// DayLocation is the timezone used for daily-progress day boundaries.
	DayLocation *time.Location
}

// Load builds the configuration from the environment.
func Load() (*Config, error) {
	cfg := &Config{
		DBType:           getEnv("DB_TYPE", "postgres"),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		SQLitePath:       getEnv("SQLITE_PATH", "data/examtrainer.db"),
		Port:             getEnv("PORT", "8080"),
		LogMode:          getEnv("LOG_MODE", "development"),
		CacheTTL:         10 * time.Minute,
		MasteryStrict:    getEnv("MASTERY_STRICT", "") == "true",
		DefaultDailyGoal: 30,
		DayLocation:      time.UTC,
	}

	if v := os.Getenv("CACHE_TTL_MINUTES"); v != "" {
		minutes, err := strconv.Atoi(v)
		if err != nil || minutes <= 0 {
			return nil, fmt.Errorf("invalid CACHE_TTL_MINUTES: %q", v)
		}
		cfg.CacheTTL = time.Duration(minutes) * time.Minute
	}

	if v := os.Getenv("DEFAULT_DAILY_GOAL"); v != "" {
		goal, err := strconv.Atoi(v)
		if err != nil || goal <= 0 {
			return nil, fmt.Errorf("invalid DEFAULT_DAILY_GOAL: %q", v)
		}
		cfg.DefaultDailyGoal = goal
	}

	if v := os.Getenv("DAY_TIMEZONE"); v != "" {
		loc, err := time.LoadLocation(v)
		if err != nil {
			return nil, fmt.Errorf("invalid DAY_TIMEZONE: %q", v)
		}
		cfg.DayLocation = loc
	}

	if cfg.DBType == "postgres" && cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required when DB_TYPE is postgres")
	}

	return cfg, nil
}

// Driver returns the sqlx driver name and DSN for the configured store.
func (c *Config) Driver() (string, string) {
	if c.DBType == "sqlite" {
		return "sqlite3", c.SQLitePath
	}
	return "postgres", c.DatabaseURL
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
