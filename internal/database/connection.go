package database

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// DB is the shared database connection
var DB *sqlx.DB

// Connect establishes a connection to the database. Supported drivers are
// "postgres" and "sqlite3".
func Connect(driver, dsn string) error {
	db, err := sqlx.Connect(driver, dsn)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %v", err)
	}

	if driver == "sqlite3" {
		// SQLite doesn't support multiple writers
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
			return fmt.Errorf("failed to enable foreign keys: %v", err)
		}
	}

	DB = db

	return initializeSchema()
}

// Close closes the database connection
func Close() error {
	if DB != nil {
		return DB.Close()
	}
	return nil
}

// initializeSchema creates necessary tables if they don't exist
func initializeSchema() error {
	var userDDL, questionDDL, progressDDL, eventDDL string

	if DB.DriverName() == "postgres" {
		userDDL = `
			CREATE TABLE IF NOT EXISTS users (
				id UUID PRIMARY KEY,
				telegram_id BIGINT UNIQUE NOT NULL,
				username TEXT NOT NULL DEFAULT '',
				first_name TEXT NOT NULL DEFAULT '',
				last_name TEXT NOT NULL DEFAULT '',
				exam_country TEXT NOT NULL DEFAULT '',
				exam_language TEXT NOT NULL DEFAULT '',
				ui_language TEXT NOT NULL DEFAULT '',
				exam_date DATE,
				daily_goal INTEGER,
				created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
				updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
			)
		`
		questionDDL = `
			CREATE TABLE IF NOT EXISTS questions (
				id BIGSERIAL PRIMARY KEY,
				topic TEXT NOT NULL,
				country TEXT NOT NULL,
				language TEXT NOT NULL,
				content JSONB NOT NULL
			)
		`
		progressDDL = `
			CREATE TABLE IF NOT EXISTS user_progress (
				id UUID PRIMARY KEY,
				user_id UUID NOT NULL REFERENCES users(id),
				question_id BIGINT NOT NULL REFERENCES questions(id),
				repetition_count INTEGER NOT NULL DEFAULT 0,
				is_correct BOOLEAN NOT NULL,
				last_answered_at TIMESTAMPTZ NOT NULL,
				next_due_at TIMESTAMPTZ NOT NULL,
				UNIQUE (user_id, question_id)
			)
		`
		eventDDL = `
			CREATE TABLE IF NOT EXISTS answer_events (
				id UUID PRIMARY KEY,
				seq BIGSERIAL,
				user_id UUID NOT NULL REFERENCES users(id),
				question_id BIGINT NOT NULL REFERENCES questions(id),
				is_correct BOOLEAN NOT NULL,
				answered_at TIMESTAMPTZ NOT NULL,
				client_answered_at TIMESTAMPTZ
			)
		`
	} else {
		userDDL = `
			CREATE TABLE IF NOT EXISTS users (
				id TEXT PRIMARY KEY,
				telegram_id INTEGER UNIQUE NOT NULL,
				username TEXT NOT NULL DEFAULT '',
				first_name TEXT NOT NULL DEFAULT '',
				last_name TEXT NOT NULL DEFAULT '',
				exam_country TEXT NOT NULL DEFAULT '',
				exam_language TEXT NOT NULL DEFAULT '',
				ui_language TEXT NOT NULL DEFAULT '',
				exam_date TIMESTAMP,
				daily_goal INTEGER,
				created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
			)
		`
		questionDDL = `
			CREATE TABLE IF NOT EXISTS questions (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				topic TEXT NOT NULL,
				country TEXT NOT NULL,
				language TEXT NOT NULL,
				content TEXT NOT NULL
			)
		`
		progressDDL = `
			CREATE TABLE IF NOT EXISTS user_progress (
				id TEXT PRIMARY KEY,
				user_id TEXT NOT NULL REFERENCES users(id),
				question_id INTEGER NOT NULL REFERENCES questions(id),
				repetition_count INTEGER NOT NULL DEFAULT 0,
				is_correct BOOLEAN NOT NULL,
				last_answered_at TIMESTAMP NOT NULL,
				next_due_at TIMESTAMP NOT NULL,
				UNIQUE (user_id, question_id)
			)
		`
		eventDDL = `
			CREATE TABLE IF NOT EXISTS answer_events (
				id TEXT PRIMARY KEY,
				user_id TEXT NOT NULL REFERENCES users(id),
				question_id INTEGER NOT NULL REFERENCES questions(id),
				is_correct BOOLEAN NOT NULL,
				answered_at TIMESTAMP NOT NULL,
				client_answered_at TIMESTAMP
			)
		`
	}

	for _, ddl := range []string{userDDL, questionDDL, progressDDL, eventDDL} {
		if _, err := DB.Exec(ddl); err != nil {
			return fmt.Errorf("failed to create schema: %v", err)
		}
	}

	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_questions_catalog ON questions (country, language)",
		"CREATE INDEX IF NOT EXISTS idx_progress_due ON user_progress (user_id, next_due_at)",
		"CREATE INDEX IF NOT EXISTS idx_events_pair ON answer_events (user_id, question_id, answered_at)",
	}
	for _, idx := range indexes {
		if _, err := DB.Exec(idx); err != nil {
			return fmt.Errorf("failed to create index: %v", err)
		}
	}

	return nil
}
