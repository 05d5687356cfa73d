// Package dbtest wires the shared database connection to an in-memory
// SQLite store for package tests.
package dbtest

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/example/examtrainer/internal/database"
	"github.com/example/examtrainer/pkg/models"
)

// Setup points database.DB at a fresh in-memory SQLite store with the schema
// installed. The store is torn down when the test finishes.
func Setup(t *testing.T) {
	t.Helper()
	if err := database.Connect("sqlite3", ":memory:"); err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() {
		database.Close()
	})
}

// SeedUser inserts a user with the given exam catalog and returns it.
func SeedUser(t *testing.T, country, language string) *models.User {
	t.Helper()
	user := &models.User{
		ID:           uuid.New(),
		TelegramID:   time.Now().UnixNano(),
		Username:     "tester",
		ExamCountry:  country,
		ExamLanguage: language,
		UILanguage:   "en",
		CreatedAt:    time.Now().UTC(),
		UpdatedAt:    time.Now().UTC(),
	}
	_, err := database.DB.Exec(`
		INSERT INTO users (id, telegram_id, username, first_name, last_name, exam_country, exam_language, ui_language, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		user.ID, user.TelegramID, user.Username, user.FirstName, user.LastName,
		user.ExamCountry, user.ExamLanguage, user.UILanguage,
		user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}
	return user
}

// SeedQuestion inserts a catalog question and returns its ID.
func SeedQuestion(t *testing.T, topic, country, language string) int64 {
	t.Helper()
	res, err := database.DB.Exec(
		"INSERT INTO questions (topic, country, language, content) VALUES (?, ?, ?, ?)",
		topic, country, language, `{"text":"seeded"}`,
	)
	if err != nil {
		t.Fatalf("failed to seed question: %v", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		t.Fatalf("failed to read seeded question id: %v", err)
	}
	return id
}

// SeedProgress inserts a progress record directly, bypassing the ladder.
func SeedProgress(t *testing.T, userID uuid.UUID, questionID int64, repetitionCount int, isCorrect bool, lastAnsweredAt, nextDueAt time.Time) {
	t.Helper()
	_, err := database.DB.Exec(`
		INSERT INTO user_progress (id, user_id, question_id, repetition_count, is_correct, last_answered_at, next_due_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		uuid.New(), userID, questionID, repetitionCount, isCorrect,
		lastAnsweredAt.UTC(), nextDueAt.UTC(),
	)
	if err != nil {
		t.Fatalf("failed to seed progress: %v", err)
	}
}

// SeedEvent inserts an answer event directly.
func SeedEvent(t *testing.T, userID uuid.UUID, questionID int64, isCorrect bool, answeredAt time.Time, clientAnsweredAt *time.Time) {
	t.Helper()
	_, err := database.DB.Exec(`
		INSERT INTO answer_events (id, user_id, question_id, is_correct, answered_at, client_answered_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		uuid.New(), userID, questionID, isCorrect, answeredAt.UTC(), clientAnsweredAt,
	)
	if err != nil {
		t.Fatalf("failed to seed answer event: %v", err)
	}
}
