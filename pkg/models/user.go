package models

import (
	"time"

	"github.com/google/uuid"
)

// User represents a learner preparing for a theory exam
type User struct {
	ID           uuid.UUID  `json:"id" db:"id"`
	TelegramID   int64      `json:"telegram_id" db:"telegram_id"`
	Username     string     `json:"username" db:"username"`
	FirstName    string     `json:"first_name" db:"first_name"`
	LastName     string     `json:"last_name" db:"last_name"`
	ExamCountry  string     `json:"exam_country" db:"exam_country"`
	ExamLanguage string     `json:"exam_language" db:"exam_language"`
	UILanguage   string     `json:"ui_language" db:"ui_language"`
	ExamDate     *time.Time `json:"exam_date,omitempty" db:"exam_date"`
	DailyGoal    *int       `json:"daily_goal,omitempty" db:"daily_goal"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at"`
}

// UserCreate carries the fields accepted when a user is created or
// re-registered. Zero-value optional fields are left untouched on update.
type UserCreate struct {
	TelegramID   int64      `json:"telegram_id" binding:"required"`
	Username     string     `json:"username"`
	FirstName    string     `json:"first_name"`
	LastName     string     `json:"last_name"`
	ExamCountry  string     `json:"exam_country"`
	ExamLanguage string     `json:"exam_language"`
	UILanguage   string     `json:"ui_language"`
	ExamDate     *time.Time `json:"exam_date,omitempty"`
	DailyGoal    *int       `json:"daily_goal,omitempty"`
}

// UserSettingsUpdate is the allow-listed set of updatable user settings.
// Only non-nil fields are written; anything else on the user row cannot be
// changed through a settings update.
type UserSettingsUpdate struct {
	ExamCountry  *string    `json:"exam_country,omitempty"`
	ExamLanguage *string    `json:"exam_language,omitempty"`
	UILanguage   *string    `json:"ui_language,omitempty"`
	ExamDate     *time.Time `json:"exam_date,omitempty"`
	DailyGoal    *int       `json:"daily_goal,omitempty"`
}
