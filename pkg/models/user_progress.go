package models

import (
	"time"

	"github.com/google/uuid"
)

// UserProgress is the single current-state record per (user, question).
// RepetitionCount is the position on the review ladder: it climbs by one on
// every correct answer and drops to zero on a wrong one. NextDueAt is always
// LastAnsweredAt plus the ladder interval for RepetitionCount.
type UserProgress struct {
	ID              uuid.UUID `json:"id" db:"id"`
	UserID          uuid.UUID `json:"user_id" db:"user_id"`
	QuestionID      int64     `json:"question_id" db:"question_id"`
	RepetitionCount int       `json:"repetition_count" db:"repetition_count"`
	IsCorrect       bool      `json:"is_correct" db:"is_correct"`
	LastAnsweredAt  time.Time `json:"last_answered_at" db:"last_answered_at"`
	NextDueAt       time.Time `json:"next_due_at" db:"next_due_at"`
}
