package models

import (
	"time"

	"github.com/google/uuid"
)

// AnswerEvent is one row of the append-only answer history. Events are never
// mutated or deleted; AnsweredAt is server time and ClientAnsweredAt carries
// the client clock when the submission included one.
type AnswerEvent struct {
	ID               uuid.UUID  `json:"id" db:"id"`
	UserID           uuid.UUID  `json:"user_id" db:"user_id"`
	QuestionID       int64      `json:"question_id" db:"question_id"`
	IsCorrect        bool       `json:"is_correct" db:"is_correct"`
	AnsweredAt       time.Time  `json:"answered_at" db:"answered_at"`
	ClientAnsweredAt *time.Time `json:"client_answered_at,omitempty" db:"client_answered_at"`
}
