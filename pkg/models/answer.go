package models

import "github.com/google/uuid"

// AnswerSubmit is a single answer submission.
type AnswerSubmit struct {
	UserID     uuid.UUID `json:"user_id" binding:"required"`
	QuestionID int64     `json:"question_id" binding:"required"`
	IsCorrect  bool      `json:"is_correct"`
}

// BatchAnswerItem is one entry of a batch submission. Timestamp is the
// client-side answer time in Unix milliseconds; items without it are never
// treated as duplicates.
type BatchAnswerItem struct {
	QuestionID int64  `json:"question_id" binding:"required"`
	IsCorrect  bool   `json:"is_correct"`
	Timestamp  *int64 `json:"timestamp,omitempty"`
}

// BatchAnswersSubmit is an ordered group of answers applied as one atomic
// unit.
type BatchAnswersSubmit struct {
	UserID  uuid.UUID         `json:"user_id" binding:"required"`
	Answers []BatchAnswerItem `json:"answers" binding:"required"`
}

// BatchResult reports what a batch submission did together with the user's
// recomputed statistics.
type BatchResult struct {
	Applied int       `json:"applied"`
	Skipped int       `json:"skipped"`
	Stats   UserStats `json:"stats"`
}
