package models

// RepetitionBuckets is the number of histogram boxes for repetition counts.
// The last bucket absorbs everything at or above RepetitionBuckets-1.
const RepetitionBuckets = 10

// UserStats summarizes a user's standing against the catalog for their exam
// country and language.
type UserStats struct {
	TotalQuestions      int                    `json:"total_questions"`
	Answered            int                    `json:"answered"`
	Correct             int                    `json:"correct"`
	RepetitionHistogram [RepetitionBuckets]int `json:"repetition_histogram"`
}

// DailyProgress is the derived daily-mastery report. It is computed on
// demand and never persisted.
type DailyProgress struct {
	Date          string `json:"date"`
	MasteredCount int    `json:"questions_mastered_today"`
	DailyGoal     int    `json:"daily_goal"`
}
