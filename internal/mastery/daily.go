// Package mastery derives the daily study-progress report from the progress
// store and the answer history.
package mastery

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/example/examtrainer/internal/database"
	"github.com/example/examtrainer/pkg/models"
)

// DefaultDailyGoal applies when the user has not set one.
const DefaultDailyGoal = 30

// Aggregator computes how many questions a user newly mastered on a given
// day against their daily goal. The canonical definition counts questions
// whose current record is correct with its last answer inside the day; the
// strict variant counts distinct questions with any correct answer event in
// the day, so a later wrong answer cannot remove an earlier mastery.
type Aggregator struct {
	users    *database.UserRepository
	progress *database.UserProgressRepository
	events   *database.AnswerEventRepository
	strict   bool
	goal     int
	log      *zap.SugaredLogger
}

// New creates an aggregator. With strict enabled the history-based count is
// used instead of the latest-state one.
func New(users *database.UserRepository, progress *database.UserProgressRepository, events *database.AnswerEventRepository, strict bool, defaultGoal int, log *zap.SugaredLogger) *Aggregator {
	if defaultGoal <= 0 {
		defaultGoal = DefaultDailyGoal
	}
	return &Aggregator{
		users:    users,
		progress: progress,
		events:   events,
		strict:   strict,
		goal:     defaultGoal,
		log:      log,
	}
}

// Compute returns the mastery report for the day containing target in loc.
// The day window is [local midnight, next local midnight).
func (a *Aggregator) Compute(ctx context.Context, userID uuid.UUID, target time.Time, loc *time.Location) (*models.DailyProgress, error) {
	user, err := a.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if loc == nil {
		loc = time.UTC
	}
	local := target.In(loc)
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	end := start.AddDate(0, 0, 1)

	var mastered int
	if a.strict {
		mastered, err = a.events.DistinctCorrectInWindow(ctx, userID, start, end)
	} else {
		mastered, err = a.progress.MasteredInWindow(ctx, userID, start, end)
	}
	if err != nil {
		return nil, err
	}

	goal := a.goal
	if user.DailyGoal != nil && *user.DailyGoal > 0 {
		goal = *user.DailyGoal
	}

	return &models.DailyProgress{
		Date:          start.Format("2006-01-02"),
		MasteredCount: mastered,
		DailyGoal:     goal,
	}, nil
}
