// Package submission coordinates answer submissions: the single-answer path
// and the atomic batch path with duplicate suppression.
package submission

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/example/examtrainer/internal/cache"
	"github.com/example/examtrainer/internal/database"
	"github.com/example/examtrainer/pkg/models"
)

// Coordinator applies answer events to the progress store. A batch is one
// transaction: every applied item commits together or the whole batch rolls
// back.
type Coordinator struct {
	users    *database.UserRepository
	progress *database.UserProgressRepository
	events   *database.AnswerEventRepository
	counts   *cache.CatalogCounts
	now      func() time.Time
	log      *zap.SugaredLogger
}

// New creates a coordinator over the shared store.
func New(users *database.UserRepository, progress *database.UserProgressRepository, events *database.AnswerEventRepository, counts *cache.CatalogCounts, log *zap.SugaredLogger) *Coordinator {
	return &Coordinator{
		users:    users,
		progress: progress,
		events:   events,
		counts:   counts,
		now:      time.Now,
		log:      log,
	}
}

// WithClock overrides the submission clock, used in tests.
func (c *Coordinator) WithClock(now func() time.Time) *Coordinator {
	c.now = now
	return c
}

// SubmitAnswer applies a single answer and returns the updated progress
// record.
func (c *Coordinator) SubmitAnswer(ctx context.Context, answer models.AnswerSubmit) (*models.UserProgress, error) {
	return c.progress.SubmitAnswer(ctx, answer.UserID, answer.QuestionID, answer.IsCorrect, c.now().UTC())
}

// SubmitBatch applies an ordered group of answers as one transaction. Items
// carrying a client timestamp are skipped and counted when the ledger
// already holds an event within ±DedupTolerance of it; items without one
// always apply. Any unrecoverable error rolls the whole batch back. On
// success the user's statistics are recomputed and returned.
func (c *Coordinator) SubmitBatch(ctx context.Context, batch models.BatchAnswersSubmit) (*models.BatchResult, error) {
	user, err := c.users.GetByID(ctx, batch.UserID)
	if err != nil {
		return nil, err
	}

	now := c.now().UTC()

	tx, err := database.DB.BeginTxx(ctx, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to begin batch transaction")
	}

	applied, skipped := 0, 0
	for _, item := range batch.Answers {
		clientAt := clientTime(item.Timestamp)

		if clientAt != nil {
			dup, derr := c.events.IsDuplicate(ctx, tx, user.ID, item.QuestionID, clientAt, now)
			if derr != nil {
				// Fail open: duplicate suppression must never block a
				// legitimate submission from being recorded.
				c.log.Warnw("duplicate check failed, applying item",
					"user_id", user.ID, "question_id", item.QuestionID, "error", derr)
				dup = false
			}
			if dup {
				skipped++
				continue
			}
		}

		if _, err := c.progress.ApplyAnswerTx(ctx, tx, user.ID, item.QuestionID, item.IsCorrect, clientAt, now); err != nil {
			tx.Rollback()
			return nil, err
		}
		applied++
	}

	if err := tx.Commit(); err != nil {
		return nil, errors.Wrap(err, "failed to commit batch")
	}

	c.log.Infow("batch applied",
		"user_id", user.ID, "applied", applied, "skipped", skipped)

	stats, err := c.Stats(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	return &models.BatchResult{Applied: applied, Skipped: skipped, Stats: *stats}, nil
}

// Stats recomputes the user's aggregate statistics against the catalog for
// their exam country and language.
func (c *Coordinator) Stats(ctx context.Context, userID uuid.UUID) (*models.UserStats, error) {
	user, err := c.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	total, err := c.counts.Get(ctx, user.ExamCountry, user.ExamLanguage)
	if err != nil {
		return nil, err
	}

	answered, correct, hist, err := c.progress.Stats(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &models.UserStats{
		TotalQuestions:      total,
		Answered:            answered,
		Correct:             correct,
		RepetitionHistogram: hist,
	}, nil
}

// clientTime converts a client Unix-millisecond timestamp to absolute time.
func clientTime(ms *int64) *time.Time {
	if ms == nil {
		return nil
	}
	t := time.UnixMilli(*ms).UTC()
	return &t
}
