package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/example/examtrainer/internal/spaced_repetition"
	"github.com/example/examtrainer/pkg/models"
)

// UserProgressRepository owns the current-state progress record per
// (user, question) pair. Every mutation runs the ladder transition and the
// history append inside one transaction; either both persist or neither
// does.
type UserProgressRepository struct {
	events *AnswerEventRepository
}

// NewUserProgressRepository creates a new repository instance
func NewUserProgressRepository() *UserProgressRepository {
	return &UserProgressRepository{events: NewAnswerEventRepository()}
}

// GetByUserAndQuestion returns the progress record for a pair
func (r *UserProgressRepository) GetByUserAndQuestion(ctx context.Context, userID uuid.UUID, questionID int64) (*models.UserProgress, error) {
	var progress models.UserProgress
	query := DB.Rebind("SELECT * FROM user_progress WHERE user_id = ? AND question_id = ?")
	err := DB.GetContext(ctx, &progress, query, userID, questionID)
	if err == sql.ErrNoRows {
		return nil, errors.Wrapf(ErrNotFound, "progress for user %s question %d", userID, questionID)
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to get user progress")
	}
	return &progress, nil
}

// GetAllForUser returns every progress record of a user
func (r *UserProgressRepository) GetAllForUser(ctx context.Context, userID uuid.UUID) ([]models.UserProgress, error) {
	var out []models.UserProgress
	query := DB.Rebind("SELECT * FROM user_progress WHERE user_id = ? ORDER BY question_id")
	if err := DB.SelectContext(ctx, &out, query, userID); err != nil {
		return nil, errors.Wrap(err, "failed to list user progress")
	}
	return out, nil
}

// SubmitAnswer applies one answer to the pair's ladder state and records the
// answer event, committing both together.
func (r *UserProgressRepository) SubmitAnswer(ctx context.Context, userID uuid.UUID, questionID int64, isCorrect bool, now time.Time) (*models.UserProgress, error) {
	tx, err := DB.BeginTxx(ctx, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to begin transaction")
	}

	progress, err := r.ApplyAnswerTx(ctx, tx, userID, questionID, isCorrect, nil, now)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, errors.Wrap(err, "failed to commit answer")
	}
	return progress, nil
}

// ApplyAnswerTx runs a single ladder transition plus history append inside
// the caller's transaction. Used directly by batch submission; the caller
// owns commit and rollback.
func (r *UserProgressRepository) ApplyAnswerTx(ctx context.Context, tx *sqlx.Tx, userID uuid.UUID, questionID int64, isCorrect bool, clientAt *time.Time, now time.Time) (*models.UserProgress, error) {
	if err := checkReferencesTx(ctx, tx, userID, questionID); err != nil {
		return nil, err
	}

	now = now.UTC()

	var progress models.UserProgress
	query := tx.Rebind("SELECT * FROM user_progress WHERE user_id = ? AND question_id = ?")
	err := tx.GetContext(ctx, &progress, query, userID, questionID)

	switch {
	case err == sql.ErrNoRows:
		progress = models.UserProgress{
			ID:              uuid.New(),
			UserID:          userID,
			QuestionID:      questionID,
			RepetitionCount: spaced_repetition.NextCount(0, isCorrect),
			IsCorrect:       isCorrect,
			LastAnsweredAt:  now,
		}
		progress.NextDueAt = spaced_repetition.NextDue(progress.RepetitionCount, now)

		insert := tx.Rebind(`
			INSERT INTO user_progress (
				id, user_id, question_id, repetition_count, is_correct,
				last_answered_at, next_due_at
			) VALUES (?, ?, ?, ?, ?, ?, ?)
		`)
		if _, err := tx.ExecContext(ctx, insert,
			progress.ID, progress.UserID, progress.QuestionID,
			progress.RepetitionCount, progress.IsCorrect,
			progress.LastAnsweredAt, progress.NextDueAt,
		); err != nil {
			return nil, errors.Wrap(err, "failed to create user progress")
		}

	case err != nil:
		return nil, errors.Wrap(err, "failed to load user progress")

	default:
		progress.RepetitionCount = spaced_repetition.NextCount(progress.RepetitionCount, isCorrect)
		progress.IsCorrect = isCorrect
		progress.LastAnsweredAt = now
		progress.NextDueAt = spaced_repetition.NextDue(progress.RepetitionCount, now)

		update := tx.Rebind(`
			UPDATE user_progress SET
				repetition_count = ?, is_correct = ?,
				last_answered_at = ?, next_due_at = ?
			WHERE id = ?
		`)
		if _, err := tx.ExecContext(ctx, update,
			progress.RepetitionCount, progress.IsCorrect,
			progress.LastAnsweredAt, progress.NextDueAt,
			progress.ID,
		); err != nil {
			return nil, errors.Wrap(err, "failed to update user progress")
		}
	}

	event := models.AnswerEvent{
		UserID:           userID,
		QuestionID:       questionID,
		IsCorrect:        isCorrect,
		AnsweredAt:       now,
		ClientAnsweredAt: clientAt,
	}
	if err := r.events.AppendTx(ctx, tx, &event); err != nil {
		return nil, err
	}

	return &progress, nil
}

// Stats returns the user's answered and correct counts plus the
// repetition-count histogram. The last bucket absorbs any overflow.
func (r *UserProgressRepository) Stats(ctx context.Context, userID uuid.UUID) (answered, correct int, hist [models.RepetitionBuckets]int, err error) {
	rows, qerr := DB.QueryxContext(ctx,
		DB.Rebind("SELECT repetition_count, is_correct FROM user_progress WHERE user_id = ?"), userID)
	if qerr != nil {
		err = errors.Wrap(qerr, "failed to query progress stats")
		return
	}
	defer rows.Close()

	for rows.Next() {
		var count int
		var isCorrect bool
		if serr := rows.Scan(&count, &isCorrect); serr != nil {
			err = errors.Wrap(serr, "failed to scan progress stats")
			return
		}
		answered++
		if isCorrect {
			correct++
		}
		bucket := count
		if bucket >= models.RepetitionBuckets {
			bucket = models.RepetitionBuckets - 1
		}
		hist[bucket]++
	}
	if rerr := rows.Err(); rerr != nil {
		err = errors.Wrap(rerr, "failed to read progress stats")
	}
	return
}

// MasteredInWindow counts records whose latest answer was correct and fell
// inside [start, end). This is the latest-state daily-mastery definition.
func (r *UserProgressRepository) MasteredInWindow(ctx context.Context, userID uuid.UUID, start, end time.Time) (int, error) {
	query := DB.Rebind(`
		SELECT COUNT(*) FROM user_progress
		WHERE user_id = ? AND is_correct = TRUE
		  AND last_answered_at >= ? AND last_answered_at < ?
	`)
	var count int
	if err := DB.GetContext(ctx, &count, query, userID, start.UTC(), end.UTC()); err != nil {
		return 0, errors.Wrap(err, "failed to count mastered questions")
	}
	return count, nil
}

// checkReferencesTx verifies the user and question rows exist so a broken
// reference surfaces as not-found instead of a driver constraint error.
func checkReferencesTx(ctx context.Context, tx *sqlx.Tx, userID uuid.UUID, questionID int64) error {
	var one int
	if err := tx.GetContext(ctx, &one, tx.Rebind("SELECT 1 FROM users WHERE id = ?"), userID); err != nil {
		if err == sql.ErrNoRows {
			return errors.Wrapf(ErrNotFound, "user %s", userID)
		}
		return errors.Wrap(err, "failed to check user reference")
	}
	if err := tx.GetContext(ctx, &one, tx.Rebind("SELECT 1 FROM questions WHERE id = ?"), questionID); err != nil {
		if err == sql.ErrNoRows {
			return errors.Wrapf(ErrNotFound, "question %d", questionID)
		}
		return errors.Wrap(err, "failed to check question reference")
	}
	return nil
}
