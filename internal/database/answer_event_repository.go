package database

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/example/examtrainer/pkg/models"
)

// Dedup windows: submissions carrying a client timestamp collide within
// one second, legacy submissions without one within five minutes.
const (
	DedupTolerance    = time.Second
	DedupLegacyWindow = 5 * time.Minute
)

// AnswerEventRepository handles the append-only answer history. Events are
// only ever inserted; dedup checks and aggregations read them back.
type AnswerEventRepository struct{}

// NewAnswerEventRepository creates a new repository instance
func NewAnswerEventRepository() *AnswerEventRepository {
	return &AnswerEventRepository{}
}

// AppendTx inserts one answer event inside the caller's transaction. The
// caller owns commit and rollback.
func (r *AnswerEventRepository) AppendTx(ctx context.Context, tx *sqlx.Tx, event *models.AnswerEvent) error {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	query := tx.Rebind(`
		INSERT INTO answer_events (id, user_id, question_id, is_correct, answered_at, client_answered_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	_, err := tx.ExecContext(ctx, query,
		event.ID, event.UserID, event.QuestionID, event.IsCorrect,
		event.AnsweredAt, event.ClientAnsweredAt,
	)
	if err != nil {
		return errors.Wrap(err, "failed to append answer event")
	}
	return nil
}

// IsDuplicate reports whether an equivalent answer event already exists for
// the (user, question) pair. With a client timestamp the match window is
// ±DedupTolerance around it; without one, any event in the last
// DedupLegacyWindow counts. Runs on ext so batch submissions can check
// against their own uncommitted appends; pass nil to use the shared
// connection.
func (r *AnswerEventRepository) IsDuplicate(ctx context.Context, ext sqlx.ExtContext, userID uuid.UUID, questionID int64, clientAt *time.Time, now time.Time) (bool, error) {
	if ext == nil {
		ext = DB
	}

	var query string
	var args []interface{}

	if clientAt != nil {
		ts := clientAt.UTC()
		query = ext.Rebind(`
			SELECT COUNT(*) FROM answer_events
			WHERE user_id = ? AND question_id = ?
			  AND (
				(answered_at >= ? AND answered_at <= ?)
				OR (client_answered_at >= ? AND client_answered_at <= ?)
			  )
		`)
		args = []interface{}{
			userID, questionID,
			ts.Add(-DedupTolerance), ts.Add(DedupTolerance),
			ts.Add(-DedupTolerance), ts.Add(DedupTolerance),
		}
	} else {
		query = ext.Rebind(`
			SELECT COUNT(*) FROM answer_events
			WHERE user_id = ? AND question_id = ? AND answered_at >= ?
		`)
		args = []interface{}{userID, questionID, now.UTC().Add(-DedupLegacyWindow)}
	}

	var count int
	if err := sqlx.GetContext(ctx, ext, &count, query, args...); err != nil {
		return false, errors.Wrap(err, "failed to check for duplicate answer")
	}
	return count > 0, nil
}

// DistinctCorrectInWindow counts the distinct questions the user answered
// correctly at least once inside [start, end). This is the history-based
// daily-mastery variant: a later wrong answer the same day does not remove
// the question from the count.
func (r *AnswerEventRepository) DistinctCorrectInWindow(ctx context.Context, userID uuid.UUID, start, end time.Time) (int, error) {
	query := DB.Rebind(`
		SELECT COUNT(DISTINCT question_id) FROM answer_events
		WHERE user_id = ? AND is_correct = TRUE
		  AND answered_at >= ? AND answered_at < ?
	`)
	var count int
	if err := DB.GetContext(ctx, &count, query, userID, start.UTC(), end.UTC()); err != nil {
		return 0, errors.Wrap(err, "failed to count mastered questions")
	}
	return count, nil
}

// EventsForPair returns the full recorded history for one (user, question)
// pair, oldest first. Ties on answered_at break by insertion order: the
// seq serial on Postgres, the rowid on SQLite.
func (r *AnswerEventRepository) EventsForPair(ctx context.Context, userID uuid.UUID, questionID int64) ([]models.AnswerEvent, error) {
	tiebreak := "seq"
	if DB.DriverName() != "postgres" {
		tiebreak = "rowid"
	}
	query := DB.Rebind(`
		SELECT id, user_id, question_id, is_correct, answered_at, client_answered_at
		FROM answer_events
		WHERE user_id = ? AND question_id = ?
		ORDER BY answered_at, ` + tiebreak + `
	`)
	var out []models.AnswerEvent
	if err := DB.SelectContext(ctx, &out, query, userID, questionID); err != nil {
		return nil, errors.Wrap(err, "failed to list answer events")
	}
	return out, nil
}
