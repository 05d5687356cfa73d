package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/example/examtrainer/pkg/models"
)

// QuestionRepository handles database operations for the question catalog.
// The catalog is read-only for the engine; Create exists for the importer.
type QuestionRepository struct{}

// NewQuestionRepository creates a new repository instance
func NewQuestionRepository() *QuestionRepository {
	return &QuestionRepository{}
}

// GetByID returns a question by ID
func (r *QuestionRepository) GetByID(ctx context.Context, id int64) (*models.Question, error) {
	var q models.Question
	err := DB.GetContext(ctx, &q, DB.Rebind("SELECT * FROM questions WHERE id = ?"), id)
	if err == sql.ErrNoRows {
		return nil, errors.Wrapf(ErrNotFound, "question %d", id)
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to get question")
	}
	return &q, nil
}

// Create inserts a new catalog question and fills in its ID
func (r *QuestionRepository) Create(ctx context.Context, q *models.Question) error {
	if DB.DriverName() == "postgres" {
		query := `
			INSERT INTO questions (topic, country, language, content)
			VALUES ($1, $2, $3, $4)
			RETURNING id
		`
		return DB.QueryRowContext(ctx, query, q.Topic, q.Country, q.Language, q.Content).Scan(&q.ID)
	}

	// SQLite path: no RETURNING, read the row ID back
	result, err := DB.ExecContext(ctx,
		"INSERT INTO questions (topic, country, language, content) VALUES (?, ?, ?, ?)",
		q.Topic, q.Country, q.Language, q.Content,
	)
	if err != nil {
		return errors.Wrap(err, "failed to create question")
	}
	id, err := result.LastInsertId()
	if err != nil {
		return errors.Wrap(err, "failed to get last insert ID")
	}
	q.ID = id
	return nil
}

// Countries returns the distinct exam countries present in the catalog
func (r *QuestionRepository) Countries(ctx context.Context) ([]string, error) {
	var out []string
	err := DB.SelectContext(ctx, &out, "SELECT DISTINCT country FROM questions ORDER BY country")
	if err != nil {
		return nil, errors.Wrap(err, "failed to get countries")
	}
	return out, nil
}

// Languages returns the distinct question languages present in the catalog
func (r *QuestionRepository) Languages(ctx context.Context) ([]string, error) {
	var out []string
	err := DB.SelectContext(ctx, &out, "SELECT DISTINCT language FROM questions ORDER BY language")
	if err != nil {
		return nil, errors.Wrap(err, "failed to get languages")
	}
	return out, nil
}

// Topics returns the distinct topics for one country/language slice of the
// catalog
func (r *QuestionRepository) Topics(ctx context.Context, country, language string) ([]string, error) {
	var out []string
	query := DB.Rebind("SELECT DISTINCT topic FROM questions WHERE country = ? AND language = ? ORDER BY topic")
	err := DB.SelectContext(ctx, &out, query, country, language)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get topics")
	}
	return out, nil
}

// CountByCatalog returns the catalog size for a country/language pair
func (r *QuestionRepository) CountByCatalog(ctx context.Context, country, language string) (int, error) {
	var count int
	query := DB.Rebind("SELECT COUNT(*) FROM questions WHERE country = ? AND language = ?")
	err := DB.GetContext(ctx, &count, query, country, language)
	if err != nil {
		return 0, errors.Wrap(err, "failed to count questions")
	}
	return count, nil
}

// Candidate is a catalog question joined with the requesting user's progress
// state. WrongAnswer is true when a progress record exists and its latest
// answer was incorrect.
type Candidate struct {
	models.Question
	HasProgress bool `db:"has_progress"`
	WrongAnswer bool `db:"wrong_answer"`
}

const candidateColumns = `
	q.id, q.topic, q.country, q.language, q.content,
	p.id IS NOT NULL AS has_progress,
	COALESCE(p.is_correct = FALSE, FALSE) AS wrong_answer
`

// CandidatesDue returns catalog questions that are either unseen by the user
// or whose review is due.
func (r *QuestionRepository) CandidatesDue(ctx context.Context, userID uuid.UUID, country, language string, now time.Time) ([]Candidate, error) {
	query := DB.Rebind(`
		SELECT ` + candidateColumns + `
		FROM questions q
		LEFT JOIN user_progress p ON p.question_id = q.id AND p.user_id = ?
		WHERE q.country = ? AND q.language = ?
		  AND (p.id IS NULL OR p.next_due_at <= ?)
	`)
	var out []Candidate
	if err := DB.SelectContext(ctx, &out, query, userID, country, language, now); err != nil {
		return nil, errors.Wrap(err, "failed to get due candidates")
	}
	return out, nil
}

// CandidatesTopics returns every catalog question in the topic set,
// regardless of the user's progress or due state.
func (r *QuestionRepository) CandidatesTopics(ctx context.Context, userID uuid.UUID, country, language string, topics []string) ([]Candidate, error) {
	query, args, err := sqlx.In(`
		SELECT `+candidateColumns+`
		FROM questions q
		LEFT JOIN user_progress p ON p.question_id = q.id AND p.user_id = ?
		WHERE q.country = ? AND q.language = ?
		  AND q.topic IN (?)
	`, userID, country, language, topics)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build topic filter")
	}

	var out []Candidate
	if err := DB.SelectContext(ctx, &out, DB.Rebind(query), args...); err != nil {
		return nil, errors.Wrap(err, "failed to get topic candidates")
	}
	return out, nil
}

// CandidatesNew returns catalog questions the user has never answered.
func (r *QuestionRepository) CandidatesNew(ctx context.Context, userID uuid.UUID, country, language string) ([]Candidate, error) {
	query := DB.Rebind(`
		SELECT ` + candidateColumns + `
		FROM questions q
		LEFT JOIN user_progress p ON p.question_id = q.id AND p.user_id = ?
		WHERE q.country = ? AND q.language = ?
		  AND p.id IS NULL
	`)
	var out []Candidate
	if err := DB.SelectContext(ctx, &out, query, userID, country, language); err != nil {
		return nil, errors.Wrap(err, "failed to get new candidates")
	}
	return out, nil
}

// CandidatesWrong returns catalog questions whose latest answer by the user
// was incorrect.
func (r *QuestionRepository) CandidatesWrong(ctx context.Context, userID uuid.UUID, country, language string) ([]Candidate, error) {
	query := DB.Rebind(`
		SELECT ` + candidateColumns + `
		FROM questions q
		JOIN user_progress p ON p.question_id = q.id AND p.user_id = ?
		WHERE q.country = ? AND q.language = ?
		  AND p.is_correct = FALSE
	`)
	var out []Candidate
	if err := DB.SelectContext(ctx, &out, query, userID, country, language); err != nil {
		return nil, errors.Wrap(err, "failed to get wrong-answer candidates")
	}
	return out, nil
}
