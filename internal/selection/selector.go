// Package selection turns a practice mode plus filters into an ordered batch
// of candidate questions.
package selection

import (
	"context"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/example/examtrainer/internal/database"
	"github.com/example/examtrainer/pkg/models"
)

// Mode selects the candidate rule for a practice batch.
type Mode string

const (
	// ModeIntervalAll serves unseen questions plus everything due for review.
	ModeIntervalAll Mode = "interval_all"
	// ModeNewOnly serves only questions without a progress record.
	ModeNewOnly Mode = "new_only"
	// ModeShownBefore serves questions whose latest answer was wrong.
	ModeShownBefore Mode = "shown_before"
	// ModeTopics serves a topic slice of the catalog regardless of due state.
	ModeTopics Mode = "topics"
)

// Batch size bounds; requests outside them are clamped, not rejected.
const (
	MinBatchSize = 1
	MaxBatchSize = 50
)

// Request carries the selection inputs. Country and language are normalized
// to lowercase; the user's own exam settings override them when present.
type Request struct {
	UserID    uuid.UUID
	Mode      Mode
	Country   string
	Language  string
	Topics    []string
	BatchSize int
}

// Selector builds candidate batches from the catalog joined with the user's
// progress state.
type Selector struct {
	users     *database.UserRepository
	questions *database.QuestionRepository
	now       func() time.Time
	log       *zap.SugaredLogger
}

// New creates a selector over the shared store.
func New(users *database.UserRepository, questions *database.QuestionRepository, log *zap.SugaredLogger) *Selector {
	return &Selector{
		users:     users,
		questions: questions,
		now:       time.Now,
		log:       log,
	}
}

// WithClock overrides the due-date clock, used in tests.
func (s *Selector) WithClock(now func() time.Time) *Selector {
	s.now = now
	return s
}

// Select validates the request, gathers candidates for the mode, applies
// priority and uniform-random ordering, and truncates to the batch size. A
// page shorter than the batch size is not an error. Two calls over an
// unchanged candidate set may return different orders or subsets.
func (s *Selector) Select(ctx context.Context, req Request) ([]models.Question, error) {
	user, err := s.users.GetByID(ctx, req.UserID)
	if err != nil {
		return nil, err
	}

	country := strings.ToLower(strings.TrimSpace(req.Country))
	language := strings.ToLower(strings.TrimSpace(req.Language))
	if user.ExamCountry != "" {
		country = user.ExamCountry
	}
	if user.ExamLanguage != "" {
		language = user.ExamLanguage
	}

	batchSize := req.BatchSize
	if batchSize < MinBatchSize {
		batchSize = MinBatchSize
	}
	if batchSize > MaxBatchSize {
		batchSize = MaxBatchSize
	}

	mode := req.Mode
	topics := normalizeTopics(req.Topics)
	if mode == ModeTopics && len(topics) == 0 {
		// Deliberate degradation, not an error: an empty topic set means
		// the caller wants the default interval selection.
		s.log.Debugw("topics mode without topics, falling back", "user_id", req.UserID)
		mode = ModeIntervalAll
	}

	var candidates []database.Candidate
	prioritized := false

	switch mode {
	case ModeIntervalAll:
		candidates, err = s.questions.CandidatesDue(ctx, user.ID, country, language, s.now().UTC())
		prioritized = true
	case ModeTopics:
		// The topic slice ignores due state: every catalog question in
		// the set is a candidate.
		candidates, err = s.questions.CandidatesTopics(ctx, user.ID, country, language, topics)
		prioritized = true
	case ModeNewOnly:
		candidates, err = s.questions.CandidatesNew(ctx, user.ID, country, language)
	case ModeShownBefore:
		candidates, err = s.questions.CandidatesWrong(ctx, user.ID, country, language)
	default:
		return nil, errors.Wrapf(database.ErrInvalidArgument, "unknown mode %q", req.Mode)
	}
	if err != nil {
		return nil, err
	}

	ordered := order(candidates, prioritized)
	if len(ordered) > batchSize {
		ordered = ordered[:batchSize]
	}

	questions := make([]models.Question, len(ordered))
	for i, c := range ordered {
		questions[i] = c.Question
	}
	return questions, nil
}

// order shuffles candidates uniformly. In prioritized modes questions with a
// wrong latest answer come first; the shuffle is the tiebreak within each
// priority class. The shuffle runs at the application boundary so ordering
// stays portable across storage engines.
func order(candidates []database.Candidate, prioritized bool) []database.Candidate {
	if !prioritized {
		shuffled := append([]database.Candidate(nil), candidates...)
		rand.Shuffle(len(shuffled), func(i, j int) {
			shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
		})
		return shuffled
	}

	var wrong, rest []database.Candidate
	for _, c := range candidates {
		if c.HasProgress && c.WrongAnswer {
			wrong = append(wrong, c)
		} else {
			rest = append(rest, c)
		}
	}
	rand.Shuffle(len(wrong), func(i, j int) { wrong[i], wrong[j] = wrong[j], wrong[i] })
	rand.Shuffle(len(rest), func(i, j int) { rest[i], rest[j] = rest[j], rest[i] })
	return append(wrong, rest...)
}

func normalizeTopics(topics []string) []string {
	out := make([]string, 0, len(topics))
	for _, topic := range topics {
		topic = strings.TrimSpace(topic)
		if topic != "" {
			out = append(out, topic)
		}
	}
	return out
}
