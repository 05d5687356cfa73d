package selection_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/example/examtrainer/internal/database"
	"github.com/example/examtrainer/internal/database/dbtest"
	"github.com/example/examtrainer/internal/selection"
	"github.com/example/examtrainer/pkg/models"
)

func newSelector(t *testing.T, now time.Time) *selection.Selector {
	t.Helper()
	s := selection.New(
		database.NewUserRepository(),
		database.NewQuestionRepository(),
		zap.NewNop().Sugar(),
	)
	return s.WithClock(func() time.Time { return now })
}

func questionIDs(questions []models.Question) map[int64]bool {
	ids := make(map[int64]bool, len(questions))
	for _, q := range questions {
		ids[q.ID] = true
	}
	return ids
}

func TestSelectIntervalAll(t *testing.T) {
	dbtest.Setup(t)
	ctx := context.Background()
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	selector := newSelector(t, now)

	user := dbtest.SeedUser(t, "am", "ru")
	unseen := dbtest.SeedQuestion(t, "signs", "am", "ru")
	due := dbtest.SeedQuestion(t, "signs", "am", "ru")
	notDue := dbtest.SeedQuestion(t, "signs", "am", "ru")
	otherCatalog := dbtest.SeedQuestion(t, "signs", "de", "de")

	answered := now.Add(-48 * time.Hour)
	dbtest.SeedProgress(t, user.ID, due, 1, true, answered, now.Add(-time.Hour))
	dbtest.SeedProgress(t, user.ID, notDue, 2, true, answered, now.AddDate(0, 0, 3))

	questions, err := selector.Select(ctx, selection.Request{
		UserID:    user.ID,
		Mode:      selection.ModeIntervalAll,
		BatchSize: 10,
	})
	require.NoError(t, err)

	ids := questionIDs(questions)
	assert.Len(t, questions, 2)
	assert.True(t, ids[unseen])
	assert.True(t, ids[due])
	assert.False(t, ids[notDue])
	assert.False(t, ids[otherCatalog])
}

func TestSelectNewOnly(t *testing.T) {
	dbtest.Setup(t)
	ctx := context.Background()
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	selector := newSelector(t, now)

	user := dbtest.SeedUser(t, "am", "ru")
	unseen := dbtest.SeedQuestion(t, "signs", "am", "ru")
	seen := dbtest.SeedQuestion(t, "signs", "am", "ru")

	// Recorded pairs stay out of new_only even when long overdue.
	dbtest.SeedProgress(t, user.ID, seen, 0, false, now.Add(-72*time.Hour), now.Add(-72*time.Hour))

	questions, err := selector.Select(ctx, selection.Request{
		UserID:    user.ID,
		Mode:      selection.ModeNewOnly,
		BatchSize: 10,
	})
	require.NoError(t, err)

	require.Len(t, questions, 1)
	assert.Equal(t, unseen, questions[0].ID)
}

func TestSelectShownBefore(t *testing.T) {
	dbtest.Setup(t)
	ctx := context.Background()
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	selector := newSelector(t, now)

	user := dbtest.SeedUser(t, "am", "ru")
	dbtest.SeedQuestion(t, "signs", "am", "ru")
	wrong := dbtest.SeedQuestion(t, "signs", "am", "ru")
	correct := dbtest.SeedQuestion(t, "signs", "am", "ru")

	answered := now.Add(-time.Hour)
	dbtest.SeedProgress(t, user.ID, wrong, 0, false, answered, answered)
	dbtest.SeedProgress(t, user.ID, correct, 1, true, answered, now.AddDate(0, 0, 1))

	questions, err := selector.Select(ctx, selection.Request{
		UserID:    user.ID,
		Mode:      selection.ModeShownBefore,
		BatchSize: 10,
	})
	require.NoError(t, err)

	require.Len(t, questions, 1)
	assert.Equal(t, wrong, questions[0].ID)
}

func TestSelectWrongAnswersFirst(t *testing.T) {
	dbtest.Setup(t)
	ctx := context.Background()
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	selector := newSelector(t, now)

	user := dbtest.SeedUser(t, "am", "ru")
	answered := now.Add(-time.Hour)

	wrongIDs := make(map[int64]bool)
	for i := 0; i < 3; i++ {
		id := dbtest.SeedQuestion(t, "signs", "am", "ru")
		dbtest.SeedProgress(t, user.ID, id, 0, false, answered, answered)
		wrongIDs[id] = true
	}
	for i := 0; i < 3; i++ {
		dbtest.SeedQuestion(t, "signs", "am", "ru")
	}

	questions, err := selector.Select(ctx, selection.Request{
		UserID:    user.ID,
		Mode:      selection.ModeIntervalAll,
		BatchSize: 10,
	})
	require.NoError(t, err)
	require.Len(t, questions, 6)

	// All wrong-answer questions precede every unseen one.
	for i, q := range questions {
		if i < 3 {
			assert.True(t, wrongIDs[q.ID])
		} else {
			assert.False(t, wrongIDs[q.ID])
		}
	}
}

func TestSelectTopics(t *testing.T) {
	dbtest.Setup(t)
	ctx := context.Background()
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	selector := newSelector(t, now)

	user := dbtest.SeedUser(t, "am", "ru")
	signs := dbtest.SeedQuestion(t, "signs", "am", "ru")
	rules := dbtest.SeedQuestion(t, "rules", "am", "ru")
	parking := dbtest.SeedQuestion(t, "parking", "am", "ru")

	// Answered correctly yesterday and not due for two more days: the
	// topic slice serves it anyway.
	notDue := dbtest.SeedQuestion(t, "signs", "am", "ru")
	dbtest.SeedProgress(t, user.ID, notDue, 1, true, now.AddDate(0, 0, -1), now.AddDate(0, 0, 2))

	questions, err := selector.Select(ctx, selection.Request{
		UserID:    user.ID,
		Mode:      selection.ModeTopics,
		Topics:    []string{"signs", "rules"},
		BatchSize: 10,
	})
	require.NoError(t, err)

	ids := questionIDs(questions)
	assert.Len(t, questions, 3)
	assert.True(t, ids[signs])
	assert.True(t, ids[rules])
	assert.True(t, ids[notDue])
	assert.False(t, ids[parking])
}

func TestSelectTopicsEmptyFallsBack(t *testing.T) {
	dbtest.Setup(t)
	ctx := context.Background()
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	selector := newSelector(t, now)

	user := dbtest.SeedUser(t, "am", "ru")
	unseen := dbtest.SeedQuestion(t, "signs", "am", "ru")

	questions, err := selector.Select(ctx, selection.Request{
		UserID:    user.ID,
		Mode:      selection.ModeTopics,
		BatchSize: 10,
	})
	require.NoError(t, err)

	require.Len(t, questions, 1)
	assert.Equal(t, unseen, questions[0].ID)
}

func TestSelectClampsBatchSize(t *testing.T) {
	dbtest.Setup(t)
	ctx := context.Background()
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	selector := newSelector(t, now)

	user := dbtest.SeedUser(t, "am", "ru")
	for i := 0; i < 60; i++ {
		dbtest.SeedQuestion(t, "signs", "am", "ru")
	}

	questions, err := selector.Select(ctx, selection.Request{
		UserID:    user.ID,
		Mode:      selection.ModeIntervalAll,
		BatchSize: 500,
	})
	require.NoError(t, err)
	assert.Len(t, questions, selection.MaxBatchSize)

	questions, err = selector.Select(ctx, selection.Request{
		UserID:    user.ID,
		Mode:      selection.ModeIntervalAll,
		BatchSize: -3,
	})
	require.NoError(t, err)
	assert.Len(t, questions, selection.MinBatchSize)
}

func TestSelectUnknownMode(t *testing.T) {
	dbtest.Setup(t)
	ctx := context.Background()
	selector := newSelector(t, time.Now().UTC())

	user := dbtest.SeedUser(t, "am", "ru")

	_, err := selector.Select(ctx, selection.Request{
		UserID:    user.ID,
		Mode:      selection.Mode("speedrun"),
		BatchSize: 10,
	})
	assert.True(t, database.IsInvalidArgument(err))
}

func TestSelectUserSettingsOverrideFilters(t *testing.T) {
	dbtest.Setup(t)
	ctx := context.Background()
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	selector := newSelector(t, now)

	user := dbtest.SeedUser(t, "am", "ru")
	own := dbtest.SeedQuestion(t, "signs", "am", "ru")
	dbtest.SeedQuestion(t, "signs", "de", "de")

	// The request asks for the German catalog; the user's exam settings win.
	questions, err := selector.Select(ctx, selection.Request{
		UserID:    user.ID,
		Mode:      selection.ModeIntervalAll,
		Country:   "DE",
		Language:  "de",
		BatchSize: 10,
	})
	require.NoError(t, err)

	require.Len(t, questions, 1)
	assert.Equal(t, own, questions[0].ID)
}
