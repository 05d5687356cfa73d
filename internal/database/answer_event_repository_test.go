package database_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/examtrainer/internal/database"
	"github.com/example/examtrainer/internal/database/dbtest"
)

func TestIsDuplicateClientTimestamp(t *testing.T) {
	dbtest.Setup(t)
	events := database.NewAnswerEventRepository()
	ctx := context.Background()

	user := dbtest.SeedUser(t, "am", "ru")
	questionID := dbtest.SeedQuestion(t, "signs", "am", "ru")

	answeredAt := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	clientAt := answeredAt.Add(-2 * time.Second)
	dbtest.SeedEvent(t, user.ID, questionID, true, answeredAt, &clientAt)

	now := answeredAt.Add(time.Hour)

	// Same client timestamp resubmitted later: caught by the
	// client_answered_at match.
	dup, err := events.IsDuplicate(ctx, nil, user.ID, questionID, &clientAt, now)
	require.NoError(t, err)
	assert.True(t, dup)

	// Within tolerance of the recorded server time.
	near := answeredAt.Add(500 * time.Millisecond)
	dup, err = events.IsDuplicate(ctx, nil, user.ID, questionID, &near, now)
	require.NoError(t, err)
	assert.True(t, dup)

	// Outside both windows: a distinct answer.
	far := answeredAt.Add(time.Minute)
	dup, err = events.IsDuplicate(ctx, nil, user.ID, questionID, &far, now)
	require.NoError(t, err)
	assert.False(t, dup)

	// Other question, same timestamp.
	otherQuestion := dbtest.SeedQuestion(t, "signs", "am", "ru")
	dup, err = events.IsDuplicate(ctx, nil, user.ID, otherQuestion, &clientAt, now)
	require.NoError(t, err)
	assert.False(t, dup)
}

func TestIsDuplicateLegacyWindow(t *testing.T) {
	dbtest.Setup(t)
	events := database.NewAnswerEventRepository()
	ctx := context.Background()

	user := dbtest.SeedUser(t, "am", "ru")
	questionID := dbtest.SeedQuestion(t, "signs", "am", "ru")

	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	dbtest.SeedEvent(t, user.ID, questionID, true, now.Add(-2*time.Minute), nil)

	// No client timestamp: any event in the last five minutes collides.
	dup, err := events.IsDuplicate(ctx, nil, user.ID, questionID, nil, now)
	require.NoError(t, err)
	assert.True(t, dup)

	// Once the recorded event ages past the window it no longer blocks.
	dup, err = events.IsDuplicate(ctx, nil, user.ID, questionID, nil, now.Add(10*time.Minute))
	require.NoError(t, err)
	assert.False(t, dup)
}

func TestEventsForPairInsertionOrder(t *testing.T) {
	dbtest.Setup(t)
	events := database.NewAnswerEventRepository()
	ctx := context.Background()

	user := dbtest.SeedUser(t, "am", "ru")
	questionID := dbtest.SeedQuestion(t, "signs", "am", "ru")

	// Identical answered_at: the tie breaks by insertion order, not by
	// the random event IDs. Distinct client timestamps mark each insert.
	at := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	marks := make([]time.Time, 5)
	for i := range marks {
		marks[i] = at.Add(time.Duration(i) * time.Second)
		dbtest.SeedEvent(t, user.ID, questionID, i%2 == 0, at, &marks[i])
	}

	history, err := events.EventsForPair(ctx, user.ID, questionID)
	require.NoError(t, err)
	require.Len(t, history, len(marks))
	for i, mark := range marks {
		require.NotNil(t, history[i].ClientAnsweredAt)
		assert.True(t, history[i].ClientAnsweredAt.Equal(mark))
	}
}

func TestDistinctCorrectInWindow(t *testing.T) {
	dbtest.Setup(t)
	events := database.NewAnswerEventRepository()
	ctx := context.Background()

	user := dbtest.SeedUser(t, "am", "ru")
	first := dbtest.SeedQuestion(t, "signs", "am", "ru")
	second := dbtest.SeedQuestion(t, "signs", "am", "ru")
	third := dbtest.SeedQuestion(t, "signs", "am", "ru")

	start := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 1)

	// Correct twice: still one distinct question.
	dbtest.SeedEvent(t, user.ID, first, true, start.Add(9*time.Hour), nil)
	dbtest.SeedEvent(t, user.ID, first, true, start.Add(10*time.Hour), nil)

	// Correct then wrong inside the window: the correct event still counts.
	dbtest.SeedEvent(t, user.ID, second, true, start.Add(11*time.Hour), nil)
	dbtest.SeedEvent(t, user.ID, second, false, start.Add(12*time.Hour), nil)

	// Only wrong answers.
	dbtest.SeedEvent(t, user.ID, third, false, start.Add(13*time.Hour), nil)

	// Outside the window.
	dbtest.SeedEvent(t, user.ID, third, true, end.Add(time.Hour), nil)

	count, err := events.DistinctCorrectInWindow(ctx, user.ID, start, end)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}
