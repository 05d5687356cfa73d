package mastery_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/example/examtrainer/internal/database"
	"github.com/example/examtrainer/internal/database/dbtest"
	"github.com/example/examtrainer/internal/mastery"
)

func newAggregator(t *testing.T, strict bool) *mastery.Aggregator {
	t.Helper()
	return mastery.New(
		database.NewUserRepository(),
		database.NewUserProgressRepository(),
		database.NewAnswerEventRepository(),
		strict,
		0,
		zap.NewNop().Sugar(),
	)
}

func TestComputeCanonical(t *testing.T) {
	dbtest.Setup(t)
	ctx := context.Background()
	agg := newAggregator(t, false)

	user := dbtest.SeedUser(t, "am", "ru")
	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	mastered := dbtest.SeedQuestion(t, "signs", "am", "ru")
	dbtest.SeedProgress(t, user.ID, mastered, 2, true, day.Add(10*time.Hour), day.AddDate(0, 0, 2))

	// Mastered earlier but answered wrong today: the current record is
	// wrong, so the canonical count excludes it.
	relapsed := dbtest.SeedQuestion(t, "signs", "am", "ru")
	dbtest.SeedProgress(t, user.ID, relapsed, 0, false, day.Add(11*time.Hour), day.Add(11*time.Hour))
	dbtest.SeedEvent(t, user.ID, relapsed, true, day.Add(9*time.Hour), nil)
	dbtest.SeedEvent(t, user.ID, relapsed, false, day.Add(11*time.Hour), nil)

	yesterday := dbtest.SeedQuestion(t, "signs", "am", "ru")
	dbtest.SeedProgress(t, user.ID, yesterday, 3, true, day.Add(-2*time.Hour), day.AddDate(0, 0, 3))

	report, err := agg.Compute(ctx, user.ID, day.Add(15*time.Hour), time.UTC)
	require.NoError(t, err)

	assert.Equal(t, "2026-03-10", report.Date)
	assert.Equal(t, 1, report.MasteredCount)
	assert.Equal(t, mastery.DefaultDailyGoal, report.DailyGoal)
}

func TestComputeStrict(t *testing.T) {
	dbtest.Setup(t)
	ctx := context.Background()
	agg := newAggregator(t, true)

	user := dbtest.SeedUser(t, "am", "ru")
	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	// Correct then wrong the same day: strict still counts the question.
	relapsed := dbtest.SeedQuestion(t, "signs", "am", "ru")
	dbtest.SeedProgress(t, user.ID, relapsed, 0, false, day.Add(11*time.Hour), day.Add(11*time.Hour))
	dbtest.SeedEvent(t, user.ID, relapsed, true, day.Add(9*time.Hour), nil)
	dbtest.SeedEvent(t, user.ID, relapsed, false, day.Add(11*time.Hour), nil)

	report, err := agg.Compute(ctx, user.ID, day.Add(15*time.Hour), time.UTC)
	require.NoError(t, err)
	assert.Equal(t, 1, report.MasteredCount)
}

func TestComputeUsesUserGoal(t *testing.T) {
	dbtest.Setup(t)
	ctx := context.Background()
	agg := newAggregator(t, false)

	user := dbtest.SeedUser(t, "am", "ru")
	goal := 12
	_, err := database.DB.Exec(
		database.DB.Rebind("UPDATE users SET daily_goal = ? WHERE id = ?"),
		goal, user.ID,
	)
	require.NoError(t, err)

	report, err := agg.Compute(ctx, user.ID, time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC), time.UTC)
	require.NoError(t, err)
	assert.Equal(t, goal, report.DailyGoal)
	assert.Equal(t, 0, report.MasteredCount)
}

func TestComputeDayBoundaries(t *testing.T) {
	dbtest.Setup(t)
	ctx := context.Background()
	agg := newAggregator(t, false)

	user := dbtest.SeedUser(t, "am", "ru")
	loc := time.FixedZone("UTC+4", 4*60*60)
	day := time.Date(2026, 3, 10, 0, 0, 0, 0, loc)

	atMidnight := dbtest.SeedQuestion(t, "signs", "am", "ru")
	dbtest.SeedProgress(t, user.ID, atMidnight, 1, true, day, day.AddDate(0, 0, 1))

	beforeMidnight := dbtest.SeedQuestion(t, "signs", "am", "ru")
	dbtest.SeedProgress(t, user.ID, beforeMidnight, 1, true, day.Add(-time.Second), day.AddDate(0, 0, 1))

	nextDay := dbtest.SeedQuestion(t, "signs", "am", "ru")
	dbtest.SeedProgress(t, user.ID, nextDay, 1, true, day.Add(24*time.Hour), day.AddDate(0, 0, 2))

	report, err := agg.Compute(ctx, user.ID, day.Add(8*time.Hour), loc)
	require.NoError(t, err)

	assert.Equal(t, "2026-03-10", report.Date)
	assert.Equal(t, 1, report.MasteredCount)
}
