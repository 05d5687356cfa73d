package spaced_repetition

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIntervalDays(t *testing.T) {
	tests := []struct {
		name  string
		count int
		want  int
	}{
		{"new pair", 0, 0},
		{"first correct", 1, 1},
		{"second correct", 2, 1},
		{"third correct", 3, 2},
		{"fourth correct", 4, 3},
		{"mid ladder", 10, 55},
		{"last level", 19, 4181},
		{"cap", 20, 6765},
		{"beyond cap", 21, 6765},
		{"far beyond cap", 1000, 6765},
		{"negative clamps to zero", -3, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IntervalDays(tt.count))
		})
	}
}

func TestIntervalDaysCapIsStable(t *testing.T) {
	// Every position at or past MaxLevel must share the capped interval.
	for count := MaxLevel; count < MaxLevel+50; count++ {
		assert.Equal(t, IntervalDays(MaxLevel), IntervalDays(count))
	}
}

func TestNextDue(t *testing.T) {
	now := time.Date(2025, 7, 9, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, now, NextDue(0, now), "level zero is immediately due")
	assert.Equal(t, now.AddDate(0, 0, 1), NextDue(1, now))
	assert.Equal(t, now.AddDate(0, 0, 2), NextDue(3, now))
	assert.Equal(t, now.AddDate(0, 0, 6765), NextDue(40, now))
}

func TestNextCount(t *testing.T) {
	assert.Equal(t, 1, NextCount(0, true), "first correct answer reaches level one")
	assert.Equal(t, 4, NextCount(3, true))
	assert.Equal(t, 0, NextCount(0, false))
	assert.Equal(t, 0, NextCount(17, false), "a wrong answer resets any streak")
}
