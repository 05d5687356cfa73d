package spaced_repetition

import "time"

// fibDays is the precomputed review ladder in days. Twenty-one levels cap
// the interval at 6765 days, roughly 18.5 years.
var fibDays = [...]int{
	0, 1, 1, 2, 3, 5, 8, 13, 21, 34,
	55, 89, 144, 233, 377, 610, 987,
	1597, 2584, 4181, 6765,
}

// MaxLevel is the highest distinct ladder position; positions beyond it
// stay at the capped interval.
const MaxLevel = len(fibDays) - 1

// IntervalDays returns the review interval in days for a ladder position.
func IntervalDays(repetitionCount int) int {
	if repetitionCount < 0 {
		repetitionCount = 0
	}
	if repetitionCount > MaxLevel {
		repetitionCount = MaxLevel
	}
	return fibDays[repetitionCount]
}

// NextDue returns the moment a question becomes eligible for review again.
func NextDue(repetitionCount int, now time.Time) time.Time {
	return now.AddDate(0, 0, IntervalDays(repetitionCount))
}

// NextCount applies one answer to a ladder position: a correct answer climbs
// one level, a wrong answer drops back to the bottom. A brand-new pair is
// level zero, so the first correct answer lands on level one.
func NextCount(current int, isCorrect bool) int {
	if !isCorrect {
		return 0
	}
	return current + 1
}
