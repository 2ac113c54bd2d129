package domain

import "time"

// Clock supplies "today" as a calendar date. All date comparisons in the core
// go through it so tests can pin the calendar.
type Clock interface {
	Today() time.Time
}

type systemClock struct{}

func (systemClock) Today() time.Time {
	return Date(time.Now())
}

func SystemClock() Clock {
	return systemClock{}
}

// Date truncates t to midnight UTC.
func Date(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// FixedClock returns a clock pinned to the given date, for tests.
type FixedClock struct {
	Now time.Time
}

func (c FixedClock) Today() time.Time {
	return Date(c.Now)
}
