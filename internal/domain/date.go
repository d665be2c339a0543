package domain

import "time"

// Calendar dates are represented as time.Time values at midnight UTC. Every date
// that enters the domain goes through DateOf so comparisons and map keys agree.

// DateOf returns the calendar date of t as observed in loc, expressed at midnight UTC.
func DateOf(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// AddDays moves a calendar date by n days.
func AddDays(date time.Time, n int) time.Time {
	return date.AddDate(0, 0, n)
}

// DaysBetween returns the number of whole calendar days from a to b (negative
// when b is before a). Both values are normalized with DateOf first.
func DaysBetween(a, b time.Time) int {
	a, b = DateOf(a, time.UTC), DateOf(b, time.UTC)
	return int(b.Sub(a).Hours() / 24)
}
