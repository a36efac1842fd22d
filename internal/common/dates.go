package common

import "time"

// Date returns the calendar date of t, in t's location, as a UTC midnight
// value. Two such values always differ by a whole number of 24h days.
func Date(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DateIn returns the calendar date of t as observed in loc.
func DateIn(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return Date(t.In(loc))
}

// DaysBetween returns the number of whole calendar days from a to b.
func DaysBetween(a, b time.Time) int {
	return int(Date(b).Sub(Date(a)).Hours() / 24)
}

// SameDate reports whether the optional date a falls on the same calendar date as b.
func SameDate(a *time.Time, b time.Time) bool {
	if a == nil {
		return false
	}
	return Date(*a).Equal(Date(b))
}
