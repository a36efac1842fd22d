package challenge

import (
	"time"

	"challengebot/internal/common"
)

// CurrentDayFor returns the 1-based challenge day for a user who started on
// start, as of the calendar date asOf. It returns 0 when the user has no
// start date or asOf precedes it, and never exceeds totalDays.
func CurrentDayFor(start *time.Time, asOf time.Time, totalDays int) int {
	if start == nil {
		return 0
	}
	days := common.DaysBetween(*start, asOf)
	if days < 0 {
		return 0
	}
	day := days + 1
	if totalDays > 0 && day > totalDays {
		return totalDays
	}
	return day
}

// dayFor computes the user's day against the active challenge, or 0 when
// there is no active challenge.
func dayFor(u *User, c *Challenge, today time.Time) int {
	if c == nil {
		return 0
	}
	return CurrentDayFor(u.ChallengeStartDate, today, c.TotalDays)
}
