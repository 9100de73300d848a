package dates

import "time"

// NextOccurrence returns the soonest calendar date on or after today that
// matches the month/day of d. Same-day matches count as today.
//
// Feb 29 policy: time.Date normalization applies, so in non-leap years the
// occurrence lands on Mar 1. The rule is applied identically for the
// current-year candidate and the advanced one, keeping results consistent
// across calls for the same input.
func NextOccurrence(d PartialDate, today time.Time) time.Time {
	loc := today.Location()
	todayStart := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, loc)

	candidate := time.Date(today.Year(), d.Month, d.Day, 0, 0, 0, 0, loc)
	if candidate.Before(todayStart) {
		candidate = time.Date(today.Year()+1, d.Month, d.Day, 0, 0, 0, 0, loc)
	}
	return candidate
}

// DaysUntil returns the whole calendar days between today and next, never
// negative. Zero means next is today. Both arguments are normalized to their
// calendar dates, so time-of-day and DST shifts do not skew the count.
func DaysUntil(next, today time.Time) int {
	n := time.Date(next.Year(), next.Month(), next.Day(), 0, 0, 0, 0, time.UTC)
	t := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	days := int(n.Sub(t) / (24 * time.Hour))
	if days < 0 {
		return 0
	}
	return days
}
