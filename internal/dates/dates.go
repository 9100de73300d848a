// Package dates implements partial-date parsing and yearly recurrence math.
//
// Contact sources deliver birth dates in two canonical shapes: a full ISO
// date "YYYY-MM-DD", or the vCard-style year-omitted form "--MM-DD". Both
// resolve here, once, into the tagged PartialDate type; business logic never
// re-derives "yearlessness" from sentinel strings or magic year values.
package dates

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrUnrecognized is returned for any input that is not one of the two
// canonical shapes. It is a terminal state, not a fault: callers fall back to
// displaying the raw string and skip recurrence and event reconciliation.
var ErrUnrecognized = errors.New("dates: unrecognized date format")

// MinKnownYear is the sanity threshold for source years. Address books store
// "year unknown" as an out-of-range year (e.g. 0001); anything below the
// threshold is treated as no year at all.
const MinKnownYear = 1800

// PartialDate is a calendar date whose year may be unknown. A zero Year means
// the date denotes a recurring month/day with no fixed origin year.
type PartialDate struct {
	Month time.Month
	Day   int
	Year  int
}

// HasYear reports whether the origin year is known.
func (d PartialDate) HasYear() bool { return d.Year != 0 }

// SameMonthDay reports recurrence equality, ignoring years.
func (d PartialDate) SameMonthDay(other PartialDate) bool {
	return d.Month == other.Month && d.Day == other.Day
}

// String renders the date back in its canonical source shape.
func (d PartialDate) String() string {
	if d.HasYear() {
		return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
	}
	return fmt.Sprintf("--%02d-%02d", int(d.Month), d.Day)
}

// Resolve parses a raw date string of unknown provenance.
//
// Recognized shapes:
//   - "YYYY-MM-DD": full date. Years below MinKnownYear are discarded and the
//     result is month/day only.
//   - "--MM-DD": month/day with no year.
//
// Anything else yields ErrUnrecognized. The resolver never guesses alternate
// formats.
func Resolve(raw string) (PartialDate, error) {
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, "--") {
		return resolveYearless(s)
	}

	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return PartialDate{}, ErrUnrecognized
	}
	d := PartialDate{Month: t.Month(), Day: t.Day(), Year: t.Year()}
	if d.Year < MinKnownYear {
		d.Year = 0
	}
	return d, nil
}

func resolveYearless(s string) (PartialDate, error) {
	// Exact shape "--MM-DD".
	if len(s) != 7 || s[4] != '-' {
		return PartialDate{}, ErrUnrecognized
	}
	month, ok1 := atoi2(s[2:4])
	day, ok2 := atoi2(s[5:7])
	if !ok1 || !ok2 {
		return PartialDate{}, ErrUnrecognized
	}
	if month < 1 || month > 12 {
		return PartialDate{}, ErrUnrecognized
	}
	// Feb 29 is a valid recurring month/day; validate against a leap year.
	if day < 1 || day > daysInMonth(time.Month(month)) {
		return PartialDate{}, ErrUnrecognized
	}
	return PartialDate{Month: time.Month(month), Day: day}, nil
}

func atoi2(s string) (int, bool) {
	if len(s) != 2 || s[0] < '0' || s[0] > '9' || s[1] < '0' || s[1] > '9' {
		return 0, false
	}
	return int(s[0]-'0')*10 + int(s[1]-'0'), true
}

func daysInMonth(m time.Month) int {
	switch m {
	case time.February:
		return 29
	case time.April, time.June, time.September, time.November:
		return 30
	default:
		return 31
	}
}
