package dates

import (
	"errors"
	"testing"
	"time"
)

func TestResolve_FullDate(t *testing.T) {
	d, err := Resolve("1990-05-15")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Year != 1990 || d.Month != time.May || d.Day != 15 {
		t.Errorf("got %+v, want 1990-05-15", d)
	}
	if !d.HasYear() {
		t.Error("HasYear() = false, want true")
	}
}

func TestResolve_YearBelowThreshold(t *testing.T) {
	// Address books encode "year unknown" as an out-of-range year.
	d, err := Resolve("0001-03-15")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.HasYear() {
		t.Errorf("year %d should have been discarded", d.Year)
	}
	if d.Month != time.March || d.Day != 15 {
		t.Errorf("got %v-%d, want March-15", d.Month, d.Day)
	}
}

func TestResolve_ThresholdBoundary(t *testing.T) {
	d, err := Resolve("1800-01-01")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Year != 1800 {
		t.Errorf("year = %d, want 1800 kept at the boundary", d.Year)
	}
}

func TestResolve_Yearless(t *testing.T) {
	d, err := Resolve("--02-29")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.HasYear() {
		t.Error("HasYear() = true for --MM-DD input")
	}
	if d.Month != time.February || d.Day != 29 {
		t.Errorf("got %v-%d, want February-29", d.Month, d.Day)
	}
}

func TestResolve_Rejections(t *testing.T) {
	for _, raw := range []string{
		"",
		"hello",
		"2024-13-40",
		"2024-02-30",
		"--13-01",
		"--02-30",
		"--2-9",
		"--02_29",
		"15.05.1990",
		"1990/05/15",
	} {
		if _, err := Resolve(raw); !errors.Is(err, ErrUnrecognized) {
			t.Errorf("Resolve(%q) err = %v, want ErrUnrecognized", raw, err)
		}
	}
}

func TestResolve_RoundTrip(t *testing.T) {
	for _, raw := range []string{"1990-05-15", "--02-29", "--12-01"} {
		d, err := Resolve(raw)
		if err != nil {
			t.Fatalf("Resolve(%q): %v", raw, err)
		}
		if d.String() != raw {
			t.Errorf("String() = %q, want %q", d.String(), raw)
		}
	}
}

func TestNextOccurrence_SameDay(t *testing.T) {
	today := time.Date(2024, 1, 15, 13, 45, 0, 0, time.UTC)
	d := PartialDate{Month: time.January, Day: 15}
	next := NextOccurrence(d, today)
	if next.Year() != 2024 || next.Month() != time.January || next.Day() != 15 {
		t.Errorf("next = %v, want 2024-01-15", next)
	}
	if DaysUntil(next, today) != 0 {
		t.Errorf("DaysUntil = %d, want 0", DaysUntil(next, today))
	}
}

func TestNextOccurrence_Passed(t *testing.T) {
	today := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	d := PartialDate{Month: time.January, Day: 10}
	next := NextOccurrence(d, today)
	if next.Year() != 2025 || next.Month() != time.January || next.Day() != 10 {
		t.Errorf("next = %v, want 2025-01-10", next)
	}
}

func TestNextOccurrence_Upcoming(t *testing.T) {
	today := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	d := PartialDate{Month: time.January, Day: 20}
	next := NextOccurrence(d, today)
	if next.Year() != 2024 || next.Day() != 20 {
		t.Errorf("next = %v, want 2024-01-20", next)
	}
	if got := DaysUntil(next, today); got != 5 {
		t.Errorf("DaysUntil = %d, want 5", got)
	}
}

func TestNextOccurrence_FixedPoint(t *testing.T) {
	// Calling again with today = previous result must return the same date;
	// one day past it must advance exactly one year.
	d := PartialDate{Month: time.July, Day: 4}
	today := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	next := NextOccurrence(d, today)
	if again := NextOccurrence(d, next); !again.Equal(next) {
		t.Errorf("fixed point broken: %v then %v", next, again)
	}

	after := NextOccurrence(d, next.AddDate(0, 0, 1))
	if after.Year() != next.Year()+1 {
		t.Errorf("advanced to %v, want one year after %v", after, next)
	}
}

func TestNextOccurrence_LeapDayNonLeapYear(t *testing.T) {
	d := PartialDate{Month: time.February, Day: 29}

	// 2025 is not a leap year; Feb 29 normalizes to Mar 1.
	today := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	next := NextOccurrence(d, today)
	if next.Month() != time.March || next.Day() != 1 || next.Year() != 2025 {
		t.Errorf("next = %v, want 2025-03-01", next)
	}
	if DaysUntil(next, today) != 0 {
		t.Error("leap-day birthday should count as today on Mar 1 of a non-leap year")
	}

	// Past the normalized date the occurrence moves to the next year,
	// under the same normalization rule.
	later := NextOccurrence(d, today.AddDate(0, 0, 1))
	if later.Year() != 2026 || later.Month() != time.March || later.Day() != 1 {
		t.Errorf("later = %v, want 2026-03-01", later)
	}

	// In a leap year the real Feb 29 is used.
	leap := NextOccurrence(d, time.Date(2028, 1, 1, 0, 0, 0, 0, time.UTC))
	if leap.Month() != time.February || leap.Day() != 29 {
		t.Errorf("leap = %v, want 2028-02-29", leap)
	}
}

func TestDaysUntil_NeverNegative(t *testing.T) {
	today := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	if got := DaysUntil(today.AddDate(0, 0, -3), today); got != 0 {
		t.Errorf("DaysUntil = %d, want clamped 0", got)
	}
}
