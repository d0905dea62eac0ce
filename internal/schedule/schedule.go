// Package schedule implements the pickup calendar rules: the slot grid,
// closed weekdays, the same-day ordering cutoff, and the bookable date window.
//
// Dates are ISO "YYYY-MM-DD" strings and times are "HH:MM" strings, the wire
// formats the storefront exchanges. All functions are pure; callers inject
// "now" already localised to the store's timezone.
package schedule

import (
	"time"

	"github.com/go-faster/errors"
)

const (
	// DateLayout is the wire format for pickup dates.
	DateLayout = "2006-01-02"
	// TimeLayout is the wire format for pickup times.
	TimeLayout = "15:04"
)

// ErrInvalidDate is returned when a date string does not parse as YYYY-MM-DD.
var ErrInvalidDate = errors.New("invalid date")

// Schedule holds the store's pickup calendar configuration.
type Schedule struct {
	// Open and Close bound the slot grid, both inclusive.
	Open  string
	Close string
	// Step is the slot grid spacing.
	Step time.Duration
	// Cutoff is the local clock time at which same-day ordering closes.
	Cutoff string
	// LookaheadDays is the length of the bookable window beyond its first day.
	LookaheadDays int
	// Closed is the set of weekdays with no pickups.
	Closed map[time.Weekday]bool
}

// ParseDate parses an ISO date string.
func ParseDate(iso string) (time.Time, error) {
	d, err := time.Parse(DateLayout, iso)
	if err != nil {
		return time.Time{}, errors.Wrap(ErrInvalidDate, iso)
	}
	return d, nil
}

// Today returns the calendar date of now.
func Today(now time.Time) string {
	return now.Format(DateLayout)
}

// AddDays shifts an ISO date by n calendar days, rolling over month and year
// boundaries. Inputs that ParseDate rejects return an ErrInvalidDate error.
func AddDays(iso string, n int) (string, error) {
	d, err := ParseDate(iso)
	if err != nil {
		return "", err
	}
	return d.AddDate(0, 0, n).Format(DateLayout), nil
}

// IsBlackoutDay reports whether the date falls on a closed weekday.
func (s *Schedule) IsBlackoutDay(iso string) (bool, error) {
	d, err := ParseDate(iso)
	if err != nil {
		return false, err
	}
	return s.Closed[d.Weekday()], nil
}

// CutoffApplies reports whether the local clock has reached the same-day
// cutoff, at-or-after semantics: exactly 12:00 already counts as past cutoff.
func (s *Schedule) CutoffApplies(now time.Time) bool {
	ch, cm := mustClock(s.Cutoff)
	h, m := now.Hour(), now.Minute()
	return h > ch || (h == ch && m >= cm)
}

// BookableRange computes the inclusive [min, max] pickup date window as of now.
//
// Min starts at today, or tomorrow once the cutoff has passed, and then skips
// forward over closed weekdays. Max is min plus the lookahead; if max lands on
// a closed weekday it is deliberately left in place as a non-bookable boundary
// rather than shifted in either direction. The blackout check rejects it
// independently.
func (s *Schedule) BookableRange(now time.Time) (minDate, maxDate string) {
	day := now
	if s.CutoffApplies(now) {
		day = day.AddDate(0, 0, 1)
	}
	for s.Closed[day.Weekday()] {
		day = day.AddDate(0, 0, 1)
	}
	minDate = day.Format(DateLayout)
	maxDate = day.AddDate(0, 0, s.LookaheadDays).Format(DateLayout)
	return minDate, maxDate
}

// InRange reports whether the ISO date lies within [minDate, maxDate].
// ISO date strings compare correctly as plain strings.
func InRange(iso, minDate, maxDate string) bool {
	return iso >= minDate && iso <= maxDate
}

// SlotGrid returns all pickup times from Open to Close inclusive at Step
// spacing, e.g. 09:00 .. 17:30 every 30 minutes.
func (s *Schedule) SlotGrid() []string {
	start := clockMinutes(s.Open)
	end := clockMinutes(s.Close)
	step := int(s.Step.Minutes())

	var out []string
	for m := start; m <= end; m += step {
		out = append(out, minutesToClock(m))
	}
	return out
}

// IsValidSlot reports whether t parses as HH:MM and lands exactly on the grid.
func (s *Schedule) IsValidSlot(t string) bool {
	if _, err := time.Parse(TimeLayout, t); err != nil {
		return false
	}
	m := clockMinutes(t)
	start := clockMinutes(s.Open)
	end := clockMinutes(s.Close)
	if m < start || m > end {
		return false
	}
	return (m-start)%int(s.Step.Minutes()) == 0
}

// Day is one calendar day of the bookable window with its pickup times.
type Day struct {
	Date     string
	Times    []string
	Disabled bool
}

// Days expands the bookable window into per-day slot listings. Closed days
// appear with no times and Disabled set, matching what pickers render.
func (s *Schedule) Days(now time.Time) []Day {
	minDate, _ := s.BookableRange(now)
	start, _ := ParseDate(minDate)

	out := make([]Day, 0, s.LookaheadDays+1)
	for i := 0; i <= s.LookaheadDays; i++ {
		d := start.AddDate(0, 0, i)
		day := Day{Date: d.Format(DateLayout)}
		if s.Closed[d.Weekday()] {
			day.Disabled = true
		} else {
			day.Times = s.SlotGrid()
		}
		out = append(out, day)
	}
	return out
}

func mustClock(hhmm string) (h, m int) {
	t, err := time.Parse(TimeLayout, hhmm)
	if err != nil {
		panic("schedule: bad clock time " + hhmm)
	}
	return t.Hour(), t.Minute()
}

func clockMinutes(hhmm string) int {
	h, m := mustClock(hhmm)
	return h*60 + m
}

func minutesToClock(m int) string {
	return time.Date(0, 1, 1, m/60, m%60, 0, 0, time.UTC).Format(TimeLayout)
}
