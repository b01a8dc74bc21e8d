package schedule

import (
	"errors"
	"fmt"
	"strings"
)

// FullDay is the sentinel stored in start/end for a day that runs around the clock.
const FullDay = "24hours"

// MinutesPerDay is the end of a full-day window.
const MinutesPerDay = 24 * 60

// Clock errors
var (
	ErrInvalidClock     = errors.New("invalid clock, expected HH:MM")
	ErrSentinelMismatch = errors.New("24hours must be set on both start and end")
)

// Clock is a time of day in minutes since midnight.
type Clock int

// NewClock builds a Clock from hours and minutes.
func NewClock(h, m int) Clock {
	return Clock(h*60 + m)
}

// ParseClock parses a zero-padded "HH:MM" value.
func ParseClock(s string) (Clock, error) {
	hh, mm, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok || len(hh) != 2 || len(mm) != 2 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, s)
	}
	h, okH := twoDigits(hh)
	m, okM := twoDigits(mm)
	if !okH || !okM || h > 23 || m > 59 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, s)
	}
	return NewClock(h, m), nil
}

// twoDigits parses exactly two ASCII digits. Signs are not digits.
func twoDigits(s string) (int, bool) {
	if len(s) != 2 || s[0] < '0' || s[0] > '9' || s[1] < '0' || s[1] > '9' {
		return 0, false
	}
	return int(s[0]-'0')*10 + int(s[1]-'0'), true
}

// String renders the clock as HH:MM. MinutesPerDay renders as 24:00.
func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", int(c)/60, int(c)%60)
}

// ParseWindow resolves a day's start/end strings into a window.
// Both sides set to FullDay give [00:00, 24:00).
func ParseWindow(start, end string) (Clock, Clock, error) {
	startFull, endFull := start == FullDay, end == FullDay
	if startFull || endFull {
		if startFull != endFull {
			return 0, 0, ErrSentinelMismatch
		}
		return 0, MinutesPerDay, nil
	}

	s, err := ParseClock(start)
	if err != nil {
		return 0, 0, err
	}
	e, err := ParseClock(end)
	if err != nil {
		return 0, 0, err
	}
	return s, e, nil
}
