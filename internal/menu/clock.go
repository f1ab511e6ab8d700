package menu

import (
	"fmt"
	"strings"
	"time"

	"github.com/ergowatches/served/internal/models"
)

var dayKeys = map[time.Weekday]string{
	time.Monday:    "mon",
	time.Tuesday:   "tue",
	time.Wednesday: "wed",
	time.Thursday:  "thu",
	time.Friday:    "fri",
	time.Saturday:  "sat",
	time.Sunday:    "sun",
}

// DayKey returns the three-letter weekday key rules are written with.
func DayKey(t time.Time) string {
	return dayKeys[t.Weekday()]
}

// ClockString renders t as a zero-padded "HH:MM" wall-clock value, the
// form window bounds are compared against.
func ClockString(t time.Time) string {
	return t.Format("15:04")
}

func matchesDay(days []string, day string) bool {
	for _, d := range days {
		if strings.EqualFold(d, day) {
			return true
		}
	}
	return false
}

// validClock reports whether s is a well-formed zero-padded "HH:MM".
func validClock(s string) bool {
	if len(s) != 5 || s[2] != ':' {
		return false
	}
	for _, i := range []int{0, 1, 3, 4} {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return s[:2] < "24" && s[3:] < "60"
}

// windowContains reports whether clock falls in [Start, End) under
// lexicographic comparison. Malformed bounds never match.
func windowContains(w models.TimeWindow, clock string) bool {
	if !validClock(w.Start) || !validClock(w.End) {
		return false
	}
	return w.Start <= clock && clock < w.End
}

// ValidateWindow reports malformed bounds and midnight-wrapping windows.
// Wrapping windows (22:00-02:00) are a known limitation: they match
// nothing, so operators should split them at midnight.
func ValidateWindow(w models.TimeWindow) error {
	if !validClock(w.Start) {
		return fmt.Errorf("invalid window start %q: want zero-padded HH:MM", w.Start)
	}
	if !validClock(w.End) {
		return fmt.Errorf("invalid window end %q: want zero-padded HH:MM", w.End)
	}
	if w.End <= w.Start {
		return fmt.Errorf("window %s-%s wraps midnight or is empty; windows must end after they start within one day", w.Start, w.End)
	}
	return nil
}
