package schedule

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// AbsenceTime is the canonical sentinel for a missing start or end time.
const AbsenceTime = "-"

var clockPattern = regexp.MustCompile(`^(\d{1,2})[:.](\d{2})$`)

// IsAbsenceTime reports whether s is a sentinel rather than a clock time.
func IsAbsenceTime(s string) bool {
	s = strings.TrimSpace(s)
	return s == "" || s == AbsenceTime
}

// ParseClock parses a 24-hour wall-clock time. It accepts H:MM, HH:MM and the
// dotted HH.MM form, and returns minutes since midnight.
func ParseClock(s string) (int, bool) {
	m := clockPattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return 0, false
	}
	h, _ := strconv.Atoi(m[1])
	min, _ := strconv.Atoi(m[2])
	if h > 23 || min > 59 {
		return 0, false
	}
	return h*60 + min, true
}

// FormatClock renders minutes since midnight as HH:MM.
func FormatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// FormatDuration renders a span of minutes the way the extraction prompt asks
// for it, e.g. "8 hours" or "7.5 hours".
func FormatDuration(minutes int) string {
	hours := strconv.FormatFloat(float64(minutes)/60, 'f', 2, 64)
	hours = strings.TrimRight(strings.TrimRight(hours, "0"), ".")
	if hours == "1" {
		return "1 hour"
	}
	return hours + " hours"
}

// Span returns the minutes between start and end, wrapping past midnight for
// overnight shifts.
func Span(start, end int) int {
	if end < start {
		end += 24 * 60
	}
	return end - start
}
