package schedule

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

// DateLayout is the ISO calendar date layout used by ShiftEntry.Date.
const DateLayout = "2006-01-02"

// ErrInvalidEntry is wrapped by every EntryError.
var ErrInvalidEntry = errors.New("invalid schedule entry")

// EntryError describes a schedule row that failed local validation.
type EntryError struct {
	Index  int
	Field  string
	Value  string
	Reason string
}

func (e *EntryError) Error() string {
	return fmt.Sprintf("shifts[%d].%s %q: %s", e.Index, e.Field, e.Value, e.Reason)
}

func (e *EntryError) Unwrap() error { return ErrInvalidEntry }

// Correction records a value the validation pass rewrote.
// Index refers to the entry's position in document order.
type Correction struct {
	Index int    `json:"index" yaml:"index"`
	Field string `json:"field" yaml:"field"`
	From  string `json:"from" yaml:"from"`
	To    string `json:"to" yaml:"to"`
}

// NormalizeOptions controls the local validation pass.
type NormalizeOptions struct {
	// Language selects weekday names (BCP 47, e.g. "en", "de").
	Language string
	// FillDuration computes a duration for shifts that have none.
	FillDuration bool
}

// Normalize validates s in place and rewrites it into canonical form:
// dates must be real calendar dates, weekdays are recomputed from the date,
// clock times become HH:MM, absences get the "-" sentinel, a missing type
// becomes shift, and entries are stably sorted by date.
//
// The first invalid entry aborts the pass and is returned as an *EntryError.
func Normalize(s *ParsedSchedule, opts NormalizeOptions) ([]Correction, error) {
	if s == nil {
		return nil, nil
	}

	var corrections []Correction
	dates := make([]time.Time, len(s.Shifts))

	for i := range s.Shifts {
		e := &s.Shifts[i]

		d, err := time.Parse(DateLayout, strings.TrimSpace(e.Date))
		if err != nil {
			return nil, &EntryError{Index: i, Field: "date", Value: e.Date, Reason: "not a calendar date (YYYY-MM-DD)"}
		}
		dates[i] = d
		e.Date = d.Format(DateLayout)

		kind, ok := ParseEntryType(string(e.Type))
		if !ok {
			return nil, &EntryError{Index: i, Field: "type", Value: string(e.Type), Reason: "unknown entry type"}
		}
		e.Type = kind

		want := WeekdayName(d, opts.Language)
		if !SameName(e.Weekday, want) {
			corrections = append(corrections, Correction{Index: i, Field: "weekday", From: e.Weekday, To: want})
		}
		e.Weekday = want

		start, startOK, err := normalizeClock(i, "startTime", &e.StartTime, &corrections)
		if err != nil {
			return nil, err
		}
		end, endOK, err := normalizeClock(i, "endTime", &e.EndTime, &corrections)
		if err != nil {
			return nil, err
		}

		if opts.FillDuration && strings.TrimSpace(e.Duration) == "" && startOK && endOK && !kind.IsAbsence() {
			if span := Span(start, end); span > 0 {
				e.Duration = FormatDuration(span)
			}
		}
	}

	order := make([]int, len(s.Shifts))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return dates[order[a]].Before(dates[order[b]])
	})
	sorted := make([]ShiftEntry, len(s.Shifts))
	for i, idx := range order {
		sorted[i] = s.Shifts[idx]
	}
	s.Shifts = sorted

	return corrections, nil
}

func normalizeClock(index int, field string, value *string, corrections *[]Correction) (int, bool, error) {
	if IsAbsenceTime(*value) {
		*value = AbsenceTime
		return 0, false, nil
	}
	minutes, ok := ParseClock(*value)
	if !ok {
		return 0, false, &EntryError{Index: index, Field: field, Value: *value, Reason: "not a 24-hour HH:MM time"}
	}
	if formatted := FormatClock(minutes); formatted != *value {
		*corrections = append(*corrections, Correction{Index: index, Field: field, From: *value, To: formatted})
		*value = formatted
	}
	return minutes, true, nil
}
