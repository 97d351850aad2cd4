// Package schedule defines the shift schedule records produced by extraction
// and the local validation pass that runs over them.
package schedule

import "strings"

// EntryType categorizes a schedule row.
type EntryType string

const (
	TypeShift    EntryType = "shift"
	TypeFree     EntryType = "free"
	TypeVacation EntryType = "vacation"
	TypeSick     EntryType = "sick"
)

// EntryTypes lists the recognized entry types in display order.
var EntryTypes = []EntryType{TypeShift, TypeFree, TypeVacation, TypeSick}

// ParseEntryType resolves s case-insensitively. An empty string is a shift.
func ParseEntryType(s string) (EntryType, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return TypeShift, true
	}
	for _, t := range EntryTypes {
		if string(t) == s {
			return t, true
		}
	}
	return "", false
}

// IsAbsence reports whether the entry type represents a day without work.
func (t EntryType) IsAbsence() bool {
	return t == TypeFree || t == TypeVacation || t == TypeSick
}

// ShiftEntry is one row of an extracted schedule.
type ShiftEntry struct {
	Date      string    `json:"date" yaml:"date"`
	Weekday   string    `json:"weekday" yaml:"weekday"`
	StartTime string    `json:"startTime" yaml:"startTime"`
	EndTime   string    `json:"endTime" yaml:"endTime"`
	Duration  string    `json:"duration,omitempty" yaml:"duration,omitempty"`
	Notes     string    `json:"notes,omitempty" yaml:"notes,omitempty"`
	Type      EntryType `json:"type,omitempty" yaml:"type,omitempty"`
}

// Kind returns the entry type, defaulting to TypeShift when unset.
func (e ShiftEntry) Kind() EntryType {
	if e.Type == "" {
		return TypeShift
	}
	return e.Type
}

// ParsedSchedule is the aggregate result of one extraction.
type ParsedSchedule struct {
	EmployeeName string       `json:"employeeName,omitempty" yaml:"employeeName,omitempty"`
	Shifts       []ShiftEntry `json:"shifts" yaml:"shifts"`
	Error        string       `json:"error,omitempty" yaml:"error,omitempty"`
}

// Empty reports whether the schedule has no entries.
func (s *ParsedSchedule) Empty() bool {
	return s == nil || len(s.Shifts) == 0
}

// Count returns the number of entries of each type.
func (s *ParsedSchedule) Count() map[EntryType]int {
	counts := make(map[EntryType]int, len(EntryTypes))
	if s == nil {
		return counts
	}
	for _, e := range s.Shifts {
		counts[e.Kind()]++
	}
	return counts
}

// TableRows renders the entries as rows for tabular output.
func (s *ParsedSchedule) TableRows() ([]string, [][]string) {
	headers := []string{"DATE", "WEEKDAY", "START", "END", "DURATION", "TYPE", "NOTES"}
	if s == nil {
		return headers, nil
	}
	rows := make([][]string, 0, len(s.Shifts))
	for _, e := range s.Shifts {
		rows = append(rows, []string{e.Date, e.Weekday, e.StartTime, e.EndTime, e.Duration, string(e.Kind()), e.Notes})
	}
	return headers, rows
}
