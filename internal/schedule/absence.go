package schedule

import (
	"strings"

	"golang.org/x/text/cases"
)

// AbsenceCode maps a marker found in schedule cells to an entry type.
type AbsenceCode struct {
	Code        string    `json:"code" yaml:"code" mapstructure:"code"`
	Type        EntryType `json:"type" yaml:"type" mapstructure:"type"`
	Description string    `json:"description,omitempty" yaml:"description,omitempty" mapstructure:"description"`
}

var defaultAbsenceCodes = map[string][]AbsenceCode{
	"en": {
		{Code: "V", Type: TypeVacation, Description: "vacation"},
		{Code: "VAC", Type: TypeVacation, Description: "vacation"},
		{Code: "S", Type: TypeSick, Description: "sick leave"},
		{Code: "SICK", Type: TypeSick, Description: "sick leave"},
		{Code: "OFF", Type: TypeFree, Description: "day off"},
		{Code: "X", Type: TypeFree, Description: "day off"},
	},
	"de": {
		{Code: "U", Type: TypeVacation, Description: "Urlaub"},
		{Code: "UL", Type: TypeVacation, Description: "Urlaub"},
		{Code: "K", Type: TypeSick, Description: "krank"},
		{Code: "AU", Type: TypeSick, Description: "Arbeitsunfähigkeit"},
		{Code: "F", Type: TypeFree, Description: "frei"},
		{Code: "FR", Type: TypeFree, Description: "frei"},
		{Code: "X", Type: TypeFree, Description: "frei"},
	},
}

// DefaultAbsenceCodes returns the built-in absence markers for lang.
func DefaultAbsenceCodes(lang string) []AbsenceCode {
	base, _ := MatchLanguage(lang).Base()
	codes := defaultAbsenceCodes[base.String()]
	if codes == nil {
		codes = defaultAbsenceCodes["en"]
	}
	return append([]AbsenceCode(nil), codes...)
}

// CanonicalAbsenceCodes trims codes, drops blanks and unknown types, and
// removes later duplicates (case-insensitive) while keeping the configured
// order, so the rendered instruction is identical across runs.
func CanonicalAbsenceCodes(codes []AbsenceCode) []AbsenceCode {
	out := make([]AbsenceCode, 0, len(codes))
	seen := make(map[string]bool, len(codes))
	folder := cases.Fold()
	for _, c := range codes {
		c.Code = strings.TrimSpace(c.Code)
		if c.Code == "" {
			continue
		}
		kind, ok := ParseEntryType(string(c.Type))
		if !ok || !kind.IsAbsence() {
			continue
		}
		c.Type = kind
		key := folder.String(c.Code)
		if seen[key] {
			continue
		}
		seen[key] = true
		c.Description = strings.TrimSpace(c.Description)
		out = append(out, c)
	}
	return out
}
