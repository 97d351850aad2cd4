package schedule

import (
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

var supportedLanguages = []language.Tag{language.English, language.German}

var languageMatcher = language.NewMatcher(supportedLanguages)

var weekdayNames = map[language.Tag][7]string{
	language.English: {"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"},
	language.German:  {"Sonntag", "Montag", "Dienstag", "Mittwoch", "Donnerstag", "Freitag", "Samstag"},
}

// MatchLanguage maps a BCP 47 string onto the closest supported language.
// Unknown or empty input falls back to English.
func MatchLanguage(lang string) language.Tag {
	tag, err := language.Parse(lang)
	if err != nil {
		return language.English
	}
	_, idx, conf := languageMatcher.Match(tag)
	if conf == language.No {
		return language.English
	}
	return supportedLanguages[idx]
}

// LanguageName returns the English display name of the matched language.
func LanguageName(lang string) string {
	return display.Tags(language.English).Name(MatchLanguage(lang))
}

// WeekdayName returns the weekday of t in the given language.
func WeekdayName(t time.Time, lang string) string {
	return weekdayNames[MatchLanguage(lang)][t.Weekday()]
}

// WeekdayNames returns Monday-first weekday names in the given language.
func WeekdayNames(lang string) []string {
	names := weekdayNames[MatchLanguage(lang)]
	out := make([]string, 0, 7)
	for i := 1; i <= 7; i++ {
		out = append(out, names[i%7])
	}
	return out
}

// SameName compares two names ignoring case.
func SameName(a, b string) bool {
	folder := cases.Fold()
	return folder.String(a) == folder.String(b)
}
