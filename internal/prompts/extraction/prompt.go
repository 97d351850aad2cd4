// Package extraction holds the prompts used to extract shift schedules.
package extraction

import (
	_ "embed"
	"strings"

	"github.com/jackzampolin/shiftparse/internal/prompts"
	"github.com/jackzampolin/shiftparse/internal/schedule"
)

//go:embed system.tmpl
var systemPrompt string

//go:embed user.tmpl
var userPrompt string

// Prompt keys
const (
	SystemPromptKey = "extraction.system"
	UserPromptKey   = "extraction.user"
)

// SystemData is the template data for the system prompt.
type SystemData struct {
	Employee     string
	LanguageName string
	WeekdayNames []string
	AbsenceCodes []schedule.AbsenceCode
}

// UserData is the template data for the user directive.
type UserData struct {
	Filename string
}

// NewSystemData builds template data for the given language, absence codes
// and optional employee filter.
func NewSystemData(lang string, codes []schedule.AbsenceCode, employee string) SystemData {
	return SystemData{
		Employee:     SanitizeName(employee),
		LanguageName: schedule.LanguageName(lang),
		WeekdayNames: schedule.WeekdayNames(lang),
		AbsenceCodes: schedule.CanonicalAbsenceCodes(codes),
	}
}

// SanitizeName collapses whitespace and replaces double quotes so a filter
// value cannot break out of its quoted position in the instruction.
func SanitizeName(name string) string {
	name = strings.Join(strings.Fields(name), " ")
	return strings.ReplaceAll(name, `"`, "'")
}

// DefaultSystemPrompt returns the embedded system prompt template.
func DefaultSystemPrompt() string {
	return systemPrompt
}

// DefaultUserPrompt returns the embedded user directive template.
func DefaultUserPrompt() string {
	return userPrompt
}

// RegisterPrompts registers the extraction prompts with the resolver.
func RegisterPrompts(r *prompts.Resolver) {
	r.Register(prompts.EmbeddedPrompt{
		Key:         SystemPromptKey,
		Text:        systemPrompt,
		Description: "Shift extraction system prompt - task, JSON shape, weekday/time normalization, absence codes, employee filter",
	})
	r.Register(prompts.EmbeddedPrompt{
		Key:         UserPromptKey,
		Text:        userPrompt,
		Description: "Shift extraction user directive sent alongside the document",
	})
}
