package extract

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/jackzampolin/shiftparse/internal/schedule"
)

// fencePattern matches the first fenced code block, with or without a
// language tag.
var fencePattern = regexp.MustCompile("(?s)```[A-Za-z0-9_-]*[ \t]*\r?\n?(.*?)```")

// Decode locates the JSON object in a completion and parses it into a
// schedule. It checks shape only; dates and times are left to the
// validation pass.
func Decode(content string) (*schedule.ParsedSchedule, error) {
	if strings.TrimSpace(content) == "" {
		return nil, newError(ErrEmptyResponse, nil, "No response from AI")
	}

	raw, ok := locateJSON(content)
	if !ok {
		return nil, newError(ErrMalformedResponse, nil,
			"The extraction service response did not contain a schedule")
	}

	if err := schedule.Validate(raw); err != nil {
		return nil, newError(ErrMalformedResponse, err,
			"The extraction service returned a schedule in an unexpected shape")
	}

	var s schedule.ParsedSchedule
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, newError(ErrMalformedResponse, err,
			"The extraction service returned a schedule in an unexpected shape")
	}
	if s.Shifts == nil {
		s.Shifts = []schedule.ShiftEntry{}
	}
	return &s, nil
}

// locateJSON returns the first candidate that parses as JSON: the first
// fenced block if there is one, else the whole trimmed text, then the
// outermost {...} span of that text.
func locateJSON(content string) ([]byte, bool) {
	primary := strings.TrimSpace(content)
	if m := fencePattern.FindStringSubmatch(content); m != nil {
		primary = strings.TrimSpace(m[1])
	} else if stripped := stripCodeFences(content); stripped != "" {
		primary = stripped
	}

	candidates := []string{primary}
	if span := objectSpan(primary); span != "" && span != primary {
		candidates = append(candidates, span)
	}
	if span := objectSpan(content); span != "" && span != primary {
		candidates = append(candidates, span)
	}

	for _, candidate := range candidates {
		if json.Valid([]byte(candidate)) {
			return []byte(candidate), true
		}
	}
	return nil, false
}

// stripCodeFences handles a leading fence that is never closed.
func stripCodeFences(content string) string {
	trimmed := strings.TrimSpace(content)
	if !strings.HasPrefix(trimmed, "```") {
		return ""
	}

	lines := strings.Split(trimmed, "\n")
	if len(lines) < 2 {
		return ""
	}

	// Drop first fence line.
	lines = lines[1:]
	// Drop trailing fence if present.
	if len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "```" {
		lines = lines[:len(lines)-1]
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

func objectSpan(content string) string {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start < 0 || end < start {
		return ""
	}
	return strings.TrimSpace(content[start : end+1])
}

// noMatch builds the no-match outcome for an empty schedule.
func noMatch(s *schedule.ParsedSchedule, filter string) *Error {
	msg := strings.TrimSpace(s.Error)
	if msg == "" {
		if filter != "" {
			msg = fmt.Sprintf("no shifts found for %q", filter)
		} else {
			msg = "no shifts found in document"
		}
	}
	return &Error{Kind: ErrNoMatch, Message: msg}
}
