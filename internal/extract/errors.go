package extract

import (
	"errors"
	"fmt"
)

// Error kinds. Every *Error matches exactly one of these with errors.Is.
var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrRead              = errors.New("file read failed")
	ErrService           = errors.New("extraction service error")
	ErrTimeout           = errors.New("extraction service timeout")
	ErrEmptyResponse     = errors.New("empty response")
	ErrMalformedResponse = errors.New("malformed response")
	ErrNoMatch           = errors.New("no matching shifts")
	ErrBusy              = errors.New("extraction already in progress")
)

// Error is a pipeline failure. Message is suitable for showing to a user;
// Cause keeps the underlying error for logs and errors.As.
type Error struct {
	Kind    error
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Cause)
}

// Unwrap exposes both the kind sentinel and the cause.
func (e *Error) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Cause}
}

func newError(kind error, cause error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// UserMessage converts any pipeline failure into one user-visible message.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "Failed to parse PDF. Please try again."
}

// KindOf returns the sentinel kind of err, or nil if err is not a pipeline error.
func KindOf(err error) error {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return nil
}

var kindNames = map[error]string{
	ErrInvalidInput:      "invalid_input",
	ErrRead:              "read",
	ErrService:           "service",
	ErrTimeout:           "timeout",
	ErrEmptyResponse:     "empty_response",
	ErrMalformedResponse: "malformed_response",
	ErrNoMatch:           "no_match",
	ErrBusy:              "busy",
}

// KindName returns a stable snake_case name for the kind of err, or "" if
// err is not a pipeline error.
func KindName(err error) string {
	return kindNames[KindOf(err)]
}
