package extract

import (
	"context"
	"sync/atomic"

	"github.com/jackzampolin/shiftparse/internal/schedule"
)

// Extractor runs one extraction.
type Extractor interface {
	Extract(ctx context.Context, data []byte, filename, employeeFilter string) (*schedule.ParsedSchedule, error)
}

// Session holds the single current schedule and admits one extraction at a
// time. The current schedule is cleared when an extraction starts, replaced
// on success and left empty on any failure.
type Session struct {
	extractor Extractor
	inFlight  atomic.Bool
	current   atomic.Pointer[schedule.ParsedSchedule]
}

// NewSession creates a session around an extractor.
func NewSession(e Extractor) *Session {
	return &Session{extractor: e}
}

// Extract runs an extraction, or fails fast with ErrBusy if one is running.
func (s *Session) Extract(ctx context.Context, data []byte, filename, employeeFilter string) (*schedule.ParsedSchedule, error) {
	if !s.inFlight.CompareAndSwap(false, true) {
		return nil, &Error{Kind: ErrBusy, Message: "An extraction is already in progress. Please wait for it to finish."}
	}
	defer s.inFlight.Store(false)

	s.current.Store(nil)

	result, err := s.extractor.Extract(ctx, data, filename, employeeFilter)
	if err != nil {
		return nil, err
	}
	s.current.Store(result)
	return result, nil
}

// Current returns the current schedule, or nil.
func (s *Session) Current() *schedule.ParsedSchedule {
	return s.current.Load()
}

// Clear discards the current schedule, as on selecting a new file.
func (s *Session) Clear() {
	s.current.Store(nil)
}

// InFlight reports whether an extraction is running.
func (s *Session) InFlight() bool {
	return s.inFlight.Load()
}
