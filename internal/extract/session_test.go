package extract

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackzampolin/shiftparse/internal/providers"
	"github.com/jackzampolin/shiftparse/internal/schedule"
)

type extractorFunc func(ctx context.Context, data []byte, filename, filter string) (*schedule.ParsedSchedule, error)

func (f extractorFunc) Extract(ctx context.Context, data []byte, filename, filter string) (*schedule.ParsedSchedule, error) {
	return f(ctx, data, filename, filter)
}

func TestSession_ReplaceAndClear(t *testing.T) {
	first := &schedule.ParsedSchedule{Shifts: []schedule.ShiftEntry{{Date: "2024-03-04"}}}
	second := &schedule.ParsedSchedule{Shifts: []schedule.ShiftEntry{{Date: "2024-04-01"}}}
	results := []*schedule.ParsedSchedule{first, second}

	calls := 0
	session := NewSession(extractorFunc(func(context.Context, []byte, string, string) (*schedule.ParsedSchedule, error) {
		r := results[calls]
		calls++
		return r, nil
	}))

	if _, err := session.Extract(context.Background(), nil, "a.pdf", ""); err != nil {
		t.Fatal(err)
	}
	if session.Current() != first {
		t.Error("expected first schedule")
	}
	if _, err := session.Extract(context.Background(), nil, "b.pdf", ""); err != nil {
		t.Fatal(err)
	}
	if session.Current() != second {
		t.Error("second schedule should replace the first wholesale")
	}

	session.Clear()
	if session.Current() != nil {
		t.Error("Clear() should discard the schedule")
	}
}

func TestSession_ErrorsClearSchedule(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"no match", &Error{Kind: ErrNoMatch, Message: "no shifts found in document"}},
		{"malformed", &Error{Kind: ErrMalformedResponse, Message: "bad"}},
		{"plain error", errors.New("boom")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fail := false
			session := NewSession(extractorFunc(func(context.Context, []byte, string, string) (*schedule.ParsedSchedule, error) {
				if fail {
					return nil, tt.err
				}
				return &schedule.ParsedSchedule{Shifts: []schedule.ShiftEntry{{Date: "2024-03-04"}}}, nil
			}))

			if _, err := session.Extract(context.Background(), nil, "a.pdf", ""); err != nil {
				t.Fatal(err)
			}
			fail = true
			if _, err := session.Extract(context.Background(), nil, "a.pdf", ""); !errors.Is(err, tt.err) {
				t.Fatalf("Extract() error = %v, want %v", err, tt.err)
			}
			if session.Current() != nil {
				t.Error("schedule should be cleared after an error")
			}
		})
	}
}

func TestSession_Busy(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	session := NewSession(extractorFunc(func(context.Context, []byte, string, string) (*schedule.ParsedSchedule, error) {
		close(started)
		<-release
		return &schedule.ParsedSchedule{Shifts: []schedule.ShiftEntry{}}, nil
	}))

	done := make(chan error, 1)
	go func() {
		_, err := session.Extract(context.Background(), nil, "a.pdf", "")
		done <- err
	}()

	<-started
	if !session.InFlight() {
		t.Error("InFlight() = false during extraction")
	}
	_, err := session.Extract(context.Background(), nil, "b.pdf", "")
	if !errors.Is(err, ErrBusy) {
		t.Fatalf("concurrent Extract() error = %v, want ErrBusy", err)
	}

	close(release)
	if err := <-done; err != nil {
		t.Fatalf("first Extract() error = %v", err)
	}
	if session.InFlight() {
		t.Error("InFlight() = true after completion")
	}
}

func TestSession_WithPipeline(t *testing.T) {
	mock := providers.NewMockClient(smithJSON)
	mock.Latency = 10 * time.Millisecond
	session := NewSession(newTestPipeline(t, mock, Options{}))

	s, err := session.Extract(context.Background(), samplePDF, "plan.pdf", "A. Smith")
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if session.Current() != s {
		t.Error("Current() should return the extracted schedule")
	}
}
