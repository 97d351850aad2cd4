package extract

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jackzampolin/shiftparse/internal/document"
	"github.com/jackzampolin/shiftparse/internal/llmcall"
	"github.com/jackzampolin/shiftparse/internal/providers"
)

func newTestPipeline(t *testing.T, client providers.CompletionClient, opts Options) *Pipeline {
	t.Helper()
	p, err := NewPipeline(Config{Client: client, Options: opts, FillDuration: true})
	if err != nil {
		t.Fatalf("NewPipeline() error = %v", err)
	}
	return p
}

func TestPipeline_Extract(t *testing.T) {
	mock := providers.NewMockClient("```json\n" + smithJSON + "\n```")
	p := newTestPipeline(t, mock, Options{})

	s, err := p.Extract(context.Background(), samplePDF, "plan.pdf", "")
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if len(s.Shifts) != 1 || s.Shifts[0].Date != "2024-03-04" {
		t.Fatalf("unexpected schedule: %+v", s)
	}
	if s.Shifts[0].Duration != "8 hours" {
		t.Errorf("Duration = %q, want filled", s.Shifts[0].Duration)
	}
	if mock.RequestCount() != 1 {
		t.Errorf("RequestCount() = %d, want 1", mock.RequestCount())
	}

	req := mock.LastRequest()
	if len(req.Messages) != 2 || req.Messages[1].Parts[1].File.Filename != "plan.pdf" {
		t.Errorf("unexpected request: %+v", req)
	}
}

func TestPipeline_ValidationPass(t *testing.T) {
	t.Run("weekday corrected and sorted", func(t *testing.T) {
		mock := providers.NewMockClient(`{"shifts":[
			{"date":"2024-03-06","weekday":"Monday","startTime":"8:00","endTime":"16:30"},
			{"date":"2024-03-04","weekday":"monday","startTime":"-","endTime":"","type":"vacation"}
		]}`)
		p := newTestPipeline(t, mock, Options{})

		s, err := p.Extract(context.Background(), samplePDF, "plan.pdf", "")
		if err != nil {
			t.Fatalf("Extract() error = %v", err)
		}
		if s.Shifts[0].Date != "2024-03-04" || s.Shifts[1].Date != "2024-03-06" {
			t.Fatalf("not sorted: %+v", s.Shifts)
		}
		if s.Shifts[1].Weekday != "Wednesday" {
			t.Errorf("Weekday = %q, want Wednesday", s.Shifts[1].Weekday)
		}
		if s.Shifts[1].StartTime != "08:00" {
			t.Errorf("StartTime = %q, want 08:00", s.Shifts[1].StartTime)
		}
	})

	t.Run("invalid date is malformed", func(t *testing.T) {
		mock := providers.NewMockClient(`{"shifts":[{"date":"2024-02-30","weekday":"Friday","startTime":"08:00","endTime":"16:00"}]}`)
		p := newTestPipeline(t, mock, Options{})

		_, err := p.Extract(context.Background(), samplePDF, "plan.pdf", "")
		if !errors.Is(err, ErrMalformedResponse) {
			t.Fatalf("Extract() error = %v, want ErrMalformedResponse", err)
		}
	})

	t.Run("validation can be skipped", func(t *testing.T) {
		mock := providers.NewMockClient(`{"shifts":[{"date":"2024-02-30","weekday":"Friday","startTime":"08:00","endTime":"16:00"}]}`)
		p, err := NewPipeline(Config{Client: mock, SkipValidation: true})
		if err != nil {
			t.Fatalf("NewPipeline() error = %v", err)
		}
		s, err := p.Extract(context.Background(), samplePDF, "plan.pdf", "")
		if err != nil {
			t.Fatalf("Extract() error = %v", err)
		}
		if s.Shifts[0].Date != "2024-02-30" {
			t.Errorf("Date = %q", s.Shifts[0].Date)
		}
	})
}

func TestPipeline_Outcomes(t *testing.T) {
	tests := []struct {
		name    string
		content string
		err     error
		filter  string
		kind    error
		message string
	}{
		{name: "empty shifts is no match", content: `{"shifts": []}`, kind: ErrNoMatch, message: "no shifts found in document"},
		{name: "no match with filter", content: `{"shifts": []}`, filter: "Max Mustermann", kind: ErrNoMatch, message: `no shifts found for "Max Mustermann"`},
		{name: "no match carries service message", content: `{"shifts": [], "error": "Max is not in this plan"}`, filter: "Max", kind: ErrNoMatch, message: "Max is not in this plan"},
		{name: "missing date is malformed", content: `{"shifts":[{"weekday":"Monday","startTime":"08:00","endTime":"16:00"}]}`, kind: ErrMalformedResponse},
		{name: "empty content", content: "", kind: ErrEmptyResponse, message: "No response from AI"},
		{name: "service error", err: &providers.ServiceError{StatusCode: 502, Status: "Bad Gateway"}, kind: ErrService, message: "Failed to parse PDF: Bad Gateway"},
		{name: "timeout", err: &providers.TimeoutError{Timeout: 300 * time.Second}, kind: ErrTimeout},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &providers.MockClient{ResponseText: tt.content, Err: tt.err}
			p := newTestPipeline(t, mock, Options{})

			s, err := p.Extract(context.Background(), samplePDF, "plan.pdf", tt.filter)
			if s != nil {
				t.Errorf("schedule returned alongside error: %+v", s)
			}
			if !errors.Is(err, tt.kind) {
				t.Fatalf("Extract() error = %v, want %v", err, tt.kind)
			}
			if tt.message != "" && UserMessage(err) != tt.message {
				t.Errorf("UserMessage() = %q, want %q", UserMessage(err), tt.message)
			}
		})
	}
}

func TestPipeline_ServiceErrorKeepsCause(t *testing.T) {
	mock := &providers.MockClient{Err: &providers.ServiceError{StatusCode: 503, Status: "Service Unavailable"}}
	p := newTestPipeline(t, mock, Options{})

	_, err := p.Extract(context.Background(), samplePDF, "plan.pdf", "")
	var svcErr *providers.ServiceError
	if !errors.As(err, &svcErr) || svcErr.StatusCode != 503 {
		t.Fatalf("Extract() error = %v, want wrapped *ServiceError", err)
	}
}

func TestPipeline_UndecodableReplyIsMalformed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>gateway page</html>`))
	}))
	defer server.Close()

	client := providers.NewChatClient(providers.ChatConfig{APIKey: "k", BaseURL: server.URL})
	p := newTestPipeline(t, client, Options{})

	_, err := p.Extract(context.Background(), samplePDF, "plan.pdf", "")
	if !errors.Is(err, ErrMalformedResponse) {
		t.Fatalf("Extract() error = %v, want %v", err, ErrMalformedResponse)
	}
	if KindName(err) != "malformed_response" {
		t.Errorf("KindName() = %q", KindName(err))
	}
	var decodeErr *providers.ResponseDecodeError
	if !errors.As(err, &decodeErr) {
		t.Errorf("Extract() error = %v, want wrapped *ResponseDecodeError", err)
	}
}

func TestPipeline_RecordsCalls(t *testing.T) {
	recorder := llmcall.NewRecorder(0)
	mock := &providers.MockClient{}
	p, err := NewPipeline(Config{Client: mock, Recorder: recorder})
	if err != nil {
		t.Fatal(err)
	}

	mock.ResponseText = smithJSON
	if _, err := p.Extract(context.Background(), samplePDF, "plan.pdf", "A. Smith"); err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	mock.ResponseText = ""
	mock.Err = &providers.ServiceError{StatusCode: 500, Status: "Internal Server Error"}
	_, _ = p.Extract(context.Background(), samplePDF, "plan.pdf", "")

	calls := recorder.List(llmcall.QueryFilter{})
	if len(calls) != 2 {
		t.Fatalf("recorded %d calls, want 2", len(calls))
	}
	failed, ok := calls[0], calls[1]
	if !ok.Success || ok.Shifts != 1 || ok.EmployeeFilter != "A. Smith" || ok.Provider != providers.TypeMock {
		t.Errorf("successful call = %+v", ok)
	}
	if ok.PromptHash != p.Builder().PromptHash() || ok.PromptHash == "" {
		t.Errorf("PromptHash = %q, want %q", ok.PromptHash, p.Builder().PromptHash())
	}
	if failed.Success || failed.ErrorKind != "service" {
		t.Errorf("failed call = %+v", failed)
	}
}

func TestPipeline_RecordsDefaultModelOnFailure(t *testing.T) {
	recorder := llmcall.NewRecorder(0)
	mock := &providers.MockClient{
		DefaultModel: "served/default",
		Err:          &providers.TimeoutError{Timeout: time.Second},
	}
	p, err := NewPipeline(Config{Client: mock, Recorder: recorder})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := p.Extract(context.Background(), samplePDF, "plan.pdf", ""); !errors.Is(err, ErrTimeout) {
		t.Fatalf("Extract() error = %v, want %v", err, ErrTimeout)
	}

	calls := recorder.List(llmcall.QueryFilter{Model: "served/default"})
	if len(calls) != 1 {
		t.Fatalf("calls for default model = %d, want 1", len(calls))
	}
	if calls[0].ErrorKind != "timeout" {
		t.Errorf("ErrorKind = %q, want timeout", calls[0].ErrorKind)
	}
}

func TestPipeline_InvalidInput(t *testing.T) {
	mock := providers.NewMockClient(smithJSON)
	p := newTestPipeline(t, mock, Options{})

	tests := []struct {
		name     string
		data     []byte
		filename string
	}{
		{"empty file", nil, "plan.pdf"},
		{"not a pdf", []byte("hello, world"), "notes.txt"},
		{"image", []byte("\x89PNG\r\n\x1a\n0000"), "plan.png"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := p.Extract(context.Background(), tt.data, tt.filename, "")
			if !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("Extract() error = %v, want ErrInvalidInput", err)
			}
			var invalid *document.InvalidInputError
			if !errors.As(err, &invalid) {
				t.Error("expected wrapped *document.InvalidInputError")
			}
		})
	}
	if mock.RequestCount() != 0 {
		t.Errorf("service called %d times for invalid input", mock.RequestCount())
	}
}

func TestPipeline_ExtractFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "plan.pdf")
	if err := os.WriteFile(path, samplePDF, 0o644); err != nil {
		t.Fatal(err)
	}

	mock := providers.NewMockClient(smithJSON)
	p := newTestPipeline(t, mock, Options{})

	if _, err := p.ExtractFile(context.Background(), path, ""); err != nil {
		t.Fatalf("ExtractFile() error = %v", err)
	}
	if _, err := p.ExtractFile(context.Background(), filepath.Join(dir, "missing.pdf"), ""); !errors.Is(err, ErrRead) {
		t.Errorf("ExtractFile() error = %v, want ErrRead", err)
	}
}

func TestNewPipeline_RequiresClient(t *testing.T) {
	if _, err := NewPipeline(Config{}); err == nil {
		t.Error("expected error without a client")
	}
}

// The timeout case runs through the real HTTP client so the deadline is
// enforced the same way as in production.
func TestSession_TimeoutClearsSchedule(t *testing.T) {
	var slow atomic.Bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if slow.Load() {
			select {
			case <-r.Context().Done():
			case <-time.After(2 * time.Second):
			}
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{{
				"message": map[string]any{"role": "assistant", "content": smithJSON},
			}},
		})
	}))
	defer server.Close()

	client := providers.NewChatClient(providers.ChatConfig{
		APIKey:  "test-key",
		BaseURL: server.URL,
		Timeout: 100 * time.Millisecond,
	})
	session := NewSession(newTestPipeline(t, client, Options{}))

	if _, err := session.Extract(context.Background(), samplePDF, "plan.pdf", ""); err != nil {
		t.Fatalf("first Extract() error = %v", err)
	}
	if session.Current() == nil {
		t.Fatal("expected a current schedule after success")
	}

	slow.Store(true)
	_, err := session.Extract(context.Background(), samplePDF, "plan.pdf", "")
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("second Extract() error = %v, want ErrTimeout", err)
	}
	var timeoutErr *providers.TimeoutError
	if !errors.As(err, &timeoutErr) {
		t.Error("expected wrapped *providers.TimeoutError")
	}
	if session.Current() != nil {
		t.Error("previous schedule should be cleared after a timeout")
	}
}
