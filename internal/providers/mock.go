package providers

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

// MockClient is a test double for CompletionClient.
type MockClient struct {
	// Latency simulates network latency. Context cancellation ends the wait.
	Latency time.Duration
	// ResponseText is returned as the completion content.
	ResponseText string
	// Err, when set, is returned instead of a result.
	Err error
	// Respond, when set, overrides ResponseText and Err.
	Respond func(req *CompletionRequest) (string, error)
	// DefaultModel is reported by Model and used when a request names none.
	DefaultModel string

	mu           sync.Mutex
	requests     []*CompletionRequest
	requestCount atomic.Int64
}

// NewMockClient creates a mock client that answers with text.
func NewMockClient(text string) *MockClient {
	return &MockClient{ResponseText: text}
}

// Verify interface
var _ CompletionClient = (*MockClient)(nil)

// Name returns the client identifier.
func (m *MockClient) Name() string {
	return TypeMock
}

// Model returns DefaultModel, or "mock" when unset.
func (m *MockClient) Model() string {
	if m.DefaultModel == "" {
		return TypeMock
	}
	return m.DefaultModel
}

// Complete records the request and returns the configured response.
func (m *MockClient) Complete(ctx context.Context, req *CompletionRequest) (*CompletionResult, error) {
	m.requestCount.Add(1)
	m.mu.Lock()
	m.requests = append(m.requests, req)
	m.mu.Unlock()

	start := time.Now()
	if m.Latency > 0 {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("request failed: %w", ctx.Err())
		case <-time.After(m.Latency):
		}
	}

	text, err := m.ResponseText, m.Err
	if m.Respond != nil {
		text, err = m.Respond(req)
	}
	if err != nil {
		return nil, err
	}

	model := req.Model
	if model == "" {
		model = m.Model()
	}
	return &CompletionResult{
		Content:       text,
		FinishReason:  "stop",
		Provider:      TypeMock,
		ModelUsed:     model,
		RequestID:     req.RequestID,
		ExecutionTime: time.Since(start),
	}, nil
}

// RequestCount returns the number of Complete calls.
func (m *MockClient) RequestCount() int64 {
	return m.requestCount.Load()
}

// LastRequest returns the most recent request, or nil.
func (m *MockClient) LastRequest() *CompletionRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.requests) == 0 {
		return nil
	}
	return m.requests[len(m.requests)-1]
}
