package providers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func extractionRequest() *CompletionRequest {
	return &CompletionRequest{
		RequestID: "req-1",
		Messages: []Message{
			{Role: "system", Content: "Extract shifts."},
			{Role: "user", Parts: []ContentPart{
				TextPart("Please extract."),
				FileContent("plan.pdf", "data:application/pdf;base64,JVBERi0="),
			}},
		},
	}
}

func TestChatClient_Complete(t *testing.T) {
	t.Run("successful completion", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Verify request
			if r.URL.Path != "/chat/completions" {
				t.Errorf("unexpected path: %s", r.URL.Path)
			}
			if r.Method != "POST" {
				t.Errorf("unexpected method: %s", r.Method)
			}
			if auth := r.Header.Get("Authorization"); auth != "Bearer test-key" {
				t.Errorf("unexpected authorization: %s", auth)
			}
			if cid := r.Header.Get(CustomerIDHeader); cid != "cust-42" {
				t.Errorf("unexpected customerId: %s", cid)
			}
			if rid := r.Header.Get(RequestIDHeader); rid != "req-1" {
				t.Errorf("unexpected request id: %s", rid)
			}
			if ct := r.Header.Get("Content-Type"); ct != "application/json" {
				t.Errorf("unexpected content type: %s", ct)
			}

			resp := map[string]any{
				"id":    "test-id",
				"model": "openrouter/claude-sonnet-4",
				"choices": []map[string]any{
					{
						"message": map[string]any{
							"role":    "assistant",
							"content": `{"shifts": []}`,
						},
						"finish_reason": "stop",
					},
				},
				"usage": map[string]int{
					"prompt_tokens":     100,
					"completion_tokens": 8,
					"total_tokens":      108,
				},
			}
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(resp)
		}))
		defer server.Close()

		client := NewChatClient(ChatConfig{
			APIKey:     "test-key",
			CustomerID: "cust-42",
			BaseURL:    server.URL,
		})

		result, err := client.Complete(context.Background(), extractionRequest())
		if err != nil {
			t.Fatalf("Complete() error = %v", err)
		}
		if result.Content != `{"shifts": []}` {
			t.Errorf("Content = %q", result.Content)
		}
		if result.TotalTokens != 108 {
			t.Errorf("TotalTokens = %d, want 108", result.TotalTokens)
		}
		if result.RequestID != "req-1" {
			t.Errorf("RequestID = %q", result.RequestID)
		}
		if result.Provider != TypeChat {
			t.Errorf("Provider = %q", result.Provider)
		}
	})

	t.Run("request body carries model and file part", func(t *testing.T) {
		var received chatRequest
		var rawParts []map[string]any
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var raw struct {
				Model    string `json:"model"`
				Messages []struct {
					Role    string          `json:"role"`
					Content json.RawMessage `json:"content"`
				} `json:"messages"`
			}
			json.NewDecoder(r.Body).Decode(&raw)
			received.Model = raw.Model
			if len(raw.Messages) == 2 {
				var sys string
				if err := json.Unmarshal(raw.Messages[0].Content, &sys); err != nil {
					t.Errorf("system content is not a string: %s", raw.Messages[0].Content)
				}
				json.Unmarshal(raw.Messages[1].Content, &rawParts)
			}
			for _, m := range raw.Messages {
				received.Messages = append(received.Messages, chatMessage{Role: m.Role})
			}
			json.NewEncoder(w).Encode(map[string]any{"choices": []any{}})
		}))
		defer server.Close()

		client := NewChatClient(ChatConfig{APIKey: "k", BaseURL: server.URL, Model: "test-model"})
		if _, err := client.Complete(context.Background(), extractionRequest()); err != nil {
			t.Fatalf("Complete() error = %v", err)
		}

		if received.Model != "test-model" {
			t.Errorf("model = %q, want test-model", received.Model)
		}
		if len(received.Messages) != 2 || received.Messages[0].Role != "system" || received.Messages[1].Role != "user" {
			t.Fatalf("unexpected messages: %+v", received.Messages)
		}
		if len(rawParts) != 2 {
			t.Fatalf("user parts = %d, want 2", len(rawParts))
		}
		if rawParts[0]["type"] != "text" || rawParts[1]["type"] != "file" {
			t.Errorf("part types = %v, %v", rawParts[0]["type"], rawParts[1]["type"])
		}
		file, _ := rawParts[1]["file"].(map[string]any)
		if file["filename"] != "plan.pdf" {
			t.Errorf("filename = %v", file["filename"])
		}
		if data, _ := file["file_data"].(string); !strings.HasPrefix(data, "data:application/pdf;base64,") {
			t.Errorf("file_data = %q", data)
		}
	})

	t.Run("empty choices yields empty content", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]any{"id": "x", "choices": []any{}})
		}))
		defer server.Close()

		client := NewChatClient(ChatConfig{APIKey: "k", BaseURL: server.URL})
		result, err := client.Complete(context.Background(), extractionRequest())
		if err != nil {
			t.Fatalf("Complete() error = %v", err)
		}
		if result.Content != "" {
			t.Errorf("Content = %q, want empty", result.Content)
		}
	})

	t.Run("array content is flattened", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]any{
				"choices": []map[string]any{{
					"message": map[string]any{
						"role": "assistant",
						"content": []map[string]any{
							{"type": "text", "text": `{"shifts":`},
							{"type": "text", "text": ` []}`},
						},
					},
				}},
			})
		}))
		defer server.Close()

		client := NewChatClient(ChatConfig{APIKey: "k", BaseURL: server.URL})
		result, err := client.Complete(context.Background(), extractionRequest())
		if err != nil {
			t.Fatalf("Complete() error = %v", err)
		}
		if result.Content != `{"shifts": []}` {
			t.Errorf("Content = %q", result.Content)
		}
	})

	t.Run("non-success status is a service error", func(t *testing.T) {
		var calls atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusBadGateway)
			w.Write([]byte(`upstream down`))
		}))
		defer server.Close()

		client := NewChatClient(ChatConfig{APIKey: "k", BaseURL: server.URL})
		_, err := client.Complete(context.Background(), extractionRequest())

		var svcErr *ServiceError
		if !errors.As(err, &svcErr) {
			t.Fatalf("error = %v, want *ServiceError", err)
		}
		if svcErr.StatusCode != http.StatusBadGateway {
			t.Errorf("StatusCode = %d", svcErr.StatusCode)
		}
		if svcErr.Status != "Bad Gateway" {
			t.Errorf("Status = %q", svcErr.Status)
		}
		if svcErr.Body != "upstream down" {
			t.Errorf("Body = %q", svcErr.Body)
		}
		if n := calls.Load(); n != 1 {
			t.Errorf("calls = %d, want exactly one attempt", n)
		}
	})

	t.Run("error object in 2xx body is a service error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]any{
				"error": map[string]any{"code": 429, "message": "rate limited"},
			})
		}))
		defer server.Close()

		client := NewChatClient(ChatConfig{APIKey: "k", BaseURL: server.URL})
		_, err := client.Complete(context.Background(), extractionRequest())

		var svcErr *ServiceError
		if !errors.As(err, &svcErr) {
			t.Fatalf("error = %v, want *ServiceError", err)
		}
		if svcErr.Body != "rate limited" {
			t.Errorf("Body = %q", svcErr.Body)
		}
	})

	t.Run("non-json 2xx body is a decode error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/html")
			w.Write([]byte(`<html>gateway page</html>`))
		}))
		defer server.Close()

		client := NewChatClient(ChatConfig{APIKey: "k", BaseURL: server.URL})
		_, err := client.Complete(context.Background(), extractionRequest())

		var decodeErr *ResponseDecodeError
		if !errors.As(err, &decodeErr) {
			t.Fatalf("error = %v, want *ResponseDecodeError", err)
		}
		if decodeErr.StatusCode != http.StatusOK {
			t.Errorf("StatusCode = %d", decodeErr.StatusCode)
		}
		if decodeErr.Body != "<html>gateway page</html>" {
			t.Errorf("Body = %q", decodeErr.Body)
		}
		var svcErr *ServiceError
		if errors.As(err, &svcErr) {
			t.Errorf("decode failure reported as service error: %v", err)
		}
	})

	t.Run("slow service is a timeout", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-r.Context().Done():
			case <-time.After(2 * time.Second):
			}
		}))
		defer server.Close()

		client := NewChatClient(ChatConfig{APIKey: "k", BaseURL: server.URL, Timeout: 50 * time.Millisecond})
		_, err := client.Complete(context.Background(), extractionRequest())

		var timeoutErr *TimeoutError
		if !errors.As(err, &timeoutErr) {
			t.Fatalf("error = %v, want *TimeoutError", err)
		}
		if timeoutErr.Timeout != 50*time.Millisecond {
			t.Errorf("Timeout = %v", timeoutErr.Timeout)
		}
	})

	t.Run("caller cancellation is not a timeout", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			<-r.Context().Done()
		}))
		defer server.Close()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		client := NewChatClient(ChatConfig{APIKey: "k", BaseURL: server.URL})
		_, err := client.Complete(ctx, extractionRequest())
		if err == nil {
			t.Fatal("expected error")
		}
		var timeoutErr *TimeoutError
		if errors.As(err, &timeoutErr) {
			t.Errorf("cancelled request reported as timeout: %v", err)
		}
		if !errors.Is(err, context.Canceled) {
			t.Errorf("error = %v, want context.Canceled", err)
		}
	})

	t.Run("empty request is rejected", func(t *testing.T) {
		client := NewChatClient(ChatConfig{APIKey: "k"})
		if _, err := client.Complete(context.Background(), &CompletionRequest{}); err == nil {
			t.Error("expected error for request without messages")
		}
	})
}

func TestNewChatClient_Defaults(t *testing.T) {
	tests := []struct {
		name     string
		cfg      ChatConfig
		endpoint string
		model    string
	}{
		{"defaults", ChatConfig{}, "https://llm.blackbox.ai/chat/completions", "openrouter/claude-sonnet-4"},
		{"trailing slash", ChatConfig{BaseURL: "http://localhost:9000/"}, "http://localhost:9000/chat/completions", "openrouter/claude-sonnet-4"},
		{"custom path", ChatConfig{BaseURL: "http://h", Path: "v1/chat/completions", Model: "m"}, "http://h/v1/chat/completions", "m"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewChatClient(tt.cfg)
			if c.Endpoint() != tt.endpoint {
				t.Errorf("Endpoint() = %q, want %q", c.Endpoint(), tt.endpoint)
			}
			if c.Model() != tt.model {
				t.Errorf("Model() = %q, want %q", c.Model(), tt.model)
			}
			if c.timeout != DefaultTimeout {
				t.Errorf("timeout = %v, want %v", c.timeout, DefaultTimeout)
			}
		})
	}
}

func TestServiceError_TruncatesBody(t *testing.T) {
	body := []byte(strings.Repeat("x", maxErrorBody+100))
	err := newServiceError(500, body)
	if !strings.HasSuffix(err.Body, "...[truncated]") {
		t.Error("expected truncated marker")
	}
	if len(err.Body) != maxErrorBody+len("...[truncated]") {
		t.Errorf("len(Body) = %d", len(err.Body))
	}
	if !strings.Contains(err.Error(), "status 500 Internal Server Error") {
		t.Errorf("Error() = %q", err.Error())
	}
}

// Live test against the configured service. Skips without credentials.
func TestChatClient_Live(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping live service test in short mode")
	}
	client := LoadTestConfig().NewChatClient()
	if client == nil {
		t.Skip("SHIFTPARSE_API_KEY not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	result, err := client.Complete(ctx, &CompletionRequest{
		Messages: []Message{{Role: "user", Content: "Reply with the JSON object {\"shifts\": []} and nothing else."}},
	})
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if !strings.Contains(result.Content, "shifts") {
		t.Errorf("Content = %q", result.Content)
	}
}
