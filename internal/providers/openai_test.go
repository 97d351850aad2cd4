package providers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestOpenAIClient_Complete(t *testing.T) {
	t.Run("sends file part and headers", func(t *testing.T) {
		var body map[string]any
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/chat/completions" {
				t.Errorf("unexpected path: %s", r.URL.Path)
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
			json.NewDecoder(r.Body).Decode(&body)

			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]any{
				"id":      "chatcmpl-1",
				"object":  "chat.completion",
				"created": 1,
				"model":   "openrouter/claude-sonnet-4",
				"choices": []map[string]any{{
					"index":         0,
					"finish_reason": "stop",
					"message": map[string]any{
						"role":    "assistant",
						"content": `{"shifts": []}`,
					},
				}},
				"usage": map[string]int{
					"prompt_tokens":     10,
					"completion_tokens": 5,
					"total_tokens":      15,
				},
			})
		}))
		defer server.Close()

		client := NewOpenAIClient(OpenAIConfig{
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
		if result.TotalTokens != 15 {
			t.Errorf("TotalTokens = %d, want 15", result.TotalTokens)
		}
		if result.Provider != TypeOpenAI {
			t.Errorf("Provider = %q", result.Provider)
		}

		msgs, _ := body["messages"].([]any)
		if len(msgs) != 2 {
			t.Fatalf("messages = %d, want 2", len(msgs))
		}
		user, _ := msgs[1].(map[string]any)
		parts, _ := user["content"].([]any)
		if len(parts) != 2 {
			t.Fatalf("user parts = %d, want 2", len(parts))
		}
		filePart, _ := parts[1].(map[string]any)
		if filePart["type"] != "file" {
			t.Errorf("part type = %v, want file", filePart["type"])
		}
		file, _ := filePart["file"].(map[string]any)
		if file["filename"] != "plan.pdf" {
			t.Errorf("filename = %v", file["filename"])
		}
	})

	t.Run("status error maps to service error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"error":{"message":"overloaded","type":"server_error"}}`))
		}))
		defer server.Close()

		client := NewOpenAIClient(OpenAIConfig{APIKey: "k", BaseURL: server.URL})
		_, err := client.Complete(context.Background(), extractionRequest())

		var svcErr *ServiceError
		if !errors.As(err, &svcErr) {
			t.Fatalf("error = %v, want *ServiceError", err)
		}
		if svcErr.StatusCode != http.StatusServiceUnavailable {
			t.Errorf("StatusCode = %d", svcErr.StatusCode)
		}
		if svcErr.Status != "Service Unavailable" {
			t.Errorf("Status = %q", svcErr.Status)
		}
	})
}
