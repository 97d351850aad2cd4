package providers

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	chatDefaultBaseURL = "https://llm.blackbox.ai"
	chatDefaultPath    = "/chat/completions"
	chatDefaultModel   = "openrouter/claude-sonnet-4"

	// DefaultTimeout bounds a single extraction call end to end.
	DefaultTimeout = 300 * time.Second

	// CustomerIDHeader carries the customer identifier on every request.
	CustomerIDHeader = "customerId"
	// RequestIDHeader carries the per-request correlation id.
	RequestIDHeader = "X-Request-ID"
)

// ChatConfig holds configuration for the chat-completions client.
type ChatConfig struct {
	APIKey     string
	CustomerID string
	BaseURL    string
	Path       string
	Model      string
	Timeout    time.Duration
	Headers    map[string]string
	Logger     *slog.Logger
}

// ChatClient talks to an OpenAI-compatible chat-completions endpoint over
// plain HTTP. Every call is a single attempt.
type ChatClient struct {
	apiKey     string
	customerID string
	endpoint   string
	model      string
	timeout    time.Duration
	headers    map[string]string
	client     *http.Client
	logger     *slog.Logger
}

// NewChatClient creates a new chat-completions client.
func NewChatClient(cfg ChatConfig) *ChatClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = chatDefaultBaseURL
	}
	if cfg.Path == "" {
		cfg.Path = chatDefaultPath
	}
	if !strings.HasPrefix(cfg.Path, "/") {
		cfg.Path = "/" + cfg.Path
	}
	if cfg.Model == "" {
		cfg.Model = chatDefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return &ChatClient{
		apiKey:     cfg.APIKey,
		customerID: cfg.CustomerID,
		endpoint:   strings.TrimRight(cfg.BaseURL, "/") + cfg.Path,
		model:      cfg.Model,
		timeout:    cfg.Timeout,
		headers:    cfg.Headers,
		// The context deadline in Complete is the bound; the client timeout
		// only backs it up.
		client: &http.Client{Timeout: cfg.Timeout + 5*time.Second},
		logger: cfg.Logger,
	}
}

// Verify interface
var _ CompletionClient = (*ChatClient)(nil)

// Name returns the client identifier.
func (c *ChatClient) Name() string {
	return TypeChat
}

// Model returns the default model.
func (c *ChatClient) Model() string {
	return c.model
}

// Endpoint returns the full request URL.
func (c *ChatClient) Endpoint() string {
	return c.endpoint
}

// Complete sends a chat-completion request.
func (c *ChatClient) Complete(ctx context.Context, req *CompletionRequest) (*CompletionResult, error) {
	if req == nil || len(req.Messages) == 0 {
		return nil, fmt.Errorf("completion request has no messages")
	}
	start := time.Now()

	model := req.Model
	if model == "" {
		model = c.model
	}
	requestID := req.RequestID
	if requestID == "" {
		requestID = uuid.New().String()
	}

	body := &chatRequest{
		Model:    model,
		Messages: toChatMessages(req.Messages),
	}

	resp, err := c.doRequest(ctx, requestID, body)
	if err != nil {
		return nil, err
	}

	result := &CompletionResult{
		Provider:      TypeChat,
		ModelUsed:     resp.Model,
		RequestID:     requestID,
		ExecutionTime: time.Since(start),
	}
	if result.ModelUsed == "" {
		result.ModelUsed = model
	}
	if resp.Usage != nil {
		result.PromptTokens = resp.Usage.PromptTokens
		result.CompletionTokens = resp.Usage.CompletionTokens
		result.TotalTokens = resp.Usage.TotalTokens
	}
	if len(resp.Choices) > 0 {
		choice := resp.Choices[0]
		result.Content = contentText(choice.Message.Content)
		result.FinishReason = choice.FinishReason
	}

	return result, nil
}

func toChatMessages(msgs []Message) []chatMessage {
	out := make([]chatMessage, 0, len(msgs))
	for _, m := range msgs {
		if len(m.Parts) == 0 {
			out = append(out, chatMessage{Role: m.Role, Content: m.Content})
			continue
		}
		parts := make([]chatContentPart, 0, len(m.Parts))
		for _, p := range m.Parts {
			switch p.Type {
			case PartFile:
				if p.File == nil {
					continue
				}
				parts = append(parts, chatContentPart{
					Type: PartFile,
					File: &chatFile{Filename: p.File.Filename, FileData: p.File.FileData},
				})
			default:
				parts = append(parts, chatContentPart{Type: PartText, Text: p.Text})
			}
		}
		out = append(out, chatMessage{Role: m.Role, Content: parts})
	}
	return out
}

// contentText flattens message content, which may be a string or an array
// of typed parts.
func contentText(content any) string {
	switch v := content.(type) {
	case string:
		return v
	case []any:
		var b strings.Builder
		for _, item := range v {
			part, ok := item.(map[string]any)
			if !ok {
				continue
			}
			if text, ok := part["text"].(string); ok {
				b.WriteString(text)
			}
		}
		return b.String()
	default:
		return ""
	}
}
