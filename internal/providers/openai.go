package providers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// OpenAIConfig holds configuration for the openai-go backed client.
type OpenAIConfig struct {
	APIKey     string
	CustomerID string
	BaseURL    string
	Model      string
	Timeout    time.Duration
	Headers    map[string]string
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// OpenAIClient sends extraction requests through the official OpenAI SDK.
// It targets the same chat-completions contract as ChatClient; the base URL
// must be the directory that contains "chat/completions".
type OpenAIClient struct {
	client  openai.Client
	model   string
	timeout time.Duration
	logger  *slog.Logger
}

// NewOpenAIClient creates a new SDK-backed client.
func NewOpenAIClient(cfg OpenAIConfig) *OpenAIClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = chatDefaultBaseURL
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

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout + 5*time.Second}
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithHTTPClient(httpClient),
		option.WithMaxRetries(0),
		option.WithBaseURL(strings.TrimRight(cfg.BaseURL, "/") + "/"),
	}
	if cfg.CustomerID != "" {
		opts = append(opts, option.WithHeader(CustomerIDHeader, cfg.CustomerID))
	}
	for k, v := range cfg.Headers {
		opts = append(opts, option.WithHeader(k, v))
	}

	return &OpenAIClient{
		client:  openai.NewClient(opts...),
		model:   cfg.Model,
		timeout: cfg.Timeout,
		logger:  cfg.Logger,
	}
}

// Verify interface
var _ CompletionClient = (*OpenAIClient)(nil)

// Name returns the client identifier.
func (c *OpenAIClient) Name() string {
	return TypeOpenAI
}

// Model returns the default model.
func (c *OpenAIClient) Model() string {
	return c.model
}

// Complete sends a chat-completion request through the SDK.
func (c *OpenAIClient) Complete(ctx context.Context, req *CompletionRequest) (*CompletionResult, error) {
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

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	c.logger.Debug("provider.openai.request", "request_id", requestID, "model", model)

	completion, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:    model,
		Messages: toOpenAIMessages(req.Messages),
	}, option.WithHeader(RequestIDHeader, requestID))
	if err != nil {
		c.logger.Warn("provider.openai.failed", "request_id", requestID, "error", err)
		return nil, c.mapError(err)
	}

	result := &CompletionResult{
		Provider:         TypeOpenAI,
		ModelUsed:        completion.Model,
		RequestID:        requestID,
		PromptTokens:     int(completion.Usage.PromptTokens),
		CompletionTokens: int(completion.Usage.CompletionTokens),
		TotalTokens:      int(completion.Usage.TotalTokens),
		ExecutionTime:    time.Since(start),
	}
	if result.ModelUsed == "" {
		result.ModelUsed = model
	}
	if len(completion.Choices) > 0 {
		result.Content = completion.Choices[0].Message.Content
		result.FinishReason = string(completion.Choices[0].FinishReason)
	}
	return result, nil
}

func (c *OpenAIClient) mapError(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return &ServiceError{
			StatusCode: apiErr.StatusCode,
			Status:     http.StatusText(apiErr.StatusCode),
			Body:       apiErr.Message,
		}
	}
	return classifyTransportError(err, c.timeout)
}

func toOpenAIMessages(msgs []Message) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(msgs))
	for _, m := range msgs {
		switch m.Role {
		case "system":
			out = append(out, openai.SystemMessage(m.Content))
		case "assistant":
			out = append(out, openai.AssistantMessage(m.Content))
		default:
			if len(m.Parts) == 0 {
				out = append(out, openai.UserMessage(m.Content))
				continue
			}
			parts := make([]openai.ChatCompletionContentPartUnionParam, 0, len(m.Parts))
			for _, p := range m.Parts {
				switch p.Type {
				case PartFile:
					if p.File == nil {
						continue
					}
					parts = append(parts, openai.FileContentPart(openai.ChatCompletionContentPartFileFileParam{
						Filename: openai.String(p.File.Filename),
						FileData: openai.String(p.File.FileData),
					}))
				default:
					parts = append(parts, openai.TextContentPart(p.Text))
				}
			}
			out = append(out, openai.UserMessage(parts))
		}
	}
	return out
}
