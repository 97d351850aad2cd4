package providers

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// Client types.
const (
	TypeChat   = "chatcompletions"
	TypeOpenAI = "openai"
	TypeMock   = "mock"
)

// ErrMissingAPIKey is returned when a remote client has no credential.
var ErrMissingAPIKey = errors.New("extraction service api key is not configured (set SHIFTPARSE_API_KEY)")

// Config selects and configures a CompletionClient.
type Config struct {
	Type       string
	BaseURL    string
	Path       string
	Model      string
	APIKey     string
	CustomerID string
	Timeout    time.Duration
	Headers    map[string]string
}

// Types returns the supported client types.
func Types() []string {
	return []string{TypeChat, TypeOpenAI, TypeMock}
}

// New builds the client named by cfg.Type. An empty type selects the
// chat-completions client.
func New(cfg Config, logger *slog.Logger) (CompletionClient, error) {
	if logger == nil {
		logger = slog.Default()
	}
	kind := strings.ToLower(strings.TrimSpace(cfg.Type))

	if kind != TypeMock && strings.TrimSpace(cfg.APIKey) == "" {
		return nil, ErrMissingAPIKey
	}

	switch kind {
	case "", TypeChat:
		return NewChatClient(ChatConfig{
			APIKey:     cfg.APIKey,
			CustomerID: cfg.CustomerID,
			BaseURL:    cfg.BaseURL,
			Path:       cfg.Path,
			Model:      cfg.Model,
			Timeout:    cfg.Timeout,
			Headers:    cfg.Headers,
			Logger:     logger,
		}), nil
	case TypeOpenAI:
		return NewOpenAIClient(OpenAIConfig{
			APIKey:     cfg.APIKey,
			CustomerID: cfg.CustomerID,
			BaseURL:    cfg.BaseURL,
			Model:      cfg.Model,
			Timeout:    cfg.Timeout,
			Headers:    cfg.Headers,
			Logger:     logger,
		}), nil
	case TypeMock:
		mock := NewMockClient(`{"shifts": []}`)
		mock.DefaultModel = cfg.Model
		return mock, nil
	default:
		return nil, fmt.Errorf("unknown service type %q (supported: %s)", cfg.Type, strings.Join(Types(), ", "))
	}
}
