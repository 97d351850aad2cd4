package providers

import (
	"os"
)

// TestConfig holds live service settings loaded from environment variables.
// Tests that talk to the real service skip when no key is present.
type TestConfig struct {
	APIKey     string
	CustomerID string
	BaseURL    string
}

// LoadTestConfig loads service credentials from environment variables.
func LoadTestConfig() TestConfig {
	return TestConfig{
		APIKey:     os.Getenv("SHIFTPARSE_API_KEY"),
		CustomerID: os.Getenv("SHIFTPARSE_CUSTOMER_ID"),
		BaseURL:    os.Getenv("SHIFTPARSE_SERVICE_BASE_URL"),
	}
}

// HasService returns true if a service API key is configured.
func (c TestConfig) HasService() bool {
	return c.APIKey != ""
}

// NewChatClient creates a chat-completions client from test config.
// Returns nil if not configured.
func (c TestConfig) NewChatClient() *ChatClient {
	if !c.HasService() {
		return nil
	}
	return NewChatClient(ChatConfig{
		APIKey:     c.APIKey,
		CustomerID: c.CustomerID,
		BaseURL:    c.BaseURL,
	})
}
