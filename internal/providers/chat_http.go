package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// doRequest makes one HTTP request to the chat-completions endpoint.
func (c *ChatClient) doRequest(ctx context.Context, requestID string, body *chatRequest) (*chatResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if c.customerID != "" {
		req.Header.Set(CustomerIDHeader, c.customerID)
	}
	req.Header.Set(RequestIDHeader, requestID)
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	c.logger.Debug("provider.http.request",
		"request_id", requestID,
		"endpoint", c.endpoint,
		"model", body.Model,
		"bytes", len(bodyBytes))

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Warn("provider.http.failed", "request_id", requestID, "error", err)
		return nil, classifyTransportError(err, c.timeout)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, classifyTransportError(fmt.Errorf("failed to read response: %w", err), c.timeout)
	}

	c.logger.Debug("provider.http.response",
		"request_id", requestID,
		"status", resp.StatusCode,
		"elapsed_ms", time.Since(start).Milliseconds())

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, newServiceError(resp.StatusCode, respBody)
	}

	var chatResp chatResponse
	if err := json.Unmarshal(respBody, &chatResp); err != nil {
		c.logger.Warn("provider.http.decode_failed", "request_id", requestID, "error", err)
		return nil, newResponseDecodeError(resp.StatusCode, respBody, err)
	}

	// Some gateways report upstream failures inside a 2xx body.
	if chatResp.Error != nil && len(chatResp.Choices) == 0 {
		return nil, &ServiceError{
			StatusCode: resp.StatusCode,
			Status:     "upstream error",
			Body:       chatResp.Error.Message,
		}
	}

	return &chatResp, nil
}
