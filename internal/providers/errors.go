package providers

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"
)

// maxErrorBody bounds how much of an error response body is kept.
const maxErrorBody = 2048

// ServiceError is a non-success response from the extraction service.
type ServiceError struct {
	StatusCode int
	Status     string // status description, e.g. "Bad Gateway"
	Body       string
}

func (e *ServiceError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("extraction service error (status %d %s)", e.StatusCode, e.Status)
	}
	return fmt.Sprintf("extraction service error (status %d %s): %s", e.StatusCode, e.Status, e.Body)
}

func newServiceError(statusCode int, body []byte) *ServiceError {
	if len(body) > maxErrorBody {
		body = append(body[:maxErrorBody:maxErrorBody], "...[truncated]"...)
	}
	return &ServiceError{
		StatusCode: statusCode,
		Status:     http.StatusText(statusCode),
		Body:       string(body),
	}
}

// ResponseDecodeError is a success response whose body is not a
// chat-completion object.
type ResponseDecodeError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *ResponseDecodeError) Error() string {
	return fmt.Sprintf("extraction service returned an undecodable response (status %d): %v", e.StatusCode, e.Err)
}

func (e *ResponseDecodeError) Unwrap() error { return e.Err }

func newResponseDecodeError(statusCode int, body []byte, err error) *ResponseDecodeError {
	if len(body) > maxErrorBody {
		body = append(body[:maxErrorBody:maxErrorBody], "...[truncated]"...)
	}
	return &ResponseDecodeError{StatusCode: statusCode, Body: string(body), Err: err}
}

// TimeoutError reports that no complete response arrived within the bound.
type TimeoutError struct {
	Timeout time.Duration
	Err     error
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("extraction service did not respond within %s", e.Timeout)
}

func (e *TimeoutError) Unwrap() error { return e.Err }

// classifyTransportError turns deadline and network timeouts into
// *TimeoutError and leaves other failures (including caller cancellation)
// wrapped as-is.
func classifyTransportError(err error, timeout time.Duration) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return &TimeoutError{Timeout: timeout, Err: err}
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &TimeoutError{Timeout: timeout, Err: err}
	}
	return fmt.Errorf("request failed: %w", err)
}
