// Package llmcall records extraction service calls for traceability.
// Every call is recorded with its prompt hash, token usage, latency and outcome.
package llmcall

import (
	"time"

	"github.com/google/uuid"

	"github.com/jackzampolin/shiftparse/internal/providers"
)

// Call represents a recorded extraction service call.
type Call struct {
	// Unique identifier
	ID        string `json:"id" yaml:"id"`
	RequestID string `json:"request_id" yaml:"request_id"`

	// Timing
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`
	LatencyMs int64     `json:"latency_ms" yaml:"latency_ms"`

	// Input
	Filename       string `json:"filename" yaml:"filename"`
	EmployeeFilter string `json:"employee_filter,omitempty" yaml:"employee_filter,omitempty"`

	// Prompt traceability
	PromptKey  string `json:"prompt_key" yaml:"prompt_key"`
	PromptHash string `json:"prompt_hash,omitempty" yaml:"prompt_hash,omitempty"`

	// Model info
	Provider string `json:"provider" yaml:"provider"`
	Model    string `json:"model,omitempty" yaml:"model,omitempty"`

	// Token usage
	InputTokens  int `json:"input_tokens" yaml:"input_tokens"`
	OutputTokens int `json:"output_tokens" yaml:"output_tokens"`

	// Outcome
	Shifts    int    `json:"shifts" yaml:"shifts"`
	Success   bool   `json:"success" yaml:"success"`
	ErrorKind string `json:"error_kind,omitempty" yaml:"error_kind,omitempty"`
	Error     string `json:"error,omitempty" yaml:"error,omitempty"`
}

// RecordOptions provides context for recording a call.
type RecordOptions struct {
	RequestID      string
	Filename       string
	EmployeeFilter string

	// Prompt identification
	PromptKey  string
	PromptHash string

	// Provider is used when the call failed before a result was returned.
	Provider string
	Model    string
}

// New creates a Call from its options. result may be nil for calls that
// failed in transport; latency is then taken from elapsed.
func New(result *providers.CompletionResult, opts RecordOptions, elapsed time.Duration) *Call {
	call := &Call{
		ID:             uuid.New().String(),
		RequestID:      opts.RequestID,
		Timestamp:      time.Now(),
		LatencyMs:      elapsed.Milliseconds(),
		Filename:       opts.Filename,
		EmployeeFilter: opts.EmployeeFilter,
		PromptKey:      opts.PromptKey,
		PromptHash:     opts.PromptHash,
		Provider:       opts.Provider,
		Model:          opts.Model,
	}
	if result == nil {
		return call
	}

	if result.ExecutionTime > 0 {
		call.LatencyMs = result.ExecutionTime.Milliseconds()
	}
	if result.Provider != "" {
		call.Provider = result.Provider
	}
	if result.ModelUsed != "" {
		call.Model = result.ModelUsed
	}
	call.InputTokens = result.PromptTokens
	call.OutputTokens = result.CompletionTokens
	return call
}

// Succeed marks the call successful with the number of shifts extracted.
func (c *Call) Succeed(shifts int) *Call {
	c.Success = true
	c.Shifts = shifts
	c.ErrorKind = ""
	c.Error = ""
	return c
}

// Fail marks the call failed.
func (c *Call) Fail(kind string, err error) *Call {
	c.Success = false
	c.ErrorKind = kind
	if err != nil {
		c.Error = err.Error()
	}
	return c
}
