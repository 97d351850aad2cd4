// Package providers implements clients for the remote chat-completion
// service that performs schedule extraction.
package providers

import (
	"context"
	"time"
)

// CompletionClient sends one chat-completion request and returns the raw
// text completion. Implementations make a single attempt per call and keep
// no per-call state, so they are safe for concurrent use.
type CompletionClient interface {
	// Complete sends the request. Non-success HTTP responses are returned as
	// *ServiceError, success responses that are not chat-completion JSON as
	// *ResponseDecodeError and exceeded time bounds as *TimeoutError.
	Complete(ctx context.Context, req *CompletionRequest) (*CompletionResult, error)

	// Name returns the client identifier (e.g., "chat", "openai").
	Name() string

	// Model returns the model used when a request does not name one.
	Model() string
}

// Content part types.
const (
	PartText = "text"
	PartFile = "file"
)

// Message represents a chat message.
type Message struct {
	Role    string        // "system", "user", "assistant"
	Content string        // Plain text content, used when Parts is empty
	Parts   []ContentPart // Multipart content (text + file)
}

// ContentPart is one element of a multipart user message.
type ContentPart struct {
	Type string // PartText or PartFile
	Text string
	File *FilePart
}

// FilePart embeds a document in the request.
type FilePart struct {
	Filename string
	FileData string // data URI
}

// TextPart returns a text content part.
func TextPart(text string) ContentPart {
	return ContentPart{Type: PartText, Text: text}
}

// FileContent returns a file content part.
func FileContent(filename, dataURI string) ContentPart {
	return ContentPart{Type: PartFile, File: &FilePart{Filename: filename, FileData: dataURI}}
}

// CompletionRequest is a request to the extraction service.
type CompletionRequest struct {
	// Model selection (uses client default if empty)
	Model    string
	Messages []Message

	// Request tracking
	RequestID string
}

// CompletionResult is the response from the extraction service.
type CompletionResult struct {
	// Content is choices[0].message.content, empty if the service sent none.
	Content      string `json:"content"`
	FinishReason string `json:"finish_reason,omitempty"`

	// Token counts
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`

	ExecutionTime time.Duration `json:"execution_time"`

	// Provider info
	Provider  string `json:"provider"`
	ModelUsed string `json:"model_used"`
	RequestID string `json:"request_id"`
}
