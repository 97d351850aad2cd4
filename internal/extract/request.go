package extract

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/jackzampolin/shiftparse/internal/document"
	"github.com/jackzampolin/shiftparse/internal/prompts"
	"github.com/jackzampolin/shiftparse/internal/prompts/extraction"
	"github.com/jackzampolin/shiftparse/internal/providers"
	"github.com/jackzampolin/shiftparse/internal/schedule"
)

// Options configures how a schedule is requested from the service.
type Options struct {
	// Model overrides the client's default model when set.
	Model string
	// Language selects weekday names and the default absence codes.
	Language string
	// AbsenceCodes are enumerated in the instruction. Nil selects the
	// defaults for Language.
	AbsenceCodes []schedule.AbsenceCode
	// EmployeeFilter applies when a call does not pass its own filter.
	EmployeeFilter string
}

// RequestBuilder renders extraction requests from the prompt templates.
type RequestBuilder struct {
	resolver *prompts.Resolver
	opts     Options
}

// NewRequestBuilder creates a builder. A nil resolver gets one with the
// embedded extraction prompts registered.
func NewRequestBuilder(resolver *prompts.Resolver, opts Options) *RequestBuilder {
	if resolver == nil {
		resolver = prompts.NewResolver(nil)
		extraction.RegisterPrompts(resolver)
	}
	return &RequestBuilder{resolver: resolver, opts: opts}
}

// Options returns the builder's options.
func (b *RequestBuilder) Options() Options {
	return b.opts
}

// Filter returns the effective employee filter for a call.
func (b *RequestBuilder) Filter(employeeFilter string) string {
	if f := strings.TrimSpace(employeeFilter); f != "" {
		return f
	}
	return strings.TrimSpace(b.opts.EmployeeFilter)
}

func (b *RequestBuilder) absenceCodes() []schedule.AbsenceCode {
	if b.opts.AbsenceCodes != nil {
		return b.opts.AbsenceCodes
	}
	return schedule.DefaultAbsenceCodes(b.opts.Language)
}

// SystemPrompt renders the system instruction for an employee filter.
func (b *RequestBuilder) SystemPrompt(employeeFilter string) (string, error) {
	p, err := b.resolver.Resolve(extraction.SystemPromptKey)
	if err != nil {
		return "", err
	}
	data := extraction.NewSystemData(b.opts.Language, b.absenceCodes(), b.Filter(employeeFilter))
	return prompts.Render(p.Key, p.Text, data)
}

// PromptHash identifies the system prompt text in effect, override or default.
func (b *RequestBuilder) PromptHash() string {
	p, err := b.resolver.Resolve(extraction.SystemPromptKey)
	if err != nil {
		return ""
	}
	return p.Hash
}

// UserPrompt renders the user directive sent alongside the document.
func (b *RequestBuilder) UserPrompt(filename string) (string, error) {
	p, err := b.resolver.Resolve(extraction.UserPromptKey)
	if err != nil {
		return "", err
	}
	return prompts.Render(p.Key, p.Text, extraction.UserData{Filename: filename})
}

// Build creates the completion request for doc: a system instruction, and a
// user message carrying the directive text and the document as a file part.
func (b *RequestBuilder) Build(doc *document.Document, employeeFilter string) (*providers.CompletionRequest, error) {
	system, err := b.SystemPrompt(employeeFilter)
	if err != nil {
		return nil, fmt.Errorf("failed to render system prompt: %w", err)
	}
	user, err := b.UserPrompt(doc.Filename)
	if err != nil {
		return nil, fmt.Errorf("failed to render user prompt: %w", err)
	}

	return &providers.CompletionRequest{
		Model:     b.opts.Model,
		RequestID: uuid.New().String(),
		Messages: []providers.Message{
			{Role: "system", Content: system},
			{Role: "user", Parts: []providers.ContentPart{
				providers.TextPart(user),
				providers.FileContent(doc.Filename, doc.DataURI()),
			}},
		},
	}, nil
}
