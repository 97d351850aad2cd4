// Package extract turns a shift schedule document into a ParsedSchedule by
// way of the remote extraction service.
package extract

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackzampolin/shiftparse/internal/document"
	"github.com/jackzampolin/shiftparse/internal/llmcall"
	"github.com/jackzampolin/shiftparse/internal/prompts"
	"github.com/jackzampolin/shiftparse/internal/prompts/extraction"
	"github.com/jackzampolin/shiftparse/internal/providers"
	"github.com/jackzampolin/shiftparse/internal/schedule"
)

// Config configures a Pipeline.
type Config struct {
	Client   providers.CompletionClient
	Resolver *prompts.Resolver
	Options  Options
	Limits   document.Limits

	// SkipValidation disables the local validation pass.
	SkipValidation bool
	// FillDuration computes missing shift durations from start and end.
	FillDuration bool
	// Recorder keeps a history of service calls (optional).
	Recorder *llmcall.Recorder

	Logger *slog.Logger
}

// Pipeline runs one extraction at a time per call: inspect, encode, build,
// send, decode, validate. It holds no per-call state.
type Pipeline struct {
	client         providers.CompletionClient
	builder        *RequestBuilder
	limits         document.Limits
	skipValidation bool
	fillDuration   bool
	recorder       *llmcall.Recorder
	logger         *slog.Logger
}

// NewPipeline creates a pipeline.
func NewPipeline(cfg Config) (*Pipeline, error) {
	if cfg.Client == nil {
		return nil, fmt.Errorf("extraction client is required")
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Pipeline{
		client:         cfg.Client,
		builder:        NewRequestBuilder(cfg.Resolver, cfg.Options),
		limits:         cfg.Limits,
		skipValidation: cfg.SkipValidation,
		fillDuration:   cfg.FillDuration,
		recorder:       cfg.Recorder,
		logger:         cfg.Logger,
	}, nil
}

// Builder returns the request builder.
func (p *Pipeline) Builder() *RequestBuilder {
	return p.builder
}

// Recorder returns the call recorder, or nil.
func (p *Pipeline) Recorder() *llmcall.Recorder {
	return p.recorder
}

// Client returns the extraction client.
func (p *Pipeline) Client() providers.CompletionClient {
	return p.client
}

// Extract runs the pipeline on an in-memory document. An empty schedule is
// reported as an ErrNoMatch error; no schedule is returned with an error.
func (p *Pipeline) Extract(ctx context.Context, data []byte, filename, employeeFilter string) (*schedule.ParsedSchedule, error) {
	return p.ExtractDocument(ctx, document.New(data, filename), employeeFilter)
}

// ExtractFile reads path to completion and runs the pipeline on it.
func (p *Pipeline) ExtractFile(ctx context.Context, path, employeeFilter string) (*schedule.ParsedSchedule, error) {
	doc, err := document.ReadFile(path)
	if err != nil {
		return nil, newError(ErrRead, err, "Could not read file %s", path)
	}
	return p.ExtractDocument(ctx, doc, employeeFilter)
}

// ExtractDocument runs the pipeline on doc.
func (p *Pipeline) ExtractDocument(ctx context.Context, doc *document.Document, employeeFilter string) (*schedule.ParsedSchedule, error) {
	start := time.Now()
	filter := p.builder.Filter(employeeFilter)

	info, err := document.Inspect(doc, p.limits)
	if err != nil {
		var invalid *document.InvalidInputError
		if errors.As(err, &invalid) {
			return nil, newError(ErrInvalidInput, err, "Please select a valid PDF file (%s)", invalid.Reason)
		}
		return nil, newError(ErrInvalidInput, err, "Please select a valid PDF file")
	}

	req, err := p.builder.Build(doc, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to build extraction request: %w", err)
	}

	logger := p.logger.With("request_id", req.RequestID)
	logger.Info("extract.request",
		"filename", info.Filename,
		"bytes", info.Size,
		"pages", info.Pages,
		"employee_filter", filter,
		"client", p.client.Name())

	model := req.Model
	if model == "" {
		model = p.client.Model()
	}
	call := llmcall.RecordOptions{
		RequestID:      req.RequestID,
		Filename:       info.Filename,
		EmployeeFilter: filter,
		PromptKey:      extraction.SystemPromptKey,
		PromptHash:     p.builder.PromptHash(),
		Provider:       p.client.Name(),
		Model:          model,
	}

	result, err := p.client.Complete(ctx, req)
	if err != nil {
		err = classifyClientError(err)
		logger.Warn("extract.failed", "error", err, "elapsed_ms", time.Since(start).Milliseconds())
		p.recorder.Record(llmcall.New(nil, call, time.Since(start)).Fail(KindName(err), err))
		return nil, err
	}

	parsed, err := p.interpret(result, filter, logger)
	record := llmcall.New(result, call, time.Since(start))
	if err != nil {
		p.recorder.Record(record.Fail(KindName(err), err))
		return nil, err
	}
	p.recorder.Record(record.Succeed(len(parsed.Shifts)))

	logger.Info("extract.complete",
		"shifts", len(parsed.Shifts),
		"employee", parsed.EmployeeName,
		"model", result.ModelUsed,
		"tokens", result.TotalTokens,
		"elapsed_ms", time.Since(start).Milliseconds())

	return parsed, nil
}

// interpret decodes the service reply and runs the validation pass.
func (p *Pipeline) interpret(result *providers.CompletionResult, filter string, logger *slog.Logger) (*schedule.ParsedSchedule, error) {
	parsed, err := Decode(result.Content)
	if err != nil {
		logger.Warn("extract.decode.failed", "error", err, "content_bytes", len(result.Content))
		return nil, err
	}
	logger.Debug("extract.decode.ok", "shifts", len(parsed.Shifts), "employee", parsed.EmployeeName)

	if parsed.Empty() {
		nm := noMatch(parsed, filter)
		logger.Info("extract.no_match", "message", nm.Message)
		return nil, nm
	}

	if !p.skipValidation {
		corrections, err := schedule.Normalize(parsed, schedule.NormalizeOptions{
			Language:     p.builder.Options().Language,
			FillDuration: p.fillDuration,
		})
		if err != nil {
			logger.Warn("extract.validate.failed", "error", err)
			return nil, newError(ErrMalformedResponse, err, "The extraction service returned an invalid schedule entry")
		}
		for _, c := range corrections {
			event := "schedule.value.corrected"
			if c.Field == "weekday" {
				event = "schedule.weekday.corrected"
			}
			logger.Info(event, "index", c.Index, "field", c.Field, "from", c.From, "to", c.To)
		}
	}
	return parsed, nil
}

func classifyClientError(err error) error {
	var svcErr *providers.ServiceError
	if errors.As(err, &svcErr) {
		status := svcErr.Status
		if status == "" {
			status = fmt.Sprintf("status %d", svcErr.StatusCode)
		}
		return newError(ErrService, err, "Failed to parse PDF: %s", status)
	}
	var decodeErr *providers.ResponseDecodeError
	if errors.As(err, &decodeErr) {
		return newError(ErrMalformedResponse, err, "The extraction service returned a response that could not be read")
	}
	var timeoutErr *providers.TimeoutError
	if errors.As(err, &timeoutErr) {
		return newError(ErrTimeout, err,
			"The extraction service did not respond within %s. Please try again.", timeoutErr.Timeout)
	}
	if errors.Is(err, context.Canceled) {
		return fmt.Errorf("extraction cancelled: %w", err)
	}
	return newError(ErrService, err, "Could not reach the extraction service. Please try again.")
}
