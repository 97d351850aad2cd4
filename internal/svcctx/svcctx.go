// Package svcctx provides service context for dependency injection via context.
// This package is separate from server to avoid import cycles with endpoints.
package svcctx

import (
	"context"
	"log/slog"

	"github.com/jackzampolin/shiftparse/internal/config"
	"github.com/jackzampolin/shiftparse/internal/export"
	"github.com/jackzampolin/shiftparse/internal/extract"
	"github.com/jackzampolin/shiftparse/internal/home"
	"github.com/jackzampolin/shiftparse/internal/llmcall"
	"github.com/jackzampolin/shiftparse/internal/prompts"
)

// Services holds all core services that flow through context.
// Components extract what they need via the individual extractors.
type Services struct {
	Pipeline *extract.Pipeline
	Session  *extract.Session
	Resolver *prompts.Resolver
	Exporter *export.Service
	Recorder *llmcall.Recorder
	Config   *config.Manager
	Logger   *slog.Logger
	Home     *home.Dir
}

type servicesKey struct{}

// WithServices returns a new context with services attached.
func WithServices(ctx context.Context, s *Services) context.Context {
	return context.WithValue(ctx, servicesKey{}, s)
}

// ServicesFrom extracts the full Services struct from context.
// Returns nil if not present.
func ServicesFrom(ctx context.Context) *Services {
	s, _ := ctx.Value(servicesKey{}).(*Services)
	return s
}

// PipelineFrom extracts the extraction pipeline from context.
func PipelineFrom(ctx context.Context) *extract.Pipeline {
	if s := ServicesFrom(ctx); s != nil {
		return s.Pipeline
	}
	return nil
}

// SessionFrom extracts the extraction session from context.
func SessionFrom(ctx context.Context) *extract.Session {
	if s := ServicesFrom(ctx); s != nil {
		return s.Session
	}
	return nil
}

// PromptResolverFrom extracts the prompt resolver from context.
func PromptResolverFrom(ctx context.Context) *prompts.Resolver {
	if s := ServicesFrom(ctx); s != nil {
		return s.Resolver
	}
	return nil
}

// ExporterFrom extracts the spreadsheet exporter from context.
func ExporterFrom(ctx context.Context) *export.Service {
	if s := ServicesFrom(ctx); s != nil {
		return s.Exporter
	}
	return nil
}

// RecorderFrom extracts the service call recorder from context.
func RecorderFrom(ctx context.Context) *llmcall.Recorder {
	if s := ServicesFrom(ctx); s != nil {
		return s.Recorder
	}
	return nil
}

// ConfigFrom extracts the config manager from context.
func ConfigFrom(ctx context.Context) *config.Manager {
	if s := ServicesFrom(ctx); s != nil {
		return s.Config
	}
	return nil
}

// LoggerFrom extracts the logger from context.
// Returns slog.Default() if not present.
func LoggerFrom(ctx context.Context) *slog.Logger {
	if s := ServicesFrom(ctx); s != nil && s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}

// HomeFrom extracts the home directory from context.
func HomeFrom(ctx context.Context) *home.Dir {
	if s := ServicesFrom(ctx); s != nil {
		return s.Home
	}
	return nil
}
