package config

import (
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/jackzampolin/shiftparse/internal/document"
	"github.com/jackzampolin/shiftparse/internal/extract"
	"github.com/jackzampolin/shiftparse/internal/providers"
	"github.com/jackzampolin/shiftparse/internal/schedule"
)

// Validate reports configuration values that cannot work.
func (c *Config) Validate() error {
	kind := strings.ToLower(strings.TrimSpace(c.Service.Type))
	if kind != "" && !slices.Contains(providers.Types(), kind) {
		return fmt.Errorf("service.type %q is not one of %s", c.Service.Type, strings.Join(providers.Types(), ", "))
	}
	if c.Service.TimeoutSeconds < 0 {
		return fmt.Errorf("service.timeout_seconds must not be negative")
	}
	for i, code := range c.Extraction.AbsenceCodes {
		if strings.TrimSpace(code.Code) == "" {
			return fmt.Errorf("extraction.absence_codes[%d]: code is empty", i)
		}
		if t, ok := schedule.ParseEntryType(string(code.Type)); !ok || !t.IsAbsence() {
			return fmt.Errorf("extraction.absence_codes[%d]: type %q must be free, vacation or sick", i, code.Type)
		}
	}
	if c.Server.Port != "" {
		if p, err := strconv.Atoi(c.Server.Port); err != nil || p < 0 || p > 65535 {
			return fmt.Errorf("server.port %q is not a valid port", c.Server.Port)
		}
	}
	if _, err := parseLevel(c.Log.Level); err != nil {
		return err
	}
	return nil
}

// Timeout returns the per-extraction bound.
func (c *Config) Timeout() time.Duration {
	if c.Service.TimeoutSeconds <= 0 {
		return providers.DefaultTimeout
	}
	return time.Duration(c.Service.TimeoutSeconds) * time.Second
}

// ToProviderConfig converts the service section for providers.New.
// It resolves ${ENV_VAR} references in credentials.
func (c *Config) ToProviderConfig() providers.Config {
	return providers.Config{
		Type:       c.Service.Type,
		BaseURL:    ResolveEnvVars(c.Service.BaseURL),
		Path:       c.Service.Path,
		Model:      c.Service.Model,
		APIKey:     ResolveEnvVars(c.Service.APIKey),
		CustomerID: ResolveEnvVars(c.Service.CustomerID),
		Timeout:    c.Timeout(),
	}
}

// ToExtractOptions converts the extraction section for the request builder.
func (c *Config) ToExtractOptions() extract.Options {
	opts := extract.Options{
		Model:          c.Service.Model,
		Language:       c.Extraction.Language,
		EmployeeFilter: c.Extraction.EmployeeFilter,
	}
	if len(c.Extraction.AbsenceCodes) > 0 {
		opts.AbsenceCodes = c.Extraction.AbsenceCodes
	}
	return opts
}

// ToDocumentLimits converts the document section for document.Inspect.
func (c *Config) ToDocumentLimits() document.Limits {
	return document.Limits{
		AcceptedTypes: c.Document.AcceptedTypes,
		MaxBytes:      c.Document.MaxBytes,
		CountPages:    c.Document.CountPages,
		MaxPages:      c.Document.MaxPages,
	}
}

// ToPipelineConfig assembles an extract.Config around client.
func (c *Config) ToPipelineConfig(client providers.CompletionClient, logger *slog.Logger) extract.Config {
	return extract.Config{
		Client:         client,
		Options:        c.ToExtractOptions(),
		Limits:         c.ToDocumentLimits(),
		SkipValidation: !c.Extraction.Validate,
		FillDuration:   c.Extraction.FillDuration,
		Logger:         logger,
	}
}

// LogLevel returns the configured slog level.
func (c *Config) LogLevel() slog.Level {
	level, _ := parseLevel(c.Log.Level)
	return level
}

func parseLevel(s string) (slog.Level, error) {
	if strings.TrimSpace(s) == "" {
		return slog.LevelInfo, nil
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo, fmt.Errorf("log.level %q is not a valid level", s)
	}
	return level, nil
}
