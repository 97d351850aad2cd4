package config

import (
	"github.com/jackzampolin/shiftparse/internal/schedule"
)

// Config holds shiftparse configuration.
// Stored at: ./config.yaml or {home}/config.yaml
type Config struct {
	Service    ServiceCfg    `mapstructure:"service" yaml:"service"`
	Extraction ExtractionCfg `mapstructure:"extraction" yaml:"extraction"`
	Document   DocumentCfg   `mapstructure:"document" yaml:"document"`
	Server     ServerCfg     `mapstructure:"server" yaml:"server"`
	Prompts    PromptsCfg    `mapstructure:"prompts" yaml:"prompts"`
	Log        LogCfg        `mapstructure:"log" yaml:"log"`
}

// ServiceCfg configures the remote extraction service.
type ServiceCfg struct {
	Type           string `mapstructure:"type" yaml:"type"`                       // "chatcompletions", "openai", "mock"
	BaseURL        string `mapstructure:"base_url" yaml:"base_url"`               // Scheme and host, no trailing path
	Path           string `mapstructure:"path" yaml:"path"`                       // Request path (chatcompletions only)
	Model          string `mapstructure:"model" yaml:"model"`                     // Model identifier
	APIKey         string `mapstructure:"api_key" yaml:"api_key"`                 // Bearer credential (supports ${ENV_VAR} syntax)
	CustomerID     string `mapstructure:"customer_id" yaml:"customer_id"`         // Account id header (supports ${ENV_VAR} syntax)
	TimeoutSeconds int    `mapstructure:"timeout_seconds" yaml:"timeout_seconds"` // Total bound per extraction
}

// ExtractionCfg configures the extraction instruction and validation pass.
type ExtractionCfg struct {
	Language       string `mapstructure:"language" yaml:"language"`               // Weekday language (en, de)
	EmployeeFilter string `mapstructure:"employee_filter" yaml:"employee_filter"` // Default name filter
	// AbsenceCodes replaces the language defaults when non-empty.
	AbsenceCodes []schedule.AbsenceCode `mapstructure:"absence_codes" yaml:"absence_codes"`
	Validate     bool                   `mapstructure:"validate" yaml:"validate"`           // Run the local validation pass
	FillDuration bool                   `mapstructure:"fill_duration" yaml:"fill_duration"` // Compute missing durations
}

// DocumentCfg bounds accepted input documents.
type DocumentCfg struct {
	AcceptedTypes []string `mapstructure:"accepted_types" yaml:"accepted_types"`
	MaxBytes      int64    `mapstructure:"max_bytes" yaml:"max_bytes"`     // 0 disables the size check
	CountPages    bool     `mapstructure:"count_pages" yaml:"count_pages"` // Parse PDFs to count pages
	MaxPages      int      `mapstructure:"max_pages" yaml:"max_pages"`     // 0 disables the page check
}

// ServerCfg configures the HTTP server.
type ServerCfg struct {
	Host string `mapstructure:"host" yaml:"host"`
	Port string `mapstructure:"port" yaml:"port"`
}

// PromptsCfg holds prompt overrides keyed by prompt key.
type PromptsCfg struct {
	Overrides map[string]string `mapstructure:"overrides" yaml:"overrides"`
}

// LogCfg configures logging.
type LogCfg struct {
	Level string `mapstructure:"level" yaml:"level"` // debug, info, warn, error
}

// DefaultConfig returns configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Service: ServiceCfg{
			Type:           "chatcompletions",
			BaseURL:        "https://llm.blackbox.ai",
			Path:           "/chat/completions",
			Model:          "openrouter/claude-sonnet-4",
			APIKey:         "${SHIFTPARSE_API_KEY}",
			CustomerID:     "${SHIFTPARSE_CUSTOMER_ID}",
			TimeoutSeconds: 300,
		},
		Extraction: ExtractionCfg{
			Language:     "en",
			AbsenceCodes: []schedule.AbsenceCode{},
			Validate:     true,
			FillDuration: false,
		},
		Document: DocumentCfg{
			AcceptedTypes: []string{"application/pdf"},
			MaxBytes:      50 << 20,
			CountPages:    true,
			MaxPages:      0,
		},
		Server: ServerCfg{
			Host: "127.0.0.1",
			Port: "8080",
		},
		Prompts: PromptsCfg{
			Overrides: map[string]string{},
		},
		Log: LogCfg{
			Level: "info",
		},
	}
}
