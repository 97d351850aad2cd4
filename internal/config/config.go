// Package config loads shiftparse configuration from a YAML file, .env
// files and SHIFTPARSE_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v2"
)

// EnvPrefix prefixes every environment override, e.g. SHIFTPARSE_SERVICE_MODEL.
const EnvPrefix = "SHIFTPARSE"

// Manager handles loading and hot-reloading configuration.
type Manager struct {
	mu        sync.RWMutex
	v         *viper.Viper
	config    *Config
	callbacks []func(*Config)
}

// NewManager creates a new config manager and loads initial config.
// With an empty cfgFile, config.yaml is looked up in the working directory
// and then in each search path. A .env file next to any of them is loaded
// first; variables already set in the environment win.
func NewManager(cfgFile string, searchPaths ...string) (*Manager, error) {
	cm := &Manager{
		v:         viper.New(),
		callbacks: make([]func(*Config), 0),
	}

	dirs := append([]string{"."}, searchPaths...)
	if cfgFile != "" {
		dirs = append([]string{filepath.Dir(cfgFile)}, dirs...)
	}
	LoadDotEnv(dirs...)

	if err := cm.initViper(cfgFile, searchPaths); err != nil {
		return nil, err
	}

	cfg, err := cm.load()
	if err != nil {
		return nil, err
	}
	cm.config = cfg

	return cm, nil
}

// initViper sets up viper with defaults and config file.
func (cm *Manager) initViper(cfgFile string, searchPaths []string) error {
	v := cm.v
	setDefaults(v, DefaultConfig())

	// Environment variables with SHIFTPARSE_ prefix, nested keys joined by _
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Config file
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		for _, p := range searchPaths {
			v.AddConfigPath(p)
		}
	}

	// Try to read config file (not required)
	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	return nil
}

// setDefaults registers every leaf key so that environment overrides are
// visible to Unmarshal.
func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("service.type", d.Service.Type)
	v.SetDefault("service.base_url", d.Service.BaseURL)
	v.SetDefault("service.path", d.Service.Path)
	v.SetDefault("service.model", d.Service.Model)
	v.SetDefault("service.api_key", d.Service.APIKey)
	v.SetDefault("service.customer_id", d.Service.CustomerID)
	v.SetDefault("service.timeout_seconds", d.Service.TimeoutSeconds)

	v.SetDefault("extraction.language", d.Extraction.Language)
	v.SetDefault("extraction.employee_filter", d.Extraction.EmployeeFilter)
	v.SetDefault("extraction.absence_codes", d.Extraction.AbsenceCodes)
	v.SetDefault("extraction.validate", d.Extraction.Validate)
	v.SetDefault("extraction.fill_duration", d.Extraction.FillDuration)

	v.SetDefault("document.accepted_types", d.Document.AcceptedTypes)
	v.SetDefault("document.max_bytes", d.Document.MaxBytes)
	v.SetDefault("document.count_pages", d.Document.CountPages)
	v.SetDefault("document.max_pages", d.Document.MaxPages)

	v.SetDefault("server.host", d.Server.Host)
	v.SetDefault("server.port", d.Server.Port)

	v.SetDefault("prompts.overrides", d.Prompts.Overrides)

	v.SetDefault("log.level", d.Log.Level)
}

// load parses the current viper state into a Config struct.
func (cm *Manager) load() (*Config, error) {
	var cfg Config
	if err := cm.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Get returns the current configuration (thread-safe).
func (cm *Manager) Get() *Config {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return cm.config
}

// ConfigFile returns the config file in use, or "" when running on
// defaults and environment only.
func (cm *Manager) ConfigFile() string {
	return cm.v.ConfigFileUsed()
}

// OnChange registers a callback for config changes.
func (cm *Manager) OnChange(fn func(*Config)) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	cm.callbacks = append(cm.callbacks, fn)
}

// WatchConfig enables hot-reloading of configuration. A changed file that
// fails to load or validate is ignored and the previous config stays active.
func (cm *Manager) WatchConfig() {
	cm.v.OnConfigChange(func(e fsnotify.Event) {
		cfg, err := cm.load()
		if err != nil {
			return
		}

		cm.mu.Lock()
		cm.config = cfg
		callbacks := make([]func(*Config), len(cm.callbacks))
		copy(callbacks, cm.callbacks)
		cm.mu.Unlock()

		for _, fn := range callbacks {
			fn(cfg)
		}
	})
	cm.v.WatchConfig()
}

// LoadDotEnv loads the .env file in each directory that has one and returns
// the files loaded. Existing environment variables are not overridden.
func LoadDotEnv(dirs ...string) []string {
	var loaded []string
	seen := make(map[string]bool)
	for _, dir := range dirs {
		path := filepath.Join(dir, ".env")
		if abs, err := filepath.Abs(path); err == nil {
			path = abs
		}
		if seen[path] {
			continue
		}
		seen[path] = true
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := godotenv.Load(path); err == nil {
			loaded = append(loaded, path)
		}
	}
	return loaded
}

var envPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// ResolveEnvVars expands ${ENV_VAR} references in a string.
func ResolveEnvVars(value string) string {
	if value == "" {
		return value
	}
	return envPattern.ReplaceAllStringFunc(value, func(match string) string {
		varName := match[2 : len(match)-1]
		return os.Getenv(varName)
	})
}

// WriteDefault writes the default configuration to the specified path.
func WriteDefault(path string) error {
	cfg := DefaultConfig()
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte(`# shiftparse configuration
# Credentials use ${ENV_VAR} syntax to reference environment variables.
# Set them in your shell or a .env file next to this one:
#   SHIFTPARSE_API_KEY=xxx
#   SHIFTPARSE_CUSTOMER_ID=xxx
# Any key can be overridden from the environment, e.g. SHIFTPARSE_SERVICE_MODEL.

`)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	return os.WriteFile(path, append(header, data...), 0o644)
}
