// Package config provides configuration loading and validation for the CLI and server.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Defaults applied by Default and MergeWithDefaults.
const (
	DefaultDocsBaseURL  = "https://context7.com/api/v2"
	DefaultFetchTimeout = 10 * time.Second
	DefaultModelTimeout = 8 * time.Second
	DefaultCacheTTL     = 24 * time.Hour
	DefaultConcurrency  = 4
	DefaultFetchTokens  = 4000
	DefaultPort         = 8080
)

// Config represents the configuration that can be loaded from a JSON file.
// All fields are optional; missing values come from the environment or defaults.
type Config struct {
	// Upstream services
	GeminiAPIKey   string `json:"gemini_api_key,omitempty"`                        // Enables the model-assisted paths
	Context7APIKey string `json:"context7_api_key,omitempty"`                      // Documentation service key
	DocsBaseURL    string `json:"docs_base_url,omitempty" validate:"omitempty,url"` // Documentation service base URL
	DatabaseURL    string `json:"database_url,omitempty"`                          // PostgreSQL URL for the result cache

	// Behavior
	TablesPath    string `json:"tables_path,omitempty"`    // Custom heuristic tables YAML
	ModelAssisted bool   `json:"model_assisted,omitempty"` // Ask the model to classify prompts
	AIAssembly    bool   `json:"ai_assembly,omitempty"`    // Ask the model to rewrite the assembled prompt
	Verbose       bool   `json:"verbose,omitempty"`        // Debug logging and step output

	// Limits
	FetchTimeout         string `json:"fetch_timeout,omitempty" validate:"omitempty,duration"` // Per-library fetch timeout
	ModelTimeout         string `json:"model_timeout,omitempty" validate:"omitempty,duration"` // Model call timeout
	CacheTTL             string `json:"cache_ttl,omitempty" validate:"omitempty,duration"`     // Cached result lifetime
	MaxConcurrentFetches int    `json:"max_concurrent_fetches,omitempty" validate:"gte=0,lte=32"`
	FetchTokens          int    `json:"fetch_tokens,omitempty" validate:"gte=0,lte=32000"`

	// Server
	Port int `json:"port,omitempty" validate:"gte=0,lte=65535"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		DocsBaseURL:          DefaultDocsBaseURL,
		FetchTimeout:         DefaultFetchTimeout.String(),
		ModelTimeout:         DefaultModelTimeout.String(),
		CacheTTL:             DefaultCacheTTL.String(),
		MaxConcurrentFetches: DefaultConcurrency,
		FetchTokens:          DefaultFetchTokens,
		Port:                 DefaultPort,
	}
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// Validate checks that the configuration has valid values.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.RegisterValidation("duration", validDuration); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config error: %w", err)
	}

	if c.TablesPath != "" {
		if _, err := os.Stat(c.TablesPath); os.IsNotExist(err) {
			return fmt.Errorf("config error: tables file not found: %s", c.TablesPath)
		}
	}
	return nil
}

func validDuration(fl validator.FieldLevel) bool {
	d, err := time.ParseDuration(fl.Field().String())
	return err == nil && d >= 0
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	// String fields: use default if empty
	if result.GeminiAPIKey == "" {
		result.GeminiAPIKey = defaults.GeminiAPIKey
	}
	if result.Context7APIKey == "" {
		result.Context7APIKey = defaults.Context7APIKey
	}
	if result.DocsBaseURL == "" {
		result.DocsBaseURL = defaults.DocsBaseURL
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}
	if result.TablesPath == "" {
		result.TablesPath = defaults.TablesPath
	}
	if result.FetchTimeout == "" {
		result.FetchTimeout = defaults.FetchTimeout
	}
	if result.ModelTimeout == "" {
		result.ModelTimeout = defaults.ModelTimeout
	}
	if result.CacheTTL == "" {
		result.CacheTTL = defaults.CacheTTL
	}

	// Int fields: use default if zero
	if result.MaxConcurrentFetches == 0 {
		result.MaxConcurrentFetches = defaults.MaxConcurrentFetches
	}
	if result.FetchTokens == 0 {
		result.FetchTokens = defaults.FetchTokens
	}
	if result.Port == 0 {
		result.Port = defaults.Port
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}

// FetchTimeoutDuration returns the parsed fetch timeout, or the default.
func (c *Config) FetchTimeoutDuration() time.Duration {
	return parseOr(c.FetchTimeout, DefaultFetchTimeout)
}

// ModelTimeoutDuration returns the parsed model timeout, or the default.
func (c *Config) ModelTimeoutDuration() time.Duration {
	return parseOr(c.ModelTimeout, DefaultModelTimeout)
}

// CacheTTLDuration returns the parsed cache lifetime, or the default.
func (c *Config) CacheTTLDuration() time.Duration {
	return parseOr(c.CacheTTL, DefaultCacheTTL)
}

func parseOr(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(strings.TrimSpace(s))
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
