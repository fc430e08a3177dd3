package config

import (
	"fmt"
	"os"
	"strconv"
)

// Environment variables read by FromEnv.
const (
	EnvGeminiAPIKey   = "GEMINI_API_KEY"
	EnvContext7APIKey = "CONTEXT7_API_KEY"
	EnvDocsBaseURL    = "CONTEXT7_BASE_URL"
	EnvDatabaseURL    = "DATABASE_URL"
	EnvTablesPath     = "PROMPT_ENHANCER_TABLES"
	EnvFetchTokens    = "PROMPT_ENHANCER_FETCH_TOKENS"
	EnvPort           = "PORT"
)

// FromEnv builds a Config from environment variables. Unset variables leave fields empty.
func FromEnv() (Config, error) {
	cfg := Config{
		GeminiAPIKey:   os.Getenv(EnvGeminiAPIKey),
		Context7APIKey: os.Getenv(EnvContext7APIKey),
		DocsBaseURL:    os.Getenv(EnvDocsBaseURL),
		DatabaseURL:    os.Getenv(EnvDatabaseURL),
		TablesPath:     os.Getenv(EnvTablesPath),
	}

	var err error
	if cfg.FetchTokens, err = envInt(EnvFetchTokens); err != nil {
		return Config{}, err
	}
	if cfg.Port, err = envInt(EnvPort); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func envInt(name string) (int, error) {
	raw := os.Getenv(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %v", name, err)
	}
	return n, nil
}
