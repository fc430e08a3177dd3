// Package llm is the language-model boundary: a single chat-style call with a system instruction
// and a user message, backed by Google Gemini.
package llm

import (
	"maps"
	"time"
)

// ModelTier represents the capability level of a model
type ModelTier string

const (
	// TierLite is for classification and short structured output
	TierLite ModelTier = "lite"
	// TierStandard is for rewriting prompts
	TierStandard ModelTier = "standard"
)

// Provider represents an LLM provider
type Provider string

// ProviderGemini is the Google Gemini provider
const ProviderGemini Provider = "gemini"

// DefaultTemperature keeps output stable across identical requests.
const DefaultTemperature float32 = 0.1

// Config holds the model configuration
type Config struct {
	Provider    Provider
	Models      map[ModelTier]string
	Temperature float32
	// Timeout bounds a single call when the caller's context has no deadline. Zero means no bound.
	Timeout time.Duration
}

// DefaultConfig returns the default Gemini configuration
func DefaultConfig() *Config {
	return &Config{
		Provider: ProviderGemini,
		Models: map[ModelTier]string{
			TierLite:     "gemini-2.5-flash-lite",
			TierStandard: "gemini-2.5-flash",
		},
		Temperature: DefaultTemperature,
	}
}

// GetModel returns the model name for a given tier
func (c *Config) GetModel(tier ModelTier) string {
	if model, ok := c.Models[tier]; ok {
		return model
	}
	if model, ok := c.Models[TierStandard]; ok {
		return model
	}
	if model, ok := c.Models[TierLite]; ok {
		return model
	}
	return ""
}

// WithModel returns a copy of the config that uses model for tier
func (c *Config) WithModel(tier ModelTier, model string) *Config {
	clone := *c
	clone.Models = maps.Clone(c.Models)
	if clone.Models == nil {
		clone.Models = make(map[ModelTier]string, 1)
	}
	clone.Models[tier] = model
	return &clone
}
