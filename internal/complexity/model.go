package complexity

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/jonathan/prompt-enhancer/internal/llm"
	"github.com/jonathan/prompt-enhancer/internal/prompts"
	"github.com/jonathan/prompt-enhancer/internal/schemas"
	"github.com/jonathan/prompt-enhancer/internal/types"
)

// DefaultModelTimeout bounds the single model call.
const DefaultModelTimeout = 8 * time.Second

const fallbackConfidence = 0.4

// modelAnalysis is the JSON shape returned by the model.
type modelAnalysis struct {
	Level            types.ComplexityLevel  `json:"level"`
	UserExpertise    string                 `json:"userExpertiseLevel"`
	ResponseStrategy types.ResponseStrategy `json:"responseStrategy"`
	Score            int                    `json:"score"`
	EstimatedTokens  int                    `json:"estimatedTokens"`
	Confidence       float64                `json:"confidence"`
}

// ModelAssisted asks a language model for the analysis and falls back to the deterministic
// classifier on any failure. The deterministic score and indicators are always kept.
type ModelAssisted struct {
	client   llm.Client
	fallback *Deterministic
	timeout  time.Duration
	logger   *zap.Logger
}

// NewModelAssisted creates a model-assisted classifier. A zero timeout uses DefaultModelTimeout.
func NewModelAssisted(client llm.Client, fallback *Deterministic, timeout time.Duration, logger *zap.Logger) *ModelAssisted {
	if fallback == nil {
		fallback = NewDeterministic(nil)
	}
	if timeout <= 0 {
		timeout = DefaultModelTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ModelAssisted{
		client:   client,
		fallback: fallback,
		timeout:  timeout,
		logger:   logger,
	}
}

// Analyze returns the model's analysis, or the deterministic one with lowered confidence.
func (m *ModelAssisted) Analyze(ctx context.Context, prompt string) types.ComplexityAnalysis {
	base := m.fallback.Analyze(ctx, prompt)

	result, err := m.ask(ctx, prompt, base)
	if err != nil {
		m.logger.Warn("model-assisted classification fell back to heuristics",
			zap.Error(err),
			zap.String("level", string(base.Level)))
		return degrade(base)
	}

	analysis := base
	analysis.Level = result.Level
	analysis.UserExpertise = result.UserExpertise
	analysis.ResponseStrategy = result.ResponseStrategy
	analysis.EstimatedTokens = result.EstimatedTokens
	analysis.Confidence = result.Confidence
	analysis.ModelScore = result.Score
	analysis.Source = types.SourceModel
	return analysis
}

func (m *ModelAssisted) ask(ctx context.Context, prompt string, base types.ComplexityAnalysis) (result *modelAnalysis, err error) {
	if m.client == nil {
		return nil, &Error{Stage: "client", Cause: fmt.Errorf("no model client configured")}
	}
	defer func() {
		if r := recover(); r != nil {
			result, err = nil, &Error{Stage: "call", Cause: fmt.Errorf("panic: %v", r)}
		}
	}()

	system, err := prompts.Get(prompts.Enhancement, "classify-system")
	if err != nil {
		return nil, &Error{Stage: "prompt", Cause: err}
	}
	user, err := prompts.Render(prompts.Enhancement, "classify-user", map[string]string{
		"Prompt":     prompt,
		"Level":      string(base.Level),
		"Indicators": strings.Join(base.Indicators, ", "),
	})
	if err != nil {
		return nil, &Error{Stage: "prompt", Cause: err}
	}

	callCtx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	raw, err := m.client.GenerateJSON(callCtx, llm.Request{System: system, Prompt: user, Tier: llm.TierLite})
	if err != nil {
		return nil, &Error{Stage: "call", Cause: err}
	}

	return parseAnalysis(raw)
}

// parseAnalysis cleans, validates and decodes a model response.
func parseAnalysis(raw string) (*modelAnalysis, error) {
	cleaned := llm.CleanJSONBlock(raw)
	if err := schemas.Validate(schemas.ComplexityAnalysis, cleaned); err != nil {
		return nil, &Error{Stage: "validate", Cause: fmt.Errorf("%w: %w", ErrInvalidAnalysis, err)}
	}
	var result modelAnalysis
	if err := json.Unmarshal([]byte(cleaned), &result); err != nil {
		return nil, &Error{Stage: "decode", Cause: fmt.Errorf("%w: %w", ErrInvalidAnalysis, err)}
	}
	return &result, nil
}

func degrade(base types.ComplexityAnalysis) types.ComplexityAnalysis {
	out := base
	out.Confidence = fallbackConfidence
	out.Source = types.SourceFallback
	out.Indicators = append(append([]string{}, base.Indicators...), types.SourceFallback)
	return out
}
