// Package complexity classifies how simple or complex a prompt is.
// The level it produces gates every token budget downstream.
package complexity

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/jonathan/prompt-enhancer/internal/heuristics"
	"github.com/jonathan/prompt-enhancer/internal/types"
)

// Classifier produces a complexity analysis for a prompt.
type Classifier interface {
	Analyze(ctx context.Context, prompt string) types.ComplexityAnalysis
}

const (
	simpleThreshold = 2
	mediumThreshold = 0

	heuristicConfidence = 0.7
	defaultExpertise    = "intermediate"
)

// Length indicators
const (
	IndicatorShort  = "short-prompt"
	IndicatorBrief  = "brief-prompt"
	IndicatorLong   = "long-prompt"
	frameworkPrefix = "framework:"
)

// Deterministic is the rule-based classifier. It is pure and never fails.
type Deterministic struct {
	rules heuristics.ComplexityRules
}

// NewDeterministic creates a classifier over the given tables. Nil uses the embedded defaults.
func NewDeterministic(tables *heuristics.Tables) *Deterministic {
	if tables == nil {
		tables = heuristics.Default()
	}
	return &Deterministic{rules: tables.Complexity}
}

// Classify scores the prompt and maps the score to a level.
func (d *Deterministic) Classify(prompt string) types.PromptComplexity {
	text := strings.TrimSpace(prompt)
	lower := strings.ToLower(text)
	length := utf8.RuneCountInString(text)

	var score float64
	indicators := []string{}

	switch {
	case length < 20:
		score += d.rules.Under20Bonus
		indicators = append(indicators, IndicatorShort)
	case length < 50:
		score += d.rules.Under50Bonus
		indicators = append(indicators, IndicatorBrief)
	case length > 200:
		score += d.rules.Over200Penalty
		indicators = append(indicators, IndicatorLong)
	}

	simpleHit := false
	for _, p := range d.rules.SimplePatterns {
		if p.MatchString(lower) {
			simpleHit = true
			indicators = append(indicators, p.Tag)
		}
	}
	if simpleHit {
		score += d.rules.SimpleMatchWeight
	}

	for _, p := range d.rules.ComplexPatterns {
		if p.MatchString(lower) {
			score += d.rules.ComplexMatchWeight
			indicators = append(indicators, p.Tag)
		}
	}

	for _, kw := range d.rules.MatchFrameworkKeywords(lower) {
		score += d.rules.FrameworkKeywordWeight
		indicators = append(indicators, frameworkPrefix+kw)
	}

	return types.PromptComplexity{
		Level:      levelFor(score),
		Score:      score,
		Indicators: indicators,
	}
}

// Analyze wraps Classify with the fixed estimates of the rule-based path.
func (d *Deterministic) Analyze(_ context.Context, prompt string) types.ComplexityAnalysis {
	pc := d.Classify(prompt)
	return types.ComplexityAnalysis{
		PromptComplexity: pc,
		UserExpertise:    defaultExpertise,
		ResponseStrategy: StrategyFor(pc.Level),
		EstimatedTokens:  BudgetFor(pc.Level).Response,
		Confidence:       heuristicConfidence,
		Source:           types.SourceHeuristic,
	}
}

func levelFor(score float64) types.ComplexityLevel {
	switch {
	case score >= simpleThreshold:
		return types.LevelSimple
	case score >= mediumThreshold:
		return types.LevelMedium
	default:
		return types.LevelComplex
	}
}
