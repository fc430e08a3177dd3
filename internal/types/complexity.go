// Package types provides type definitions for structured data used throughout the prompt enhancement pipeline.
//
//nolint:revive // types is a standard Go package name pattern
package types

// ComplexityLevel is the coarse classification of a prompt that gates token budgets downstream.
type ComplexityLevel string

const (
	// LevelSimple is a short question that needs a minimal answer
	LevelSimple ComplexityLevel = "simple"
	// LevelMedium is a focused development request
	LevelMedium ComplexityLevel = "medium"
	// LevelComplex is a multi-part development request
	LevelComplex ComplexityLevel = "complex"
)

// Valid reports whether the level is one of the known levels.
func (l ComplexityLevel) Valid() bool {
	switch l {
	case LevelSimple, LevelMedium, LevelComplex:
		return true
	default:
		return false
	}
}

// PromptComplexity is derived once per request and drives every token budget downstream.
// Score is fractional because framework keywords weigh half a point.
type PromptComplexity struct {
	Level      ComplexityLevel `json:"level"`
	Score      float64         `json:"score"`
	Indicators []string        `json:"indicators"`
}

// ResponseStrategy describes how much the downstream generator should say.
type ResponseStrategy string

const (
	StrategyMinimal       ResponseStrategy = "minimal"
	StrategyStandard      ResponseStrategy = "standard"
	StrategyComprehensive ResponseStrategy = "comprehensive"
)

// Analysis sources
const (
	SourceHeuristic = "heuristic"
	SourceModel     = "model"
	SourceFallback  = "model-fallback"
)

// ComplexityAnalysis extends PromptComplexity with the estimates produced by the classifier strategies.
type ComplexityAnalysis struct {
	PromptComplexity
	UserExpertise    string           `json:"user_expertise"`
	ResponseStrategy ResponseStrategy `json:"response_strategy"`
	EstimatedTokens  int              `json:"estimated_tokens"`
	Confidence       float64          `json:"confidence"`
	ModelScore       int              `json:"model_score,omitempty"`
	Source           string           `json:"source"`
}
