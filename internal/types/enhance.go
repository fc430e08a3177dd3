package types

import (
	"github.com/go-playground/validator/v10"
)

// EnhancementContext is everything retrieved or derived for one request.
// It is built once and only read by the assembler.
type EnhancementContext struct {
	RepoFacts           []string                  `json:"repo_facts,omitempty"`
	CodeSnippets        []string                  `json:"code_snippets,omitempty"`
	Documentation       *DocumentationBundle      `json:"documentation,omitempty"`
	QualityRequirements []QualityRequirement      `json:"quality_requirements,omitempty"`
	Detection           *FrameworkDetectionResult `json:"detection,omitempty"`
	FrameworkDocs       []string                  `json:"framework_docs,omitempty"`
	ProjectDocs         []string                  `json:"project_docs,omitempty"`
	Style               string                    `json:"style,omitempty"`
}

// RequestContext is the optional caller-supplied context of an enhance request.
type RequestContext struct {
	Framework      string          `json:"framework,omitempty" validate:"max=64"`
	Style          string          `json:"style,omitempty" validate:"max=200"`
	ProjectContext *ProjectContext `json:"project_context,omitempty"`
}

// EnhanceOptions tunes a single enhance request.
type EnhanceOptions struct {
	MaxTokens       int  `json:"max_tokens,omitempty" validate:"gte=0,lte=32000"`
	IncludeMetadata bool `json:"include_metadata,omitempty"`
	UseCache        bool `json:"use_cache,omitempty"`
}

// EnhanceRequest is the input of the top-level enhance operation.
// An empty prompt is allowed; it yields a minimal result.
type EnhanceRequest struct {
	Prompt  string          `json:"prompt" validate:"max=20000"`
	Context *RequestContext `json:"context,omitempty"`
	Options EnhanceOptions  `json:"options,omitempty"`
}

// Validate validates the EnhanceRequest using the validator.
func (r *EnhanceRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// Framework returns the explicit framework, if any.
func (r *EnhanceRequest) Framework() string {
	if r.Context == nil {
		return ""
	}
	return r.Context.Framework
}

// Style returns the requested style, if any.
func (r *EnhanceRequest) Style() string {
	if r.Context == nil {
		return ""
	}
	return r.Context.Style
}

// Project returns the project context, if any.
func (r *EnhanceRequest) Project() *ProjectContext {
	if r.Context == nil {
		return nil
	}
	return r.Context.ProjectContext
}

// ContextUsed summarises which context went into an enhanced prompt.
type ContextUsed struct {
	RequestID           string          `json:"request_id"`
	Level               ComplexityLevel `json:"level"`
	Score               float64         `json:"score"`
	Frameworks          []string        `json:"frameworks"`
	DetectionMethod     DetectionMethod `json:"detection_method"`
	LibraryIDs          []string        `json:"library_ids,omitempty"`
	SucceededLibraryIDs []string        `json:"succeeded_library_ids,omitempty"`
	FallbackDocs        bool            `json:"fallback_docs"`
	RequirementTypes    []string        `json:"requirement_types,omitempty"`
	EstimatedTokens     int             `json:"estimated_tokens"`
	CacheHit            bool            `json:"cache_hit"`
	Metadata            *Metadata       `json:"metadata,omitempty"`
}

// Metadata is the detailed pipeline state, returned only when requested.
type Metadata struct {
	Analysis            ComplexityAnalysis        `json:"analysis"`
	Detection           *FrameworkDetectionResult `json:"detection"`
	Libraries           []LibraryCandidate        `json:"libraries,omitempty"`
	QualityRequirements []QualityRequirement      `json:"quality_requirements,omitempty"`
	Todos               []TodoItem                `json:"todos,omitempty"`
	TablesVersion       string                    `json:"tables_version"`
}

// EnhanceResult is the output of the top-level enhance operation.
type EnhanceResult struct {
	EnhancedPrompt string      `json:"enhanced_prompt"`
	ContextUsed    ContextUsed `json:"context_used"`
}
