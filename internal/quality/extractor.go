// Package quality derives non-functional requirements from a prompt, the detected framework
// and project facts.
package quality

import (
	"strings"

	"go.uber.org/zap"

	"github.com/jonathan/prompt-enhancer/internal/heuristics"
	"github.com/jonathan/prompt-enhancer/internal/types"
)

const frameworkPlaceholder = "{{framework}}"

// Project rule sources
const (
	SourceFacts    = "facts"
	SourceSnippets = "snippets"
	SourceAny      = "any"
)

// Extractor applies the quality rule tables.
type Extractor struct {
	tables *heuristics.Tables
	logger *zap.Logger
}

// NewExtractor creates an extractor. Nil tables use the embedded defaults.
func NewExtractor(tables *heuristics.Tables, logger *zap.Logger) *Extractor {
	if tables == nil {
		tables = heuristics.Default()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{tables: tables, logger: logger}
}

// Extract returns deduplicated requirements in first-seen order: prompt rules, then framework
// rules, then project rules. It never fails; an internal error yields an empty list.
func (e *Extractor) Extract(prompt, framework string, project *types.ProjectContext) (reqs []types.QualityRequirement) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("quality extraction panicked", zap.Any("panic", r))
			reqs = []types.QualityRequirement{}
		}
	}()

	lower := strings.ToLower(prompt)
	rules := e.tables.Quality

	var found []types.QualityRequirement
	for _, rule := range rules.PromptRules {
		if containsAny(lower, rule.Keywords) {
			found = append(found, requirement(rule.Type, rule.Priority, rule.Description))
		}
	}

	if framework = strings.TrimSpace(framework); framework != "" {
		for _, rule := range rules.FrameworkRules {
			if !e.inFamilies(framework, rule.Families) {
				continue
			}
			if len(rule.PromptKeywords) > 0 && !containsAny(lower, rule.PromptKeywords) {
				continue
			}
			desc := strings.ReplaceAll(rule.Description, frameworkPlaceholder, framework)
			found = append(found, requirement(rule.Type, rule.Priority, desc))
		}
	}

	if project != nil {
		facts := strings.ToLower(strings.Join(project.Facts, "\n") + "\n" + strings.Join(project.Dependencies, "\n"))
		snippets := strings.ToLower(strings.Join(project.CodeSnippets, "\n"))
		for _, rule := range rules.ProjectRules {
			var hit bool
			switch rule.Source {
			case SourceFacts:
				hit = containsAny(facts, rule.Keywords)
			case SourceSnippets:
				hit = containsAny(snippets, rule.Keywords)
			default:
				hit = containsAny(facts, rule.Keywords) || containsAny(snippets, rule.Keywords)
			}
			if hit {
				found = append(found, requirement(rule.Type, rule.Priority, rule.Description))
			}
		}
	}

	return Deduplicate(found)
}

func (e *Extractor) inFamilies(framework string, families []string) bool {
	for _, family := range families {
		if e.tables.FrameworkHasFamily(framework, family) {
			return true
		}
	}
	return false
}

func requirement(kind, priority, description string) types.QualityRequirement {
	return types.QualityRequirement{
		Type:        kind,
		Priority:    types.Priority(strings.ToLower(priority)),
		Description: description,
	}
}

func containsAny(text string, terms []string) bool {
	for _, t := range terms {
		if t != "" && strings.Contains(text, strings.ToLower(t)) {
			return true
		}
	}
	return false
}
