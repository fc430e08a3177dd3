// Package frameworks infers which frameworks a prompt is about and ranks documentation
// libraries for them.
package frameworks

import (
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/jonathan/prompt-enhancer/internal/heuristics"
	"github.com/jonathan/prompt-enhancer/internal/types"
)

const (
	explicitConfidence   = 1.0
	fallbackConfidence   = 0.3
	patternBase          = 0.6
	patternStep          = 0.1
	dependencyConfidence = 0.8
	factConfidence       = 0.7
	corroborationBonus   = 0.1
	maxConfidence        = 0.95

	suggestionsPerFramework = 2
	maxSuggestions          = 5
)

// Detector infers frameworks from the prompt and optional project context.
type Detector struct {
	tables *heuristics.Tables
	logger *zap.Logger
}

// NewDetector creates a detector. Nil tables use the embedded defaults.
func NewDetector(tables *heuristics.Tables, logger *zap.Logger) *Detector {
	if tables == nil {
		tables = heuristics.Default()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Detector{tables: tables, logger: logger}
}

// candidate is one framework with its evidence.
type candidate struct {
	fw         heuristics.Framework
	order      int
	pattern    float64
	project    float64
	confidence float64
}

// Detect never fails: an explicit framework wins, otherwise prompt patterns and project
// evidence are combined, otherwise the fallback framework is returned.
func (d *Detector) Detect(prompt string, project *types.ProjectContext, explicit string) (result types.FrameworkDetectionResult) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("framework detection panicked", zap.Any("panic", r))
			result = d.fallback()
		}
	}()

	if explicit = strings.TrimSpace(explicit); explicit != "" {
		return d.explicit(explicit)
	}

	candidates := d.collect(prompt, project)
	if len(candidates) == 0 {
		return d.fallback()
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].confidence != candidates[j].confidence {
			return candidates[i].confidence > candidates[j].confidence
		}
		return candidates[i].order < candidates[j].order
	})

	names := make([]string, 0, len(candidates))
	fws := make([]heuristics.Framework, 0, len(candidates))
	for _, c := range candidates {
		names = append(names, c.fw.Name)
		fws = append(fws, c.fw)
	}

	method := types.MethodPattern
	if candidates[0].pattern == 0 {
		method = types.MethodProject
	}

	return types.FrameworkDetectionResult{
		DetectedFrameworks: names,
		Confidence:         candidates[0].confidence,
		Suggestions:        suggestions(fws),
		Method:             method,
	}
}

func (d *Detector) explicit(name string) types.FrameworkDetectionResult {
	result := types.FrameworkDetectionResult{
		DetectedFrameworks: []string{strings.ToLower(name)},
		Confidence:         explicitConfidence,
		Method:             types.MethodExplicit,
	}
	if fw, ok := d.tables.Framework(name); ok {
		result.DetectedFrameworks = []string{fw.Name}
		result.Suggestions = suggestions([]heuristics.Framework{fw})
	}
	return result
}

func (d *Detector) fallback() types.FrameworkDetectionResult {
	name := ""
	if d.tables != nil {
		name = d.tables.FallbackFramework
	}
	if name == "" {
		name = "javascript"
	}
	return types.FrameworkDetectionResult{
		DetectedFrameworks: []string{name},
		Confidence:         fallbackConfidence,
		Method:             types.MethodFallback,
	}
}

func (d *Detector) collect(prompt string, project *types.ProjectContext) []*candidate {
	var out []*candidate
	for i, fw := range d.tables.Frameworks {
		c := &candidate{fw: fw, order: i}

		if n := fw.CountMatches(prompt); n > 0 {
			c.pattern = min(patternBase+patternStep*float64(n-1), maxConfidence)
		}
		if project != nil {
			if matchesDependency(fw, project.Dependencies) {
				c.project = dependencyConfidence
			} else if matchesAny(fw, project.Facts) {
				c.project = factConfidence
			}
		}

		switch {
		case c.pattern > 0 && c.project > 0:
			c.confidence = min(max(c.pattern, c.project)+corroborationBonus, maxConfidence)
		case c.pattern > 0:
			c.confidence = c.pattern
		case c.project > 0:
			c.confidence = c.project
		default:
			continue
		}
		out = append(out, c)
	}
	return out
}

// matchesDependency compares package names, ignoring version suffixes such as react@18 or vue ^3.
func matchesDependency(fw heuristics.Framework, deps []string) bool {
	for _, dep := range deps {
		name := dependencyName(dep)
		if name == "" {
			continue
		}
		if name == fw.Name {
			return true
		}
		for _, alias := range fw.Aliases {
			if name == strings.ToLower(alias) {
				return true
			}
		}
	}
	return false
}

func dependencyName(dep string) string {
	fields := strings.FieldsFunc(strings.ToLower(strings.TrimSpace(dep)), func(r rune) bool {
		return r == ' ' || r == ':' || r == '='
	})
	if len(fields) == 0 {
		return ""
	}
	name := fields[0]
	// keep the scope of @scope/pkg@1.2
	if at := strings.LastIndex(name, "@"); at > 0 {
		name = name[:at]
	}
	return strings.Trim(name, `"'`)
}

func matchesAny(fw heuristics.Framework, texts []string) bool {
	for _, t := range texts {
		if fw.CountMatches(t) > 0 {
			return true
		}
	}
	return false
}

func suggestions(fws []heuristics.Framework) []string {
	var out []string
	for _, fw := range fws {
		for i, s := range fw.Suggestions {
			if i == suggestionsPerFramework || len(out) == maxSuggestions {
				break
			}
			out = append(out, s)
		}
		if len(out) == maxSuggestions {
			break
		}
	}
	return out
}

// String renders a result for log lines.
func String(r types.FrameworkDetectionResult) string {
	return fmt.Sprintf("%s (%s, %.0f%%)", strings.Join(r.DetectedFrameworks, ", "), r.Method, r.Confidence*100)
}
