// Package assembly merges the enhancement context into the final prompt under a per-level token ceiling.
package assembly

import (
	"fmt"
	"math"
	"strings"

	"github.com/jonathan/prompt-enhancer/internal/complexity"
	"github.com/jonathan/prompt-enhancer/internal/docs"
	"github.com/jonathan/prompt-enhancer/internal/heuristics"
	"github.com/jonathan/prompt-enhancer/internal/quality"
	"github.com/jonathan/prompt-enhancer/internal/tokens"
	"github.com/jonathan/prompt-enhancer/internal/types"
)

// Block headers, in output order.
const (
	HeaderFrameworks     = "## Detected Frameworks"
	HeaderQuality        = "## Quality Requirements"
	HeaderBestPractices  = "## Framework Best Practices"
	HeaderFrameworkDocs  = "## Framework Documentation"
	HeaderProjectDocs    = "## Project Documentation"
	HeaderRepository     = "## Repository Context"
	HeaderCodePatterns   = "## Existing Code Patterns"
	ClosingInstruction   = "Stay consistent with the context above: follow the detected frameworks, meet the listed requirements and match the existing code patterns."
	blockSeparator       = "\n\n"
	minBlockTokens       = 50
	simpleExcerptTokens  = 100
	markupFamily         = "markup"
	frameworkHintPrefix  = "Framework: "
)

// Assembler builds enhanced prompts deterministically.
type Assembler struct {
	tables *heuristics.Tables
	scorer *docs.Scorer
}

// NewAssembler creates an assembler. Nil tables use the embedded defaults.
func NewAssembler(tables *heuristics.Tables) *Assembler {
	if tables == nil {
		tables = heuristics.Default()
	}
	return &Assembler{tables: tables, scorer: docs.NewScorer(tables)}
}

// Ceiling returns the largest token estimate an enhanced prompt may have.
func Ceiling(prompt string, level types.ComplexityLevel) int {
	return tokens.Estimate(prompt) + complexity.BudgetFor(level).Response
}

// Assemble appends the context blocks to prompt. The context is only read.
// Identical inputs always produce identical output.
func (a *Assembler) Assemble(prompt string, ectx *types.EnhancementContext, pc types.PromptComplexity) string {
	if ectx == nil {
		ectx = &types.EnhancementContext{}
	}
	b := newBuilder(prompt, complexity.BudgetFor(pc.Level).Response)

	if pc.Level == types.LevelSimple {
		a.simple(b, prompt, ectx)
		return b.String()
	}

	budget := complexity.BudgetFor(pc.Level)
	b.reserve(ClosingInstruction)

	b.add(HeaderFrameworks, frameworksBlock(ectx.Detection, ectx.Style))
	b.add(HeaderQuality, quality.Format(ectx.QualityRequirements))
	b.add(HeaderBestPractices, a.scorer.ScoreAndTrimFor(
		ectx.Documentation.Combined(), budget.Docs, prompt, actingLibraries(ectx)))
	b.add(HeaderFrameworkDocs, joinNonEmpty(ectx.FrameworkDocs, blockSeparator))
	b.add(HeaderProjectDocs, joinNonEmpty(ectx.ProjectDocs, blockSeparator))
	b.add(HeaderRepository, bullets(ectx.RepoFacts))
	b.add(HeaderCodePatterns, a.scorer.ScoreAndTrim(
		joinNonEmpty(ectx.CodeSnippets, blockSeparator), budget.Snippets, prompt))

	if b.blocks > 0 {
		b.release()
		b.line(ClosingInstruction)
	}
	return b.String()
}

// simple adds at most a framework hint and, for markup, a short documentation excerpt.
func (a *Assembler) simple(b *builder, prompt string, ectx *types.EnhancementContext) {
	fw := ectx.Detection.Primary()
	if fw == "" {
		return
	}
	if !strings.Contains(strings.ToLower(prompt), strings.ToLower(fw)) {
		b.line(frameworkHintPrefix + fw)
	}
	if a.tables.FrameworkHasFamily(fw, markupFamily) {
		excerpt := a.scorer.ScoreAndTrimFor(ectx.Documentation.Combined(), simpleExcerptTokens, prompt, fw)
		b.add(HeaderBestPractices, excerpt)
	}
}

func frameworksBlock(det *types.FrameworkDetectionResult, style string) string {
	var lines []string
	if det != nil && len(det.DetectedFrameworks) > 0 {
		lines = append(lines,
			"- Frameworks: "+strings.Join(det.DetectedFrameworks, ", "),
			fmt.Sprintf("- Detection: %s (%d%% confidence)", det.Method, int(math.Round(det.Confidence*100))))
	}
	if style = strings.TrimSpace(style); style != "" {
		lines = append(lines, "- Style: "+style)
	}
	if det != nil && len(det.Suggestions) > 0 {
		lines = append(lines, "- Suggestions:")
		for _, s := range det.Suggestions {
			lines = append(lines, "  - "+s)
		}
	}
	return strings.Join(lines, "\n")
}

// actingLibraries names the libraries whose domain boosts apply to documentation sections.
func actingLibraries(ectx *types.EnhancementContext) string {
	var names []string
	if ectx.Documentation != nil {
		names = append(names, ectx.Documentation.Libraries...)
	}
	if fw := ectx.Detection.Primary(); fw != "" {
		names = append(names, fw)
	}
	return strings.Join(names, " ")
}

func bullets(items []string) string {
	var lines []string
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			lines = append(lines, "- "+item)
		}
	}
	return strings.Join(lines, "\n")
}

func joinNonEmpty(parts []string, sep string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}
