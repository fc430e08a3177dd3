// Package observability provides logger construction and formatted output for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/prompt-enhancer/internal/quality"
	"github.com/jonathan/prompt-enhancer/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, clip(title, boxWidth-4))
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, clip(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// clip shortens s to n runes, marking the cut with an ellipsis.
func clip(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-3]) + "..."
}

// PrintStep outputs a one-line progress message.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintStep(step, message string) {
	fmt.Fprintf(p.out, "[%s] %s\n", step, message)
}

// PrintAnalysis outputs the complexity analysis.
func (p *Printer) PrintAnalysis(a *types.ComplexityAnalysis) {
	if a == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Level:      %s (score %.1f)\n", a.Level, a.Score))
	sb.WriteString(fmt.Sprintf("Strategy:   %s\n", a.ResponseStrategy))
	sb.WriteString(fmt.Sprintf("Expertise:  %s\n", a.UserExpertise))
	sb.WriteString(fmt.Sprintf("Tokens:     ~%d\n", a.EstimatedTokens))
	sb.WriteString(fmt.Sprintf("Confidence: %.0f%% (%s)", a.Confidence*100, a.Source))
	if len(a.Indicators) > 0 {
		sb.WriteString("\n\nIndicators:\n")
		count := min(len(a.Indicators), maxItemsToShow)
		for i := 0; i < count; i++ {
			sb.WriteString(fmt.Sprintf("  • %s\n", a.Indicators[i]))
		}
		if len(a.Indicators) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(a.Indicators)-maxItemsToShow))
		}
	}

	p.printBox("COMPLEXITY ANALYSIS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintDetection outputs detected frameworks and the libraries chosen for them.
func (p *Printer) PrintDetection(det *types.FrameworkDetectionResult, libraries []types.LibraryCandidate) {
	if det == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Frameworks: %s\n", strings.Join(det.DetectedFrameworks, ", ")))
	sb.WriteString(fmt.Sprintf("Method:     %s (%.0f%%)\n", det.Method, det.Confidence*100))

	if len(libraries) > 0 {
		sb.WriteString("\nLibraries:\n")
		for _, lib := range libraries {
			sb.WriteString(fmt.Sprintf("  • %s (score %d)\n", lib.ID, lib.Score))
		}
	}

	p.printBox("FRAMEWORK DETECTION", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintRequirements outputs the quality requirements with priority glyphs.
func (p *Printer) PrintRequirements(reqs []types.QualityRequirement) {
	if len(reqs) == 0 {
		p.printBox("QUALITY REQUIREMENTS", "None")
		return
	}

	var sb strings.Builder
	for _, r := range reqs {
		sb.WriteString(fmt.Sprintf("%s %s (%s)\n", quality.Glyph(r.Priority), r.Type, r.Priority))
	}

	p.printBox("QUALITY REQUIREMENTS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintTodos outputs decomposed todo items.
func (p *Printer) PrintTodos(todos []types.TodoItem) {
	if len(todos) == 0 {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Decomposed into %d tasks:\n\n", len(todos)))
	for i, todo := range todos {
		sb.WriteString(fmt.Sprintf("%d. %s\n", i+1, todo.Title))
		sb.WriteString(fmt.Sprintf("   [%s, %s]\n", todo.Category, todo.Priority))
	}

	p.printBox("TODOS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintContextUsed outputs the summary returned with an enhanced prompt.
func (p *Printer) PrintContextUsed(used *types.ContextUsed) {
	if used == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Request:    %s\n", used.RequestID))
	sb.WriteString(fmt.Sprintf("Level:      %s\n", used.Level))
	sb.WriteString(fmt.Sprintf("Frameworks: %s (%s)\n", strings.Join(used.Frameworks, ", "), used.DetectionMethod))
	if used.FallbackDocs {
		sb.WriteString("Docs:       fallback\n")
	} else {
		sb.WriteString(fmt.Sprintf("Docs:       %d of %d libraries\n", len(used.SucceededLibraryIDs), len(used.LibraryIDs)))
	}
	if len(used.RequirementTypes) > 0 {
		sb.WriteString(fmt.Sprintf("Quality:    %s\n", strings.Join(used.RequirementTypes, ", ")))
	}
	sb.WriteString(fmt.Sprintf("Tokens:     ~%d\n", used.EstimatedTokens))
	if used.CacheHit {
		sb.WriteString("Cache:      hit\n")
	}

	p.printBox("CONTEXT USED", strings.TrimSuffix(sb.String(), "\n"))
}
