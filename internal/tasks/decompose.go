// Package tasks decides whether a prompt should be broken into todo items and builds them.
package tasks

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/jonathan/prompt-enhancer/internal/heuristics"
	"github.com/jonathan/prompt-enhancer/internal/types"
)

const (
	tagDevelopmentVerb = "development-verb"
	categoryGeneral    = "general"
	maxTitleRunes      = 80
	minPartRunes       = 3
)

// categoryTags are checked in order; the first tag whose pattern matches a part names its category.
var categoryTags = []string{"testing-debugging", "deployment", "backend", "code-structure"}

var (
	listItemRe    = regexp.MustCompile(`(?m)^\s*(?:[-*•]|\d+[.)])\s+(.+?)\s*$`)
	sentenceSepRe = regexp.MustCompile(`[.!?;]+(?:\s+|$)|\n+`)
	clauseSepRe   = regexp.MustCompile(`(?i),\s*|\s+(?:and then|and|then)\s+`)
)

// Decomposer applies the decomposition rules from the heuristic tables.
type Decomposer struct {
	tables *heuristics.Tables
}

// NewDecomposer creates a decomposer. Nil tables use the embedded defaults.
func NewDecomposer(tables *heuristics.Tables) *Decomposer {
	if tables == nil {
		tables = heuristics.Default()
	}
	return &Decomposer{tables: tables}
}

// ShouldDecompose reports whether prompt is long, asks to build something and has several parts.
func (d *Decomposer) ShouldDecompose(prompt string) bool {
	prompt = strings.TrimSpace(prompt)
	rule := d.tables.Decomposition
	if utf8.RuneCountInString(prompt) < rule.MinLength {
		return false
	}
	if !d.matchesTag(tagDevelopmentVerb, prompt) {
		return false
	}
	return len(Parts(prompt)) >= rule.MinParts
}

// Decompose returns one todo item per part of prompt, or nil when it should not be decomposed.
func (d *Decomposer) Decompose(prompt string) []types.TodoItem {
	if !d.ShouldDecompose(prompt) {
		return nil
	}
	parts := Parts(strings.TrimSpace(prompt))
	if limit := d.tables.Decomposition.MaxItems; limit > 0 && len(parts) > limit {
		parts = parts[:limit]
	}

	items := make([]types.TodoItem, 0, len(parts))
	for i, part := range parts {
		category := d.category(part)
		items = append(items, types.TodoItem{
			Title:       title(part),
			Description: part,
			Priority:    priority(i, category),
			Category:    category,
		})
	}
	return items
}

// Parts splits prompt into list items when it has at least two, otherwise into sentences,
// otherwise into clauses.
func Parts(prompt string) []string {
	var items []string
	for _, m := range listItemRe.FindAllStringSubmatch(prompt, -1) {
		items = append(items, m[1])
	}
	if parts := clean(items); len(parts) >= 2 {
		return parts
	}
	if parts := clean(sentenceSepRe.Split(prompt, -1)); len(parts) >= 2 {
		return parts
	}
	return clean(clauseSepRe.Split(prompt, -1))
}

func clean(raw []string) []string {
	out := make([]string, 0, len(raw))
	for _, p := range raw {
		p = strings.TrimSpace(strings.TrimRight(strings.TrimSpace(p), ".!?;,:"))
		if utf8.RuneCountInString(p) >= minPartRunes {
			out = append(out, p)
		}
	}
	return out
}

func (d *Decomposer) matchesTag(tag, text string) bool {
	for _, p := range d.tables.Complexity.ComplexPatterns {
		if p.Tag == tag && p.MatchString(text) {
			return true
		}
	}
	return false
}

func (d *Decomposer) category(part string) string {
	for _, tag := range categoryTags {
		if d.matchesTag(tag, part) {
			return tag
		}
	}
	return categoryGeneral
}

func priority(index int, category string) types.Priority {
	switch {
	case index == 0:
		return types.PriorityHigh
	case category == "deployment":
		return types.PriorityLow
	default:
		return types.PriorityMedium
	}
}

func title(part string) string {
	runes := []rune(part)
	if len(runes) > maxTitleRunes {
		runes = append(runes[:maxTitleRunes-3], []rune("...")...)
	}
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
