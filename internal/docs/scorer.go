// Package docs retrieves library documentation and trims it to a token budget by relevance.
package docs

import (
	"sort"
	"strings"

	"github.com/jonathan/prompt-enhancer/internal/heuristics"
	"github.com/jonathan/prompt-enhancer/internal/tokens"
	"github.com/jonathan/prompt-enhancer/internal/types"
)

// sectionSeparator joins selected sections.
const sectionSeparator = "\n\n"

// Scorer ranks documentation sections against a prompt and keeps the best ones within a budget.
type Scorer struct {
	tables *heuristics.Tables
}

// NewScorer creates a scorer over the given tables. Nil uses the embedded defaults.
func NewScorer(tables *heuristics.Tables) *Scorer {
	if tables == nil {
		tables = heuristics.Default()
	}
	return &Scorer{tables: tables}
}

// ScoreAndTrim returns content unchanged when it fits maxTokens, otherwise the highest-scoring
// sections that fit. The result never exceeds maxTokens.
func (s *Scorer) ScoreAndTrim(content string, maxTokens int, prompt string) string {
	return s.ScoreAndTrimFor(content, maxTokens, prompt, "")
}

// ScoreAndTrimFor is ScoreAndTrim with boosts for sections that match the acting library's domain.
func (s *Scorer) ScoreAndTrimFor(content string, maxTokens int, prompt, library string) string {
	if maxTokens <= 0 {
		return ""
	}
	if tokens.Fits(content, maxTokens) {
		return content
	}

	ranked := s.Rank(content, prompt, library)
	return selectWithin(ranked, maxTokens, s.tables.Sections.MinPartialTokens)
}

// Rank splits content into sections and orders them by score, highest first.
// Ties keep document order.
func (s *Scorer) Rank(content, prompt, library string) []types.ScoredSection {
	keywords := s.tables.Keywords(prompt)
	boosts := s.boostsFor(library)

	sections := toScored(SplitSections(content))
	for i := range sections {
		sections[i].Score = s.score(sections[i].Content, keywords, boosts)
		sections[i].TokenCount = tokens.Estimate(sections[i].Content)
	}
	sort.SliceStable(sections, func(i, j int) bool {
		return sections[i].Score > sections[j].Score
	})
	return sections
}

func (s *Scorer) score(section string, keywords []string, boosts []heuristics.LibraryBoost) int {
	w := s.tables.Sections
	lower := strings.ToLower(section)

	score := 0
	for _, kw := range keywords {
		score += w.KeywordWeight * strings.Count(lower, kw)
	}
	if hasFence(section) || containsAny(lower, w.ExampleTerms) {
		score += w.ExampleBonus
	}
	if containsAny(lower, w.APITerms) {
		score += w.APIBonus
	}
	if containsAny(lower, w.SetupTerms) {
		score += w.SetupBonus
	}
	if containsAny(lower, w.ErrorTerms) {
		score += w.ErrorBonus
	}
	for _, b := range boosts {
		if containsAny(lower, b.Terms) {
			score += b.Bonus
		}
	}
	return score
}

func (s *Scorer) boostsFor(library string) []heuristics.LibraryBoost {
	if library == "" {
		return nil
	}
	lib := strings.ToLower(library)
	var boosts []heuristics.LibraryBoost
	for _, b := range s.tables.LibraryBoosts {
		if containsAny(lib, b.LibraryContains) {
			boosts = append(boosts, b)
		}
	}
	return boosts
}

// selectWithin greedily appends whole sections while they fit. The first section that does not
// fit is cut to the remaining space when at least minPartial tokens remain, or when nothing
// was selected yet, and selection stops there.
func selectWithin(ranked []types.ScoredSection, maxTokens, minPartial int) string {
	limit := tokens.Chars(maxTokens)
	var sb strings.Builder

	for _, sec := range ranked {
		sep := 0
		if sb.Len() > 0 {
			sep = len(sectionSeparator)
		}
		if sb.Len()+sep+len(sec.Content) <= limit {
			if sep > 0 {
				sb.WriteString(sectionSeparator)
			}
			sb.WriteString(sec.Content)
			continue
		}

		remaining := (limit - sb.Len() - sep) / tokens.CharsPerToken
		if remaining >= minPartial || (sb.Len() == 0 && remaining > 0) {
			if partial := tokens.Truncate(sec.Content, remaining); partial != "" {
				if sep > 0 {
					sb.WriteString(sectionSeparator)
				}
				sb.WriteString(partial)
			}
		}
		break
	}

	return sb.String()
}

func containsAny(text string, terms []string) bool {
	for _, t := range terms {
		if t != "" && strings.Contains(text, t) {
			return true
		}
	}
	return false
}
