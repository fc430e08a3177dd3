package frameworks

import (
	"context"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/jonathan/prompt-enhancer/internal/complexity"
	"github.com/jonathan/prompt-enhancer/internal/heuristics"
	"github.com/jonathan/prompt-enhancer/internal/types"
)

// Resolver looks library names up in the documentation catalogue.
type Resolver interface {
	ResolveLibraryID(ctx context.Context, name string) ([]types.LibraryCandidate, error)
}

// Selector resolves detected frameworks to documentation libraries and ranks them.
type Selector struct {
	resolver Resolver
	tables   *heuristics.Tables
	logger   *zap.Logger
}

// NewSelector creates a selector. Nil tables use the embedded defaults.
func NewSelector(resolver Resolver, tables *heuristics.Tables, logger *zap.Logger) *Selector {
	if tables == nil {
		tables = heuristics.Default()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Selector{resolver: resolver, tables: tables, logger: logger}
}

// Select returns up to 1, 2 or 3 scored candidates for simple, medium or complex prompts.
// Resolution failures are skipped; when no framework resolves, at most one library from the
// fallback list is used. Candidates scoring zero are dropped.
func (s *Selector) Select(ctx context.Context, prompt string, frameworks []string, level types.ComplexityLevel) []types.LibraryCandidate {
	if s.resolver == nil {
		return nil
	}

	var candidates []types.LibraryCandidate
	seen := make(map[string]bool)
	for _, fw := range frameworks {
		if c, ok := s.resolve(ctx, fw); ok && !seen[c.ID] {
			seen[c.ID] = true
			candidates = append(candidates, c)
		}
	}
	if len(candidates) == 0 {
		for _, name := range s.tables.FallbackLibraries {
			if c, ok := s.resolve(ctx, name); ok {
				candidates = append(candidates, c)
				break
			}
		}
	}

	lower := strings.ToLower(prompt)
	keywords := s.tables.Keywords(prompt)
	scored := make([]types.LibraryCandidate, 0, len(candidates))
	for _, c := range candidates {
		c.Score = s.score(c, lower, keywords, frameworks)
		if c.Score > 0 {
			scored = append(scored, c)
		}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if limit := complexity.BudgetFor(level).Libraries; len(scored) > limit {
		scored = scored[:limit]
	}
	return scored
}

func (s *Selector) resolve(ctx context.Context, name string) (types.LibraryCandidate, bool) {
	if ctx.Err() != nil {
		return types.LibraryCandidate{}, false
	}
	results, err := s.resolver.ResolveLibraryID(ctx, name)
	if err != nil || len(results) == 0 {
		s.logger.Warn("library resolution failed", zap.String("framework", name), zap.Error(err))
		return types.LibraryCandidate{}, false
	}
	return results[0], true
}

func (s *Selector) score(c types.LibraryCandidate, prompt string, keywords, frameworks []string) int {
	name := normalize(c.Name + " " + c.ID)
	score := 0

	for _, fw := range frameworks {
		if n := normalize(fw); n != "" && strings.Contains(name, n) {
			score += s.tables.LibraryNameMatch
			break
		}
	}

	for _, kw := range keywords {
		for _, topic := range c.Topics {
			topic = strings.ToLower(topic)
			if topic == "" || !(strings.Contains(topic, kw) || strings.Contains(kw, topic)) {
				continue
			}
			score += s.tables.LibraryTopicMatch
			if strings.Contains(prompt, topic) {
				score += s.tables.LibraryTopicExact
			}
			break
		}
	}

	rawName := strings.ToLower(c.Name + " " + c.ID)
	for _, intent := range s.tables.LibraryIntents {
		if strings.Contains(prompt, intent.PromptWord) && containsAny(rawName, intent.NameContains) {
			score += intent.Weight
		}
	}
	return score
}

// normalize lowercases and drops everything but letters and digits, so "Next.js" matches "nextjs".
func normalize(s string) string {
	var sb strings.Builder
	for _, r := range strings.ToLower(s) {
		if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' {
			sb.WriteRune(r)
		}
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
