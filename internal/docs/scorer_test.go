package docs

import (
	"fmt"
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/prompt-enhancer/internal/tokens"
)

func TestScoreAndTrim_UnderBudgetUnchanged(t *testing.T) {
	s := NewScorer(nil)
	content := "## Setup\nInstall the package."
	assert.Equal(t, content, s.ScoreAndTrim(content, 100, "setup"))
}

func TestScoreAndTrim_NonPositiveBudget(t *testing.T) {
	s := NewScorer(nil)
	assert.Equal(t, "", s.ScoreAndTrim("anything", 0, "x"))
	assert.Equal(t, "", s.ScoreAndTrim("anything", -5, "x"))
}

func TestScoreAndTrim_PrefersRelevantSections(t *testing.T) {
	s := NewScorer(nil)
	intro := "## Intro\n" + strings.Repeat("Lorem ipsum dolor sit amet. ", 20)
	routing := "## Routing\n" + strings.Repeat("The router matches paths to handlers. ", 5)
	content := intro + "\n\n" + routing

	got := s.ScoreAndTrim(content, 60, "configure the router")

	assert.True(t, strings.HasPrefix(got, "## Routing"), got)
	assert.NotContains(t, got, "Lorem")
	assert.LessOrEqual(t, tokens.Estimate(got), 60)
}

func TestScoreAndTrim_PartialTail(t *testing.T) {
	s := NewScorer(nil)
	best := "## Example usage\n" + strings.Repeat("Call the router function with a path. ", 10)
	long := "## Reference\n" + strings.Repeat("Another paragraph of reference text goes here. ", 45)
	content := best + "\n\n" + long

	got := s.ScoreAndTrim(content, 300, "router path")

	require.True(t, strings.HasPrefix(got, "## Example usage"))
	assert.Contains(t, got, "## Reference")
	assert.True(t, strings.HasSuffix(got, tokens.Ellipsis), "cut section ends with the marker")
	assert.LessOrEqual(t, tokens.Estimate(got), 300)
}

func TestScoreAndTrim_TinyBudgetStillReturnsPrefix(t *testing.T) {
	s := NewScorer(nil)
	content := strings.Repeat("word ", 500)
	got := s.ScoreAndTrim(content, 10, "word")
	assert.NotEmpty(t, got)
	assert.LessOrEqual(t, tokens.Estimate(got), 10)
}

func TestScoreAndTrimFor_LibraryBoost(t *testing.T) {
	s := NewScorer(nil)
	content := "## Widgets\nEach widget has knobs and dials to turn.\n\n## Elements\nEach element has attributes to set here."

	plain := s.ScoreAndTrim(content, 15, "")
	assert.True(t, strings.HasPrefix(plain, "## Widgets"), plain)

	boosted := s.ScoreAndTrimFor(content, 15, "", "/mdn/html")
	assert.True(t, strings.HasPrefix(boosted, "## Elements"), boosted)
}

func TestRank_ScoreComponents(t *testing.T) {
	s := NewScorer(nil)
	content := "## Plain\nnothing here\n\n## Code\n```js\nx()\n```\n\n## API\nThe method returns a value.\n\n" +
		"## Config\nSetup is simple.\n\n## Errors\nA common problem.\n\n## Keywords\nrouter router"

	ranked := s.Rank(content, "router", "")
	scores := make(map[string]int)
	for _, sec := range ranked {
		title := strings.SplitN(sec.Content, "\n", 2)[0]
		scores[title] = sec.Score
	}

	assert.Equal(t, 0, scores["## Plain"])
	assert.Equal(t, 5, scores["## Code"])
	assert.Equal(t, 3, scores["## API"])
	assert.Equal(t, 2, scores["## Config"])
	assert.Equal(t, 2, scores["## Errors"])
	assert.Equal(t, 4, scores["## Keywords"])
	assert.Equal(t, "## Code\n```js\nx()\n```", ranked[0].Content)
}

func TestScoreAndTrim_NeverExceedsBudget(t *testing.T) {
	s := NewScorer(nil)
	rng := rand.New(rand.NewSource(42))
	words := []string{"router", "component", "example", "error", "install", "the", "a", "function", "état", "日本"}

	for i := 0; i < 200; i++ {
		var sb strings.Builder
		sections := rng.Intn(30)
		for j := 0; j < sections; j++ {
			switch rng.Intn(4) {
			case 0:
				sb.WriteString(fmt.Sprintf("## Section %d\n", j))
			case 1:
				sb.WriteString("- ")
			case 2:
				sb.WriteString("```\ncode()\n```\n")
			}
			for k := rng.Intn(120); k > 0; k-- {
				sb.WriteString(words[rng.Intn(len(words))])
				if rng.Intn(9) == 0 {
					sb.WriteString(". ")
				} else {
					sb.WriteString(" ")
				}
			}
			sb.WriteString("\n\n")
		}
		content := sb.String()
		budget := rng.Intn(700)

		got := s.ScoreAndTrim(content, budget, "router component error")
		assert.LessOrEqual(t, tokens.Estimate(got), budget, "case %d budget %d", i, budget)
	}
}
