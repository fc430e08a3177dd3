package assembly

import (
	"fmt"
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/prompt-enhancer/internal/tokens"
	"github.com/jonathan/prompt-enhancer/internal/types"
)

var (
	simpleLevel  = types.PromptComplexity{Level: types.LevelSimple, Score: 5}
	mediumLevel  = types.PromptComplexity{Level: types.LevelMedium, Score: 1}
	complexLevel = types.PromptComplexity{Level: types.LevelComplex, Score: -2}
)

func fallbackDetection() *types.FrameworkDetectionResult {
	return &types.FrameworkDetectionResult{
		DetectedFrameworks: []string{"javascript"},
		Confidence:         0.3,
		Method:             types.MethodFallback,
	}
}

func fullContext() *types.EnhancementContext {
	return &types.EnhancementContext{
		RepoFacts:    []string{"Uses TypeScript", "Tests run with Jest"},
		CodeSnippets: []string{"export function Button(props: ButtonProps) {\n  return <button {...props} />\n}"},
		Documentation: &types.DocumentationBundle{
			PerLibraryContent:   map[string]string{"/facebook/react": "## Components\nComponents return JSX."},
			SucceededLibraryIDs: []string{"/facebook/react"},
			Libraries:           []string{"/facebook/react"},
		},
		QualityRequirements: []types.QualityRequirement{
			{Type: "accessibility", Priority: types.PriorityHigh, Description: "Meets WCAG 2.1 AA"},
		},
		Detection: &types.FrameworkDetectionResult{
			DetectedFrameworks: []string{"react", "tailwind"},
			Confidence:         0.7,
			Method:             types.MethodPattern,
			Suggestions:        []string{"Prefer function components"},
		},
		FrameworkDocs: []string{"React 18 notes"},
		ProjectDocs:   []string{"Design system guide"},
		Style:         "minimal and clean",
	}
}

func TestAssemble_SimpleAddsFrameworkHint(t *testing.T) {
	a := NewAssembler(nil)
	ectx := &types.EnhancementContext{
		Detection: fallbackDetection(),
		RepoFacts: []string{"Uses TypeScript"},
		QualityRequirements: []types.QualityRequirement{
			{Type: "testing", Priority: types.PriorityMedium, Description: "Add tests"},
		},
	}

	got := a.Assemble("What is 2+2?", ectx, simpleLevel)

	assert.Equal(t, "What is 2+2?\n\nFramework: javascript", got)
	assert.NotContains(t, got, HeaderRepository)
	assert.NotContains(t, got, HeaderQuality)
}

func TestAssemble_SimpleSkipsHintAlreadyInPrompt(t *testing.T) {
	a := NewAssembler(nil)
	ectx := &types.EnhancementContext{Detection: &types.FrameworkDetectionResult{
		DetectedFrameworks: []string{"react"},
		Confidence:         1,
		Method:             types.MethodExplicit,
	}}

	assert.Equal(t, "What is React?", a.Assemble("What is React?", ectx, simpleLevel))
}

func TestAssemble_SimpleMarkupExcerpt(t *testing.T) {
	a := NewAssembler(nil)
	doc := "## The button element\nThe button element is an interactive element.\n\n" +
		"## History\n" + strings.Repeat("Old browsers differed here. ", 60)
	ectx := &types.EnhancementContext{
		Detection: &types.FrameworkDetectionResult{DetectedFrameworks: []string{"html"}, Confidence: 0.6, Method: types.MethodPattern},
		Documentation: &types.DocumentationBundle{
			PerLibraryContent:   map[string]string{"/mdn/html": doc},
			SucceededLibraryIDs: []string{"/mdn/html"},
			Libraries:           []string{"/mdn/html"},
		},
	}

	got := a.Assemble("What does the button element do?", ectx, simpleLevel)

	require.Contains(t, got, HeaderBestPractices)
	assert.Contains(t, got, "Framework: html")
	assert.Contains(t, got, "The button element is an interactive element.")
	assert.NotContains(t, got, ClosingInstruction)
	excerpt := got[strings.Index(got, HeaderBestPractices)+len(HeaderBestPractices)+1:]
	assert.LessOrEqual(t, tokens.Estimate(excerpt), simpleExcerptTokens)
}

func TestAssemble_SimpleNonMarkupHasNoExcerpt(t *testing.T) {
	a := NewAssembler(nil)
	ectx := fullContext()

	got := a.Assemble("Is JSX compiled?", ectx, simpleLevel)

	assert.Equal(t, "Is JSX compiled?\n\nFramework: react", got)
}

func TestAssemble_MediumBlockOrder(t *testing.T) {
	a := NewAssembler(nil)
	prompt := "Create a responsive navigation component with a dropdown menu"

	got := a.Assemble(prompt, fullContext(), mediumLevel)

	require.True(t, strings.HasPrefix(got, prompt))
	require.True(t, strings.HasSuffix(got, ClosingInstruction))

	order := []string{
		HeaderFrameworks, HeaderQuality, HeaderBestPractices, HeaderFrameworkDocs,
		HeaderProjectDocs, HeaderRepository, HeaderCodePatterns, ClosingInstruction,
	}
	last := -1
	for _, h := range order {
		idx := strings.Index(got, h)
		require.NotEqual(t, -1, idx, "missing %s", h)
		assert.Greater(t, idx, last, "%s out of order", h)
		last = idx
	}

	assert.Contains(t, got, "- Frameworks: react, tailwind")
	assert.Contains(t, got, "- Detection: pattern (70% confidence)")
	assert.Contains(t, got, "- Style: minimal and clean")
	assert.Contains(t, got, "  - Prefer function components")
	assert.Contains(t, got, "1. 🟠 accessibility (high): Meets WCAG 2.1 AA")
	assert.Contains(t, got, "- Uses TypeScript\n- Tests run with Jest")
	assert.LessOrEqual(t, tokens.Estimate(got), Ceiling(prompt, types.LevelMedium))
}

func TestAssemble_OmitsEmptyBlocks(t *testing.T) {
	a := NewAssembler(nil)
	ectx := &types.EnhancementContext{
		QualityRequirements: []types.QualityRequirement{
			{Type: "security", Priority: types.PriorityHigh, Description: "Validate input"},
		},
		RepoFacts:     []string{"  "},
		FrameworkDocs: []string{""},
		Documentation: &types.DocumentationBundle{PerLibraryContent: map[string]string{}},
	}

	got := a.Assemble("Build a login form with validation", ectx, mediumLevel)

	assert.Contains(t, got, HeaderQuality)
	for _, h := range []string{HeaderFrameworks, HeaderBestPractices, HeaderFrameworkDocs, HeaderProjectDocs, HeaderRepository, HeaderCodePatterns} {
		assert.NotContains(t, got, h)
	}
	assert.True(t, strings.HasSuffix(got, ClosingInstruction))
}

func TestAssemble_NoContextReturnsPrompt(t *testing.T) {
	a := NewAssembler(nil)
	prompt := "Refactor the billing module into smaller services"

	assert.Equal(t, prompt, a.Assemble(prompt, nil, complexLevel))
	assert.Equal(t, prompt, a.Assemble(prompt, &types.EnhancementContext{}, mediumLevel))
}

func TestAssemble_EmptyPrompt(t *testing.T) {
	a := NewAssembler(nil)

	assert.Equal(t, "", a.Assemble("", nil, simpleLevel))
	assert.Equal(t, "Framework: javascript", a.Assemble("", &types.EnhancementContext{Detection: fallbackDetection()}, simpleLevel))
}

func TestAssemble_Idempotent(t *testing.T) {
	a := NewAssembler(nil)
	ectx := fullContext()
	before := fullContext()
	prompt := "Implement a dashboard with charts and a data table"

	first := a.Assemble(prompt, ectx, complexLevel)
	second := a.Assemble(prompt, ectx, complexLevel)

	assert.Equal(t, first, second)
	assert.Equal(t, before, ectx, "context is not mutated")
}

func TestAssemble_TruncatesOversizedBlock(t *testing.T) {
	a := NewAssembler(nil)
	facts := make([]string, 0, 400)
	for i := 0; i < 400; i++ {
		facts = append(facts, fmt.Sprintf("Fact number %d about the repository layout and tooling.", i))
	}
	prompt := "Add pagination to the orders endpoint"

	got := a.Assemble(prompt, &types.EnhancementContext{RepoFacts: facts}, mediumLevel)

	require.Contains(t, got, HeaderRepository)
	assert.Contains(t, got, tokens.Ellipsis)
	assert.True(t, strings.HasSuffix(got, ClosingInstruction))
	assert.LessOrEqual(t, tokens.Estimate(got), Ceiling(prompt, types.LevelMedium))
}

func TestAssemble_OmitsBlockWhenLittleRoomRemains(t *testing.T) {
	a := NewAssembler(nil)
	prompt := "Add pagination to the orders endpoint"

	room := tokens.Chars(1200) - len(blockSeparator) - len(ClosingInstruction)
	leave := 100
	doc := strings.Repeat("a", room-len(blockSeparator)-len(HeaderFrameworkDocs)-1-leave)
	ectx := &types.EnhancementContext{
		FrameworkDocs: []string{doc},
		RepoFacts:     []string{strings.Repeat("A long repository fact. ", 20)},
	}

	got := a.Assemble(prompt, ectx, mediumLevel)

	assert.Contains(t, got, HeaderFrameworkDocs)
	assert.NotContains(t, got, HeaderRepository)
	assert.True(t, strings.HasSuffix(got, ClosingInstruction))
	assert.LessOrEqual(t, tokens.Estimate(got), Ceiling(prompt, types.LevelMedium))
}

func TestAssemble_NeverExceedsCeiling(t *testing.T) {
	a := NewAssembler(nil)
	rng := rand.New(rand.NewSource(7))
	words := []string{"component", "router", "state", "example", "error", "install", "api", "layout", "the", "and"}
	text := func(n int) string {
		var sb strings.Builder
		for i := 0; i < n; i++ {
			if i > 0 && rng.Intn(12) == 0 {
				sb.WriteString("\n\n## Section\n")
			}
			sb.WriteString(words[rng.Intn(len(words))])
			sb.WriteByte(' ')
		}
		return sb.String()
	}
	list := func(n, size int) []string {
		out := make([]string, n)
		for i := range out {
			out[i] = text(size)
		}
		return out
	}

	for i := 0; i < 50; i++ {
		prompt := text(rng.Intn(80))
		ectx := &types.EnhancementContext{
			RepoFacts:    list(rng.Intn(30), 20),
			CodeSnippets: list(rng.Intn(5), 200),
			Documentation: &types.DocumentationBundle{
				PerLibraryContent:   map[string]string{"/lib/a": text(rng.Intn(3000))},
				SucceededLibraryIDs: []string{"/lib/a"},
				Libraries:           []string{"/lib/a"},
			},
			QualityRequirements: []types.QualityRequirement{{Type: "testing", Priority: types.PriorityMedium, Description: text(30)}},
			Detection:           &types.FrameworkDetectionResult{DetectedFrameworks: []string{"html"}, Confidence: 0.6, Method: types.MethodPattern},
			FrameworkDocs:       list(rng.Intn(3), 600),
			ProjectDocs:         list(rng.Intn(3), 600),
		}
		for _, pc := range []types.PromptComplexity{simpleLevel, mediumLevel, complexLevel} {
			got := a.Assemble(prompt, ectx, pc)
			assert.LessOrEqual(t, tokens.Estimate(got), Ceiling(prompt, pc.Level), "case %d level %s", i, pc.Level)
			assert.True(t, strings.HasPrefix(got, prompt))
		}
	}
}
