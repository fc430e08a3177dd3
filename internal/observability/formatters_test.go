package observability

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/jonathan/prompt-enhancer/internal/types"
)

func TestPrintAnalysis(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintAnalysis(&types.ComplexityAnalysis{
		PromptComplexity: types.PromptComplexity{
			Level:      types.LevelComplex,
			Score:      -2.5,
			Indicators: []string{"development-verb", "code-structure", "framework:react"},
		},
		UserExpertise:    "intermediate",
		ResponseStrategy: types.StrategyComprehensive,
		EstimatedTokens:  3200,
		Confidence:       0.7,
		Source:           types.SourceHeuristic,
	})
	output := buf.String()

	assert.Contains(t, output, "COMPLEXITY ANALYSIS")
	assert.Contains(t, output, "complex (score -2.5)")
	assert.Contains(t, output, "comprehensive")
	assert.Contains(t, output, "70% (heuristic)")
	assert.Contains(t, output, "framework:react")
}

func TestPrintAnalysis_Nil(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintAnalysis(nil)

	assert.Empty(t, buf.String())
}

func TestPrintDetection(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintDetection(&types.FrameworkDetectionResult{
		DetectedFrameworks: []string{"react", "tailwind"},
		Confidence:         0.8,
		Method:             types.MethodPattern,
	}, []types.LibraryCandidate{{ID: "/facebook/react", Score: 29}})
	output := buf.String()

	assert.Contains(t, output, "react, tailwind")
	assert.Contains(t, output, "pattern (80%)")
	assert.Contains(t, output, "/facebook/react (score 29)")
}

func TestPrintRequirements(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintRequirements([]types.QualityRequirement{
		{Type: "security", Priority: types.PriorityHigh},
		{Type: "testing", Priority: types.PriorityMedium},
	})
	output := buf.String()

	assert.Contains(t, output, "🟠 security (high)")
	assert.Contains(t, output, "🟡 testing (medium)")

	buf.Reset()
	p.PrintRequirements(nil)
	assert.Contains(t, buf.String(), "None")
}

func TestPrintTodos(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintTodos([]types.TodoItem{
		{Title: "Create the API", Category: "backend", Priority: types.PriorityHigh},
		{Title: "Deploy", Category: "deployment", Priority: types.PriorityLow},
	})
	output := buf.String()

	assert.Contains(t, output, "Decomposed into 2 tasks")
	assert.Contains(t, output, "1. Create the API")
	assert.Contains(t, output, "[deployment, low]")
}

func TestPrintContextUsed(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintContextUsed(&types.ContextUsed{
		RequestID:        "req-1",
		Level:            types.LevelMedium,
		Frameworks:       []string{"javascript"},
		DetectionMethod:  types.MethodFallback,
		FallbackDocs:     true,
		RequirementTypes: []string{"testing"},
		EstimatedTokens:  120,
		CacheHit:         true,
	})
	output := buf.String()

	assert.Contains(t, output, "req-1")
	assert.Contains(t, output, "javascript (fallback)")
	assert.Contains(t, output, "Docs:       fallback")
	assert.Contains(t, output, "Cache:      hit")
}

func TestPrintStep(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintStep("fetch", "1 of 2 libraries")

	assert.Equal(t, "[fetch] 1 of 2 libraries\n", buf.String())
}

func TestPrintBox_LongLines(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintDetection(&types.FrameworkDetectionResult{
		DetectedFrameworks: []string{"react", "vue", "angular", "svelte", "nextjs", "nuxt", "express", "django"},
		Method:             types.MethodPattern,
	}, nil)
	output := buf.String()

	// Should contain box characters
	assert.True(t, strings.Contains(output, "┌"))
	assert.True(t, strings.Contains(output, "└"))
	for _, line := range strings.Split(strings.TrimSuffix(output, "\n"), "\n") {
		require.LessOrEqual(t, len([]rune(line)), boxWidth, line)
	}
}

func TestNewLogger(t *testing.T) {
	logger, err := NewLogger(true)
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zapcore.DebugLevel), "debug enabled when verbose")

	logger, err = NewLogger(false)
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zapcore.DebugLevel))
}
