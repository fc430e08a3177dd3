package quality

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/prompt-enhancer/internal/types"
)

func byType(reqs []types.QualityRequirement) map[string]types.QualityRequirement {
	out := make(map[string]types.QualityRequirement, len(reqs))
	for _, r := range reqs {
		out[r.Type] = r
	}
	return out
}

func TestExtract_PromptRules(t *testing.T) {
	e := NewExtractor(nil, nil)

	tests := []struct {
		prompt   string
		kind     string
		priority types.Priority
	}{
		{"Make it production ready", "production", types.PriorityHigh},
		{"An enterprise dashboard", "production", types.PriorityHigh},
		{"Mobile friendly nav", "responsive", types.PriorityMedium},
		{"Is this form a11y compliant?", "accessibility", types.PriorityHigh},
		{"Optimize the list rendering", "performance", types.PriorityHigh},
		{"Add TESTING for the parser", "testing", types.PriorityMedium},
		{"Make the login secure", "security", types.PriorityHigh},
	}

	for _, tt := range tests {
		t.Run(tt.prompt, func(t *testing.T) {
			got := byType(e.Extract(tt.prompt, "", nil))
			require.Contains(t, got, tt.kind)
			assert.Equal(t, tt.priority, got[tt.kind].Priority)
		})
	}

	assert.Empty(t, e.Extract("What is 2+2?", "", nil))
}

func TestExtract_FrameworkRules(t *testing.T) {
	e := NewExtractor(nil, nil)

	t.Run("component framework needs component keyword", func(t *testing.T) {
		got := byType(e.Extract("write a custom hook", "react", nil))
		require.Contains(t, got, "framework-patterns")
		assert.Contains(t, got["framework-patterns"].Description, "react")

		assert.NotContains(t, byType(e.Extract("explain jsx", "react", nil)), "framework-patterns")
	})

	t.Run("typed framework always adds type safety", func(t *testing.T) {
		got := byType(e.Extract("anything", "typescript", nil))
		require.Contains(t, got, "type-safety")
		assert.Equal(t, types.PriorityHigh, got["type-safety"].Priority)
	})

	t.Run("unknown framework adds nothing", func(t *testing.T) {
		assert.Empty(t, e.Extract("a component", "elm", nil))
	})
}

func TestExtract_ProjectRules(t *testing.T) {
	e := NewExtractor(nil, nil)
	project := &types.ProjectContext{
		Facts:        []string{"uses TypeScript", "uses Jest", "eslint + prettier", "bundled with Vite"},
		CodeSnippets: []string{`<img alt="logo" aria-label="home">`, "@media (min-width: 768px) {}", "DOMPurify.sanitize(input)"},
	}

	got := e.Extract("add a page", "", project)
	assert.Equal(t, []string{
		"type-safety", "testing", "code-style", "build-optimization", "accessibility", "responsive", "security",
	}, Types(got))
	assert.Equal(t, types.PriorityLow, byType(got)["build-optimization"].Priority)
}

func TestExtract_ECommerceScenario(t *testing.T) {
	e := NewExtractor(nil, nil)
	project := &types.ProjectContext{Facts: []string{"uses TypeScript", "uses Jest"}}

	got := byType(e.Extract(
		"Build a complete full-stack e-commerce platform with authentication, product search, and checkout",
		"typescript", project))

	require.Contains(t, got, "type-safety")
	require.Contains(t, got, "testing")
	assert.Equal(t, types.PriorityHigh, got["type-safety"].Priority)
	assert.Contains(t, got["type-safety"].Description, "; ", "framework and project rules merged")
}

func TestExtract_MergesPromptAndProject(t *testing.T) {
	e := NewExtractor(nil, nil)
	project := &types.ProjectContext{CodeSnippets: []string{`<button aria-pressed="false">`}}

	got := e.Extract("make the modal accessible", "", project)
	require.Len(t, got, 1)
	assert.Equal(t, "accessibility", got[0].Type)
	assert.Equal(t, types.PriorityHigh, got[0].Priority, "higher priority kept")
	assert.Contains(t, got[0].Description, "WCAG")
	assert.Contains(t, got[0].Description, "; Existing code uses accessibility attributes")
}

func TestExtract_RecoversFromPanic(t *testing.T) {
	e := &Extractor{logger: NewExtractor(nil, nil).logger}

	var got []types.QualityRequirement
	assert.NotPanics(t, func() {
		got = e.Extract("secure production api", "react", nil)
	})
	assert.NotNil(t, got)
	assert.Empty(t, got)
}
