package quality

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jonathan/prompt-enhancer/internal/types"
)

func TestDeduplicate(t *testing.T) {
	in := []types.QualityRequirement{
		{Type: "testing", Priority: types.PriorityMedium, Description: "unit tests"},
		{Type: "security", Priority: types.PriorityHigh, Description: "sanitise input"},
		{Type: "testing", Priority: types.PriorityCritical, Description: "e2e tests"},
		{Type: "testing", Priority: types.PriorityLow, Description: "unit tests"},
	}
	original := append([]types.QualityRequirement(nil), in...)

	got := Deduplicate(in)

	assert.Equal(t, []types.QualityRequirement{
		{Type: "testing", Priority: types.PriorityCritical, Description: "unit tests; e2e tests"},
		{Type: "security", Priority: types.PriorityHigh, Description: "sanitise input"},
	}, got)
	assert.Equal(t, original, in, "input untouched")
}

func TestDeduplicate_Empty(t *testing.T) {
	assert.Empty(t, Deduplicate(nil))
}

func TestMerge(t *testing.T) {
	a := types.QualityRequirement{Type: "x", Priority: types.PriorityHigh, Description: "a"}
	b := types.QualityRequirement{Type: "x", Priority: types.PriorityLow, Description: ""}
	assert.Equal(t, a, Merge(a, b))

	empty := types.QualityRequirement{Type: "x", Priority: types.PriorityLow}
	assert.Equal(t, "a", Merge(empty, a).Description)
	assert.Equal(t, types.PriorityHigh, Merge(empty, a).Priority)
}

func TestFormat(t *testing.T) {
	got := Format([]types.QualityRequirement{
		{Type: "security", Priority: types.PriorityCritical, Description: "no secrets"},
		{Type: "testing", Priority: types.PriorityMedium, Description: "add tests"},
	})
	assert.Equal(t, "1. 🔴 security (critical): no secrets\n2. 🟡 testing (medium): add tests", got)
	assert.Equal(t, "", Format(nil))
}

func TestGlyph(t *testing.T) {
	assert.Equal(t, "🟠", Glyph(types.PriorityHigh))
	assert.Equal(t, "🟢", Glyph(types.PriorityLow))
	assert.Equal(t, "⚪", Glyph("unknown"))
}
