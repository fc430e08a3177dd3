package quality

import (
	"fmt"
	"strings"

	"github.com/jonathan/prompt-enhancer/internal/types"
)

// Glyph returns the marker shown next to a priority.
func Glyph(p types.Priority) string {
	switch p {
	case types.PriorityCritical:
		return "🔴"
	case types.PriorityHigh:
		return "🟠"
	case types.PriorityMedium:
		return "🟡"
	case types.PriorityLow:
		return "🟢"
	default:
		return "⚪"
	}
}

// Format renders requirements as a numbered list, one per line.
func Format(reqs []types.QualityRequirement) string {
	lines := make([]string, 0, len(reqs))
	for i, r := range reqs {
		lines = append(lines, fmt.Sprintf("%d. %s %s (%s): %s", i+1, Glyph(r.Priority), r.Type, r.Priority, r.Description))
	}
	return strings.Join(lines, "\n")
}

// Types lists the requirement types in order.
func Types(reqs []types.QualityRequirement) []string {
	out := make([]string, 0, len(reqs))
	for _, r := range reqs {
		out = append(out, r.Type)
	}
	return out
}
