package docs

import (
	"regexp"
	"strings"

	"github.com/jonathan/prompt-enhancer/internal/types"
)

var (
	headingLine = regexp.MustCompile(`^#{1,6}\s`)
	listLine    = regexp.MustCompile(`^\s{0,3}([-*+]|\d+[.)])\s`)
)

// SplitSections splits markdown-like text into sections. A section starts at every heading
// or list marker that is outside a fenced code block. Empty sections are dropped.
func SplitSections(content string) []string {
	var sections []string
	var current []string
	inFence := false

	flush := func() {
		if text := strings.TrimSpace(strings.Join(current, "\n")); text != "" {
			sections = append(sections, text)
		}
		current = current[:0]
	}

	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") || strings.HasPrefix(trimmed, "~~~") {
			inFence = !inFence
			current = append(current, line)
			continue
		}
		if !inFence && (headingLine.MatchString(line) || listLine.MatchString(line)) {
			flush()
		}
		current = append(current, line)
	}
	flush()

	return sections
}

func hasFence(section string) bool {
	return strings.Contains(section, "```") || strings.Contains(section, "~~~")
}

func toScored(sections []string) []types.ScoredSection {
	out := make([]types.ScoredSection, len(sections))
	for i, s := range sections {
		out[i] = types.ScoredSection{Content: s, Position: i}
	}
	return out
}
