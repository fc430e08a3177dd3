package docs

import (
	"strings"
	"unicode"

	"github.com/jonathan/prompt-enhancer/internal/heuristics"
	"github.com/jonathan/prompt-enhancer/internal/types"
)

// FallbackContent returns canned best-practice text for the domains the prompt mentions,
// or the general text when no domain matches. It is never empty for the embedded tables.
func FallbackContent(tables *heuristics.Tables, prompt string) string {
	if tables == nil {
		tables = heuristics.Default()
	}
	words := make(map[string]bool)
	for _, w := range strings.FieldsFunc(strings.ToLower(prompt), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) {
		words[w] = true
	}

	var parts []string
	for _, doc := range tables.FallbackDocs {
		for _, kw := range doc.Keywords {
			if words[kw] {
				parts = append(parts, strings.TrimSpace(doc.Content))
				break
			}
		}
	}
	if len(parts) == 0 {
		return strings.TrimSpace(tables.GeneralDoc)
	}
	return strings.Join(parts, "\n\n")
}

// FallbackBundle wraps FallbackContent in a bundle tagged with the fallback library id.
func FallbackBundle(tables *heuristics.Tables, prompt string) *types.DocumentationBundle {
	return &types.DocumentationBundle{
		PerLibraryContent: map[string]string{types.FallbackLibraryID: FallbackContent(tables, prompt)},
		Libraries:         []string{types.FallbackLibraryID},
		Fallback:          true,
	}
}
