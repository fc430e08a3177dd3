package heuristics

import (
	"strings"
	"unicode"
)

// Keywords extracts prompt keywords: lowercased, punctuation stripped, longer than two
// characters, stop words removed and deduplicated in first-seen order.
func (t *Tables) Keywords(prompt string) []string {
	words := strings.FieldsFunc(strings.ToLower(prompt), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	seen := make(map[string]bool, len(words))
	keywords := make([]string, 0, len(words))
	for _, w := range words {
		if len([]rune(w)) <= 2 || t.IsStopWord(w) || seen[w] {
			continue
		}
		seen[w] = true
		keywords = append(keywords, w)
	}
	return keywords
}
