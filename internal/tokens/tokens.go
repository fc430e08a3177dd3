// Package tokens provides the token estimate shared by every budget in the pipeline.
package tokens

import (
	"strings"
	"unicode/utf8"
)

// CharsPerToken is the fixed ratio used for estimates.
const CharsPerToken = 4

// Ellipsis marks content that was cut short.
const Ellipsis = "..."

// Estimate returns ceil(len(text)/4).
func Estimate(text string) int {
	return (len(text) + CharsPerToken - 1) / CharsPerToken
}

// Chars returns the largest byte length whose estimate still fits in n tokens.
func Chars(n int) int {
	if n <= 0 {
		return 0
	}
	return n * CharsPerToken
}

// Fits reports whether text fits in n tokens.
func Fits(text string, n int) bool {
	return Estimate(text) <= n
}

// Cut returns the longest prefix of text no longer than maxBytes that ends on a rune boundary.
func Cut(text string, maxBytes int) string {
	if maxBytes <= 0 {
		return ""
	}
	if len(text) <= maxBytes {
		return text
	}
	end := maxBytes
	for end > 0 && !utf8.RuneStart(text[end]) {
		end--
	}
	return text[:end]
}

// CutAtBoundary shortens text to at most maxBytes, preferring the last sentence boundary
// that keeps at least 80% of the space, then the last word boundary, then a hard cut.
func CutAtBoundary(text string, maxBytes int) string {
	if len(text) <= maxBytes {
		return text
	}
	prefix := Cut(text, maxBytes)
	if prefix == "" {
		return ""
	}

	minKeep := maxBytes * 8 / 10
	if idx := lastSentenceEnd(prefix); idx >= minKeep {
		return prefix[:idx]
	}
	if idx := strings.LastIndexAny(prefix, " \n\t"); idx > 0 {
		return strings.TrimRight(prefix[:idx], " \n\t")
	}
	return prefix
}

// Truncate cuts text to fit n tokens and appends the ellipsis marker when anything was removed.
// The result, marker included, never exceeds n tokens.
func Truncate(text string, n int) string {
	if Fits(text, n) {
		return text
	}
	room := Chars(n) - len(Ellipsis)
	if room <= 0 {
		return ""
	}
	return CutAtBoundary(text, room) + Ellipsis
}

// lastSentenceEnd returns the index just past the last sentence terminator, or -1.
func lastSentenceEnd(text string) int {
	best := -1
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '.', '!', '?':
			if i+1 == len(text) || text[i+1] == ' ' || text[i+1] == '\n' {
				best = i + 1
			}
		}
	}
	return best
}
