package assembly

import (
	"regexp"
	"strings"
)

// injectionKeywords are phrases that suggest retrieved text is trying to issue instructions.
// The list is a heuristic; the primary defense is the quoting markers in the rewrite prompt.
var injectionKeywords = []string{
	"ignore previous",
	"ignore all",
	"disregard above",
	"forget everything",
	"system prompt",
	"new instructions",
	"act as",
	"you are now",
}

var injectionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)ignore\s+(all\s+)?(previous|prior|above)\s+instructions?`),
	regexp.MustCompile(`(?i)disregard\s+(all\s+)?(previous|prior|above)`),
	regexp.MustCompile(`(?i)forget\s+(all\s+)?(previous|prior|everything)`),
	regexp.MustCompile(`(?i)you\s+are\s+now\s+a`),
	regexp.MustCompile(`(?i)new\s+instructions?:`),
}

// markers delimit quoted text in the rewrite prompt; quoted text must not be able to close them.
var markerReplacer = strings.NewReplacer(
	"<<<", "< < <",
	">>>", "> > >",
)

// SuspiciousPhrases returns the injection keywords found in text.
func SuspiciousPhrases(text string) []string {
	lower := strings.ToLower(text)
	var found []string
	for _, kw := range injectionKeywords {
		if strings.Contains(lower, kw) {
			found = append(found, kw)
		}
	}
	return found
}

// StripInjectionAttempts redacts common instruction-override phrasings.
func StripInjectionAttempts(text string) string {
	for _, re := range injectionPatterns {
		text = re.ReplaceAllString(text, "[REDACTED]")
	}
	return text
}

// Quote prepares external text for placement between quoting markers.
func Quote(text string) string {
	return markerReplacer.Replace(text)
}
