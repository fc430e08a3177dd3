package assembly

import (
	"strings"

	"github.com/jonathan/prompt-enhancer/internal/tokens"
)

// builder appends blocks to a prompt without letting the byte length pass limit.
// Staying within len(prompt)+Chars(response) keeps the token estimate within the ceiling.
type builder struct {
	out      strings.Builder
	limit    int
	reserved int
	blocks   int
}

func newBuilder(prompt string, responseTokens int) *builder {
	b := &builder{limit: len(prompt) + tokens.Chars(responseTokens)}
	b.out.WriteString(prompt)
	return b
}

func (b *builder) String() string {
	return b.out.String()
}

func (b *builder) separator() string {
	if b.out.Len() == 0 {
		return ""
	}
	return blockSeparator
}

func (b *builder) room() int {
	return b.limit - b.out.Len() - b.reserved
}

// reserve holds back space for text that is written last.
func (b *builder) reserve(text string) {
	b.reserved = len(blockSeparator) + len(text)
}

func (b *builder) release() {
	b.reserved = 0
}

// line appends text as its own paragraph if it fits.
func (b *builder) line(text string) bool {
	sep := b.separator()
	if len(sep)+len(text) > b.room() {
		return false
	}
	b.out.WriteString(sep)
	b.out.WriteString(text)
	return true
}

// add appends a headed block. A block that does not fit has its body cut to the remaining
// space when at least minBlockTokens remain; otherwise it is left out. Empty bodies are skipped.
func (b *builder) add(header, body string) bool {
	body = strings.TrimSpace(body)
	if body == "" {
		return false
	}
	sep := b.separator()
	if b.line(header + "\n" + body) {
		b.blocks++
		return true
	}

	bodyRoom := b.room() - len(sep) - len(header) - 1
	if bodyRoom < tokens.Chars(minBlockTokens) {
		return false
	}
	cut := tokens.Truncate(body, bodyRoom/tokens.CharsPerToken)
	if strings.TrimSpace(strings.TrimSuffix(cut, tokens.Ellipsis)) == "" {
		return false
	}
	if !b.line(header + "\n" + cut) {
		return false
	}
	b.blocks++
	return true
}
