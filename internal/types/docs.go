package types

import "strings"

// FallbackLibraryID tags documentation synthesized when no library could be fetched.
const FallbackLibraryID = "fallback"

// DocumentationBundle is the documentation retrieved for the selected libraries.
// SucceededLibraryIDs keeps request order so output does not depend on fetch timing.
type DocumentationBundle struct {
	PerLibraryContent   map[string]string `json:"per_library_content"`
	SucceededLibraryIDs []string          `json:"succeeded_library_ids"`
	Libraries           []string          `json:"libraries"`
	Fallback            bool              `json:"fallback"`
}

// Combined joins the retrieved content in request order.
func (b *DocumentationBundle) Combined() string {
	if b == nil {
		return ""
	}
	ids := b.SucceededLibraryIDs
	if b.Fallback {
		ids = []string{FallbackLibraryID}
	}
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		if content := strings.TrimSpace(b.PerLibraryContent[id]); content != "" {
			parts = append(parts, content)
		}
	}
	return strings.Join(parts, "\n\n")
}

// Empty reports whether the bundle carries no usable text.
func (b *DocumentationBundle) Empty() bool {
	return b.Combined() == ""
}

// ScoredSection is a chunk of documentation or code with its relevance score. Never persisted.
type ScoredSection struct {
	Content    string
	Score      int
	TokenCount int
	Position   int
}
