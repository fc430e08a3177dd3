// Package docsource is the boundary to the external documentation service.
package docsource

import (
	"context"
	"errors"
	"fmt"

	"github.com/jonathan/prompt-enhancer/internal/types"
)

// ErrNotConfigured is returned by sources that have no credentials or endpoint.
var ErrNotConfigured = errors.New("documentation source not configured")

// ErrNotFound is returned when a library name resolves to nothing.
var ErrNotFound = errors.New("library not found")

// Source resolves library names and fetches their documentation.
// Both calls may fail independently; callers treat failures as non-fatal.
type Source interface {
	// ResolveLibraryID returns candidates ordered by trust, best first.
	ResolveLibraryID(ctx context.Context, name string) ([]types.LibraryCandidate, error)
	// GetDocumentation returns documentation text for a library id.
	GetDocumentation(ctx context.Context, libraryID, topic string, maxTokens int) (string, error)
}

// Error represents a failed call to a documentation source.
type Error struct {
	Op      string
	Target  string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("docsource %s %s: %s: %v", e.Op, e.Target, e.Message, e.Cause)
	}
	return fmt.Sprintf("docsource %s %s: %s", e.Op, e.Target, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Unavailable is a Source that always fails with ErrNotConfigured.
// The pipeline then falls back to canned documentation.
type Unavailable struct{}

// ResolveLibraryID always fails.
func (Unavailable) ResolveLibraryID(_ context.Context, name string) ([]types.LibraryCandidate, error) {
	return nil, &Error{Op: "resolve", Target: name, Message: "no documentation service", Cause: ErrNotConfigured}
}

// GetDocumentation always fails.
func (Unavailable) GetDocumentation(_ context.Context, libraryID, _ string, _ int) (string, error) {
	return "", &Error{Op: "docs", Target: libraryID, Message: "no documentation service", Cause: ErrNotConfigured}
}
