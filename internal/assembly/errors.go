package assembly

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyRewrite is returned when the model produced no text.
	ErrEmptyRewrite = errors.New("model rewrite is empty")
	// ErrOverCeiling is returned when the rewrite exceeds the token ceiling.
	ErrOverCeiling = errors.New("model rewrite exceeds token ceiling")
)

// Error represents a failure of the model rewrite at a given stage.
type Error struct {
	Stage string
	Cause error
}

func (e *Error) Error() string {
	return fmt.Sprintf("assembly rewrite failed at %s: %v", e.Stage, e.Cause)
}

func (e *Error) Unwrap() error {
	return e.Cause
}
