package complexity

import (
	"errors"
	"fmt"
)

// ErrInvalidAnalysis marks model output that failed parsing or schema validation.
var ErrInvalidAnalysis = errors.New("invalid complexity analysis")

// Error is returned when the model-assisted classifier cannot use the model's answer.
type Error struct {
	Stage string
	Cause error
}

func (e *Error) Error() string {
	return fmt.Sprintf("model-assisted classification failed at %s: %v", e.Stage, e.Cause)
}

func (e *Error) Unwrap() error {
	return e.Cause
}
