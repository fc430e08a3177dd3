package enhance

import (
	"errors"
	"fmt"
)

// ErrInvalidRequest is returned when an enhance request fails validation.
var ErrInvalidRequest = errors.New("invalid enhance request")

// Error represents a failure of the enhance operation at a given stage.
type Error struct {
	Stage string
	Cause error
}

func (e *Error) Error() string {
	return fmt.Sprintf("enhance failed at %s: %v", e.Stage, e.Cause)
}

func (e *Error) Unwrap() error {
	return e.Cause
}
