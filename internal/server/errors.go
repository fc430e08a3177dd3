package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jonathan/prompt-enhancer/internal/enhance"
)

// ErrValidation indicates a malformed request body
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var validation *ErrValidation
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &validation), errors.Is(err, enhance.ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	default:
		return http.StatusInternalServerError
	}
}
