package core

import "errors"

var (
	// ErrValidation matches every *ValidationError through errors.Is.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound is returned by stores and services for an unknown id.
	ErrNotFound = errors.New("not found")
)

// ValidationError reports the first invalid field of a payload.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

func newValidationError(field string, err error) *ValidationError {
	return &ValidationError{Field: field, Message: err.Error(), Err: err}
}

// NewValidationError builds a validation error for callers outside the core
// package, e.g. request decoding at the HTTP edge.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}
