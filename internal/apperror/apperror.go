// Package apperror defines the domain error taxonomy shared by services
// and handlers. Services return these; the HTTP layer maps them to status
// codes without inspecting messages.
package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrForbidden  = errors.New("forbidden")
	ErrValidation = errors.New("validation failed")
	ErrConflict   = errors.New("conflict")
	ErrPartial    = errors.New("partial failure")
)

// AppError carries a sentinel plus context for the caller.
type AppError struct {
	Err     error
	Message string
	Field   string // set for validation errors
	Step    string // set for partial failures of multi-step workflows
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NotFound signals that an entity id did not resolve. It is always checked
// before any permission decision so that a missing row never reports as a
// rights failure.
func NotFound(resource string, id any) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s %v not found", resource, id),
	}
}

// Forbidden signals that the entity exists but the principal lacks
// ownership or role rights over it.
func Forbidden(message string) *AppError {
	return &AppError{
		Err:     ErrForbidden,
		Message: message,
	}
}

// ValidationFailed reports a field-scoped input violation. Workflows must
// raise it before any side effect runs.
func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

// PartialFailure reports a multi-step workflow that failed at the named
// step, leaving earlier steps committed.
func PartialFailure(step string, err error) *AppError {
	return &AppError{
		Err:     ErrPartial,
		Message: fmt.Sprintf("step %q failed: %v", step, err),
		Step:    step,
	}
}
