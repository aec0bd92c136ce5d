package domain

import (
	"errors"
	"fmt"
)

// Error taxonomy. Every error returned by the service layer wraps exactly one
// of these so the API layer can map it with errors.Is.
var (
	// ErrValidation is returned when required input is missing or invalid.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound is returned when a target record or a filtered result set does not exist.
	ErrNotFound = errors.New("not found")

	// ErrUnauthenticated is returned when a credential is rejected.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrStore is returned when the underlying persistence layer fails.
	ErrStore = errors.New("store failure")
)

// ValidationError describes which field failed and why.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

// NewValidationError creates a ValidationError. A nil err defaults to ErrValidation.
func NewValidationError(field, message string, err error) *ValidationError {
	if err == nil {
		err = ErrValidation
	}
	return &ValidationError{Field: field, Message: message, Err: err}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s %s", e.Field, e.Message)
}

// Unwrap keeps errors.Is(err, ErrValidation) working even when Err is a more
// specific cause.
func (e *ValidationError) Unwrap() []error {
	if e.Err == nil || e.Err == ErrValidation {
		return []error{ErrValidation}
	}
	return []error{ErrValidation, e.Err}
}

// NotFoundError reports a missing record or an empty result set.
type NotFoundError struct {
	// Resource is the entity kind, e.g. "task".
	Resource string
	// Criteria describes what was looked up, e.g. `id "42"` or "status DONE".
	Criteria string
}

// NewNotFoundError creates a NotFoundError.
func NewNotFoundError(resource, criteria string) *NotFoundError {
	return &NotFoundError{Resource: resource, Criteria: criteria}
}

func (e *NotFoundError) Error() string {
	if e.Criteria == "" {
		return fmt.Sprintf("no %s found", e.Resource)
	}
	return fmt.Sprintf("no %s found with %s", e.Resource, e.Criteria)
}

func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}
