package service

import (
	"errors"
	"fmt"

	"github.com/phrazzld/taskflow-api/internal/domain"
)

// ErrMissingDependency is returned by constructors given a nil collaborator.
var ErrMissingDependency = errors.New("missing required dependency")

// TaskServiceError wraps a store failure with the operation that hit it.
// Message is safe to show to callers; Err is not.
type TaskServiceError struct {
	// Operation is the operation that failed, e.g. "create_task".
	Operation string
	Message   string
	Err       error
}

// Error implements the error interface for TaskServiceError.
func (e *TaskServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("task service %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("task service %s failed: %s", e.Operation, e.Message)
}

// Unwrap exposes domain.ErrStore alongside the cause.
func (e *TaskServiceError) Unwrap() []error {
	if e.Err == nil {
		return []error{domain.ErrStore}
	}
	return []error{domain.ErrStore, e.Err}
}

// NewTaskServiceError wraps err unless it is nil.
func NewTaskServiceError(operation, message string, err error) error {
	if err == nil {
		return nil
	}
	return &TaskServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
