package store

import (
	"context"

	"github.com/phrazzld/taskflow-api/internal/domain"
)

// TaskQuery selects tasks. Zero-valued filters match everything.
type TaskQuery struct {
	// Status, when set, keeps tasks whose status equals it.
	Status string
	// Title, when set, keeps tasks whose title equals it.
	Title string
	// NewestFirst orders by createdAt descending. Otherwise order is unspecified.
	NewestFirst bool
}

// TaskStore is the persistent task collection.
type TaskStore interface {
	// Insert persists task and assigns task.ID. The caller sets CreatedAt.
	Insert(ctx context.Context, task *domain.Task) error

	// GetByID returns ErrTaskNotFound if no task has the given id.
	GetByID(ctx context.Context, id string) (*domain.Task, error)

	// Find returns the tasks matching q, or an empty slice.
	Find(ctx context.Context, q TaskQuery) ([]*domain.Task, error)

	// Update applies patch to the task with the given id as a single
	// conditional write. Returns ErrTaskNotFound, without writing anything,
	// if the task does not exist. An empty patch only checks existence.
	Update(ctx context.Context, id string, patch domain.TaskPatch) error

	// Delete removes the task as a single conditional write.
	// Returns ErrTaskNotFound if the task does not exist.
	Delete(ctx context.Context, id string) error
}
