// Package memory provides an in-process store.TaskStore for development,
// tests, and single-instance deployments that do not need durability.
package memory

import (
	"context"
	"log/slog"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/phrazzld/taskflow-api/internal/domain"
	"github.com/phrazzld/taskflow-api/internal/store"
)

// TaskStore keeps tasks in insertion order behind a mutex. Every method
// runs under the lock, so Update and Delete are atomic with respect to
// each other.
type TaskStore struct {
	mu     sync.RWMutex
	tasks  []*domain.Task
	logger *slog.Logger
}

var _ store.TaskStore = (*TaskStore)(nil)

// NewTaskStore returns an empty TaskStore.
func NewTaskStore(logger *slog.Logger) *TaskStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &TaskStore{logger: logger.With(slog.String("component", "memory_task_store"))}
}

// Insert assigns a new UUID and stores a copy of task.
func (s *TaskStore) Insert(ctx context.Context, task *domain.Task) error {
	if err := ctx.Err(); err != nil {
		return store.NewStoreError("task", "insert", "context done", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	task.ID = uuid.NewString()
	stored := *task
	stored.CreatedAt = stored.CreatedAt.UTC()
	s.tasks = append(s.tasks, &stored)

	s.logger.Debug("task inserted", slog.String("task_id", task.ID))
	return nil
}

// GetByID returns a copy of the stored task.
func (s *TaskStore) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, store.NewStoreError("task", "get", "context done", err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if i := s.indexOf(id); i >= 0 {
		t := *s.tasks[i]
		return &t, nil
	}
	return nil, store.ErrTaskNotFound
}

// Find returns copies of the matching tasks.
func (s *TaskStore) Find(ctx context.Context, q store.TaskQuery) ([]*domain.Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, store.NewStoreError("task", "find", "context done", err)
	}

	s.mu.RLock()
	result := make([]*domain.Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		if q.Status != "" && t.Status != q.Status {
			continue
		}
		if q.Title != "" && t.Title != q.Title {
			continue
		}
		c := *t
		result = append(result, &c)
	}
	s.mu.RUnlock()

	if q.NewestFirst {
		sort.SliceStable(result, func(i, j int) bool {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		})
	}
	return result, nil
}

// Update applies patch to the stored task.
func (s *TaskStore) Update(ctx context.Context, id string, patch domain.TaskPatch) error {
	if err := ctx.Err(); err != nil {
		return store.NewStoreError("task", "update", "context done", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return store.ErrTaskNotFound
	}
	patch.Apply(s.tasks[i])

	s.logger.Debug("task updated", slog.String("task_id", id))
	return nil
}

// Delete removes the stored task.
func (s *TaskStore) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return store.NewStoreError("task", "delete", "context done", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return store.ErrTaskNotFound
	}
	s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)

	s.logger.Debug("task deleted", slog.String("task_id", id))
	return nil
}

// indexOf must be called with s.mu held.
func (s *TaskStore) indexOf(id string) int {
	for i, t := range s.tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}
