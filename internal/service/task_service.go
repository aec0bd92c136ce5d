package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/taskflow-api/internal/domain"
	"github.com/phrazzld/taskflow-api/internal/events"
	"github.com/phrazzld/taskflow-api/internal/platform/logger"
	"github.com/phrazzld/taskflow-api/internal/presentation"
	"github.com/phrazzld/taskflow-api/internal/redact"
	"github.com/phrazzld/taskflow-api/internal/store"
)

// TaskView is a task as returned by listing operations, with createdAt
// rewritten for display.
type TaskView struct {
	ID          string                   `json:"id"`
	Title       string                   `json:"title"`
	Description string                   `json:"description,omitempty"`
	Status      string                   `json:"status"`
	FinishDate  string                   `json:"finishDate,omitempty"`
	CreatedAt   presentation.DisplayTime `json:"createdAt"`
}

// TaskService provides the task operations.
type TaskService interface {
	// Create validates fields, stamps createdAt and persists a new task.
	Create(ctx context.Context, fields domain.TaskFields) (*domain.Task, error)

	// List returns every task for display. Returns a NotFoundError when
	// there are none.
	List(ctx context.Context) ([]TaskView, error)

	// GetByStatus filters by exact status. "ALL" returns every task,
	// newest first.
	GetByStatus(ctx context.Context, status string) ([]TaskView, error)

	// GetByTitle filters by exact title and returns raw tasks.
	GetByTitle(ctx context.Context, title string) ([]*domain.Task, error)

	// Get returns a single raw task.
	Get(ctx context.Context, id string) (*domain.Task, error)

	// Update merges the supplied fields into an existing task and returns
	// the id plus exactly those fields.
	Update(ctx context.Context, id string, patch domain.TaskPatch) (*domain.TaskUpdate, error)

	// Delete removes an existing task.
	Delete(ctx context.Context, id string) error
}

// Option configures the task service.
type Option func(*taskServiceImpl)

// WithClock overrides the clock used to stamp createdAt.
func WithClock(now func() time.Time) Option {
	return func(s *taskServiceImpl) {
		s.now = now
	}
}

type taskServiceImpl struct {
	store     store.TaskStore
	publisher events.Publisher
	formatter *presentation.Formatter
	now       func() time.Time
	logger    *slog.Logger
}

var _ TaskService = (*taskServiceImpl)(nil)

// NewTaskService creates a TaskService. store, publisher and formatter are
// required.
func NewTaskService(
	taskStore store.TaskStore,
	publisher events.Publisher,
	formatter *presentation.Formatter,
	logger *slog.Logger,
	opts ...Option,
) (TaskService, error) {
	if taskStore == nil {
		return nil, fmt.Errorf("%w: store cannot be nil", ErrMissingDependency)
	}
	if publisher == nil {
		return nil, fmt.Errorf("%w: publisher cannot be nil", ErrMissingDependency)
	}
	if formatter == nil {
		return nil, fmt.Errorf("%w: formatter cannot be nil", ErrMissingDependency)
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &taskServiceImpl{
		store:     taskStore,
		publisher: publisher,
		formatter: formatter,
		now:       time.Now,
		logger:    logger.With(slog.String("component", "task_service")),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *taskServiceImpl) log(ctx context.Context) *slog.Logger {
	return logger.FromContextOrDefault(ctx, s.logger)
}

func (s *taskServiceImpl) Create(ctx context.Context, fields domain.TaskFields) (*domain.Task, error) {
	task, err := domain.NewTask(fields, s.now())
	if err != nil {
		s.log(ctx).Debug("rejected task creation", slog.String("reason", err.Error()))
		return nil, err
	}

	if err := s.store.Insert(ctx, task); err != nil {
		s.log(ctx).Error("failed to insert task", slog.String("error", redact.Error(err)))
		return nil, NewTaskServiceError("create_task", "failed to save task", err)
	}

	s.log(ctx).Info("task created", slog.String("task_id", task.ID), slog.String("status", task.Status))
	s.publisher.Publish(ctx, events.TaskCreated{Task: *task})
	return task, nil
}

func (s *taskServiceImpl) List(ctx context.Context) ([]TaskView, error) {
	tasks, err := s.store.Find(ctx, store.TaskQuery{})
	if err != nil {
		s.log(ctx).Error("failed to list tasks", slog.String("error", redact.Error(err)))
		return nil, NewTaskServiceError("list_tasks", "failed to fetch tasks", err)
	}
	if len(tasks) == 0 {
		return nil, domain.NewNotFoundError("tasks", "")
	}
	return s.views(ctx, tasks), nil
}

func (s *taskServiceImpl) GetByStatus(ctx context.Context, status string) ([]TaskView, error) {
	if status == "" {
		return nil, domain.NewValidationError("status", "is required", nil)
	}

	q := store.TaskQuery{Status: status}
	if status == domain.StatusAll {
		q = store.TaskQuery{NewestFirst: true}
	}

	tasks, err := s.store.Find(ctx, q)
	if err != nil {
		s.log(ctx).Error("failed to filter tasks by status",
			slog.String("status", status),
			slog.String("error", redact.Error(err)))
		return nil, NewTaskServiceError("get_tasks_by_status", "failed to fetch tasks", err)
	}
	if len(tasks) == 0 {
		return nil, domain.NewNotFoundError("tasks", "status "+status)
	}
	return s.views(ctx, tasks), nil
}

func (s *taskServiceImpl) GetByTitle(ctx context.Context, title string) ([]*domain.Task, error) {
	if title == "" {
		return nil, domain.NewValidationError("title", "is required", nil)
	}

	tasks, err := s.store.Find(ctx, store.TaskQuery{Title: title})
	if err != nil {
		s.log(ctx).Error("failed to filter tasks by title", slog.String("error", redact.Error(err)))
		return nil, NewTaskServiceError("get_tasks_by_title", "failed to fetch tasks", err)
	}
	if len(tasks) == 0 {
		return nil, domain.NewNotFoundError("tasks", "that title")
	}
	return tasks, nil
}

func (s *taskServiceImpl) Get(ctx context.Context, id string) (*domain.Task, error) {
	task, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, s.mapStoreError(ctx, "get_task", "failed to fetch task", id, err)
	}
	return task, nil
}

func (s *taskServiceImpl) Update(
	ctx context.Context,
	id string,
	patch domain.TaskPatch,
) (*domain.TaskUpdate, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}

	if err := s.store.Update(ctx, id, patch); err != nil {
		return nil, s.mapStoreError(ctx, "update_task", "failed to update task", id, err)
	}

	update := &domain.TaskUpdate{ID: id, TaskPatch: patch}
	s.log(ctx).Info("task updated", slog.String("task_id", id))
	s.publisher.Publish(ctx, events.TaskUpdated{Update: *update})
	return update, nil
}

func (s *taskServiceImpl) Delete(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return s.mapStoreError(ctx, "delete_task", "failed to delete task", id, err)
	}

	s.log(ctx).Info("task deleted", slog.String("task_id", id))
	s.publisher.Publish(ctx, events.TaskDeleted{ID: id})
	return nil
}

// mapStoreError turns a missing task into a NotFoundError and wraps
// anything else.
func (s *taskServiceImpl) mapStoreError(ctx context.Context, op, msg, id string, err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return domain.NewNotFoundError("task", "id "+id)
	}
	s.log(ctx).Error(msg,
		slog.String("task_id", id),
		slog.String("error", redact.Error(err)))
	return NewTaskServiceError(op, msg, err)
}

func (s *taskServiceImpl) views(ctx context.Context, tasks []*domain.Task) []TaskView {
	out := make([]TaskView, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, TaskView{
			ID:          t.ID,
			Title:       t.Title,
			Description: t.Description,
			Status:      t.Status,
			FinishDate:  t.FinishDate,
			CreatedAt:   s.formatter.Format(ctx, t.CreatedAt),
		})
	}
	return out
}
