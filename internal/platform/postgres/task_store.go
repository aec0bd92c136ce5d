package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/phrazzld/taskflow-api/internal/domain"
	"github.com/phrazzld/taskflow-api/internal/platform/logger"
	"github.com/phrazzld/taskflow-api/internal/redact"
	"github.com/phrazzld/taskflow-api/internal/store"
)

const taskColumns = "id, title, description, status, finish_date, created_at"

// PostgresTaskStore implements store.TaskStore on PostgreSQL.
type PostgresTaskStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// Compile-time check
var _ store.TaskStore = (*PostgresTaskStore)(nil)

// NewPostgresTaskStore creates a new PostgresTaskStore. A nil logger falls
// back to slog.Default().
func NewPostgresTaskStore(db store.DBTX, logger *slog.Logger) *PostgresTaskStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresTaskStore{
		db:     db,
		logger: logger.With(slog.String("component", "task_store")),
	}
}

// WithTx returns a store that runs its statements inside tx.
func (s *PostgresTaskStore) WithTx(tx *sql.Tx) *PostgresTaskStore {
	return &PostgresTaskStore{db: tx, logger: s.logger}
}

// Insert assigns a new UUID to task and persists it.
func (s *PostgresTaskStore) Insert(ctx context.Context, task *domain.Task) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	id := uuid.New()
	query := `
		INSERT INTO tasks (id, title, description, status, finish_date, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := s.db.ExecContext(ctx, query,
		id,
		task.Title,
		task.Description,
		task.Status,
		task.FinishDate,
		task.CreatedAt.UTC(),
	)
	if err != nil {
		log.Error("failed to insert task",
			slog.String("error", redact.Error(err)))
		return store.NewStoreError("task", "insert", "failed to insert task", MapError(err))
	}

	task.ID = id.String()
	log.Debug("task inserted", slog.String("task_id", task.ID))
	return nil
}

// GetByID returns the task with the given id. Malformed ids cannot name a
// stored task and yield store.ErrTaskNotFound.
func (s *PostgresTaskStore) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	taskID, err := uuid.Parse(id)
	if err != nil {
		return nil, store.ErrTaskNotFound
	}

	query := "SELECT " + taskColumns + " FROM tasks WHERE id = $1"
	task, err := scanTask(s.db.QueryRowContext(ctx, query, taskID))
	if err != nil {
		if IsNotFoundError(MapError(err)) {
			return nil, store.ErrTaskNotFound
		}
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to get task",
			slog.String("task_id", id),
			slog.String("error", redact.Error(err)))
		return nil, store.NewStoreError("task", "get", "failed to get task", MapError(err))
	}
	return task, nil
}

// Find returns the tasks matching q.
func (s *PostgresTaskStore) Find(ctx context.Context, q store.TaskQuery) ([]*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var (
		conditions []string
		args       []any
	)
	if q.Status != "" {
		args = append(args, q.Status)
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}
	if q.Title != "" {
		args = append(args, q.Title)
		conditions = append(conditions, fmt.Sprintf("title = $%d", len(args)))
	}

	var sb strings.Builder
	sb.WriteString("SELECT " + taskColumns + " FROM tasks")
	if len(conditions) > 0 {
		sb.WriteString(" WHERE ")
		sb.WriteString(strings.Join(conditions, " AND "))
	}
	if q.NewestFirst {
		sb.WriteString(" ORDER BY created_at DESC")
	}

	rows, err := s.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		log.Error("failed to query tasks", slog.String("error", redact.Error(err)))
		return nil, store.NewStoreError("task", "find", "failed to query tasks", MapError(err))
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			log.Warn("failed to close rows", slog.String("error", cerr.Error()))
		}
	}()

	tasks := make([]*domain.Task, 0)
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			log.Error("failed to scan task row", slog.String("error", redact.Error(err)))
			return nil, store.NewStoreError("task", "find", "failed to scan task", MapError(err))
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		log.Error("error iterating task rows", slog.String("error", redact.Error(err)))
		return nil, store.NewStoreError("task", "find", "failed to read tasks", MapError(err))
	}

	log.Debug("tasks queried",
		slog.String("status", q.Status),
		slog.String("title", q.Title),
		slog.Int("count", len(tasks)))
	return tasks, nil
}

// Update writes the supplied patch fields in a single UPDATE guarded by the
// id, so a concurrently deleted task is reported as not found rather than
// recreated.
func (s *PostgresTaskStore) Update(ctx context.Context, id string, patch domain.TaskPatch) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	taskID, err := uuid.Parse(id)
	if err != nil {
		return store.ErrTaskNotFound
	}

	if patch.IsEmpty() {
		var exists bool
		err := s.db.QueryRowContext(ctx,
			"SELECT EXISTS (SELECT 1 FROM tasks WHERE id = $1)", taskID).Scan(&exists)
		if err != nil {
			log.Error("failed to check task existence",
				slog.String("task_id", id),
				slog.String("error", redact.Error(err)))
			return store.NewStoreError("task", "update", "failed to check task", MapError(err))
		}
		if !exists {
			return store.ErrTaskNotFound
		}
		return nil
	}

	query, args := buildUpdate(taskID, patch)
	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to update task",
			slog.String("task_id", id),
			slog.String("error", redact.Error(err)))
		return store.NewStoreError("task", "update", "failed to update task", MapError(err))
	}
	if err := CheckRowsAffected(result, store.ErrTaskNotFound); err != nil {
		if IsNotFoundError(err) {
			return err
		}
		return store.NewStoreError("task", "update", "failed to update task", err)
	}

	log.Debug("task updated", slog.String("task_id", id))
	return nil
}

// Delete removes the task in a single DELETE guarded by the id.
func (s *PostgresTaskStore) Delete(ctx context.Context, id string) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	taskID, err := uuid.Parse(id)
	if err != nil {
		return store.ErrTaskNotFound
	}

	result, err := s.db.ExecContext(ctx, "DELETE FROM tasks WHERE id = $1", taskID)
	if err != nil {
		log.Error("failed to delete task",
			slog.String("task_id", id),
			slog.String("error", redact.Error(err)))
		return store.NewStoreError("task", "delete", "failed to delete task", MapError(err))
	}
	if err := CheckRowsAffected(result, store.ErrTaskNotFound); err != nil {
		if IsNotFoundError(err) {
			return err
		}
		return store.NewStoreError("task", "delete", "failed to delete task", err)
	}

	log.Debug("task deleted", slog.String("task_id", id))
	return nil
}

// buildUpdate renders an UPDATE for the supplied patch fields. $1 is the id.
func buildUpdate(id uuid.UUID, patch domain.TaskPatch) (string, []any) {
	args := []any{id}
	var sets []string
	add := func(column string, value *string) {
		if value == nil {
			return
		}
		args = append(args, *value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	add("title", patch.Title)
	add("description", patch.Description)
	add("status", patch.Status)
	add("finish_date", patch.FinishDate)

	return "UPDATE tasks SET " + strings.Join(sets, ", ") + " WHERE id = $1", args
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*domain.Task, error) {
	var (
		task domain.Task
		id   uuid.UUID
	)
	if err := row.Scan(
		&id,
		&task.Title,
		&task.Description,
		&task.Status,
		&task.FinishDate,
		&task.CreatedAt,
	); err != nil {
		return nil, err
	}
	task.ID = id.String()
	task.CreatedAt = task.CreatedAt.UTC()
	return &task, nil
}
