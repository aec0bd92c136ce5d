package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// StatusAll is the query wildcard accepted by status filters. It is never a
// stored status.
const StatusAll = "ALL"

// Commonly used status values. Status is free-form; these are not enforced.
const (
	StatusTodo  = "TODO"
	StatusDoing = "DOING"
	StatusDone  = "DONE"
)

// Task is the unit of work tracked by the system.
type Task struct {
	// ID is assigned by the store on insert and never changes or gets reused.
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Status      string    `json:"status"`
	FinishDate  string    `json:"finishDate,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// TaskFields is the input for creating a task.
type TaskFields struct {
	Title       string `json:"title"       validate:"required"`
	Description string `json:"description"`
	Status      string `json:"status"      validate:"required,ne=ALL"`
	FinishDate  string `json:"finishDate"`
}

var validate = validator.New()

// Validate checks that title and status are present and that status is not
// the reserved wildcard. Surrounding whitespace is ignored when deciding
// whether a value is present.
func (f TaskFields) Validate() error {
	trimmed := f
	trimmed.Title = strings.TrimSpace(f.Title)
	trimmed.Status = strings.TrimSpace(f.Status)

	err := validate.Struct(trimmed)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return NewValidationError("", "invalid task fields", err)
	}

	first := fieldErrs[0]
	field := strings.ToLower(first.Field())
	switch first.Tag() {
	case "required":
		return NewValidationError(field, "is required", nil)
	case "ne":
		return NewValidationError(field, "cannot be "+StatusAll, nil)
	default:
		return NewValidationError(field, "is invalid", nil)
	}
}

// NewTask validates fields and builds an unsaved Task stamped with createdAt,
// truncated to the microsecond precision PostgreSQL stores.
// The ID is left empty for the store to assign.
func NewTask(fields TaskFields, createdAt time.Time) (*Task, error) {
	if err := fields.Validate(); err != nil {
		return nil, err
	}
	return &Task{
		Title:       fields.Title,
		Description: fields.Description,
		Status:      fields.Status,
		FinishDate:  fields.FinishDate,
		CreatedAt:   createdAt.UTC().Truncate(time.Microsecond),
	}, nil
}

// TaskPatch carries the fields supplied to a partial update. A nil field was
// not supplied and is left untouched. ID and CreatedAt are not patchable.
type TaskPatch struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Status      *string `json:"status,omitempty"`
	FinishDate  *string `json:"finishDate,omitempty"`
}

// IsEmpty reports whether no field was supplied.
func (p TaskPatch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.Status == nil && p.FinishDate == nil
}

// Validate rejects the reserved wildcard as a new status. Other values are
// accepted as-is.
func (p TaskPatch) Validate() error {
	if p.Status != nil && strings.TrimSpace(*p.Status) == StatusAll {
		return NewValidationError("status", "cannot be "+StatusAll, nil)
	}
	return nil
}

// Apply merges the supplied fields into t.
func (p TaskPatch) Apply(t *Task) {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	if p.FinishDate != nil {
		t.FinishDate = *p.FinishDate
	}
}

// TaskUpdate is the observable result of an update: the id plus exactly the
// fields the caller supplied.
type TaskUpdate struct {
	ID string `json:"id"`
	TaskPatch
}
