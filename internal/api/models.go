package api

import "github.com/phrazzld/taskflow-api/internal/domain"

// CreateTaskRequest is the body of POST /tasks.
type CreateTaskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Status      string `json:"status"`
	FinishDate  string `json:"finishDate"`
}

func (r CreateTaskRequest) fields() domain.TaskFields {
	return domain.TaskFields(r)
}

// UpdateTaskRequest is the body of PUT /tasks/{id}. Absent fields are left
// unchanged.
type UpdateTaskRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
	FinishDate  *string `json:"finishDate"`
}

func (r UpdateTaskRequest) patch() domain.TaskPatch {
	return domain.TaskPatch(r)
}

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Token string `json:"token" validate:"required"`
}

// LoginResponse echoes the verified identity.
type LoginResponse struct {
	UID   string `json:"uid"`
	Email string `json:"email"`
}

// MessageResponse is a plain confirmation body.
type MessageResponse struct {
	Message string `json:"message"`
}
