package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/taskflow-api/internal/domain"
	"github.com/phrazzld/taskflow-api/internal/presentation"
	"github.com/phrazzld/taskflow-api/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func newTaskRouter(svc service.TaskService) http.Handler {
	h := NewTaskHandler(svc)
	r := chi.NewRouter()
	r.Route("/tasks", func(r chi.Router) {
		r.Get("/", h.ListTasks)
		r.Post("/", h.CreateTask)
		r.Get("/filter", h.FilterByStatus)
		r.Get("/title", h.FilterByTitle)
		r.Get("/{id}", h.GetTask)
		r.Put("/{id}", h.UpdateTask)
		r.Delete("/{id}", h.DeleteTask)
	})
	return r
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func errorBody(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body["error"]
}

func TestCreateTask(t *testing.T) {
	created := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		body       string
		setup      func(m *MockTaskService)
		wantStatus int
		wantError  string
	}{
		{
			name: "created",
			body: `{"title":"Buy milk","status":"TODO","description":"2L"}`,
			setup: func(m *MockTaskService) {
				m.On("Create", mock.Anything, domain.TaskFields{Title: "Buy milk", Status: "TODO", Description: "2L"}).
					Return(&domain.Task{ID: "1", Title: "Buy milk", Status: "TODO", Description: "2L", CreatedAt: created}, nil)
			},
			wantStatus: http.StatusCreated,
		},
		{
			name: "missing title",
			body: `{"status":"TODO"}`,
			setup: func(m *MockTaskService) {
				m.On("Create", mock.Anything, domain.TaskFields{Status: "TODO"}).
					Return(nil, domain.NewValidationError("title", "is required", nil))
			},
			wantStatus: http.StatusBadRequest,
			wantError:  "title is required",
		},
		{
			name:       "malformed json",
			body:       `{"title":`,
			setup:      func(m *MockTaskService) {},
			wantStatus: http.StatusBadRequest,
			wantError:  "Invalid request format",
		},
		{
			name: "store failure hides details",
			body: `{"title":"x","status":"TODO"}`,
			setup: func(m *MockTaskService) {
				m.On("Create", mock.Anything, mock.Anything).
					Return(nil, service.NewTaskServiceError("create_task", "failed to save task",
						errors.New("dial tcp 10.0.0.5:5432: connection refused")))
			},
			wantStatus: http.StatusInternalServerError,
			wantError:  "failed to save task",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &MockTaskService{}
			tt.setup(svc)

			rec := do(t, newTaskRouter(svc), http.MethodPost, "/tasks", tt.body)
			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantError != "" {
				assert.Equal(t, tt.wantError, errorBody(t, rec))
				assert.NotContains(t, rec.Body.String(), "10.0.0.5")
			} else {
				assert.JSONEq(t,
					`{"id":"1","title":"Buy milk","description":"2L","status":"TODO","createdAt":"2025-03-01T12:00:00Z"}`,
					rec.Body.String())
			}
			svc.AssertExpectations(t)
		})
	}
}

func TestListTasks(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		svc := &MockTaskService{}
		svc.On("List", mock.Anything).Return([]service.TaskView{{
			ID: "1", Title: "a", Status: "TODO",
			CreatedAt: presentation.DisplayTime{Date: "01/03/2025", Read: "há 5 minutos"},
		}}, nil)

		rec := do(t, newTaskRouter(svc), http.MethodGet, "/tasks", "")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t,
			`[{"id":"1","title":"a","status":"TODO","createdAt":{"date":"01/03/2025","read":"há 5 minutos"}}]`,
			rec.Body.String())
	})

	t.Run("empty is 404", func(t *testing.T) {
		svc := &MockTaskService{}
		svc.On("List", mock.Anything).Return(nil, domain.NewNotFoundError("tasks", ""))

		rec := do(t, newTaskRouter(svc), http.MethodGet, "/tasks", "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "no tasks found", errorBody(t, rec))
	})
}

func TestFilterRoutes(t *testing.T) {
	t.Run("status", func(t *testing.T) {
		svc := &MockTaskService{}
		svc.On("GetByStatus", mock.Anything, "ALL").Return([]service.TaskView{}, nil)
		svc.On("GetByStatus", mock.Anything, "").
			Return(nil, domain.NewValidationError("status", "is required", nil))
		svc.On("GetByStatus", mock.Anything, "BLOCKED").
			Return(nil, domain.NewNotFoundError("tasks", "status BLOCKED"))

		router := newTaskRouter(svc)
		assert.Equal(t, http.StatusOK, do(t, router, http.MethodGet, "/tasks/filter?status=ALL", "").Code)
		assert.Equal(t, http.StatusBadRequest, do(t, router, http.MethodGet, "/tasks/filter", "").Code)

		rec := do(t, router, http.MethodGet, "/tasks/filter?status=BLOCKED", "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Contains(t, errorBody(t, rec), "BLOCKED")
	})

	t.Run("title", func(t *testing.T) {
		svc := &MockTaskService{}
		svc.On("GetByTitle", mock.Anything, "Buy milk").
			Return([]*domain.Task{{ID: "1", Title: "Buy milk", Status: "TODO"}}, nil)

		rec := do(t, newTaskRouter(svc), http.MethodGet, "/tasks/title?title=Buy+milk", "")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"title":"Buy milk"`)
	})
}

func TestUpdateTask(t *testing.T) {
	t.Run("echoes supplied fields", func(t *testing.T) {
		svc := &MockTaskService{}
		patch := domain.TaskPatch{Status: strPtr("DONE")}
		svc.On("Update", mock.Anything, "42", patch).
			Return(&domain.TaskUpdate{ID: "42", TaskPatch: patch}, nil)

		rec := do(t, newTaskRouter(svc), http.MethodPut, "/tasks/42", `{"status":"DONE"}`)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"id":"42","status":"DONE"}`, rec.Body.String())
	})

	t.Run("missing task", func(t *testing.T) {
		svc := &MockTaskService{}
		svc.On("Update", mock.Anything, "404", mock.Anything).
			Return(nil, domain.NewNotFoundError("task", "id 404"))

		rec := do(t, newTaskRouter(svc), http.MethodPut, "/tasks/404", `{"status":"DONE"}`)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("malformed json", func(t *testing.T) {
		rec := do(t, newTaskRouter(&MockTaskService{}), http.MethodPut, "/tasks/42", `nope`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestGetAndDeleteTask(t *testing.T) {
	svc := &MockTaskService{}
	svc.On("Get", mock.Anything, "1").Return(&domain.Task{ID: "1", Title: "a", Status: "TODO"}, nil)
	svc.On("Delete", mock.Anything, "1").Return(nil)
	svc.On("Delete", mock.Anything, "2").Return(domain.NewNotFoundError("task", "id 2"))
	router := newTaskRouter(svc)

	rec := do(t, router, http.MethodGet, "/tasks/1", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, router, http.MethodDelete, "/tasks/1", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"Task deleted successfully"}`, rec.Body.String())

	rec = do(t, router, http.MethodDelete, "/tasks/2", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
