package api

import (
	"context"

	"github.com/phrazzld/taskflow-api/internal/domain"
	"github.com/phrazzld/taskflow-api/internal/service"
	"github.com/phrazzld/taskflow-api/internal/service/auth"
	"github.com/stretchr/testify/mock"
)

// MockTaskService mocks the service.TaskService interface
type MockTaskService struct {
	mock.Mock
}

func (m *MockTaskService) Create(ctx context.Context, fields domain.TaskFields) (*domain.Task, error) {
	args := m.Called(ctx, fields)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Task), args.Error(1)
}

func (m *MockTaskService) List(ctx context.Context) ([]service.TaskView, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]service.TaskView), args.Error(1)
}

func (m *MockTaskService) GetByStatus(ctx context.Context, status string) ([]service.TaskView, error) {
	args := m.Called(ctx, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]service.TaskView), args.Error(1)
}

func (m *MockTaskService) GetByTitle(ctx context.Context, title string) ([]*domain.Task, error) {
	args := m.Called(ctx, title)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Task), args.Error(1)
}

func (m *MockTaskService) Get(ctx context.Context, id string) (*domain.Task, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Task), args.Error(1)
}

func (m *MockTaskService) Update(ctx context.Context, id string, patch domain.TaskPatch) (*domain.TaskUpdate, error) {
	args := m.Called(ctx, id, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TaskUpdate), args.Error(1)
}

func (m *MockTaskService) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockGateway mocks the auth.Gateway interface
type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) Verify(ctx context.Context, credential string) (*auth.Subject, error) {
	args := m.Called(ctx, credential)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.Subject), args.Error(1)
}
