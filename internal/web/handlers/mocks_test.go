package handlers

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/blockedby/dosimetria-portal/internal/dispatcher"
	"github.com/blockedby/dosimetria-portal/internal/models"
	"github.com/blockedby/dosimetria-portal/internal/repository"
)

// MockIntake is a mock for IntakeService
type MockIntake struct {
	mock.Mock
}

func (m *MockIntake) Submit(ctx context.Context, req *dispatcher.SubmitRequest) (*dispatcher.SubmitResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dispatcher.SubmitResult), args.Error(1)
}

// MockDispatchesRepository is a mock for DispatchesRepository
type MockDispatchesRepository struct {
	mock.Mock
}

func (m *MockDispatchesRepository) List(ctx context.Context, filter repository.DispatchFilter) ([]*models.DispatchRequest, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.DispatchRequest), args.Error(1)
}

func (m *MockDispatchesRepository) CountByStatus(ctx context.Context, status models.DispatchStatus) (int, error) {
	args := m.Called(ctx, status)
	return args.Int(0), args.Error(1)
}

// MockProfiles is a mock for the role middleware's profile lookup
type MockProfiles struct {
	mock.Mock
}

func (m *MockProfiles) GetByID(ctx context.Context, id string) (*models.Profile, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Profile), args.Error(1)
}

func strPtr(s string) *string { return &s }
