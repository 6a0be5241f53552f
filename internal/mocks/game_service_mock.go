package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/weemadscotsman/3d-forge-demo-game-maker/internal/models"
	"github.com/weemadscotsman/3d-forge-demo-game-maker/internal/service"
)

// MockGameService is a mock type for the GameService type
type MockGameService struct {
	mock.Mock
}

// CreateGame provides a mock function with given fields: ctx, prefs
func (_m *MockGameService) CreateGame(ctx context.Context, prefs models.UserPreferences) (*models.GeneratedGame, error) {
	ret := _m.Called(ctx, prefs)

	var r0 *models.GeneratedGame
	if rf, ok := ret.Get(0).(func(context.Context, models.UserPreferences) *models.GeneratedGame); ok {
		r0 = rf(ctx, prefs)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).(*models.GeneratedGame)
		}
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, models.UserPreferences) error); ok {
		r1 = rf(ctx, prefs)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// RefineGame provides a mock function with given fields: ctx, id, instruction
func (_m *MockGameService) RefineGame(ctx context.Context, id uuid.UUID, instruction string) (*models.GeneratedGame, error) {
	ret := _m.Called(ctx, id, instruction)

	var r0 *models.GeneratedGame
	if rf, ok := ret.Get(0).(func(context.Context, uuid.UUID, string) *models.GeneratedGame); ok {
		r0 = rf(ctx, id, instruction)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).(*models.GeneratedGame)
		}
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, uuid.UUID, string) error); ok {
		r1 = rf(ctx, id, instruction)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// GetGame provides a mock function with given fields: ctx, id
func (_m *MockGameService) GetGame(ctx context.Context, id uuid.UUID) (*models.GeneratedGame, error) {
	ret := _m.Called(ctx, id)

	var r0 *models.GeneratedGame
	if rf, ok := ret.Get(0).(func(context.Context, uuid.UUID) *models.GeneratedGame); ok {
		r0 = rf(ctx, id)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).(*models.GeneratedGame)
		}
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, uuid.UUID) error); ok {
		r1 = rf(ctx, id)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// ListRevisions provides a mock function with given fields: ctx, id
func (_m *MockGameService) ListRevisions(ctx context.Context, id uuid.UUID) ([]models.GameRevision, error) {
	ret := _m.Called(ctx, id)

	var r0 []models.GameRevision
	if rf, ok := ret.Get(0).(func(context.Context, uuid.UUID) []models.GameRevision); ok {
		r0 = rf(ctx, id)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).([]models.GameRevision)
		}
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, uuid.UUID) error); ok {
		r1 = rf(ctx, id)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// NewMockGameService creates a new instance of MockGameService. It also
// registers a testing interface on the mock. The first argument is typically
// a *testing.T value.
func NewMockGameService(t interface {
	mock.TestingT
	Helper()
}) *MockGameService {
	m := &MockGameService{}
	m.Mock.Test(t)
	t.Helper()
	return m
}

var _ service.GameService = (*MockGameService)(nil)
