package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/weemadscotsman/3d-forge-demo-game-maker/internal/models"
	"github.com/weemadscotsman/3d-forge-demo-game-maker/internal/repository"
)

// MockGameRepository is a mock type for the GameRepository type
type MockGameRepository struct {
	mock.Mock
}

// Create provides a mock function with given fields: ctx, game
func (_m *MockGameRepository) Create(ctx context.Context, game *models.GeneratedGame) error {
	ret := _m.Called(ctx, game)

	var r0 error
	if rf, ok := ret.Get(0).(func(context.Context, *models.GeneratedGame) error); ok {
		r0 = rf(ctx, game)
	} else {
		r0 = ret.Error(0)
	}

	return r0
}

// Update provides a mock function with given fields: ctx, game
func (_m *MockGameRepository) Update(ctx context.Context, game *models.GeneratedGame) error {
	ret := _m.Called(ctx, game)

	var r0 error
	if rf, ok := ret.Get(0).(func(context.Context, *models.GeneratedGame) error); ok {
		r0 = rf(ctx, game)
	} else {
		r0 = ret.Error(0)
	}

	return r0
}

// GetByID provides a mock function with given fields: ctx, id
func (_m *MockGameRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.GeneratedGame, error) {
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

// AddRevision provides a mock function with given fields: ctx, rev
func (_m *MockGameRepository) AddRevision(ctx context.Context, rev *models.GameRevision) error {
	ret := _m.Called(ctx, rev)

	var r0 error
	if rf, ok := ret.Get(0).(func(context.Context, *models.GameRevision) error); ok {
		r0 = rf(ctx, rev)
	} else {
		r0 = ret.Error(0)
	}

	return r0
}

// ListRevisions provides a mock function with given fields: ctx, gameID
func (_m *MockGameRepository) ListRevisions(ctx context.Context, gameID uuid.UUID) ([]models.GameRevision, error) {
	ret := _m.Called(ctx, gameID)

	var r0 []models.GameRevision
	if rf, ok := ret.Get(0).(func(context.Context, uuid.UUID) []models.GameRevision); ok {
		r0 = rf(ctx, gameID)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).([]models.GameRevision)
		}
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, uuid.UUID) error); ok {
		r1 = rf(ctx, gameID)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// NewMockGameRepository creates a new instance of MockGameRepository. It also
// registers a testing interface on the mock. The first argument is typically
// a *testing.T value.
func NewMockGameRepository(t interface {
	mock.TestingT
	Helper()
}) *MockGameRepository {
	m := &MockGameRepository{}
	m.Mock.Test(t)
	t.Helper()
	return m
}

var _ repository.GameRepository = (*MockGameRepository)(nil)
