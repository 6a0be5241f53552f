package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/weemadscotsman/3d-forge-demo-game-maker/internal/models"
	"github.com/weemadscotsman/3d-forge-demo-game-maker/internal/repository"
)

// MockGameCache is a mock type for the GameCache type
type MockGameCache struct {
	mock.Mock
}

// Get provides a mock function with given fields: ctx, id
func (_m *MockGameCache) Get(ctx context.Context, id uuid.UUID) (*models.GeneratedGame, error) {
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

// Set provides a mock function with given fields: ctx, game
func (_m *MockGameCache) Set(ctx context.Context, game *models.GeneratedGame) error {
	ret := _m.Called(ctx, game)

	var r0 error
	if rf, ok := ret.Get(0).(func(context.Context, *models.GeneratedGame) error); ok {
		r0 = rf(ctx, game)
	} else {
		r0 = ret.Error(0)
	}

	return r0
}

// Invalidate provides a mock function with given fields: ctx, id
func (_m *MockGameCache) Invalidate(ctx context.Context, id uuid.UUID) error {
	ret := _m.Called(ctx, id)

	var r0 error
	if rf, ok := ret.Get(0).(func(context.Context, uuid.UUID) error); ok {
		r0 = rf(ctx, id)
	} else {
		r0 = ret.Error(0)
	}

	return r0
}

// NewMockGameCache creates a new instance of MockGameCache. It also registers
// a testing interface on the mock. The first argument is typically a
// *testing.T value.
func NewMockGameCache(t interface {
	mock.TestingT
	Helper()
}) *MockGameCache {
	m := &MockGameCache{}
	m.Mock.Test(t)
	t.Helper()
	return m
}

var _ repository.GameCache = (*MockGameCache)(nil)
