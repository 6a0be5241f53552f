package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/weemadscotsman/3d-forge-demo-game-maker/internal/messaging"
)

// MockProgressNotifier is a mock type for the ProgressNotifier type
type MockProgressNotifier struct {
	mock.Mock
}

// NotifyProgress provides a mock function with given fields: ctx, event
func (_m *MockProgressNotifier) NotifyProgress(ctx context.Context, event messaging.ProgressEvent) error {
	ret := _m.Called(ctx, event)

	var r0 error
	if rf, ok := ret.Get(0).(func(context.Context, messaging.ProgressEvent) error); ok {
		r0 = rf(ctx, event)
	} else {
		r0 = ret.Error(0)
	}

	return r0
}

// NewMockProgressNotifier creates a new instance of MockProgressNotifier. It
// also registers a testing interface on the mock. The first argument is
// typically a *testing.T value.
func NewMockProgressNotifier(t interface {
	mock.TestingT
	Helper()
}) *MockProgressNotifier {
	m := &MockProgressNotifier{}
	m.Mock.Test(t)
	t.Helper()
	return m
}

var _ messaging.ProgressNotifier = (*MockProgressNotifier)(nil)
