package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/weemadscotsman/3d-forge-demo-game-maker/internal/ai"
)

// MockAIClient is a mock type for the AIClient type
type MockAIClient struct {
	mock.Mock
}

// Generate provides a mock function with given fields: ctx, phase, req
func (_m *MockAIClient) Generate(ctx context.Context, phase string, req ai.Request) (string, ai.UsageInfo, error) {
	ret := _m.Called(ctx, phase, req)

	var r0 string
	if rf, ok := ret.Get(0).(func(context.Context, string, ai.Request) string); ok {
		r0 = rf(ctx, phase, req)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).(string)
		}
	}

	var r1 ai.UsageInfo
	if rf, ok := ret.Get(1).(func(context.Context, string, ai.Request) ai.UsageInfo); ok {
		r1 = rf(ctx, phase, req)
	} else {
		if ret.Get(1) != nil {
			r1 = ret.Get(1).(ai.UsageInfo)
		}
	}

	var r2 error
	if rf, ok := ret.Get(2).(func(context.Context, string, ai.Request) error); ok {
		r2 = rf(ctx, phase, req)
	} else {
		r2 = ret.Error(2)
	}

	return r0, r1, r2
}

// NewMockAIClient creates a new instance of MockAIClient. It also registers a
// testing interface on the mock. The first argument is typically a *testing.T
// value.
func NewMockAIClient(t interface {
	mock.TestingT
	Helper()
}) *MockAIClient {
	m := &MockAIClient{}
	m.Mock.Test(t)
	t.Helper()
	return m
}

var _ ai.AIClient = (*MockAIClient)(nil)
