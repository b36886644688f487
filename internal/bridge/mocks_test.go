// File: internal/bridge/mocks_test.go
package bridge

import (
	"context"
	encodingjson "encoding/json"

	"github.com/stretchr/testify/mock"

	"github.com/xkilldash9x/nova-bridge/api/schemas"
)

// -- Session Factory Mock --

// MockSessionFactory mocks the schemas.SessionFactory interface.
type MockSessionFactory struct {
	mock.Mock
}

// Open mocks session creation.
func (m *MockSessionFactory) Open(ctx context.Context, opts schemas.OpenOptions) (schemas.AutomationSession, error) {
	args := m.Called(ctx, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(schemas.AutomationSession), args.Error(1)
}

// -- Automation Session Mock --

// MockSession mocks the schemas.AutomationSession interface.
type MockSession struct {
	mock.Mock
}

// ID mocks the session identifier.
func (m *MockSession) ID() string {
	args := m.Called()
	return args.String(0)
}

// Act mocks one instruction round-trip.
func (m *MockSession) Act(ctx context.Context, instruction string, schema encodingjson.RawMessage) (*schemas.ActResult, error) {
	args := m.Called(ctx, instruction, schema)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*schemas.ActResult), args.Error(1)
}

// Close mocks session teardown.
func (m *MockSession) Close(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// -- Capturer Mock --

// MockCapturer mocks the schemas.Capturer interface.
type MockCapturer struct {
	mock.Mock
}

// Capture mocks one full-page screenshot.
func (m *MockCapturer) Capture(ctx context.Context, url string) (*schemas.Capture, error) {
	args := m.Called(ctx, url)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*schemas.Capture), args.Error(1)
}
