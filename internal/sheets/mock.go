package sheets

import (
	"context"
	"sync"

	"github.com/okhrimenko/kasabot/internal/model"
)

// MockAppender is a mock implementation of the workflow.Appender contract
// for testing.
type MockAppender struct {
	AppendFunc      func(ctx context.Context, record model.Record) error
	AppendCalls     []model.Record
	AppendCallCount int
	mu              sync.Mutex
}

// NewMockAppender creates a new mock appender.
func NewMockAppender() *MockAppender {
	return &MockAppender{
		AppendCalls: make([]model.Record, 0),
	}
}

// Append records the call and delegates to AppendFunc when set.
func (m *MockAppender) Append(ctx context.Context, record model.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.AppendCallCount++
	m.AppendCalls = append(m.AppendCalls, record)

	if m.AppendFunc != nil {
		return m.AppendFunc(ctx, record)
	}
	return nil
}

// Reset clears all recorded calls.
func (m *MockAppender) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.AppendCallCount = 0
	m.AppendCalls = m.AppendCalls[:0]
}
