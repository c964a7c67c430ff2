package sheets

import (
	"context"
	"sync"

	"github.com/Veraticus/punchclock/internal/payroll"
)

// MockWriter is a mock implementation of service.ReportWriter for testing.
type MockWriter struct {
	WriteFunc      func(ctx context.Context, title string, report *payroll.Report) error
	LastReport     *payroll.Report
	LastTitle      string
	WriteCalls     []WriteCall
	WriteCallCount int
	mu             sync.Mutex
}

// WriteCall represents a single call to Write.
type WriteCall struct {
	Error  error
	Report *payroll.Report
	Title  string
}

// NewMockWriter creates a new mock writer.
func NewMockWriter() *MockWriter {
	return &MockWriter{}
}

// Write records the call and runs WriteFunc if set.
func (m *MockWriter) Write(ctx context.Context, title string, report *payroll.Report) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.WriteCallCount++
	m.LastTitle = title
	m.LastReport = report

	var err error
	if m.WriteFunc != nil {
		err = m.WriteFunc(ctx, title, report)
	}
	m.WriteCalls = append(m.WriteCalls, WriteCall{Title: title, Report: report, Error: err})
	return err
}

// GetWriteCalls returns a copy of all write calls.
func (m *MockWriter) GetWriteCalls() []WriteCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]WriteCall(nil), m.WriteCalls...)
}

// SetWriteError configures the mock to fail every Write with err.
func (m *MockWriter) SetWriteError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.WriteFunc = func(context.Context, string, *payroll.Report) error {
		return err
	}
}
