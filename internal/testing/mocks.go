package testing

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/imamik/symphonyctl/internal/platform/ego"
)

// MockRunner is a mock implementation of ego.Runner. Expectations match on
// the masked command line, e.g. "egosh service start HostFactory".
type MockRunner struct {
	mock.Mock

	mu  sync.Mutex
	ran []string
}

// Run records the command and returns the configured output.
func (m *MockRunner) Run(_ context.Context, cmd ego.Command) (string, error) {
	line := cmd.String()
	m.mu.Lock()
	m.ran = append(m.ran, line)
	m.mu.Unlock()

	args := m.Called(line)
	return args.String(0), args.Error(1)
}

// Ran returns every command line in call order.
func (m *MockRunner) Ran() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.ran...)
}

// NewMockRunner creates a runner without expectations. Unconfigured
// commands fail the test.
func NewMockRunner() *MockRunner {
	return &MockRunner{}
}

// WithOutput configures the output of one command line.
func (m *MockRunner) WithOutput(line, out string) *MockRunner {
	m.On("Run", line).Return(out, nil)
	return m
}

// WithError configures one command line to fail.
func (m *MockRunner) WithError(line string, err error) *MockRunner {
	m.On("Run", line).Return("", err)
	return m
}

// AllowAny makes every other command succeed with empty output.
func (m *MockRunner) AllowAny() *MockRunner {
	m.On("Run", mock.Anything).Return("", nil)
	return m
}

// ExitError builds the error a command exits with.
func ExitError(line string, code int) error {
	return &ego.CommandError{Command: line, ExitCode: code}
}
