package mocks

import (
	"context"
	"sync"

	"github.com/phrazzld/studyplan-api/internal/generation"
)

// MockGenerator implements generation.TextGenerator for testing
type MockGenerator struct {
	// GenerateFn allows test cases to mock the Generate behavior
	GenerateFn func(ctx context.Context, turns []generation.Turn, opts generation.Options) (string, error)

	// Default response values
	Text string
	Err  error

	mu    sync.Mutex
	calls []GenerateCall
}

// GenerateCall records the arguments of one Generate call.
type GenerateCall struct {
	Turns   []generation.Turn
	Options generation.Options
}

var _ generation.TextGenerator = (*MockGenerator)(nil)

// Generate implements generation.TextGenerator.
func (m *MockGenerator) Generate(
	ctx context.Context,
	turns []generation.Turn,
	opts generation.Options,
) (string, error) {
	m.mu.Lock()
	m.calls = append(m.calls, GenerateCall{Turns: turns, Options: opts})
	m.mu.Unlock()

	if m.GenerateFn != nil {
		return m.GenerateFn(ctx, turns, opts)
	}
	return m.Text, m.Err
}

// Calls returns a copy of the recorded calls.
func (m *MockGenerator) Calls() []GenerateCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]GenerateCall(nil), m.calls...)
}

// NewMockGeneratorWithText returns a generator that always answers text.
func NewMockGeneratorWithText(text string) *MockGenerator {
	return &MockGenerator{Text: text}
}

// NewMockGeneratorWithError returns a generator that always fails with err.
func NewMockGeneratorWithError(err error) *MockGenerator {
	return &MockGenerator{Err: err}
}

// NewBlockingGenerator returns a generator that waits for its context to end
// and then reports the service as unavailable, like a timed-out request.
func NewBlockingGenerator() *MockGenerator {
	return &MockGenerator{
		GenerateFn: func(ctx context.Context, _ []generation.Turn, _ generation.Options) (string, error) {
			<-ctx.Done()
			return "", generation.ErrGenerationUnavailable
		},
	}
}
