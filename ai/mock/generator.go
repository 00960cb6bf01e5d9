package mock

import (
	"context"
	"fmt"
)

// MockGenerator is a test double for ai.Generator.
// It allows custom behavior injection via function fields.
type MockGenerator struct {
	// GenerateFunc is called by Generate if set.
	// If nil, uses default canned-response behavior.
	GenerateFunc func(ctx context.Context, system, prompt string) (string, error)

	callCount  int
	lastSystem string
	lastPrompt string
}

// NewMockGenerator creates a mock generator with default canned behavior.
// Note: Returns concrete type to allow test assertions via GetMockGenerator().
func NewMockGenerator() *MockGenerator {
	return &MockGenerator{}
}

// Generate returns a canned reply that echoes the prompt length.
// The last system and user prompts are recorded for assertions.
func (m *MockGenerator) Generate(ctx context.Context, system, prompt string) (string, error) {
	m.callCount++
	m.lastSystem = system
	m.lastPrompt = prompt

	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, system, prompt)
	}

	// Default: deterministic canned answer
	return fmt.Sprintf("mock answer (%d prompt bytes)", len(prompt)), nil
}

// CallCount returns the number of times Generate was called.
func (m *MockGenerator) CallCount() int {
	return m.callCount
}

// LastSystem returns the system prompt from the most recent call.
func (m *MockGenerator) LastSystem() string {
	return m.lastSystem
}

// LastPrompt returns the user prompt from the most recent call.
func (m *MockGenerator) LastPrompt() string {
	return m.lastPrompt
}

// Reset clears the call count and recorded prompts.
func (m *MockGenerator) Reset() {
	m.callCount = 0
	m.lastSystem = ""
	m.lastPrompt = ""
	m.GenerateFunc = nil
}
