package llm

import (
	"context"
	"sync"
)

// MockResponse is a canned response for the MockProvider.
type MockResponse struct {
	Text string
	Err  error
}

// MockProvider is a deterministic Provider for testing. It returns canned
// responses in FIFO order and records every prompt it receives.
type MockProvider struct {
	mu        sync.Mutex
	model     string
	responses []MockResponse
	Prompts   []string
}

// NewMockProvider creates a MockProvider with the given canned responses.
func NewMockProvider(responses ...MockResponse) *MockProvider {
	return &MockProvider{model: "mock", responses: responses}
}

// WithModelID sets the model identifier the mock reports.
func (m *MockProvider) WithModelID(id string) *MockProvider {
	m.model = id
	return m
}

// Classify returns the next canned response, or a StatusError when the
// queue is empty.
func (m *MockProvider) Classify(_ context.Context, prompt string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Prompts = append(m.Prompts, prompt)

	if len(m.responses) == 0 {
		return "", &StatusError{Provider: "mock", StatusCode: 503, Body: "no responses queued"}
	}

	resp := m.responses[0]
	m.responses = m.responses[1:]
	if resp.Err != nil {
		return "", resp.Err
	}
	return resp.Text, nil
}

// ModelID returns the mock's model identifier.
func (m *MockProvider) ModelID() string {
	return m.model
}
