package llm

import (
	"context"
	"strings"
	"sync"
)

// MockProvider is a scripted Provider for tests and local development.
type MockProvider struct {
	mu        sync.Mutex
	response  string
	err       error
	streaming bool
	chunkSize int
	calls     int
}

// NewMockProvider creates a mock that returns the given response.
func NewMockProvider(response string) *MockProvider {
	return &MockProvider{response: response, streaming: true, chunkSize: 16}
}

// SetResponse swaps the scripted response.
func (m *MockProvider) SetResponse(response string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.response = response
}

// SetError makes every subsequent call fail with err.
func (m *MockProvider) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// SetStreaming toggles whether the mock claims streaming support.
func (m *MockProvider) SetStreaming(streaming bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.streaming = streaming
}

// Calls returns how many completions were requested.
func (m *MockProvider) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// SupportsStreaming implements Provider.
func (m *MockProvider) SupportsStreaming() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.streaming
}

// Complete implements Provider.
func (m *MockProvider) Complete(ctx context.Context, prompt Prompt, options CompletionOptions) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return "", m.err
	}
	return m.response, nil
}

// CompleteStream implements Provider, emitting the scripted response in
// fixed-size chunks.
func (m *MockProvider) CompleteStream(ctx context.Context, prompt Prompt, options CompletionOptions, onDelta DeltaFunc) (string, error) {
	m.mu.Lock()
	response := m.response
	err := m.err
	chunkSize := m.chunkSize
	m.calls++
	m.mu.Unlock()

	if err != nil {
		return "", err
	}

	var sent strings.Builder
	for start := 0; start < len(response); start += chunkSize {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		end := start + chunkSize
		if end > len(response) {
			end = len(response)
		}
		chunk := response[start:end]
		sent.WriteString(chunk)
		if onDelta != nil {
			onDelta(chunk)
		}
	}
	return sent.String(), nil
}
