package llm

import (
	"context"
	"encoding/json"
	"sync"
)

// MockResponse is one canned answer of a MockProvider.
type MockResponse struct {
	Content json.RawMessage
	Usage   Usage
	Err     error
}

// MockFunc answers a request programmatically. It runs without the
// provider's lock, so it may block, e.g. to hold a prefetch open.
type MockFunc func(ctx context.Context, req Request) (*Response, error)

// MockProvider is a scripted Provider for tests. Every request is kept in
// Calls.
type MockProvider struct {
	mu    sync.Mutex
	queue []MockResponse
	fn    MockFunc
	Calls []Request
}

// NewMockProvider answers with responses in order and reports
// ErrProviderUnavailable once they run out.
func NewMockProvider(responses ...MockResponse) *MockProvider {
	return &MockProvider{queue: responses}
}

// NewMockProviderFunc answers every request with fn. Routing on the request
// keeps tests stable when calls come from several goroutines.
func NewMockProviderFunc(fn MockFunc) *MockProvider {
	return &MockProvider{fn: fn}
}

func (m *MockProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, req)
	if m.fn != nil {
		fn := m.fn
		m.mu.Unlock()
		return fn(ctx, req)
	}
	if len(m.queue) == 0 {
		m.mu.Unlock()
		return nil, &ErrProviderUnavailable{}
	}
	next := m.queue[0]
	m.queue = m.queue[1:]
	m.mu.Unlock()

	if next.Err != nil {
		return nil, next.Err
	}
	return &Response{Content: next.Content, Usage: next.Usage, Model: "mock", StopReason: StopEnd}, nil
}

func (m *MockProvider) ModelID() string { return "mock" }

func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

// JSONResponse encodes v as the content of a successful Response.
func JSONResponse(v any) (*Response, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return &Response{Content: raw, Model: "mock", StopReason: StopEnd}, nil
}
