package goffapi

import (
	"context"
	"sync"
)

// MockClient is a mock implementation of Client for testing.
type MockClient struct {
	mu sync.RWMutex

	// Canned responses keyed by flag key
	responses map[string]*EvalResponse

	// Mock behavior override
	EvaluateFlagFunc func(ctx context.Context, flagKey string, req EvalRequest) (*EvalResponse, error)

	// Call tracking
	EvaluateFlagCalls int
	Requests          []RecordedRequest
}

// RecordedRequest captures one EvaluateFlag invocation.
type RecordedRequest struct {
	FlagKey string
	Request EvalRequest
}

// NewMockClient creates a new mock client.
func NewMockClient() *MockClient {
	return &MockClient{
		responses: make(map[string]*EvalResponse),
	}
}

// SetResponse registers a canned response for a flag key.
func (m *MockClient) SetResponse(flagKey string, resp *EvalResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses[flagKey] = resp
}

// EvaluateFlag returns the canned response for the flag key, or delegates to
// EvaluateFlagFunc when set.
func (m *MockClient) EvaluateFlag(ctx context.Context, flagKey string, req EvalRequest) (*EvalResponse, error) {
	m.mu.Lock()
	m.EvaluateFlagCalls++
	m.Requests = append(m.Requests, RecordedRequest{FlagKey: flagKey, Request: req})
	m.mu.Unlock()

	if m.EvaluateFlagFunc != nil {
		return m.EvaluateFlagFunc(ctx, flagKey, req)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	if resp, ok := m.responses[flagKey]; ok {
		return resp, nil
	}

	return &EvalResponse{
		Value:     req.DefaultValue,
		Reason:    "ERROR",
		ErrorCode: "FLAG_NOT_FOUND",
		Failed:    true,
	}, nil
}

// Calls returns how many times EvaluateFlag was invoked.
func (m *MockClient) Calls() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.EvaluateFlagCalls
}

// Reset resets the mock state.
func (m *MockClient) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = make(map[string]*EvalResponse)
	m.EvaluateFlagCalls = 0
	m.Requests = nil
}
