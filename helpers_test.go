package gofeatureflag

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/open-feature/go-sdk/openfeature"
	"github.com/stretchr/testify/require"

	"github.com/lcampit/gofeatureflag-provider/internal/goffapi"
)

// mockRelayProxy is a mock GO Feature Flag relay proxy for testing.
type mockRelayProxy struct {
	*httptest.Server
	mu        sync.RWMutex
	responses map[string]goffapi.EvalResponse
	requests  int
}

// newMockRelayProxy creates a mock relay proxy serving canned evaluation
// responses keyed by flag key.
func newMockRelayProxy(t *testing.T) *mockRelayProxy {
	t.Helper()

	mock := &mockRelayProxy{
		responses: make(map[string]goffapi.EvalResponse),
	}

	mux := http.NewServeMux()

	// POST /v1/feature/{flagKey}/eval
	mux.HandleFunc("/v1/feature/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		flagKey := strings.TrimPrefix(r.URL.Path, "/v1/feature/")
		flagKey = strings.TrimSuffix(flagKey, "/eval")

		var req goffapi.EvalRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}

		mock.mu.Lock()
		mock.requests++
		resp, ok := mock.responses[flagKey]
		mock.mu.Unlock()

		if !ok {
			resp = goffapi.EvalResponse{
				Value:     req.DefaultValue,
				Reason:    "ERROR",
				ErrorCode: "FLAG_NOT_FOUND",
				Failed:    true,
			}
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	})

	mock.Server = httptest.NewServer(mux)
	t.Cleanup(mock.Close)

	return mock
}

// setResponse registers a canned response for a flag key.
func (m *mockRelayProxy) setResponse(flagKey string, resp goffapi.EvalResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses[flagKey] = resp
}

// requestCount returns how many evaluation requests the mock has served.
func (m *mockRelayProxy) requestCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.requests
}

// newTestProvider creates a provider pointed at the given endpoint.
func newTestProvider(t *testing.T, endpoint string) *Provider {
	t.Helper()

	provider, err := New(WithEndpoint(endpoint))
	require.NoError(t, err)
	return provider
}

// defaultEvalCtx mirrors the context used across most evaluation tests.
func defaultEvalCtx() openfeature.FlattenedContext {
	return openfeature.FlattenedContext{
		openfeature.TargetingKey: "d45e303a-38c2-11ed-a261-0242ac120002",
		"email":                  "john.doe@gofeatureflag.org",
		"firstname":              "john",
		"lastname":               "doe",
		"anonymous":              false,
		"professional":           true,
		"rate":                   3.14,
		"age":                    30,
		"company_info":           map[string]any{"name": "my_company", "size": 120},
		"labels":                 []any{"pro", "beta"},
	}
}
