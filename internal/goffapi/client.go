package goffapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Client is the interface the provider uses to talk to the relay proxy.
type Client interface {
	EvaluateFlag(ctx context.Context, flagKey string, req EvalRequest) (*EvalResponse, error)
}

// Config configures the relay proxy client.
type Config struct {
	Endpoint string
	APIKey   string
	Timeout  time.Duration
	Headers  map[string]string

	// HTTPClient overrides the default client. Its own timeout applies.
	HTTPClient *http.Client
}

// HTTPClient implements Client over the relay proxy HTTP API.
type HTTPClient struct {
	endpoint   string
	apiKey     string
	headers    map[string]string
	httpClient *http.Client
}

// NewHTTPClient creates a new relay proxy HTTP client.
func NewHTTPClient(config Config) *HTTPClient {
	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout: config.Timeout,
		}
	}

	return &HTTPClient{
		endpoint:   config.Endpoint,
		apiKey:     config.APIKey,
		headers:    config.Headers,
		httpClient: httpClient,
	}
}

// EvaluateFlag evaluates a single flag remotely. One request, one response,
// no retries: transient failures degrade to the caller's default value at the
// provider layer.
func (c *HTTPClient) EvaluateFlag(ctx context.Context, flagKey string, evalReq EvalRequest) (*EvalResponse, error) {
	target := fmt.Sprintf("%s/v1/feature/%s/eval", c.endpoint, url.PathEscape(flagKey))

	body, err := json.Marshal(evalReq)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal evaluation request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.apiKey))
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &HTTPError{
			StatusCode: resp.StatusCode,
			Message:    string(respBody),
		}
	}

	var evalResp EvalResponse
	if err := json.Unmarshal(respBody, &evalResp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	return &evalResp, nil
}

// HTTPError represents a non-2xx response from the relay proxy.
type HTTPError struct {
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}
