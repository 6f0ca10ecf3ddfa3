package gofeatureflag

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultTimeout = 10 * time.Second

// Option configures a GO Feature Flag provider.
type Option func(*providerConfig) error

// providerConfig holds internal configuration.
type providerConfig struct {
	endpoint   string
	apiKey     string
	timeout    time.Duration
	headers    map[string]string
	httpClient *http.Client
}

// validate checks the configuration after all options have been applied.
// The endpoint is the only required setting.
func (c *providerConfig) validate() error {
	if c.endpoint == "" {
		return &ConfigError{Field: "endpoint", Message: "endpoint is required"}
	}

	u, err := url.Parse(c.endpoint)
	if err != nil || u.Host == "" {
		return &ConfigError{Field: "endpoint", Message: fmt.Sprintf("invalid URL: %q", c.endpoint)}
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return &ConfigError{Field: "endpoint", Message: fmt.Sprintf("endpoint scheme must be http or https, got %q", u.Scheme)}
	}

	return nil
}

// WithEndpoint sets the base URL of the GO Feature Flag relay proxy.
// This is required.
//
// Example: gofeatureflag.WithEndpoint("http://localhost:1031")
func WithEndpoint(endpoint string) Option {
	return func(c *providerConfig) error {
		if endpoint == "" {
			return &ConfigError{Field: "endpoint", Message: "endpoint cannot be empty"}
		}
		c.endpoint = strings.TrimSuffix(endpoint, "/")
		return nil
	}
}

// WithAPIKey sets the bearer token used to authenticate against the relay proxy.
func WithAPIKey(apiKey string) Option {
	return func(c *providerConfig) error {
		c.apiKey = apiKey
		return nil
	}
}

// WithTimeout sets the HTTP timeout for evaluation requests.
// Default: 10 seconds
func WithTimeout(timeout time.Duration) Option {
	return func(c *providerConfig) error {
		if timeout <= 0 {
			return &ConfigError{Field: "timeout", Message: "timeout must be positive"}
		}
		c.timeout = timeout
		return nil
	}
}

// WithHeader adds a header sent with every evaluation request.
func WithHeader(key, value string) Option {
	return func(c *providerConfig) error {
		if key == "" {
			return &ConfigError{Field: "headers", Message: "header key cannot be empty"}
		}
		if c.headers == nil {
			c.headers = make(map[string]string)
		}
		c.headers[key] = value
		return nil
	}
}

// WithHeaders adds a set of headers sent with every evaluation request.
func WithHeaders(headers map[string]string) Option {
	return func(c *providerConfig) error {
		if c.headers == nil {
			c.headers = make(map[string]string, len(headers))
		}
		for k, v := range headers {
			if k == "" {
				return &ConfigError{Field: "headers", Message: "header key cannot be empty"}
			}
			c.headers[k] = v
		}
		return nil
	}
}

// WithHTTPClient sets a custom *http.Client for evaluation requests.
// Use this to plug in a client with a shared transport, proxy settings or
// instrumentation. When set, WithTimeout has no effect; the client's own
// timeout applies.
func WithHTTPClient(client *http.Client) Option {
	return func(c *providerConfig) error {
		if client == nil {
			return &ConfigError{Field: "httpClient", Message: "http client cannot be nil"}
		}
		c.httpClient = client
		return nil
	}
}

// WithConfig applies a full Config struct.
// This is an alternative to using individual options.
func WithConfig(cfg Config) Option {
	return func(c *providerConfig) error {
		c.endpoint = strings.TrimSuffix(cfg.Endpoint, "/")
		c.apiKey = cfg.APIKey
		if cfg.Timeout > 0 {
			c.timeout = cfg.Timeout
		}
		if len(cfg.Headers) > 0 {
			if c.headers == nil {
				c.headers = make(map[string]string, len(cfg.Headers))
			}
			for k, v := range cfg.Headers {
				c.headers[k] = v
			}
		}
		return nil
	}
}
