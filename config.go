package gofeatureflag

import (
	"time"
)

// Config holds all configuration for the GO Feature Flag provider.
// It is the struct-form alternative to the functional options; see WithConfig.
type Config struct {
	// Endpoint is the base URL of the GO Feature Flag relay proxy
	// Example: "http://localhost:1031"
	Endpoint string

	// APIKey is an optional bearer token sent with every evaluation request.
	// Required when the relay proxy is started with authentication enabled.
	APIKey string

	// Timeout for HTTP requests to the relay proxy
	Timeout time.Duration

	// Headers are additional headers sent with every evaluation request
	Headers map[string]string
}

// DefaultConfig returns recommended default configuration.
func DefaultConfig() Config {
	return Config{
		Timeout: 10 * time.Second,
	}
}
