// Package goffapi implements the HTTP client for the GO Feature Flag
// relay proxy evaluation API.
package goffapi

// User is the representation of the evaluation subject sent to the relay
// proxy. Field names and casing must match the relay proxy API exactly.
type User struct {
	Key       string         `json:"key"`
	Anonymous bool           `json:"anonymous"`
	Custom    map[string]any `json:"custom,omitempty"`
}

// NewUser builds a User from a targeting key and context attributes.
// The subject is treated as anonymous unless the context carries an
// "anonymous" attribute saying otherwise.
func NewUser(targetingKey string, attrs map[string]any) User {
	anonymous := true
	if v, ok := attrs["anonymous"].(bool); ok {
		anonymous = v
	}

	var custom map[string]any
	if len(attrs) > 0 {
		custom = make(map[string]any, len(attrs))
		for k, v := range attrs {
			custom[k] = v
		}
	}

	return User{
		Key:       targetingKey,
		Anonymous: anonymous,
		Custom:    custom,
	}
}

// EvalRequest is the body of POST /v1/feature/{flagKey}/eval.
// The default value travels with the request so the relay proxy can return
// it when the flag is disabled or cannot be resolved.
type EvalRequest struct {
	User         User `json:"user"`
	DefaultValue any  `json:"defaultValue"`
}

// EvalResponse is the relay proxy evaluation payload.
type EvalResponse struct {
	Value         any    `json:"value"`
	VariationType string `json:"variationType"`
	Reason        string `json:"reason"`
	ErrorCode     string `json:"errorCode"`
	Failed        bool   `json:"failed"`
	TrackEvents   bool   `json:"trackEvents"`
	Version       string `json:"version"`
}
