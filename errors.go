package gofeatureflag

import (
	"fmt"
)

// Error types that may be returned by provider operations.

// ConfigError indicates invalid provider configuration.
// It is returned by New and fails fast at construction time.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("configuration error [%s]: %s", e.Field, e.Message)
}

// InvalidFlagKeyError indicates an evaluation was requested with an empty flag key.
type InvalidFlagKeyError struct{}

func (e *InvalidFlagKeyError) Error() string {
	return "flag key must not be empty"
}

// TargetingKeyMissingError indicates the evaluation context carries no
// targeting key. The relay proxy cannot resolve targeting rules without one.
type TargetingKeyMissingError struct{}

func (e *TargetingKeyMissingError) Error() string {
	return "targetingKey field MUST be set in your EvaluationContext"
}

// TypeMismatchError indicates the backend resolved the flag to a value of a
// different type than the one requested. This is a contract violation between
// client and backend, so it is surfaced instead of silently defaulted.
type TypeMismatchError struct {
	FlagKey  string
	Expected string
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("flag %s did not resolve to a %s value", e.FlagKey, e.Expected)
}
