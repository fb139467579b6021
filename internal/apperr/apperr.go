// Package apperr defines the error kinds surfaced by the application.
//
// Anything user-recoverable (bad input) is a ValidationError, anything the
// backend rejected is a WriteError, listener failures are SubscriptionErrors,
// and the two fatal startup kinds (ConfigError, AuthError) block the session.
package apperr

import "fmt"

// ConfigError means required configuration was missing or invalid at
// startup. It is fatal for the whole process.
type ConfigError struct {
	Key    string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("configuration %q: %s", e.Key, e.Reason)
}

// AuthError means sign-in failed or no session could be resolved. Fatal for
// the session; there is no retry path.
type AuthError struct {
	Reason string
	Err    error
}

func (e *AuthError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("authentication failed: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("authentication failed: %s", e.Reason)
}

func (e *AuthError) Unwrap() error { return e.Err }

// SubscriptionError reports a failure on a live collection listener. The
// subscription itself stays registered; recovery is the store's concern.
type SubscriptionError struct {
	Kind string
	Err  error
}

func (e *SubscriptionError) Error() string {
	return fmt.Sprintf("subscription to %s failed: %v", e.Kind, e.Err)
}

func (e *SubscriptionError) Unwrap() error { return e.Err }

// ValidationError means user input failed a precondition. It never reaches
// the record store and is surfaced inline.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// Validation is shorthand for a field-level validation failure.
func Validation(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// WriteError means a create, update or delete was rejected by the record
// store. Local state is left untouched; the next snapshot is authoritative.
type WriteError struct {
	Op   string // "create", "update" or "delete"
	Kind string
	ID   string
	Err  error
}

func (e *WriteError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("%s %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s %s %s: %v", e.Op, e.Kind, e.ID, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }
