package domain

import (
	"fmt"
)

// NotFoundError: a referenced row is absent. Surfaced, never retried.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// ValidationError: structurally invalid input, e.g. a blank card number.
// Fails fast, never coerced.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// IntegrityConflictError: a unique-constraint race during create that could
// not be recovered by re-querying. Fatal data-integrity condition.
type IntegrityConflictError struct {
	Resource string
	Key      string
	Err      error
}

func (e *IntegrityConflictError) Error() string {
	return fmt.Sprintf("integrity conflict on %s (%s): %v", e.Resource, e.Key, e.Err)
}

func (e *IntegrityConflictError) Unwrap() error {
	return e.Err
}
