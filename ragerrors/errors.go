// Package ragerrors defines the typed error taxonomy shared across the core.
// Only the outermost HTTP adapter translates these into status codes; every
// internal caller deals in error values, never exceptions-as-control-flow.
package ragerrors

import (
	"errors"
	"fmt"
)

// ValidationError signals a malformed identifier, missing field, empty file,
// or oversized file. Surfaced as 400.
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

func (e *ValidationError) StatusCode() int { return 400 }

func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// NotFoundError signals an unknown id referenced in an update/lookup. Surfaced as 404.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

func (e *NotFoundError) StatusCode() int { return 404 }

// PermissionError signals an RBAC check failure on an internal knowledge
// operation. Surfaced as 403.
type PermissionError struct {
	Resource string
	Required string
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("insufficient permissions on %s: requires %s", e.Resource, e.Required)
}

func (e *PermissionError) StatusCode() int { return 403 }

// StorageError signals a SQL write failure mid-ingest or mid-turn; callers
// must roll back the enclosing transaction before returning it. Surfaced as 5xx.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage error during %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

func (e *StorageError) StatusCode() int { return 500 }

// ExternalServiceError signals an embedder/generator/vector-index failure.
// Handled by the circuit breaker; degrades to the best-effort path for that
// subsystem and never bubbles up unless every generation path has failed.
type ExternalServiceError struct {
	Service string
	Err     error
}

func (e *ExternalServiceError) Error() string {
	return fmt.Sprintf("external service %s unavailable: %v", e.Service, e.Err)
}

func (e *ExternalServiceError) Unwrap() error { return e.Err }

func (e *ExternalServiceError) StatusCode() int { return 503 }

// CancelledError signals request cancellation; no partial turn or document is
// persisted past the most recent commit point.
type CancelledError struct {
	Op string
}

func (e *CancelledError) Error() string {
	return fmt.Sprintf("cancelled during %s", e.Op)
}

func (e *CancelledError) StatusCode() int { return 499 }

// StatusCoder is implemented by every error kind above; the HTTP adapter uses
// it to pick a response status without a type switch.
type StatusCoder interface {
	StatusCode() int
}

// StatusCode returns the HTTP status for err if it (or something it wraps)
// implements StatusCoder, else 500.
func StatusCode(err error) int {
	var sc StatusCoder
	if errors.As(err, &sc) {
		return sc.StatusCode()
	}
	return 500
}
