/*
errors.go - Centralized error types for the workbench

PURPOSE:
  All error types in one place for consistency and discoverability.
  Stores return the sentinels; the factory returns ValidationError; the API
  layer maps both onto HTTP status codes with the helpers at the bottom.

ERROR CATEGORIES:
  1. Lookup errors - a referenced record does not exist
  2. Write errors - a create collided with an existing ID
  3. Validation errors - user-typed input was rejected

USAGE:
  if errors.Is(err, generic.ErrProjectNotFound) {
      ...
  }

SEE ALSO:
  - store.go: Repository contract that returns these errors
  - factory/: builds ValidationError from raw input
*/
package generic

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	ErrCompanyNotFound = errors.New("company not found")
	ErrClientNotFound  = errors.New("client not found")
	ErrProjectNotFound = errors.New("project not found")

	// ErrDuplicateID is returned by Create when the ID is already taken.
	ErrDuplicateID = errors.New("duplicate id")

	// ErrInvalidInput is the root of every ValidationError.
	ErrInvalidInput = errors.New("invalid input")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// ValidationError names the offending field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

// Invalid is shorthand for building a ValidationError.
func Invalid(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsNotFound returns true if the error indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrCompanyNotFound) ||
		errors.Is(err, ErrClientNotFound) ||
		errors.Is(err, ErrProjectNotFound)
}

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidInput) || errors.Is(err, ErrDuplicateID)
}
