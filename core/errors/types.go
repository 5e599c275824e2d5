// ABOUTME: Custom error types for the core business logic
// ABOUTME: Provides structured errors for better error handling and API responses

package errors

import (
	"errors"
	"fmt"
)

// NotFoundError represents a resource not found error
type NotFoundError struct {
	Resource string
	ID       string
}

// Error implements the error interface
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field '%s': %s", e.Field, e.Message)
}

// RejectedError reports an extraction that produced too little text
type RejectedError struct {
	Length int
	Min    int
}

// Error implements the error interface
func (e *RejectedError) Error() string {
	return fmt.Sprintf("extraction rejected: %d characters, need at least %d", e.Length, e.Min)
}

// UnreachableError reports a tab or frame with no live receiver
type UnreachableError struct {
	Target string
	Cause  error
}

// Error implements the error interface
func (e *UnreachableError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s is unreachable: %v", e.Target, e.Cause)
	}
	return fmt.Sprintf("%s is unreachable", e.Target)
}

// Unwrap returns the underlying cause
func (e *UnreachableError) Unwrap() error {
	return e.Cause
}

// IsNotFound checks if an error is a NotFoundError
func IsNotFound(err error) bool {
	var notFoundErr *NotFoundError
	return errors.As(err, &notFoundErr)
}

// IsValidation checks if an error is a ValidationError
func IsValidation(err error) bool {
	var validationErr *ValidationError
	return errors.As(err, &validationErr)
}

// IsRejected checks if an error is a RejectedError
func IsRejected(err error) bool {
	var rejectedErr *RejectedError
	return errors.As(err, &rejectedErr)
}

// IsUnreachable checks if an error is an UnreachableError
func IsUnreachable(err error) bool {
	var unreachableErr *UnreachableError
	return errors.As(err, &unreachableErr)
}

// WrapError wraps an error with additional context
func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}
