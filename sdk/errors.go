// ABOUTME: Error types returned by the Web Clipper SDK
// ABOUTME: Classifies API problem responses and transport failures

package sdk

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorType represents the type of error
type ErrorType string

const (
	// ErrorTypeValidation indicates the server rejected the request
	ErrorTypeValidation ErrorType = "validation"

	// ErrorTypeNotFound indicates a tab was not found
	ErrorTypeNotFound ErrorType = "not_found"

	// ErrorTypeRateLimited indicates the client exceeded its budget
	ErrorTypeRateLimited ErrorType = "rate_limited"

	// ErrorTypeUnreachable indicates the target tab or service could not be reached
	ErrorTypeUnreachable ErrorType = "unreachable"

	// ErrorTypeNetwork indicates the server could not be reached
	ErrorTypeNetwork ErrorType = "network"

	// ErrorTypeParsing indicates an unreadable response
	ErrorTypeParsing ErrorType = "parsing"

	// ErrorTypeInternal indicates a server failure
	ErrorTypeInternal ErrorType = "internal"

	// ErrorTypeConfiguration indicates a bad client option
	ErrorTypeConfiguration ErrorType = "configuration"
)

// Error represents a structured error from the SDK
type Error struct {
	Type    ErrorType
	Message string
	Status  int
	Cause   error
	Context map[string]interface{}
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying cause
func (e *Error) Unwrap() error {
	return e.Cause
}

// NewError creates a new error with the given type and message
func NewError(errType ErrorType, message string) *Error {
	return &Error{
		Type:    errType,
		Message: message,
		Context: make(map[string]interface{}),
	}
}

// WithCause adds a cause to the error
func (e *Error) WithCause(cause error) *Error {
	e.Cause = cause
	return e
}

// WithContext adds context to the error
func (e *Error) WithContext(key string, value interface{}) *Error {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// problem is the RFC 9457 body huma writes for errors
type problem struct {
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail"`
}

// errorForStatus classifies a non-2xx response
func errorForStatus(status int, p problem) *Error {
	msg := p.Detail
	if msg == "" {
		msg = p.Title
	}
	if msg == "" {
		msg = http.StatusText(status)
	}

	var t ErrorType
	switch {
	case status == http.StatusNotFound:
		t = ErrorTypeNotFound
	case status == http.StatusTooManyRequests:
		t = ErrorTypeRateLimited
	case status == http.StatusBadGateway:
		t = ErrorTypeUnreachable
	case status >= 400 && status < 500:
		t = ErrorTypeValidation
	default:
		t = ErrorTypeInternal
	}
	e := NewError(t, msg)
	e.Status = status
	return e
}

func isType(err error, t ErrorType) bool {
	var e *Error
	return errors.As(err, &e) && e.Type == t
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool { return isType(err, ErrorTypeValidation) }

// IsNotFoundError checks if an error is a not found error
func IsNotFoundError(err error) bool { return isType(err, ErrorTypeNotFound) }

// IsRateLimitedError checks if the server throttled the client
func IsRateLimitedError(err error) bool { return isType(err, ErrorTypeRateLimited) }

// IsNetworkError checks if an error is a network error
func IsNetworkError(err error) bool { return isType(err, ErrorTypeNetwork) }
