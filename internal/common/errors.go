package common

import (
	"errors"
	"fmt"
)

// Common error types used across the application
var (
	// ErrInvalidInput indicates invalid user input
	ErrInvalidInput = errors.New("invalid input")
	// ErrNotFound indicates a resource was not found
	ErrNotFound = errors.New("not found")
	// ErrIO indicates a file could not be read or vanished mid-read
	ErrIO = errors.New("file unreadable")
	// ErrProviderUnavailable indicates a reputation provider could not be reached
	ErrProviderUnavailable = errors.New("provider unavailable")
	// ErrProviderTimeout indicates a reputation provider call exceeded its deadline
	ErrProviderTimeout = errors.New("provider timeout")
	// ErrProviderAuth indicates a reputation provider rejected the configured credential
	ErrProviderAuth = errors.New("provider authentication failed")
	// ErrInvalidConfiguration indicates configuration issues
	ErrInvalidConfiguration = errors.New("invalid configuration")
)

// WrapError wraps an error with additional context information
func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// WrapErrorf wraps an error with formatted context information
func WrapErrorf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// NewError creates a new error with a formatted message
func NewError(format string, args ...interface{}) error {
	return fmt.Errorf(format, args...)
}

// ValidationError represents validation errors with field-specific information
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for field '%s': %s (value: %v)", e.Field, e.Message, e.Value)
}

// NewValidationError creates a new validation error
func NewValidationError(field string, value interface{}, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Value:   value,
		Message: message,
	}
}

// ProviderError represents a per-provider failure during a reputation lookup.
// It wraps one of the provider sentinel errors so callers can classify it with
// errors.Is while keeping the provider name for logging.
type ProviderError struct {
	Provider string
	Reason   string
	Wrapped  error
}

func (e *ProviderError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("provider '%s': %s: %v", e.Provider, e.Reason, e.Wrapped)
	}
	return fmt.Sprintf("provider '%s': %v", e.Provider, e.Wrapped)
}

func (e *ProviderError) Unwrap() error {
	return e.Wrapped
}

// NewProviderError creates a new provider error wrapping a sentinel
func NewProviderError(provider, reason string, wrapped error) *ProviderError {
	return &ProviderError{
		Provider: provider,
		Reason:   reason,
		Wrapped:  wrapped,
	}
}
