package errors

import (
	"fmt"
)

// ErrorType defines different categories of errors
type ErrorType string

const (
	ErrorTypeValidation    ErrorType = "VALIDATION"
	ErrorTypeNotFound      ErrorType = "NOT_FOUND"
	ErrorTypeConfiguration ErrorType = "CONFIGURATION"
	ErrorTypeUpstream      ErrorType = "UPSTREAM"
	ErrorTypeInternal      ErrorType = "INTERNAL"
)

// AppError is the custom error type for the application.
// CorrelationID ties a fatal error back to the task that produced it so
// operators can trace it without exposing internal detail to the end user.
type AppError struct {
	Type          ErrorType
	Message       string
	CorrelationID string
	Err           error
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap allows errors.Is and errors.As to work
func (e *AppError) Unwrap() error {
	return e.Err
}

// UserMessage returns the message safe to show to an end user: the message
// plus the correlation id, never the wrapped cause.
func (e *AppError) UserMessage() string {
	if e.CorrelationID != "" {
		return fmt.Sprintf("%s (ref: %s)", e.Message, e.CorrelationID)
	}
	return e.Message
}

// WithCorrelation attaches a correlation id to an error, preserving the type
// when the error already is an AppError.
func WithCorrelation(err error, correlationID string) error {
	if err == nil {
		return nil
	}
	if appErr, ok := err.(*AppError); ok {
		return &AppError{
			Type:          appErr.Type,
			Message:       appErr.Message,
			CorrelationID: correlationID,
			Err:           appErr.Err,
		}
	}
	return &AppError{
		Type:          ErrorTypeInternal,
		Message:       "internal error",
		CorrelationID: correlationID,
		Err:           err,
	}
}

// Constructor functions for different error types

// NewValidation creates a validation error
func NewValidation(message string) error {
	return &AppError{
		Type:    ErrorTypeValidation,
		Message: message,
	}
}

// NewNotFound creates a not found error
func NewNotFound(message string) error {
	return &AppError{
		Type:    ErrorTypeNotFound,
		Message: message,
	}
}

// NewConfiguration creates a configuration error (missing credential,
// unknown model key)
func NewConfiguration(message string) error {
	return &AppError{
		Type:    ErrorTypeConfiguration,
		Message: message,
	}
}

// NewUpstream creates an error for a failed upstream collaborator call
func NewUpstream(message string, err error) error {
	return &AppError{
		Type:    ErrorTypeUpstream,
		Message: message,
		Err:     err,
	}
}

// NewInternal creates an internal error
func NewInternal(message string, err error) error {
	return &AppError{
		Type:    ErrorTypeInternal,
		Message: message,
		Err:     err,
	}
}

// Wrap wraps an error with additional context
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}

	// If it's already an AppError, preserve the type
	if appErr, ok := err.(*AppError); ok {
		return &AppError{
			Type:          appErr.Type,
			Message:       fmt.Sprintf("%s: %s", message, appErr.Message),
			CorrelationID: appErr.CorrelationID,
			Err:           appErr.Err,
		}
	}

	// Otherwise, create an internal error
	return &AppError{
		Type:    ErrorTypeInternal,
		Message: message,
		Err:     err,
	}
}

// Type checking functions

// IsValidation checks if an error is a validation error
func IsValidation(err error) bool {
	appErr, ok := err.(*AppError)
	return ok && appErr.Type == ErrorTypeValidation
}

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	appErr, ok := err.(*AppError)
	return ok && appErr.Type == ErrorTypeNotFound
}

// IsConfiguration checks if an error is a configuration error
func IsConfiguration(err error) bool {
	appErr, ok := err.(*AppError)
	return ok && appErr.Type == ErrorTypeConfiguration
}

// IsUpstream checks if an error is an upstream error
func IsUpstream(err error) bool {
	appErr, ok := err.(*AppError)
	return ok && appErr.Type == ErrorTypeUpstream
}

// IsInternal checks if an error is an internal error
func IsInternal(err error) bool {
	appErr, ok := err.(*AppError)
	return ok && appErr.Type == ErrorTypeInternal
}
