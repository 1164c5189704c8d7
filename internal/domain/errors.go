package domain

import (
	"fmt"
	"net/http"
)

// Common error types
type ErrNotFound struct {
	Entity string
	ID     string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found with ID: %s", e.Entity, e.ID)
}

// ErrSessionNotFound is returned for unknown or expired editor sessions
type ErrSessionNotFound struct {
	SessionID string
}

func (e *ErrSessionNotFound) Error() string {
	return fmt.Sprintf("editor session not found: %s", e.SessionID)
}

// ValidationError represents an error that occurs due to invalid input or parameters
type ValidationError struct {
	Message string
}

// Error implements the error interface
func (e ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s", e.Message)
}

// NewValidationError creates a new validation error with the given message
func NewValidationError(message string) error {
	return ValidationError{
		Message: message,
	}
}

// SaveError is a non-2xx answer from the templates backend
type SaveError struct {
	StatusCode int    `json:"status_code"`
	Message    string `json:"message"`
}

func (e *SaveError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("templates backend returned %d", e.StatusCode)
	}
	return fmt.Sprintf("templates backend returned %d: %s", e.StatusCode, e.Message)
}

// Retryable is false for CSRF and validation failures, which must be
// surfaced to the user rather than retried
func (e *SaveError) Retryable() bool {
	switch e.StatusCode {
	case 419, http.StatusUnprocessableEntity:
		return false
	}
	return e.StatusCode >= 500 || e.StatusCode == http.StatusTooManyRequests
}
