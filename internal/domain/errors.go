package domain

import (
	"errors"
	"fmt"
)

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity or request fails validation.
	// It is usually wrapped in a *ValidationError carrying the user-facing message.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidTransition is returned when a task or plan status change is not
	// allowed by its state machine.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrPlanTransition is returned when a plan that is no longer active is
	// completed or abandoned.
	ErrPlanTransition = fmt.Errorf("%w: plan is not active", ErrInvalidTransition)

	// ErrInvalidID is returned when an ID is malformed or missing.
	ErrInvalidID = errors.New("invalid ID")
)

// ValidationError describes a rejected input. Message is safe to show to the user
// verbatim.
type ValidationError struct {
	Field   string
	Message string
}

// NewValidationError creates a ValidationError for field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Unwrap makes errors.Is(err, ErrValidation) hold for every ValidationError.
func (e *ValidationError) Unwrap() error {
	return ErrValidation
}
