package store

import (
	"errors"
	"fmt"
)

// Common store errors used across all store implementations.
var (
	// ErrNotFound is returned when a requested entity does not exist in the store.
	ErrNotFound = errors.New("entity not found")

	// ErrDuplicate is returned when an operation would create a duplicate of a
	// unique entity, such as a second active plan for a user.
	ErrDuplicate = errors.New("entity already exists")

	// ErrInvalidEntity is returned when an entity fails validation before being stored.
	ErrInvalidEntity = errors.New("invalid entity")

	// ErrTransactionFailed is returned when a transaction cannot begin or commit.
	ErrTransactionFailed = errors.New("transaction failed")

	// Entity-specific "not found" errors

	ErrGoalNotFound    = fmt.Errorf("%w: goal", ErrNotFound)
	ErrPlanNotFound    = fmt.Errorf("%w: study plan", ErrNotFound)
	ErrTaskNotFound    = fmt.Errorf("%w: plan task", ErrNotFound)
	ErrSubjectNotFound = fmt.Errorf("%w: subject", ErrNotFound)
	ErrItemNotFound    = fmt.Errorf("%w: curriculum item", ErrNotFound)

	// ErrActivePlanExists is returned when inserting an active plan for a user who
	// already has one.
	ErrActivePlanExists = fmt.Errorf("%w: active plan", ErrDuplicate)
)

// StoreError is a custom error type for store-specific errors with additional context.
type StoreError struct {
	Entity    string // The entity type (e.g., "goal", "plan_task")
	Operation string // The operation that failed (e.g., "create", "reschedule")
	Message   string
	Err       error
}

// Error implements the error interface for StoreError.
func (e *StoreError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf(
			"%s operation on %s failed: %s: %v",
			e.Operation,
			e.Entity,
			e.Message,
			e.Err,
		)
	}
	return fmt.Sprintf("%s operation on %s failed: %s", e.Operation, e.Entity, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *StoreError) Unwrap() error {
	return e.Err
}

// NewStoreError creates a new StoreError with the given entity, operation, message, and wrapped error.
func NewStoreError(entity, operation, message string, err error) *StoreError {
	return &StoreError{
		Entity:    entity,
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
