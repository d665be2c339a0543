// Package service provides application-level services for goals, study plans,
// plan tasks, schedule status and curricula.
package service

import (
	"errors"
	"fmt"

	"github.com/phrazzld/studyplan-api/internal/store"
)

// Common service errors - sentinel errors used across service implementations.
// Callers check them with errors.Is(); the API layer maps them to status codes.
//
// Error handling principles:
// 1. Service methods return sentinel errors for expected error conditions
// 2. Validation failures are returned as *domain.ValidationError unchanged
// 3. Unexpected errors are wrapped in *ServiceError
var (
	// ErrNotOwned indicates a resource is owned by a different user than the one making the request.
	// API layer should map this to HTTP 403 Forbidden.
	ErrNotOwned = errors.New("resource is owned by another user")

	// ErrNoActiveGoal indicates the user has no active goal to plan against.
	ErrNoActiveGoal = errors.New("no active goal")

	// ErrNoActivePlan indicates the user has no active study plan.
	ErrNoActivePlan = errors.New("no active study plan")

	// ErrPlanNotFound indicates the study plan does not exist.
	ErrPlanNotFound = errors.New("study plan not found")

	// ErrTaskNotFound indicates the plan task does not exist.
	ErrTaskNotFound = errors.New("plan task not found")

	// ErrItemNotFound indicates the curriculum item does not exist.
	ErrItemNotFound = errors.New("curriculum item not found")

	// ErrSubjectNotFound indicates the subject does not exist.
	ErrSubjectNotFound = errors.New("subject not found")

	// ErrDuplicateSubject indicates the user already has a subject with that name.
	ErrDuplicateSubject = errors.New("subject already exists")

	// ErrDescriptionUnparseable indicates a natural-language plan description could
	// not be turned into a schedule. Unlike the status narrative it has no fallback.
	ErrDescriptionUnparseable = errors.New("plan description could not be understood")

	// ErrNotManualPlan indicates a manual task was added to a generated plan.
	ErrNotManualPlan = errors.New("tasks can only be added to manual plans")

	// ErrPlanNotActive indicates an operation that needs an active plan was
	// attempted on an abandoned or completed one.
	ErrPlanNotActive = errors.New("study plan is not active")
)

// ServiceError wraps unexpected errors with the operation that failed.
type ServiceError struct {
	// Operation is the operation that failed (e.g., "generate_plan", "complete_task")
	Operation string
	// Message is a human-readable description of the error
	Message string
	// Err is the underlying error that caused the failure
	Err error
}

// Error implements the error interface for ServiceError.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("service %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("service %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewServiceError creates a new ServiceError.
// It returns known sentinel errors directly without wrapping, and maps store-level
// not-found errors to their service-level counterparts.
func NewServiceError(operation, message string, err error) error {
	if err == nil {
		return nil
	}

	for _, sentinel := range []error{
		ErrNotOwned, ErrNoActiveGoal, ErrNoActivePlan, ErrPlanNotFound, ErrTaskNotFound,
		ErrItemNotFound, ErrSubjectNotFound, ErrDuplicateSubject, ErrDescriptionUnparseable,
		ErrNotManualPlan, ErrPlanNotActive,
	} {
		if errors.Is(err, sentinel) {
			return sentinel
		}
	}

	switch {
	case errors.Is(err, store.ErrPlanNotFound):
		return ErrPlanNotFound
	case errors.Is(err, store.ErrTaskNotFound):
		return ErrTaskNotFound
	case errors.Is(err, store.ErrItemNotFound):
		return ErrItemNotFound
	case errors.Is(err, store.ErrSubjectNotFound):
		return ErrSubjectNotFound
	}

	return &ServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
