package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for the failure kinds of the scheduler/optimizer error
// model that surface as errors: invalid review time, insufficient logs, and
// an unavailable optimizer backend, plus the ErrValidation root.
var (
	// ErrValidation wraps value-errors: an input failed a precondition and
	// the attempted operation had no side effect.
	ErrValidation = errors.New("validation error")

	// ErrInvalidReviewTime means a review timestamp without UTC tagging
	// was supplied to review_card.
	ErrInvalidReviewTime = fmt.Errorf("%w: review_datetime must be timezone-aware and set to UTC", ErrValidation)

	// ErrInsufficientLogs means compute_optimal_retention was called with
	// fewer than 512 review logs, or a log has a nil review_duration.
	ErrInsufficientLogs = fmt.Errorf("%w: at least 512 review logs with non-null review_duration are required", ErrValidation)

	// ErrOptimizerUnavailable means the optimizer's numeric backend could
	// not be constructed; the scheduler itself remains usable.
	ErrOptimizerUnavailable = errors.New("optimizer backend unavailable")
)

// FieldError describes a validation error for a specific field.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError contains a list of field-level validation errors.
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 1 {
		return fmt.Sprintf("validation: %s — %s", e.Errors[0].Field, e.Errors[0].Message)
	}
	return fmt.Sprintf("validation: %d errors", len(e.Errors))
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NewValidationError creates a ValidationError for a single field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Errors: []FieldError{{Field: field, Message: message}},
	}
}

// NewValidationErrors creates a ValidationError from multiple field errors.
func NewValidationErrors(errs []FieldError) *ValidationError {
	return &ValidationError{Errors: errs}
}
