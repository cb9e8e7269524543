package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Not found errors
	ErrNotFound        = errors.New("resource not found")
	ErrDatasetNotFound = fmt.Errorf("%w: dataset", ErrNotFound)
	ErrColumnNotFound  = fmt.Errorf("%w: column", ErrNotFound)
	ErrRunNotFound     = fmt.Errorf("%w: run", ErrNotFound)

	// Statistical preconditions. Engine functions return a nil result wrapped
	// around one of these instead of panicking.
	ErrInsufficientData     = errors.New("insufficient data for analysis")
	ErrInvalidConfiguration = errors.New("invalid analysis configuration")
	ErrNumericDegeneracy    = errors.New("numerically degenerate input")
)

// Error constructors with context
func NewNotFoundError(resource string, id string) error {
	return fmt.Errorf("%w: %s with id %s", ErrNotFound, resource, id)
}

// NewInsufficientDataError reports that a test needed at least min observations.
func NewInsufficientDataError(test string, got, min int) error {
	return fmt.Errorf("%w: %s requires at least %d observations, got %d", ErrInsufficientData, test, min, got)
}

func NewInvalidConfigError(field string, reason string) error {
	return fmt.Errorf("%w: %s: %s", ErrInvalidConfiguration, field, reason)
}

func NewDegeneracyError(test string, reason string) error {
	return fmt.Errorf("%w: %s: %s", ErrNumericDegeneracy, test, reason)
}

// Error checking helpers
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsPreconditionError reports whether err is a recoverable "can't compute" condition.
func IsPreconditionError(err error) bool {
	return errors.Is(err, ErrInsufficientData) ||
		errors.Is(err, ErrInvalidConfiguration) ||
		errors.Is(err, ErrNumericDegeneracy)
}
