package storage

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound = errors.New("not found")
	// ErrUnavailable is returned by a durable backend that is not configured
	// or cannot be reached.
	ErrUnavailable = errors.New("backend unavailable")
	ErrValidation  = errors.New("validation failed")
	ErrFatal       = errors.New("all backends failed")
)

// ValidationError reports bad input. The gateway never masks it with a
// fallback attempt.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// Invalid builds a ValidationError.
func Invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// FatalError is returned when the durable and the fallback attempt both fail.
type FatalError struct {
	Op       string
	Durable  error
	Fallback error
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("%s: durable: %v; fallback: %v", e.Op, e.Durable, e.Fallback)
}

func (e *FatalError) Is(target error) bool {
	return target == ErrFatal
}

func (e *FatalError) Unwrap() []error {
	return []error{e.Durable, e.Fallback}
}

// IsNotFound reports a missing entity that no other error accompanies.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) && !errors.Is(err, ErrFatal)
}
