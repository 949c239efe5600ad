package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Error kinds. Every error returned by a repository or service either wraps one of these
// or is treated as an internal failure by the HTTP boundary.
var (
	ErrValidation      = errors.New("validation failed")
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
)

// Specific outcomes. Each one wraps its kind so callers can match either.
var (
	ErrEventNotFound = fmt.Errorf("event %w", ErrNotFound)
	ErrUserNotFound  = fmt.Errorf("user %w", ErrNotFound)

	ErrAlreadyJoined = fmt.Errorf("%w: already joined this event", ErrConflict)
	ErrNotJoined     = fmt.Errorf("%w: not joined to this event", ErrConflict)
	ErrAlreadySaved  = fmt.Errorf("%w: event already saved", ErrConflict)
	ErrNotSaved      = fmt.Errorf("%w: event not saved", ErrConflict)

	ErrDuplicateEmail     = fmt.Errorf("%w: email already registered", ErrConflict)
	ErrInvalidCredentials = fmt.Errorf("%w: invalid email or password", ErrUnauthenticated)
	ErrNotOwner           = fmt.Errorf("%w: not the owner of this event", ErrForbidden)
)

// ValidationError lists every problem found in a piece of input.
type ValidationError struct {
	Problems []string
}

// NewValidationError returns a *ValidationError for the given problems.
func NewValidationError(problems ...string) *ValidationError {
	return &ValidationError{Problems: problems}
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Problems, "; ")
}

// Unwrap makes errors.Is(err, ErrValidation) hold.
func (e *ValidationError) Unwrap() error {
	return ErrValidation
}
