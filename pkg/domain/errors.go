package domain

import (
	"errors"
	"fmt"
)

// ErrElementNotFound is returned when a required element id does not resolve.
var ErrElementNotFound = errors.New("element not found")

// ErrBindingFailure is returned when a UI mutation fails after resolution.
var ErrBindingFailure = errors.New("binding failure")

// ErrInvalidScript is returned when a script violates its invariants.
var ErrInvalidScript = errors.New("invalid script")

// ElementNotFoundError identifies the element id that failed to resolve.
type ElementNotFoundError struct {
	ID string
}

func (e *ElementNotFoundError) Error() string {
	return fmt.Sprintf("element not found: #%s", e.ID)
}

// Is reports ErrElementNotFound as a match.
func (e *ElementNotFoundError) Is(target error) bool {
	return target == ErrElementNotFound
}

// BindingError wraps a failed UI mutation.
type BindingError struct {
	Op        string
	ElementID string
	Err       error
}

func (e *BindingError) Error() string {
	return fmt.Sprintf("binding failure: %s on #%s: %v", e.Op, e.ElementID, e.Err)
}

func (e *BindingError) Unwrap() error {
	return e.Err
}

// Is reports ErrBindingFailure as a match.
func (e *BindingError) Is(target error) bool {
	return target == ErrBindingFailure
}
