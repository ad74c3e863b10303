package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Structural errors abort the current validation call
	ErrConfiguration = errors.New("configuration error")
	ErrShapeMismatch = errors.New("shape mismatch")
	ErrUnknownMethod = errors.New("unknown method")
	ErrInvalidInput  = errors.New("invalid input")

	// Not found errors
	ErrNotFound          = errors.New("resource not found")
	ErrSessionNotFound   = fmt.Errorf("%w: critique session", ErrNotFound)
	ErrIterationNotFound = fmt.Errorf("%w: critique iteration", ErrNotFound)

	// Session state errors
	ErrIterationProcessed = errors.New("critique iteration already processed")
	ErrSessionComplete    = errors.New("critique session already complete")
)

// Error constructors with context
func NewNotFoundError(resource string, id string) error {
	return fmt.Errorf("%w: %s with id %s", ErrNotFound, resource, id)
}

func NewMissingEvidenceError(key string) error {
	return fmt.Errorf("%w: evidence is missing mandatory key %q", ErrConfiguration, key)
}

func NewShapeMismatchError(signalLen, noiseLen int) error {
	return fmt.Errorf("%w: signal length %d, noise length %d", ErrShapeMismatch, signalLen, noiseLen)
}

// Error checking helpers
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsHardError reports whether err belongs to the structural error class that
// aborts a validation call (as opposed to soft violations carried as data).
func IsHardError(err error) bool {
	return errors.Is(err, ErrConfiguration) ||
		errors.Is(err, ErrShapeMismatch) ||
		errors.Is(err, ErrUnknownMethod) ||
		errors.Is(err, ErrInvalidInput)
}
