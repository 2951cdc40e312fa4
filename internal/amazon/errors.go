package amazon

import (
	"errors"
	"fmt"
)

// Error types for distinguishing failure reasons.
// Check with errors.Is(err, amazon.ErrNotAuthenticated).
var (
	// ErrNotAuthenticated indicates the site redirected to its login form.
	// Callers should prompt for re-authentication instead of retrying.
	ErrNotAuthenticated = errors.New("not authenticated: redirected to login")
	// ErrMarkerNotFound indicates an operation's structural marker never
	// appeared. This usually means markup drift, not an auth problem.
	ErrMarkerNotFound = errors.New("expected content not found")
	// ErrInvalidASIN indicates the catalog identifier fails the format rule.
	ErrInvalidASIN = errors.New("invalid ASIN")
	// ErrNoSnapshot indicates mock mode found no captured markup for the
	// operation.
	ErrNoSnapshot = errors.New("no snapshot available")
)

// MarkerError wraps ErrMarkerNotFound with enough context to tell "site
// changed" apart from a wrong operation.
type MarkerError struct {
	Op     Operation
	Marker string
	Err    error
}

func (e *MarkerError) Error() string {
	return fmt.Sprintf("%s: marker %q not found during %s: %v", ErrMarkerNotFound, e.Marker, e.Op, e.Err)
}

func (e *MarkerError) Unwrap() error { return ErrMarkerNotFound }
