package profile

import (
	"errors"
	"fmt"
)

// Error types for distinguishing failure reasons.
// Check with errors.Is(err, profile.ErrNotFound).
var (
	// ErrNotFound indicates the named profile has no file on disk.
	ErrNotFound = errors.New("profile not found")
	// ErrInvalidName indicates the profile name fails the format rule.
	ErrInvalidName = errors.New("invalid profile name")
	// ErrInvalidPayload indicates the cookie payload failed validation.
	// The wrapping error names the specific cause.
	ErrInvalidPayload = errors.New("invalid cookie payload")
)

// NotFoundError wraps ErrNotFound and carries the set of profiles that do
// exist, so a caller can present valid alternatives.
type NotFoundError struct {
	Name      string
	Available []string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("profile %q not found (available: %v)", e.Name, e.Available)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }
