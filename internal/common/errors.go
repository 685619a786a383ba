// Package common defines shared constants and sentinel errors used across
// the bookcase client layers. Callers should use errors.Is to match these
// values.
package common

import (
	"errors"
	"fmt"
)

var (
	// Credential could not be decoded locally (bad format, missing subject,
	// expired). Stored token must be cleared.
	ErrMalformedCredential = errors.New("malformed credential")

	// ErrCredentialExpired is wrapped together with ErrMalformedCredential
	// when the token decodes but its exp claim is in the past.
	ErrCredentialExpired = errors.New("credential expired")

	// Backend rejected the credential or could not be reached while
	// resolving the session.
	ErrSessionUnresolvable = errors.New("session unresolvable")

	// Favorite add/remove call failed after the optimistic update.
	ErrFavoriteSync = errors.New("favorite sync failure")

	// Form input rejected before any network call.
	ErrValidation = errors.New("validation failure")

	// Operation requires a logged-in session.
	ErrNotAuthenticated = errors.New("not authenticated")
)

// ValidationError describes a single rejected input field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: %s", ErrValidation, e.Message)
	}
	return fmt.Sprintf("%s: %s: %s", ErrValidation, e.Field, e.Message)
}

// Unwrap lets errors.Is(err, ErrValidation) match.
func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// NewValidationError is a shorthand for &ValidationError{...}.
func NewValidationError(field, msg string) error {
	return &ValidationError{Field: field, Message: msg}
}
