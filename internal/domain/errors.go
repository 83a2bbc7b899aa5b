package domain

import (
	"errors"
	"fmt"
)

// ValidationError reports a missing or malformed input field. Maps to 400.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// StoreError wraps a persistence failure. Maps to 500, never retried.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// AuthError reports a missing or rejected credential. Maps to 401.
type AuthError struct {
	Reason string
}

func (e *AuthError) Error() string { return e.Reason }

// IsValidation reports whether err is caused by bad caller input.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsStore reports whether err originated in the ledger.
func IsStore(err error) bool {
	var se *StoreError
	return errors.As(err, &se)
}

// IsAuth reports whether err is an authorization failure.
func IsAuth(err error) bool {
	var ae *AuthError
	return errors.As(err, &ae)
}
