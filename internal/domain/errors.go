package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound means the operation target does not exist.
	ErrNotFound = errors.New("not found")
	// ErrInvalidArgument means a malformed identifier or query parameter.
	ErrInvalidArgument = errors.New("invalid argument")
)

// ValidationError reports a bad field value with enough context for the
// caller to act or log.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// Validation builds a ValidationError for field with the given reason.
func Validation(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
