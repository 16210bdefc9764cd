package errs

import (
	"errors"
	"fmt"
)

// The backend surfaces every failure to the caller as one of four typed
// errors. Anything that is not one of these (driver errors, network
// failures) is treated as a transient I/O failure and propagated unmodified.

// ValidationError rejects blank or malformed input before any mutation.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// Validationf builds a ValidationError.
func Validationf(format string, args ...interface{}) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// ConflictError covers invalid, self-directed, expired, or stale
// pairing codes and exhausted code allocation.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

// Conflictf builds a ConflictError.
func Conflictf(format string, args ...interface{}) error {
	return &ConflictError{Message: fmt.Sprintf(format, args...)}
}

// NotFoundError reports an absent principal or record.
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string { return e.Message }

// NotFoundf builds a NotFoundError.
func NotFoundf(format string, args ...interface{}) error {
	return &NotFoundError{Message: fmt.Sprintf(format, args...)}
}

// AuthenticationError reports a missing or invalid caller identity.
type AuthenticationError struct {
	Message string
}

func (e *AuthenticationError) Error() string { return e.Message }

// Authenticationf builds an AuthenticationError.
func Authenticationf(format string, args ...interface{}) error {
	return &AuthenticationError{Message: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var e *ValidationError
	return errors.As(err, &e)
}

// IsConflict reports whether err is a ConflictError.
func IsConflict(err error) bool {
	var e *ConflictError
	return errors.As(err, &e)
}

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var e *NotFoundError
	return errors.As(err, &e)
}

// IsAuthentication reports whether err is an AuthenticationError.
func IsAuthentication(err error) bool {
	var e *AuthenticationError
	return errors.As(err, &e)
}
