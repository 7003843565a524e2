package errors

import (
	"errors"
	"fmt"
)

// Common error types for the CloudOps client
var (
	// Authentication errors
	ErrTwoFactorRequired = errors.New("two-factor code required")
	ErrNotAuthenticated  = errors.New("not authenticated")

	// Token errors
	ErrNoRefreshToken = errors.New("no refresh token stored")

	// Request errors
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
)

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
