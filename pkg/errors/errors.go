package errors

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates a resource was not found
	ErrNotFound = errors.New("resource not found")

	// ErrUnavailable indicates a remote dependency (sheet, SMTP, database) could not be reached
	ErrUnavailable = errors.New("dependency unavailable")

	// ErrConflict indicates a resource conflict
	ErrConflict = errors.New("resource conflict")

	// ErrNotConfigured indicates an optional integration was used without configuration
	ErrNotConfigured = errors.New("not configured")
)

// Wrap wraps an error with a message
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with a formatted message
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// Unavailable marks err as a failure to reach a remote dependency. Both
// ErrUnavailable and err stay matchable.
func Unavailable(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", message, ErrUnavailable, err)
}

// Is checks if an error matches a target error
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsConflict checks if an error is a conflict error
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}

// IsUnavailable checks if a remote dependency could not be reached
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrUnavailable)
}

// IsNotConfigured checks if an optional integration is missing its configuration
func IsNotConfigured(err error) bool {
	return errors.Is(err, ErrNotConfigured)
}
