package services

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by the service layer. Controllers branch on these
// with errors.Is and translate them into the JSON envelope; nothing below the
// handler boundary panics or leaks driver errors to clients.
var (
	// ErrAuthenticationRequired means no valid session accompanied the call.
	ErrAuthenticationRequired = errors.New("authentication required")
	// ErrProfileNotFound means the caller is authenticated but has not
	// finished onboarding. Distinct from ErrAuthenticationRequired so the
	// client can route to username setup instead of login.
	ErrProfileNotFound = errors.New("profile not found")
	// ErrValidation wraps malformed input; the reason is safe to show users.
	ErrValidation = errors.New("invalid input")
	// ErrNotFound means the referenced entity does not exist.
	ErrNotFound = errors.New("not found")
	// ErrForbidden means the caller may not act on the referenced entity.
	ErrForbidden = errors.New("forbidden")
	// ErrDuplicate is returned by stores on a uniqueness violation. The like
	// toggle swallows it; everywhere else it surfaces as a conflict.
	ErrDuplicate = errors.New("duplicate entry")
	// ErrUnavailable wraps datastore or storage failures.
	ErrUnavailable = errors.New("backend unavailable")
)

func invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func unavailable(err error) error {
	return fmt.Errorf("%w: %v", ErrUnavailable, err)
}
