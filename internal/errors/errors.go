package errors

import (
	"errors"
	"fmt"
)

// Common error types for the patient portal
var (
	// Auth bridge errors
	ErrNotInitialized = errors.New("auth bridge is not initialized")

	// Authentication errors
	ErrNotAuthenticated            = errors.New("not authenticated")
	ErrInteractiveLoginUnsupported = errors.New("interactive login is not supported")
	ErrInvalidState                = errors.New("invalid state parameter")
	ErrInvalidNonce                = errors.New("invalid nonce")
	ErrMissingIDToken              = errors.New("no id_token in token response")

	// Session errors
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionExpired  = errors.New("session expired")

	// Remote API errors
	ErrNotFound       = errors.New("not found")
	ErrInvalidFileURL = errors.New("invalid file_url returned from API")

	// General errors
	ErrInvalidRequest = errors.New("invalid request")
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
