package apperrors

import (
	"errors"
	"fmt"
)

// Common error types for the zeropapel client
var (
	// Authentication errors
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrSessionExpired     = errors.New("session expired")

	// Token errors
	ErrAuthorizationExpired = errors.New("authorization expired")
	ErrNoRefreshCredential  = errors.New("no refresh credential")
	ErrRefreshFailed        = errors.New("refresh failed")
	ErrInvalidIdentityToken = errors.New("invalid identity token")

	// Transport errors
	ErrNetworkFailure = errors.New("network failure")

	// Storage errors
	ErrCredentialStore = errors.New("credential store failure")
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
