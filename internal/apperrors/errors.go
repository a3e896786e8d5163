package apperrors

import (
	"errors"
	"fmt"
)

// Error taxonomy for the relay. Every failure a handler can surface maps to
// exactly one of these; none is retried automatically.
var (
	// Validation errors (400, detected before any network call)
	ErrMissingTenant     = errors.New("missing shop domain")
	ErrMissingParameters = errors.New("missing required parameters")
	ErrInvalidState      = errors.New("invalid state")

	// Authorization-state errors (401, the client should prompt re-auth)
	ErrUnlinkedTenant   = errors.New("no upstream account linked")
	ErrNoToken          = errors.New("no upstream token found")
	ErrTokenUnavailable = errors.New("upstream access token unavailable")

	// Upstream/network errors (500, sanitized before reaching the tenant)
	ErrUpstreamExchange = errors.New("upstream token exchange failed")
	ErrUpstream         = errors.New("upstream request failed")

	// General errors
	ErrNotFound = errors.New("not found")
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
