package auth

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for token state. NotAuthenticated and TokenExpired are
// distinguished so callers can tell "never logged in" from "stale token".
var (
	// ErrNotAuthenticated means no access token has been acquired.
	ErrNotAuthenticated = errors.New("not authenticated, please login")
	// ErrTokenExpired means a token was acquired but is past its buffered expiry.
	ErrTokenExpired = errors.New("access token expired")
	// ErrMissingRefreshToken means a refresh was attempted with no stored
	// refresh token (after logout, or before any login).
	ErrMissingRefreshToken = errors.New("no refresh token available, please re-login")
	// ErrExhaustedRetries guards the interceptor's attempt bound. It should
	// be unreachable.
	ErrExhaustedRetries = errors.New("request failed after retries")
)

// Error reports a non-2xx response from the login, refresh, or
// registration endpoint.
type Error struct {
	Op         string // "login", "refresh", or "register"
	Status     int
	StatusText string
	Body       []byte
}

func (e *Error) Error() string {
	if e.StatusText != "" {
		return fmt.Sprintf("%s failed: %s", e.Op, e.StatusText)
	}
	return fmt.Sprintf("%s failed with status %d", e.Op, e.Status)
}

// SchemaError reports a token or registration payload that did not match
// the expected shape.
type SchemaError struct {
	Op     string
	Fields []string // missing or invalid fields
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("%s response validation failed: invalid fields [%s]", e.Op, strings.Join(e.Fields, ", "))
}
