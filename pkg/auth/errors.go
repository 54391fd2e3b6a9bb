package auth

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrUnauthenticated is matched by every authentication failure on a protected call.
	ErrUnauthenticated = errors.New("unauthenticated")

	ErrMissingToken          = errors.New("missing bearer token")
	ErrTokenMalformed        = errors.New("malformed token")
	ErrTokenSignatureInvalid = errors.New("token signature invalid")
	ErrTokenExpired          = errors.New("token expired")
	ErrUserNotFound          = errors.New("user not found")

	// ErrInvalidCredentials is the only error login reports for bad credentials.
	ErrInvalidCredentials = errors.New("invalid credentials")

	ErrUsernameTaken = errors.New("username already registered")
	ErrEmailTaken    = errors.New("email already registered")

	ErrValidation = errors.New("validation failed")

	// ErrNotFound covers both missing resources and resources owned by someone else.
	ErrNotFound = errors.New("not found")
)

// AuthError is a rejected identity with the precise reason attached.
// It matches ErrUnauthenticated and the reason via errors.Is.
type AuthError struct {
	Reason error
}

func (e *AuthError) Error() string {
	return "unauthenticated: " + e.Reason.Error()
}

func (e *AuthError) Unwrap() []error {
	return []error{ErrUnauthenticated, e.Reason}
}

func newAuthError(reason error) error {
	return &AuthError{Reason: reason}
}

// RejectionReason returns a stable label for logs and metrics.
func RejectionReason(err error) string {
	switch {
	case errors.Is(err, ErrMissingToken):
		return "missing_token"
	case errors.Is(err, ErrTokenExpired):
		return "token_expired"
	case errors.Is(err, ErrTokenSignatureInvalid):
		return "token_signature_invalid"
	case errors.Is(err, ErrTokenMalformed):
		return "token_malformed"
	case errors.Is(err, ErrUserNotFound):
		return "user_not_found"
	case errors.Is(err, ErrUnauthenticated):
		return "unauthenticated"
	default:
		return "unknown"
	}
}

// ValidationError lists failed rules per input field.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

func (e *ValidationError) Unwrap() error { return ErrValidation }
