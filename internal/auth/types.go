// Package auth implements the cookie-session login check: one configured
// credential pair, opaque session tokens, and HTTP middleware that guards
// the API.
package auth

import "fmt"

// Principal represents an authenticated user.
type Principal struct {
	ID string
}

// Credentials represents a login attempt.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// ErrorType represents the type of authentication error.
type ErrorType string

const (
	ErrInvalidCredentials ErrorType = "invalid_credentials"
	ErrUnauthorized       ErrorType = "unauthorized"
)

// Error represents an authentication-related error.
type Error struct {
	Type    ErrorType
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }
