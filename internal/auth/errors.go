package auth

import (
	"errors"
	"fmt"
)

// Code identifies a class of authentication failure. Codes tell the
// caller what to do next, not just what went wrong.
type Code string

const (
	// CodeNoToken means the account was never authenticated; the user
	// must run the authentication flow.
	CodeNoToken Code = "NO_TOKEN"

	// CodeAuthCodeInvalid means the authorization code exchange was
	// rejected (expired, already used, wrong redirect URI); the
	// authorization flow must be restarted.
	CodeAuthCodeInvalid Code = "AUTH_CODE_INVALID"

	// CodeRefreshFailed means the refresh token is revoked or invalid.
	// The record is purged; re-authentication is required, not a retry.
	CodeRefreshFailed Code = "REFRESH_FAILED"

	// CodeStoreIO means a filesystem failure unrelated to "not found".
	// Fatal for the call that hit it.
	CodeStoreIO Code = "STORE_IO_ERROR"

	// CodeAuthRequired is the unified error service wrappers see
	// whenever a valid token could not be produced, regardless of the
	// underlying cause.
	CodeAuthRequired Code = "AUTH_REQUIRED"
)

// Error is a typed authentication error carrying a taxonomy code.
type Error struct {
	Code    Code
	Message string
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause, if any.
func (e *Error) Unwrap() error {
	return e.Err
}

// NewError creates a typed authentication error.
func NewError(code Code, message string, err error) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

// IsCode reports whether err is (or wraps) an *Error with the given code.
func IsCode(err error, code Code) bool {
	var authErr *Error
	if errors.As(err, &authErr) {
		return authErr.Code == code
	}
	return false
}
