// Package apperr defines the error taxonomy shared by the repository,
// service and HTTP layers. Every failure a caller can act on carries a stable
// machine-readable Code; anything else is treated as internal.
package apperr

import (
	"errors"
	"fmt"
)

// Code categorizes an application error.
type Code string

const (
	// CodeDuplicateKey indicates a registration conflict on username or email.
	CodeDuplicateKey Code = "duplicate_key"
	// CodeInvalidCredentials indicates a failed login.
	CodeInvalidCredentials Code = "invalid_credentials"
	// CodeInvalidToken indicates a missing, malformed, expired or unverifiable token.
	CodeInvalidToken Code = "invalid_token"
	// CodeNotFound indicates a resource that is absent or not owned by the caller.
	CodeNotFound Code = "not_found"
	// CodeValidation indicates malformed input.
	CodeValidation Code = "validation"
	// CodeInternal indicates an unexpected failure.
	CodeInternal Code = "internal"
)

// AppError is a categorized error. It wraps an optional cause so that
// errors.Is and errors.As keep working through it.
type AppError struct {
	// Code is the category of the error.
	Code Code
	// Message is safe to show to clients.
	Message string
	// Field names the offending input field, if any.
	Field string
	// Cause is the underlying error.
	Cause error
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying cause.
func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an *AppError with the same Code, so that
// errors.Is(err, apperr.ErrNotFound) matches any not-found error.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// Sentinels for errors.Is comparisons.
var (
	ErrDuplicateKey       = &AppError{Code: CodeDuplicateKey, Message: "already registered"}
	ErrInvalidCredentials = &AppError{Code: CodeInvalidCredentials, Message: "Incorrect username or password"}
	ErrInvalidToken       = &AppError{Code: CodeInvalidToken, Message: "Could not validate credentials"}
	ErrNotFound           = &AppError{Code: CodeNotFound, Message: "not found"}
	ErrValidation         = &AppError{Code: CodeValidation, Message: "invalid input"}
)

// DuplicateKey reports a uniqueness conflict on field.
func DuplicateKey(field string, cause error) *AppError {
	msg := "already registered"
	if field != "" {
		msg = capitalize(field) + " already registered"
	}
	return &AppError{Code: CodeDuplicateKey, Message: msg, Field: field, Cause: cause}
}

// InvalidCredentials reports a failed login.
func InvalidCredentials() *AppError {
	return &AppError{Code: CodeInvalidCredentials, Message: ErrInvalidCredentials.Message}
}

// InvalidToken reports a token that cannot be trusted.
func InvalidToken(cause error) *AppError {
	return &AppError{Code: CodeInvalidToken, Message: ErrInvalidToken.Message, Cause: cause}
}

// NotFound reports an absent resource.
func NotFound(message string) *AppError {
	return &AppError{Code: CodeNotFound, Message: message}
}

// Validation reports malformed input on field.
func Validation(field, message string) *AppError {
	return &AppError{Code: CodeValidation, Message: message, Field: field}
}

// CodeOf returns the Code of the first *AppError in err's chain, or
// CodeInternal when there is none.
func CodeOf(err error) Code {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeInternal
}

// MessageOf returns the client-safe message of err. Errors outside the
// taxonomy get a generic message so internal details never leak.
func MessageOf(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return "internal error"
}

func capitalize(s string) string {
	if s == "" || s[0] < 'a' || s[0] > 'z' {
		return s
	}
	return string(s[0]-32) + s[1:]
}
