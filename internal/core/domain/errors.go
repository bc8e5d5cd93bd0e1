package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind is the closed set of failure categories the service can raise.
// Every kind maps to exactly one HTTP status code.
type ErrorKind string

const (
	KindValidation    ErrorKind = "validation"
	KindUnauthorized  ErrorKind = "unauthorized"
	KindForbidden     ErrorKind = "forbidden"
	KindNotFound      ErrorKind = "not_found"
	KindConflict      ErrorKind = "conflict"
	KindUnprocessable ErrorKind = "unprocessable"
	KindRateLimit     ErrorKind = "rate_limit"
	KindDatabase      ErrorKind = "database"
	KindInternal      ErrorKind = "internal"
)

// Error is a tagged domain error: a kind plus the payload fields exposed in
// the API error envelope. Dispatch on it with errors.As — never on message text.
type Error struct {
	Kind    ErrorKind
	Message string
	Field   string
	Details string
}

func (e *Error) Error() string { return e.Message }

// Status returns the HTTP status code declared by the error's kind.
func (e *Error) Status() int {
	switch e.Kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindUnprocessable:
		return http.StatusUnprocessableEntity
	case KindRateLimit:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// IsKind reports whether err is (or wraps) a domain Error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var de *Error
	return errors.As(err, &de) && de.Kind == kind
}

// Invalid builds a validation error (400). field names the offending input
// field and may be empty for request-level failures.
func Invalid(message, field string) *Error {
	return &Error{Kind: KindValidation, Message: message, Field: field}
}

// Canonical authentication failure messages. Unknown email and wrong
// password share MsgInvalidCredentials so the two cases are externally
// indistinguishable; an inactive account is reported distinctly.
const (
	MsgInvalidCredentials = "invalid credentials"
	MsgAccountInactive    = "account is inactive"
)

// Unauthorized builds a credentials failure (401).
func Unauthorized(message string) *Error {
	return &Error{Kind: KindUnauthorized, Message: message}
}

// NotFound builds a missing-resource error (404).
func NotFound(resource string, id any) *Error {
	e := &Error{Kind: KindNotFound, Message: resource + " not found"}
	if id != nil {
		e.Details = fmt.Sprintf("id: %v", id)
	}
	return e
}

// Conflict builds a duplicate-unique-field error (409).
func Conflict(resource, field, value string) *Error {
	return &Error{
		Kind:    KindConflict,
		Message: resource + " already exists",
		Field:   field,
		Details: value,
	}
}

// RateLimited builds a throttling error (429).
func RateLimited(message string) *Error {
	return &Error{Kind: KindRateLimit, Message: message}
}

// Database wraps an unexpected storage failure (500). The underlying cause is
// kept in Details so development responses can surface it.
func Database(cause error) *Error {
	e := &Error{Kind: KindDatabase, Message: "database error"}
	if cause != nil {
		e.Details = cause.Error()
	}
	return e
}

// Internal wraps any other unexpected failure (500).
func Internal(cause error) *Error {
	e := &Error{Kind: KindInternal, Message: "internal server error"}
	if cause != nil {
		e.Details = cause.Error()
	}
	return e
}
