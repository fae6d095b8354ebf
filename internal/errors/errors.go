// Package errors provides the single error taxonomy used across the knowledge hub.
//
// Every failure carries a transport-level Code and, for domain failures, a
// machine-readable Kind plus the context values that produced it.
//
// Usage:
//
//	// In the domain - return typed errors
//	if playlist.HasTool(toolID) {
//	    return errors.Conflict("tool already in playlist").WithKind(KindToolAlreadyInPlaylist)
//	}
//
//	// In callers - check with errors.Is against a code sentinel
//	if errors.Is(err, errors.ErrNotFound) {
//	    ...
//	}
//
//	// Or extract the error and switch on the kind
//	var domainErr *errors.Error
//	if errors.As(err, &domainErr) {
//	    switch domainErr.Kind {
//	    case domain.KindPlaylistNotFound:
//	        ...
//	    }
//	}
package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"net/http"
	"time"
)

// Re-export standard library functions for convenience.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	Join   = errors.Join
	New    = errors.New
)

// Code represents a transport-level error class.
type Code string

// Error codes used throughout the application.
const (
	CodeNotFound      Code = "NOT_FOUND"
	CodeAlreadyExists Code = "ALREADY_EXISTS"
	CodeForbidden     Code = "FORBIDDEN"
	CodeValidation    Code = "VALIDATION"
	CodeConflict      Code = "CONFLICT"
	CodeQuotaExceeded Code = "QUOTA_EXCEEDED"
	CodeUnavailable   Code = "UNAVAILABLE"
	CodeInternal      Code = "INTERNAL"
)

// HTTPStatus returns the appropriate HTTP status code for an error code.
func (c Code) HTTPStatus() int {
	switch c {
	case CodeNotFound:
		return http.StatusNotFound
	case CodeAlreadyExists, CodeConflict:
		return http.StatusConflict
	case CodeForbidden:
		return http.StatusForbidden
	case CodeValidation:
		return http.StatusBadRequest
	case CodeQuotaExceeded:
		return http.StatusUnprocessableEntity
	case CodeUnavailable:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Kind identifies the concrete failure variant. The set of kinds is owned by
// the package raising them (see the domain package).
type Kind string

// Error is a coded error with an optional kind, context values and the time it was raised.
type Error struct {
	Timestamp time.Time      `json:"timestamp"`
	Context   map[string]any `json:"context,omitempty"`
	Code      Code           `json:"code"`
	Kind      Kind           `json:"kind,omitempty"`
	Message   string         `json:"message"`
	cause     error          // unexported, for wrapping
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.cause
}

// Is reports whether target matches this error.
// A target without a Kind matches on Code alone; a target with a Kind
// must match both.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	if e.Code != t.Code {
		return false
	}
	return t.Kind == "" || t.Kind == e.Kind
}

// HTTPStatus returns the HTTP status code for this error.
func (e *Error) HTTPStatus() int {
	return e.Code.HTTPStatus()
}

// ToJSON returns the error as a JSON document for logs and API envelopes.
func (e *Error) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// Value returns a context value by key, or nil.
func (e *Error) Value(key string) any {
	return e.Context[key]
}

func (e *Error) clone() *Error {
	return &Error{
		Timestamp: e.Timestamp,
		Context:   maps.Clone(e.Context),
		Code:      e.Code,
		Kind:      e.Kind,
		Message:   e.Message,
		cause:     e.cause,
	}
}

// WithKind returns a new error tagged with kind.
func (e *Error) WithKind(kind Kind) *Error {
	out := e.clone()
	out.Kind = kind
	return out
}

// With returns a new error carrying an additional context value.
func (e *Error) With(key string, value any) *Error {
	out := e.clone()
	if out.Context == nil {
		out.Context = make(map[string]any, 1)
	}
	out.Context[key] = value
	return out
}

// WithDetails returns a new error whose context holds details under "details".
func (e *Error) WithDetails(details any) *Error {
	return e.With("details", details)
}

// WithCause wraps an underlying error.
func (e *Error) WithCause(err error) *Error {
	out := e.clone()
	out.cause = err
	return out
}

// Sentinel errors for use with errors.Is().
var (
	ErrNotFound      = &Error{Code: CodeNotFound, Message: "not found"}
	ErrAlreadyExists = &Error{Code: CodeAlreadyExists, Message: "already exists"}
	ErrForbidden     = &Error{Code: CodeForbidden, Message: "forbidden"}
	ErrValidation    = &Error{Code: CodeValidation, Message: "validation error"}
	ErrConflict      = &Error{Code: CodeConflict, Message: "conflict"}
	ErrQuotaExceeded = &Error{Code: CodeQuotaExceeded, Message: "quota exceeded"}
	ErrUnavailable   = &Error{Code: CodeUnavailable, Message: "unavailable"}
	ErrInternal      = &Error{Code: CodeInternal, Message: "internal error"}
)

func newError(code Code, msg string) *Error {
	return &Error{Code: code, Message: msg, Timestamp: time.Now().UTC()}
}

// Constructor functions for creating errors with custom messages.

// NotFound creates a not found error.
func NotFound(msg string) *Error {
	return newError(CodeNotFound, msg)
}

// NotFoundf creates a not found error with formatted message.
func NotFoundf(format string, args ...any) *Error {
	return newError(CodeNotFound, fmt.Sprintf(format, args...))
}

// AlreadyExists creates an already exists error.
func AlreadyExists(msg string) *Error {
	return newError(CodeAlreadyExists, msg)
}

// AlreadyExistsf creates an already exists error with formatted message.
func AlreadyExistsf(format string, args ...any) *Error {
	return newError(CodeAlreadyExists, fmt.Sprintf(format, args...))
}

// Forbidden creates a forbidden error.
func Forbidden(msg string) *Error {
	return newError(CodeForbidden, msg)
}

// Forbiddenf creates a forbidden error with formatted message.
func Forbiddenf(format string, args ...any) *Error {
	return newError(CodeForbidden, fmt.Sprintf(format, args...))
}

// Validation creates a validation error.
func Validation(msg string) *Error {
	return newError(CodeValidation, msg)
}

// Validationf creates a validation error with formatted message.
func Validationf(format string, args ...any) *Error {
	return newError(CodeValidation, fmt.Sprintf(format, args...))
}

// ValidationWithDetails creates a validation error with details.
func ValidationWithDetails(msg string, details any) *Error {
	return newError(CodeValidation, msg).WithDetails(details)
}

// Conflict creates a conflict error.
func Conflict(msg string) *Error {
	return newError(CodeConflict, msg)
}

// Conflictf creates a conflict error with formatted message.
func Conflictf(format string, args ...any) *Error {
	return newError(CodeConflict, fmt.Sprintf(format, args...))
}

// QuotaExceededf creates a quota exceeded error with formatted message.
func QuotaExceededf(format string, args ...any) *Error {
	return newError(CodeQuotaExceeded, fmt.Sprintf(format, args...))
}

// Unavailablef creates an unavailable error with formatted message.
func Unavailablef(format string, args ...any) *Error {
	return newError(CodeUnavailable, fmt.Sprintf(format, args...))
}

// Internal creates an internal error.
func Internal(msg string) *Error {
	return newError(CodeInternal, msg)
}

// Internalf creates an internal error with formatted message.
func Internalf(format string, args ...any) *Error {
	return newError(CodeInternal, fmt.Sprintf(format, args...))
}

// Wrap wraps an error with a code and message.
func Wrap(err error, code Code, msg string) *Error {
	return newError(code, msg).WithCause(err)
}

// Wrapf wraps an error with a code and formatted message.
func Wrapf(err error, code Code, format string, args ...any) *Error {
	return newError(code, fmt.Sprintf(format, args...)).WithCause(err)
}

// KindOf returns the kind of the first *Error in err's chain, or "".
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
