package apierr

import (
	"errors"
	"fmt"
	"net/http"
)

// Error carries an HTTP status and a stable machine code alongside the
// underlying cause. Handlers map it straight onto the response.
type Error struct {
	Status int
	Code   string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	if e.Status != 0 {
		return fmt.Sprintf("api error (%d)", e.Status)
	}
	return "api error"
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

const (
	CodeValidation   = "validation_error"
	CodePermission   = "permission_error"
	CodeImmutability = "immutability_error"
	CodeState        = "state_error"
	CodeNotFound     = "not_found"
	CodeInternal     = "internal_error"
)

// Validation rejects malformed input: bad target references, weights or
// confidences outside [0,1], unknown enum values.
func Validation(format string, args ...interface{}) *Error {
	return New(http.StatusBadRequest, CodeValidation, fmt.Errorf(format, args...))
}

// Permission rejects actors that are banned, over their daily limit, or
// below the reputation an operation requires.
func Permission(format string, args ...interface{}) *Error {
	return New(http.StatusForbidden, CodePermission, fmt.Errorf(format, args...))
}

// Immutability rejects writes against level-0 targets.
func Immutability(format string, args ...interface{}) *Error {
	return New(http.StatusConflict, CodeImmutability, fmt.Errorf(format, args...))
}

// State rejects operations invalid for the entity's current lifecycle state,
// such as voting after the window closed or resolving twice.
func State(format string, args ...interface{}) *Error {
	return New(http.StatusConflict, CodeState, fmt.Errorf(format, args...))
}

func NotFound(format string, args ...interface{}) *Error {
	return New(http.StatusNotFound, CodeNotFound, fmt.Errorf(format, args...))
}

func Internal(err error) *Error {
	return New(http.StatusInternalServerError, CodeInternal, err)
}

// From extracts an *Error from err's chain, or wraps err as internal.
func From(err error) *Error {
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	return Internal(err)
}

// HasCode reports whether err carries the given machine code.
func HasCode(err error, code string) bool {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Code == code
	}
	return false
}
