// Package apperrors defines the closed set of domain errors that the HTTP edge knows how to render.
package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Kind tags a domain error. The set is closed: anything that is not an *Error is Internal.
type Kind int

const (
	Internal Kind = iota
	Validation
	NotFound
	Conflict
)

// String returns the name of the kind.
func (k Kind) String() string {
	switch k {
	case Validation:
		return "validation"
	case NotFound:
		return "not_found"
	case Conflict:
		return "conflict"
	default:
		return "internal"
	}
}

// StatusCode returns the HTTP status declared for the kind.
func (k Kind) StatusCode() int {
	switch k {
	case Validation:
		return http.StatusBadRequest
	case NotFound:
		return http.StatusNotFound
	case Conflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Error is a domain error with a client-safe message.
// Details holds per-field violation messages for Validation errors.
type Error struct {
	Kind    Kind
	Message string
	Details []string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if len(e.Details) > 0 {
		msg = msg + ": " + strings.Join(e.Details, "; ")
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// StatusCode returns the HTTP status of the error.
func (e *Error) StatusCode() int {
	return e.Kind.StatusCode()
}

// NewNotFound returns a NotFound error wrapping cause.
func NewNotFound(message string, cause error) *Error {
	return &Error{Kind: NotFound, Message: message, Err: cause}
}

// NewConflict returns a Conflict error wrapping cause.
func NewConflict(message string, cause error) *Error {
	return &Error{Kind: Conflict, Message: message, Err: cause}
}

// NewValidation returns a Validation error carrying one message per violated field.
func NewValidation(message string, details ...string) *Error {
	return &Error{Kind: Validation, Message: message, Details: details}
}

// KindOf reports the kind of err. Errors outside the domain set are Internal.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return Internal
}

// Is reports whether err is a domain error of the given kind.
func Is(err error, kind Kind) bool {
	var appErr *Error
	return errors.As(err, &appErr) && appErr.Kind == kind
}
