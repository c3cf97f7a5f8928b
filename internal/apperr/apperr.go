// Package apperr defines the enumerated error kinds the engine can return.
// No error escapes the engine as an opaque host-platform failure; every
// returned error is either one of these or wraps one.
package apperr

import (
	"errors"
	"fmt"
)

// Code identifies one of the error kinds the engine recognizes.
type Code string

const (
	// BadClassFile marks a class byte stream that could not be parsed:
	// bad magic, truncated constant pool, or a malformed descriptor.
	BadClassFile Code = "BAD_CLASS_FILE"
	// UnreadableContainer marks an archive or directory that could not be opened.
	UnreadableContainer Code = "UNREADABLE_CONTAINER"
	// UnknownNode marks a lookup for a path that does not exist in the tree.
	UnknownNode Code = "UNKNOWN_NODE"
	// InvalidCollapse marks an attempt to collapse the root node.
	InvalidCollapse Code = "INVALID_COLLAPSE"
	// EmptyGraphDensity marks a density request on a graph with fewer than two nodes.
	EmptyGraphDensity Code = "EMPTY_GRAPH_DENSITY"
	// Cancelled marks a long-running algorithm that observed cooperative cancellation.
	Cancelled Code = "CANCELLED"
)

// Error is the engine's single error type. It always carries a Code so
// callers can branch on failure kind with errors.As plus a human-readable
// Message, and may wrap an underlying cause.
type Error struct {
	Code    Code
	Message string
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause, if any.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error with the same Code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// New creates an *Error with no wrapped cause.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap creates an *Error that wraps err.
func Wrap(code Code, message string, err error) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

// Newf creates an *Error with a formatted message.
func Newf(code Code, format string, args ...interface{}) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// CodeOf extracts the Code from err, or "" if err is not (and does not wrap) an *Error.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}
