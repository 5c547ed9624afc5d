// Package errors provides the typed domain errors of the quoting engine.
package errors

import (
	stderrors "errors"
	"fmt"
)

// Type identifies the category of error.
type Type string

const (
	// TypeNotFound indicates an unknown family, option, or material code.
	TypeNotFound Type = "NOT_FOUND"

	// TypeInvalidChoice indicates a selection outside the currently-valid set.
	TypeInvalidChoice Type = "INVALID_CHOICE"

	// TypeIncompleteConfiguration indicates finalize was attempted with
	// required options still unselected.
	TypeIncompleteConfiguration Type = "INCOMPLETE_CONFIGURATION"

	// TypeAlreadyFinalized indicates a mutation of a finalized session.
	TypeAlreadyFinalized Type = "ALREADY_FINALIZED"

	// TypeUnknownAdder indicates a selected choice with no price entry.
	// This is catalog-data corruption and is never defaulted to zero.
	TypeUnknownAdder Type = "UNKNOWN_ADDER"

	// TypeExhaustedOption indicates an option with no valid choices left.
	TypeExhaustedOption Type = "EXHAUSTED_OPTION"

	// TypeInternal indicates an internal error.
	TypeInternal Type = "INTERNAL_ERROR"
)

// Error is a domain error with context.
type Error struct {
	Type    Type           `json:"type"`
	Message string         `json:"message"`
	Cause   error          `json:"-"`
	Context map[string]any `json:"context,omitempty"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Cause
}

// WithContext adds context to the error.
func (e *Error) WithContext(key string, value any) *Error {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

// New creates a new error.
func New(errType Type, message string) *Error {
	return &Error{Type: errType, Message: message}
}

// Newf creates a new error with a formatted message.
func Newf(errType Type, format string, args ...any) *Error {
	return &Error{Type: errType, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates a new error wrapping a cause.
func Wrap(errType Type, message string, cause error) *Error {
	return &Error{Type: errType, Message: message, Cause: cause}
}

// IsType reports whether err is a domain error of the given type.
func IsType(err error, t Type) bool {
	var de *Error
	if stderrors.As(err, &de) {
		return de.Type == t
	}
	return false
}

// TypeOf returns the domain type of err, or TypeInternal for plain errors.
func TypeOf(err error) Type {
	var de *Error
	if stderrors.As(err, &de) {
		return de.Type
	}
	return TypeInternal
}
