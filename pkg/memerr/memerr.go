// Package memerr defines the error taxonomy for the memory substrate.
//
// Every failure mode in the core is a programmer or caller error, never a
// transient condition: there is no network, disk, or external-service
// failure inside the pure value packages. Callers match on the Code.
package memerr

import (
	"errors"
	"fmt"
)

// Error codes for programmatic handling.
const (
	CodeDimensionMismatch  = "DIMENSION_MISMATCH"  // vector operands of unequal length
	CodeEmptyInput         = "EMPTY_INPUT"         // bundle of zero vectors
	CodeIncompatibleTraces = "INCOMPATIBLE_TRACES" // merge with differing origin or purpose
	CodeNotFound           = "NOT_FOUND"           // decode against an empty codebook
)

// Error is a structured error with a machine-readable code.
type Error struct {
	Code    string // machine-readable code (e.g. DIMENSION_MISMATCH)
	Message string // human-readable description
	Err     error  // wrapped underlying error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := fmt.Sprintf("[%s] %s", e.Code, e.Message)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap supports errors.Is / errors.As.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is checks whether target matches this error's code.
func (e *Error) Is(target error) bool {
	var me *Error
	if errors.As(target, &me) {
		return e.Code == me.Code
	}
	return false
}

// New creates an Error with the given code and message.
func New(code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Newf creates an Error with a formatted message.
func Newf(code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates an Error wrapping an existing error.
func Wrap(code, message string, err error) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

// AsCode extracts the code from an error, or "" if it is not an *Error.
func AsCode(err error) string {
	var me *Error
	if errors.As(err, &me) {
		return me.Code
	}
	return ""
}

// Sentinel values for errors.Is matching by code.
var (
	ErrDimensionMismatch  = New(CodeDimensionMismatch, "vector dimensions do not match")
	ErrEmptyInput         = New(CodeEmptyInput, "no input vectors")
	ErrIncompatibleTraces = New(CodeIncompatibleTraces, "traces have differing origin or purpose")
	ErrNotFound           = New(CodeNotFound, "not found")
)
