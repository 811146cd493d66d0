// Package errors provides structured error types for orgchart.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the CLI and the synchronization core
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Codes fall into three groups:
//   - Recoverable core conditions (LOOKUP_MISS, INVALID_SELECTION,
//     STALE_REFERENCE, INVALID_FIELD): the store absorbs them and keeps its
//     last consistent snapshot; callers log them and move on.
//   - Input validation failures (INVALID_*, DUPLICATE_KEY, CYCLE).
//   - Resource and internal errors (FILE_NOT_FOUND, INTERNAL_ERROR, UNSUPPORTED).
//
// # Usage
//
//	err := errors.New(errors.ErrCodeStaleReference, "no record selected")
//	if errors.Is(err, errors.ErrCodeStaleReference) {
//	    // nothing to edit
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeInvalidFormat, origErr, "decode %s", path)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Recoverable synchronization conditions
	ErrCodeLookupMiss       Code = "LOOKUP_MISS"
	ErrCodeInvalidSelection Code = "INVALID_SELECTION"
	ErrCodeStaleReference   Code = "STALE_REFERENCE"
	ErrCodeInvalidField     Code = "INVALID_FIELD"

	// Input validation errors
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidKey    Code = "INVALID_KEY"
	ErrCodeDuplicateKey  Code = "DUPLICATE_KEY"
	ErrCodeCycle         Code = "CYCLE"
	ErrCodeInvalidFormat Code = "INVALID_FORMAT"
	ErrCodeInvalidConfig Code = "INVALID_CONFIG"
	ErrCodeInvalidPath   Code = "INVALID_PATH"

	// Resource not found errors
	ErrCodeNotFound     Code = "NOT_FOUND"
	ErrCodeFileNotFound Code = "FILE_NOT_FOUND"

	// Internal errors
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// Recoverable reports whether err is one of the synchronization conditions
// the core absorbs by keeping its last consistent state.
func Recoverable(err error) bool {
	switch GetCode(err) {
	case ErrCodeLookupMiss, ErrCodeInvalidSelection, ErrCodeStaleReference, ErrCodeInvalidField:
		return true
	}
	return false
}
