// Package errors provides structured error types for the netskel pipeline.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the CLI and library packages
//   - Machine-readable error codes for programmatic handling
//   - Stage attribution so a failed run reports where it died
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Error codes map to the pipeline's failure taxonomy:
//   - EMPTY_INPUT: no geometry survives buffering/union
//   - INVALID_PARAMETER: non-positive buffer, cell size, or tile size
//   - EMPTY_SKELETON: thinning collapsed every foreground pixel
//   - INVALID_GEOJSON: malformed or geometry-free input document
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidParameter, "rasterize", "buffer must be positive, got %g", b)
//	if errors.Is(err, errors.ErrCodeInvalidParameter) {
//	    // Handle validation error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeInvalidGeoJSON, "read", origErr, "decode %s", path)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for the pipeline failure taxonomy.
const (
	// Input validation errors
	ErrCodeInvalidParameter Code = "INVALID_PARAMETER"
	ErrCodeInvalidGeoJSON   Code = "INVALID_GEOJSON"
	ErrCodeInvalidFormat    Code = "INVALID_FORMAT"

	// Empty-result errors
	ErrCodeEmptyInput    Code = "EMPTY_INPUT"
	ErrCodeEmptySkeleton Code = "EMPTY_SKELETON"

	// Internal errors
	ErrCodeInternal Code = "INTERNAL_ERROR"
)

// Error is a structured error with a code, the pipeline stage that raised it,
// and an optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Stage   string // Pipeline stage that raised the error (e.g., "rasterize", "thin", "build")
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	switch {
	case e.Stage != "" && e.Cause != nil:
		return fmt.Sprintf("%s: %s: %s: %v", e.Code, e.Stage, e.Message, e.Cause)
	case e.Stage != "":
		return fmt.Sprintf("%s: %s: %s", e.Code, e.Stage, e.Message)
	case e.Cause != nil:
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	default:
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code, stage, and formatted message.
func New(code Code, stage, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Stage:   stage,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, stage string, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Stage:   stage,
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

// GetStage extracts the originating stage from an error, if available.
func GetStage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Stage
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
