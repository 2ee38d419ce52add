// Package errors provides structured error types for the picplan surface
// layers (CLI and HTTP service).
//
// The geometry core reports failures as plain sentinel errors in pkg/layout;
// this package wraps them with machine-readable codes so the CLI and the
// service can map failures to exit codes and HTTP statuses consistently.
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidQuery, "bad mode: %s", mode)
//	if errors.Is(err, errors.ErrCodeInvalidQuery) {
//	    // 400
//	}
//
// [FromLayout] bridges the core's sentinels into coded errors, and
// [HTTPStatus] gives the service one place that decides status codes.
package errors

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/matzehuels/picplan/pkg/layout"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidQuery      Code = "INVALID_QUERY"
	ErrCodeInvalidDimensions Code = "INVALID_DIMENSIONS"
	ErrCodeInvalidPreset     Code = "INVALID_PRESET"
	ErrCodeInvalidColor      Code = "INVALID_COLOR"

	// Resource not found errors
	ErrCodeNotFound       Code = "NOT_FOUND"
	ErrCodePresetNotFound Code = "PRESET_NOT_FOUND"
	ErrCodeFileNotFound   Code = "FILE_NOT_FOUND"

	// Internal errors
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeCache       Code = "CACHE_ERROR"
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
func (e *Error) Unwrap() error { return e.Cause }

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Cause: cause}
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

// FromLayout wraps a geometry-core error with the surface code matching its
// sentinel: a zero source dimension is a dimension problem with the input
// image, while zero targets and zero regions come from the instruction set.
// Causes that are not layout sentinels map to INTERNAL_ERROR.
func FromLayout(cause error, format string, args ...any) *Error {
	code := ErrCodeInternal
	switch {
	case errors.Is(cause, layout.ErrZeroSourceDimension):
		code = ErrCodeInvalidDimensions
	case errors.Is(cause, layout.ErrZeroTargetDimension),
		errors.Is(cause, layout.ErrZeroRegionDimension):
		code = ErrCodeInvalidQuery
	}
	return Wrap(code, cause, format, args...)
}

// HTTPStatus maps an error onto the status the planning service responds
// with: validation failures are 400s, missing resources 404s, everything
// else a 500.
func HTTPStatus(err error) int {
	switch GetCode(err) {
	case ErrCodeInvalidQuery, ErrCodeInvalidDimensions, ErrCodeInvalidPreset, ErrCodeInvalidColor:
		return http.StatusBadRequest
	case ErrCodeNotFound, ErrCodePresetNotFound, ErrCodeFileNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
