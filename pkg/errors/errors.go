// Package errors provides structured errors with stable codes so callers and
// tests can match on categories instead of message text.
package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unique error code for stable testing
type ErrorCode string

// Error codes for different error categories
const (
	// General errors
	ErrUnknown      ErrorCode = "UNKNOWN"
	ErrInternal     ErrorCode = "INTERNAL"
	ErrInvalidInput ErrorCode = "INVALID_INPUT"

	// Lifecycle errors
	ErrNotPrivileged          ErrorCode = "NOT_PRIVILEGED"
	ErrVerificationFailed     ErrorCode = "VERIFICATION_FAILED"
	ErrDetectionInconclusive  ErrorCode = "DETECTION_INCONCLUSIVE"
	ErrExternalTool           ErrorCode = "EXTERNAL_TOOL"
	ErrAlreadyInDesiredState  ErrorCode = "ALREADY_IN_STATE"
	ErrInvalidSelection       ErrorCode = "INVALID_SELECTION"
	ErrNotInteractive         ErrorCode = "NOT_INTERACTIVE"

	// Configuration errors
	ErrConfigLoad  ErrorCode = "CONFIG_LOAD"
	ErrConfigParse ErrorCode = "CONFIG_PARSE"

	// FileSystem errors
	ErrFileNotFound ErrorCode = "FILE_NOT_FOUND"
	ErrFileAccess   ErrorCode = "FILE_ACCESS"
	ErrFileWrite    ErrorCode = "FILE_WRITE"
	ErrDirCreate    ErrorCode = "DIR_CREATE"

	// Download errors
	ErrDownload ErrorCode = "DOWNLOAD"
	ErrExtract  ErrorCode = "EXTRACT"
)

// DevkitError represents a structured error with code and details
type DevkitError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

// Error implements the error interface
func (e *DevkitError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *DevkitError) Unwrap() error {
	return e.Wrapped
}

// Is implements errors.Is interface
func (e *DevkitError) Is(target error) bool {
	var targetErr *DevkitError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// WithDetail adds a key/value pair to the error's details and returns the error
func (e *DevkitError) WithDetail(key string, value interface{}) *DevkitError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// New creates a new DevkitError with the given code and message
func New(code ErrorCode, message string) *DevkitError {
	return &DevkitError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates a new DevkitError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *DevkitError {
	return &DevkitError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with a DevkitError
func Wrap(err error, code ErrorCode, message string) *DevkitError {
	if err == nil {
		return nil
	}
	return &DevkitError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *DevkitError {
	if err == nil {
		return nil
	}
	return &DevkitError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// IsCode reports whether err carries the given code anywhere in its chain
func IsCode(err error, code ErrorCode) bool {
	var de *DevkitError
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// CodeOf returns the code carried by err, or ErrUnknown for foreign errors
func CodeOf(err error) ErrorCode {
	var de *DevkitError
	if errors.As(err, &de) {
		return de.Code
	}
	return ErrUnknown
}
