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
	ErrNotFound     ErrorCode = "NOT_FOUND"
	ErrPermission   ErrorCode = "PERMISSION"

	// Configuration errors
	ErrConfigLoad  ErrorCode = "CONFIG_LOAD"
	ErrConfigParse ErrorCode = "CONFIG_PARSE"
	ErrConfigValid ErrorCode = "CONFIG_INVALID"

	// Manifest errors
	ErrManifestParse   ErrorCode = "MANIFEST_PARSE"
	ErrManifestInvalid ErrorCode = "MANIFEST_INVALID"

	// Install pipeline errors
	ErrAmbiguousLocation ErrorCode = "AMBIGUOUS_LOCATION"
	ErrCopyFailure       ErrorCode = "COPY_FAILURE"
	ErrUnsafeDeletion    ErrorCode = "UNSAFE_DELETION"
	ErrAlreadyCleaned    ErrorCode = "ALREADY_CLEANED"
	ErrPrecondition      ErrorCode = "PRECONDITION"
	ErrHostGitModified   ErrorCode = "HOST_GIT_MODIFIED"
	ErrVerification      ErrorCode = "VERIFICATION_FAILED"
)

// PackError represents a structured error with code and details
type PackError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

// Error implements the error interface
func (e *PackError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *PackError) Unwrap() error {
	return e.Wrapped
}

// Is implements errors.Is interface
func (e *PackError) Is(target error) bool {
	var targetErr *PackError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// New creates a new PackError with the given code and message
func New(code ErrorCode, message string) *PackError {
	return &PackError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates a new PackError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *PackError {
	return &PackError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with a PackError
func Wrap(err error, code ErrorCode, message string) *PackError {
	if err == nil {
		return nil
	}
	return &PackError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *PackError {
	if err == nil {
		return nil
	}
	return &PackError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// WithDetail adds a detail to the error
func (e *PackError) WithDetail(key string, value interface{}) *PackError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// IsErrorCode checks if an error has a specific error code
func IsErrorCode(err error, code ErrorCode) bool {
	var packErr *PackError
	if errors.As(err, &packErr) {
		return packErr.Code == code
	}
	return false
}

// GetErrorCode returns the error code from an error, or ErrUnknown if not a PackError
func GetErrorCode(err error) ErrorCode {
	var packErr *PackError
	if errors.As(err, &packErr) {
		return packErr.Code
	}
	return ErrUnknown
}

// GetErrorDetails returns the details from an error, or nil if not a PackError
func GetErrorDetails(err error) map[string]interface{} {
	var packErr *PackError
	if errors.As(err, &packErr) {
		return packErr.Details
	}
	return nil
}

// IsFatal reports whether an error must abort the whole run. Cleanup-phase
// problems are reported but never fail the install.
func IsFatal(err error) bool {
	switch GetErrorCode(err) {
	case ErrUnsafeDeletion, ErrAlreadyCleaned:
		return false
	}
	return err != nil
}
