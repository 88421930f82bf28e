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

	// Mutation errors
	ErrAlreadyExists  ErrorCode = "ALREADY_EXISTS"
	ErrSourceNotFound ErrorCode = "SOURCE_NOT_FOUND"
	ErrMarkerNotFound ErrorCode = "MARKER_NOT_FOUND"

	// Dependency registry errors
	ErrDuplicateDependency ErrorCode = "DUPLICATE_DEPENDENCY"
	ErrRegistryClosed      ErrorCode = "REGISTRY_CLOSED"

	// Recipe errors
	ErrRecipeNotFound ErrorCode = "RECIPE_NOT_FOUND"
	ErrRecipeParse    ErrorCode = "RECIPE_PARSE"
	ErrRecipeCycle    ErrorCode = "RECIPE_CYCLE"

	// Install driver errors
	ErrInstallFailed ErrorCode = "INSTALL_FAILED"

	// Shell command errors
	ErrCommandFailed ErrorCode = "COMMAND_FAILED"

	// Configuration errors
	ErrConfigLoad  ErrorCode = "CONFIG_LOAD"
	ErrConfigParse ErrorCode = "CONFIG_PARSE"

	// FileSystem errors
	ErrFileAccess ErrorCode = "FILE_ACCESS"
	ErrFileCreate ErrorCode = "FILE_CREATE"
	ErrFileWrite  ErrorCode = "FILE_WRITE"
	ErrDirCreate  ErrorCode = "DIR_CREATE"
)

// LoomError represents a structured error with code and details
type LoomError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

// Error implements the error interface
func (e *LoomError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *LoomError) Unwrap() error {
	return e.Wrapped
}

// Is implements errors.Is interface
func (e *LoomError) Is(target error) bool {
	var targetErr *LoomError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// New creates a new LoomError with the given code and message
func New(code ErrorCode, message string) *LoomError {
	return &LoomError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates a new LoomError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *LoomError {
	return &LoomError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with a LoomError
func Wrap(err error, code ErrorCode, message string) *LoomError {
	if err == nil {
		return nil
	}
	return &LoomError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *LoomError {
	if err == nil {
		return nil
	}
	return &LoomError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// WithDetail adds a detail to the error
func (e *LoomError) WithDetail(key string, value interface{}) *LoomError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// WithDetails adds multiple details to the error
func (e *LoomError) WithDetails(details map[string]interface{}) *LoomError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	for k, v := range details {
		e.Details[k] = v
	}
	return e
}

// IsErrorCode checks if an error has a specific error code
func IsErrorCode(err error, code ErrorCode) bool {
	var loomErr *LoomError
	if errors.As(err, &loomErr) {
		return loomErr.Code == code
	}
	return false
}

// GetErrorCode returns the error code from an error, or ErrUnknown if not a LoomError
func GetErrorCode(err error) ErrorCode {
	var loomErr *LoomError
	if errors.As(err, &loomErr) {
		return loomErr.Code
	}
	return ErrUnknown
}

// GetErrorDetails returns the details from an error, or nil if not a LoomError
func GetErrorDetails(err error) map[string]interface{} {
	var loomErr *LoomError
	if errors.As(err, &loomErr) {
		return loomErr.Details
	}
	return nil
}
