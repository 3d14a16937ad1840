// Package errors provides a lightweight structured error type (RunnerError)
// for category-based classification in the HTTP front and CLI.
package errors

import (
	"fmt"
)

// ErrorCategory represents the category of a buildrunner error for classification
type ErrorCategory string

const (
	// User-facing configuration and input errors
	CategoryConfig     ErrorCategory = "config"
	CategoryValidation ErrorCategory = "validation"
	CategoryMedia      ErrorCategory = "media"
	CategoryPayload    ErrorCategory = "payload"
	CategoryNotFound   ErrorCategory = "not_found"

	// Build execution errors
	CategoryExecutor ErrorCategory = "executor"
	CategoryTimeout  ErrorCategory = "timeout"

	// Runtime and infrastructure errors
	CategoryRuntime  ErrorCategory = "runtime"
	CategoryDaemon   ErrorCategory = "daemon"
	CategoryInternal ErrorCategory = "internal"
)

// ErrorSeverity indicates how critical an error is
type ErrorSeverity string

const (
	SeverityFatal   ErrorSeverity = "fatal"   // Stops execution
	SeverityError   ErrorSeverity = "error"   // Error, but not fatal
	SeverityWarning ErrorSeverity = "warning" // Continues with degraded functionality
	SeverityInfo    ErrorSeverity = "info"    // Informational, no impact
)

// RunnerError is a structured error with category, severity, and context
type RunnerError struct {
	Category ErrorCategory `json:"category"`
	Severity ErrorSeverity `json:"severity"`
	Message  string        `json:"message"`
	Cause    error         `json:"cause,omitempty"`
	Context  ContextFields `json:"context,omitempty"`
}

// Build returns the error itself for compatibility with legacy error adapter usage.
func (e *RunnerError) Build() *RunnerError {
	return e
}

// ContextFields carries structured context for RunnerError
type ContextFields map[string]any

// Error implements the error interface
func (e *RunnerError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s (%s): %s: %v", e.Category, e.Severity, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s (%s): %s", e.Category, e.Severity, e.Message)
}

// Unwrap implements error unwrapping for Go 1.13+ error handling
func (e *RunnerError) Unwrap() error {
	return e.Cause
}

// WithContext adds context information to the error
func (e *RunnerError) WithContext(key string, value any) *RunnerError {
	if e.Context == nil {
		e.Context = make(ContextFields)
	}
	e.Context[key] = value
	return e
}

// New creates a new RunnerError
func New(category ErrorCategory, severity ErrorSeverity, message string) *RunnerError {
	return &RunnerError{
		Category: category,
		Severity: severity,
		Message:  message,
	}
}

// Wrap creates a new RunnerError that wraps an existing error
func Wrap(err error, category ErrorCategory, severity ErrorSeverity, message string) *RunnerError {
	return &RunnerError{
		Category: category,
		Severity: severity,
		Message:  message,
		Cause:    err,
	}
}

// IsCategory checks if an error belongs to a specific category
func IsCategory(err error, category ErrorCategory) bool {
	if re, ok := err.(*RunnerError); ok {
		return re.Category == category
	}
	return false
}

// GetCategory extracts the category from an error, or returns CategoryInternal if not a RunnerError
func GetCategory(err error) ErrorCategory {
	if re, ok := err.(*RunnerError); ok {
		return re.Category
	}
	return CategoryInternal
}

// ValidationError creates a new validation error (400 Bad Request)
func ValidationError(message string) *RunnerError {
	return &RunnerError{
		Category: CategoryValidation,
		Severity: SeverityWarning,
		Message:  message,
	}
}

// MediaError creates a new unsupported-media-type error (415)
func MediaError(message string) *RunnerError {
	return &RunnerError{
		Category: CategoryMedia,
		Severity: SeverityWarning,
		Message:  message,
	}
}

// PayloadError creates a new payload-too-large error (413)
func PayloadError(message string) *RunnerError {
	return &RunnerError{
		Category: CategoryPayload,
		Severity: SeverityWarning,
		Message:  message,
	}
}

// NotFoundError creates a new not-found error (404)
func NotFoundError(message string) *RunnerError {
	return &RunnerError{
		Category: CategoryNotFound,
		Severity: SeverityWarning,
		Message:  message,
	}
}

// ExecutorError creates a new executor failure error (500)
func ExecutorError(message string) *RunnerError {
	return &RunnerError{
		Category: CategoryExecutor,
		Severity: SeverityError,
		Message:  message,
	}
}

// TimeoutError creates a new executor timeout error (500, distinct message)
func TimeoutError(message string) *RunnerError {
	return &RunnerError{
		Category: CategoryTimeout,
		Severity: SeverityError,
		Message:  message,
	}
}

// DaemonError creates a new daemon error (service unavailable)
func DaemonError(message string) *RunnerError {
	return &RunnerError{
		Category: CategoryDaemon,
		Severity: SeverityError,
		Message:  message,
	}
}

// WrapError wraps an existing error with a new RunnerError
func WrapError(err error, category ErrorCategory, message string) *RunnerError {
	return &RunnerError{
		Category: category,
		Severity: SeverityError,
		Message:  message,
		Cause:    err,
	}
}
