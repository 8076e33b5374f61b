// Package errors provides a lightweight structured error type (BuildError)
// for category-based classification in the CLI.
package errors

import (
	"fmt"
)

// ErrorCategory represents the category of a texbuild error for classification
type ErrorCategory string

const (
	// User-facing configuration and input errors
	CategoryConfig     ErrorCategory = "config"
	CategoryValidation ErrorCategory = "validation"

	// Build and processing errors
	CategoryMissingTool ErrorCategory = "missing_tool"
	CategoryStep        ErrorCategory = "step"
	CategoryArtifact    ErrorCategory = "artifact"
	CategoryFileSystem  ErrorCategory = "filesystem"

	// Supporting infrastructure errors
	CategoryJournal  ErrorCategory = "journal"
	CategoryWatch    ErrorCategory = "watch"
	CategoryInternal ErrorCategory = "internal"
)

// ErrorSeverity indicates how critical an error is
type ErrorSeverity string

const (
	SeverityFatal   ErrorSeverity = "fatal"   // Stops execution
	SeverityError   ErrorSeverity = "error"   // Error, but not fatal
	SeverityWarning ErrorSeverity = "warning" // Continues with degraded functionality
)

// BuildError is a structured error with category, severity, and context
type BuildError struct {
	Category ErrorCategory `json:"category"`
	Severity ErrorSeverity `json:"severity"`
	Message  string        `json:"message"`
	Cause    error         `json:"cause,omitempty"`
	Context  ContextFields `json:"context,omitempty"`
}

// ContextFields carries structured context for BuildError
type ContextFields map[string]any

// Error implements the error interface
func (e *BuildError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s (%s): %s: %v", e.Category, e.Severity, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s (%s): %s", e.Category, e.Severity, e.Message)
}

// Unwrap implements error unwrapping for Go 1.13+ error handling
func (e *BuildError) Unwrap() error {
	return e.Cause
}

// WithContext adds context information to the error
func (e *BuildError) WithContext(key string, value any) *BuildError {
	if e.Context == nil {
		e.Context = make(ContextFields)
	}
	e.Context[key] = value
	return e
}

// New creates a new BuildError
func New(category ErrorCategory, severity ErrorSeverity, message string) *BuildError {
	return &BuildError{
		Category: category,
		Severity: severity,
		Message:  message,
	}
}

// Wrap creates a new BuildError that wraps an existing error
func Wrap(err error, category ErrorCategory, severity ErrorSeverity, message string) *BuildError {
	return &BuildError{
		Category: category,
		Severity: severity,
		Message:  message,
		Cause:    err,
	}
}

// IsCategory checks if an error belongs to a specific category
func IsCategory(err error, category ErrorCategory) bool {
	if be, ok := err.(*BuildError); ok {
		return be.Category == category
	}
	return false
}

// GetCategory extracts the category from an error, or returns CategoryInternal if not a BuildError
func GetCategory(err error) ErrorCategory {
	if be, ok := err.(*BuildError); ok {
		return be.Category
	}
	return CategoryInternal
}

// MissingTool creates a fatal error for an unresolvable external binary
func MissingTool(tool string, cause error) *BuildError {
	return &BuildError{
		Category: CategoryMissingTool,
		Severity: SeverityFatal,
		Message:  fmt.Sprintf("required tool %q not found on PATH", tool),
		Cause:    cause,
	}
}

// StepFailed creates an error for a required step that returned nonzero
func StepFailed(command string, cause error) *BuildError {
	return &BuildError{
		Category: CategoryStep,
		Severity: SeverityError,
		Message:  fmt.Sprintf("required step %q failed", command),
		Cause:    cause,
	}
}

// ArtifactMissing creates an error for a build whose expected output never appeared
func ArtifactMissing(path string) *BuildError {
	return &BuildError{
		Category: CategoryArtifact,
		Severity: SeverityError,
		Message:  fmt.Sprintf("expected artifact %s was not produced", path),
	}
}

// ConfigError creates a new configuration error
func ConfigError(message string) *BuildError {
	return &BuildError{
		Category: CategoryConfig,
		Severity: SeverityFatal,
		Message:  message,
	}
}
