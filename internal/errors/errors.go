package errors

import (
	"fmt"
)

// LanternError is the structured error type for lantern.
// It carries enough context for logging with source attribution and for
// the user-visible description string surfaced at the query boundary.
type LanternError struct {
	// Code is the unique error code (e.g., "ERR_301_SOURCE_FETCH").
	Code string

	// Message is the human-readable error message.
	Message string

	// Category is the error category (Config, Index, Source, Query...).
	Category Category

	// Severity is the error severity level.
	Severity Severity

	// Details contains additional context as key-value pairs.
	Details map[string]string

	// Cause is the underlying error that caused this error.
	Cause error

	// Retryable indicates the next tick or keystroke will try again.
	Retryable bool
}

// Error implements the error interface.
func (e *LanternError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for error chain support.
func (e *LanternError) Unwrap() error {
	return e.Cause
}

// Is checks if this error matches the target error by code.
// This enables errors.Is() to work with LanternError.
func (e *LanternError) Is(target error) bool {
	if t, ok := target.(*LanternError); ok {
		return e.Code == t.Code
	}
	return false
}

// WithDetail adds a key-value detail to the error.
// Returns the error for method chaining.
func (e *LanternError) WithDetail(key, value string) *LanternError {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// New creates a new LanternError with the given code and message.
// Category, severity, and retryable flag are derived from the code.
func New(code string, message string, cause error) *LanternError {
	return &LanternError{
		Code:      code,
		Message:   message,
		Category:  categoryFromCode(code),
		Severity:  severityFromCode(code),
		Cause:     cause,
		Retryable: isRetryableCode(code),
	}
}

// Wrap creates a LanternError from an existing error.
// The error's message becomes the LanternError message.
func Wrap(code string, err error) *LanternError {
	if err == nil {
		return nil
	}
	return New(code, err.Error(), err)
}

// SourceError creates a source fetch error tagged with the source name.
func SourceError(source string, cause error) *LanternError {
	return New(ErrCodeSourceFetch, fmt.Sprintf("source %q fetch failed", source), cause).
		WithDetail("source", source)
}

// ConvertError creates a per-item conversion error tagged with the source name.
func ConvertError(source string, cause error) *LanternError {
	return New(ErrCodeConvertFailed, fmt.Sprintf("conversion failed for item from %q", source), cause).
		WithDetail("source", source)
}

// CommitError creates an index commit error.
func CommitError(cause error) *LanternError {
	return New(ErrCodeIndexCommit, "index commit failed", cause)
}

// QueryError creates an autocomplete query error.
func QueryError(cause error) *LanternError {
	return New(ErrCodeQueryFailed, "autocomplete query failed", cause)
}

// IsRetryable checks if an error is retryable.
// Returns true if the error is a LanternError with Retryable flag set.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if le, ok := err.(*LanternError); ok {
		return le.Retryable
	}
	return false
}

// GetCode extracts the error code from a LanternError.
// Returns empty string if not a LanternError.
func GetCode(err error) string {
	if le, ok := err.(*LanternError); ok {
		return le.Code
	}
	return ""
}

// GetCategory extracts the category from a LanternError.
// Returns empty string if not a LanternError.
func GetCategory(err error) Category {
	if le, ok := err.(*LanternError); ok {
		return le.Category
	}
	return ""
}
