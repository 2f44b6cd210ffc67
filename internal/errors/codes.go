// Package errors provides structured error handling for lantern.
//
// Error codes follow the pattern ERR_XXX_DESCRIPTION where:
//   - 1XX: Configuration errors
//   - 2XX: Index storage errors
//   - 3XX: Source and conversion errors
//   - 4XX: Query errors
//   - 5XX: Internal errors
package errors

// Category defines error categories for classification.
type Category string

const (
	// CategoryConfig indicates configuration-related errors.
	CategoryConfig Category = "CONFIG"
	// CategoryIndex indicates index storage and commit errors.
	CategoryIndex Category = "INDEX"
	// CategorySource indicates item source and conversion errors.
	CategorySource Category = "SOURCE"
	// CategoryQuery indicates autocomplete query errors.
	CategoryQuery Category = "QUERY"
	// CategoryInternal indicates unexpected internal errors.
	CategoryInternal Category = "INTERNAL"
)

// Severity defines error severity levels.
type Severity string

const (
	// SeverityFatal indicates unrecoverable error, must abort.
	SeverityFatal Severity = "FATAL"
	// SeverityError indicates operation failed but can continue.
	SeverityError Severity = "ERROR"
	// SeverityWarning indicates degraded operation, continuing.
	SeverityWarning Severity = "WARNING"
)

// Error codes organized by category.
const (
	// Config errors (100-199)
	ErrCodeConfigNotFound = "ERR_101_CONFIG_NOT_FOUND"
	ErrCodeConfigInvalid  = "ERR_102_CONFIG_INVALID"

	// Index errors (200-299)
	ErrCodeIndexOpen    = "ERR_201_INDEX_OPEN"
	ErrCodeIndexLocked  = "ERR_202_INDEX_LOCKED"
	ErrCodeIndexCommit  = "ERR_203_INDEX_COMMIT"
	ErrCodeIndexCorrupt = "ERR_204_INDEX_CORRUPT"
	ErrCodeIndexClosed  = "ERR_205_INDEX_CLOSED"

	// Source errors (300-399)
	ErrCodeSourceFetch      = "ERR_301_SOURCE_FETCH"
	ErrCodeConvertFailed    = "ERR_302_CONVERT_FAILED"
	ErrCodeNoConverter      = "ERR_303_NO_CONVERTER"
	ErrCodeCycleBusy        = "ERR_304_CYCLE_BUSY"
	ErrCodeSourceUnknown    = "ERR_305_SOURCE_UNKNOWN"

	// Query errors (400-499)
	ErrCodeQueryFailed  = "ERR_401_QUERY_FAILED"
	ErrCodeQueryEmpty   = "ERR_402_QUERY_EMPTY"
	ErrCodeLearnFailed  = "ERR_403_LEARN_FAILED"

	// Internal errors (500-599)
	ErrCodeInternal = "ERR_501_INTERNAL"
)

// categoryFromCode extracts category from error code.
func categoryFromCode(code string) Category {
	if len(code) < 7 {
		return CategoryInternal
	}

	switch code[4] {
	case '1':
		return CategoryConfig
	case '2':
		return CategoryIndex
	case '3':
		return CategorySource
	case '4':
		return CategoryQuery
	default:
		return CategoryInternal
	}
}

// severityFromCode determines severity based on error code.
func severityFromCode(code string) Severity {
	switch code {
	case ErrCodeIndexCorrupt:
		return SeverityFatal
	}

	if isRetryableCode(code) {
		return SeverityWarning
	}

	return SeverityError
}

// isRetryableCode checks if an error code represents a retryable error.
// Retryable here means the next scheduled cycle or keystroke will try
// again on its own; nothing replays the failed operation in place.
func isRetryableCode(code string) bool {
	switch code {
	case ErrCodeSourceFetch, ErrCodeIndexCommit, ErrCodeCycleBusy, ErrCodeQueryFailed:
		return true
	}
	return false
}
