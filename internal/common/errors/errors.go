// Package errors provides standardized error handling for the registration pipeline.
package errors

import (
	stderrors "errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	// Field-scoped, surfaced inline to the user.
	ErrCodeValidationFailed     ErrorCode = "VALIDATION_FAILED"
	ErrCodeSubmissionInProgress ErrorCode = "SUBMISSION_IN_PROGRESS"

	// Recovered inside the controller, never surfaced.
	ErrCodeRemoteTransportFailed ErrorCode = "REMOTE_TRANSPORT_FAILED"
	ErrCodeStorageReadFailed     ErrorCode = "STORAGE_READ_FAILED"
	ErrCodeStorageWriteFailed    ErrorCode = "STORAGE_WRITE_FAILED"

	ErrCodeConfigInvalid ErrorCode = "CONFIG_INVALID"
	ErrCodeInternal      ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	cause     error
}

func (e *StandardError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("StandardError[%s]: %s (%s)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

func (e *StandardError) Unwrap() error {
	return e.cause
}

// ==========================
// 2. Error Constructors
// ==========================

// NewValidationFailedError reports the invalid fields of a rejected snapshot.
// fieldReasons maps field name to the rule that failed.
func NewValidationFailedError(fieldReasons map[string]string) *StandardError {
	names := make([]string, 0, len(fieldReasons))
	for name := range fieldReasons {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	meta := make(map[string]interface{}, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s: %s", name, fieldReasons[name]))
		meta[name] = fieldReasons[name]
	}

	return &StandardError{
		Code:      ErrCodeValidationFailed,
		Message:   "Form validation failed",
		Details:   strings.Join(parts, ", "),
		Retryable: false,
		Metadata:  meta,
		Timestamp: time.Now().UTC(),
	}
}

// NewSubmissionInProgressError rejects a second trigger while one submission is in flight.
func NewSubmissionInProgressError() *StandardError {
	return &StandardError{
		Code:      ErrCodeSubmissionInProgress,
		Message:   "A submission is already in progress",
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewRemoteTransportError wraps network, status or parse failures on send.
func NewRemoteTransportError(endpoint string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeRemoteTransportFailed,
		Message:   "Remote submission failed",
		Details:   fmt.Sprintf("endpoint: %s, error: %v", endpoint, err),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewStorageReadError marks an absent-but-unreadable or malformed durable value.
func NewStorageReadError(key string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeStorageReadFailed,
		Message:   "Stored submissions could not be read",
		Details:   fmt.Sprintf("key: %s, error: %v", key, err),
		Retryable: false,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewStorageWriteError marks a rejected write to the durable medium.
func NewStorageWriteError(key string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeStorageWriteFailed,
		Message:   "Submission could not be written to the local store",
		Details:   fmt.Sprintf("key: %s, error: %v", key, err),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewConfigInvalidError reports a missing or malformed configuration value.
func NewConfigInvalidError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeConfigInvalid,
		Message:   "Invalid configuration",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 3. Utility Functions
// ==========================

// AsStandardError returns the StandardError in err's chain, if any.
func AsStandardError(err error) (*StandardError, bool) {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr, true
	}
	return nil, false
}

// HasCode reports whether err carries the given code anywhere in its chain.
func HasCode(err error, code ErrorCode) bool {
	stdErr, ok := AsStandardError(err)
	return ok && stdErr.Code == code
}

// IsUserVisible reports whether an error code may be shown to the end user.
// Only field validation and the busy guard ever reach the user.
func IsUserVisible(code ErrorCode) bool {
	switch code {
	case ErrCodeValidationFailed, ErrCodeSubmissionInProgress:
		return true
	default:
		return false
	}
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "VALIDATION"):
		return "VALIDATION"
	case strings.Contains(codeStr, "SUBMISSION"):
		return "SUBMISSION"
	case strings.Contains(codeStr, "REMOTE"):
		return "TRANSPORT"
	case strings.Contains(codeStr, "STORAGE"):
		return "STORAGE"
	case strings.Contains(codeStr, "CONFIG"):
		return "CONFIG"
	default:
		return "OTHER"
	}
}
