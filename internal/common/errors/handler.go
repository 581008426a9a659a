// internal/common/errors/handler.go
package errors

import (
	"fmt"
	"time"
)

// ErrorHandler records errors that are recovered rather than returned.
type ErrorHandler struct {
	logger Logger
}

type Logger interface {
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

func NewErrorHandler(logger Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// Swallow logs err as a recovered failure of the named step and returns the
// normalized StandardError so callers can classify it.
func (h *ErrorHandler) Swallow(step string, err error) *StandardError {
	if err == nil {
		return nil
	}
	stdErr := Normalize(err)
	h.logger.Warn("recovered failure", map[string]interface{}{
		"step":          step,
		"errorCode":     string(stdErr.Code),
		"message":       stdErr.Message,
		"details":       stdErr.Details,
		"retryable":     stdErr.Retryable,
		"errorCategory": GetErrorCategory(stdErr.Code),
	})
	return stdErr
}

// RecoverPanic converts a recovered panic value into a StandardError and logs it.
func (h *ErrorHandler) RecoverPanic(step string, r interface{}) *StandardError {
	if r == nil {
		return nil
	}
	stdErr := &StandardError{
		Code:      ErrCodeInternal,
		Message:   "Unexpected panic",
		Details:   fmt.Sprintf("%v", r),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
	h.logger.Error("recovered panic", map[string]interface{}{
		"step":    step,
		"details": stdErr.Details,
	})
	return stdErr
}

// Normalize ensures we always have a StandardError.
func Normalize(err error) *StandardError {
	if stdErr, ok := AsStandardError(err); ok {
		return stdErr
	}
	return &StandardError{
		Code:      ErrCodeInternal,
		Message:   "Unexpected error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}
