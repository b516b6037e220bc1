// Package exception provides the error types used across the comfortcast
// pipeline. Errors are categorized with skippable/retryable flags so that the
// job runner and callers can decide whether a failure aborts a run or is
// recovered locally.
package exception

import (
	"errors"
	"fmt"
	"runtime"
)

// Sentinel errors for the pipeline's error taxonomy. Callers test for them
// with errors.Is.
var (
	// ErrMalformedRecord marks a single observation or row that failed
	// timestamp or type coercion. Recovered per row, never fatal to a batch.
	ErrMalformedRecord = errors.New("malformed record")
	// ErrEmptyInput marks a batch with zero usable rows after normalization.
	// Reported as a no-op skip, not a failure.
	ErrEmptyInput = errors.New("empty input")
	// ErrSchemaMismatch marks an inference feature matrix missing columns the
	// model expects. Recovered by defaulting and reordering, logged as a warning.
	ErrSchemaMismatch = errors.New("schema mismatch")
	// ErrStorageUnavailable marks a storage collaborator failure. Propagated
	// as-is; retries belong to the orchestration layer.
	ErrStorageUnavailable = errors.New("storage unavailable")
)

// PipelineError is the error type raised by pipeline components. It carries
// the module where the error occurred, a message, the wrapped cause, and
// flags indicating whether the error is retryable or skippable.
type PipelineError struct {
	// Module indicates where the error occurred (e.g. "normalizer", "merger").
	Module string
	// Message is a concise description of the error.
	Message string
	// OriginalErr is the wrapped original error.
	OriginalErr error
	// isRetryable indicates whether the operation may succeed on retry.
	isRetryable bool
	// isSkippable indicates whether the failing unit can be skipped.
	isSkippable bool
	// StackTrace is the stack trace captured at construction time.
	StackTrace string
}

// NewPipelineError creates a new PipelineError instance.
func NewPipelineError(module, message string, originalErr error, isSkippable, isRetryable bool) *PipelineError {
	buf := make([]byte, 2048)
	n := runtime.Stack(buf, false)

	return &PipelineError{
		Module:      module,
		Message:     message,
		OriginalErr: originalErr,
		isRetryable: isRetryable,
		isSkippable: isSkippable,
		StackTrace:  string(buf[:n]),
	}
}

// Error implements the error interface.
func (e *PipelineError) Error() string {
	if e.OriginalErr != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Module, e.Message, e.OriginalErr)
	}
	return fmt.Sprintf("[%s] %s", e.Module, e.Message)
}

// Unwrap returns the original error for errors.Unwrap / errors.Is.
func (e *PipelineError) Unwrap() error {
	return e.OriginalErr
}

// IsRetryable returns whether this error is retryable.
func (e *PipelineError) IsRetryable() bool {
	return e.isRetryable
}

// IsSkippable returns whether this error is skippable.
func (e *PipelineError) IsSkippable() bool {
	return e.isSkippable
}

// IsPipelineError determines whether err is a *PipelineError.
func IsPipelineError(err error) bool {
	if err == nil {
		return false
	}
	var pe *PipelineError
	return errors.As(err, &pe)
}

// ExtractErrorMessage returns the cleaner Message field for a PipelineError,
// or the standard Error() string otherwise.
func ExtractErrorMessage(err error) string {
	if err == nil {
		return ""
	}
	var pe *PipelineError
	if errors.As(err, &pe) {
		return pe.Message
	}
	return err.Error()
}
