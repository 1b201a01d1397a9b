package common

import (
	"errors"
	"fmt"
)

// AppError represents application-specific errors
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Pipeline error taxonomy. Callers classify failures with errors.Is.
var (
	// ErrInvalidInput rejects bad file types, oversized uploads, or malformed
	// requests before any job is created.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedDocument marks a file the normalizer cannot convert
	// (corrupt container, unknown internal structure). The job fails.
	ErrUnsupportedDocument = errors.New("unsupported document")

	// ErrExtractionFailure marks text the engine cannot work with at all
	// (non-text or garbled encoding). Sparse-but-valid text never raises it.
	ErrExtractionFailure = errors.New("extraction failure")

	// ErrInvalidStateTransition rejects an operation not legal for the job's
	// current status.
	ErrInvalidStateTransition = errors.New("invalid state transition")

	// ErrNotFound covers unknown or cleaned-up jobs, templates, and artifacts.
	ErrNotFound = errors.New("not found")

	// ErrNotReady rejects a result request before the job reaches a
	// completed/rendered status.
	ErrNotReady = errors.New("not ready")

	// ErrJobBusy rejects a second process/regenerate pass while one is
	// already in flight for the same job.
	ErrJobBusy = errors.New("job busy")
)

// Error constructors
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}
