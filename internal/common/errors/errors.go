// Package errors provides the standardized error taxonomy shared by the seeder components.
package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	// Environment
	ErrCodePrerequisiteMissing ErrorCode = "PREREQUISITE_MISSING"
	ErrCodeConfigInvalid       ErrorCode = "CONFIG_INVALID"
	ErrCodeStartupTimeout      ErrorCode = "STARTUP_TIMEOUT"
	ErrCodeCommandFailed       ErrorCode = "COMMAND_FAILED"

	// Connectivity
	ErrCodeServiceUnavailable ErrorCode = "SERVICE_UNAVAILABLE"
	ErrCodeRateLimited        ErrorCode = "RATE_LIMITED"

	// Platform API
	ErrCodeAuthenticationFailed ErrorCode = "AUTHENTICATION_FAILED"
	ErrCodeAPINoResult          ErrorCode = "API_NO_RESULT"

	// Content
	ErrCodeMalformedContent ErrorCode = "MALFORMED_CONTENT"
	ErrCodeSnapshotNotFound ErrorCode = "SNAPSHOT_NOT_FOUND"
	ErrCodeSnapshotWrite    ErrorCode = "SNAPSHOT_WRITE_FAILED"

	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`

	cause error
}

func (e *StandardError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap exposes the underlying cause, if any.
func (e *StandardError) Unwrap() error {
	return e.cause
}

// Is reports whether target is a StandardError carrying the same code, so
// callers can write errors.Is(err, errors.ErrAuthenticationFailed).
func (e *StandardError) Is(target error) bool {
	t, ok := target.(*StandardError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// WithMetadata attaches a key/value pair and returns the same error.
func (e *StandardError) WithMetadata(key string, value interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

// Sentinels for errors.Is comparisons. Only the Code is compared.
var (
	ErrPrerequisiteMissing  = &StandardError{Code: ErrCodePrerequisiteMissing}
	ErrServiceUnavailable   = &StandardError{Code: ErrCodeServiceUnavailable}
	ErrRateLimited          = &StandardError{Code: ErrCodeRateLimited}
	ErrAuthenticationFailed = &StandardError{Code: ErrCodeAuthenticationFailed}
	ErrAPINoResult          = &StandardError{Code: ErrCodeAPINoResult}
	ErrMalformedContent     = &StandardError{Code: ErrCodeMalformedContent}
	ErrSnapshotNotFound     = &StandardError{Code: ErrCodeSnapshotNotFound}
	ErrStartupTimeout       = &StandardError{Code: ErrCodeStartupTimeout}
	ErrConfigInvalid        = &StandardError{Code: ErrCodeConfigInvalid}
)

// ==========================
// 2. Error Constructors
// ==========================

// NewPrerequisiteMissingError creates a non-retryable error for a missing local tool.
func NewPrerequisiteMissingError(tool, remediation string) *StandardError {
	return &StandardError{
		Code:      ErrCodePrerequisiteMissing,
		Message:   fmt.Sprintf("%s not found", tool),
		Details:   remediation,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewConfigInvalidError creates a non-retryable configuration error.
func NewConfigInvalidError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeConfigInvalid,
		Message:   "Invalid configuration",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewStartupTimeoutError is returned when the stack never became healthy.
func NewStartupTimeoutError(timeout time.Duration) *StandardError {
	return &StandardError{
		Code:      ErrCodeStartupTimeout,
		Message:   "Formbricks failed to start within timeout",
		Details:   fmt.Sprintf("timeout: %s", timeout),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewCommandFailedError wraps a failed subprocess invocation.
func NewCommandFailedError(command string, err error, stderr string) *StandardError {
	return &StandardError{
		Code:      ErrCodeCommandFailed,
		Message:   fmt.Sprintf("command %q failed", command),
		Details:   strings.TrimSpace(stderr),
		Retryable: false,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewServiceUnavailableError creates a retryable connectivity error.
func NewServiceUnavailableError(service string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeServiceUnavailable,
		Message:   fmt.Sprintf("Service '%s' unavailable", service),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewRateLimitedError creates a retryable rate-limit error.
func NewRateLimitedError(service string) *StandardError {
	return &StandardError{
		Code:      ErrCodeRateLimited,
		Message:   fmt.Sprintf("Service '%s' rate limited the request", service),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewAuthenticationError creates a terminal authentication error.
func NewAuthenticationError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeAuthenticationFailed,
		Message:   "Authentication failed. Check API key.",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewAPINoResultError marks a terminal non-2xx answer. Callers tally it and move on.
func NewAPINoResultError(status int, body string) *StandardError {
	return (&StandardError{
		Code:      ErrCodeAPINoResult,
		Message:   fmt.Sprintf("API error %d", status),
		Details:   truncate(body, 300),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}).WithMetadata("status", status)
}

// NewMalformedContentError creates a non-retryable content error.
func NewMalformedContentError(details string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeMalformedContent,
		Message:   "Generated content is malformed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewSnapshotNotFoundError lists the missing snapshot kinds.
func NewSnapshotNotFoundError(dir string, missing []string) *StandardError {
	return &StandardError{
		Code:      ErrCodeSnapshotNotFound,
		Message:   "Generated data files not found. Run 'generate' first.",
		Details:   fmt.Sprintf("dir: %s, missing: %s", dir, strings.Join(missing, ", ")),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewSnapshotWriteError wraps a failed snapshot or mapping write.
func NewSnapshotWriteError(path string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeSnapshotWrite,
		Message:   "Failed to write snapshot file",
		Details:   fmt.Sprintf("path: %s, error: %s", path, err.Error()),
		Retryable: false,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// ==========================
// 3. Utility Functions
// ==========================

// IsRetryable reports whether err (or anything it wraps) is a retryable StandardError.
func IsRetryable(err error) bool {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr.Retryable
	}
	return false
}

// CodeOf returns the code of the first StandardError in the chain.
func CodeOf(err error) ErrorCode {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr.Code
	}
	return ErrCodeInternal
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	switch code {
	case ErrCodePrerequisiteMissing, ErrCodeConfigInvalid, ErrCodeStartupTimeout, ErrCodeCommandFailed:
		return "ENVIRONMENT"
	case ErrCodeServiceUnavailable, ErrCodeRateLimited:
		return "CONNECTIVITY"
	case ErrCodeAuthenticationFailed:
		return "AUTHENTICATION"
	case ErrCodeAPINoResult:
		return "PARTIAL_RESOURCE"
	case ErrCodeMalformedContent, ErrCodeSnapshotNotFound, ErrCodeSnapshotWrite:
		return "CONTENT"
	default:
		return "UNKNOWN"
	}
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
