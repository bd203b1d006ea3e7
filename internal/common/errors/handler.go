package errors

import (
	stderrors "errors"
	"time"
)

// ErrorHandler turns command failures into a StandardError plus operator guidance.
type ErrorHandler struct {
	logger Logger
}

type Logger interface {
	Error(msg string, fields map[string]interface{})
}

func NewErrorHandler(logger Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// Handle normalizes err, logs it once and returns the normalized error together
// with remediation lines the CLI can print.
func (h *ErrorHandler) Handle(command string, err error) (*StandardError, []string) {
	stdErr := h.normalizeError(err)
	h.logger.Error("command failed", map[string]interface{}{
		"command":       command,
		"errorCode":     string(stdErr.Code),
		"message":       stdErr.Message,
		"details":       stdErr.Details,
		"retryable":     stdErr.Retryable,
		"errorCategory": GetErrorCategory(stdErr.Code),
	})
	return stdErr, Remediation(stdErr.Code)
}

// normalizeError ensures we always have a StandardError
func (h *ErrorHandler) normalizeError(err error) *StandardError {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
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

// Remediation returns the operator steps for a given error code.
func Remediation(code ErrorCode) []string {
	switch code {
	case ErrCodePrerequisiteMissing:
		return []string{
			"Install Docker Desktop from: https://www.docker.com/products/docker-desktop/",
			"Make sure 'docker compose' or 'docker-compose' is on your PATH",
		}
	case ErrCodeServiceUnavailable:
		return []string{
			"Install Ollama: https://ollama.com/",
			"Run: ollama serve",
			"Pull a model: ollama pull llama2",
		}
	case ErrCodeAuthenticationFailed:
		return []string{
			"Open the Formbricks UI and go to Settings -> API Keys",
			"Create a Management API key",
			"Set FORMBRICKS_API_KEY in .env or pass --api-key",
		}
	case ErrCodeSnapshotNotFound:
		return []string{"Run: formbricks-seeder formbricks generate"}
	case ErrCodeStartupTimeout:
		return []string{"Check logs with: docker compose logs"}
	case ErrCodeConfigInvalid:
		return []string{"Run: formbricks-seeder config"}
	default:
		return nil
	}
}
