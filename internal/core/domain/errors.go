package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies why a fetch failed.
type ErrorKind string

const (
	ErrKindTimeout    ErrorKind = "timeout"
	ErrKindConnection ErrorKind = "connection"
	ErrKindHTTPStatus ErrorKind = "http_status"
	ErrKindValidation ErrorKind = "validation"
	ErrKindFilesystem ErrorKind = "filesystem"
	ErrKindHashStore  ErrorKind = "hash_store"
	ErrKindCancelled  ErrorKind = "cancelled"
	ErrKindUnexpected ErrorKind = "unexpected"
)

// ErrInsufficientSpace is returned when the target volume cannot hold a payload.
var ErrInsufficientSpace = errors.New("insufficient disk space")

// HTTPStatusError is returned for any non-2xx response.
type HTTPStatusError struct {
	StatusCode int
	Status     string
	URL        string
}

func (e *HTTPStatusError) Error() string {
	if e.Status != "" {
		return fmt.Sprintf("HTTP error %s for url: %s", e.Status, e.URL)
	}
	return fmt.Sprintf("HTTP error %d for url: %s", e.StatusCode, e.URL)
}

// ValidationError is returned when a resource is not an acceptable image.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError creates a ValidationError with a formatted message.
func NewValidationError(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}
