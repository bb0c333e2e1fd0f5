// Package http provides shared plumbing for LLM provider clients:
// typed errors, retry with exponential backoff, and request logging.
package http

import (
	"fmt"
	"net/http"
)

// ErrorType represents the category of error that occurred.
type ErrorType int

const (
	ErrTypeAuthentication ErrorType = iota
	ErrTypeRateLimit
	ErrTypeServiceUnavailable
	ErrTypeInvalidRequest
	ErrTypeTimeout
	ErrTypeModelNotFound
	ErrTypeUnknown
)

// String returns a human-readable description of the error type.
func (e ErrorType) String() string {
	switch e {
	case ErrTypeAuthentication:
		return "authentication error"
	case ErrTypeRateLimit:
		return "rate limit exceeded"
	case ErrTypeServiceUnavailable:
		return "service unavailable"
	case ErrTypeInvalidRequest:
		return "invalid request"
	case ErrTypeTimeout:
		return "timeout"
	case ErrTypeModelNotFound:
		return "model not found"
	default:
		return "unknown error"
	}
}

// Error is a provider API error with enough context to decide whether
// a retry makes sense.
type Error struct {
	Type       ErrorType
	Message    string
	StatusCode int
	Retryable  bool
	Provider   string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s: %s (status: %d)", e.Provider, e.Type.String(), e.Message, e.StatusCode)
}

// Is matches on error type so callers can use errors.Is with a
// prototype error.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Type == t.Type
}

// IsRetryable returns true if the error is retryable.
func (e *Error) IsRetryable() bool {
	return e.Retryable
}

// NewTransportError wraps a failed round trip. Not retryable: the
// http.Client timeout already covers slow responses, and connection
// errors usually mean misconfiguration.
func NewTransportError(provider string, err error) *Error {
	return &Error{
		Type:      ErrTypeTimeout,
		Message:   err.Error(),
		Retryable: false,
		Provider:  provider,
	}
}

// MapStatus converts an HTTP error status into a typed Error. Rate
// limits and server-side failures are retryable; client mistakes are
// not. 529 is the overloaded status some providers send instead of 503.
func MapStatus(provider string, statusCode int, message string) *Error {
	if message == "" {
		message = fmt.Sprintf("HTTP %d", statusCode)
	}

	e := &Error{
		Message:    message,
		StatusCode: statusCode,
		Provider:   provider,
	}

	switch statusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		e.Type = ErrTypeAuthentication
	case http.StatusTooManyRequests:
		e.Type = ErrTypeRateLimit
		e.Retryable = true
	case http.StatusBadRequest:
		e.Type = ErrTypeInvalidRequest
	case http.StatusNotFound:
		e.Type = ErrTypeModelNotFound
	case http.StatusInternalServerError, http.StatusServiceUnavailable, 529:
		e.Type = ErrTypeServiceUnavailable
		e.Retryable = true
	default:
		e.Type = ErrTypeUnknown
	}
	return e
}
