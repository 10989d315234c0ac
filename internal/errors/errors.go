// Package errors provides structured error types for the deploy dashboard.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors for the failure modes the dashboard surfaces.
var (
	ErrNotConfigured = errors.New("upstream credential not configured")
	ErrInvalidInput  = errors.New("invalid input")
	ErrNotFound      = errors.New("resource not found")
	ErrConflict      = errors.New("conflict")
)

// UpstreamError represents a failure talking to an upstream service: the
// service was unreachable, returned a status with no domain meaning, or
// produced a body we could not decode. The upstream's own message is carried
// verbatim when one was available.
type UpstreamError struct {
	Service    string
	StatusCode int
	Message    string
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s upstream error (status %d): %s: %v", e.Service, e.StatusCode, e.Message, e.Err)
	}
	return fmt.Sprintf("%s upstream error (status %d): %s", e.Service, e.StatusCode, e.Message)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// NewUpstreamError creates a new upstream error.
func NewUpstreamError(service string, statusCode int, message string) *UpstreamError {
	return &UpstreamError{Service: service, StatusCode: statusCode, Message: message}
}

// NotConfigured reports a missing credential for the named service.
func NotConfigured(service string) error {
	return fmt.Errorf("%s token not configured: %w", service, ErrNotConfigured)
}

// Invalid reports caller input that violates a known constraint. The message
// is shown to the caller as-is.
func Invalid(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrInvalidInput)...)
}

// NotFoundf reports a missing upstream entity.
func NotFoundf(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrNotFound)...)
}

// Conflictf reports a naming collision, stale content hash, or invalid state
// transition. The upstream message, when present, is embedded verbatim.
func Conflictf(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrConflict)...)
}

// HTTPStatus maps a domain error to the HTTP status class the dashboard API
// reports to its caller.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrNotConfigured):
		return http.StatusInternalServerError
	}
	var upstream *UpstreamError
	if errors.As(err, &upstream) {
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// Is reports whether any error in err's chain matches target.
// Re-exported so callers don't need both this package and stdlib errors.
func Is(err, target error) bool { return errors.Is(err, target) }

// As finds the first error in err's chain matching target.
func As(err error, target any) bool { return errors.As(err, target) }

// New returns an error with the given text.
func New(text string) error { return errors.New(text) }
