package gateway

import (
	"fmt"
	"net/http"

	apperrors "github.com/gobarber/gobarber-client/pkg/errors"
)

// APIError is returned by every failed gateway call. It unwraps to one of the
// pkg/errors sentinels and, for transport failures, to the underlying cause.
type APIError struct {
	Operation  string
	Method     string
	Path       string
	StatusCode int // 0 when no response was received
	Message    string

	kind  error
	cause error
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" && e.cause != nil {
		msg = e.cause.Error()
	}
	if e.StatusCode == 0 {
		return fmt.Sprintf("%s %s: %v: %s", e.Method, e.Path, e.kind, msg)
	}
	if msg == "" {
		return fmt.Sprintf("%s %s: %d %v", e.Method, e.Path, e.StatusCode, e.kind)
	}
	return fmt.Sprintf("%s %s: %d %v: %s", e.Method, e.Path, e.StatusCode, e.kind, msg)
}

func (e *APIError) Unwrap() []error {
	errs := []error{e.kind}
	if e.cause != nil {
		errs = append(errs, e.cause)
	}
	return errs
}

// Kind returns the sentinel the failure was classified as
func (e *APIError) Kind() error {
	return e.kind
}

// classifyStatus maps an HTTP error status onto a sentinel
func classifyStatus(status int) error {
	switch {
	case status == http.StatusBadRequest, status == http.StatusUnprocessableEntity:
		return apperrors.ErrInvalidInput
	case status == http.StatusUnauthorized:
		return apperrors.ErrUnauthorized
	case status == http.StatusForbidden:
		return apperrors.ErrAccessDenied
	case status == http.StatusNotFound:
		return apperrors.ErrNotFound
	case status == http.StatusConflict:
		return apperrors.ErrConflict
	case status == http.StatusTooManyRequests:
		return apperrors.ErrTransport
	default:
		return apperrors.ErrInternal
	}
}
