package apperr

import (
	"errors"
	"net/http"
)

// Sentinel errors used to classify failures across the gateway.
var (
	ErrUnreachable = errors.New("upstream unreachable")
	ErrTimeout     = errors.New("timeout")
	ErrTemporary   = errors.New("temporary failure")
	ErrUnavailable = errors.New("service unavailable")
	ErrInternal    = errors.New("internal error")
)

// Error is a transport-level failure talking to the backend. Application-level
// rejections (4xx with a parseable body) are represented separately by the
// backend package; Error covers everything below that: connectivity, timeouts
// and upstream 5xx responses.
type Error struct {
	Err       error
	Status    int // zero when no HTTP response was received
	Message   string
	Retryable bool
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a classified transport error.
func New(err error, message string, status int, retryable bool) *Error {
	return &Error{Err: err, Message: message, Status: status, Retryable: retryable}
}

// Unreachable marks a failure to reach the upstream at all (no HTTP status).
func Unreachable(message string) *Error {
	return New(ErrUnreachable, message, 0, true)
}

// Timeout marks a request that ran out of time.
func Timeout(message string) *Error {
	return New(ErrTimeout, message, http.StatusGatewayTimeout, true)
}

// Temporary marks an upstream 5xx that is worth retrying.
func Temporary(message string, status int) *Error {
	return New(ErrTemporary, message, status, true)
}

// Unavailable marks a request refused locally, e.g. by an open circuit breaker.
func Unavailable(message string) *Error {
	return New(ErrUnavailable, message, http.StatusServiceUnavailable, false)
}

// Internal marks a local failure (marshalling, request construction).
func Internal(message string) *Error {
	return New(ErrInternal, message, http.StatusInternalServerError, false)
}

// IsRetryable reports whether the error may succeed on a later attempt.
func IsRetryable(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Retryable
	}
	return errors.Is(err, ErrTemporary) ||
		errors.Is(err, ErrTimeout) ||
		errors.Is(err, ErrUnreachable)
}

// StatusOf returns the HTTP status carried by the error, or zero.
func StatusOf(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.Status
	}
	return 0
}
