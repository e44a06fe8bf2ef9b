package request

import (
	"errors"
	"fmt"
)

// ErrorCode classifies a failed attempt.
type ErrorCode int

const (
	// ErrCodeTimeout indicates the attempt exceeded its timeout.
	ErrCodeTimeout ErrorCode = iota
	// ErrCodeConnection indicates a transport failure (refused, DNS, reset).
	ErrCodeConnection
	// ErrCodeStatus indicates a non-2xx response.
	ErrCodeStatus
	// ErrCodeInvalid indicates the request could not be built.
	ErrCodeInvalid
)

// String returns the error code name.
func (c ErrorCode) String() string {
	switch c {
	case ErrCodeTimeout:
		return "timeout"
	case ErrCodeConnection:
		return "connection"
	case ErrCodeStatus:
		return "status"
	case ErrCodeInvalid:
		return "invalid"
	default:
		return "unknown"
	}
}

// Error is the failure of a single attempt.
type Error struct {
	// StatusCode is the HTTP status code, 0 for transport failures.
	StatusCode int
	Code       ErrorCode
	Message    string
	// Body is the response body of a status failure.
	Body []byte
	Err  error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("request: %s (HTTP %d): %s", e.Code, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("request: %s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// NewTimeoutError creates a timeout error.
func NewTimeoutError(err error) *Error {
	return &Error{Code: ErrCodeTimeout, Message: err.Error(), Err: err}
}

// NewConnectionError creates a connection error.
func NewConnectionError(err error) *Error {
	return &Error{Code: ErrCodeConnection, Message: err.Error(), Err: err}
}

// NewStatusError creates an error for a non-2xx response.
func NewStatusError(statusCode int, body []byte) *Error {
	return &Error{
		StatusCode: statusCode,
		Code:       ErrCodeStatus,
		Message:    fmt.Sprintf("HTTP error! status: %d", statusCode),
		Body:       body,
	}
}

// ExhaustedError is returned once every attempt has failed.
type ExhaustedError struct {
	URL      string
	Attempts int
	Last     error
}

// Error implements the error interface.
func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("request failed after %d attempts: %v", e.Attempts, e.Last)
}

// Unwrap returns the error of the last attempt.
func (e *ExhaustedError) Unwrap() error {
	return e.Last
}

// IsTimeout reports whether err is or wraps a timeout failure.
func IsTimeout(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == ErrCodeTimeout
}

// IsStatus reports whether err is or wraps a non-2xx failure.
func IsStatus(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == ErrCodeStatus
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.StatusCode
	}
	return 0
}

// RetryAll retries every failure. It is the default and matches the
// storefront's historical behaviour of retrying 4xx like 5xx.
func RetryAll(error) bool { return true }

// RetryServerErrors retries transport failures and 5xx/429 responses only.
func RetryServerErrors(err error) bool {
	if IsStatus(err) {
		status := StatusCode(err)
		return status >= 500 || status == 429
	}
	var e *Error
	return !errors.As(err, &e) || e.Code != ErrCodeInvalid
}
