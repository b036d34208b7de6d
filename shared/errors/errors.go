package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error kinds surfaced by the board core. Match them with errors.Is.
var (
	ErrNotFound         = errors.New("not found")
	ErrCapacityExceeded = errors.New("thread is full")
	ErrRateLimited      = errors.New("posting too fast")
	ErrStorage          = errors.New("storage failure")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrConflict         = errors.New("already exists")
)

// default error is internal service error at handler level
// if error has different status code use ErrorWithStatusCode
type ErrorWithStatusCode struct {
	Message    string
	StatusCode int
	Kind       error
}

func (e *ErrorWithStatusCode) Error() string {
	return e.Message
}

func (e *ErrorWithStatusCode) Unwrap() error {
	return e.Kind
}

type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s", e.Message)
}

func Validation(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

func NotFound(what string) error {
	return &ErrorWithStatusCode{Message: what + " not found", StatusCode: http.StatusNotFound, Kind: ErrNotFound}
}

func CapacityExceeded(maxResponses int) error {
	return &ErrorWithStatusCode{
		Message:    fmt.Sprintf("thread reached %d responses and no longer accepts posts", maxResponses),
		StatusCode: http.StatusConflict,
		Kind:       ErrCapacityExceeded,
	}
}

func RateLimited() error {
	return &ErrorWithStatusCode{Message: "posting too fast, wait a little", StatusCode: http.StatusTooManyRequests, Kind: ErrRateLimited}
}

func Conflict(what string) error {
	return &ErrorWithStatusCode{Message: what + " already exists", StatusCode: http.StatusConflict, Kind: ErrConflict}
}

func Unauthorized(msg string) error {
	return &ErrorWithStatusCode{Message: msg, StatusCode: http.StatusUnauthorized, Kind: ErrUnauthorized}
}

// Storage wraps a driver or transaction error. The cause is kept for logs only;
// handlers report a generic failure.
func Storage(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrStorage, op, err)
}

func IsNotFound(err error) bool         { return errors.Is(err, ErrNotFound) }
func IsCapacityExceeded(err error) bool { return errors.Is(err, ErrCapacityExceeded) }
