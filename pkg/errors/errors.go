package errors

import (
	"errors"
	"fmt"
)

// Common errors
var (
	ErrNotFound       = errors.New("not found")
	ErrInvalidInput   = errors.New("invalid input")
	ErrInternalServer = errors.New("internal server error")
	ErrBadRequest     = errors.New("bad request")

	// Scheduling failures. Each is recovered locally and surfaced to the
	// user; none of them triggers an automatic retry.
	ErrInvalidTime = errors.New("selected time is in the past")
	ErrFetchWindow = errors.New("failed to fetch scheduled window")
	ErrSubmit      = errors.New("failed to submit schedule")
	ErrPush        = errors.New("failed to push scheduled posts")

	ErrSessionNotFound = errors.New("scheduling session not found")
)

// Error represents a custom error type
type Error struct {
	Code    string
	Message string
	Err     error
}

// Error returns the error message
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error
func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a new error with a message
func New(message string) error {
	return &Error{
		Message: message,
	}
}

// Wrap wraps an error with additional message
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return &Error{
		Message: message,
		Err:     err,
	}
}

// WrapWithCode wraps an error with a code and message
func WrapWithCode(err error, code, message string) error {
	if err == nil {
		return nil
	}
	return &Error{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// GetCode returns the error code if it exists
func GetCode(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// GetMessage returns the error message
func GetMessage(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// IsNotFound returns true if the error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsInvalidTime returns true if the error is an invalid time error
func IsInvalidTime(err error) bool {
	return errors.Is(err, ErrInvalidTime)
}

// IsPush returns true if the error came from a failed cascade push
func IsPush(err error) bool {
	return errors.Is(err, ErrPush)
}
