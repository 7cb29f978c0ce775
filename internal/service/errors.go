package service

import (
	"context"
	"errors"
	"fmt"
)

// Common errors.
var (
	// ErrNoSeeds is returned when no usable seed keyword was provided.
	ErrNoSeeds = errors.New("please enter at least one root keyword to begin")

	// ErrNotConfigured indicates a missing API key or other required setting.
	ErrNotConfigured = errors.New("service is not configured")
)

// Error is a failed external call.
type Error struct {
	Op         string // one of the Op constants
	StatusCode int    // HTTP status when the failure came from a response, else 0
	Err        error
}

func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: status %d: %v", e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// ParseError is an external call that answered with a payload that could
// not be decoded. It is a kind of service error.
type ParseError struct {
	Op  string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: malformed response: %v", e.Op, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Wrap tags err as a failure of op. Nil stays nil, and errors that are
// already typed are returned unchanged.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	var se *Error
	var pe *ParseError
	if errors.As(err, &se) || errors.As(err, &pe) {
		return err
	}
	return &Error{Op: op, Err: err}
}

// WrapStatus tags err as a failure of op with an HTTP status.
func WrapStatus(op string, status int, err error) error {
	return &Error{Op: op, StatusCode: status, Err: err}
}

// Parse tags err as a malformed response from op.
func Parse(op string, err error) error {
	if err == nil {
		return nil
	}
	return &ParseError{Op: op, Err: err}
}

// IsServiceError reports whether err came from an external call, including
// parse failures.
func IsServiceError(err error) bool {
	var se *Error
	var pe *ParseError
	return errors.As(err, &se) || errors.As(err, &pe)
}

// IsParseError reports whether err is a malformed-response failure.
func IsParseError(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}

// IsCanceled reports whether err stems from a cancelled or expired context.
func IsCanceled(err error) bool {
	return errors.Is(err, context.Canceled)
}
