package service

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthorized covers missing or invalid tokens and ownership violations on stop.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrForbidden means a valid identity lacks the required role.
	ErrForbidden = errors.New("forbidden")
	// ErrNotFound covers absent lots, sessions, users and tokens.
	ErrNotFound = errors.New("not found")
	// ErrValidation covers malformed or missing input.
	ErrValidation = errors.New("validation failed")
	// ErrStorage wraps persistence failures.
	ErrStorage = errors.New("storage failure")
)

// Error is a domain error carrying the message shown to API clients.
// errors.Is matches both Kind and the wrapped cause.
type Error struct {
	Kind    error
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%v: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%v: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() []error {
	if e.Err != nil {
		return []error{e.Kind, e.Err}
	}
	return []error{e.Kind}
}

func newError(kind error, format string, args ...any) error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func storageError(message string, err error) error {
	return &Error{Kind: ErrStorage, Message: message, Err: err}
}

// Message returns the client facing message of err.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "internal server error"
}
