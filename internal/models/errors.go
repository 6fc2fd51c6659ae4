package models

import (
	"errors"
	"fmt"
)

// Domain failure categories. Services wrap these with context and the HTTP layer
// maps them to status codes with errors.Is.
var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrInvalidState = errors.New("invalid state")
	ErrConflict     = errors.New("conflict")
)

// Error is a domain failure whose message is safe to show to API clients.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Kind }

func newError(kind error, format string, args ...any) error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func NotFoundf(format string, args ...any) error {
	return newError(ErrNotFound, format, args...)
}

func InvalidInputf(format string, args ...any) error {
	return newError(ErrInvalidInput, format, args...)
}

func InvalidStatef(format string, args ...any) error {
	return newError(ErrInvalidState, format, args...)
}

func Conflictf(format string, args ...any) error {
	return newError(ErrConflict, format, args...)
}

// PublicMessage returns the client-facing message of a domain error, or ""
// when err carries none.
func PublicMessage(err error) string {
	var domainErr *Error
	if errors.As(err, &domainErr) {
		return domainErr.Message
	}
	return ""
}
