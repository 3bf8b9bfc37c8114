package session

import (
	"errors"
	"fmt"
)

// Error codes for session failures.
const (
	CodeNotFound   = "SESSION_NOT_FOUND"
	CodeExpired    = "SESSION_EXPIRED"
	CodeInvalid    = "SESSION_INVALID"
	CodeGeneration = "SESSION_GENERATION_FAILED"
	CodeStorage    = "SESSION_STORAGE_ERROR"
)

// Error is a session failure with a machine-readable code.
type Error struct {
	Code    string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause
func (e *Error) Unwrap() error {
	return e.Cause
}

// CodeOf returns the code of a session error, or "" for other errors.
func CodeOf(err error) string {
	var serr *Error
	if errors.As(err, &serr) {
		return serr.Code
	}
	return ""
}

func notFound(id string) *Error {
	return &Error{Code: CodeNotFound, Message: fmt.Sprintf("session not found: %s", id)}
}

func expired(id string) *Error {
	return &Error{Code: CodeExpired, Message: fmt.Sprintf("session expired: %s", id)}
}

func invalid(reason string) *Error {
	return &Error{Code: CodeInvalid, Message: reason}
}

func storageError(op string, cause error) *Error {
	return &Error{Code: CodeStorage, Message: fmt.Sprintf("session storage error during %s", op), Cause: cause}
}
