package backend

import (
	"errors"
	"fmt"
)

// Sentinel errors returned (wrapped) by backing store clients.
var (
	// ErrNotFound means the requested document or file does not exist.
	ErrNotFound = errors.New("resource not found")

	// ErrUnauthorized means the backing store rejected the credential.
	ErrUnauthorized = errors.New("credential rejected by backing store")

	// ErrInvalidArgument means the request cannot be served as given, e.g. a
	// file name that is not a single path element.
	ErrInvalidArgument = errors.New("invalid argument")
)

// Error wraps a backing store failure with the operation that produced it.
type Error struct {
	Op  string // Operation that failed (e.g. "GetDocument")
	Err error  // Underlying error
	Msg string // Optional context
}

func (e *Error) Error() string {
	if e.Msg != "" {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NotFound returns an *Error wrapping ErrNotFound.
func NotFound(op, msg string) error {
	return &Error{Op: op, Err: ErrNotFound, Msg: msg}
}

// Unauthorized returns an *Error wrapping ErrUnauthorized.
func Unauthorized(op string, err error) error {
	if err == nil {
		return &Error{Op: op, Err: ErrUnauthorized}
	}
	return &Error{Op: op, Err: fmt.Errorf("%w: %v", ErrUnauthorized, err)}
}

// InvalidArgument returns an *Error wrapping ErrInvalidArgument and err.
func InvalidArgument(op string, err error) error {
	return &Error{Op: op, Err: fmt.Errorf("%w: %w", ErrInvalidArgument, err)}
}
