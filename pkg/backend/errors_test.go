package backend

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		expected string
	}{
		{
			name:     "error with message",
			err:      &Error{Op: "GetDocument", Err: ErrNotFound, Msg: "Users/u1"},
			expected: "GetDocument: Users/u1: resource not found",
		},
		{
			name:     "error without message",
			err:      &Error{Op: "DeleteDocument", Err: errors.New("connection reset")},
			expected: "DeleteDocument: connection reset",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

var errCause = errors.New("bad name")

func TestError_Is(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		target error
		want   bool
	}{
		{
			name:   "not found helper matches ErrNotFound",
			err:    NotFound("GetDocument", "Users/u1"),
			target: ErrNotFound,
			want:   true,
		},
		{
			name:   "unauthorized helper matches ErrUnauthorized",
			err:    Unauthorized("UploadFiles", errors.New("token expired")),
			target: ErrUnauthorized,
			want:   true,
		},
		{
			name:   "unauthorized without cause",
			err:    Unauthorized("UploadFiles", nil),
			target: ErrUnauthorized,
			want:   true,
		},
		{
			name:   "invalid argument keeps its cause",
			err:    InvalidArgument("GetFileBlob", errCause),
			target: errCause,
			want:   true,
		},
		{
			name:   "invalid argument helper matches ErrInvalidArgument",
			err:    InvalidArgument("GetFileBlob", errCause),
			target: ErrInvalidArgument,
			want:   true,
		},
		{
			name:   "double wrapped",
			err:    &Error{Op: "Batch", Err: NotFound("GetFileBlob", "")},
			target: ErrNotFound,
			want:   true,
		},
		{
			name:   "different sentinel does not match",
			err:    NotFound("GetDocument", ""),
			target: ErrUnauthorized,
			want:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, errors.Is(tt.err, tt.target))
		})
	}
}

func TestError_AsUsage(t *testing.T) {
	wrapped := &Error{Op: "SearchDocuments", Err: NotFound("GetDocument", "")}

	var backendErr *Error
	if assert.True(t, errors.As(wrapped, &backendErr)) {
		assert.Equal(t, "SearchDocuments", backendErr.Op)
	}
}
