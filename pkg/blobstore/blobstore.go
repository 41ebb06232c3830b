// Package blobstore stores file contents under slash-separated keys.
package blobstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Store persists and serves blobs. Missing keys are reported with an error
// wrapping backend.ErrNotFound.
type Store interface {
	// Name identifies the implementation (e.g. "s3", "local").
	Name() string

	// Put writes content under key, replacing any existing blob.
	Put(ctx context.Context, key string, content []byte, contentType string) error

	// Get returns the blob stored under key.
	Get(ctx context.Context, key string) ([]byte, error)

	// URL returns a retrieval URL for the blob stored under key.
	URL(ctx context.Context, key string) (string, error)
}

// ErrInvalidName is returned for a key segment that does not name exactly
// one path element.
var ErrInvalidName = errors.New("invalid blob name")

// ValidateName reports whether name can be used verbatim as one key segment.
// Empty and whitespace-only names, "." and "..", and names containing a path
// separator or NUL are rejected.
func ValidateName(name string) error {
	switch {
	case strings.TrimSpace(name) == "":
		return fmt.Errorf("%w: name is empty", ErrInvalidName)
	case name == "." || name == "..":
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	case strings.ContainsAny(name, "/\\\x00"):
		return fmt.Errorf("%w: %q contains a path separator", ErrInvalidName, name)
	}
	return nil
}

// Key joins segments into a blob key. Empty segments are skipped; every other
// segment must pass ValidateName and is used unchanged, so distinct names
// never share a key.
func Key(segments ...string) (string, error) {
	parts := make([]string, 0, len(segments))
	for _, s := range segments {
		if s == "" {
			continue
		}
		if err := ValidateName(s); err != nil {
			return "", err
		}
		parts = append(parts, s)
	}
	if len(parts) == 0 {
		return "", fmt.Errorf("%w: key has no segments", ErrInvalidName)
	}
	return strings.Join(parts, "/"), nil
}

// ContentTypeForName infers a content type from a file name suffix. The
// match is case-sensitive: "report.PDF" is application/octet-stream.
func ContentTypeForName(name string) string {
	switch {
	case strings.HasSuffix(name, ".jpg"), strings.HasSuffix(name, ".jpeg"):
		return "image/jpeg"
	case strings.HasSuffix(name, ".png"):
		return "image/png"
	case strings.HasSuffix(name, ".pdf"):
		return "application/pdf"
	case strings.HasSuffix(name, ".txt"):
		return "text/plain"
	case strings.HasSuffix(name, ".json"):
		return "application/json"
	default:
		return "application/octet-stream"
	}
}
