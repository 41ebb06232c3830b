// Package backend defines the capability interface the gateway uses to reach
// the document database and blob store, together with the process-wide handle
// that owns the single client instance.
package backend

import (
	"context"
)

// Document is an opaque key-value payload stored under a collection.
type Document map[string]any

// SearchQuery selects documents from a collection.
type SearchQuery struct {
	// Collection is the collection to search.
	Collection string

	// Constraints are field equality filters. An empty map matches everything.
	Constraints map[string]any

	// Limit caps the number of results returned.
	Limit int

	// OrderBy is an optional field name. A leading "-" sorts descending.
	OrderBy string
}

// FileLocation identifies a single file in the blob store.
type FileLocation struct {
	Folder   string
	FileName string
	AppName  string
}

// UploadBatch is a set of files written to one folder in a single call.
// Filenames and Contents correspond 1:1 by position.
type UploadBatch struct {
	Folder    string
	AppName   string
	Filenames []string
	Contents  [][]byte
}

// Client performs document and blob operations on behalf of the caller
// identified by token. The token is passed through unchanged; verifying it is
// the client's responsibility.
type Client interface {
	// GetDocument returns the document or an error wrapping ErrNotFound.
	// A nil document with a nil error is also treated as not found.
	GetDocument(ctx context.Context, token, collection, docID string) (Document, error)

	// CreateDocument stores data under collection/docID.
	CreateDocument(ctx context.Context, token, collection, docID string, data Document) (any, error)

	// UpdateDocument merges data into an existing document.
	UpdateDocument(ctx context.Context, token, collection, docID string, data Document) (any, error)

	// DeleteDocument removes a document.
	DeleteDocument(ctx context.Context, token, collection, docID string) error

	// SearchDocuments returns the matching documents in order.
	SearchDocuments(ctx context.Context, token string, query SearchQuery) ([]Document, error)

	// UploadFiles writes every file in the batch.
	UploadFiles(ctx context.Context, token string, batch UploadBatch) (any, error)

	// GetFileURL returns a retrieval URL for the file.
	GetFileURL(ctx context.Context, token string, loc FileLocation) (string, error)

	// GetFileBlob returns the file contents.
	GetFileBlob(ctx context.Context, token string, loc FileLocation) ([]byte, error)
}
