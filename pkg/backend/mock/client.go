// Package mock provides an in-memory backing store client for testing.
package mock

import (
	"context"
	"fmt"
	"sync"

	"github.com/hashicorp-forge/docgate/pkg/backend"
)

// Method names used as keys for Calls and Errors.
const (
	MethodGetDocument     = "GetDocument"
	MethodCreateDocument  = "CreateDocument"
	MethodUpdateDocument  = "UpdateDocument"
	MethodDeleteDocument  = "DeleteDocument"
	MethodSearchDocuments = "SearchDocuments"
	MethodUploadFiles     = "UploadFiles"
	MethodGetFileURL      = "GetFileURL"
	MethodGetFileBlob     = "GetFileBlob"
)

// Client is a fake backend.Client that stores everything in memory, counts
// calls per method and returns injected errors.
type Client struct {
	mu sync.Mutex

	// Documents stores documents by "collection/docID".
	Documents map[string]backend.Document

	// Files stores file contents by "appName/folder/fileName".
	Files map[string][]byte

	// Errors makes the named method fail with the given error.
	Errors map[string]error

	// SearchResults, when set, is returned by SearchDocuments unchanged.
	// This lets tests return a nil slice.
	SearchResults []backend.Document
	searchSet     bool

	// WriteResult, when set, is returned by CreateDocument/UpdateDocument.
	WriteResult any

	// Tokens records the credential seen by each call, in order.
	Tokens []string

	// Batches records every upload batch received.
	Batches []backend.UploadBatch

	// Queries records every search query received.
	Queries []backend.SearchQuery

	calls map[string]int
}

var _ backend.Client = (*Client)(nil)

// NewClient returns an empty fake client.
func NewClient() *Client {
	return &Client{
		Documents: make(map[string]backend.Document),
		Files:     make(map[string][]byte),
		Errors:    make(map[string]error),
		calls:     make(map[string]int),
	}
}

// SetSearchResults pins the search response, including a nil slice.
func (c *Client) SetSearchResults(results []backend.Document) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.SearchResults = results
	c.searchSet = true
}

// FailWith makes method return err until cleared.
func (c *Client) FailWith(method string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Errors[method] = err
}

// Calls returns how many times method was invoked.
func (c *Client) Calls(method string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls[method]
}

// TotalCalls returns the number of calls across all methods.
func (c *Client) TotalCalls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	total := 0
	for _, n := range c.calls {
		total += n
	}
	return total
}

// record must be called with mu held.
func (c *Client) record(method, token string) error {
	c.calls[method]++
	c.Tokens = append(c.Tokens, token)
	return c.Errors[method]
}

func docKey(collection, docID string) string {
	return collection + "/" + docID
}

func fileKey(loc backend.FileLocation) string {
	return fmt.Sprintf("%s/%s/%s", loc.AppName, loc.Folder, loc.FileName)
}

func (c *Client) GetDocument(ctx context.Context, token, collection, docID string) (backend.Document, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.record(MethodGetDocument, token); err != nil {
		return nil, err
	}
	// Missing documents come back as nil, nil like the remote SDK does.
	return c.Documents[docKey(collection, docID)], nil
}

func (c *Client) CreateDocument(ctx context.Context, token, collection, docID string, data backend.Document) (any, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.record(MethodCreateDocument, token); err != nil {
		return nil, err
	}
	c.Documents[docKey(collection, docID)] = data
	return c.WriteResult, nil
}

func (c *Client) UpdateDocument(ctx context.Context, token, collection, docID string, data backend.Document) (any, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.record(MethodUpdateDocument, token); err != nil {
		return nil, err
	}
	key := docKey(collection, docID)
	existing, ok := c.Documents[key]
	if !ok {
		return nil, backend.NotFound(MethodUpdateDocument, key)
	}
	for k, v := range data {
		existing[k] = v
	}
	return c.WriteResult, nil
}

func (c *Client) DeleteDocument(ctx context.Context, token, collection, docID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.record(MethodDeleteDocument, token); err != nil {
		return err
	}
	delete(c.Documents, docKey(collection, docID))
	return nil
}

func (c *Client) SearchDocuments(ctx context.Context, token string, query backend.SearchQuery) ([]backend.Document, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Queries = append(c.Queries, query)
	if err := c.record(MethodSearchDocuments, token); err != nil {
		return nil, err
	}
	if c.searchSet {
		return c.SearchResults, nil
	}

	var results []backend.Document
	prefix := query.Collection + "/"
	for key, doc := range c.Documents {
		if len(key) > len(prefix) && key[:len(prefix)] == prefix {
			results = append(results, doc)
		}
		if query.Limit > 0 && len(results) >= query.Limit {
			break
		}
	}
	return results, nil
}

func (c *Client) UploadFiles(ctx context.Context, token string, batch backend.UploadBatch) (any, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.record(MethodUploadFiles, token); err != nil {
		return nil, err
	}
	c.Batches = append(c.Batches, batch)
	for i, name := range batch.Filenames {
		c.Files[fileKey(backend.FileLocation{
			Folder:   batch.Folder,
			FileName: name,
			AppName:  batch.AppName,
		})] = batch.Contents[i]
	}
	return map[string]any{"uploaded": len(batch.Filenames)}, nil
}

func (c *Client) GetFileURL(ctx context.Context, token string, loc backend.FileLocation) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.record(MethodGetFileURL, token); err != nil {
		return "", err
	}
	key := fileKey(loc)
	if _, ok := c.Files[key]; !ok {
		return "", backend.NotFound(MethodGetFileURL, key)
	}
	return "mock://" + key, nil
}

func (c *Client) GetFileBlob(ctx context.Context, token string, loc backend.FileLocation) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.record(MethodGetFileBlob, token); err != nil {
		return nil, err
	}
	key := fileKey(loc)
	content, ok := c.Files[key]
	if !ok {
		return nil, backend.NotFound(MethodGetFileBlob, key)
	}
	return content, nil
}
