// Package sdk implements backend.Client on top of a document store and a blob
// store. Every call verifies the caller's token and confines the call to the
// token's scope.
package sdk

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"

	"github.com/hashicorp-forge/docgate/pkg/backend"
	"github.com/hashicorp-forge/docgate/pkg/blobstore"
	"github.com/hashicorp-forge/docgate/pkg/docstore"
)

// UploadedFile describes one stored file of an upload batch.
type UploadedFile struct {
	Name        string `json:"name"`
	Key         string `json:"key"`
	Size        int    `json:"size"`
	ContentType string `json:"content_type"`
}

// UploadResult is returned by UploadFiles.
type UploadResult struct {
	BatchID string         `json:"batch_id"`
	Storage string         `json:"storage"`
	Files   []UploadedFile `json:"files"`
}

// Client is the concrete backing store.
type Client struct {
	docs     *docstore.Store
	blobs    blobstore.Store
	verifier *TokenVerifier
	logger   hclog.Logger
}

var _ backend.Client = (*Client)(nil)

// New returns a Client.
func New(docs *docstore.Store, blobs blobstore.Store, verifier *TokenVerifier, logger hclog.Logger) *Client {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	if verifier == nil {
		verifier = NewTokenVerifier(VerifierConfig{})
	}
	return &Client{
		docs:     docs,
		blobs:    blobs,
		verifier: verifier,
		logger:   logger.Named("sdk"),
	}
}

// Close releases the document store's database pool.
func (c *Client) Close() error {
	return c.docs.Close()
}

func (c *Client) scope(op, token string) (string, error) {
	scope, err := c.verifier.Scope(token)
	if err != nil {
		c.logger.Warn("credential rejected", "op", op, "error", err)
		return "", backend.Unauthorized(op, err)
	}
	return scope, nil
}

// fileKey builds the scoped blob key for loc. Folder and file name are
// required; an empty app name is omitted from the key.
func (c *Client) fileKey(op, scope string, loc backend.FileLocation) (string, error) {
	if err := blobstore.ValidateName(loc.Folder); err != nil {
		return "", backend.InvalidArgument(op, fmt.Errorf("folder: %w", err))
	}
	if err := blobstore.ValidateName(loc.FileName); err != nil {
		return "", backend.InvalidArgument(op, fmt.Errorf("file name: %w", err))
	}
	key, err := blobstore.Key(scope, loc.AppName, loc.Folder, loc.FileName)
	if err != nil {
		return "", backend.InvalidArgument(op, err)
	}
	return key, nil
}

func (c *Client) GetDocument(ctx context.Context, token, collection, docID string) (backend.Document, error) {
	scope, err := c.scope("GetDocument", token)
	if err != nil {
		return nil, err
	}
	return c.docs.Get(ctx, scope, collection, docID)
}

func (c *Client) CreateDocument(ctx context.Context, token, collection, docID string, data backend.Document) (any, error) {
	scope, err := c.scope("CreateDocument", token)
	if err != nil {
		return nil, err
	}
	return c.docs.Set(ctx, scope, collection, docID, data)
}

func (c *Client) UpdateDocument(ctx context.Context, token, collection, docID string, data backend.Document) (any, error) {
	scope, err := c.scope("UpdateDocument", token)
	if err != nil {
		return nil, err
	}
	return c.docs.Merge(ctx, scope, collection, docID, data)
}

func (c *Client) DeleteDocument(ctx context.Context, token, collection, docID string) error {
	scope, err := c.scope("DeleteDocument", token)
	if err != nil {
		return err
	}
	return c.docs.Delete(ctx, scope, collection, docID)
}

func (c *Client) SearchDocuments(ctx context.Context, token string, query backend.SearchQuery) ([]backend.Document, error) {
	scope, err := c.scope("SearchDocuments", token)
	if err != nil {
		return nil, err
	}
	return c.docs.Search(ctx, scope, query)
}

// UploadFiles writes the batch in order. It stops at the first failure;
// files written before the failure are left in place.
func (c *Client) UploadFiles(ctx context.Context, token string, batch backend.UploadBatch) (any, error) {
	scope, err := c.scope("UploadFiles", token)
	if err != nil {
		return nil, err
	}
	if len(batch.Filenames) != len(batch.Contents) {
		return nil, fmt.Errorf("upload batch has %d names but %d contents",
			len(batch.Filenames), len(batch.Contents))
	}

	// Every key is checked before the first write.
	keys := make([]string, len(batch.Filenames))
	for i, name := range batch.Filenames {
		key, err := c.fileKey("UploadFiles", scope, backend.FileLocation{
			Folder:   batch.Folder,
			FileName: name,
			AppName:  batch.AppName,
		})
		if err != nil {
			return nil, err
		}
		keys[i] = key
	}

	result := &UploadResult{
		BatchID: uuid.New().String(),
		Storage: c.blobs.Name(),
		Files:   make([]UploadedFile, 0, len(batch.Filenames)),
	}
	for i, name := range batch.Filenames {
		key := keys[i]
		contentType := blobstore.ContentTypeForName(name)
		if err := c.blobs.Put(ctx, key, batch.Contents[i], contentType); err != nil {
			return nil, fmt.Errorf("error uploading %q (%d of %d): %w",
				name, i+1, len(batch.Filenames), err)
		}
		result.Files = append(result.Files, UploadedFile{
			Name:        name,
			Key:         key,
			Size:        len(batch.Contents[i]),
			ContentType: contentType,
		})
	}

	c.logger.Info("upload batch stored",
		"batch_id", result.BatchID,
		"folder", batch.Folder,
		"files", len(result.Files),
	)
	return result, nil
}

func (c *Client) GetFileURL(ctx context.Context, token string, loc backend.FileLocation) (string, error) {
	scope, err := c.scope("GetFileURL", token)
	if err != nil {
		return "", err
	}
	key, err := c.fileKey("GetFileURL", scope, loc)
	if err != nil {
		return "", err
	}
	return c.blobs.URL(ctx, key)
}

func (c *Client) GetFileBlob(ctx context.Context, token string, loc backend.FileLocation) ([]byte, error) {
	scope, err := c.scope("GetFileBlob", token)
	if err != nil {
		return nil, err
	}
	key, err := c.fileKey("GetFileBlob", scope, loc)
	if err != nil {
		return nil, err
	}
	return c.blobs.Get(ctx, key)
}
