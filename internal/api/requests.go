package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/hashicorp-forge/docgate/pkg/backend"
	"github.com/hashicorp-forge/docgate/pkg/blobstore"
)

// Search limit bounds.
const (
	DefaultSearchLimit = 10
	MinSearchLimit     = 1
	MaxSearchLimit     = 100
)

// DocumentRequest identifies a single document. It is the body of get and
// delete requests.
type DocumentRequest struct {
	Collection string `json:"collection"`
	DocID      string `json:"doc_id"`
}

func (r DocumentRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Collection, validation.Required),
		validation.Field(&r.DocID, validation.Required),
	)
}

// WriteRequest is the body of create and update requests.
type WriteRequest struct {
	Collection string           `json:"collection"`
	DocID      string           `json:"doc_id"`
	Data       backend.Document `json:"data"`
}

// Validate requires the payload to be present. An empty object is a valid
// payload.
func (r WriteRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Collection, validation.Required),
		validation.Field(&r.DocID, validation.Required),
		validation.Field(&r.Data, validation.NotNil),
	)
}

// SearchRequest is the body of search requests. Limit is nil until
// ApplyDefaults runs.
type SearchRequest struct {
	Collection       string         `json:"collection"`
	QueryConstraints map[string]any `json:"query_constraints"`
	Limit            *int           `json:"limit"`
	OrderBy          string         `json:"order_by"`
}

func (r *SearchRequest) ApplyDefaults() {
	if r.QueryConstraints == nil {
		r.QueryConstraints = map[string]any{}
	}
	if r.Limit == nil {
		limit := DefaultSearchLimit
		r.Limit = &limit
	}
}

func (r SearchRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Collection, validation.Required),
		validation.Field(&r.Limit, validation.NotNil, validation.By(limitInRange)),
	)
}

// limitInRange rejects limits outside [MinSearchLimit, MaxSearchLimit].
// validation.Min skips zero values, so the bounds are checked here.
func limitInRange(value any) error {
	limit, _ := value.(*int)
	if limit == nil {
		return nil
	}
	if *limit < MinSearchLimit || *limit > MaxSearchLimit {
		return fmt.Errorf("must be between %d and %d", MinSearchLimit, MaxSearchLimit)
	}
	return nil
}

// Query converts the request for the backing store.
func (r SearchRequest) Query() backend.SearchQuery {
	q := backend.SearchQuery{
		Collection:  r.Collection,
		Constraints: r.QueryConstraints,
		OrderBy:     r.OrderBy,
	}
	if r.Limit != nil {
		q.Limit = *r.Limit
	}
	return q
}

// FileRequest locates a stored file. It is the body of get-url and get-blob
// requests.
type FileRequest struct {
	FolderName string `json:"folder_name"`
	FileName   string `json:"file_name"`
	AppName    string `json:"app_name"`
}

func (r FileRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.FolderName, validation.Required, validation.By(blobName)),
		validation.Field(&r.FileName, validation.Required, validation.By(blobName)),
		validation.Field(&r.AppName, validation.By(blobName)),
	)
}

func (r FileRequest) Location() backend.FileLocation {
	return backend.FileLocation{
		Folder:   r.FolderName,
		FileName: r.FileName,
		AppName:  r.AppName,
	}
}

// UploadRequest is built from a multipart upload form.
type UploadRequest struct {
	Folder    string   `json:"folder"`
	AppName   string   `json:"app_name"`
	Filenames []string `json:"files"`
	Contents  [][]byte `json:"-"`
}

func (r UploadRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Folder, validation.Required, validation.By(blobName)),
		validation.Field(&r.AppName, validation.By(blobName)),
		validation.Field(&r.Filenames,
			validation.Required.Error("at least one file is required"),
			validation.Each(
				validation.Required.Error("file name is required"),
				validation.By(blobName),
			),
		),
	)
}

// blobName rejects folder, file and app names that are not a single path
// element. Absent values are left to validation.Required.
func blobName(value any) error {
	name, _ := value.(string)
	if name == "" {
		return nil
	}
	if err := blobstore.ValidateName(name); err != nil {
		return errors.New("must be a single file or folder name")
	}
	return nil
}

func (r UploadRequest) Batch() backend.UploadBatch {
	return backend.UploadBatch{
		Folder:    r.Folder,
		AppName:   r.AppName,
		Filenames: r.Filenames,
		Contents:  r.Contents,
	}
}

// UnmarshalJSON accepts "doc_type" as an alias of "collection".
func (r *DocumentRequest) UnmarshalJSON(b []byte) error {
	raw, err := decodeRawBody(b)
	if err != nil {
		return err
	}
	r.Collection = raw.collection()
	r.DocID = raw.DocID
	return nil
}

// UnmarshalJSON accepts "doc_type" for "collection" and "payload" for "data".
func (r *WriteRequest) UnmarshalJSON(b []byte) error {
	raw, err := decodeRawBody(b)
	if err != nil {
		return err
	}
	r.Collection = raw.collection()
	r.DocID = raw.DocID
	r.Data = raw.Data
	if r.Data == nil {
		r.Data = raw.Payload
	}
	return nil
}

// UnmarshalJSON accepts "doc_type" as an alias of "collection".
func (r *SearchRequest) UnmarshalJSON(b []byte) error {
	raw, err := decodeRawBody(b)
	if err != nil {
		return err
	}
	r.Collection = raw.collection()
	r.QueryConstraints = raw.QueryConstraints
	r.Limit = raw.Limit
	r.OrderBy = raw.OrderBy
	return nil
}

type rawDocumentBody struct {
	Collection       string           `json:"collection"`
	DocType          string           `json:"doc_type"`
	DocID            string           `json:"doc_id"`
	Data             backend.Document `json:"data"`
	Payload          backend.Document `json:"payload"`
	QueryConstraints map[string]any   `json:"query_constraints"`
	Limit            *int             `json:"limit"`
	OrderBy          string           `json:"order_by"`
}

// decodeRawBody keeps numbers as json.Number so payload integers larger than
// 2^53 reach the backing store unchanged.
func decodeRawBody(b []byte) (rawDocumentBody, error) {
	var raw rawDocumentBody
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return rawDocumentBody{}, err
	}
	return raw, nil
}

func (b rawDocumentBody) collection() string {
	if b.Collection != "" {
		return b.Collection
	}
	return b.DocType
}

type validatable interface {
	Validate() error
}

// decodeRequest decodes a JSON body into req and validates it. Every failure
// is a validation error.
func decodeRequest(r *http.Request, req validatable) error {
	if r.Body == nil {
		return validationError(errors.New("request body is required"))
	}
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		if tooLarge := bodyTooLarge(err); tooLarge != nil {
			return tooLarge
		}
		if errors.Is(err, io.EOF) {
			return validationError(errors.New("request body is required"))
		}
		return validationError(fmt.Errorf("malformed request body: %w", err))
	}

	if d, ok := req.(interface{ ApplyDefaults() }); ok {
		d.ApplyDefaults()
	}
	if err := req.Validate(); err != nil {
		return validationError(err)
	}
	return nil
}

// bodyTooLarge returns a validation error when err came from the body limit
// set by operation.
func bodyTooLarge(err error) error {
	var maxErr *http.MaxBytesError
	if !errors.As(err, &maxErr) {
		return nil
	}
	return validationError(fmt.Errorf("request body exceeds %d bytes", maxErr.Limit))
}
