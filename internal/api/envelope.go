package api

import "github.com/hashicorp-forge/docgate/pkg/backend"

// Success envelopes. Every field is always present in the JSON output.

// GetDocumentResponse is returned by the get operation.
type GetDocumentResponse struct {
	Success    bool             `json:"success"`
	Collection string           `json:"collection"`
	DocID      string           `json:"doc_id"`
	Data       backend.Document `json:"data"`
}

// WriteDocumentResponse is returned by create and update. Result is whatever
// the backing store returned.
type WriteDocumentResponse struct {
	Success    bool   `json:"success"`
	Collection string `json:"collection"`
	DocID      string `json:"doc_id"`
	Result     any    `json:"result"`
}

type DeleteDocumentResponse struct {
	Success    bool   `json:"success"`
	Collection string `json:"collection"`
	DocID      string `json:"doc_id"`
	Message    string `json:"message"`
}

type SearchDocumentsResponse struct {
	Success    bool               `json:"success"`
	Collection string             `json:"collection"`
	Count      int                `json:"count"`
	Results    []backend.Document `json:"results"`
}

// UploadFilesResponse and FileURLResponse echo an absent app_name as null.
type UploadFilesResponse struct {
	Success       bool     `json:"success"`
	Folder        string   `json:"folder"`
	AppName       *string  `json:"app_name"`
	FilesUploaded []string `json:"files_uploaded"`
	Result        any      `json:"result"`
}

type FileURLResponse struct {
	Success    bool   `json:"success"`
	FolderName string  `json:"folder_name"`
	FileName   string  `json:"file_name"`
	AppName    *string `json:"app_name"`
	URL        string  `json:"url"`
}

type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}

// optional returns nil for an empty string.
func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
