package api

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/hashicorp-forge/docgate/internal/config"
	"github.com/hashicorp-forge/docgate/internal/server"
	"github.com/hashicorp-forge/docgate/pkg/blobstore"
)

// Multipart form fields of an upload.
const (
	formFieldFiles   = "files"
	formFieldFolder  = "folder"
	formFieldAppName = "app_name"
)

// UploadFilesHandler stores one or more files as a single batch.
//
//	POST {prefix}/storage/upload (multipart: files[], folder, app_name?)
func UploadFilesHandler(srv server.Server) http.Handler {
	return operation(srv, func(w http.ResponseWriter, r *http.Request, token string) error {
		req, err := parseUploadForm(r, maxBodyBytes(srv))
		if err != nil {
			return err
		}
		if err := req.Validate(); err != nil {
			return validationError(err)
		}
		client, err := resolveBackend(srv)
		if err != nil {
			return err
		}

		result, err := client.UploadFiles(r.Context(), token, req.Batch())
		if err != nil {
			return classifyBackendError("upload files", err)
		}

		srv.Logger.Info("uploaded files",
			"folder", req.Folder,
			"app_name", req.AppName,
			"count", len(req.Filenames),
		)
		respondJSON(w, http.StatusOK, UploadFilesResponse{
			Success:       true,
			Folder:        req.Folder,
			AppName:       optional(req.AppName),
			FilesUploaded: req.Filenames,
			Result:        result,
		})
		return nil
	})
}

// FileURLHandler returns a retrieval URL for a stored file.
//
//	POST {prefix}/storage/get-url {"folder_name": "...", "file_name": "...", "app_name": "..."}
func FileURLHandler(srv server.Server) http.Handler {
	return operation(srv, func(w http.ResponseWriter, r *http.Request, token string) error {
		var req FileRequest
		if err := decodeRequest(r, &req); err != nil {
			return err
		}
		client, err := resolveBackend(srv)
		if err != nil {
			return err
		}

		url, err := client.GetFileURL(r.Context(), token, req.Location())
		if err != nil {
			return classifyBackendError("get file url", err)
		}

		respondJSON(w, http.StatusOK, FileURLResponse{
			Success:    true,
			FolderName: req.FolderName,
			FileName:   req.FileName,
			AppName:    optional(req.AppName),
			URL:        url,
		})
		return nil
	})
}

// FileBlobHandler returns the raw contents of a stored file.
//
//	POST {prefix}/storage/get-blob {"folder_name": "...", "file_name": "...", "app_name": "..."}
func FileBlobHandler(srv server.Server) http.Handler {
	return operation(srv, func(w http.ResponseWriter, r *http.Request, token string) error {
		var req FileRequest
		if err := decodeRequest(r, &req); err != nil {
			return err
		}
		client, err := resolveBackend(srv)
		if err != nil {
			return err
		}

		content, err := client.GetFileBlob(r.Context(), token, req.Location())
		if err != nil {
			return classifyBackendError("get file blob", err)
		}

		w.Header().Set("Content-Type", blobstore.ContentTypeForName(req.FileName))
		w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", req.FileName))
		w.Header().Set("Content-Length", strconv.Itoa(len(content)))
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write(content); err != nil {
			srv.Logger.Error("error writing file blob", "error", err, "file_name", req.FileName)
		}
		return nil
	})
}

// parseUploadForm reads every uploaded file fully into memory. Names and
// contents keep the order in which the parts arrived.
func parseUploadForm(r *http.Request, maxMemory int64) (UploadRequest, error) {
	var req UploadRequest

	if err := r.ParseMultipartForm(maxMemory); err != nil {
		if tooLarge := bodyTooLarge(err); tooLarge != nil {
			return req, tooLarge
		}
		return req, validationError(fmt.Errorf("malformed multipart form: %w", err))
	}
	if r.MultipartForm != nil {
		defer func() { _ = r.MultipartForm.RemoveAll() }()
	}

	req.Folder = r.FormValue(formFieldFolder)
	req.AppName = r.FormValue(formFieldAppName)

	var headers []*multipart.FileHeader
	if r.MultipartForm != nil {
		headers = r.MultipartForm.File[formFieldFiles]
	}
	for _, fh := range headers {
		content, err := readFormFile(fh)
		if err != nil {
			return req, internalError("Failed to read uploaded file", err)
		}
		req.Filenames = append(req.Filenames, fh.Filename)
		req.Contents = append(req.Contents, content)
	}
	return req, nil
}

func readFormFile(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("error opening %q: %w", fh.Filename, err)
	}
	defer f.Close()

	content, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("error reading %q: %w", fh.Filename, err)
	}
	return content, nil
}

// maxBodyBytes bounds every operation's request body, including the whole
// multipart upload.
func maxBodyBytes(srv server.Server) int64 {
	if srv.Config != nil && srv.Config.Server != nil && srv.Config.Server.MaxUploadMB > 0 {
		return srv.Config.MaxUploadBytes()
	}
	return int64(config.DefaultMaxUploadMB) << 20
}
