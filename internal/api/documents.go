package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/hashicorp-forge/docgate/internal/server"
	"github.com/hashicorp-forge/docgate/pkg/backend"
)

var errNoBackend = errors.New("no backing store configured")

// GetDocumentHandler returns a single document.
//
//	POST {prefix}/get {"collection": "...", "doc_id": "..."}
func GetDocumentHandler(srv server.Server) http.Handler {
	return operation(srv, func(w http.ResponseWriter, r *http.Request, token string) error {
		var req DocumentRequest
		if err := decodeRequest(r, &req); err != nil {
			return err
		}
		client, err := resolveBackend(srv)
		if err != nil {
			return err
		}

		doc, err := client.GetDocument(r.Context(), token, req.Collection, req.DocID)
		if err != nil {
			return classifyBackendError("get document", err)
		}
		if doc == nil {
			return notFound(fmt.Sprintf("Document %q not found in collection %q", req.DocID, req.Collection))
		}

		respondJSON(w, http.StatusOK, GetDocumentResponse{
			Success:    true,
			Collection: req.Collection,
			DocID:      req.DocID,
			Data:       doc,
		})
		return nil
	})
}

// CreateDocumentHandler creates or replaces a document.
//
//	POST {prefix}/create {"collection": "...", "doc_id": "...", "data": {...}}
func CreateDocumentHandler(srv server.Server) http.Handler {
	return operation(srv, func(w http.ResponseWriter, r *http.Request, token string) error {
		var req WriteRequest
		if err := decodeRequest(r, &req); err != nil {
			return err
		}
		client, err := resolveBackend(srv)
		if err != nil {
			return err
		}

		result, err := client.CreateDocument(r.Context(), token, req.Collection, req.DocID, req.Data)
		if err != nil {
			return classifyBackendError("create document", err)
		}

		srv.Logger.Info("created document",
			"collection", req.Collection,
			"doc_id", req.DocID,
		)
		respondJSON(w, http.StatusOK, WriteDocumentResponse{
			Success:    true,
			Collection: req.Collection,
			DocID:      req.DocID,
			Result:     result,
		})
		return nil
	})
}

// UpdateDocumentHandler merges fields into an existing document.
//
//	POST {prefix}/update {"collection": "...", "doc_id": "...", "data": {...}}
func UpdateDocumentHandler(srv server.Server) http.Handler {
	return operation(srv, func(w http.ResponseWriter, r *http.Request, token string) error {
		var req WriteRequest
		if err := decodeRequest(r, &req); err != nil {
			return err
		}
		client, err := resolveBackend(srv)
		if err != nil {
			return err
		}

		result, err := client.UpdateDocument(r.Context(), token, req.Collection, req.DocID, req.Data)
		if err != nil {
			return classifyBackendError("update document", err)
		}

		srv.Logger.Info("updated document",
			"collection", req.Collection,
			"doc_id", req.DocID,
		)
		respondJSON(w, http.StatusOK, WriteDocumentResponse{
			Success:    true,
			Collection: req.Collection,
			DocID:      req.DocID,
			Result:     result,
		})
		return nil
	})
}

// DeleteDocumentHandler removes a document.
//
//	POST {prefix}/delete {"collection": "...", "doc_id": "..."}
func DeleteDocumentHandler(srv server.Server) http.Handler {
	return operation(srv, func(w http.ResponseWriter, r *http.Request, token string) error {
		var req DocumentRequest
		if err := decodeRequest(r, &req); err != nil {
			return err
		}
		client, err := resolveBackend(srv)
		if err != nil {
			return err
		}

		if err = client.DeleteDocument(r.Context(), token, req.Collection, req.DocID); err != nil {
			return classifyBackendError("delete document", err)
		}

		srv.Logger.Info("deleted document",
			"collection", req.Collection,
			"doc_id", req.DocID,
		)
		respondJSON(w, http.StatusOK, DeleteDocumentResponse{
			Success:    true,
			Collection: req.Collection,
			DocID:      req.DocID,
			Message:    fmt.Sprintf("Document %s deleted successfully", req.DocID),
		})
		return nil
	})
}

// SearchDocumentsHandler queries a collection.
//
//	POST {prefix}/search {"collection": "...", "query_constraints": {...}, "limit": 10, "order_by": "-created"}
func SearchDocumentsHandler(srv server.Server) http.Handler {
	return operation(srv, func(w http.ResponseWriter, r *http.Request, token string) error {
		var req SearchRequest
		if err := decodeRequest(r, &req); err != nil {
			return err
		}
		client, err := resolveBackend(srv)
		if err != nil {
			return err
		}

		results, err := client.SearchDocuments(r.Context(), token, req.Query())
		if err != nil {
			return classifyBackendError("search documents", err)
		}
		if results == nil {
			results = []backend.Document{}
		}

		respondJSON(w, http.StatusOK, SearchDocumentsResponse{
			Success:    true,
			Collection: req.Collection,
			Count:      len(results),
			Results:    results,
		})
		return nil
	})
}

// operationFunc handles one gateway operation after the credential has been
// extracted. Returned errors are written with respondError.
type operationFunc func(w http.ResponseWriter, r *http.Request, token string) error

// operation wraps fn with credential extraction, which always runs first.
// The request body is capped at maxBodyBytes.
func operation(srv server.Server, fn operationFunc) http.Handler {
	limit := maxBodyBytes(srv)
	return RequireCredential(srv, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Body != nil {
			r.Body = http.MaxBytesReader(w, r.Body, limit)
		}
		token, _ := CredentialFromContext(r.Context())
		if err := fn(w, r, token); err != nil {
			respondError(w, r, srv, err)
		}
	}))
}

// resolveBackend returns the shared backing store client, constructing it on
// first use. Handlers call it only after the request validated.
func resolveBackend(srv server.Server) (backend.Client, error) {
	if srv.Backend == nil {
		return nil, internalError("Backing store unavailable", errNoBackend)
	}
	client, err := srv.Backend.Get()
	if err != nil {
		return nil, internalError("Backing store unavailable", err)
	}
	return client, nil
}
