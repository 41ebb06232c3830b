package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/hashicorp-forge/docgate/internal/config"
	"github.com/hashicorp-forge/docgate/internal/server"
)

const healthPath = "/health"

// Operation routes, relative to the API prefix.
const (
	RouteGet         = "/get"
	RouteCreate      = "/create"
	RouteUpdate      = "/update"
	RouteDelete      = "/delete"
	RouteSearch      = "/search"
	RouteUpload      = "/storage/upload"
	RouteFileURL     = "/storage/get-url"
	RouteFileBlob    = "/storage/get-blob"
	defaultAPIPrefix = config.DefaultAPIPrefix
)

// NewRouter mounts the health check and every operation route. Operation
// routes accept POST only.
func NewRouter(srv server.Server) http.Handler {
	prefix := defaultAPIPrefix
	origins := []string{"*"}
	if srv.Config != nil && srv.Config.Server != nil {
		if srv.Config.Server.APIPrefix != "" {
			prefix = srv.Config.Server.APIPrefix
		}
		if len(srv.Config.Server.CORSAllowedOrigins) > 0 {
			origins = srv.Config.Server.CORSAllowedOrigins
		}
	}

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(RequestLogger(srv))
	r.Use(Recover(srv))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"*"},
		ExposedHeaders: []string{RequestIDHeader, "Content-Disposition"},
		MaxAge:         300,
	}))

	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusMethodNotAllowed, errorBody{Error: "Method not allowed"})
	})
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusNotFound, errorBody{Error: "Not found"})
	})

	r.Method(http.MethodGet, healthPath, HealthHandler(srv))

	r.Route(prefix, func(r chi.Router) {
		r.Method(http.MethodPost, RouteGet, GetDocumentHandler(srv))
		r.Method(http.MethodPost, RouteCreate, CreateDocumentHandler(srv))
		r.Method(http.MethodPost, RouteUpdate, UpdateDocumentHandler(srv))
		r.Method(http.MethodPost, RouteDelete, DeleteDocumentHandler(srv))
		r.Method(http.MethodPost, RouteSearch, SearchDocumentsHandler(srv))
		r.Method(http.MethodPost, RouteUpload, UploadFilesHandler(srv))
		r.Method(http.MethodPost, RouteFileURL, FileURLHandler(srv))
		r.Method(http.MethodPost, RouteFileBlob, FileBlobHandler(srv))
	})

	return r
}
