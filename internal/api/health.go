package api

import (
	"net/http"

	"github.com/hashicorp-forge/docgate/internal/config"
	"github.com/hashicorp-forge/docgate/internal/server"
)

// HealthHandler reports that the process is serving. It does not touch the
// backing store and requires no credential.
func HealthHandler(srv server.Server) http.Handler {
	service := config.DefaultServiceName
	if srv.Config != nil && srv.Config.ServiceName != "" {
		service = srv.Config.ServiceName
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, HealthResponse{
			Status:  "healthy",
			Service: service,
		})
	})
}
