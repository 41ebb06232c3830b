package server

import (
	"github.com/hashicorp/go-hclog"

	"github.com/hashicorp-forge/docgate/internal/config"
	"github.com/hashicorp-forge/docgate/pkg/backend"
)

// Server contains the server configuration.
type Server struct {
	// Backend is the lazily constructed backing store handle shared by every
	// request.
	Backend *backend.Lazy

	// Config is the config for the server.
	Config *config.Config

	// Logger is the logger for the server.
	Logger hclog.Logger
}
