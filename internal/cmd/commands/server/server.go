package server

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/afero"

	"github.com/hashicorp-forge/docgate/internal/api"
	"github.com/hashicorp-forge/docgate/internal/cmd/base"
	"github.com/hashicorp-forge/docgate/internal/config"
	"github.com/hashicorp-forge/docgate/internal/server"
	"github.com/hashicorp-forge/docgate/pkg/backend"
)

type Command struct {
	*base.Command

	flagAddr     string
	flagConfig   string
	flagLogLevel string
}

func (c *Command) Synopsis() string {
	return "Run the server"
}

func (c *Command) Help() string {
	return `Usage: docgate server [options]

  Run the docgate HTTP gateway.

  Without -config the server starts with zero-config defaults: port 8000,
  sqlite database docgate.db and local file storage under ./storage.
  Environment variables (PORT, LOG_LEVEL, DOCGATE_DATABASE_DSN, ...)
  override the config file.` + c.Flags().Help()
}

func (c *Command) Flags() *base.FlagSet {
	f := base.NewFlagSet(flag.NewFlagSet("server", flag.ContinueOnError))

	f.StringVar(
		&c.flagConfig, "config", "", "Path to docgate config file",
	)
	f.StringVar(
		&c.flagAddr, "addr", "",
		"Address to bind to for listening (host:port). Overrides the config.",
	)
	f.StringVar(
		&c.flagLogLevel, "log-level", "",
		"Log level (TRACE, DEBUG, INFO, WARN, ERROR). Overrides the config.",
	)

	return f
}

func (c *Command) Run(args []string) int {
	f := c.Flags()
	if err := f.Parse(args); err != nil {
		c.UI.Error(fmt.Sprintf("error parsing flags: %v", err))
		return 1
	}

	cfg, err := config.Load(c.flagConfig)
	if err != nil {
		c.UI.Error(fmt.Sprintf("error loading config: %v", err))
		return 1
	}
	if err := applyFlags(cfg, c.flagAddr, c.flagLogLevel); err != nil {
		c.UI.Error(err.Error())
		return 1
	}

	log := c.Log
	log.SetLevel(hclog.LevelFromString(cfg.LogLevel))

	srv := server.Server{
		Backend: backend.NewLazy(
			server.NewBackendFactory(cfg, afero.NewOsFs(), log.Named("backend")),
			log.Named("backend"),
		),
		Config: cfg,
		Logger: log.Named("api"),
	}

	httpSrv := &http.Server{
		Addr:              cfg.Address(),
		Handler:           api.NewRouter(srv),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening",
			"address", httpSrv.Addr,
			"api_prefix", cfg.Server.APIPrefix,
			"database", cfg.Database.Driver,
			"storage", cfg.Storage.Provider,
		)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			c.UI.Error(fmt.Sprintf("error starting listener: %v", err))
			return 1
		}
		return 0
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(),
		time.Duration(cfg.Server.ShutdownTimeoutSeconds)*time.Second)
	defer cancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		c.UI.Error(fmt.Sprintf("error shutting down server: %v", err))
		return 1
	}
	if err := srv.Backend.Close(); err != nil {
		c.UI.Error(fmt.Sprintf("error closing backing store: %v", err))
		return 1
	}
	return 0
}

// applyFlags overrides cfg with command line flags and revalidates it.
func applyFlags(cfg *config.Config, addr, logLevel string) error {
	if addr != "" {
		host, portStr, err := net.SplitHostPort(addr)
		if err != nil {
			return fmt.Errorf("invalid -addr %q: %w", addr, err)
		}
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return fmt.Errorf("invalid -addr port %q: %w", portStr, err)
		}
		cfg.Server.Host = host
		cfg.Server.Port = port
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}
