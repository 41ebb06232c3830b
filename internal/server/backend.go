package server

import (
	"context"
	"fmt"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/afero"

	"github.com/hashicorp-forge/docgate/internal/config"
	"github.com/hashicorp-forge/docgate/internal/migrate"
	"github.com/hashicorp-forge/docgate/pkg/backend"
	"github.com/hashicorp-forge/docgate/pkg/backend/sdk"
	"github.com/hashicorp-forge/docgate/pkg/blobstore"
	"github.com/hashicorp-forge/docgate/pkg/blobstore/local"
	"github.com/hashicorp-forge/docgate/pkg/blobstore/s3"
	"github.com/hashicorp-forge/docgate/pkg/database"
	"github.com/hashicorp-forge/docgate/pkg/docstore"
)

// backendInitTimeout bounds remote checks made while building the backing
// store.
const backendInitTimeout = 30 * time.Second

// connectDatabase is replaced in tests.
var connectDatabase = database.Connect

// NewBackendFactory returns a factory that builds the backing store described
// by cfg: a gorm document store plus an S3 or local blob store. fs backs
// local blob storage. A failed build closes the database pool it opened.
func NewBackendFactory(cfg *config.Config, fs afero.Fs, logger hclog.Logger) backend.Factory {
	return func() (_ backend.Client, retErr error) {
		db, err := connectDatabase(cfg.DatabaseConfig(), logger.Named("database"))
		if err != nil {
			return nil, fmt.Errorf("error connecting to database: %w", err)
		}

		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("error getting database handle: %w", err)
		}
		defer func() {
			if retErr == nil {
				return
			}
			if err := sqlDB.Close(); err != nil {
				logger.Warn("error closing database after failed initialization", "error", err)
			}
		}()

		if err := migrate.RunMigrations(sqlDB, cfg.Database.Driver); err != nil {
			return nil, fmt.Errorf("error migrating document store: %w", err)
		}
		version, dirty, err := migrate.GetMigrationVersion(sqlDB, cfg.Database.Driver)
		if err != nil {
			return nil, fmt.Errorf("error reading schema version: %w", err)
		}
		docs := docstore.New(db, logger)

		blobs, err := newBlobStore(cfg, fs, logger)
		if err != nil {
			return nil, err
		}

		verifier := sdk.NewTokenVerifier(sdk.VerifierConfig{
			Secret:     cfg.Auth.JWTSecret,
			ScopeClaim: cfg.Auth.ScopeClaim,
			Issuer:     cfg.Auth.Issuer,
		})
		if verifier.Passthrough() {
			logger.Warn("no jwt_secret configured, credentials are not verified")
		}

		logger.Info("backing store ready",
			"database", cfg.Database.Driver,
			"schema_version", version,
			"schema_dirty", dirty,
			"storage", blobs.Name(),
		)
		return sdk.New(docs, blobs, verifier, logger), nil
	}
}

func newBlobStore(cfg *config.Config, fs afero.Fs, logger hclog.Logger) (blobstore.Store, error) {
	switch cfg.Storage.Provider {
	case config.StorageProviderS3:
		ctx, cancel := context.WithTimeout(context.Background(), backendInitTimeout)
		defer cancel()

		store, err := s3.New(ctx, cfg.Storage.S3, logger)
		if err != nil {
			return nil, fmt.Errorf("error initializing s3 storage: %w", err)
		}
		return store, nil

	case config.StorageProviderLocal:
		store, err := local.New(fs, local.Config{
			Root:    cfg.Storage.Local.Root,
			BaseURL: cfg.Storage.Local.BaseURL,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("error initializing local storage: %w", err)
		}
		return store, nil

	default:
		return nil, fmt.Errorf("unsupported storage provider: %q", cfg.Storage.Provider)
	}
}
