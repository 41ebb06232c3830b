// Package local provides a filesystem blob store.
package local

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/afero"

	"github.com/hashicorp-forge/docgate/pkg/backend"
	"github.com/hashicorp-forge/docgate/pkg/blobstore"
)

// Config configures the local blob store.
type Config struct {
	// Root is the directory blobs are written under.
	Root string

	// BaseURL is prepended to keys by URL. When empty, URL returns a file://
	// URL for the blob.
	BaseURL string
}

// Store keeps blobs on an afero filesystem rooted at Config.Root.
type Store struct {
	fs      afero.Fs
	root    string
	baseURL string
	logger  hclog.Logger
}

var _ blobstore.Store = (*Store)(nil)

// New returns a Store on fs. Use afero.NewOsFs() for the real filesystem.
func New(fs afero.Fs, cfg Config, logger hclog.Logger) (*Store, error) {
	if cfg.Root == "" {
		return nil, fmt.Errorf("local storage root is required")
	}
	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	if err := fs.MkdirAll(cfg.Root, 0o755); err != nil {
		return nil, fmt.Errorf("error creating storage root %q: %w", cfg.Root, err)
	}

	return &Store{
		fs:      afero.NewBasePathFs(fs, cfg.Root),
		root:    cfg.Root,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		logger:  logger.Named("local-blobstore"),
	}, nil
}

// Name returns "local".
func (s *Store) Name() string {
	return "local"
}

func (s *Store) Put(ctx context.Context, key string, content []byte, contentType string) error {
	if key == "" {
		return fmt.Errorf("blob key is required")
	}

	name := "/" + key
	if err := s.fs.MkdirAll(path.Dir(name), 0o755); err != nil {
		return fmt.Errorf("error creating folder for %q: %w", key, err)
	}
	if err := afero.WriteFile(s.fs, name, content, 0o644); err != nil {
		return fmt.Errorf("error writing blob %q: %w", key, err)
	}

	s.logger.Debug("blob written", "key", key, "bytes", len(content), "content_type", contentType)
	return nil
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	content, err := afero.ReadFile(s.fs, "/"+key)
	if os.IsNotExist(err) {
		return nil, backend.NotFound("GetFileBlob", "file not found: "+key)
	}
	if err != nil {
		return nil, fmt.Errorf("error reading blob %q: %w", key, err)
	}
	return content, nil
}

func (s *Store) URL(ctx context.Context, key string) (string, error) {
	if _, err := s.fs.Stat("/" + key); err != nil {
		if os.IsNotExist(err) {
			return "", backend.NotFound("GetFileURL", "file not found: "+key)
		}
		return "", fmt.Errorf("error checking blob %q: %w", key, err)
	}

	if s.baseURL == "" {
		abs, err := filepath.Abs(filepath.Join(s.root, filepath.FromSlash(key)))
		if err != nil {
			return "", fmt.Errorf("error resolving blob path: %w", err)
		}
		u := url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}
		return u.String(), nil
	}

	var escaped []string
	for _, seg := range strings.Split(key, "/") {
		escaped = append(escaped, url.PathEscape(seg))
	}
	return s.baseURL + "/" + strings.Join(escaped, "/"), nil
}
