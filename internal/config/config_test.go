package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.hcl")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	require.NoError(t, cfg.Validate())
	assert.Equal(t, ":8000", cfg.Address())
	assert.Equal(t, "/api/test", cfg.Server.APIPrefix)
	assert.Equal(t, "Authorization", cfg.Server.CredentialHeader)
	assert.Equal(t, "FN7 Backend Server", cfg.ServiceName)
	assert.Equal(t, "INFO", cfg.LogLevel)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "docgate.db", cfg.Database.Path)
	assert.Equal(t, StorageProviderLocal, cfg.Storage.Provider)
	assert.Equal(t, "storage", cfg.Storage.Local.Root)
	assert.Equal(t, []string{"*"}, cfg.Server.CORSAllowedOrigins)
	assert.Equal(t, int64(32<<20), cfg.MaxUploadBytes())
	assert.False(t, cfg.Debug())
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
log_level    = "DEBUG"
service_name = "docs"

server {
  host       = "127.0.0.1"
  port       = 9000
  api_prefix = "/v1"
}

database {
  driver = "postgres"
  dsn    = "host=db user=docgate dbname=docgate"
}

storage {
  provider = "s3"

  s3 {
    region = "us-west-2"
    bucket = "docs"
  }
}

auth {
  jwt_secret  = "secret"
  scope_claim = "tenant"
}
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9000", cfg.Address())
	assert.Equal(t, "/v1", cfg.Server.APIPrefix)
	assert.Equal(t, "docs", cfg.ServiceName)
	assert.True(t, cfg.Debug())
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "docs", cfg.Storage.S3.Bucket)
	assert.Equal(t, "secret", cfg.Auth.JWTSecret)
	assert.Equal(t, "tenant", cfg.Auth.ScopeClaim)

	// Unset fields still get defaults.
	assert.Equal(t, "Authorization", cfg.Server.CredentialHeader)
	assert.Equal(t, "storage", cfg.Storage.Local.Root)
}

func TestLoad_NoFile(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default().Address(), cfg.Address())
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("PORT", "9100")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("DOCGATE_DATABASE_DRIVER", "postgres")
	t.Setenv("DOCGATE_DATABASE_DSN", "host=db dbname=docgate")
	t.Setenv("DOCGATE_STORAGE_PROVIDER", "s3")
	t.Setenv("STORAGE_BUCKET", "env-bucket")
	t.Setenv("AWS_REGION", "eu-west-1")
	t.Setenv("DOCGATE_JWT_SECRET", "env-secret")
	t.Setenv("DOCGATE_CORS_ALLOWED_ORIGINS", "https://a.example.com,https://b.example.com")

	path := writeConfig(t, `
server {
  port = 9000
}
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9100, cfg.Server.Port)
	assert.Equal(t, "DEBUG", cfg.LogLevel)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "host=db dbname=docgate", cfg.Database.DSN)
	assert.Equal(t, "s3", cfg.Storage.Provider)
	assert.Equal(t, "env-bucket", cfg.Storage.S3.Bucket)
	assert.Equal(t, "eu-west-1", cfg.Storage.S3.Region)
	assert.Equal(t, "env-secret", cfg.Auth.JWTSecret)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.Server.CORSAllowedOrigins)
}

func TestLoad_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.hcl"))
		assert.ErrorContains(t, err, "error loading config")
	})

	t.Run("bad syntax", func(t *testing.T) {
		_, err := Load(writeConfig(t, `server {`))
		assert.Error(t, err)
	})

	t.Run("bad env value", func(t *testing.T) {
		t.Setenv("PORT", "eighty")
		_, err := Load("")
		assert.ErrorContains(t, err, "error parsing environment")
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Config)
		wantError []string
	}{
		{
			name:      "bad log level",
			mutate:    func(c *Config) { c.LogLevel = "LOUD" },
			wantError: []string{"invalid log_level"},
		},
		{
			name:      "bad prefix",
			mutate:    func(c *Config) { c.Server.APIPrefix = "api" },
			wantError: []string{"api_prefix"},
		},
		{
			name:      "unknown driver",
			mutate:    func(c *Config) { c.Database.Driver = "mysql" },
			wantError: []string{"unsupported database driver"},
		},
		{
			name: "postgres without dsn",
			mutate: func(c *Config) {
				c.Database.Driver = "postgres"
			},
			wantError: []string{"dsn or host and dbname"},
		},
		{
			name:      "s3 without bucket",
			mutate:    func(c *Config) { c.Storage.Provider = StorageProviderS3 },
			wantError: []string{"invalid s3 storage"},
		},
		{
			name: "every problem reported",
			mutate: func(c *Config) {
				c.LogLevel = "LOUD"
				c.Server.Port = 0
				c.Storage.Provider = "ftp"
			},
			wantError: []string{"invalid log_level", "server port", "unsupported storage provider"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := cfg.Validate()
			require.Error(t, err)
			for _, want := range tt.wantError {
				assert.Contains(t, err.Error(), want)
			}
		})
	}
}

func TestExample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "docgate.hcl")
	require.NoError(t, WriteExample(path))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Empty(t, cfg.Storage.Local.BaseURL, "example must not point get-url at an unserved path")
	assert.Equal(t, "org_id", cfg.Auth.ScopeClaim)
}
