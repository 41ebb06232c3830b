// Package config loads docgate configuration from an optional HCL file and
// the environment.
package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-multierror"
	"github.com/hashicorp/hcl/v2/hclsimple"

	"github.com/hashicorp-forge/docgate/pkg/blobstore/s3"
	"github.com/hashicorp-forge/docgate/pkg/database"
)

// Defaults.
const (
	DefaultServiceName      = "FN7 Backend Server"
	DefaultLogLevel         = "INFO"
	DefaultPort             = 8000
	DefaultAPIPrefix        = "/api/test"
	DefaultCredentialHeader = "Authorization"
	DefaultMaxUploadMB      = 32
	DefaultShutdownSeconds  = 30
	DefaultSQLitePath       = "docgate.db"
	DefaultStorageRoot      = "storage"

	StorageProviderLocal = "local"
	StorageProviderS3    = "s3"
)

// Config is the top-level configuration.
type Config struct {
	// LogLevel is one of TRACE, DEBUG, INFO, WARN, ERROR. DEBUG also exposes
	// internal error details in responses.
	LogLevel string `hcl:"log_level,optional" env:"LOG_LEVEL"`

	// ServiceName is reported by the health endpoint.
	ServiceName string `hcl:"service_name,optional" env:"DOCGATE_SERVICE_NAME"`

	Server   *Server   `hcl:"server,block"`
	Database *Database `hcl:"database,block"`
	Storage  *Storage  `hcl:"storage,block"`
	Auth     *Auth     `hcl:"auth,block"`
}

// Server configures the HTTP listener and the gateway surface.
type Server struct {
	Host string `hcl:"host,optional" env:"HOST"`
	Port int    `hcl:"port,optional" env:"PORT"`

	// APIPrefix is prepended to every operation route.
	APIPrefix string `hcl:"api_prefix,optional" env:"DOCGATE_API_PREFIX"`

	// CredentialHeader carries the raw token, with no scheme prefix.
	CredentialHeader string `hcl:"credential_header,optional"`

	// MaxUploadMB caps every operation's request body, a whole multipart
	// upload included.
	MaxUploadMB int `hcl:"max_upload_mb,optional" env:"DOCGATE_MAX_UPLOAD_MB"`

	CORSAllowedOrigins []string `hcl:"cors_allowed_origins,optional" env:"DOCGATE_CORS_ALLOWED_ORIGINS" envSeparator:","`

	ShutdownTimeoutSeconds int `hcl:"shutdown_timeout_seconds,optional"`
}

// Database configures the document store.
type Database struct {
	Driver   string `hcl:"driver,optional" env:"DOCGATE_DATABASE_DRIVER"` // "sqlite" or "postgres"
	DSN      string `hcl:"dsn,optional" env:"DOCGATE_DATABASE_DSN"`
	Path     string `hcl:"path,optional" env:"DOCGATE_DATABASE_PATH"`
	Host     string `hcl:"host,optional"`
	Port     int    `hcl:"port,optional"`
	User     string `hcl:"user,optional"`
	Password string `hcl:"password,optional" env:"DOCGATE_DATABASE_PASSWORD"`
	DBName   string `hcl:"dbname,optional"`
	SSLMode  string `hcl:"sslmode,optional"`

	MaxIdleConns int `hcl:"max_idle_conns,optional"`
	MaxOpenConns int `hcl:"max_open_conns,optional"`
}

// Storage configures the blob store.
type Storage struct {
	Provider string        `hcl:"provider,optional" env:"DOCGATE_STORAGE_PROVIDER"` // "local" or "s3"
	S3       *s3.Config    `hcl:"s3,block"`
	Local    *LocalStorage `hcl:"local,block"`
}

// LocalStorage configures the filesystem blob store.
type LocalStorage struct {
	Root    string `hcl:"root,optional" env:"DOCGATE_STORAGE_ROOT"`
	BaseURL string `hcl:"base_url,optional" env:"DOCGATE_STORAGE_BASE_URL"`
}

// Auth configures how the backing store verifies credentials.
type Auth struct {
	// JWTSecret enables HMAC JWT verification. Empty means passthrough.
	JWTSecret  string `hcl:"jwt_secret,optional" env:"DOCGATE_JWT_SECRET"`
	ScopeClaim string `hcl:"scope_claim,optional"`
	Issuer     string `hcl:"issuer,optional"`
}

// Default returns the zero-config configuration.
func Default() *Config {
	cfg := &Config{}
	cfg.SetDefaults()
	return cfg
}

// Load reads path (if non-empty), fills defaults, applies environment
// overrides and validates the result.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if path != "" {
		if err := hclsimple.DecodeFile(path, nil, cfg); err != nil {
			return nil, fmt.Errorf("error loading config %q: %w", path, err)
		}
	}
	cfg.SetDefaults()

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("error parsing environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SetDefaults fills every unset field.
func (c *Config) SetDefaults() {
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	if c.ServiceName == "" {
		c.ServiceName = DefaultServiceName
	}

	if c.Server == nil {
		c.Server = &Server{}
	}
	if c.Server.Port == 0 {
		c.Server.Port = DefaultPort
	}
	if c.Server.APIPrefix == "" {
		c.Server.APIPrefix = DefaultAPIPrefix
	}
	if c.Server.CredentialHeader == "" {
		c.Server.CredentialHeader = DefaultCredentialHeader
	}
	if c.Server.MaxUploadMB == 0 {
		c.Server.MaxUploadMB = DefaultMaxUploadMB
	}
	if len(c.Server.CORSAllowedOrigins) == 0 {
		c.Server.CORSAllowedOrigins = []string{"*"}
	}
	if c.Server.ShutdownTimeoutSeconds == 0 {
		c.Server.ShutdownTimeoutSeconds = DefaultShutdownSeconds
	}

	if c.Database == nil {
		c.Database = &Database{}
	}
	if c.Database.Driver == "" {
		c.Database.Driver = database.DriverSQLite
	}
	if c.Database.Driver == database.DriverSQLite && c.Database.Path == "" {
		c.Database.Path = DefaultSQLitePath
	}
	if c.Database.Driver == database.DriverPostgres && c.Database.Port == 0 {
		c.Database.Port = 5432
	}

	if c.Storage == nil {
		c.Storage = &Storage{}
	}
	if c.Storage.Provider == "" {
		c.Storage.Provider = StorageProviderLocal
	}
	if c.Storage.S3 == nil {
		c.Storage.S3 = &s3.Config{}
	}
	if c.Storage.Local == nil {
		c.Storage.Local = &LocalStorage{}
	}
	if c.Storage.Local.Root == "" {
		c.Storage.Local.Root = DefaultStorageRoot
	}

	if c.Auth == nil {
		c.Auth = &Auth{}
	}
}

// Validate reports every configuration problem at once.
func (c *Config) Validate() error {
	var result *multierror.Error

	if hclog.LevelFromString(c.LogLevel) == hclog.NoLevel {
		result = multierror.Append(result, fmt.Errorf("invalid log_level: %q", c.LogLevel))
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		result = multierror.Append(result, fmt.Errorf("server port must be in [1, 65535], got: %d", c.Server.Port))
	}
	if !strings.HasPrefix(c.Server.APIPrefix, "/") {
		result = multierror.Append(result, fmt.Errorf("api_prefix must start with \"/\", got: %q", c.Server.APIPrefix))
	}
	if strings.TrimSpace(c.Server.CredentialHeader) == "" {
		result = multierror.Append(result, fmt.Errorf("credential_header must not be empty"))
	}
	if c.Server.MaxUploadMB < 0 {
		result = multierror.Append(result, fmt.Errorf("max_upload_mb must be positive, got: %d", c.Server.MaxUploadMB))
	}

	switch c.Database.Driver {
	case database.DriverSQLite:
		if c.Database.Path == "" {
			result = multierror.Append(result, fmt.Errorf("database path is required for sqlite"))
		}
	case database.DriverPostgres:
		if c.Database.DSN == "" && (c.Database.Host == "" || c.Database.DBName == "") {
			result = multierror.Append(result, fmt.Errorf("database dsn or host and dbname are required for postgres"))
		}
	default:
		result = multierror.Append(result, fmt.Errorf("unsupported database driver: %q", c.Database.Driver))
	}

	switch c.Storage.Provider {
	case StorageProviderLocal:
		if c.Storage.Local.Root == "" {
			result = multierror.Append(result, fmt.Errorf("local storage root is required"))
		}
	case StorageProviderS3:
		if err := c.Storage.S3.Validate(); err != nil {
			result = multierror.Append(result, fmt.Errorf("invalid s3 storage: %w", err))
		}
	default:
		result = multierror.Append(result, fmt.Errorf("unsupported storage provider: %q", c.Storage.Provider))
	}

	return result.ErrorOrNil()
}

// Address returns the listen address.
func (c *Config) Address() string {
	return net.JoinHostPort(c.Server.Host, strconv.Itoa(c.Server.Port))
}

// Debug reports whether internal error details may be returned to callers.
func (c *Config) Debug() bool {
	return strings.EqualFold(c.LogLevel, "DEBUG") || strings.EqualFold(c.LogLevel, "TRACE")
}

// MaxUploadBytes returns the multipart memory limit in bytes.
func (c *Config) MaxUploadBytes() int64 {
	return int64(c.Server.MaxUploadMB) << 20
}

// DatabaseConfig converts the database block for pkg/database.
func (c *Config) DatabaseConfig() database.Config {
	return database.Config{
		Driver:       c.Database.Driver,
		DSN:          c.Database.DSN,
		Path:         c.Database.Path,
		Host:         c.Database.Host,
		Port:         c.Database.Port,
		User:         c.Database.User,
		Password:     c.Database.Password,
		DBName:       c.Database.DBName,
		SSLMode:      c.Database.SSLMode,
		MaxIdleConns: c.Database.MaxIdleConns,
		MaxOpenConns: c.Database.MaxOpenConns,
	}
}

// WriteExample writes an example configuration file.
func WriteExample(path string) error {
	return os.WriteFile(path, []byte(Example), 0o644)
}

// Example is a commented example configuration.
const Example = `# docgate configuration

log_level    = "INFO"
service_name = "FN7 Backend Server"

server {
  port                 = 8000
  api_prefix           = "/api/test"
  max_upload_mb        = 32
  cors_allowed_origins = ["*"]
}

database {
  driver = "sqlite"
  path   = "docgate.db"
}

storage {
  provider = "local"

  local {
    root = "storage"
    # Set base_url only when another server exposes root over HTTP.
    # Without it get-url returns file:// URLs.
    # base_url = "https://files.example.com"
  }

  s3 {
    region = "us-east-1"
    bucket = "docgate"
  }
}

auth {
  # jwt_secret = "change-me"
  scope_claim = "org_id"
}
`
