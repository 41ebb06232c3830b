// Package s3 provides an S3-compatible blob store.
package s3

import (
	"fmt"
	"time"
)

// Config contains configuration for the S3 blob store.
type Config struct {
	// S3 Connection Settings
	Endpoint  string `hcl:"endpoint,optional" env:"S3_ENDPOINT"`  // Custom endpoint (MinIO etc.); empty uses AWS
	Region    string `hcl:"region,optional" env:"AWS_REGION"`     // AWS region (e.g., "us-west-2")
	Bucket    string `hcl:"bucket,optional" env:"STORAGE_BUCKET"` // S3 bucket name
	Prefix    string `hcl:"prefix,optional"`                      // Optional key prefix (e.g., "uploads/")
	AccessKey string `hcl:"access_key,optional"`                  // Access key ID
	SecretKey string `hcl:"secret_key,optional"`                  // Secret access key

	// URLExpiry is how long presigned retrieval URLs stay valid (default: 15m).
	URLExpiry string `hcl:"url_expiry,optional" env:"S3_URL_EXPIRY"`

	RequestTimeoutSeconds int  `hcl:"request_timeout_seconds,optional"` // Request timeout (default: 30)
	InsecureSkipVerify    bool `hcl:"insecure_skip_verify,optional"`    // Skip TLS verification (testing only)
	SkipBucketCheck       bool `hcl:"skip_bucket_check,optional"`       // Don't HeadBucket on startup
}

// Validate validates the S3 configuration.
func (c *Config) Validate() error {
	if c.Region == "" {
		return fmt.Errorf("region is required")
	}
	if c.Bucket == "" {
		return fmt.Errorf("bucket is required")
	}
	if c.URLExpiry != "" {
		d, err := time.ParseDuration(c.URLExpiry)
		if err != nil {
			return fmt.Errorf("invalid url_expiry: %w", err)
		}
		if d <= 0 {
			return fmt.Errorf("url_expiry must be positive, got: %v", d)
		}
	}
	return nil
}

// SetDefaults sets default values for optional configuration fields.
func (c *Config) SetDefaults() {
	if c.RequestTimeoutSeconds == 0 {
		c.RequestTimeoutSeconds = 30
	}
	if c.URLExpiry == "" {
		c.URLExpiry = "15m"
	}
}

func (c *Config) urlExpiry() time.Duration {
	d, err := time.ParseDuration(c.URLExpiry)
	if err != nil || d <= 0 {
		return 15 * time.Minute
	}
	return d
}
