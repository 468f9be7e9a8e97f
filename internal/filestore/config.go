package filestore

import (
	"fmt"
	"strings"

	"github.com/koustreak/metadump/internal/errs"
)

// Provider identifies the object storage backend.
type Provider string

const (
	ProviderMinIO Provider = "minio"
)

// Config holds the settings of the optional object-store upload.
// A Config with an empty Bucket disables the upload.
type Config struct {
	// Provider is the storage backend (e.g. ProviderMinIO).
	Provider Provider

	// Endpoint is the host:port of the storage server.
	// Example: "localhost:9000" for local MinIO.
	Endpoint string

	AccessKey string
	SecretKey string

	// UseSSL controls whether TLS is used for the connection.
	UseSSL bool

	// Region is used by region-aware backends (e.g. AWS S3).
	// Leave empty for MinIO.
	Region string

	// Bucket receives the dump. It is created when missing.
	Bucket string

	// Prefix is prepended to the object key, e.g. "dumps/".
	Prefix string
}

// DefaultConfig returns a MinIO config without TLS.
func DefaultConfig(endpoint, accessKey, secretKey, bucket string) *Config {
	return &Config{
		Provider:  ProviderMinIO,
		Endpoint:  endpoint,
		AccessKey: accessKey,
		SecretKey: secretKey,
		Bucket:    bucket,
	}
}

// Enabled reports whether an upload target is configured.
func (c *Config) Enabled() bool {
	return c != nil && c.Bucket != ""
}

// Validate checks that an enabled Config is usable.
func (c *Config) Validate() error {
	if !c.Enabled() {
		return nil
	}
	if c.Provider != "" && c.Provider != ProviderMinIO {
		return errs.New(errs.ErrKindInvalidInput, fmt.Sprintf("unsupported storage provider %q", c.Provider))
	}
	if strings.TrimSpace(c.Endpoint) == "" {
		return errs.New(errs.ErrKindInvalidInput, "upload endpoint is required when an upload bucket is set")
	}
	if strings.Contains(c.Endpoint, "://") {
		return errs.New(errs.ErrKindInvalidInput, "upload endpoint must be host:port without a scheme")
	}
	return nil
}

// Key returns the object key for name.
func (c *Config) Key(name string) string {
	if c.Prefix == "" {
		return name
	}
	return strings.TrimSuffix(c.Prefix, "/") + "/" + name
}
