package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/koustreak/metadump/internal/database"
	"github.com/koustreak/metadump/internal/errs"
)

// EnvPrefix prefixes every environment variable read by metadump.
const EnvPrefix = "METADUMP_"

// Environment variable names.
const (
	EnvEngine          = EnvPrefix + "ENGINE"
	EnvHost            = EnvPrefix + "HOST"
	EnvPort            = EnvPrefix + "PORT"
	EnvUser            = EnvPrefix + "USER"
	EnvPassword        = EnvPrefix + "PASSWORD"
	EnvDatabase        = EnvPrefix + "DATABASE"
	EnvSSLMode         = EnvPrefix + "SSLMODE"
	EnvConnectTimeout  = EnvPrefix + "CONNECT_TIMEOUT"
	EnvUploadEndpoint  = EnvPrefix + "UPLOAD_ENDPOINT"
	EnvUploadBucket    = EnvPrefix + "UPLOAD_BUCKET"
	EnvUploadAccessKey = EnvPrefix + "UPLOAD_ACCESS_KEY"
	EnvUploadSecretKey = EnvPrefix + "UPLOAD_SECRET_KEY"
)

// LookupFunc matches os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// LoadDotEnv loads path into the process environment without overriding
// variables that are already set. A missing file is only an error when
// required is true.
func LoadDotEnv(path string, required bool) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) && !required {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return errs.Wrap(errs.ErrKindInvalidInput, fmt.Sprintf("load env file %s", path), err)
	}
	return nil
}

// FromEnv reads the METADUMP_* connection variables through lookup.
func FromEnv(lookup LookupFunc) (Partial, error) {
	var p Partial
	get := func(key string) string {
		v, _ := lookup(key)
		return v
	}

	if v := get(EnvEngine); v != "" {
		engine, err := database.ParseEngine(v)
		if err != nil {
			return Partial{}, fmt.Errorf("%s: %w", EnvEngine, err)
		}
		p.Engine = engine
	}
	if v := get(EnvPort); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil || port <= 0 || port > 65535 {
			return Partial{}, errs.New(errs.ErrKindInvalidInput, fmt.Sprintf("%s: invalid port %q", EnvPort, v))
		}
		p.Port = port
	}
	if v := get(EnvConnectTimeout); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Partial{}, errs.Wrap(errs.ErrKindInvalidInput, EnvConnectTimeout, err)
		}
		p.ConnectTimeout = d
	}
	if v, ok := lookup(EnvPassword); ok {
		p.Password = &v
	}

	p.Host = get(EnvHost)
	p.User = get(EnvUser)
	p.Database = get(EnvDatabase)
	p.SSLMode = get(EnvSSLMode)
	return p, nil
}

// UploadFromEnv reads the METADUMP_UPLOAD_* variables through lookup.
func UploadFromEnv(lookup LookupFunc) Upload {
	get := func(key string) string {
		v, _ := lookup(key)
		return v
	}
	return Upload{
		Endpoint:  get(EnvUploadEndpoint),
		Bucket:    get(EnvUploadBucket),
		AccessKey: get(EnvUploadAccessKey),
		SecretKey: get(EnvUploadSecretKey),
	}
}
