package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/koustreak/metadump/internal/database"
	"github.com/koustreak/metadump/internal/errs"
	"github.com/koustreak/metadump/internal/filestore"
	"go.yaml.in/yaml/v3"
)

// File is the YAML configuration file passed with --config.
//
//	engine: postgres
//	host: db.internal
//	port: 5432
//	user: app
//	database: shop
//	connect_timeout: 5s
//	output: metadata.json
//	log:
//	  level: debug
//	upload:
//	  endpoint: localhost:9000
//	  bucket: dumps
type File struct {
	Engine         string        `yaml:"engine,omitempty"`
	Host           string        `yaml:"host,omitempty"`
	Port           int           `yaml:"port,omitempty"`
	User           string        `yaml:"user,omitempty"`
	Password       *string       `yaml:"password,omitempty"`
	Database       string        `yaml:"database,omitempty"`
	SSLMode        string        `yaml:"sslmode,omitempty"`
	ConnectTimeout time.Duration `yaml:"connect_timeout,omitempty"`

	Output string     `yaml:"output,omitempty"`
	Log    LogSection `yaml:"log,omitempty"`
	Upload Upload     `yaml:"upload,omitempty"`
}

// LogSection configures internal/logger.
type LogSection struct {
	Level  string `yaml:"level,omitempty"`
	Format string `yaml:"format,omitempty"`
}

// Upload configures the optional object-store copy of the dump.
type Upload struct {
	Endpoint  string `yaml:"endpoint,omitempty"`
	AccessKey string `yaml:"access_key,omitempty"`
	SecretKey string `yaml:"secret_key,omitempty"`
	Bucket    string `yaml:"bucket,omitempty"`
	Prefix    string `yaml:"prefix,omitempty"`
	Region    string `yaml:"region,omitempty"`
	UseSSL    bool   `yaml:"use_ssl,omitempty"`
}

// LoadFile reads and strictly decodes the YAML file at path. An empty path
// yields an empty File.
func LoadFile(path string) (*File, error) {
	if path == "" {
		return &File{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindInvalidInput, fmt.Sprintf("read config %s", path), err)
	}

	var f File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, errs.Wrap(errs.ErrKindInvalidInput, fmt.Sprintf("parse config %s", path), err)
	}
	return &f, nil
}

// Partial returns the connection parameters set in f.
func (f *File) Partial() (Partial, error) {
	p := Partial{
		Host:           f.Host,
		Port:           f.Port,
		User:           f.User,
		Password:       f.Password,
		Database:       f.Database,
		SSLMode:        f.SSLMode,
		ConnectTimeout: f.ConnectTimeout,
	}
	if f.Engine != "" {
		engine, err := database.ParseEngine(f.Engine)
		if err != nil {
			return Partial{}, err
		}
		p.Engine = engine
	}
	if f.Port < 0 || f.Port > 65535 {
		return Partial{}, errs.New(errs.ErrKindInvalidInput, fmt.Sprintf("invalid port %d in config file", f.Port))
	}
	return p, nil
}

// Store converts u into a filestore.Config.
func (u Upload) Store() filestore.Config {
	return filestore.Config{
		Provider:  filestore.ProviderMinIO,
		Endpoint:  u.Endpoint,
		AccessKey: u.AccessKey,
		SecretKey: u.SecretKey,
		UseSSL:    u.UseSSL,
		Region:    u.Region,
		Bucket:    u.Bucket,
		Prefix:    u.Prefix,
	}
}

// Merge returns u with every non-empty field of over replacing it.
func (u Upload) Merge(over Upload) Upload {
	if over.Endpoint != "" {
		u.Endpoint = over.Endpoint
	}
	if over.AccessKey != "" {
		u.AccessKey = over.AccessKey
	}
	if over.SecretKey != "" {
		u.SecretKey = over.SecretKey
	}
	if over.Bucket != "" {
		u.Bucket = over.Bucket
	}
	if over.Prefix != "" {
		u.Prefix = over.Prefix
	}
	if over.Region != "" {
		u.Region = over.Region
	}
	if over.UseSSL {
		u.UseSSL = true
	}
	return u
}
