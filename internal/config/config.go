// Package config gathers connection parameters from a YAML file, the
// environment and command-line flags before anything is prompted for.
package config

import (
	"time"

	"github.com/koustreak/metadump/internal/database"
)

// Partial holds the connection parameters supplied so far. Zero fields
// are still unknown; Password is nil until one has been supplied, since
// an empty password is a legitimate answer.
type Partial struct {
	Engine         database.Engine
	Host           string
	Port           int
	User           string
	Password       *string
	Database       string
	SSLMode        string
	ConnectTimeout time.Duration
}

// Merge returns p with every field that is set in over replacing it.
func (p Partial) Merge(over Partial) Partial {
	if over.Engine != "" {
		p.Engine = over.Engine
	}
	if over.Host != "" {
		p.Host = over.Host
	}
	if over.Port != 0 {
		p.Port = over.Port
	}
	if over.User != "" {
		p.User = over.User
	}
	if over.Password != nil {
		p.Password = over.Password
	}
	if over.Database != "" {
		p.Database = over.Database
	}
	if over.SSLMode != "" {
		p.SSLMode = over.SSLMode
	}
	if over.ConnectTimeout != 0 {
		p.ConnectTimeout = over.ConnectTimeout
	}
	return p
}

// Config converts p into a validated database.Config.
func (p Partial) Config() (*database.Config, error) {
	cfg := &database.Config{
		Engine:         p.Engine,
		Host:           p.Host,
		Port:           p.Port,
		User:           p.User,
		Database:       p.Database,
		SSLMode:        p.SSLMode,
		ConnectTimeout: p.ConnectTimeout,
	}
	if p.Password != nil {
		cfg.Password = *p.Password
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
