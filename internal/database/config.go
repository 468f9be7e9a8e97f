package database

import (
	"fmt"
	"strings"
	"time"

	"github.com/koustreak/metadump/internal/errs"
)

// Engine identifies the database engine family.
type Engine string

const (
	EnginePostgres  Engine = "postgres"
	EngineMySQL     Engine = "mysql"
	EngineSQLServer Engine = "sqlserver"
)

// Engines lists the supported engines in prompt order.
var Engines = []Engine{EngineMySQL, EnginePostgres, EngineSQLServer}

// DefaultConnectTimeout bounds connection establishment when the caller
// does not set Config.ConnectTimeout.
const DefaultConnectTimeout = 10 * time.Second

// DefaultPort returns the engine's well-known TCP port.
func (e Engine) DefaultPort() int {
	switch e {
	case EngineMySQL:
		return 3306
	case EnginePostgres:
		return 5432
	case EngineSQLServer:
		return 1433
	default:
		return 0
	}
}

// Label is the name shown to the operator.
func (e Engine) Label() string {
	if e == EngineSQLServer {
		return "sql server"
	}
	return string(e)
}

// Valid reports whether e is one of the supported engines.
func (e Engine) Valid() bool {
	return e.DefaultPort() != 0
}

// ParseEngine accepts canonical engine names plus common aliases
// ("pg", "postgresql", "mssql", "sql server"), case-insensitively.
func ParseEngine(s string) (Engine, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "mysql", "mariadb":
		return EngineMySQL, nil
	case "postgres", "postgresql", "pg":
		return EnginePostgres, nil
	case "sqlserver", "sql server", "sql-server", "mssql":
		return EngineSQLServer, nil
	}
	return "", errs.New(errs.ErrKindInvalidInput, fmt.Sprintf("unsupported database engine %q", s))
}

// Config holds everything needed to open the single catalog connection.
type Config struct {
	Engine   Engine
	Host     string
	Port     int
	User     string
	Password string
	Database string

	// SSLMode is passed through to Postgres; ignored by other engines.
	SSLMode string

	// ConnectTimeout is the time limit for establishing the connection.
	ConnectTimeout time.Duration
}

// Validate checks the fields every engine requires.
func (c *Config) Validate() error {
	if !c.Engine.Valid() {
		return errs.New(errs.ErrKindInvalidInput, fmt.Sprintf("unsupported database engine %q", c.Engine))
	}
	if c.Host == "" {
		return errs.New(errs.ErrKindInvalidInput, "host is required")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return errs.New(errs.ErrKindInvalidInput, fmt.Sprintf("invalid port %d", c.Port))
	}
	if c.Database == "" {
		return errs.New(errs.ErrKindInvalidInput, "database name is required")
	}
	return nil
}

// Timeout returns ConnectTimeout or DefaultConnectTimeout when unset.
func (c *Config) Timeout() time.Duration {
	if c.ConnectTimeout <= 0 {
		return DefaultConnectTimeout
	}
	return c.ConnectTimeout
}

// String describes the target without the password.
func (c *Config) String() string {
	return fmt.Sprintf("%s://%s@%s:%d/%s", c.Engine, c.User, c.Host, c.Port, c.Database)
}
