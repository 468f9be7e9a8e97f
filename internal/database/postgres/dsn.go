package postgres

import (
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/koustreak/metadump/internal/database"
)

const defaultSSLMode = "disable"

// buildConnConfig parses the generic Config into a pgx connection config.
func buildConnConfig(cfg *database.Config) (*pgx.ConnConfig, error) {
	connCfg, err := pgx.ParseConfig(buildDSN(cfg))
	if err != nil {
		return nil, fmt.Errorf("invalid postgres config: %w", err)
	}
	connCfg.ConnectTimeout = cfg.Timeout()
	return connCfg, nil
}

// buildDSN constructs the keyword/value connection string
func buildDSN(cfg *database.Config) string {
	sslMode := cfg.SSLMode
	if sslMode == "" {
		sslMode = defaultSSLMode
	}
	port := cfg.Port
	if port == 0 {
		port = database.EnginePostgres.DefaultPort()
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		quote(cfg.Host), port, quote(cfg.User), quote(cfg.Password), quote(cfg.Database), quote(sslMode),
	)
}

// quote renders a libpq keyword value: single-quoted, with backslashes and
// quotes escaped, so passwords containing spaces survive parsing.
func quote(v string) string {
	v = strings.ReplaceAll(v, `\`, `\\`)
	v = strings.ReplaceAll(v, `'`, `\'`)
	return "'" + v + "'"
}
