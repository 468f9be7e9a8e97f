package catalog

import (
	"context"
	"fmt"

	"github.com/koustreak/metadump/internal/database"
	"github.com/koustreak/metadump/internal/logger"
)

// Introspect runs the catalog query of engine against db and returns the
// normalized records. dbName is the database the operator asked for; it
// scopes the MySQL query to that schema.
func Introspect(ctx context.Context, db database.DB, engine database.Engine, dbName string) ([]Record, error) {
	c, err := For(engine)
	if err != nil {
		return nil, err
	}

	log := logger.FromContext(ctx)
	log.Debugf("running %s catalog query", engine)

	rows, err := db.Query(ctx, c.Query, c.Args(dbName)...)
	if err != nil {
		return nil, fmt.Errorf("catalog query: %w", err)
	}

	raw, err := database.ScanRows(rows)
	if err != nil {
		return nil, fmt.Errorf("catalog query: %w", err)
	}

	records, err := c.Normalize(raw)
	if err != nil {
		return nil, err
	}

	if len(records) == 0 {
		log.Warn("catalog query returned no columns; check the database name and privileges")
	}
	log.With().Str("engine", string(engine)).Int("records", len(records)).Logger().
		Info("catalog introspected")
	return records, nil
}
