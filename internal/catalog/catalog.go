// Package catalog holds the per-engine system catalog queries and turns
// their rows into the uniform Record shape written to metadata.json.
package catalog

import (
	"fmt"

	"github.com/koustreak/metadump/internal/database"
	"github.com/koustreak/metadump/internal/errs"
)

// PostgresSchema is the only schema dumped on Postgres-family engines.
const PostgresSchema = "public"

// Fields names the raw result columns that feed each Record field.
// An empty name means the engine never reports that field.
type Fields struct {
	TableName            string
	ColumnName           string
	DataType             string
	ConstraintType       string
	ReferencedTable      string
	ReferencedColumn     string
	ConstraintName       string
	ConstraintDefinition string
	ViewName             string
}

// Catalog is everything engine-specific about one metadata dump:
// the query, its bind parameters and how to read its rows.
type Catalog struct {
	Engine database.Engine
	Query  string
	Fields Fields

	// ConstraintKinds translates engine codes (e.g. "PK") into output
	// constraint names. Codes missing from the map pass through unchanged.
	ConstraintKinds map[string]string
}

// Args returns the bind parameters for Query.
func (c Catalog) Args(dbName string) []any {
	switch c.Engine {
	case database.EngineMySQL:
		return []any{dbName}
	case database.EnginePostgres:
		return []any{PostgresSchema}
	default:
		return nil
	}
}

// For returns the Catalog for engine.
func For(engine database.Engine) (Catalog, error) {
	switch engine {
	case database.EngineMySQL:
		return mysqlCatalog, nil
	case database.EnginePostgres:
		return postgresCatalog, nil
	case database.EngineSQLServer:
		return sqlserverCatalog, nil
	default:
		return Catalog{}, errs.New(errs.ErrKindInvalidInput, fmt.Sprintf("no catalog for engine %q", engine))
	}
}

// Foreign-key columns of one MySQL schema. Columns without a foreign key
// are not reported.
const mysqlQuery = `
	SELECT
		c.TABLE_NAME,
		c.COLUMN_NAME,
		c.DATA_TYPE,
		tc.CONSTRAINT_TYPE,
		kcu.REFERENCED_TABLE_NAME,
		kcu.REFERENCED_COLUMN_NAME
	FROM INFORMATION_SCHEMA.COLUMNS c
	LEFT JOIN INFORMATION_SCHEMA.KEY_COLUMN_USAGE kcu
		ON c.TABLE_NAME = kcu.TABLE_NAME
		AND c.COLUMN_NAME = kcu.COLUMN_NAME
		AND c.TABLE_SCHEMA = kcu.TABLE_SCHEMA
	LEFT JOIN INFORMATION_SCHEMA.TABLE_CONSTRAINTS tc
		ON kcu.CONSTRAINT_NAME = tc.CONSTRAINT_NAME
		AND kcu.TABLE_SCHEMA = tc.TABLE_SCHEMA
		AND kcu.TABLE_NAME = tc.TABLE_NAME
	WHERE c.TABLE_SCHEMA = ?
	  AND tc.CONSTRAINT_TYPE = 'FOREIGN KEY'
	ORDER BY c.TABLE_NAME, c.ORDINAL_POSITION`

var mysqlCatalog = Catalog{
	Engine: database.EngineMySQL,
	Query:  mysqlQuery,
	Fields: Fields{
		TableName:        "TABLE_NAME",
		ColumnName:       "COLUMN_NAME",
		DataType:         "DATA_TYPE",
		ConstraintType:   "CONSTRAINT_TYPE",
		ReferencedTable:  "REFERENCED_TABLE_NAME",
		ReferencedColumn: "REFERENCED_COLUMN_NAME",
	},
}

// Every column of the schema (tables and views), with foreign-key
// targets where one exists. Composite keys pair each referencing column
// with the referenced column at the same key position; targets outside
// the schema are qualified as schema.table.
const postgresQuery = `
	SELECT
		c.table_name::text,
		c.column_name::text,
		c.data_type::text,
		v.table_name::text AS view_name,
		fk.constraint_type,
		fk.foreign_table_name,
		fk.foreign_column_name
	FROM information_schema.columns c

	LEFT JOIN information_schema.views v
		ON v.table_schema = c.table_schema
		AND v.table_name = c.table_name

	LEFT JOIN (
		SELECT
			kcu.table_schema,
			kcu.table_name,
			kcu.column_name,
			'FOREIGN KEY'::text    AS constraint_type,
			CASE WHEN ref.table_schema = kcu.table_schema
				THEN ref.table_name
				ELSE ref.table_schema || '.' || ref.table_name
			END::text              AS foreign_table_name,
			ref.column_name::text  AS foreign_column_name
		FROM information_schema.referential_constraints rc
		JOIN information_schema.key_column_usage kcu
			ON kcu.constraint_schema = rc.constraint_schema
			AND kcu.constraint_name = rc.constraint_name
		JOIN information_schema.key_column_usage ref
			ON ref.constraint_schema = rc.unique_constraint_schema
			AND ref.constraint_name = rc.unique_constraint_name
			AND ref.ordinal_position = kcu.position_in_unique_constraint
	) fk
		ON fk.table_schema = c.table_schema
		AND fk.table_name = c.table_name
		AND fk.column_name = c.column_name

	WHERE c.table_schema = $1
	ORDER BY c.table_name, c.ordinal_position`

var postgresCatalog = Catalog{
	Engine: database.EnginePostgres,
	Query:  postgresQuery,
	Fields: Fields{
		TableName:        "table_name",
		ColumnName:       "column_name",
		DataType:         "data_type",
		ConstraintType:   "constraint_type",
		ReferencedTable:  "foreign_table_name",
		ReferencedColumn: "foreign_column_name",
		ViewName:         "view_name",
	},
}

// Every column of every user table in the login's default schema, joined
// with its primary key, unique, foreign key and column-level check
// constraints. Foreign keys into other schemas are qualified as schema.table.
const sqlserverQuery = `
	SELECT
		t.name  AS table_name,
		c.name  AS column_name,
		ty.name AS type_name,
		k.constraint_kind,
		k.constraint_name,
		k.constraint_definition,
		k.ref_table,
		k.ref_column
	FROM sys.tables t
	JOIN sys.columns c ON c.object_id = t.object_id
	JOIN sys.types ty ON ty.user_type_id = c.user_type_id

	LEFT JOIN (
		SELECT
			ic.object_id,
			ic.column_id,
			CAST(kc.type AS varchar(2))       AS constraint_kind,
			kc.name                           AS constraint_name,
			CAST(NULL AS nvarchar(max))       AS constraint_definition,
			CAST(NULL AS nvarchar(257))       AS ref_table,
			CAST(NULL AS sysname)             AS ref_column
		FROM sys.key_constraints kc
		JOIN sys.index_columns ic
			ON ic.object_id = kc.parent_object_id
			AND ic.index_id = kc.unique_index_id

		UNION ALL

		SELECT
			fkc.parent_object_id,
			fkc.parent_column_id,
			'F',
			fk.name,
			NULL,
			CASE WHEN rt.schema_id = SCHEMA_ID()
				THEN rt.name
				ELSE SCHEMA_NAME(rt.schema_id) + '.' + rt.name
			END,
			rc.name
		FROM sys.foreign_keys fk
		JOIN sys.foreign_key_columns fkc ON fkc.constraint_object_id = fk.object_id
		JOIN sys.tables rt ON rt.object_id = fkc.referenced_object_id
		JOIN sys.columns rc
			ON rc.object_id = fkc.referenced_object_id
			AND rc.column_id = fkc.referenced_column_id

		UNION ALL

		SELECT
			cc.parent_object_id,
			cc.parent_column_id,
			'C',
			cc.name,
			cc.definition,
			NULL,
			NULL
		FROM sys.check_constraints cc
		WHERE cc.parent_column_id > 0
	) k ON k.object_id = t.object_id AND k.column_id = c.column_id

	WHERE t.is_ms_shipped = 0
	  AND t.schema_id = SCHEMA_ID()
	ORDER BY t.name, c.column_id`

var sqlserverCatalog = Catalog{
	Engine: database.EngineSQLServer,
	Query:  sqlserverQuery,
	Fields: Fields{
		TableName:            "table_name",
		ColumnName:           "column_name",
		DataType:             "type_name",
		ConstraintType:       "constraint_kind",
		ReferencedTable:      "ref_table",
		ReferencedColumn:     "ref_column",
		ConstraintName:       "constraint_name",
		ConstraintDefinition: "constraint_definition",
	},
	ConstraintKinds: map[string]string{
		"PK": ConstraintPrimaryKey,
		"UQ": ConstraintUnique,
		"F":  ConstraintForeignKey,
		"C":  ConstraintCheck,
	},
}
