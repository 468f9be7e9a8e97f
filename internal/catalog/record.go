package catalog

// Record is one (table, column[, constraint]) row of the dumped catalog.
// A column carrying several constraints appears once per constraint.
type Record struct {
	TableName            string  `json:"tableName"`
	ColumnName           string  `json:"columnName"`
	DataType             string  `json:"dataType"`
	ConstraintType       *string `json:"constraintType,omitempty"`
	ReferencedTable      *string `json:"referencedTable,omitempty"`
	ReferencedColumn     *string `json:"referencedColumn,omitempty"`
	ConstraintName       *string `json:"constraintName,omitempty"`
	ConstraintDefinition *string `json:"constraintDefinition,omitempty"`
	IsView               *bool   `json:"isView,omitempty"`
}

// IsForeignKey reports whether the record describes a foreign-key column.
func (r Record) IsForeignKey() bool {
	return r.ConstraintType != nil && *r.ConstraintType == ConstraintForeignKey
}

// Constraint type names as they appear in the output.
const (
	ConstraintPrimaryKey = "PRIMARY KEY"
	ConstraintUnique     = "UNIQUE"
	ConstraintForeignKey = "FOREIGN KEY"
	ConstraintCheck      = "CHECK"
)
