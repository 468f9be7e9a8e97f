package catalog

import (
	"fmt"
	"strings"

	"github.com/koustreak/metadump/internal/database"
	"github.com/koustreak/metadump/internal/errs"
)

// Normalize maps raw catalog rows of engine onto Records, one per row and
// in the same order. Column names are matched case-insensitively; NULL and
// empty values leave the corresponding optional field unset.
func Normalize(engine database.Engine, rows []map[string]any) ([]Record, error) {
	c, err := For(engine)
	if err != nil {
		return nil, err
	}
	return c.Normalize(rows)
}

// Normalize maps rows using the field map of c.
func (c Catalog) Normalize(rows []map[string]any) ([]Record, error) {
	records := make([]Record, 0, len(rows))
	for i, raw := range rows {
		rec, err := c.record(newRow(raw))
		if err != nil {
			return nil, errs.Wrap(errs.ErrKindQueryFailed, fmt.Sprintf("%s catalog row %d", c.Engine, i), err)
		}
		records = append(records, rec)
	}
	return records, nil
}

func (c Catalog) record(r row) (Record, error) {
	var rec Record
	var missing []string

	required := []struct {
		column string
		json   string
		dst    *string
	}{
		{c.Fields.TableName, "tableName", &rec.TableName},
		{c.Fields.ColumnName, "columnName", &rec.ColumnName},
		{c.Fields.DataType, "dataType", &rec.DataType},
	}
	for _, f := range required {
		v := r.get(f.column)
		if v == nil {
			missing = append(missing, f.json)
			continue
		}
		*f.dst = *v
	}
	if len(missing) > 0 {
		return Record{}, fmt.Errorf("missing %s", strings.Join(missing, ", "))
	}

	if kind := r.get(c.Fields.ConstraintType); kind != nil {
		// sys.objects.type is char(2): "F " and "C " carry a pad.
		if name, ok := c.ConstraintKinds[strings.TrimSpace(*kind)]; ok {
			kind = &name
		}
		rec.ConstraintType = kind
	}
	rec.ReferencedTable = r.get(c.Fields.ReferencedTable)
	rec.ReferencedColumn = r.get(c.Fields.ReferencedColumn)
	rec.ConstraintName = r.get(c.Fields.ConstraintName)
	rec.ConstraintDefinition = r.get(c.Fields.ConstraintDefinition)

	if c.Fields.ViewName != "" {
		isView := r.get(c.Fields.ViewName) != nil
		rec.IsView = &isView
	}
	return rec, nil
}

// row indexes a scanned row by lower-cased column name.
type row map[string]any

func newRow(raw map[string]any) row {
	r := make(row, len(raw))
	for k, v := range raw {
		r[strings.ToLower(k)] = v
	}
	return r
}

// get returns the text value of column as stored, or nil when the column
// is not mapped, absent, NULL or blank.
func (r row) get(column string) *string {
	if column == "" {
		return nil
	}
	v, ok := r[strings.ToLower(column)]
	if !ok || v == nil {
		return nil
	}

	var s string
	switch t := v.(type) {
	case string:
		s = t
	case []byte:
		s = string(t)
	default:
		s = fmt.Sprint(t)
	}

	if strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}
