package staging

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/pgEdge/pgedge-dwh-etl/internal/warehouse"
)

// Mapping extracts a table row from a JSON record.
type Mapping struct {
	table warehouse.Table
	paths []string
}

// NewMapping maps the n-th path onto the n-th column of table.
func NewMapping(table warehouse.Table, paths []string) (*Mapping, error) {
	if len(paths) != len(table.Columns) {
		return nil, fmt.Errorf("JSONPaths has %d expressions but %s has %d columns",
			len(paths), table.Name, len(table.Columns))
	}
	return &Mapping{table: table, paths: paths}, nil
}

// AutoMapping maps each column onto the top-level key of the same name.
func AutoMapping(table warehouse.Table) *Mapping {
	paths := make([]string, len(table.Columns))
	for i, c := range table.Columns {
		paths[i] = gjson.Escape(c.Name)
	}
	return &Mapping{table: table, paths: paths}
}

// Columns returns the target column names in row order.
func (m *Mapping) Columns() []string {
	return m.table.ColumnNames()
}

// Row extracts one row from a JSON object.
func (m *Mapping) Row(record []byte) ([]any, error) {
	row := make([]any, len(m.paths))
	for i, p := range m.paths {
		col := m.table.Columns[i]
		v, err := convert(gjson.GetBytes(record, p), col)
		if err != nil {
			return nil, fmt.Errorf("column %s: %w", col.Name, err)
		}
		row[i] = v
	}
	return row, nil
}

// convert turns a JSON value into the Go value COPY expects for the column.
// Missing values and JSON null load as NULL.
func convert(v gjson.Result, col warehouse.Column) (any, error) {
	if !v.Exists() || v.Type == gjson.Null {
		return nil, nil
	}

	switch col.Type.Base {
	case warehouse.BaseInt:
		switch v.Type {
		case gjson.Number:
			n, ok := parseInteger(v.Raw)
			if !ok {
				return nil, fmt.Errorf("%s is not an integer", v.Raw)
			}
			return n, nil
		case gjson.String:
			s := strings.TrimSpace(v.Str)
			if s == "" {
				return nil, nil
			}
			n, ok := parseInteger(s)
			if !ok {
				return nil, fmt.Errorf("%q is not an integer", v.Str)
			}
			return n, nil
		}

	case warehouse.BaseFloat:
		switch v.Type {
		case gjson.Number:
			return v.Num, nil
		case gjson.String:
			s := strings.TrimSpace(v.Str)
			if s == "" {
				return nil, nil
			}
			f, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return nil, fmt.Errorf("%q is not a number", v.Str)
			}
			return f, nil
		}

	case warehouse.BaseString:
		var s string
		switch v.Type {
		case gjson.String:
			s = v.Str
		case gjson.Number, gjson.True, gjson.False:
			s = v.Raw
		default:
			return nil, fmt.Errorf("cannot load %s into %s", kindOf(v), col.Type.Render(warehouse.Postgres))
		}
		if col.Type.Length > 0 && len(s) > col.Type.Length {
			return nil, fmt.Errorf("value of %d bytes exceeds %s", len(s), col.Type.Render(warehouse.Postgres))
		}
		return s, nil
	}

	return nil, fmt.Errorf("cannot load %s into %s", kindOf(v), col.Type.Base)
}

// parseInteger accepts integer literals and numbers with a whole value such
// as 2006.0 or 1.5e3.
func parseInteger(s string) (int64, bool) {
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != math.Trunc(f) || f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, false
	}
	return int64(f), true
}

func kindOf(v gjson.Result) string {
	switch {
	case v.IsArray():
		return "array"
	case v.IsObject():
		return "object"
	case v.Type == gjson.String:
		return "string"
	case v.Type == gjson.Number:
		return "number"
	case v.Type == gjson.True, v.Type == gjson.False:
		return "boolean"
	}
	return v.Type.String()
}
