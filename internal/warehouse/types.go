//-------------------------------------------------------------------------
//
// pgEdge DWH ETL
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package warehouse describes the star schema of the song play warehouse:
// two staging tables, one fact table and four dimension tables, and renders
// their DDL for each supported SQL dialect.
package warehouse

import (
	"fmt"
	"strings"
)

// Dialect is the SQL flavour statements are rendered for.
type Dialect string

const (
	// Redshift renders distribution/sort keys and COPY FROM S3 statements.
	Redshift Dialect = "redshift"

	// Postgres renders plain PostgreSQL DDL. Staging tables are then loaded
	// by the local loader instead of COPY FROM S3.
	Postgres Dialect = "postgres"
)

// ParseDialect converts a dialect name to a Dialect.
func ParseDialect(s string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "redshift", "":
		return Redshift, nil
	case "postgres", "postgresql":
		return Postgres, nil
	default:
		return "", fmt.Errorf("unknown dialect: %s (expected redshift or postgres)", s)
	}
}

// BaseType is the storage class of a column.
type BaseType int

const (
	BaseInt BaseType = iota
	BaseFloat
	BaseString
	BaseTimestamp
)

// String returns the name of the base type.
func (b BaseType) String() string {
	switch b {
	case BaseInt:
		return "integer"
	case BaseFloat:
		return "float"
	case BaseString:
		return "string"
	case BaseTimestamp:
		return "timestamp"
	default:
		return fmt.Sprintf("BaseType(%d)", int(b))
	}
}

// SQLType is a column type with an optional length.
type SQLType struct {
	Base   BaseType
	Length int
}

// Column types used by the schema.
var (
	BigInt   = SQLType{Base: BaseInt}
	Float    = SQLType{Base: BaseFloat}
	DateTime = SQLType{Base: BaseTimestamp}
)

// Varchar returns a VARCHAR type of the given length.
func Varchar(n int) SQLType {
	return SQLType{Base: BaseString, Length: n}
}

// Render returns the type name in the given dialect.
func (t SQLType) Render(d Dialect) string {
	switch t.Base {
	case BaseInt:
		return "BIGINT"
	case BaseFloat:
		if d == Postgres {
			return "DOUBLE PRECISION"
		}
		return "FLOAT"
	case BaseString:
		return fmt.Sprintf("VARCHAR(%d)", t.Length)
	case BaseTimestamp:
		if d == Postgres {
			return "TIMESTAMP"
		}
		return "DATETIME"
	default:
		return "UNKNOWN"
	}
}

// Kind classifies a table within the star schema.
type Kind int

const (
	Staging Kind = iota
	Fact
	Dimension
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case Staging:
		return "staging"
	case Fact:
		return "fact"
	case Dimension:
		return "dimension"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Column describes one column of a table.
type Column struct {
	// Name is the column name as stored (lower case).
	Name string

	// Type is the column type.
	Type SQLType

	// NotNull marks the column NOT NULL.
	NotNull bool

	// Identity marks an auto-incrementing surrogate key starting at 0.
	Identity bool

	// SortKey and DistKey are Redshift physical storage hints.
	SortKey bool
	DistKey bool
}

// Render returns the column definition line in the given dialect.
func (c Column) Render(d Dialect) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%-16s %s", c.Name, c.Type.Render(d))

	if c.Identity {
		if d == Postgres {
			b.WriteString(" GENERATED BY DEFAULT AS IDENTITY (START WITH 0 MINVALUE 0)")
		} else {
			b.WriteString(" IDENTITY(0,1)")
		}
	}
	if c.NotNull {
		b.WriteString(" NOT NULL")
	}
	if d == Redshift {
		if c.SortKey {
			b.WriteString(" SORTKEY")
		}
		if c.DistKey {
			b.WriteString(" DISTKEY")
		}
	}
	return b.String()
}

// Table describes one table of the schema.
type Table struct {
	Name    string
	Kind    Kind
	Columns []Column
}

// ColumnNames returns the column names in declaration order.
func (t Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// Column returns the named column.
func (t Table) Column(name string) (Column, bool) {
	for _, c := range t.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// CreateSQL returns the CREATE TABLE statement in the given dialect.
func (t Table) CreateSQL(d Dialect) string {
	lines := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		lines[i] = "  " + c.Render(d)
	}
	return fmt.Sprintf("CREATE TABLE %s\n(\n%s\n)", t.Name, strings.Join(lines, ",\n"))
}

// DropSQL returns the DROP TABLE statement.
func (t Table) DropSQL() string {
	return "DROP TABLE IF EXISTS " + t.Name
}
