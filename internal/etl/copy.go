//-------------------------------------------------------------------------
//
// pgEdge DWH ETL
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package etl

import (
	"fmt"
	"strings"

	"github.com/pgEdge/pgedge-dwh-etl/internal/warehouse"
)

// AutoMapping tells the bulk loader to match JSON keys to column names.
const AutoMapping = "auto"

const copyJSONSQL = `COPY %s
FROM %s
IAM_ROLE %s
JSON %s
REGION %s`

// CopyParams holds the values substituted into the staging loads. It is
// built from configuration by the caller at run time.
type CopyParams struct {
	// LogData is the object storage prefix holding event log files.
	LogData string

	// SongData is the object storage prefix holding song files.
	SongData string

	// LogJSONPath is the JSONPaths file mapping log records to columns.
	LogJSONPath string

	// RoleARN is the IAM role the warehouse assumes to read the bucket.
	RoleARN string

	// Region is the bucket region.
	Region string
}

// Validate checks that every parameter is present.
func (p CopyParams) Validate() error {
	missing := []string{}
	if Unquote(p.LogData) == "" {
		missing = append(missing, "log data location")
	}
	if Unquote(p.SongData) == "" {
		missing = append(missing, "song data location")
	}
	if Unquote(p.LogJSONPath) == "" {
		missing = append(missing, "log JSONPaths location")
	}
	if Unquote(p.RoleARN) == "" {
		missing = append(missing, "IAM role ARN")
	}
	if Unquote(p.Region) == "" {
		missing = append(missing, "region")
	}
	if len(missing) > 0 {
		return fmt.Errorf("copy parameters missing: %s", strings.Join(missing, ", "))
	}
	return nil
}

// CopySource is one staging load: where the records live and how they map
// onto the staging table.
type CopySource struct {
	Table     warehouse.Table
	URI       string
	JSONPaths string
}

// CopySources returns the staging loads in pipeline order.
func CopySources(p CopyParams) []CopySource {
	return []CopySource{
		{Table: warehouse.StagingEvents, URI: Unquote(p.LogData), JSONPaths: Unquote(p.LogJSONPath)},
		{Table: warehouse.StagingSongs, URI: Unquote(p.SongData), JSONPaths: AutoMapping},
	}
}

// CopyTableQueries returns the two COPY statements loading the staging
// tables from object storage.
func CopyTableQueries(p CopyParams) ([]Statement, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	sources := CopySources(p)
	stmts := make([]Statement, len(sources))
	for i, src := range sources {
		stmts[i] = Statement{
			Name:  src.Table.Name + "_copy",
			Table: src.Table.Name,
			SQL: fmt.Sprintf(copyJSONSQL,
				src.Table.Name,
				QuoteLiteral(src.URI),
				QuoteLiteral(Unquote(p.RoleARN)),
				QuoteLiteral(src.JSONPaths),
				QuoteLiteral(Unquote(p.Region)),
			),
		}
	}
	return stmts, nil
}

// QuoteLiteral renders s as a SQL string literal.
func QuoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// Unquote trims whitespace and one pair of matching surrounding quotes.
// Legacy configuration files carry values such as 's3://bucket/log_data'.
func Unquote(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 {
		first, last := s[0], s[len(s)-1]
		if (first == '\'' || first == '"') && first == last {
			return s[1 : len(s)-1]
		}
	}
	return s
}
