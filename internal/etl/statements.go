//-------------------------------------------------------------------------
//
// pgEdge DWH ETL
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package etl builds the SQL statements of the warehouse pipeline: the drop
// and create DDL, the bulk loads into the staging tables and the
// insert-select transforms that fill the fact and dimension tables.
package etl

import (
	"github.com/pgEdge/pgedge-dwh-etl/internal/warehouse"
)

// Statement is one SQL statement of the pipeline.
type Statement struct {
	// Name identifies the statement in logs and reports.
	Name string

	// Table is the table the statement targets.
	Table string

	// SQL is the statement text.
	SQL string
}

// DropTableQueries returns one DROP TABLE IF EXISTS per table, in schema order.
func DropTableQueries() []Statement {
	tables := warehouse.Tables()
	stmts := make([]Statement, len(tables))
	for i, t := range tables {
		stmts[i] = Statement{
			Name:  t.Name + "_table_drop",
			Table: t.Name,
			SQL:   t.DropSQL(),
		}
	}
	return stmts
}

// CreateTableQueries returns one CREATE TABLE per table, in schema order.
func CreateTableQueries(d warehouse.Dialect) []Statement {
	tables := warehouse.Tables()
	stmts := make([]Statement, len(tables))
	for i, t := range tables {
		stmts[i] = Statement{
			Name:  t.Name + "_table_create",
			Table: t.Name,
			SQL:   t.CreateSQL(d),
		}
	}
	return stmts
}
