//-------------------------------------------------------------------------
//
// pgEdge DWH ETL
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package pipeline

import (
	"context"

	"github.com/pgEdge/pgedge-dwh-etl/internal/db"
	"github.com/pgEdge/pgedge-dwh-etl/internal/etl"
)

// Step is one unit of work inside a phase.
type Step interface {
	// Name identifies the step in logs and reports.
	Name() string

	// Table returns the table the step writes to.
	Table() string

	// Run executes the step and returns the number of rows it affected,
	// or -1 when the driver does not report one.
	Run(ctx context.Context, conn db.Conn) (int64, error)
}

// StatementStep runs a single SQL statement.
type StatementStep struct {
	etl.Statement
}

// Name implements Step.
func (s StatementStep) Name() string { return s.Statement.Name }

// Table implements Step.
func (s StatementStep) Table() string { return s.Statement.Table }

// Run implements Step.
func (s StatementStep) Run(ctx context.Context, conn db.Conn) (int64, error) {
	result, err := conn.ExecContext(ctx, s.SQL)
	if err != nil {
		return 0, err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return -1, nil
	}
	return n, nil
}

// StatementSteps wraps each statement in a StatementStep.
func StatementSteps(stmts []etl.Statement) []Step {
	steps := make([]Step, len(stmts))
	for i, stmt := range stmts {
		steps[i] = StatementStep{Statement: stmt}
	}
	return steps
}

// StagingLoader fills a staging table from its source without a server-side
// COPY, for warehouses that cannot read object storage themselves.
type StagingLoader interface {
	Load(ctx context.Context, conn db.Conn, src etl.CopySource) (int64, error)
}

// LoadStep loads one staging table through a StagingLoader.
type LoadStep struct {
	Source etl.CopySource
	Loader StagingLoader
}

// Name implements Step.
func (s LoadStep) Name() string { return s.Source.Table.Name + "_load" }

// Table implements Step.
func (s LoadStep) Table() string { return s.Source.Table.Name }

// Run implements Step.
func (s LoadStep) Run(ctx context.Context, conn db.Conn) (int64, error) {
	return s.Loader.Load(ctx, conn, s.Source)
}
