//-------------------------------------------------------------------------
//
// pgEdge DWH ETL
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
)

// Copier streams rows into a table with the COPY protocol over a checked-out
// database/sql connection backed by pgx.
type Copier struct {
	Conn Conn
}

// CopyFrom copies rows into table. Column order in each row follows columns.
func (c Copier) CopyFrom(ctx context.Context, table string, columns []string, rows [][]any) (int64, error) {
	var copied int64
	err := c.Conn.Raw(func(driverConn any) error {
		sc, ok := driverConn.(*stdlib.Conn)
		if !ok {
			return fmt.Errorf("connection does not support COPY FROM (%T)", driverConn)
		}
		n, err := sc.Conn().CopyFrom(ctx, pgx.Identifier{table}, columns, pgx.CopyFromRows(rows))
		copied = n
		return err
	})
	return copied, err
}
