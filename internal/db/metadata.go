//-------------------------------------------------------------------------
//
// pgEdge DWH ETL
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/pgEdge/pgedge-dwh-etl/internal/logging"
	"github.com/pgEdge/pgedge-dwh-etl/pkg/version"
)

const metadataTable = "etl_metadata"

// Metadata keys.
const (
	KeyLastPhase   = "last_phase"
	KeyLastPhaseAt = "last_phase_at"
	KeyDialect     = "dialect"
	KeyVersion     = "version"
)

// createMetadataTableSQL creates the metadata table if it doesn't exist.
// Redshift has no upsert, so values are replaced with delete+insert.
const createMetadataTableSQL = `
CREATE TABLE IF NOT EXISTS etl_metadata (
    key   VARCHAR(64)  NOT NULL,
    value VARCHAR(256) NOT NULL
)`

const existsSQL = `
SELECT EXISTS (
    SELECT 1 FROM information_schema.tables
    WHERE table_name = $1 AND table_schema = current_schema()
)`

// Execer is satisfied by *sql.DB, *sql.Conn and *sql.Tx.
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// TxBeginner is satisfied by *sql.DB and *sql.Conn.
type TxBeginner interface {
	Execer
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

// Conn is a single checked-out connection. *sql.Conn satisfies it; Raw gives
// access to the pgx connection underneath for COPY FROM.
type Conn interface {
	TxBeginner
	Raw(f func(driverConn any) error) error
}

// MetadataStore records pipeline progress in the warehouse itself, so that
// separate invocations (create-tables, then etl) see each other's work.
type MetadataStore struct {
	db TxBeginner
}

// NewMetadataStore returns a store over the given connection.
func NewMetadataStore(db TxBeginner) *MetadataStore {
	return &MetadataStore{db: db}
}

// Save writes the given values, replacing existing keys.
func (s *MetadataStore) Save(ctx context.Context, values map[string]string) error {
	if _, err := s.db.ExecContext(ctx, createMetadataTableSQL); err != nil {
		return fmt.Errorf("failed to create metadata table: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin metadata transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for key, value := range values {
		if _, err := tx.ExecContext(ctx, `DELETE FROM etl_metadata WHERE key = $1`, key); err != nil {
			return fmt.Errorf("failed to save metadata %s: %w", key, err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO etl_metadata (key, value) VALUES ($1, $2)`, key, value); err != nil {
			return fmt.Errorf("failed to save metadata %s: %w", key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit metadata: %w", err)
	}
	return nil
}

// RecordPhase stores the phase that just completed.
func (s *MetadataStore) RecordPhase(ctx context.Context, phase, dialect string) error {
	err := s.Save(ctx, map[string]string{
		KeyLastPhase:   phase,
		KeyLastPhaseAt: time.Now().UTC().Format(time.RFC3339),
		KeyDialect:     dialect,
		KeyVersion:     version.Short(),
	})
	if err != nil {
		return err
	}

	logging.Debug().
		Str("phase", phase).
		Msg("Recorded pipeline state")
	return nil
}

// Get retrieves a single metadata value by key. ok is false when the key or
// the metadata table does not exist.
func (s *MetadataStore) Get(ctx context.Context, key string) (value string, ok bool, err error) {
	exists, err := s.Exists(ctx)
	if err != nil {
		return "", false, err
	}
	if !exists {
		return "", false, nil
	}

	err = s.db.QueryRowContext(ctx,
		`SELECT value FROM etl_metadata WHERE key = $1`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read metadata %s: %w", key, err)
	}
	return value, true, nil
}

// All retrieves all metadata as a map.
func (s *MetadataStore) All(ctx context.Context) (map[string]string, error) {
	metadata := make(map[string]string)

	exists, err := s.Exists(ctx)
	if err != nil || !exists {
		return metadata, err
	}

	rows, err := s.db.QueryContext(ctx, `SELECT key, value FROM etl_metadata`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, err
		}
		metadata[key] = value
	}

	return metadata, rows.Err()
}

// Drop drops the metadata table, forgetting all recorded pipeline state.
func (s *MetadataStore) Drop(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s", metadataTable)); err != nil {
		return fmt.Errorf("failed to drop metadata table: %w", err)
	}
	logging.Info().Msg("Cleared pipeline state")
	return nil
}

// Exists checks if the metadata table exists in the current schema, the one
// unqualified statements resolve to.
func (s *MetadataStore) Exists(ctx context.Context) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, existsSQL, metadataTable).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check metadata table: %w", err)
	}
	return exists, nil
}
