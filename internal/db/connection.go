// Package db provides warehouse connection management for pgedge-dwh-etl.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"

	"github.com/pgEdge/pgedge-dwh-etl/internal/logging"
	"github.com/pgEdge/pgedge-dwh-etl/internal/warehouse"
)

// Warehouse bundles the pgx pool with a database/sql handle over it.
type Warehouse struct {
	Pool *pgxpool.Pool
	DB   *sql.DB
}

// Close releases the handle and the pool.
func (w *Warehouse) Close() {
	if w.DB != nil {
		_ = w.DB.Close()
	}
	if w.Pool != nil {
		w.Pool.Close()
	}
}

// DefaultPoolConfig returns default connection pool configuration. The
// pipeline is sequential; one connection carries every statement and the
// pool only needs room for an occasional extra.
func DefaultPoolConfig() *pgxpool.Config {
	config, _ := pgxpool.ParseConfig("")

	config.MaxConns = 2
	config.MinConns = 0
	config.MaxConnLifetime = 2 * time.Hour
	config.MaxConnIdleTime = 30 * time.Minute
	config.HealthCheckPeriod = time.Minute

	return config
}

// Connect establishes a connection pool to the warehouse and verifies it.
func Connect(ctx context.Context, connString string, dialect warehouse.Dialect) (*Warehouse, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection string: %w", err)
	}

	defaults := DefaultPoolConfig()
	config.MaxConns = defaults.MaxConns
	config.MinConns = defaults.MinConns
	config.MaxConnLifetime = defaults.MaxConnLifetime
	config.MaxConnIdleTime = defaults.MaxConnIdleTime
	config.HealthCheckPeriod = defaults.HealthCheckPeriod

	if dialect == warehouse.Redshift {
		// No server-side prepared statements on Redshift.
		config.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol
	}

	logging.Debug().
		Str("host", config.ConnConfig.Host).
		Uint16("port", config.ConnConfig.Port).
		Str("database", config.ConnConfig.Database).
		Str("dialect", string(dialect)).
		Msg("Connecting to warehouse")

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping warehouse: %w", err)
	}

	logging.Info().
		Str("host", config.ConnConfig.Host).
		Str("database", config.ConnConfig.Database).
		Msg("Connected to warehouse")

	return &Warehouse{
		Pool: pool,
		DB:   stdlib.OpenDBFromPool(pool),
	}, nil
}

// Conn checks out the single connection every pipeline statement runs on.
func (w *Warehouse) Conn(ctx context.Context) (*sql.Conn, error) {
	conn, err := w.DB.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire connection: %w", err)
	}
	return conn, nil
}
