//-------------------------------------------------------------------------
//
// pgEdge DWH ETL
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package cli implements the command-line interface for pgedge-dwh-etl.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pgEdge/pgedge-dwh-etl/internal/config"
	"github.com/pgEdge/pgedge-dwh-etl/internal/db"
	"github.com/pgEdge/pgedge-dwh-etl/internal/logging"
	"github.com/pgEdge/pgedge-dwh-etl/internal/objstore"
	"github.com/pgEdge/pgedge-dwh-etl/pkg/version"
)

var (
	// Global flags
	cfgFile    string
	connection string
	dialect    string
	logLevel   string
	logFormat  string

	// Global config
	cfg *config.Config

	rootCmd = &cobra.Command{
		Use:   "pgedge-dwh-etl",
		Short: "Star-schema ETL for song play event logs",
		Long: `pgedge-dwh-etl builds a star schema for song play analytics in a
Redshift-compatible warehouse. Raw JSON event logs and song metadata are
bulk-loaded from object storage into two staging tables, then reshaped
into one fact table (songplays) and four dimensions (users, songs,
artists, time).

create-tables drops and recreates the schema; etl stages the sources and
populates the star schema. Progress is recorded in the warehouse so the
phases run in order.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file, YAML or legacy dwh.cfg (default: ./pgedge-dwh-etl.yaml)")
	rootCmd.PersistentFlags().StringVar(&connection, "connection", "",
		"warehouse connection string (overrides the cluster settings)")
	rootCmd.PersistentFlags().StringVar(&dialect, "dialect", "",
		"SQL dialect: redshift or postgres")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "",
		"log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "",
		"log format (console, json)")

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(createTablesCmd)
	rootCmd.AddCommand(etlCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(statementsCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(profilesCmd)
	rootCmd.AddCommand(reportCmd)
}

func initConfig() error {
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		return err
	}

	// Override with CLI flags
	if connection != "" {
		cfg.Connection = connection
	}
	if dialect != "" {
		cfg.Dialect = dialect
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if logFormat != "" {
		cfg.LogFormat = logFormat
	}

	// Reinitialize logger with config
	logging.Init(logging.Config{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
	})

	return nil
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Println(version.Info())
	},
}

// connect opens the warehouse named by the configuration.
func connect(ctx context.Context) (*db.Warehouse, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	d, _ := cfg.WarehouseDialect()
	connString, _ := cfg.ConnString()

	wh, err := db.Connect(ctx, connString, d)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to warehouse: %w", err)
	}
	return wh, nil
}

// objectStore returns a store for the configured source locations.
func objectStore() *objstore.Mux {
	return objstore.NewMux(s3Config(cfg))
}

func s3Config(c *config.Config) objstore.S3Config {
	return objstore.S3Config{
		Region:          c.Region.Region,
		Endpoint:        c.S3.Endpoint,
		PathStyle:       c.S3.PathStyle,
		AccessKeyID:     c.S3.AccessKeyID,
		SecretAccessKey: c.S3.SecretAccessKey,
	}
}
