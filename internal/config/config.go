//-------------------------------------------------------------------------
//
// pgEdge DWH ETL
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package config handles configuration management for pgedge-dwh-etl.
// Configuration is loaded from config files and CLI flags (no environment variables).
// CLI flags take precedence over config file values.
package config

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/viper"

	"github.com/pgEdge/pgedge-dwh-etl/internal/datagen/profiles"
	"github.com/pgEdge/pgedge-dwh-etl/internal/etl"
	"github.com/pgEdge/pgedge-dwh-etl/internal/warehouse"
)

// Config holds all configuration for pgedge-dwh-etl.
type Config struct {
	// Connection is a PostgreSQL-protocol connection string. When set it
	// takes precedence over the Cluster section.
	Connection string `mapstructure:"connection"`

	// Dialect selects the SQL flavour: redshift or postgres.
	Dialect string `mapstructure:"dialect"`

	// LogLevel controls logging verbosity (debug, info, warn, error).
	LogLevel string `mapstructure:"log_level"`

	// LogFormat is console or json.
	LogFormat string `mapstructure:"log_format"`

	// Cluster holds the warehouse endpoint.
	Cluster ClusterConfig `mapstructure:"cluster"`

	// S3 holds the source data locations.
	S3 S3Config `mapstructure:"s3"`

	// IAMRole holds the role the warehouse assumes for COPY.
	IAMRole IAMRoleConfig `mapstructure:"iam_role"`

	// Region holds the region of the source bucket.
	Region RegionConfig `mapstructure:"region"`

	// Report holds configuration for the report subcommand.
	Report ReportConfig `mapstructure:"report"`

	// Generate holds configuration for the generate subcommand.
	Generate GenerateConfig `mapstructure:"generate"`
}

// ClusterConfig mirrors the CLUSTER section of the legacy dwh.cfg.
type ClusterConfig struct {
	Host       string `mapstructure:"host"`
	DBName     string `mapstructure:"db_name"`
	DBUser     string `mapstructure:"db_user"`
	DBPassword string `mapstructure:"db_password"`
	DBPort     string `mapstructure:"db_port"`
}

// S3Config mirrors the S3 section of the legacy dwh.cfg.
type S3Config struct {
	// LogData is the prefix holding event log files.
	LogData string `mapstructure:"log_data"`

	// LogJSONPath is the JSONPaths file for the event logs.
	LogJSONPath string `mapstructure:"log_jsonpath"`

	// SongData is the prefix holding song files.
	SongData string `mapstructure:"song_data"`

	// Endpoint overrides the S3 endpoint (e.g. a local MinIO).
	Endpoint string `mapstructure:"endpoint"`

	// PathStyle forces path-style bucket addressing.
	PathStyle bool `mapstructure:"path_style"`

	// AccessKeyID and SecretAccessKey are optional static credentials.
	// When empty the default AWS credential chain is used.
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
}

// IAMRoleConfig mirrors the IAM_ROLE section of the legacy dwh.cfg.
type IAMRoleConfig struct {
	ARN string `mapstructure:"arn"`
}

// RegionConfig mirrors the REGION section of the legacy dwh.cfg.
type RegionConfig struct {
	Region string `mapstructure:"region"`
}

// ReportConfig holds configuration for reports.
type ReportConfig struct {
	// Limit caps the rows of ranked reports.
	Limit int `mapstructure:"limit"`
}

// GenerateConfig holds configuration for sample data generation.
type GenerateConfig struct {
	// Output is a directory or s3:// prefix the dataset is written under.
	Output string `mapstructure:"output"`

	// Seed makes the dataset reproducible. Zero picks a random seed.
	Seed uint64 `mapstructure:"seed"`

	// Songs is the size of the song catalog.
	Songs int `mapstructure:"songs"`

	// Users is the number of distinct listeners.
	Users int `mapstructure:"users"`

	// Days is the number of daily log files.
	Days int `mapstructure:"days"`

	// EventsPerDay is the number of events in each log file.
	EventsPerDay int `mapstructure:"events_per_day"`

	// Profile names the listening profile spreading plays over the day.
	Profile string `mapstructure:"profile"`

	// Timezone is where the listeners live (default: UTC).
	Timezone string `mapstructure:"timezone"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Dialect:   string(warehouse.Redshift),
		LogLevel:  "info",
		LogFormat: "console",
		Cluster: ClusterConfig{
			DBPort: "5439",
		},
		Report: ReportConfig{
			Limit: 10,
		},
		Generate: GenerateConfig{
			Output:       "./data",
			Songs:        200,
			Users:        40,
			Days:         7,
			EventsPerDay: 500,
			Profile:      profiles.Default,
			Timezone:     "UTC",
		},
	}
}

// Load reads configuration from config files.
// Config file locations (in order of precedence):
// 1. Path specified by configFile parameter
// 2. ./pgedge-dwh-etl.yaml
// 3. ~/.config/pgedge-dwh-etl/config.yaml
//
// A .cfg or .ini file is read as the legacy dwh.cfg layout.
func Load(configFile string) (*Config, error) {
	v := viper.New()

	v.SetConfigName("pgedge-dwh-etl")
	v.SetConfigType("yaml")

	v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".config", "pgedge-dwh-etl"))
	}

	if configFile != "" && isLegacyFile(configFile) {
		if err := mergeLegacyFile(v, configFile); err != nil {
			return nil, err
		}
	} else {
		if configFile != "" {
			v.SetConfigFile(configFile)
		}

		// Read config file (ignore if not found)
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("error reading config file: %w", err)
			}
		}
	}

	cfg := DefaultConfig()

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	cfg.unquote()
	return cfg, nil
}

// unquote strips the quotes legacy files put around values.
func (c *Config) unquote() {
	for _, s := range []*string{
		&c.Connection, &c.Dialect,
		&c.Cluster.Host, &c.Cluster.DBName, &c.Cluster.DBUser, &c.Cluster.DBPassword, &c.Cluster.DBPort,
		&c.S3.LogData, &c.S3.LogJSONPath, &c.S3.SongData, &c.S3.Endpoint,
		&c.S3.AccessKeyID, &c.S3.SecretAccessKey,
		&c.IAMRole.ARN, &c.Region.Region,
	} {
		*s = etl.Unquote(*s)
	}
}

// WarehouseDialect returns the parsed dialect.
func (c *Config) WarehouseDialect() (warehouse.Dialect, error) {
	return warehouse.ParseDialect(c.Dialect)
}

// ConnString returns the connection string, built from the Cluster section
// when Connection is not set.
func (c *Config) ConnString() (string, error) {
	if c.Connection != "" {
		return c.Connection, nil
	}
	if c.Cluster.Host == "" {
		return "", fmt.Errorf("connection string or cluster host is required")
	}
	if c.Cluster.DBName == "" {
		return "", fmt.Errorf("cluster db_name is required")
	}
	if c.Cluster.DBUser == "" {
		return "", fmt.Errorf("cluster db_user is required")
	}

	port := c.Cluster.DBPort
	if port == "" {
		port = "5439"
	}
	if _, err := strconv.ParseUint(port, 10, 16); err != nil {
		return "", fmt.Errorf("invalid cluster db_port: %s", port)
	}

	u := url.URL{
		Scheme: "postgres",
		Host:   net.JoinHostPort(c.Cluster.Host, port),
		Path:   "/" + c.Cluster.DBName,
	}
	if c.Cluster.DBPassword != "" {
		u.User = url.UserPassword(c.Cluster.DBUser, c.Cluster.DBPassword)
	} else {
		u.User = url.User(c.Cluster.DBUser)
	}
	return u.String(), nil
}

// CopyParams returns the staging load parameters.
func (c *Config) CopyParams() etl.CopyParams {
	return etl.CopyParams{
		LogData:     c.S3.LogData,
		SongData:    c.S3.SongData,
		LogJSONPath: c.S3.LogJSONPath,
		RoleARN:     c.IAMRole.ARN,
		Region:      c.Region.Region,
	}
}

// Validate checks that a warehouse connection can be built.
func (c *Config) Validate() error {
	if _, err := c.WarehouseDialect(); err != nil {
		return err
	}
	if _, err := c.ConnString(); err != nil {
		return err
	}
	return nil
}

// ValidateCopy checks configuration required for the copy phase.
func (c *Config) ValidateCopy() error {
	if err := c.Validate(); err != nil {
		return err
	}
	d, _ := c.WarehouseDialect()
	if d == warehouse.Postgres {
		// The local loader reads the sources itself; no role is assumed.
		if c.S3.LogData == "" || c.S3.SongData == "" || c.S3.LogJSONPath == "" {
			return fmt.Errorf("s3 log_data, song_data and log_jsonpath are required")
		}
		return nil
	}
	return c.CopyParams().Validate()
}

// ValidateSources checks configuration required to inspect the sources.
func (c *Config) ValidateSources() error {
	if c.S3.LogData == "" {
		return fmt.Errorf("s3 log_data is required")
	}
	if c.S3.SongData == "" {
		return fmt.Errorf("s3 song_data is required")
	}
	if c.S3.LogJSONPath == "" {
		return fmt.Errorf("s3 log_jsonpath is required")
	}
	return nil
}

// ValidateGenerate checks configuration required for the generate command.
func (c *Config) ValidateGenerate() error {
	g := c.Generate
	if g.Output == "" {
		return fmt.Errorf("generate output location is required")
	}
	if g.Songs < 1 {
		return fmt.Errorf("generate songs must be at least 1")
	}
	if g.Users < 1 {
		return fmt.Errorf("generate users must be at least 1")
	}
	if g.Days < 1 {
		return fmt.Errorf("generate days must be at least 1")
	}
	if g.EventsPerDay < 1 {
		return fmt.Errorf("generate events_per_day must be at least 1")
	}
	if _, err := profiles.Get(g.Profile, g.Timezone); err != nil {
		return fmt.Errorf("generate profile: %w", err)
	}
	return nil
}

func isLegacyFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".cfg", ".ini":
		return true
	}
	return false
}
