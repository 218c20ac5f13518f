//-------------------------------------------------------------------------
//
// pgEdge DWH ETL
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package testutil provides utilities for integration testing.
package testutil

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"testing"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/minio"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
)

const (
	// TestConnEnv names a running PostgreSQL server to use instead of a
	// container.
	TestConnEnv = "PGEDGE_TEST_CONN"

	// TestDBPrefix is the prefix for test databases.
	TestDBPrefix = "dwh_etl_test_"

	// MinioRegion is the region test buckets are created in.
	MinioRegion = "us-east-1"
)

// StartPostgres returns a connection string to an empty database. When
// PGEDGE_TEST_CONN is set a fresh database is created on that server;
// otherwise a PostgreSQL container is started. Both are removed when the
// test ends.
func StartPostgres(t *testing.T) string {
	t.Helper()

	if base := os.Getenv(TestConnEnv); base != "" {
		connStr, dbName := CreateTestDB(t, base)
		t.Cleanup(func() {
			if t.Failed() {
				t.Logf("Test failed - keeping database %s for diagnostics", dbName)
				return
			}
			DropTestDB(t, base, dbName)
		})
		return connStr
	}

	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	pgContainer, err := postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase("dwh"),
		postgres.WithUsername("dwhuser"),
		postgres.WithPassword("dwhpass"),
		postgres.BasicWaitStrategies(),
	)
	if err != nil {
		t.Fatalf("Failed to start postgres container: %v", err)
	}
	t.Cleanup(func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to cleanup postgres container: %v", err)
		}
	})

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("Failed to get postgres connection string: %v", err)
	}
	return connStr
}

// CreateTestDB creates a uniquely named database on the server and returns
// its connection string and name.
func CreateTestDB(t *testing.T, baseConnStr string) (string, string) {
	t.Helper()

	// Generate random suffix for database name
	randomBytes := make([]byte, 8)
	if _, err := rand.Read(randomBytes); err != nil {
		t.Fatalf("Failed to generate random database name: %v", err)
	}
	dbName := TestDBPrefix + hex.EncodeToString(randomBytes)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, baseConnStr)
	if err != nil {
		t.Fatalf("Failed to connect to postgres: %v", err)
	}
	defer pool.Close()

	if _, err := pool.Exec(ctx, fmt.Sprintf("CREATE DATABASE %s", dbName)); err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}

	config, err := pgxpool.ParseConfig(baseConnStr)
	if err != nil {
		t.Fatalf("Failed to parse connection string: %v", err)
	}

	// ConnString() doesn't reflect changes made to ConnConfig.Database
	cc := config.ConnConfig
	if cc.Password != "" {
		return fmt.Sprintf("postgres://%s:%s@%s:%d/%s",
			cc.User, cc.Password, cc.Host, cc.Port, dbName), dbName
	}
	return fmt.Sprintf("postgres://%s@%s:%d/%s",
		cc.User, cc.Host, cc.Port, dbName), dbName
}

// DropTestDB drops the test database.
func DropTestDB(t *testing.T, baseConnStr, dbName string) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, baseConnStr)
	if err != nil {
		t.Logf("Warning: Failed to connect to drop test database: %v", err)
		return
	}
	defer pool.Close()

	// Terminate connections to the database
	_, _ = pool.Exec(ctx, `
        SELECT pg_terminate_backend(pid)
        FROM pg_stat_activity
        WHERE datname = $1 AND pid <> pg_backend_pid()
    `, dbName)

	if _, err := pool.Exec(ctx, fmt.Sprintf("DROP DATABASE IF EXISTS %s", dbName)); err != nil {
		t.Logf("Warning: Failed to drop test database: %v", err)
	}
}

// Minio describes a running MinIO server.
type Minio struct {
	// Endpoint carries the scheme, e.g. http://127.0.0.1:32768.
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	Region          string

	Client *s3.Client
}

// StartMinio starts a MinIO container and returns a client for it.
func StartMinio(t *testing.T) *Minio {
	t.Helper()
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	minioContainer, err := minio.Run(ctx, "minio/minio:latest",
		minio.WithUsername("minioadmin"),
		minio.WithPassword("minioadmin"),
	)
	if err != nil {
		t.Fatalf("Failed to start minio container: %v", err)
	}
	t.Cleanup(func() {
		if err := minioContainer.Terminate(ctx); err != nil {
			t.Logf("failed to cleanup minio container: %v", err)
		}
	})

	host, err := minioContainer.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to get minio host: %v", err)
	}
	// localhost may resolve to an address the container does not listen on
	if host == "localhost" {
		host = "127.0.0.1"
	}
	port, err := minioContainer.MappedPort(ctx, "9000")
	if err != nil {
		t.Fatalf("Failed to get minio port: %v", err)
	}

	m := &Minio{
		Endpoint:        fmt.Sprintf("http://%s:%s", host, port.Port()),
		AccessKeyID:     minioContainer.Username,
		SecretAccessKey: minioContainer.Password,
		Region:          MinioRegion,
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(m.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			m.AccessKeyID, m.SecretAccessKey, "")),
	)
	if err != nil {
		t.Fatalf("Failed to load AWS config: %v", err)
	}
	m.Client = s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = &m.Endpoint
		o.UsePathStyle = true
	})
	return m
}

// CreateBucket creates a bucket on the server.
func (m *Minio) CreateBucket(t *testing.T, bucket string) {
	t.Helper()
	_, err := m.Client.CreateBucket(context.Background(), &s3.CreateBucketInput{
		Bucket: &bucket,
	})
	if err != nil {
		t.Fatalf("Failed to create bucket %s: %v", bucket, err)
	}
}
