//-------------------------------------------------------------------------
//
// pgEdge DWH ETL
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package objstore reads and writes the pipeline's source objects in S3 or
// on the local filesystem.
package objstore

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"
)

// URI schemes.
const (
	SchemeS3   = "s3"
	SchemeFile = "file"
)

// Location is a parsed object URI. For s3 it names a bucket and a key or key
// prefix; for file it names a filesystem path.
type Location struct {
	Scheme string
	Bucket string
	Key    string
	Path   string
}

// ParseURI parses s3://bucket/key, file:///path or a plain filesystem path.
func ParseURI(uri string) (Location, error) {
	uri = strings.TrimSpace(uri)
	if uri == "" {
		return Location{}, fmt.Errorf("empty location")
	}

	switch {
	case strings.HasPrefix(uri, "s3://"):
		rest := strings.TrimPrefix(uri, "s3://")
		bucket, key, _ := strings.Cut(rest, "/")
		if err := validateBucket(bucket); err != nil {
			return Location{}, fmt.Errorf("invalid location %q: %w", uri, err)
		}
		return Location{Scheme: SchemeS3, Bucket: bucket, Key: key}, nil

	case strings.HasPrefix(uri, "file://"):
		p := strings.TrimPrefix(uri, "file://")
		if p == "" {
			return Location{}, fmt.Errorf("invalid location %q: missing path", uri)
		}
		return Location{Scheme: SchemeFile, Path: filepath.Clean(p)}, nil

	case strings.Contains(uri, "://"):
		scheme, _, _ := strings.Cut(uri, "://")
		return Location{}, fmt.Errorf("unsupported location scheme %q (expected s3 or file)", scheme)
	}

	return Location{Scheme: SchemeFile, Path: filepath.Clean(uri)}, nil
}

// validateBucket applies the S3 bucket naming rules that matter for URIs.
func validateBucket(bucket string) error {
	if bucket == "" {
		return fmt.Errorf("missing bucket name")
	}
	if len(bucket) < 3 || len(bucket) > 63 {
		return fmt.Errorf("bucket name must be 3-63 characters, got %d", len(bucket))
	}
	for _, r := range bucket {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '.':
		default:
			return fmt.Errorf("bucket name %q contains invalid character %q", bucket, r)
		}
	}
	return nil
}

// String renders the location as a URI.
func (l Location) String() string {
	if l.Scheme == SchemeS3 {
		if l.Key == "" {
			return "s3://" + l.Bucket
		}
		return "s3://" + l.Bucket + "/" + l.Key
	}
	return "file://" + l.Path
}

// Join returns the location with elem appended to the key or path.
func (l Location) Join(elem ...string) Location {
	if l.Scheme == SchemeS3 {
		parts := append([]string{l.Key}, elem...)
		l.Key = strings.TrimPrefix(path.Join(parts...), "/")
		return l
	}
	l.Path = filepath.Join(append([]string{l.Path}, elem...)...)
	return l
}

// Base returns the last element of the key or path.
func (l Location) Base() string {
	if l.Scheme == SchemeS3 {
		return path.Base(l.Key)
	}
	return filepath.Base(l.Path)
}
