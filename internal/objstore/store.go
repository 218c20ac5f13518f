package objstore

import (
	"context"
	"fmt"
	"io"
	"sync"
)

// Store is an object store. URIs are in any form ParseURI accepts.
type Store interface {
	// List returns the URIs of all objects whose key starts with the
	// prefix uri, sorted.
	List(ctx context.Context, uri string) ([]string, error)

	// Open opens a single object for reading.
	Open(ctx context.Context, uri string) (io.ReadCloser, error)

	// Put writes a single object, replacing any existing one.
	Put(ctx context.Context, uri string, body []byte) error

	// Exists reports whether a single object exists.
	Exists(ctx context.Context, uri string) (bool, error)
}

// Mux dispatches to an S3 or file store by URI scheme. The S3 client is
// created on first use so file-only runs need no AWS configuration.
type Mux struct {
	cfg  S3Config
	file *FileStore

	once  sync.Once
	s3    Store
	s3Err error
}

// NewMux creates a store for both schemes.
func NewMux(cfg S3Config) *Mux {
	return &Mux{cfg: cfg, file: NewFileStore()}
}

// NewMuxWithS3 creates a store that uses the given store for s3 URIs.
func NewMuxWithS3(s3 Store) *Mux {
	m := &Mux{file: NewFileStore(), s3: s3}
	m.once.Do(func() {})
	return m
}

func (m *Mux) store(ctx context.Context, uri string) (Store, error) {
	loc, err := ParseURI(uri)
	if err != nil {
		return nil, err
	}
	if loc.Scheme == SchemeFile {
		return m.file, nil
	}

	m.once.Do(func() {
		m.s3, m.s3Err = NewS3Store(ctx, m.cfg)
	})
	if m.s3Err != nil {
		return nil, fmt.Errorf("failed to create S3 client: %w", m.s3Err)
	}
	return m.s3, nil
}

// List implements Store.
func (m *Mux) List(ctx context.Context, uri string) ([]string, error) {
	s, err := m.store(ctx, uri)
	if err != nil {
		return nil, err
	}
	return s.List(ctx, uri)
}

// Open implements Store.
func (m *Mux) Open(ctx context.Context, uri string) (io.ReadCloser, error) {
	s, err := m.store(ctx, uri)
	if err != nil {
		return nil, err
	}
	return s.Open(ctx, uri)
}

// Put implements Store.
func (m *Mux) Put(ctx context.Context, uri string, body []byte) error {
	s, err := m.store(ctx, uri)
	if err != nil {
		return err
	}
	return s.Put(ctx, uri, body)
}

// Exists implements Store.
func (m *Mux) Exists(ctx context.Context, uri string) (bool, error) {
	s, err := m.store(ctx, uri)
	if err != nil {
		return false, err
	}
	return s.Exists(ctx, uri)
}
