package objstore

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// FileStore serves file:// URIs and plain paths.
type FileStore struct{}

// NewFileStore creates a file store.
func NewFileStore() *FileStore {
	return &FileStore{}
}

func (s *FileStore) path(uri string) (string, error) {
	loc, err := ParseURI(uri)
	if err != nil {
		return "", err
	}
	if loc.Scheme != SchemeFile {
		return "", fmt.Errorf("not a file location: %s", uri)
	}
	return loc.Path, nil
}

// List walks a directory, or returns the file itself. A path that is neither
// is treated as a name prefix within its parent directory.
func (s *FileStore) List(ctx context.Context, uri string) ([]string, error) {
	root, err := s.path(uri)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(root)
	switch {
	case err == nil && !info.IsDir():
		return []string{root}, nil
	case err == nil:
		return walk(ctx, root, "")
	case os.IsNotExist(err):
		return walk(ctx, filepath.Dir(root), root)
	default:
		return nil, err
	}
}

func walk(ctx context.Context, root, prefix string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) && p == root {
				return fs.SkipAll
			}
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}
		if prefix != "" && !strings.HasPrefix(p, prefix) {
			return nil
		}
		files = append(files, p)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", root, err)
	}
	sort.Strings(files)
	return files, nil
}

// Open implements Store.
func (s *FileStore) Open(ctx context.Context, uri string) (io.ReadCloser, error) {
	p, err := s.path(uri)
	if err != nil {
		return nil, err
	}
	return os.Open(p)
}

// Put implements Store.
func (s *FileStore) Put(ctx context.Context, uri string, body []byte) error {
	p, err := s.path(uri)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", p, err)
	}
	return os.WriteFile(p, body, 0644)
}

// Exists implements Store.
func (s *FileStore) Exists(ctx context.Context, uri string) (bool, error) {
	p, err := s.path(uri)
	if err != nil {
		return false, err
	}
	info, err := os.Stat(p)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return !info.IsDir(), nil
}
