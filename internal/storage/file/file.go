// Package file provides a storage.Backend that keeps each collection in its own JSON file.
package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/mmynk/tablewise/internal/storage"
)

// Ensure Backend implements storage.Backend
var _ storage.Backend = (*Backend)(nil)

// Backend stores collections as <dir>/<collection>.json.
type Backend struct {
	dir string
}

// New creates a Backend rooted at dir, creating the directory if needed.
func New(dir string) (*Backend, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	return &Backend{dir: dir}, nil
}

// Path returns the file that holds collection c.
func (b *Backend) Path(c storage.Collection) string {
	return filepath.Join(b.dir, string(c)+".json")
}

// Read returns the contents of the collection file.
func (b *Backend) Read(ctx context.Context, c storage.Collection) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(b.Path(c))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, storage.ErrNotExist
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", c, err)
	}
	return data, nil
}

// Write replaces the collection file atomically: the data goes to a temp file
// in the same directory, is synced, and is then renamed over the old file.
func (b *Backend) Write(ctx context.Context, c storage.Collection, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return WriteFileAtomic(b.Path(c), data)
}

// Close is a no-op.
func (b *Backend) Close() error {
	return nil
}

// WriteFileAtomic writes data to path so that readers see either the old or
// the new contents, never a partial file.
func WriteFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", filepath.Base(path), err)
	}
	return nil
}
