// Package backup periodically copies the menu document to timestamped files.
package backup

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/mmynk/tablewise/internal/storage"
	"github.com/mmynk/tablewise/internal/storage/file"
)

// Runner writes a copy of a collection to dir every interval.
type Runner struct {
	backend    storage.Backend
	collection storage.Collection
	dir        string
	interval   time.Duration
	now        func() time.Time
}

// New creates a Runner that backs up the Menu collection of backend.
func New(backend storage.Backend, dir string, interval time.Duration) *Runner {
	return &Runner{
		backend:    backend,
		collection: storage.CollectionMenu,
		dir:        dir,
		interval:   interval,
		now:        time.Now,
	}
}

// Run takes a snapshot every interval until ctx is cancelled.
// A non-positive interval disables backups and Run returns immediately.
// Snapshot failures are logged and retried on the next tick.
func (r *Runner) Run(ctx context.Context) error {
	if r.interval <= 0 {
		slog.Info("Backups disabled")
		return nil
	}

	slog.Info("Backup loop started", "dir", r.dir, "interval", r.interval)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("Backup loop stopped")
			return nil
		case <-ticker.C:
			if _, err := r.Snapshot(ctx); err != nil {
				slog.Error("Backup failed", "collection", r.collection, "error", err)
			}
		}
	}
}

// Snapshot copies the collection's current bytes to
// <dir>/<collection>-<timestamp>.json and returns the file path.
// A collection that has never been written is skipped with an empty path.
func (r *Runner) Snapshot(ctx context.Context) (string, error) {
	data, err := r.backend.Read(ctx, r.collection)
	if errors.Is(err, storage.ErrNotExist) {
		slog.Debug("Nothing to back up", "collection", r.collection)
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", r.collection, err)
	}

	if err := os.MkdirAll(r.dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create backup directory: %w", err)
	}

	name := fmt.Sprintf("%s-%s.json", r.collection, r.now().UTC().Format("20060102T150405.000Z"))
	path := filepath.Join(r.dir, name)
	if err := file.WriteFileAtomic(path, data); err != nil {
		return "", err
	}

	slog.Info("Backup written", "collection", r.collection, "path", path, "bytes", len(data))
	return path, nil
}
