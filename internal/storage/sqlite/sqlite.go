// Package sqlite provides a SQLite-backed implementation of the storage.Backend interface.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"github.com/mmynk/tablewise/internal/storage"
)

// Ensure SQLiteBackend implements storage.Backend and storage.BatchWriter
var (
	_ storage.Backend     = (*SQLiteBackend)(nil)
	_ storage.BatchWriter = (*SQLiteBackend)(nil)
)

// SQLiteBackend stores each collection as one row of the documents table.
type SQLiteBackend struct {
	db *sql.DB
}

// New creates a new SQLiteBackend with the given database path.
// It creates the parent directories and runs migrations automatically.
func New(dbPath string) (*SQLiteBackend, error) {
	// Create parent directory if it doesn't exist
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// Open database with pure Go driver
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite allows one writer; a single connection avoids SQLITE_BUSY between
	// the menu and tables writers.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	// Run migrations
	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &SQLiteBackend{db: db}, nil
}

// Close closes the database connection.
func (b *SQLiteBackend) Close() error {
	return b.db.Close()
}

// Read retrieves the document body for a collection.
func (b *SQLiteBackend) Read(ctx context.Context, c storage.Collection) ([]byte, error) {
	var body string
	err := b.db.QueryRowContext(ctx,
		"SELECT body FROM documents WHERE name = ?",
		string(c),
	).Scan(&body)
	if err == sql.ErrNoRows {
		return nil, storage.ErrNotExist
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get document: %w", err)
	}

	return []byte(body), nil
}

// Write upserts the document body for a collection.
func (b *SQLiteBackend) Write(ctx context.Context, c storage.Collection, data []byte) error {
	return b.WriteBatch(ctx, storage.Document{Collection: c, Data: data})
}

// WriteBatch upserts all documents in a single transaction.
func (b *SQLiteBackend) WriteBatch(ctx context.Context, docs ...storage.Document) error {
	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().Unix()
	for _, doc := range docs {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO documents (name, body, updated_at) VALUES (?, ?, ?)
			 ON CONFLICT(name) DO UPDATE SET body = excluded.body, updated_at = excluded.updated_at`,
			string(doc.Collection), string(doc.Data), now,
		)
		if err != nil {
			return fmt.Errorf("failed to write document %s: %w", doc.Collection, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}
