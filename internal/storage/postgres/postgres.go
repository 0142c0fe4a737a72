// Package postgres provides a PostgreSQL-backed implementation of the storage.Backend interface.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mmynk/tablewise/internal/storage"
)

// Ensure PostgresBackend implements storage.Backend and storage.BatchWriter
var (
	_ storage.Backend     = (*PostgresBackend)(nil)
	_ storage.BatchWriter = (*PostgresBackend)(nil)
)

const schema = `
CREATE TABLE IF NOT EXISTS documents (
    name TEXT PRIMARY KEY,
    body JSONB NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

// PostgresBackend stores each collection as one row of the documents table.
type PostgresBackend struct {
	pool *pgxpool.Pool
}

// New connects to the database at dsn, verifies the connection and runs migrations.
func New(ctx context.Context, dsn string) (*PostgresBackend, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return &PostgresBackend{pool: pool}, nil
}

// Close closes the pool.
func (b *PostgresBackend) Close() error {
	b.pool.Close()
	return nil
}

// Read retrieves the document body for a collection.
func (b *PostgresBackend) Read(ctx context.Context, c storage.Collection) ([]byte, error) {
	var body []byte
	err := b.pool.QueryRow(ctx,
		"SELECT body FROM documents WHERE name = $1",
		string(c),
	).Scan(&body)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, storage.ErrNotExist
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get document: %w", err)
	}
	return body, nil
}

// Write upserts the document body for a collection.
func (b *PostgresBackend) Write(ctx context.Context, c storage.Collection, data []byte) error {
	return b.WriteBatch(ctx, storage.Document{Collection: c, Data: data})
}

// WriteBatch upserts all documents in a single transaction.
func (b *PostgresBackend) WriteBatch(ctx context.Context, docs ...storage.Document) error {
	return pgx.BeginFunc(ctx, b.pool, func(tx pgx.Tx) error {
		for _, doc := range docs {
			_, err := tx.Exec(ctx,
				`INSERT INTO documents (name, body, updated_at) VALUES ($1, $2::jsonb, now())
				 ON CONFLICT (name) DO UPDATE SET body = EXCLUDED.body, updated_at = EXCLUDED.updated_at`,
				string(doc.Collection), string(doc.Data),
			)
			if err != nil {
				return fmt.Errorf("failed to write document %s: %w", doc.Collection, err)
			}
		}
		return nil
	})
}
