package postgres

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/tablewise/internal/storage"
)

// Runs only against a real database: TEST_DATABASE_URL=postgres://... go test ./...
func TestPostgresBackend(t *testing.T) {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	backend, err := New(ctx, dsn)
	require.NoError(t, err)
	defer backend.Close()

	_, err = backend.pool.Exec(ctx, "DELETE FROM documents")
	require.NoError(t, err)

	_, err = backend.Read(ctx, storage.CollectionMenu)
	require.ErrorIs(t, err, storage.ErrNotExist)

	require.NoError(t, backend.Write(ctx, storage.CollectionMenu, []byte(`[{"id":"p1"}]`)))
	data, err := backend.Read(ctx, storage.CollectionMenu)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":"p1"}]`, string(data))

	err = backend.WriteBatch(ctx,
		storage.Document{Collection: storage.CollectionSales, Data: []byte(`[{"id":"s1"}]`)},
		storage.Document{Collection: storage.CollectionTables, Data: []byte(`{}`)},
	)
	require.NoError(t, err)

	tables, err := backend.Read(ctx, storage.CollectionTables)
	require.NoError(t, err)
	assert.JSONEq(t, `{}`, string(tables))
}
