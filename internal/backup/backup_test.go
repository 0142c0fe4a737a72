package backup

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/tablewise/internal/models"
	"github.com/mmynk/tablewise/internal/storage"
	"github.com/mmynk/tablewise/internal/storage/file"
)

func newRunner(t *testing.T, interval time.Duration) (*Runner, *storage.Store, string) {
	t.Helper()

	backend, err := file.New(t.TempDir())
	require.NoError(t, err)

	dir := filepath.Join(t.TempDir(), "backups")
	r := New(backend, dir, interval)
	r.now = func() time.Time { return time.Date(2026, 3, 14, 16, 30, 0, 0, time.UTC) }
	return r, storage.New(backend), dir
}

func TestSnapshot(t *testing.T) {
	r, store, dir := newRunner(t, time.Hour)
	ctx := context.Background()

	path, err := r.Snapshot(ctx)
	require.NoError(t, err)
	assert.Empty(t, path, "nothing written yet")

	require.NoError(t, store.SaveMenu(ctx, []models.Product{{ID: "p1", Name: "Ayran", Price: 25}}))

	path, err = r.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "menu-20260314T163000.000Z.json"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":"p1","name":"Ayran","price":25}]`, string(data))
}

func TestRun_Disabled(t *testing.T) {
	r, _, _ := newRunner(t, 0)
	require.NoError(t, r.Run(context.Background()))
}

func TestRun_StopsOnCancel(t *testing.T) {
	r, store, dir := newRunner(t, 10*time.Millisecond)
	require.NoError(t, store.SaveMenu(context.Background(), []models.Product{}))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()

	require.Eventually(t, func() bool {
		entries, err := os.ReadDir(dir)
		return err == nil && len(entries) > 0
	}, time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
