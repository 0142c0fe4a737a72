package storage

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"

	"github.com/mmynk/tablewise/internal/models"
)

// Store loads and saves whole collection snapshots on top of a Backend.
//
// Loads never fail: an absent collection is created with its default content and
// an unreadable one degrades to the default. Every read-modify-write of Tables,
// and every archive, runs under a single writer lock so concurrent requests can
// never lose each other's updates.
type Store struct {
	backend Backend

	mu     sync.Mutex // guards Tables and Sales
	menuMu sync.Mutex // guards Menu
}

// New creates a Store on top of backend.
func New(backend Backend) *Store {
	return &Store{backend: backend}
}

// Close closes the underlying backend.
func (s *Store) Close() error {
	return s.backend.Close()
}

// LoadTables returns the Tables snapshot, or an empty one.
func (s *Store) LoadTables(ctx context.Context) models.Tables {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadTables(ctx)
}

// SaveTables overwrites the Tables collection.
func (s *Store) SaveTables(ctx context.Context, tables models.Tables) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(ctx, CollectionTables, tables)
}

// UpdateTables loads Tables, applies fn and saves the result, holding the writer
// lock throughout. If fn returns an error nothing is saved and the error is returned.
func (s *Store) UpdateTables(ctx context.Context, fn func(models.Tables) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tables := s.loadTables(ctx)
	if err := fn(tables); err != nil {
		return err
	}
	return s.save(ctx, CollectionTables, tables)
}

// LoadSales returns the Sales ledger, or an empty one.
func (s *Store) LoadSales(ctx context.Context) []models.ArchiveRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	sales := []models.ArchiveRecord{}
	s.load(ctx, CollectionSales, &sales, func() { sales = []models.ArchiveRecord{} })
	return sales
}

// LoadMenu returns the menu, or an empty one.
func (s *Store) LoadMenu(ctx context.Context) []models.Product {
	s.menuMu.Lock()
	defer s.menuMu.Unlock()
	return s.loadMenu(ctx)
}

// SaveMenu overwrites the Menu collection.
func (s *Store) SaveMenu(ctx context.Context, menu []models.Product) error {
	s.menuMu.Lock()
	defer s.menuMu.Unlock()
	return s.save(ctx, CollectionMenu, menu)
}

// UpdateMenu loads the menu, applies fn and saves the slice it returns.
func (s *Store) UpdateMenu(ctx context.Context, fn func([]models.Product) ([]models.Product, error)) error {
	s.menuMu.Lock()
	defer s.menuMu.Unlock()

	menu, err := fn(s.loadMenu(ctx))
	if err != nil {
		return err
	}
	return s.save(ctx, CollectionMenu, menu)
}

func (s *Store) loadTables(ctx context.Context) models.Tables {
	tables := models.Tables{}
	s.load(ctx, CollectionTables, &tables, func() { tables = models.Tables{} })

	// A JSON null decodes to a nil map.
	if tables == nil {
		tables = models.Tables{}
	}
	for id, table := range tables {
		if table == nil {
			slog.Warn("Dropping null table entry", "collection", CollectionTables, "table_id", id)
			delete(tables, id)
		}
	}
	return tables
}

func (s *Store) loadMenu(ctx context.Context) []models.Product {
	menu := []models.Product{}
	s.load(ctx, CollectionMenu, &menu, func() { menu = []models.Product{} })
	if menu == nil {
		menu = []models.Product{}
	}
	return menu
}

// load decodes collection c into v. On any failure it calls reset so v holds the
// default snapshot. An absent collection is written with its default content.
func (s *Store) load(ctx context.Context, c Collection, v any, reset func()) {
	data, err := s.backend.Read(ctx, c)
	if errors.Is(err, ErrNotExist) {
		reset()
		if err := s.save(ctx, c, v); err != nil {
			slog.Warn("Failed to create collection", "collection", c, "error", err)
		} else {
			slog.Info("Collection created", "collection", c)
		}
		return
	}
	if err != nil {
		slog.Error("Failed to read collection, using empty snapshot", "collection", c, "error", err)
		reset()
		return
	}

	if err := json.Unmarshal(data, v); err != nil {
		slog.Error("Failed to decode collection, using empty snapshot", "collection", c, "error", err)
		reset()
	}
}

func (s *Store) save(ctx context.Context, c Collection, v any) error {
	data, err := encode(c, v)
	if err != nil {
		return err
	}
	if err := s.backend.Write(ctx, c, data); err != nil {
		return &Error{Op: "write", Collection: c, Err: err}
	}
	return nil
}

func encode(c Collection, v any) ([]byte, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, &Error{Op: "encode", Collection: c, Err: err}
	}
	return data, nil
}
