package storage

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/mmynk/tablewise/internal/models"
)

// Archive appends record to the Sales ledger and removes tableID from Tables.
//
// Sales is written before Tables. If the Sales write fails, Tables is left
// untouched; if only the Tables write fails, the bill is already recorded and
// the table lingers. A confirmed bill is never lost between the two steps.
// Backends implementing BatchWriter get both writes in one transaction.
func (s *Store) Archive(ctx context.Context, tableID string, record *models.ArchiveRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tables := s.loadTables(ctx)
	return s.archive(ctx, tableID, record, tables)
}

// ArchiveTable closes a table under the writer lock. build receives the loaded
// Tables snapshot and returns the record to archive; it may remove the table
// from the snapshot itself. A nil record means there is nothing to close and
// nothing is written.
func (s *Store) ArchiveTable(ctx context.Context, tableID string, build func(models.Tables) *models.ArchiveRecord) (*models.ArchiveRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tables := s.loadTables(ctx)
	record := build(tables)
	if record == nil {
		return nil, nil
	}

	if err := s.archive(ctx, tableID, record, tables); err != nil {
		return nil, err
	}
	return record, nil
}

// archive must be called with s.mu held.
func (s *Store) archive(ctx context.Context, tableID string, record *models.ArchiveRecord, tables models.Tables) error {
	sales, err := s.loadSalesStrict(ctx)
	if err != nil {
		return err
	}
	sales = append(sales, *record)
	delete(tables, tableID)

	salesData, err := encode(CollectionSales, sales)
	if err != nil {
		return err
	}
	tablesData, err := encode(CollectionTables, tables)
	if err != nil {
		return err
	}

	if bw, ok := s.backend.(BatchWriter); ok {
		err := bw.WriteBatch(ctx,
			Document{Collection: CollectionSales, Data: salesData},
			Document{Collection: CollectionTables, Data: tablesData},
		)
		if err != nil {
			return &Error{Op: "archive", Collection: CollectionSales, Err: err}
		}
		return nil
	}

	if err := s.backend.Write(ctx, CollectionSales, salesData); err != nil {
		return &Error{Op: "write", Collection: CollectionSales, Err: err}
	}
	// The sale is recorded; a cancelled caller must not leave the table open
	// for a retry to bill twice.
	if err := s.backend.Write(context.WithoutCancel(ctx), CollectionTables, tablesData); err != nil {
		slog.Error("Sale archived but table not removed",
			"table_id", tableID,
			"record_id", record.ID,
			"error", err,
		)
		return &Error{Op: "write", Collection: CollectionTables, Err: err}
	}
	return nil
}

// loadSalesStrict reads the ledger for appending. Only an absent ledger
// degrades to empty; an unreadable one is an error so it is never overwritten.
func (s *Store) loadSalesStrict(ctx context.Context) ([]models.ArchiveRecord, error) {
	data, err := s.backend.Read(ctx, CollectionSales)
	if errors.Is(err, ErrNotExist) {
		return []models.ArchiveRecord{}, nil
	}
	if err != nil {
		return nil, &Error{Op: "read", Collection: CollectionSales, Err: err}
	}

	var sales []models.ArchiveRecord
	if err := json.Unmarshal(data, &sales); err != nil {
		return nil, &Error{Op: "decode", Collection: CollectionSales, Err: err}
	}
	if sales == nil {
		sales = []models.ArchiveRecord{}
	}
	return sales, nil
}
