// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"
	"fmt"
)

// Collection names one of the independently stored documents.
type Collection string

const (
	CollectionTables Collection = "tables"
	CollectionMenu   Collection = "menu"
	CollectionSales  Collection = "sales"
)

// ErrNotExist is returned by Backend.Read when a collection has never been written.
var ErrNotExist = errors.New("collection does not exist")

// Backend defines the interface for document storage operations.
// This abstraction allows swapping storage backends (files, SQLite, PostgreSQL)
// without changing the store or service layer.
type Backend interface {
	// Read returns the stored bytes of a collection.
	// Returns ErrNotExist if the collection has never been written.
	Read(ctx context.Context, c Collection) ([]byte, error)

	// Write replaces the stored bytes of a collection.
	// A subsequent Read never observes a partially written document.
	Write(ctx context.Context, c Collection, data []byte) error

	// Close releases any resources held by the backend.
	Close() error
}

// Document is one collection write in a batch.
type Document struct {
	Collection Collection
	Data       []byte
}

// BatchWriter is implemented by backends that can write several collections
// atomically. Documents are applied in order.
type BatchWriter interface {
	WriteBatch(ctx context.Context, docs ...Document) error
}

// Error reports a failed read or write of a collection.
type Error struct {
	Op         string
	Collection Collection
	Err        error
}

func (e *Error) Error() string {
	return fmt.Sprintf("storage: %s %s: %v", e.Op, e.Collection, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}
