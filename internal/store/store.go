package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/ppiankov/dialectica/internal/model"
)

// ErrNotFound is returned by Get when no document has the requested id.
var ErrNotFound = errors.New("document not found")

// Store holds the evidence corpus. Documents are immutable once added;
// readers always see a consistent snapshot.
type Store interface {
	// Get returns the document with the given id, or ErrNotFound.
	Get(ctx context.Context, id string) (model.Document, error)

	// GetMany returns the documents for ids in input order, silently
	// skipping unknown ids. The second return lists the missing ids
	// for the caller to log; bulk lookup never errors on misses.
	GetMany(ctx context.Context, ids []string) ([]model.Document, []string)

	// Add ingests documents. Writers are serialized; concurrent reads
	// keep seeing the previous snapshot until Add returns.
	Add(ctx context.Context, docs ...model.Document) error

	// All returns every document ordered by id.
	All(ctx context.Context) ([]model.Document, error)

	// Count returns the number of stored documents.
	Count(ctx context.Context) (int, error)

	// Close releases backend resources.
	Close() error
}

// New creates a store for the configured backend.
func New(cfg model.StoreConfig) (Store, error) {
	switch cfg.Backend {
	case "", "memory":
		return NewMemory(), nil
	case "badger":
		if cfg.Path == "" {
			return nil, fmt.Errorf("badger backend requires store.path")
		}
		return NewBadger(cfg.Path)
	default:
		return nil, fmt.Errorf("unsupported store backend: %s (supported: memory, badger)", cfg.Backend)
	}
}
