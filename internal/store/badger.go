package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	badger "github.com/dgraph-io/badger/v4"

	"github.com/ppiankov/dialectica/internal/model"
)

// Badger is a persistent store on BadgerDB, for batch runs that reuse
// a corpus across invocations.
type Badger struct {
	db *badger.DB
}

// NewBadger opens (or creates) a badger-backed store at path.
func NewBadger(path string) (*Badger, error) {
	opts := badger.DefaultOptions(path).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger store: %w", err)
	}
	return &Badger{db: db}, nil
}

// Get returns the document with the given id, or ErrNotFound.
func (b *Badger) Get(_ context.Context, id string) (model.Document, error) {
	var doc model.Document
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(id))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return fmt.Errorf("get %q: %w", id, ErrNotFound)
			}
			return fmt.Errorf("get %q: %w", id, err)
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &doc)
		})
	})
	if err != nil {
		return model.Document{}, err
	}
	return doc, nil
}

// GetMany returns known documents in input order plus the missing ids.
func (b *Badger) GetMany(_ context.Context, ids []string) ([]model.Document, []string) {
	var found []model.Document
	var missing []string
	_ = b.db.View(func(txn *badger.Txn) error {
		for _, id := range ids {
			item, err := txn.Get([]byte(id))
			if err != nil {
				missing = append(missing, id)
				continue
			}
			var doc model.Document
			if err := item.Value(func(val []byte) error { return json.Unmarshal(val, &doc) }); err != nil {
				missing = append(missing, id)
				continue
			}
			found = append(found, doc)
		}
		return nil
	})
	return found, missing
}

// Add ingests documents in a single write batch.
func (b *Badger) Add(_ context.Context, docs ...model.Document) error {
	wb := b.db.NewWriteBatch()
	defer wb.Cancel()

	for _, doc := range docs {
		data, err := json.Marshal(doc)
		if err != nil {
			return fmt.Errorf("encode document %q: %w", doc.ID, err)
		}
		if err := wb.Set([]byte(doc.ID), data); err != nil {
			return fmt.Errorf("write document %q: %w", doc.ID, err)
		}
	}
	if err := wb.Flush(); err != nil {
		return fmt.Errorf("flush documents: %w", err)
	}
	return nil
}

// All returns every document ordered by id.
func (b *Badger) All(_ context.Context) ([]model.Document, error) {
	var docs []model.Document
	err := b.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			var doc model.Document
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &doc)
			})
			if err != nil {
				return fmt.Errorf("decode document %q: %w", string(it.Item().Key()), err)
			}
			docs = append(docs, doc)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(docs, func(i, j int) bool {
		return model.CompareDocIDs(docs[i].ID, docs[j].ID) < 0
	})
	return docs, nil
}

// Count returns the number of stored documents.
func (b *Badger) Count(_ context.Context) (int, error) {
	count := 0
	err := b.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			count++
		}
		return nil
	})
	return count, err
}

// Close releases the underlying database.
func (b *Badger) Close() error {
	return b.db.Close()
}
