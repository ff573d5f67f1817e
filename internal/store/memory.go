package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/ppiankov/dialectica/internal/model"
)

// Memory is the in-memory store. Reads go against an immutable
// snapshot map with no locking; Add copies the snapshot under a
// writer lock and swaps it atomically.
type Memory struct {
	snapshot atomic.Pointer[map[string]model.Document]
	mu       sync.Mutex // serializes writers
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	m := &Memory{}
	empty := make(map[string]model.Document)
	m.snapshot.Store(&empty)
	return m
}

// Get returns the document with the given id, or ErrNotFound.
func (m *Memory) Get(_ context.Context, id string) (model.Document, error) {
	docs := *m.snapshot.Load()
	doc, ok := docs[id]
	if !ok {
		return model.Document{}, fmt.Errorf("get %q: %w", id, ErrNotFound)
	}
	return doc, nil
}

// GetMany returns known documents in input order plus the missing ids.
func (m *Memory) GetMany(_ context.Context, ids []string) ([]model.Document, []string) {
	docs := *m.snapshot.Load()
	var found []model.Document
	var missing []string
	for _, id := range ids {
		if doc, ok := docs[id]; ok {
			found = append(found, doc)
		} else {
			missing = append(missing, id)
		}
	}
	return found, missing
}

// Add ingests documents, replacing any existing ones with the same id.
func (m *Memory) Add(_ context.Context, docs ...model.Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	old := *m.snapshot.Load()
	next := make(map[string]model.Document, len(old)+len(docs))
	for id, doc := range old {
		next[id] = doc
	}
	for _, doc := range docs {
		next[doc.ID] = doc
	}
	m.snapshot.Store(&next)
	return nil
}

// All returns every document ordered by id.
func (m *Memory) All(_ context.Context) ([]model.Document, error) {
	snap := *m.snapshot.Load()
	docs := make([]model.Document, 0, len(snap))
	for _, doc := range snap {
		docs = append(docs, doc)
	}
	sort.Slice(docs, func(i, j int) bool {
		return model.CompareDocIDs(docs[i].ID, docs[j].ID) < 0
	})
	return docs, nil
}

// Count returns the number of stored documents.
func (m *Memory) Count(_ context.Context) (int, error) {
	return len(*m.snapshot.Load()), nil
}

// Close is a no-op for the memory backend.
func (m *Memory) Close() error { return nil }
