// Package retrieve ranks corpus documents against a query.
package retrieve

import (
	"context"
	"fmt"
	"strings"

	"github.com/philippgille/chromem-go"

	"github.com/ppiankov/dialectica/internal/model"
	"github.com/ppiankov/dialectica/internal/store"
)

// DefaultTopK is the per-query document budget when none is configured.
const DefaultTopK = 6

// Retriever selects the evidence pool for a query.
type Retriever interface {
	// Retrieve returns up to k documents ranked by descending relevance.
	// Ties are broken by ascending document id, so a fixed (query, corpus)
	// pair always yields the same ordering. An empty result means the
	// corpus is empty, which the caller must handle; it is not an error.
	Retrieve(ctx context.Context, query model.Query, k int) ([]model.Document, error)
}

// New creates a retriever for the configured method. The embedding
// function is only consulted by the vector method; pass nil to use the
// deterministic local embedder.
func New(cfg model.RetrievalConfig, st store.Store, embed chromem.EmbeddingFunc) (Retriever, error) {
	switch strings.ToLower(cfg.Method) {
	case "", "tfidf":
		return NewTFIDF(st), nil

	case "vector":
		return NewVector(cfg, st, embed)

	default:
		return nil, fmt.Errorf("unsupported retrieval method: %s (supported: tfidf, vector)", cfg.Method)
	}
}
