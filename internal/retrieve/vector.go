package retrieve

import (
	"context"
	"fmt"
	"hash/fnv"
	"log/slog"
	"math"
	"sort"
	"sync"

	"github.com/philippgille/chromem-go"

	"github.com/ppiankov/dialectica/internal/model"
	"github.com/ppiankov/dialectica/internal/store"
	"github.com/ppiankov/dialectica/internal/textutil"
)

const localEmbeddingDim = 256

// VectorRetriever ranks documents by embedding similarity. Documents are
// mirrored from the store into a chromem-go collection on demand, so the
// store remains the source of truth for document text.
type VectorRetriever struct {
	store      store.Store
	db         *chromem.DB
	collection *chromem.Collection
	embed      chromem.EmbeddingFunc

	mu      sync.Mutex
	indexed map[string]bool
}

// NewVector creates an embedding retriever. An empty VectorPath keeps the
// index in memory; a nil embed falls back to LocalEmbedding.
func NewVector(cfg model.RetrievalConfig, st store.Store, embed chromem.EmbeddingFunc) (*VectorRetriever, error) {
	var db *chromem.DB
	var err error
	if cfg.VectorPath != "" {
		db, err = chromem.NewPersistentDB(cfg.VectorPath, false)
		if err != nil {
			return nil, fmt.Errorf("open vector index: %w", err)
		}
	} else {
		db = chromem.NewDB()
	}

	collection, err := db.GetOrCreateCollection("documents", map[string]string{
		"hnsw:space": "cosine",
	}, nil)
	if err != nil {
		return nil, fmt.Errorf("create collection: %w", err)
	}

	if embed == nil {
		embed = LocalEmbedding(localEmbeddingDim)
	}

	return &VectorRetriever{
		store:      st,
		db:         db,
		collection: collection,
		embed:      embed,
		indexed:    make(map[string]bool),
	}, nil
}

// Retrieve implements Retriever
func (r *VectorRetriever) Retrieve(ctx context.Context, query model.Query, k int) ([]model.Document, error) {
	if k <= 0 {
		k = DefaultTopK
	}

	if err := r.sync(ctx); err != nil {
		return nil, err
	}

	count := r.collection.Count()
	if count == 0 {
		return nil, nil
	}
	if k > count {
		k = count
	}

	queryVec, err := r.embed(ctx, query.Text)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	results, err := r.collection.QueryEmbedding(ctx, queryVec, k, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}

	// Re-sort for a reproducible tie order; chromem only orders by score
	sort.Slice(results, func(i, j int) bool {
		if results[i].Similarity != results[j].Similarity {
			return results[i].Similarity > results[j].Similarity
		}
		return model.CompareDocIDs(results[i].ID, results[j].ID) < 0
	})

	ids := make([]string, len(results))
	for i, res := range results {
		ids[i] = res.ID
	}

	docs, missing := r.store.GetMany(ctx, ids)
	if len(missing) > 0 {
		slog.Warn("vector index references unknown documents", "missing", missing)
	}
	return docs, nil
}

// sync mirrors store documents not yet indexed into the collection
func (r *VectorRetriever) sync(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	docs, err := r.store.All(ctx)
	if err != nil {
		return fmt.Errorf("load corpus: %w", err)
	}

	var (
		ids      []string
		vectors  [][]float32
		contents []string
	)
	for _, doc := range docs {
		if r.indexed[doc.ID] {
			continue
		}
		vec, err := r.embed(ctx, doc.Text)
		if err != nil {
			return fmt.Errorf("embed document %s: %w", doc.ID, err)
		}
		ids = append(ids, doc.ID)
		vectors = append(vectors, vec)
		contents = append(contents, doc.Text)
	}
	if len(ids) == 0 {
		return nil
	}

	if err := r.collection.Add(ctx, ids, vectors, nil, contents); err != nil {
		return fmt.Errorf("index documents: %w", err)
	}
	for _, id := range ids {
		r.indexed[id] = true
	}
	return nil
}

// LocalEmbedding returns a deterministic bag-of-words embedding function.
// It lets the vector method run without network access; rankings are
// stable across runs because nothing is learned or sampled.
func LocalEmbedding(dim int) chromem.EmbeddingFunc {
	return func(_ context.Context, text string) ([]float32, error) {
		vec := make([]float32, dim)
		for _, tok := range textutil.ContentTokens(text) {
			h := fnv.New32a()
			_, _ = h.Write([]byte(tok))
			vec[h.Sum32()%uint32(dim)]++
		}

		var norm float64
		for _, v := range vec {
			norm += float64(v) * float64(v)
		}
		if norm == 0 {
			// All-stopword text still needs a valid unit vector
			vec[0] = 1
			return vec, nil
		}
		norm = math.Sqrt(norm)
		for i := range vec {
			vec[i] = float32(float64(vec[i]) / norm)
		}
		return vec, nil
	}
}
