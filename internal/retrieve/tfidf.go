package retrieve

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/ppiankov/dialectica/internal/model"
	"github.com/ppiankov/dialectica/internal/store"
	"github.com/ppiankov/dialectica/internal/textutil"
)

// TFIDF ranks documents by tf-idf cosine similarity to the query. It
// rescans the corpus snapshot on every call, which keeps it correct
// under incremental ingestion at the cost of per-query index builds.
type TFIDF struct {
	store store.Store
}

// NewTFIDF creates a lexical retriever over the store
func NewTFIDF(st store.Store) *TFIDF {
	return &TFIDF{store: st}
}

// Retrieve implements Retriever
func (r *TFIDF) Retrieve(ctx context.Context, query model.Query, k int) ([]model.Document, error) {
	if k <= 0 {
		k = DefaultTopK
	}

	docs, err := r.store.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("load corpus: %w", err)
	}
	if len(docs) == 0 {
		return nil, nil
	}

	// Document frequency over the corpus
	df := make(map[string]int)
	docTokens := make([][]string, len(docs))
	for i, doc := range docs {
		tokens := textutil.ContentTokens(doc.Text)
		docTokens[i] = tokens
		seen := make(map[string]bool, len(tokens))
		for _, tok := range tokens {
			if !seen[tok] {
				seen[tok] = true
				df[tok]++
			}
		}
	}

	idf := func(term string) float64 {
		return math.Log(float64(len(docs)+1)/float64(df[term]+1)) + 1
	}

	queryVec := weightedVector(textutil.ContentTokens(query.Text), idf)

	type scored struct {
		doc   model.Document
		score float64
	}
	ranked := make([]scored, len(docs))
	for i, doc := range docs {
		docVec := weightedVector(docTokens[i], idf)
		ranked[i] = scored{doc: doc, score: textutil.Cosine(queryVec, docVec)}
	}

	// Descending score, ascending id on ties
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}
		return model.CompareDocIDs(ranked[i].doc.ID, ranked[j].doc.ID) < 0
	})

	if len(ranked) > k {
		ranked = ranked[:k]
	}

	result := make([]model.Document, len(ranked))
	for i, s := range ranked {
		result[i] = s.doc
	}
	return result, nil
}

// weightedVector builds a tf-idf term vector from tokens
func weightedVector(tokens []string, idf func(string) float64) textutil.TermVector {
	vec := make(textutil.TermVector, len(tokens))
	for _, tok := range tokens {
		vec[tok]++
	}
	for term, tf := range vec {
		vec[term] = tf * idf(term)
	}
	return vec
}
