// Package stance splits evidence documents into opposing argument pools.
package stance

import (
	"context"
	"fmt"
	"strings"

	"github.com/ppiankov/dialectica/internal/llm"
	"github.com/ppiankov/dialectica/internal/model"
)

// Split is the outcome of stance partitioning. Pro and Con never share a
// document; Neutral holds documents dropped for lacking a clear stance.
type Split struct {
	Pro     []model.Document
	Con     []model.Document
	Neutral []model.Document
}

// ProIDs returns the pro pool's document ids in pool order
func (s Split) ProIDs() []string {
	return docIDs(s.Pro)
}

// ConIDs returns the con pool's document ids in pool order
func (s Split) ConIDs() []string {
	return docIDs(s.Con)
}

// Pool returns the documents assigned to the given polarity
func (s Split) Pool(polarity model.Polarity) []model.Document {
	if polarity == model.PolarityPro {
		return s.Pro
	}
	return s.Con
}

func docIDs(docs []model.Document) []string {
	ids := make([]string, len(docs))
	for i, doc := range docs {
		ids[i] = doc.ID
	}
	return ids
}

// Partitioner assigns retrieved documents to opposing pools.
type Partitioner interface {
	// Partition splits docs into pro, con, and neutral pools. A document
	// with no clear stance lands in Neutral rather than being mis-assigned;
	// omission corrupts grounding less than a false assignment does.
	Partition(ctx context.Context, query model.Query, docs []model.Document) (Split, error)
}

// New creates a partitioner for the configured method
func New(cfg model.StanceConfig, provider llm.Provider) (Partitioner, error) {
	switch strings.ToLower(cfg.Method) {
	case "", "lexical":
		return NewLexical(cfg.Margin), nil

	case "llm":
		if provider == nil {
			return nil, fmt.Errorf("llm stance method requires a configured provider")
		}
		return NewLLM(provider), nil

	case "label":
		return nil, fmt.Errorf("label stance method is built from dataset annotations, not config")

	default:
		return nil, fmt.Errorf("unsupported stance method: %s (supported: lexical, llm)", cfg.Method)
	}
}
