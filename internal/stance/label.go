package stance

import (
	"context"

	"github.com/ppiankov/dialectica/internal/model"
)

// Labels lists the documents annotated for each side of one query.
type Labels struct {
	ProIDs []string
	ConIDs []string
}

// Labeled partitions by external annotations. It is used when running
// against datasets that ship gold stance labels, so synthesis quality can
// be judged independently of stance detection quality.
type Labeled struct {
	byQuery map[string]labelSets
}

type labelSets struct {
	pro map[string]bool
	con map[string]bool
}

// NewLabeled creates a partitioner over per-query annotations
func NewLabeled(byQuery map[string]Labels) *Labeled {
	sets := make(map[string]labelSets, len(byQuery))
	for queryID, labels := range byQuery {
		ls := labelSets{
			pro: make(map[string]bool, len(labels.ProIDs)),
			con: make(map[string]bool, len(labels.ConIDs)),
		}
		for _, id := range labels.ProIDs {
			ls.pro[id] = true
		}
		for _, id := range labels.ConIDs {
			ls.con[id] = true
		}
		sets[queryID] = ls
	}
	return &Labeled{byQuery: sets}
}

// Partition implements Partitioner. Documents without an annotation for
// the query, and whole queries without annotations, fall to Neutral.
func (p *Labeled) Partition(_ context.Context, query model.Query, docs []model.Document) (Split, error) {
	sets, ok := p.byQuery[query.ID]
	if !ok {
		return Split{Neutral: docs}, nil
	}

	var split Split
	for _, doc := range docs {
		switch {
		case sets.pro[doc.ID]:
			split.Pro = append(split.Pro, doc)
		case sets.con[doc.ID]:
			split.Con = append(split.Con, doc)
		default:
			split.Neutral = append(split.Neutral, doc)
		}
	}
	return split, nil
}
