package dataset

import (
	"github.com/ppiankov/dialectica/internal/model"
	"github.com/ppiankov/dialectica/internal/textutil"
)

// Stats summarizes a loaded dataset.
type Stats struct {
	Queries          int     `json:"queries"`
	Documents        int     `json:"documents"`
	TotalDocWords    int     `json:"total_doc_words"`
	AvgWordsPerDoc   float64 `json:"avg_words_per_doc"`
	UniqueQueryTexts int     `json:"unique_query_texts"`

	// Distinct ids sharing identical query text. Reported for
	// visibility; the engine never merges them.
	DuplicateQueryTexts []DuplicateGroup `json:"duplicate_query_texts,omitempty"`

	AvgPerspectivesPerQuery float64 `json:"avg_perspectives_per_query"`
	AvgWordsPerPerspective  float64 `json:"avg_words_per_perspective"`
	AvgWordsPerClaim        float64 `json:"avg_words_per_claim"`
	AvgDocsPerQuery         float64 `json:"avg_docs_per_query"`
}

// DuplicateGroup lists the entry ids sharing one query text.
type DuplicateGroup struct {
	Text string   `json:"text"`
	IDs  []string `json:"ids"`
}

// ComputeStats derives summary statistics from a loaded dataset.
func ComputeStats(entries []Entry, docs []model.Document) Stats {
	s := Stats{
		Queries:   len(entries),
		Documents: len(docs),
	}

	for _, doc := range docs {
		s.TotalDocWords += doc.WordCount
	}
	if len(docs) > 0 {
		s.AvgWordsPerDoc = float64(s.TotalDocWords) / float64(len(docs))
	}

	// Duplicate query texts, first-seen order
	idsByText := make(map[string][]string)
	var textOrder []string
	for _, e := range entries {
		if _, seen := idsByText[e.Query]; !seen {
			textOrder = append(textOrder, e.Query)
		}
		idsByText[e.Query] = append(idsByText[e.Query], e.ID)
	}
	s.UniqueQueryTexts = len(idsByText)
	for _, text := range textOrder {
		if ids := idsByText[text]; len(ids) > 1 {
			s.DuplicateQueryTexts = append(s.DuplicateQueryTexts, DuplicateGroup{Text: text, IDs: ids})
		}
	}

	var perspectiveCount, perspectiveWords, claimWords, evidenceCount int
	for _, e := range entries {
		perspectiveCount += len(e.ProPerspectives) + len(e.ConPerspectives)
		for _, p := range e.ProPerspectives {
			perspectiveWords += textutil.WordCount(p)
		}
		for _, p := range e.ConPerspectives {
			perspectiveWords += textutil.WordCount(p)
		}
		claimWords += textutil.WordCount(e.Claims[0]) + textutil.WordCount(e.Claims[1])
		evidenceCount += len(e.FavorIDs) + len(e.AgainstIDs)
	}

	if len(entries) > 0 {
		s.AvgPerspectivesPerQuery = float64(perspectiveCount) / float64(len(entries))
		s.AvgWordsPerClaim = float64(claimWords) / float64(2*len(entries))
		s.AvgDocsPerQuery = float64(evidenceCount) / float64(len(entries))
	}
	if perspectiveCount > 0 {
		s.AvgWordsPerPerspective = float64(perspectiveWords) / float64(perspectiveCount)
	}

	return s
}
