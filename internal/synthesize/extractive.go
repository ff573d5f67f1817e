package synthesize

import (
	"sort"
	"strings"

	"github.com/ppiankov/dialectica/internal/model"
	"github.com/ppiankov/dialectica/internal/textutil"
)

// extractivePerspective summarizes a cluster without a generation model:
// it picks the sentence closest to the cluster centroid and compresses it
// toward the target length. Deterministic for a fixed cluster.
func extractivePerspective(c Cluster, targetWords int) string {
	if targetWords < 1 {
		targetWords = model.DefaultConfig().Synthesis.PerspectiveWords
	}

	best := ""
	bestSim := -1.0
	for _, doc := range c.Docs {
		for _, sentence := range textutil.Sentences(doc.Text) {
			sim := textutil.Cosine(textutil.NewTermVector(sentence), c.vector)
			if sim > bestSim {
				best, bestSim = sentence, sim
			}
		}
	}
	if best == "" {
		return ""
	}

	// A sentence modestly over target reads better than a clipped one
	limit := targetWords * 2
	if textutil.WordCount(best) <= limit {
		return best
	}
	return textutil.TruncateWords(best, limit)
}

// extractiveClaim builds the polarity's position from the terms its
// perspectives lean on most. The stance verb keeps opposing claims
// distinct even when both sides argue over the same vocabulary.
func extractiveClaim(polarity model.Polarity, perspectives []string, claimWords int) string {
	if claimWords < 3 {
		claimWords = model.DefaultConfig().Synthesis.ClaimWords
	}

	verb := "supports"
	if polarity == model.PolarityCon {
		verb = "disputes"
	}

	terms := topTerms(perspectives, claimWords-2)
	if len(terms) == 0 {
		return "Evidence " + verb + " this position"
	}
	return "Evidence " + verb + " " + strings.Join(terms, " ")
}

// topTerms returns the n most frequent content terms across texts,
// frequency descending, ties alphabetical.
func topTerms(texts []string, n int) []string {
	freq := make(map[string]int)
	for _, text := range texts {
		for _, tok := range textutil.ContentTokens(text) {
			freq[tok]++
		}
	}
	terms := make([]string, 0, len(freq))
	for term := range freq {
		terms = append(terms, term)
	}
	sort.Slice(terms, func(i, j int) bool {
		if freq[terms[i]] != freq[terms[j]] {
			return freq[terms[i]] > freq[terms[j]]
		}
		return terms[i] < terms[j]
	})
	if len(terms) > n {
		terms = terms[:n]
	}
	return terms
}
