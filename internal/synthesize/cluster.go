package synthesize

import (
	"github.com/ppiankov/dialectica/internal/model"
	"github.com/ppiankov/dialectica/internal/textutil"
)

// Cluster is a group of documents arguing the same line. Its ids become
// the grounding for the perspective generated from it.
type Cluster struct {
	Docs   []model.Document
	vector textutil.TermVector
}

// IDs returns the cluster's document ids in document order, deduplicated.
func (c *Cluster) IDs() []string {
	seen := make(map[string]bool, len(c.Docs))
	ids := make([]string, 0, len(c.Docs))
	for _, doc := range c.Docs {
		if !seen[doc.ID] {
			seen[doc.ID] = true
			ids = append(ids, doc.ID)
		}
	}
	return ids
}

// clusterDocuments groups a stance pool into argument clusters by greedy
// agglomerative merging. Each document starts as its own cluster; the
// most similar pair merges while their cosine stays at or above
// threshold, then pairs keep merging regardless of threshold until the
// count fits under maxClusters. Pool order is preserved and ties pick
// the lowest indices, so the result is deterministic for a fixed pool.
func clusterDocuments(docs []model.Document, threshold float64, maxClusters int) []Cluster {
	if len(docs) == 0 {
		return nil
	}
	if maxClusters < 1 {
		maxClusters = 1
	}

	clusters := make([]Cluster, 0, len(docs))
	for _, doc := range docs {
		clusters = append(clusters, Cluster{
			Docs:   []model.Document{doc},
			vector: textutil.NewTermVector(doc.Text),
		})
	}

	// Phase 1: merge genuinely similar arguments
	for len(clusters) > 1 {
		i, j, sim := closestPair(clusters)
		if sim < threshold {
			break
		}
		clusters = merge(clusters, i, j)
	}

	// Phase 2: force down to the perspective ceiling
	for len(clusters) > maxClusters {
		i, j, _ := closestPair(clusters)
		clusters = merge(clusters, i, j)
	}

	return clusters
}

// closestPair returns the indices i < j of the most similar cluster pair
// and their cosine. Ties resolve to the earliest pair.
func closestPair(clusters []Cluster) (int, int, float64) {
	bestI, bestJ := 0, 1
	bestSim := -1.0
	for i := 0; i < len(clusters); i++ {
		for j := i + 1; j < len(clusters); j++ {
			if sim := textutil.Cosine(clusters[i].vector, clusters[j].vector); sim > bestSim {
				bestI, bestJ, bestSim = i, j, sim
			}
		}
	}
	return bestI, bestJ, bestSim
}

// merge folds cluster j into cluster i and drops j, keeping order stable.
func merge(clusters []Cluster, i, j int) []Cluster {
	clusters[i].Docs = append(clusters[i].Docs, clusters[j].Docs...)
	clusters[i].vector.Add(clusters[j].vector)
	return append(clusters[:j], clusters[j+1:]...)
}
