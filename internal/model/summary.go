package model

// Polarity identifies which side of the query a claim argues.
type Polarity string

const (
	PolarityPro Polarity = "pro" // Supports the query's proposition
	PolarityCon Polarity = "con" // Opposes the query's proposition
)

// Opposite returns the other polarity.
func (p Polarity) Opposite() Polarity {
	if p == PolarityPro {
		return PolarityCon
	}
	return PolarityPro
}

// Perspective is one distinct line of argument under a claim, tied to
// the documents that support it.
type Perspective struct {
	Text   string   `json:"text"`    // One sentence, target ~12 words
	DocIDs []string `json:"doc_ids"` // Supporting document ids, never empty once validated
}

// Claim is one polarity's overall position with its perspectives.
type Claim struct {
	Text         string        `json:"text"`         // Short claim sentence, target ~5 words
	Polarity     Polarity      `json:"polarity"`     // pro or con
	Perspectives []Perspective `json:"perspectives"` // Ordered, length >= 1
}

// DocIDs returns the union of supporting ids across the claim's
// perspectives, first occurrence order preserved.
func (c *Claim) DocIDs() []string {
	seen := make(map[string]bool)
	var ids []string
	for _, p := range c.Perspectives {
		for _, id := range p.DocIDs {
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}
	return ids
}

// Result is the validated summary for one query. The two-field shape
// makes "exactly one claim per polarity" a property of the type.
type Result struct {
	QueryID  string `json:"query_id"`
	ClaimPro *Claim `json:"claim_pro"`
	ClaimCon *Claim `json:"claim_con"`
}

// DocIDs returns the union of supporting ids across both claims.
func (r *Result) DocIDs() []string {
	seen := make(map[string]bool)
	var ids []string
	for _, c := range []*Claim{r.ClaimPro, r.ClaimCon} {
		if c == nil {
			continue
		}
		for _, id := range c.DocIDs() {
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}
	return ids
}

// InputRecord is the single-query input format: a query with its own
// private document set, keyed by document id.
type InputRecord struct {
	Query string            `json:"query"`
	Docs  map[string]string `json:"docs"`
}
