// Package validate enforces grounding integrity on synthesized results.
package validate

import (
	"log/slog"

	"github.com/ppiankov/dialectica/internal/model"
	"github.com/ppiankov/dialectica/internal/textutil"
)

const (
	// DefaultOverlapThreshold is the sibling similarity above which two
	// perspectives count as duplicates.
	DefaultOverlapThreshold = 0.80

	// DefaultMaxPerspectiveWords is the soft length bound for perspectives.
	DefaultMaxPerspectiveWords = 30
)

// Validator checks candidate results against the retrieval evidence. The
// generation capability is treated as unreliable, so grounding is verified
// here as referential integrity over id sets, never trusted from the
// synthesis step.
type Validator struct {
	overlapThreshold float64
	maxWords         int
}

// NewValidator creates a validator from configuration
func NewValidator(cfg model.ValidationConfig) *Validator {
	overlap := cfg.OverlapThreshold
	if overlap <= 0 {
		overlap = DefaultOverlapThreshold
	}
	maxWords := cfg.MaxPerspectiveWords
	if maxWords <= 0 {
		maxWords = DefaultMaxPerspectiveWords
	}
	return &Validator{
		overlapThreshold: overlap,
		maxWords:         maxWords,
	}
}

// Validate runs the ordered checks against a candidate result and returns
// nil on pass. retrievedIDs is the query's full evidence set; proIDs and
// conIDs are the stance pools, which cap what each branch may cite. The
// perspective length bound is soft: logged, never rejecting.
func (v *Validator) Validate(result *model.Result, retrievedIDs, proIDs, conIDs []string) *Rejection {
	// (a) exactly two claims, one per polarity, each with perspectives
	if result == nil {
		return reject(RejectMalformedClaimCount, "", -1, -1, "no result")
	}
	if result.ClaimPro == nil {
		return reject(RejectMalformedClaimCount, model.PolarityPro, -1, -1, "missing pro claim")
	}
	if result.ClaimCon == nil {
		return reject(RejectMalformedClaimCount, model.PolarityCon, -1, -1, "missing con claim")
	}

	retrieved := idSet(retrievedIDs)
	pools := map[model.Polarity]map[string]bool{
		model.PolarityPro: idSet(proIDs),
		model.PolarityCon: idSet(conIDs),
	}

	branches := []struct {
		claim    *model.Claim
		expected model.Polarity
	}{
		{result.ClaimPro, model.PolarityPro},
		{result.ClaimCon, model.PolarityCon},
	}
	for _, b := range branches {
		if b.claim.Polarity != b.expected {
			return reject(RejectMalformedClaimCount, b.expected, -1, -1,
				"claim carries polarity %q, want %q", b.claim.Polarity, b.expected)
		}
		if len(b.claim.Perspectives) == 0 {
			return reject(RejectMalformedClaimCount, b.expected, -1, -1, "claim has no perspectives")
		}

		if rej := v.validatePerspectives(b.claim, retrieved, pools[b.expected]); rej != nil {
			return rej
		}
	}

	// (e) soft length bound, logged only
	for _, claim := range []*model.Claim{result.ClaimPro, result.ClaimCon} {
		for i, p := range claim.Perspectives {
			if words := textutil.WordCount(p.Text); words > v.maxWords {
				slog.Warn("perspective exceeds length bound",
					"query_id", result.QueryID,
					"polarity", claim.Polarity,
					"perspective", i,
					"words", words,
					"bound", v.maxWords)
			}
		}
	}

	return nil
}

// validatePerspectives runs checks (b) through (d) for one claim
func (v *Validator) validatePerspectives(claim *model.Claim, retrieved, pool map[string]bool) *Rejection {
	// (b) every perspective cites at least one document
	for i, p := range claim.Perspectives {
		if len(p.DocIDs) == 0 {
			return reject(RejectUngroundedPerspective, claim.Polarity, i, -1,
				"perspective %d cites no documents", i)
		}
	}

	// (c) citations stay inside the retrieved set and the claim's own pool
	for i, p := range claim.Perspectives {
		for _, id := range p.DocIDs {
			if !retrieved[id] {
				return reject(RejectUngroundedPerspective, claim.Polarity, i, -1,
					"perspective %d cites unretrieved document %s", i, id)
			}
			if !pool[id] {
				return reject(RejectUngroundedPerspective, claim.Polarity, i, -1,
					"perspective %d cites document %s outside its stance pool", i, id)
			}
		}
	}

	// (d) no two sibling perspectives may overlap in meaning
	for i := 1; i < len(claim.Perspectives); i++ {
		for j := 0; j < i; j++ {
			sim := textutil.Similarity(claim.Perspectives[i].Text, claim.Perspectives[j].Text)
			if sim >= v.overlapThreshold {
				return reject(RejectDuplicatePerspective, claim.Polarity, i, j,
					"perspectives %d and %d overlap (similarity %.2f)", j, i, sim)
			}
		}
	}

	return nil
}

func idSet(ids []string) map[string]bool {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}
