package validate

import (
	"fmt"

	"github.com/ppiankov/dialectica/internal/model"
)

// RejectionCode identifies which validation check a candidate failed.
type RejectionCode string

const (
	// RejectMalformedClaimCount covers structural failures: a missing
	// polarity branch, a polarity mismatch, or a claim with no perspectives.
	RejectMalformedClaimCount RejectionCode = "malformed-claim-count"

	// RejectUngroundedPerspective covers perspectives citing nothing,
	// citing unretrieved documents, or citing across stance pools.
	RejectUngroundedPerspective RejectionCode = "ungrounded-perspective"

	// RejectDuplicatePerspective covers sibling perspectives that say the
	// same thing twice.
	RejectDuplicatePerspective RejectionCode = "duplicate-perspective"
)

// Rejection pins a failed check to the offending claim and perspective,
// precisely enough for the pipeline to regenerate only that branch.
type Rejection struct {
	Code     RejectionCode
	Polarity model.Polarity // offending branch; empty for result-level failures
	Index    int            // offending perspective index; -1 when not perspective-scoped
	Sibling  int            // earlier duplicate partner index; -1 otherwise
	Detail   string
}

// Error implements error
func (r *Rejection) Error() string {
	if r.Polarity != "" {
		return fmt.Sprintf("%s claim rejected: %s (%s)", r.Polarity, r.Detail, r.Code)
	}
	return fmt.Sprintf("result rejected: %s (%s)", r.Detail, r.Code)
}

func reject(code RejectionCode, polarity model.Polarity, index, sibling int, format string, args ...interface{}) *Rejection {
	return &Rejection{
		Code:     code,
		Polarity: polarity,
		Index:    index,
		Sibling:  sibling,
		Detail:   fmt.Sprintf(format, args...),
	}
}
