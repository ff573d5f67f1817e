package pipeline

import (
	"fmt"

	"github.com/ppiankov/dialectica/internal/model"
)

// InsufficientEvidenceError means a query cannot be argued from the
// corpus: either retrieval found nothing or a stance pool came up
// empty. Fatal for the query, never for its batch siblings.
type InsufficientEvidenceError struct {
	QueryID  string
	Polarity model.Polarity // empty when retrieval itself found nothing
}

func (e *InsufficientEvidenceError) Error() string {
	if e.Polarity == "" {
		return fmt.Sprintf("query %s: no evidence retrieved", e.QueryID)
	}
	return fmt.Sprintf("query %s: no %s evidence after stance partitioning", e.QueryID, e.Polarity)
}

// SynthesisExhaustedError means a polarity branch kept failing
// generation or validation until the attempt budget ran out.
type SynthesisExhaustedError struct {
	QueryID  string
	Polarity model.Polarity
	Attempts int
	LastErr  error
}

func (e *SynthesisExhaustedError) Error() string {
	return fmt.Sprintf("query %s: %s branch exhausted %d synthesis attempts: %v",
		e.QueryID, e.Polarity, e.Attempts, e.LastErr)
}

func (e *SynthesisExhaustedError) Unwrap() error {
	return e.LastErr
}
