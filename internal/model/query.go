package model

import (
	"strconv"
	"strings"
)

// Query is a contested question posed against the evidence corpus.
// Identity is carried by ID alone: distinct queries may share identical
// text and are never collapsed by text equality.
type Query struct {
	ID   string `json:"id"`   // Stable identifier (e.g., "Entertainment_0")
	Text string `json:"text"` // The contested question
}

// Document is a single evidence document, owned by the store and
// read-only everywhere else.
type Document struct {
	ID        string `json:"id"`         // Corpus id, or source URL for web-augmented docs
	Text      string `json:"text"`       // Full document text
	WordCount int    `json:"word_count"` // Whitespace token count, computed at ingestion
}

// NewDocument builds a Document with its word count filled in.
func NewDocument(id, text string) Document {
	return Document{
		ID:        id,
		Text:      text,
		WordCount: len(strings.Fields(text)),
	}
}

// CompareDocIDs orders document ids numerically when both parse as
// integers, lexically otherwise. Keeps ranking tie-breaks stable for
// corpus ids ("858" before "1138") and URL ids alike.
func CompareDocIDs(a, b string) int {
	na, errA := strconv.Atoi(a)
	nb, errB := strconv.Atoi(b)
	if errA == nil && errB == nil {
		switch {
		case na < nb:
			return -1
		case na > nb:
			return 1
		default:
			return 0
		}
	}
	return strings.Compare(a, b)
}
