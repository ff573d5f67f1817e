package dataset

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/ppiankov/dialectica/internal/model"
)

// Conventional file names inside a dataset directory.
const (
	DataFile = "data.jsonl"
	DocFile  = "doc_new.jsonl"
)

// Entry is one dataset query with its reference annotations.
type Entry struct {
	ID              string    `json:"id"`
	Query           string    `json:"query"`
	Claims          [2]string `json:"claims"`           // Reference claims, pro then con
	ProPerspectives []string  `json:"pro_perspectives"` // Reference pro perspectives
	ConPerspectives []string  `json:"con_perspectives"` // Reference con perspectives
	FavorIDs        []string  `json:"favor_ids"`        // Supporting evidence ids
	AgainstIDs      []string  `json:"against_ids"`      // Opposing evidence ids
}

// ToQuery converts the entry into the engine's query type.
func (e Entry) ToQuery() model.Query {
	return model.Query{ID: e.ID, Text: e.Query}
}

// EvidenceIDs returns the entry's evidence ids, favor then against.
func (e Entry) EvidenceIDs() []string {
	ids := make([]string, 0, len(e.FavorIDs)+len(e.AgainstIDs))
	ids = append(ids, e.FavorIDs...)
	ids = append(ids, e.AgainstIDs...)
	return ids
}

// rawEntry is the on-disk shape of a data.jsonl line.
type rawEntry struct {
	ID         string   `json:"id"`
	Title      string   `json:"title"`
	Response1  []string `json:"response1"`
	Response2  []string `json:"response2"`
	FavorIDs   []int    `json:"favor_ids"`
	AgainstIDs []int    `json:"against_ids"`
	T1         string   `json:"t1"`
	T2         string   `json:"t2"`
}

// rawDoc is the on-disk shape of a doc_new.jsonl line.
type rawDoc struct {
	ID      int    `json:"id"`
	Content string `json:"content"`
}

// Load reads a dataset directory containing data.jsonl and doc_new.jsonl.
func Load(dir string) ([]Entry, []model.Document, error) {
	entries, err := LoadEntries(filepath.Join(dir, DataFile))
	if err != nil {
		return nil, nil, err
	}
	docs, err := LoadDocuments(filepath.Join(dir, DocFile))
	if err != nil {
		return nil, nil, err
	}
	return entries, docs, nil
}

// LoadEntries reads query entries from a data.jsonl file.
func LoadEntries(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer func() { _ = f.Close() }()

	var entries []Entry
	dec := json.NewDecoder(f)
	for dec.More() {
		var raw rawEntry
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("decode entry %d: %w", len(entries), err)
		}
		entries = append(entries, Entry{
			ID:              raw.ID,
			Query:           raw.Title,
			Claims:          [2]string{raw.T1, raw.T2},
			ProPerspectives: raw.Response1,
			ConPerspectives: raw.Response2,
			FavorIDs:        stringIDs(raw.FavorIDs),
			AgainstIDs:      stringIDs(raw.AgainstIDs),
		})
	}
	return entries, nil
}

// LoadDocuments reads the evidence corpus from a doc_new.jsonl file.
func LoadDocuments(path string) ([]model.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open corpus: %w", err)
	}
	defer func() { _ = f.Close() }()

	var docs []model.Document
	dec := json.NewDecoder(f)
	for dec.More() {
		var raw rawDoc
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("decode document %d: %w", len(docs), err)
		}
		docs = append(docs, model.NewDocument(strconv.Itoa(raw.ID), raw.Content))
	}
	return docs, nil
}

// stringIDs renders integer corpus ids as the engine's string ids.
func stringIDs(ids []int) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = strconv.Itoa(id)
	}
	return out
}
