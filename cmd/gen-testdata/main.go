// Generates a small sample dataset for trying dialectica without a full
// corpus: one contested query with annotated evidence on each side.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
)

type entry struct {
	ID         string   `json:"id"`
	Title      string   `json:"title"`
	Response1  []string `json:"response1"`
	Response2  []string `json:"response2"`
	FavorIDs   []int    `json:"favor_ids"`
	AgainstIDs []int    `json:"against_ids"`
	T1         string   `json:"t1"`
	T2         string   `json:"t2"`
}

type doc struct {
	ID      int    `json:"id"`
	Content string `json:"content"`
}

func main() {
	dir := flag.String("dir", "./testdata", "output directory for the sample dataset")
	flag.Parse()

	fmt.Println("=== Dialectica Sample Dataset ===")
	fmt.Println()

	docs := []doc{
		{205, "Surrealist memes push internet culture forward. Supporters see a genuine artistic progression, a folk surrealism that rewards viewers for sitting with images that refuse to resolve into a punchline."},
		{364, "Defenders of the genre argue it elevates the meme form. The absurdist juxtaposition of familiar templates with dream logic demonstrates real growth, turning disposable jokes into something closer to collage art."},
		{858, "Detractors say the trend strips comedy of craft. A random image with distorted text asks nothing of its maker, and the resulting feed is worse than the tightly formatted jokes it displaced."},
		{1138, "Critics counter that surrealist memes mark a regression. Shared humor depends on shared reference points, and deliberately meaningless noise erodes the common ground that made memes funny at all."},
		{12, "Image macros date to early forum culture, where captioned pictures spread faster than text. The format's history is mostly a story of templates rising and falling with each platform."},
		{47, "Meme formats typically follow a lifecycle: niche invention, mainstream saturation, ironic reuse. Researchers track these phases to study how online communities signal belonging."},
	}

	entries := []entry{
		{
			ID:    "Entertainment_0",
			Title: "Surrealist Memes: Regression or Progression?",
			Response1: []string{
				"Surrealist memes reward viewers who sit with unresolved, punchline-free images.",
				"Absurdist juxtaposition turns disposable joke templates into something like collage art.",
			},
			Response2: []string{
				"Random distorted images ask nothing of their makers and displace crafted jokes.",
				"Deliberately meaningless noise erodes the shared references that made memes funny.",
			},
			FavorIDs:   []int{205, 364},
			AgainstIDs: []int{1138, 858},
			T1:         "Surrealist memes are artistic progression.",
			T2:         "Surrealist memes are cultural regression.",
		},
	}

	if err := os.MkdirAll(*dir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	docPath := filepath.Join(*dir, "doc_new.jsonl")
	if err := writeJSONL(docPath, docs); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("✓ Wrote %s (%d documents)\n", docPath, len(docs))

	dataPath := filepath.Join(*dir, "data.jsonl")
	if err := writeJSONL(dataPath, entries); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("✓ Wrote %s (%d queries)\n", dataPath, len(entries))

	fmt.Println()
	fmt.Println("Try it:")
	fmt.Printf("  dialectica batch %s --use-labels\n", *dir)
	fmt.Printf("  dialectica stats %s\n", *dir)
}

func writeJSONL[T any](path string, records []T) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	enc := json.NewEncoder(f)
	for _, record := range records {
		if err := enc.Encode(record); err != nil {
			return err
		}
	}
	return nil
}
