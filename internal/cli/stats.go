package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ppiankov/dialectica/internal/dataset"
)

var statsJSON bool

// statsCmd represents the stats command
var statsCmd = &cobra.Command{
	Use:   "stats <dataset-dir>",
	Short: "Summarize a dataset directory",
	Long: `Stats reports the shape of a dataset: query and document counts,
average document, perspective, and claim lengths, and any distinct
query ids sharing identical query text.

Example:
  dialectica stats ./dataset
  dialectica stats ./dataset --json`,
	Args: cobra.ExactArgs(1),
	RunE: runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)

	statsCmd.Flags().BoolVar(&statsJSON, "json", false, "output as JSON")
}

func runStats(cmd *cobra.Command, args []string) error {
	entries, docs, err := dataset.Load(args[0])
	if err != nil {
		return fmt.Errorf("load dataset: %w", err)
	}

	stats := dataset.ComputeStats(entries, docs)

	if statsJSON {
		data, err := json.MarshalIndent(stats, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal stats: %w", err)
		}
		data = append(data, '\n')
		_, err = os.Stdout.Write(data)
		return err
	}

	fmt.Printf("Queries:                  %d\n", stats.Queries)
	fmt.Printf("Documents:                %d\n", stats.Documents)
	fmt.Printf("Total document words:     %d\n", stats.TotalDocWords)
	fmt.Printf("Avg words per document:   %.1f\n", stats.AvgWordsPerDoc)
	fmt.Printf("Unique query texts:       %d\n", stats.UniqueQueryTexts)
	fmt.Printf("Avg perspectives/query:   %.1f\n", stats.AvgPerspectivesPerQuery)
	fmt.Printf("Avg words/perspective:    %.1f\n", stats.AvgWordsPerPerspective)
	fmt.Printf("Avg words/claim:          %.1f\n", stats.AvgWordsPerClaim)
	fmt.Printf("Avg evidence docs/query:  %.1f\n", stats.AvgDocsPerQuery)

	if len(stats.DuplicateQueryTexts) > 0 {
		fmt.Printf("\nDuplicate query texts (%d):\n", len(stats.DuplicateQueryTexts))
		for _, group := range stats.DuplicateQueryTexts {
			fmt.Printf("  %s: %s\n", strings.Join(group.IDs, ", "), group.Text)
		}
	}

	return nil
}
