package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/ppiankov/dialectica/internal/cache"
	"github.com/ppiankov/dialectica/internal/dataset"
	"github.com/ppiankov/dialectica/internal/model"
	"github.com/ppiankov/dialectica/internal/pipeline"
	"github.com/ppiankov/dialectica/internal/store"
	"github.com/ppiankov/dialectica/internal/web"
)

var (
	inputPath   string
	queryText   string
	datasetDir  string
	outputPath  string
	outMD       string
	runTimeout  time.Duration
	noCache     bool
	noFooter    bool
	webSearch   bool
	llmEnabled  bool
	llmProvider string
	llmModel    string
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Summarize one contested query into two grounded oppositional claims",
	Long: `Run processes a single contested query against an evidence pool:
- Retrieve the most relevant documents
- Partition them into supporting and opposing pools
- Synthesize one claim per side, each with distinct perspectives
- Validate that every perspective cites the documents behind it

Evidence comes from an input record (--input) or a dataset directory
(--query with --dataset).

Example:
  dialectica run --input record.json
  dialectica run --input record.json -o result.json --md result.md
  dialectica run --query "Surrealist Memes: Regression or Progression?" --dataset ./testdata
  dialectica run --input record.json --llm --llm-provider openai`,
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)

	// Input flags
	runCmd.Flags().StringVar(&inputPath, "input", "", `input record JSON: {"query": ..., "docs": {id: text}}`)
	runCmd.Flags().StringVar(&queryText, "query", "", "query text (requires --dataset)")
	runCmd.Flags().StringVar(&datasetDir, "dataset", "", "dataset directory with "+dataset.DocFile)

	// Output flags
	runCmd.Flags().StringVarP(&outputPath, "output", "o", "", "output JSON path (default: stdout)")
	runCmd.Flags().StringVar(&outMD, "md", "", "output Markdown path (optional)")

	// Behavior flags
	runCmd.Flags().DurationVar(&runTimeout, "timeout", 2*time.Minute, "overall query timeout")
	runCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caches (force fresh generation)")
	runCmd.Flags().BoolVar(&noFooter, "no-footer", false, "disable footer in Markdown digests")
	runCmd.Flags().BoolVar(&webSearch, "web", false, "augment evidence with web search results")

	// LLM flags
	runCmd.Flags().BoolVar(&llmEnabled, "llm", false, "enable LLM claim generation")
	runCmd.Flags().StringVar(&llmProvider, "llm-provider", "openai", "LLM provider (openai, anthropic, ollama)")
	runCmd.Flags().StringVar(&llmModel, "llm-model", "gpt-4o-mini", "LLM model name")
}

func runRun(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	applyRunFlags(cfg)
	if err := resolveAPIKeys(cfg); err != nil {
		return err
	}

	query, docs, err := loadEvidence()
	if err != nil {
		return err
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "Query: %s\n", query.Text)
		fmt.Fprintf(os.Stderr, "Documents: %d\n", len(docs))
		fmt.Fprintf(os.Stderr, "Cache: %v\n", cfg.Cache.Enabled)
		fmt.Fprintln(os.Stderr)
	}

	st, err := store.New(cfg.Store)
	if err != nil {
		return fmt.Errorf("init store: %w", err)
	}
	defer func() { _ = st.Close() }()

	if err := st.Add(ctx, docs...); err != nil {
		return fmt.Errorf("load evidence: %w", err)
	}

	// Web pages join the corpus before retrieval so ranking treats them
	// like any other evidence.
	if aug := web.New(cfg, cache.New(cfg.Cache)); aug != nil {
		if pages := aug.Augment(ctx, query); len(pages) > 0 {
			if err := st.Add(ctx, pages...); err != nil {
				return fmt.Errorf("add web evidence: %w", err)
			}
		}
	}

	p, err := pipeline.New(cfg, st)
	if err != nil {
		return err
	}

	result, err := p.Process(ctx, query)
	if err != nil {
		return err
	}

	r := pipeline.NewRenderer(cfg.Output.IncludeFooter)
	if err := r.RenderJSON(result, outputPath); err != nil {
		return fmt.Errorf("render failed: %w", err)
	}
	if outMD != "" {
		if err := r.RenderMarkdown(query, result, outMD); err != nil {
			return fmt.Errorf("render failed: %w", err)
		}
	}
	if outputPath != "" && outputPath != "-" {
		r.RenderSummary(query, result)
	}
	return nil
}

// applyRunFlags overlays command-line flags onto the configuration.
func applyRunFlags(cfg *model.Config) {
	cfg.Cache.Enabled = cfg.Cache.Enabled && !noCache
	cfg.Output.IncludeFooter = !noFooter
	if webSearch {
		cfg.Web.Enabled = true
	}
	if llmEnabled {
		cfg.LLM.Provider = llmProvider
		cfg.LLM.Model = llmModel
	}
}

// loadEvidence resolves the query and its document pool from flags.
func loadEvidence() (model.Query, []model.Document, error) {
	switch {
	case inputPath != "":
		return loadInputRecord(inputPath)
	case queryText != "":
		if datasetDir == "" {
			return model.Query{}, nil, fmt.Errorf("--query requires --dataset for the evidence corpus")
		}
		docs, err := dataset.LoadDocuments(filepath.Join(datasetDir, dataset.DocFile))
		if err != nil {
			return model.Query{}, nil, err
		}
		return model.Query{ID: uuid.NewString(), Text: queryText}, docs, nil
	default:
		return model.Query{}, nil, fmt.Errorf("either --input or --query is required")
	}
}

// loadInputRecord reads a {"query": ..., "docs": {id: text}} record.
// Documents are added in deterministic id order.
func loadInputRecord(path string) (model.Query, []model.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.Query{}, nil, fmt.Errorf("read input: %w", err)
	}

	var record model.InputRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return model.Query{}, nil, fmt.Errorf("parse input: %w", err)
	}
	if record.Query == "" {
		return model.Query{}, nil, fmt.Errorf("input record has no query")
	}

	docs := make([]model.Document, 0, len(record.Docs))
	for id, text := range record.Docs {
		docs = append(docs, model.NewDocument(id, text))
	}
	sort.Slice(docs, func(i, j int) bool {
		return model.CompareDocIDs(docs[i].ID, docs[j].ID) < 0
	})

	return model.Query{ID: uuid.NewString(), Text: record.Query}, docs, nil
}
