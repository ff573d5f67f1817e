package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/ppiankov/dialectica/internal/cache"
	"github.com/ppiankov/dialectica/internal/dataset"
	"github.com/ppiankov/dialectica/internal/metrics"
	"github.com/ppiankov/dialectica/internal/model"
	"github.com/ppiankov/dialectica/internal/pipeline"
	"github.com/ppiankov/dialectica/internal/stance"
	"github.com/ppiankov/dialectica/internal/store"
	"github.com/ppiankov/dialectica/internal/web"
	"github.com/ppiankov/dialectica/internal/worker"
)

var (
	concurrency  int
	outputDir    string
	batchTimeout time.Duration
	metricsAddr  string
	useLabels    bool
	httpProxy    string
	httpsProxy   string
	// noCache, noFooter, webSearch and the llm* flags are defined in
	// run.go and shared here
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <dataset-dir>",
	Short: "Summarize every query of a dataset in parallel",
	Long: `Batch processes a whole dataset directory concurrently:
- Load queries from ` + dataset.DataFile + ` and the corpus from ` + dataset.DocFile + `
- Run queries in parallel with a configurable worker count
- Each query synthesizes its pro and con branches concurrently
- Write one result record and one Markdown digest per query

A failed query is reported and counted; it never aborts its siblings.

Example:
  dialectica batch ./dataset
  dialectica batch ./dataset --concurrency 8 --output-dir ./results
  dialectica batch ./dataset --use-labels --metrics-addr :9090`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	// Concurrency flags
	batchCmd.Flags().IntVar(&concurrency, "concurrency", runtime.NumCPU(), "number of concurrent workers")
	batchCmd.Flags().StringVar(&outputDir, "output-dir", "./dialectica-results", "output directory for result records")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 10*time.Minute, "total timeout for batch processing")
	batchCmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "expose Prometheus metrics on this address (e.g. :9090)")

	// Behavior flags
	batchCmd.Flags().BoolVar(&useLabels, "use-labels", false, "partition stance by dataset annotations instead of the configured method")
	batchCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caches (force fresh generation)")
	batchCmd.Flags().BoolVar(&noFooter, "no-footer", false, "disable footer in Markdown digests")
	batchCmd.Flags().BoolVar(&webSearch, "web", false, "augment evidence with web search results")
	batchCmd.Flags().StringVar(&httpProxy, "http-proxy", "", "HTTP proxy URL (overrides HTTP_PROXY env var)")
	batchCmd.Flags().StringVar(&httpsProxy, "https-proxy", "", "HTTPS proxy URL (overrides HTTPS_PROXY env var)")

	// LLM flags
	batchCmd.Flags().BoolVar(&llmEnabled, "llm", false, "enable LLM claim generation")
	batchCmd.Flags().StringVar(&llmProvider, "llm-provider", "openai", "LLM provider (openai, anthropic, ollama)")
	batchCmd.Flags().StringVar(&llmModel, "llm-model", "gpt-4o-mini", "LLM model name")
}

func runBatch(cmd *cobra.Command, args []string) error {
	dir := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), batchTimeout)
	defer cancel()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	applyRunFlags(cfg)
	cfg.Concurrency.Workers = concurrency
	cfg.Output.Dir = outputDir
	cfg.HTTP.HTTPProxy = httpProxy
	cfg.HTTP.HTTPSProxy = httpsProxy
	if err := resolveAPIKeys(cfg); err != nil {
		return err
	}
	if metricsAddr == "" {
		metricsAddr = cfg.Metrics.Addr
	}

	runID := uuid.NewString()

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Dialectica Batch Processing\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Dataset:      %s\n", dir)
	fmt.Fprintf(os.Stderr, "  Workers:      %d\n", concurrency)
	fmt.Fprintf(os.Stderr, "  Output dir:   %s\n", outputDir)
	fmt.Fprintf(os.Stderr, "  Timeout:      %v\n", batchTimeout)
	fmt.Fprintf(os.Stderr, "  Run ID:       %s\n", runID)
	if llmEnabled {
		fmt.Fprintf(os.Stderr, "  LLM:          %s/%s\n", llmProvider, llmModel)
	}
	if metricsAddr != "" {
		fmt.Fprintf(os.Stderr, "  Metrics:      http://%s/metrics\n", metricsAddr)
	}
	fmt.Fprintf(os.Stderr, "\n")

	if metricsAddr != "" {
		srv := metrics.Serve(metricsAddr)
		defer func() {
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer shutdownCancel()
			metrics.Shutdown(shutdownCtx, srv)
		}()
	}

	// Load dataset
	fmt.Fprintf(os.Stderr, "⚙️  Loading dataset...\n")
	entries, docs, err := dataset.Load(dir)
	if err != nil {
		return fmt.Errorf("load dataset: %w", err)
	}
	fmt.Fprintf(os.Stderr, "✓ Loaded %d queries, %d documents\n", len(entries), len(docs))

	// Create output directory
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	// Ingest the corpus
	st, err := store.New(cfg.Store)
	if err != nil {
		return fmt.Errorf("init store: %w", err)
	}
	defer func() { _ = st.Close() }()

	if err := st.Add(ctx, docs...); err != nil {
		return fmt.Errorf("ingest corpus: %w", err)
	}

	// Create pipeline, with gold stance labels when requested
	var pt stance.Partitioner
	if useLabels {
		labels := make(map[string]stance.Labels, len(entries))
		for _, e := range entries {
			labels[e.ID] = stance.Labels{ProIDs: e.FavorIDs, ConIDs: e.AgainstIDs}
		}
		pt = stance.NewLabeled(labels)
	}
	p, err := pipeline.NewWithPartitioner(cfg, st, pt)
	if err != nil {
		return err
	}

	var processor worker.Processor = p
	if aug := web.New(cfg, cache.New(cfg.Cache)); aug != nil {
		processor = &augmentingProcessor{pipeline: p, augmenter: aug, store: st}
	}

	queries := make([]model.Query, len(entries))
	for i, e := range entries {
		queries[i] = e.ToQuery()
	}

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "⚙️  Processing %d queries with %d workers...\n", len(queries), concurrency)
	fmt.Fprintf(os.Stderr, "\n")

	bp := worker.NewBatchProcessor(processor, cfg.Concurrency.Workers)
	results := bp.ProcessQueries(ctx, queries)

	// Render results
	renderer := pipeline.NewRenderer(cfg.Output.IncludeFooter)
	successCount := 0
	failureCount := 0

	for _, result := range results {
		if result.Err != nil {
			failureCount++
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", result.Query.ID, result.Err)
			continue
		}

		slug := sanitizeFilename(result.Query.ID)
		jsonPath := filepath.Join(outputDir, slug+".json")
		mdPath := filepath.Join(outputDir, slug+".md")

		if err := renderer.RenderJSON(result.Result, jsonPath); err != nil {
			failureCount++
			fmt.Fprintf(os.Stderr, "✗ %s: failed to write JSON: %v\n", result.Query.ID, err)
			continue
		}
		if err := renderer.RenderMarkdown(result.Query, result.Result, mdPath); err != nil {
			failureCount++
			fmt.Fprintf(os.Stderr, "✗ %s: failed to write Markdown: %v\n", result.Query.ID, err)
			continue
		}

		successCount++
		fmt.Fprintf(os.Stderr, "✓ %s (%d pro / %d con perspectives)\n",
			result.Query.ID,
			len(result.Result.ClaimPro.Perspectives),
			len(result.Result.ClaimCon.Perspectives))
	}

	// Summary
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Batch Complete\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Total:     %d queries\n", len(results))
	fmt.Fprintf(os.Stderr, "  Success:   %d\n", successCount)
	fmt.Fprintf(os.Stderr, "  Failures:  %d\n", failureCount)
	fmt.Fprintf(os.Stderr, "  Output:    %s\n", outputDir)
	fmt.Fprintf(os.Stderr, "  Run ID:    %s\n", runID)
	fmt.Fprintf(os.Stderr, "\n")

	return nil
}

// augmentingProcessor adds web evidence to the store before running the
// pipeline, so retrieval ranks fetched pages alongside corpus documents.
type augmentingProcessor struct {
	pipeline  *pipeline.Pipeline
	augmenter *web.Augmenter
	store     store.Store
}

func (a *augmentingProcessor) Process(ctx context.Context, query model.Query) (*model.Result, error) {
	if pages := a.augmenter.Augment(ctx, query); len(pages) > 0 {
		if err := a.store.Add(ctx, pages...); err != nil {
			return nil, fmt.Errorf("add web evidence: %w", err)
		}
	}
	return a.pipeline.Process(ctx, query)
}

// sanitizeFilename sanitizes a string for use as a filename
func sanitizeFilename(s string) string {
	replacer := strings.NewReplacer(
		"/", "_",
		"\\", "_",
		":", "_",
		"*", "_",
		"?", "_",
		"\"", "_",
		"<", "_",
		">", "_",
		"|", "_",
		" ", "-",
	)
	s = replacer.Replace(s)

	// Limit length
	if len(s) > 100 {
		s = s[:100]
	}
	return s
}
