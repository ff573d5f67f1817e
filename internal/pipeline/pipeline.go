// Package pipeline orchestrates the per-query stages: retrieval, stance
// partitioning, concurrent synthesis of both polarity branches, and
// grounding validation with targeted regeneration.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ppiankov/dialectica/internal/cache"
	"github.com/ppiankov/dialectica/internal/llm"
	"github.com/ppiankov/dialectica/internal/metrics"
	"github.com/ppiankov/dialectica/internal/model"
	"github.com/ppiankov/dialectica/internal/retrieve"
	"github.com/ppiankov/dialectica/internal/stance"
	"github.com/ppiankov/dialectica/internal/store"
	"github.com/ppiankov/dialectica/internal/synthesize"
	"github.com/ppiankov/dialectica/internal/validate"
)

// synthesisSleep is swapped out by tests so backoff does not stall them.
var synthesisSleep = time.Sleep

// Synthesizer generates one polarity's claim from its stance pool.
type Synthesizer interface {
	Synthesize(ctx context.Context, query model.Query, pool []model.Document, polarity model.Polarity) (*model.Claim, error)
}

// Pipeline runs queries end to end. A query either yields a fully
// validated Result or a typed error; partial results are never
// returned. Queries are independent: a Pipeline is safe for concurrent
// use across a batch.
type Pipeline struct {
	retriever   retrieve.Retriever
	partitioner stance.Partitioner
	synthesizer Synthesizer
	validator   *validate.Validator
	config      *model.Config
}

// New wires a pipeline from configuration and a loaded store. The
// generation provider is optional; without one the synthesizer runs
// extractively and the engine stays fully offline.
func New(cfg *model.Config, st store.Store) (*Pipeline, error) {
	return NewWithPartitioner(cfg, st, nil)
}

// NewWithPartitioner wires a pipeline with an injected stance
// partitioner, letting batch runs substitute reference labels for the
// configured method. A nil partitioner falls back to configuration.
func NewWithPartitioner(cfg *model.Config, st store.Store, pt stance.Partitioner) (*Pipeline, error) {
	provider, err := buildProvider(cfg)
	if err != nil {
		return nil, err
	}

	retriever, err := retrieve.New(cfg.Retrieval, st, nil)
	if err != nil {
		return nil, fmt.Errorf("init retriever: %w", err)
	}

	if pt == nil {
		pt, err = stance.New(cfg.Stance, provider)
		if err != nil {
			return nil, fmt.Errorf("init partitioner: %w", err)
		}
	}

	return &Pipeline{
		retriever:   retriever,
		partitioner: pt,
		synthesizer: synthesize.New(cfg.Synthesis, provider),
		validator:   validate.NewValidator(cfg.Validation),
		config:      cfg,
	}, nil
}

// NewWithComponents assembles a pipeline from prebuilt stages.
func NewWithComponents(cfg *model.Config, rt retrieve.Retriever, pt stance.Partitioner, syn Synthesizer, v *validate.Validator) *Pipeline {
	return &Pipeline{
		retriever:   rt,
		partitioner: pt,
		synthesizer: syn,
		validator:   v,
		config:      cfg,
	}
}

// buildProvider constructs the decorated generation provider: metering
// innermost so cache hits and throttle waits never distort call
// latencies, then rate limiting, then response caching outermost.
func buildProvider(cfg *model.Config) (llm.Provider, error) {
	provider, err := llm.NewProvider(llm.ConfigFromModel(cfg.LLM, cfg.HTTP))
	if err != nil {
		return nil, fmt.Errorf("init llm provider: %w", err)
	}
	if provider == nil {
		return nil, nil
	}

	provider = llm.NewMetered(provider)
	if cfg.RateLimiting.RequestsPerSecond > 0 {
		provider = llm.NewThrottled(provider, cfg.RateLimiting.RequestsPerSecond, cfg.RateLimiting.BurstSize)
	}
	if cfg.Cache.Enabled {
		provider = llm.NewCached(provider, cache.New(cfg.Cache), cfg.Cache.TTL)
	}
	return provider, nil
}

// Process runs one query end to end.
func (p *Pipeline) Process(ctx context.Context, query model.Query) (*model.Result, error) {
	start := time.Now()
	result, err := p.process(ctx, query)
	metrics.QueryDuration.Observe(time.Since(start).Seconds())
	metrics.QueriesTotal.WithLabelValues(outcome(err)).Inc()

	if err != nil {
		slog.Error("query failed",
			"query_id", query.ID,
			"outcome", outcome(err),
			"duration", time.Since(start),
			"error", err)
		return nil, err
	}

	slog.Info("query processed",
		"query_id", query.ID,
		"pro_perspectives", len(result.ClaimPro.Perspectives),
		"con_perspectives", len(result.ClaimCon.Perspectives),
		"duration", time.Since(start))
	return result, nil
}

func (p *Pipeline) process(ctx context.Context, query model.Query) (*model.Result, error) {
	// 1. Retrieve the evidence pool
	docs, err := p.retriever.Retrieve(ctx, query, p.config.Retrieval.TopK)
	if err != nil {
		return nil, fmt.Errorf("retrieve: %w", err)
	}
	if len(docs) == 0 {
		return nil, &InsufficientEvidenceError{QueryID: query.ID}
	}
	metrics.RetrievedDocs.Observe(float64(len(docs)))

	// 2. Partition into opposing pools
	split, err := p.partitioner.Partition(ctx, query, docs)
	if err != nil {
		return nil, fmt.Errorf("partition: %w", err)
	}
	if len(split.Pro) == 0 {
		return nil, &InsufficientEvidenceError{QueryID: query.ID, Polarity: model.PolarityPro}
	}
	if len(split.Con) == 0 {
		return nil, &InsufficientEvidenceError{QueryID: query.ID, Polarity: model.PolarityCon}
	}

	// 3. Synthesize both branches concurrently
	var proClaim, conClaim *model.Claim
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		c, err := p.synthesizeBranch(gctx, query, split.Pro, model.PolarityPro)
		proClaim = c
		return err
	})
	g.Go(func() error {
		c, err := p.synthesizeBranch(gctx, query, split.Con, model.PolarityCon)
		conClaim = c
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// 4. Validate; regenerate only the branch a rejection names
	result := assemble(query, proClaim, conClaim)
	retrievedIDs := idsOf(docs)
	regens := 0
	for {
		rej := p.validator.Validate(result, retrievedIDs, split.ProIDs(), split.ConIDs())
		if rej == nil {
			return result, nil
		}
		metrics.RejectionsTotal.WithLabelValues(string(rej.Code)).Inc()

		if rej.Polarity == "" || regens >= p.maxAttempts() {
			return nil, &SynthesisExhaustedError{
				QueryID:  query.ID,
				Polarity: rej.Polarity,
				Attempts: regens,
				LastErr:  rej,
			}
		}
		regens++

		slog.Warn("claim rejected, regenerating branch",
			"query_id", query.ID,
			"polarity", rej.Polarity,
			"code", rej.Code,
			"regeneration", regens,
			"detail", rej.Detail)
		metrics.RegenerationsTotal.WithLabelValues(string(rej.Polarity)).Inc()
		p.backoff(regens)

		claim, err := p.synthesizeBranch(ctx, query, split.Pool(rej.Polarity), rej.Polarity)
		if err != nil {
			return nil, err
		}
		if rej.Polarity == model.PolarityPro {
			result.ClaimPro = claim
		} else {
			result.ClaimCon = claim
		}
	}
}

// synthesizeBranch generates one polarity's claim, retrying transient
// failures within the attempt budget. Extractive synthesis is
// deterministic, so without a provider a failure is final on the first
// attempt.
func (p *Pipeline) synthesizeBranch(ctx context.Context, query model.Query, pool []model.Document, polarity model.Polarity) (*model.Claim, error) {
	var lastErr error
	attempts := 0
	for attempt := 1; attempt <= p.maxAttempts(); attempt++ {
		attempts = attempt
		claim, err := p.synthesizer.Synthesize(ctx, query, pool, polarity)
		if err == nil {
			return claim, nil
		}
		lastErr = err

		if ctx.Err() != nil || !p.providerConfigured() {
			break
		}
		if attempt < p.maxAttempts() {
			slog.Warn("synthesis attempt failed, retrying",
				"query_id", query.ID,
				"polarity", polarity,
				"attempt", attempt,
				"error", err)
			metrics.RegenerationsTotal.WithLabelValues(string(polarity)).Inc()
			p.backoff(attempt)
		}
	}
	return nil, &SynthesisExhaustedError{
		QueryID:  query.ID,
		Polarity: polarity,
		Attempts: attempts,
		LastErr:  lastErr,
	}
}

// backoff sleeps between regeneration attempts, exponentially from the
// configured base. Only an external generation service warrants it;
// extractive synthesis retries would just repeat the same answer.
func (p *Pipeline) backoff(attempt int) {
	if !p.providerConfigured() {
		return
	}
	base := p.config.Synthesis.BackoffBase
	if base <= 0 {
		base = model.DefaultConfig().Synthesis.BackoffBase
	}
	synthesisSleep(base * time.Duration(1<<(attempt-1)))
}

func (p *Pipeline) providerConfigured() bool {
	return p.config.LLM.Provider != ""
}

func (p *Pipeline) maxAttempts() int {
	if p.config.Synthesis.MaxAttempts > 0 {
		return p.config.Synthesis.MaxAttempts
	}
	return model.DefaultConfig().Synthesis.MaxAttempts
}

// assemble builds the result record from the two branches. Pure
// structuring; validation owns all further judgement.
func assemble(query model.Query, pro, con *model.Claim) *model.Result {
	return &model.Result{
		QueryID:  query.ID,
		ClaimPro: pro,
		ClaimCon: con,
	}
}

func idsOf(docs []model.Document) []string {
	ids := make([]string, len(docs))
	for i, doc := range docs {
		ids[i] = doc.ID
	}
	return ids
}

func outcome(err error) string {
	if err == nil {
		return "ok"
	}
	var insufficient *InsufficientEvidenceError
	if errors.As(err, &insufficient) {
		return "insufficient_evidence"
	}
	var exhausted *SynthesisExhaustedError
	if errors.As(err, &exhausted) {
		return "synthesis_exhausted"
	}
	return "error"
}
