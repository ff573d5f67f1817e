// Package synthesize turns stance pools into polarity claims backed by
// distinct, grounded perspectives.
package synthesize

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ppiankov/dialectica/internal/llm"
	"github.com/ppiankov/dialectica/internal/model"
	"github.com/ppiankov/dialectica/internal/textutil"
)

// Token budgets for the two generation shapes. A perspective is one
// sentence, a claim is shorter still.
const (
	perspectiveMaxTokens = 120
	claimMaxTokens       = 60
)

// Synthesizer builds one polarity's claim from its stance pool. With a
// provider it prompts a model per argument cluster; without one it uses
// deterministic extractive generation, so the engine runs fully offline.
type Synthesizer struct {
	cfg      model.SynthesisConfig
	provider llm.Provider
}

// New creates a synthesizer. A nil provider selects the extractive path.
// Config zero values fall back to defaults.
func New(cfg model.SynthesisConfig, provider llm.Provider) *Synthesizer {
	def := model.DefaultConfig().Synthesis
	if cfg.MaxPerspectives < 1 {
		cfg.MaxPerspectives = def.MaxPerspectives
	}
	if cfg.ClusterThreshold <= 0 {
		cfg.ClusterThreshold = def.ClusterThreshold
	}
	if cfg.OverlapThreshold <= 0 {
		cfg.OverlapThreshold = def.OverlapThreshold
	}
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = def.MaxAttempts
	}
	if cfg.PerspectiveWords < 1 {
		cfg.PerspectiveWords = def.PerspectiveWords
	}
	if cfg.ClaimWords < 1 {
		cfg.ClaimWords = def.ClaimWords
	}
	return &Synthesizer{cfg: cfg, provider: provider}
}

// Synthesize builds the polarity's claim from its pool. Each perspective
// maps onto one argument cluster and is grounded by that cluster's
// document ids; ids never come from model output, so a perspective
// cannot cite evidence it was not built from. A pool of one document
// yields exactly one perspective.
func (s *Synthesizer) Synthesize(ctx context.Context, query model.Query, pool []model.Document, polarity model.Polarity) (*model.Claim, error) {
	if len(pool) == 0 {
		return nil, fmt.Errorf("%s pool is empty", polarity)
	}

	clusters := clusterDocuments(pool, s.cfg.ClusterThreshold, s.cfg.MaxPerspectives)
	slog.Debug("synthesizing claim",
		"query_id", query.ID,
		"polarity", polarity,
		"pool", len(pool),
		"clusters", len(clusters))

	// Generate, then merge any clusters whose perspectives collapse into
	// the same argument and regenerate. Every merge shrinks the cluster
	// count and a single perspective cannot overlap, so the loop
	// terminates; the attempt budget bounds provider spend on the way.
	for attempt := 1; ; attempt++ {
		perspectives, err := s.generatePerspectives(ctx, query, polarity, clusters)
		if err != nil {
			return nil, err
		}

		first, second, sim, overlapping := findOverlap(perspectives, s.cfg.OverlapThreshold)
		if !overlapping {
			claimText, err := s.generateClaim(ctx, query, polarity, perspectives)
			if err != nil {
				return nil, err
			}
			return &model.Claim{
				Text:         claimText,
				Polarity:     polarity,
				Perspectives: perspectives,
			}, nil
		}

		if attempt >= s.cfg.MaxAttempts {
			return nil, fmt.Errorf("%s perspectives still overlap after %d attempts (similarity %.2f)",
				polarity, attempt, sim)
		}

		slog.Debug("merging overlapping perspective clusters",
			"query_id", query.ID,
			"polarity", polarity,
			"first", first,
			"second", second,
			"similarity", sim)
		clusters = merge(clusters, first, second)
	}
}

// generatePerspectives produces one perspective per cluster, in cluster
// order. Provider output is parsed leniently; a response with no usable
// sentence falls back to extraction rather than failing the branch.
func (s *Synthesizer) generatePerspectives(ctx context.Context, query model.Query, polarity model.Polarity, clusters []Cluster) ([]model.Perspective, error) {
	perspectives := make([]model.Perspective, 0, len(clusters))
	for i := range clusters {
		text, err := s.perspectiveText(ctx, query, polarity, clusters[i])
		if err != nil {
			return nil, fmt.Errorf("generating %s perspective %d: %w", polarity, i, err)
		}
		perspectives = append(perspectives, model.Perspective{
			Text:   text,
			DocIDs: clusters[i].IDs(),
		})
	}
	return perspectives, nil
}

func (s *Synthesizer) perspectiveText(ctx context.Context, query model.Query, polarity model.Polarity, c Cluster) (string, error) {
	if s.provider == nil {
		return extractivePerspective(c, s.cfg.PerspectiveWords), nil
	}

	resp, err := s.provider.Generate(ctx, llm.Request{
		System:    systemPrompt,
		Prompt:    buildPerspectivePrompt(query, polarity, c, s.cfg.PerspectiveWords),
		MaxTokens: perspectiveMaxTokens,
	})
	if err != nil {
		return "", err
	}

	if text := cleanSentence(resp.Text); text != "" {
		return text, nil
	}
	slog.Warn("unusable perspective response, falling back to extraction",
		"query_id", query.ID,
		"polarity", polarity,
		"provider", s.provider.Name())
	return extractivePerspective(c, s.cfg.PerspectiveWords), nil
}

// generateClaim derives the short claim sentence from the perspective
// texts, not from the raw documents.
func (s *Synthesizer) generateClaim(ctx context.Context, query model.Query, polarity model.Polarity, perspectives []model.Perspective) (string, error) {
	texts := make([]string, len(perspectives))
	for i, p := range perspectives {
		texts[i] = p.Text
	}

	if s.provider == nil {
		return extractiveClaim(polarity, texts, s.cfg.ClaimWords), nil
	}

	resp, err := s.provider.Generate(ctx, llm.Request{
		System:    systemPrompt,
		Prompt:    buildClaimPrompt(query, polarity, texts, s.cfg.ClaimWords),
		MaxTokens: claimMaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("generating %s claim: %w", polarity, err)
	}

	if text := cleanSentence(resp.Text); text != "" {
		return text, nil
	}
	slog.Warn("unusable claim response, falling back to extraction",
		"query_id", query.ID,
		"polarity", polarity,
		"provider", s.provider.Name())
	return extractiveClaim(polarity, texts, s.cfg.ClaimWords), nil
}

// findOverlap returns the first pair of perspectives whose similarity
// reaches the threshold, scanning in index order.
func findOverlap(perspectives []model.Perspective, threshold float64) (first, second int, sim float64, ok bool) {
	for i := 1; i < len(perspectives); i++ {
		for j := 0; j < i; j++ {
			s := textutil.Similarity(perspectives[i].Text, perspectives[j].Text)
			if s >= threshold {
				return j, i, s, true
			}
		}
	}
	return 0, 0, 0, false
}
