package synthesize

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/ppiankov/dialectica/internal/llm"
	"github.com/ppiankov/dialectica/internal/model"
	"github.com/ppiankov/dialectica/internal/textutil"
)

// scriptedProvider replays canned responses in call order, repeating
// the last one when the script runs out.
type scriptedProvider struct {
	responses []string
	err       error
	calls     int
	requests  []llm.Request
}

func (p *scriptedProvider) Name() string { return "scripted" }

func (p *scriptedProvider) Generate(ctx context.Context, req llm.Request) (*llm.Response, error) {
	p.calls++
	p.requests = append(p.requests, req)
	if p.err != nil {
		return nil, p.err
	}
	idx := p.calls - 1
	if idx >= len(p.responses) {
		idx = len(p.responses) - 1
	}
	return &llm.Response{Text: p.responses[idx], Model: "scripted"}, nil
}

func (p *scriptedProvider) IsAvailable(ctx context.Context) bool { return true }

var memeQuery = model.Query{ID: "Entertainment_0", Text: "Surrealist Memes: Regression or Progression?"}

func proPool() []model.Document {
	return []model.Document{
		model.NewDocument("205", "Surrealist memes elevate internet culture into genuine artistic expression."),
		model.NewDocument("364", "Layered absurdity rewards viewers who decode hidden visual references."),
	}
}

func conPool() []model.Document {
	return []model.Document{
		model.NewDocument("1138", "Random meme templates bury any actual joke under noise."),
		model.NewDocument("858", "Recycled surrealist formats exhaust novelty and cheapen humor."),
	}
}

func TestSynthesizer_ExtractiveSingleDoc(t *testing.T) {
	s := New(model.SynthesisConfig{}, nil)

	claim, err := s.Synthesize(context.Background(), memeQuery, proPool()[:1], model.PolarityPro)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(claim.Perspectives) != 1 {
		t.Fatalf("Expected exactly 1 perspective for a pool of one, got %d", len(claim.Perspectives))
	}
	p := claim.Perspectives[0]
	if p.Text == "" {
		t.Error("Expected non-empty perspective text")
	}
	if len(p.DocIDs) != 1 || p.DocIDs[0] != "205" {
		t.Errorf("Expected perspective grounded by [205], got %v", p.DocIDs)
	}
	if claim.Polarity != model.PolarityPro {
		t.Errorf("Expected pro polarity, got %s", claim.Polarity)
	}
	if !strings.HasPrefix(claim.Text, "Evidence supports") {
		t.Errorf("Expected extractive pro claim, got %q", claim.Text)
	}
}

func TestSynthesizer_ExtractiveDistinctClusters(t *testing.T) {
	s := New(model.SynthesisConfig{}, nil)

	claim, err := s.Synthesize(context.Background(), memeQuery, conPool(), model.PolarityCon)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(claim.Perspectives) != 2 {
		t.Fatalf("Expected 2 perspectives for 2 distinct arguments, got %d", len(claim.Perspectives))
	}
	if got := claim.Perspectives[0].DocIDs; len(got) != 1 || got[0] != "1138" {
		t.Errorf("Expected first perspective grounded by [1138], got %v", got)
	}
	if got := claim.Perspectives[1].DocIDs; len(got) != 1 || got[0] != "858" {
		t.Errorf("Expected second perspective grounded by [858], got %v", got)
	}
	if !strings.HasPrefix(claim.Text, "Evidence disputes") {
		t.Errorf("Expected extractive con claim, got %q", claim.Text)
	}
}

func TestSynthesizer_EmptyPool(t *testing.T) {
	s := New(model.SynthesisConfig{}, nil)

	if _, err := s.Synthesize(context.Background(), memeQuery, nil, model.PolarityPro); err == nil {
		t.Fatal("Expected error for empty pool")
	}
}

func TestSynthesizer_ProviderShapesOutput(t *testing.T) {
	provider := &scriptedProvider{responses: []string{
		"Memes open new room for artistic experimentation.",
		"Layered absurdity rewards patient decoding.",
		"Surrealist memes advance internet art.",
	}}
	s := New(model.SynthesisConfig{}, provider)

	claim, err := s.Synthesize(context.Background(), memeQuery, proPool(), model.PolarityPro)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if provider.calls != 3 {
		t.Fatalf("Expected 2 perspective calls plus 1 claim call, got %d", provider.calls)
	}
	if claim.Perspectives[0].Text != "Memes open new room for artistic experimentation." {
		t.Errorf("Unexpected first perspective: %q", claim.Perspectives[0].Text)
	}
	if claim.Perspectives[1].Text != "Layered absurdity rewards patient decoding." {
		t.Errorf("Unexpected second perspective: %q", claim.Perspectives[1].Text)
	}
	if claim.Text != "Surrealist memes advance internet art." {
		t.Errorf("Unexpected claim: %q", claim.Text)
	}

	// Grounding comes from the clusters, not the model
	if got := claim.Perspectives[0].DocIDs; len(got) != 1 || got[0] != "205" {
		t.Errorf("Expected first perspective grounded by [205], got %v", got)
	}
	if got := claim.Perspectives[1].DocIDs; len(got) != 1 || got[0] != "364" {
		t.Errorf("Expected second perspective grounded by [364], got %v", got)
	}

	req := provider.requests[0]
	if req.System == "" {
		t.Error("Expected system prompt on perspective request")
	}
	if !strings.Contains(req.Prompt, memeQuery.Text) {
		t.Error("Expected perspective prompt to carry the query text")
	}
	if !strings.Contains(req.Prompt, "[205]") {
		t.Error("Expected perspective prompt to list the cluster's documents")
	}
}

func TestSynthesizer_MergesIdenticalPerspectives(t *testing.T) {
	provider := &scriptedProvider{responses: []string{
		"Same argument about memes and culture.",
		"Same argument about memes and culture.",
		"Same argument about memes and culture.",
		"Memes resist a single reading.",
	}}
	s := New(model.SynthesisConfig{}, provider)

	claim, err := s.Synthesize(context.Background(), memeQuery, proPool(), model.PolarityPro)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(claim.Perspectives) != 1 {
		t.Fatalf("Expected duplicate perspectives merged down to 1, got %d", len(claim.Perspectives))
	}
	if got := claim.Perspectives[0].DocIDs; len(got) != 2 || got[0] != "205" || got[1] != "364" {
		t.Errorf("Expected merged grounding [205 364], got %v", got)
	}
	if claim.Text != "Memes resist a single reading." {
		t.Errorf("Unexpected claim: %q", claim.Text)
	}
	// Round one: two perspectives. Round two after the merge: one
	// perspective plus the claim.
	if provider.calls != 4 {
		t.Errorf("Expected 4 provider calls across the regeneration, got %d", provider.calls)
	}
}

func TestSynthesizer_AttemptBudget(t *testing.T) {
	provider := &scriptedProvider{responses: []string{"Same argument about memes and culture."}}
	s := New(model.SynthesisConfig{MaxAttempts: 1}, provider)

	_, err := s.Synthesize(context.Background(), memeQuery, proPool(), model.PolarityPro)
	if err == nil {
		t.Fatal("Expected error when the attempt budget is exhausted")
	}
	if !strings.Contains(err.Error(), "still overlap") {
		t.Errorf("Expected overlap exhaustion error, got %v", err)
	}
}

func TestSynthesizer_ProviderErrorSurfaces(t *testing.T) {
	provider := &scriptedProvider{err: errors.New("api down")}
	s := New(model.SynthesisConfig{}, provider)

	_, err := s.Synthesize(context.Background(), memeQuery, proPool(), model.PolarityPro)
	if err == nil {
		t.Fatal("Expected provider error to surface")
	}
	if !strings.Contains(err.Error(), "api down") {
		t.Errorf("Expected wrapped provider error, got %v", err)
	}
}

func TestSynthesizer_UnusableResponseFallsBack(t *testing.T) {
	provider := &scriptedProvider{responses: []string{""}}
	s := New(model.SynthesisConfig{}, provider)

	claim, err := s.Synthesize(context.Background(), memeQuery, proPool()[:1], model.PolarityPro)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if claim.Perspectives[0].Text != "Surrealist memes elevate internet culture into genuine artistic expression." {
		t.Errorf("Expected extractive fallback text, got %q", claim.Perspectives[0].Text)
	}
	if !strings.HasPrefix(claim.Text, "Evidence supports") {
		t.Errorf("Expected extractive fallback claim, got %q", claim.Text)
	}
}

func TestCleanSentence(t *testing.T) {
	if got := cleanSentence("Surrealist memes are art."); got != "Surrealist memes are art." {
		t.Errorf("Expected plain sentence kept, got %q", got)
	}
	if got := cleanSentence("```\nSurrealist memes are art.\n```"); got != "Surrealist memes are art." {
		t.Errorf("Expected code fence stripped, got %q", got)
	}
	if got := cleanSentence("```text\nSurrealist memes are art.\n```"); got != "Surrealist memes are art." {
		t.Errorf("Expected fence language tag stripped, got %q", got)
	}
	if got := cleanSentence(`"Surrealist memes are art."`); got != "Surrealist memes are art." {
		t.Errorf("Expected quotes stripped, got %q", got)
	}
	if got := cleanSentence("Perspective: Memes are art."); got != "Memes are art." {
		t.Errorf("Expected label prefix stripped, got %q", got)
	}
	if got := cleanSentence("- Memes are art."); got != "Memes are art." {
		t.Errorf("Expected bullet stripped, got %q", got)
	}
	if got := cleanSentence("Memes are art. They reward analysis."); got != "Memes are art." {
		t.Errorf("Expected first sentence only, got %q", got)
	}
	if got := cleanSentence("Here is the sentence:\nMemes are art."); got != "Memes are art." {
		t.Errorf("Expected lead-in line skipped, got %q", got)
	}
	if got := cleanSentence("   \n\t"); got != "" {
		t.Errorf("Expected empty result for whitespace, got %q", got)
	}
}

func TestExtractiveClaim(t *testing.T) {
	perspectives := []string{"Memes elevate culture", "Memes reward analysis"}

	pro := extractiveClaim(model.PolarityPro, perspectives, 5)
	if pro != "Evidence supports memes analysis culture" {
		t.Errorf("Unexpected pro claim: %q", pro)
	}
	con := extractiveClaim(model.PolarityCon, perspectives, 5)
	if !strings.HasPrefix(con, "Evidence disputes") {
		t.Errorf("Expected con stance verb, got %q", con)
	}
	if got := extractiveClaim(model.PolarityPro, nil, 5); got != "Evidence supports this position" {
		t.Errorf("Unexpected empty-input claim: %q", got)
	}
}

func TestExtractivePerspective_TruncatesLongSentence(t *testing.T) {
	doc := model.NewDocument("1", "Alpha beta gamma delta epsilon zeta eta theta iota kappa")
	c := Cluster{Docs: []model.Document{doc}, vector: textutil.NewTermVector(doc.Text)}

	got := extractivePerspective(c, 3)
	if got != "Alpha beta gamma delta epsilon zeta" {
		t.Errorf("Expected truncation to twice the target, got %q", got)
	}
}
