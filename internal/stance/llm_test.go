package stance

import (
	"context"
	"errors"
	"testing"

	"github.com/ppiankov/dialectica/internal/llm"
	"github.com/ppiankov/dialectica/internal/model"
)

type stubProvider struct {
	response string
	err      error
	calls    int
}

func (s *stubProvider) Name() string { return "stub" }

func (s *stubProvider) Generate(ctx context.Context, req llm.Request) (*llm.Response, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return &llm.Response{Text: s.response, Model: "stub"}, nil
}

func (s *stubProvider) IsAvailable(ctx context.Context) bool { return true }

func TestLLMPartitioner_ParsesVerdicts(t *testing.T) {
	provider := &stubProvider{response: "[205] : PRO\n364: pro.\n1138: CON (clearly)\n858: The verdict is CON\n3001: NEUTRAL"}
	partitioner := NewLLM(provider)

	docs := append(memeDocs(), model.NewDocument("3001", "The recipe calls for slow-roasted tomatoes."))

	split, err := partitioner.Partition(context.Background(), memeQuery, docs)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	proIDs := split.ProIDs()
	if len(proIDs) != 2 || proIDs[0] != "205" || proIDs[1] != "364" {
		t.Errorf("Expected pro pool [205 364], got %v", proIDs)
	}
	conIDs := split.ConIDs()
	if len(conIDs) != 2 || conIDs[0] != "1138" || conIDs[1] != "858" {
		t.Errorf("Expected con pool [1138 858], got %v", conIDs)
	}
	if len(split.Neutral) != 1 || split.Neutral[0].ID != "3001" {
		t.Errorf("Expected neutral verdict respected, got %v", split.Neutral)
	}
}

func TestLLMPartitioner_UnlabeledFallsToNeutral(t *testing.T) {
	provider := &stubProvider{response: "205: PRO"}
	partitioner := NewLLM(provider)

	split, err := partitioner.Partition(context.Background(), memeQuery, memeDocs())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if len(split.Pro) != 1 || split.Pro[0].ID != "205" {
		t.Errorf("Expected only 205 in pro pool, got %v", split.ProIDs())
	}
	if len(split.Neutral) != 3 {
		t.Errorf("Expected unlabeled documents to be neutral, got %d", len(split.Neutral))
	}
}

func TestLLMPartitioner_PropagatesProviderError(t *testing.T) {
	provider := &stubProvider{err: errors.New("rate limit exceeded")}
	partitioner := NewLLM(provider)

	_, err := partitioner.Partition(context.Background(), memeQuery, memeDocs())
	if err == nil {
		t.Fatal("Expected error, got nil")
	}
}

func TestLLMPartitioner_EmptyInputSkipsProvider(t *testing.T) {
	provider := &stubProvider{err: errors.New("should not be called")}
	partitioner := NewLLM(provider)

	split, err := partitioner.Partition(context.Background(), memeQuery, nil)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if provider.calls != 0 {
		t.Errorf("Expected no provider call for empty input, got %d", provider.calls)
	}
	if len(split.Pro) != 0 || len(split.Con) != 0 || len(split.Neutral) != 0 {
		t.Error("Expected empty split for empty input")
	}
}

func TestVerdictToken_IgnoresSurroundingText(t *testing.T) {
	cases := map[string]string{
		" PRO":                 "PRO",
		" pro.":                "PRO",
		" CON (clearly)":       "CON",
		" The verdict is CON":  "CON",
		" NEUTRAL, leaning in": "NEUTRAL",
		" no verdict here":     "",
	}

	for input, want := range cases {
		if got := verdictToken(input); got != want {
			t.Errorf("verdictToken(%q) = %q, want %q", input, got, want)
		}
	}
}
