package stance

import (
	"context"
	"fmt"
	"strings"

	"github.com/ppiankov/dialectica/internal/llm"
	"github.com/ppiankov/dialectica/internal/model"
)

const stanceSystemPrompt = "You classify the stance of evidence documents toward a contested question. Answer strictly in the requested format."

// LLMPartitioner asks the generation provider to label each document.
type LLMPartitioner struct {
	provider llm.Provider
}

// NewLLM creates a provider-backed partitioner
func NewLLM(provider llm.Provider) *LLMPartitioner {
	return &LLMPartitioner{provider: provider}
}

// Partition implements Partitioner. Documents the provider fails to label
// cleanly fall to Neutral.
func (p *LLMPartitioner) Partition(ctx context.Context, query model.Query, docs []model.Document) (Split, error) {
	if len(docs) == 0 {
		return Split{}, nil
	}

	resp, err := p.provider.Generate(ctx, llm.Request{
		System: stanceSystemPrompt,
		Prompt: buildStancePrompt(query, docs),
	})
	if err != nil {
		return Split{}, fmt.Errorf("stance classification: %w", err)
	}

	labels := parseStanceLabels(resp.Text)

	var split Split
	for _, doc := range docs {
		switch labels[doc.ID] {
		case model.PolarityPro:
			split.Pro = append(split.Pro, doc)
		case model.PolarityCon:
			split.Con = append(split.Con, doc)
		default:
			split.Neutral = append(split.Neutral, doc)
		}
	}
	return split, nil
}

func buildStancePrompt(query model.Query, docs []model.Document) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Question: %s\n\n", query.Text)
	b.WriteString("Classify each document's stance toward the affirmative side of the question.\n")
	b.WriteString("PRO argues for it, CON argues against it, NEUTRAL takes no clear side.\n\nDocuments:\n")
	for _, doc := range docs {
		fmt.Fprintf(&b, "[%s] %s\n", doc.ID, doc.Text)
	}
	b.WriteString("\nAnswer with one line per document: <id>: PRO, CON, or NEUTRAL.")
	return b.String()
}

// parseStanceLabels extracts "<id>: VERDICT" lines from the response
func parseStanceLabels(text string) map[string]model.Polarity {
	labels := make(map[string]model.Polarity)
	for _, line := range strings.Split(text, "\n") {
		parts := strings.SplitN(line, ":", 2)
		if len(parts) != 2 {
			continue
		}
		id := strings.Trim(strings.TrimSpace(parts[0]), "[]")
		if id == "" {
			continue
		}
		switch verdictToken(parts[1]) {
		case "PRO":
			labels[id] = model.PolarityPro
		case "CON":
			labels[id] = model.PolarityCon
		}
	}
	return labels
}

// verdictToken returns the first recognized verdict word in s
func verdictToken(s string) string {
	for _, field := range strings.Fields(strings.ToUpper(s)) {
		field = strings.Trim(field, ".,;:!()[]")
		switch field {
		case "PRO", "CON", "NEUTRAL":
			return field
		}
	}
	return ""
}
