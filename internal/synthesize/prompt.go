package synthesize

import (
	"fmt"
	"strings"

	"github.com/ppiankov/dialectica/internal/model"
	"github.com/ppiankov/dialectica/internal/textutil"
)

// systemPrompt frames every generation call. The grounding rules are
// repeated per request because smaller local models drop system-level
// instructions on long inputs.
const systemPrompt = `You are a debate summarizer. You condense evidence documents into short, neutral argument summaries. You only restate what the documents argue. You never add facts, sources, or opinions of your own.`

func sideWord(polarity model.Polarity) string {
	if polarity == model.PolarityPro {
		return "supporting"
	}
	return "opposing"
}

// buildPerspectivePrompt asks for one sentence capturing the shared
// argument of a cluster's documents.
func buildPerspectivePrompt(query model.Query, polarity model.Polarity, c Cluster, targetWords int) string {
	prompt := fmt.Sprintf(`Question under debate: %q

The documents below all argue the %s side of this question.

RULES:
1. Write EXACTLY ONE sentence stating the argument these documents share.
2. Aim for about %d words.
3. Use only what the documents say. Do not add outside facts.
4. Do not mention the documents, their ids, or sources in the sentence.
5. Respond with the sentence only. No preamble, no quotes, no markdown.

Documents:
`, query.Text, sideWord(polarity), targetWords)

	for _, doc := range c.Docs {
		prompt += fmt.Sprintf("[%s] %s\n", doc.ID, doc.Text)
	}

	return prompt
}

// buildClaimPrompt asks for the short overall claim this side's
// perspectives add up to.
func buildClaimPrompt(query model.Query, polarity model.Polarity, perspectives []string, targetWords int) string {
	prompt := fmt.Sprintf(`Question under debate: %q

The lines below are the distinct %s arguments found in the evidence.

RULES:
1. Write EXACTLY ONE short claim sentence stating this side's overall position.
2. Aim for about %d words.
3. Derive the claim from the arguments below. Do not copy any line verbatim.
4. Respond with the claim only. No preamble, no quotes, no markdown.

Arguments:
`, query.Text, sideWord(polarity), targetWords)

	for i, p := range perspectives {
		prompt += fmt.Sprintf("%d. %s\n", i+1, p)
	}

	return prompt
}

// labelPrefixes are chatty lead-ins some models insist on despite the
// respond-with-the-sentence-only rule.
var labelPrefixes = []string{"perspective:", "claim:", "answer:", "summary:", "sentence:"}

// cleanSentence leniently extracts one usable sentence from a provider
// response: code fences, quotes, bullets, and label prefixes are
// stripped, then the first sentence of the first non-empty line is
// kept. Returns "" when nothing usable remains.
func cleanSentence(raw string) string {
	text := strings.TrimSpace(raw)

	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		if end := strings.Index(text, "```"); end >= 0 {
			text = text[:end]
		}
		// drop a language tag left on the fence line
		if nl := strings.IndexByte(text, '\n'); nl >= 0 && len(strings.Fields(text[:nl])) <= 1 {
			text = text[nl+1:]
		}
	}

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimPrefix(line, "- ")
		line = strings.TrimPrefix(line, "* ")
		line = strings.Trim(line, "\"'`“”")
		for _, prefix := range labelPrefixes {
			if len(line) > len(prefix) && strings.EqualFold(line[:len(prefix)], prefix) {
				line = strings.TrimSpace(line[len(prefix):])
			}
		}
		if line == "" {
			continue
		}
		// chatty lead-in lines ("Here is the sentence:") end in a colon
		if strings.HasSuffix(line, ":") {
			continue
		}
		sentence := textutil.FirstSentence(line)
		return strings.Join(strings.Fields(sentence), " ")
	}

	return ""
}
