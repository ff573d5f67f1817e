package stance

import (
	"context"

	"github.com/ppiankov/dialectica/internal/model"
	"github.com/ppiankov/dialectica/internal/textutil"
)

// DefaultMargin is the neutrality band for lexical scores.
const DefaultMargin = 0.25

// Cue lexicons for the affirmative and opposing sides of a contested
// question. Deliberately generic; topic-specific vocabulary belongs to
// the llm method.
var proCues = map[string]bool{
	"advance": true, "advancement": true, "advances": true, "beneficial": true,
	"benefit": true, "benefits": true, "better": true, "boost": true,
	"boosts": true, "breakthrough": true, "create": true, "creates": true,
	"elevate": true, "elevates": true, "empower": true, "empowers": true,
	"enrich": true, "enriches": true, "essential": true, "expand": true,
	"expanding": true, "expands": true, "flourish": true, "forward": true,
	"gain": true, "gains": true, "growth": true,
	"improve": true, "improved": true, "improvement": true, "improves": true,
	"innovation": true, "innovative": true, "inspire": true, "inspires": true,
	"new": true, "novel": true, "opportunity": true, "positive": true,
	"progress": true, "progression": true, "promising": true, "strengthen": true,
	"strengthens": true, "succeed": true, "success": true, "successful": true,
	"thrive": true, "thrives": true, "valuable": true, "vibrant": true,
}

var conCues = map[string]bool{
	"collapse": true, "collapsing": true, "damage": true, "damages": true,
	"damaging": true, "danger": true, "dangerous": true, "decline": true,
	"declines": true, "declining": true, "derivative": true, "destroy": true,
	"destroys": true, "deteriorate": true, "deteriorates": true, "empty": true,
	"erode": true, "erodes": true, "exhausted": true, "exhaustion": true,
	"fail": true, "failing": true, "fails": true, "failure": true,
	"harm": true, "harmful": true, "harms": true, "hollow": true,
	"lack": true, "lacking": true, "lacks": true, "lose": true,
	"loses": true, "loss": true, "meaningless": true, "negative": true,
	"randomness": true, "recycled": true, "recycling": true, "regress": true,
	"regression": true, "risk": true, "risks": true, "risky": true,
	"shallow": true, "stale": true, "threat": true, "threatens": true,
	"undermine": true, "undermines": true, "worse": true, "worsen": true,
}

// Negation within this many preceding tokens flips a cue's polarity.
var negators = map[string]bool{
	"barely": true, "far": true, "hardly": true, "neither": true,
	"never": true, "no": true, "nor": true, "not": true, "without": true,
}

const negationWindow = 2

// A lone cue word is noise, not stance. Documents need this much cue
// mass before they are assigned to a pool.
const minCueMass = 2

// Lexical scores stance from cue words. It is the offline default;
// deterministic, fast, and blind to anything the lexicons miss.
type Lexical struct {
	margin float64
}

// NewLexical creates a lexical partitioner; margin <= 0 uses the default
func NewLexical(margin float64) *Lexical {
	if margin <= 0 {
		margin = DefaultMargin
	}
	return &Lexical{margin: margin}
}

// Score returns the normalized stance of text: positive favors the
// affirmative side, negative the opposing side, zero carries no signal.
func (l *Lexical) Score(text string) float64 {
	tokens := textutil.Tokenize(text)

	var pro, con float64
	for i, tok := range tokens {
		var polarity float64
		switch {
		case proCues[tok]:
			polarity = 1
		case conCues[tok]:
			polarity = -1
		default:
			continue
		}
		if negatedAt(tokens, i) {
			polarity = -polarity
		}
		if polarity > 0 {
			pro++
		} else {
			con++
		}
	}

	if pro+con < minCueMass {
		return 0
	}
	return (pro - con) / (pro + con)
}

// Partition implements Partitioner
func (l *Lexical) Partition(_ context.Context, _ model.Query, docs []model.Document) (Split, error) {
	var split Split
	for _, doc := range docs {
		score := l.Score(doc.Text)
		switch {
		case score > l.margin:
			split.Pro = append(split.Pro, doc)
		case score < -l.margin:
			split.Con = append(split.Con, doc)
		default:
			split.Neutral = append(split.Neutral, doc)
		}
	}
	return split, nil
}

func negatedAt(tokens []string, i int) bool {
	for j := i - 1; j >= 0 && j >= i-negationWindow; j-- {
		if negators[tokens[j]] {
			return true
		}
	}
	return false
}
