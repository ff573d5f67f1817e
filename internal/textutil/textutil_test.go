package textutil

import "testing"

func TestTokenize_Basic(t *testing.T) {
	tokens := Tokenize("Surrealist Memes: Regression or Progression?")

	expected := []string{"surrealist", "memes", "regression", "or", "progression"}
	if len(tokens) != len(expected) {
		t.Fatalf("Expected %d tokens, got %d: %v", len(expected), len(tokens), tokens)
	}
	for i, want := range expected {
		if tokens[i] != want {
			t.Errorf("Token %d: expected %q, got %q", i, want, tokens[i])
		}
	}
}

func TestTokenize_Empty(t *testing.T) {
	if tokens := Tokenize(""); len(tokens) != 0 {
		t.Errorf("Expected no tokens for empty input, got %v", tokens)
	}
	if tokens := Tokenize("!!! --- ???"); len(tokens) != 0 {
		t.Errorf("Expected no tokens for punctuation-only input, got %v", tokens)
	}
}

func TestContentTokens_DropsStopWords(t *testing.T) {
	tokens := ContentTokens("The memes are a progression of the art form")

	for _, tok := range tokens {
		if IsStopWord(tok) {
			t.Errorf("Stop word %q survived filtering", tok)
		}
	}

	found := false
	for _, tok := range tokens {
		if tok == "progression" {
			found = true
		}
	}
	if !found {
		t.Error("Expected content token 'progression' to survive filtering")
	}
}

func TestCosine_Identical(t *testing.T) {
	v := NewTermVector("surreal humor subverts traditional meme formats")
	if sim := Cosine(v, v); sim < 0.999 {
		t.Errorf("Expected cosine ~1.0 for identical vectors, got %f", sim)
	}
}

func TestCosine_Disjoint(t *testing.T) {
	a := NewTermVector("absurdist visuals dominate")
	b := NewTermVector("classical painting endures")
	if sim := Cosine(a, b); sim != 0 {
		t.Errorf("Expected cosine 0 for disjoint vectors, got %f", sim)
	}
}

func TestCosine_Empty(t *testing.T) {
	a := NewTermVector("")
	b := NewTermVector("some actual words here")
	if sim := Cosine(a, b); sim != 0 {
		t.Errorf("Expected cosine 0 against empty vector, got %f", sim)
	}
}

func TestSimilarity_NearDuplicates(t *testing.T) {
	a := "Surreal memes represent genuine artistic progression in internet culture"
	b := "Surreal memes represent real artistic progression in online culture"

	if sim := Similarity(a, b); sim < 0.6 {
		t.Errorf("Expected high similarity for near-duplicates, got %f", sim)
	}

	c := "Traditional humor relies on shared context and timing"
	if sim := Similarity(a, c); sim > 0.3 {
		t.Errorf("Expected low similarity for unrelated texts, got %f", sim)
	}
}

func TestSentences_Splitting(t *testing.T) {
	text := "Memes evolved rapidly. Their formats mutated! Did anyone notice?"

	sentences := Sentences(text)
	if len(sentences) != 3 {
		t.Fatalf("Expected 3 sentences, got %d: %v", len(sentences), sentences)
	}
	if sentences[0] != "Memes evolved rapidly." {
		t.Errorf("Unexpected first sentence: %q", sentences[0])
	}
}

func TestSentences_TrailingFragment(t *testing.T) {
	sentences := Sentences("Complete sentence here. trailing fragment without terminator")
	if len(sentences) != 2 {
		t.Fatalf("Expected 2 segments, got %d: %v", len(sentences), sentences)
	}
	if sentences[1] != "trailing fragment without terminator" {
		t.Errorf("Unexpected trailing segment: %q", sentences[1])
	}
}

func TestFirstSentence(t *testing.T) {
	got := FirstSentence("Lead argument stated plainly. Supporting detail follows.")
	if got != "Lead argument stated plainly." {
		t.Errorf("Unexpected first sentence: %q", got)
	}

	got = FirstSentence("no terminator at all")
	if got != "no terminator at all" {
		t.Errorf("Expected whole text back, got %q", got)
	}
}

func TestTruncateWords(t *testing.T) {
	got := TruncateWords("one two three four five", 3)
	if got != "one two three" {
		t.Errorf("Expected 'one two three', got %q", got)
	}

	got = TruncateWords("short text", 10)
	if got != "short text" {
		t.Errorf("Expected text unchanged, got %q", got)
	}
}

func TestWordCount(t *testing.T) {
	if n := WordCount("a compact five word sentence"); n != 5 {
		t.Errorf("Expected 5 words, got %d", n)
	}
	if n := WordCount(""); n != 0 {
		t.Errorf("Expected 0 words for empty text, got %d", n)
	}
}

func TestTermVector_AddAndNorm(t *testing.T) {
	a := NewTermVector("memes memes culture")
	b := NewTermVector("culture art")

	a.Add(b)
	if a["culture"] != 2 {
		t.Errorf("Expected accumulated weight 2 for 'culture', got %f", a["culture"])
	}
	if a.Norm() == 0 {
		t.Error("Expected non-zero norm after accumulation")
	}
}
