package token

import (
	"reflect"
	"testing"
)

func TestStemCollapsesDerivedForms(t *testing.T) {
	words := []string{"observation", "observed", "observing", "observations"}
	for _, w := range words {
		if got := Stem(w); got != "observ" {
			t.Errorf("Stem(%q) = %q, want observ", w, got)
		}
	}
}

func TestStemTable(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"deployment", "deploy"},
		{"effectiveness", "effect"},
		{"failures", "failur"},
		{"connections", "connection"},
		{"running", "runn"},
		{"cars", "cars"}, // below min stem length, rule skipped
		{"care", "care"},
	}
	for _, tt := range tests {
		if got := Stem(tt.in); got != tt.want {
			t.Errorf("Stem(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestStemIdempotent(t *testing.T) {
	words := []string{"observation", "deployment", "effectiveness", "learning", "decision"}
	for _, w := range words {
		once := Stem(w)
		if twice := Stem(once); twice != once {
			t.Errorf("Stem not idempotent on %q: %q -> %q", w, once, twice)
		}
	}
}

func TestStemMinLength(t *testing.T) {
	// stripping would leave fewer than four characters
	if got := Stem("bed"); got != "bed" {
		t.Errorf("Stem(bed) = %q, want bed", got)
	}
	if got := Stem("ring"); got != "ring" {
		t.Errorf("Stem(ring) = %q, want ring", got)
	}
}

func TestTokenizeDropsStopwordsAndShort(t *testing.T) {
	toks := Tokenize("the deploy of a service is in the east")
	for _, tok := range toks {
		if stopwords[tok] {
			t.Errorf("stopword %q survived tokenization", tok)
		}
		if len(tok) < 2 {
			t.Errorf("short token %q survived tokenization", tok)
		}
	}
}

func TestTokenizeKeepsRawAndStem(t *testing.T) {
	toks := Tokenize("observations")
	want := []string{"observations", "observ"}
	if !reflect.DeepEqual(toks, want) {
		t.Errorf("Tokenize() = %v, want %v", toks, want)
	}
}

func TestTokenizeDeterministic(t *testing.T) {
	a := Tokenize("deploy failed on the api gateway")
	b := Tokenize("deploy failed on the api gateway")
	if !reflect.DeepEqual(a, b) {
		t.Errorf("Tokenize not deterministic: %v vs %v", a, b)
	}
}

func TestTokenizeCamelCase(t *testing.T) {
	toks := Tokenize("deployFailed apiGateway")
	has := func(want string) bool {
		for _, tok := range toks {
			if tok == want {
				return true
			}
		}
		return false
	}
	for _, want := range []string{"deploy", "api", "gateway"} {
		if !has(want) {
			t.Errorf("Tokenize(camelCase) missing %q in %v", want, toks)
		}
	}
}

func TestTokenizeUnderscoresAndPunctuation(t *testing.T) {
	toks := Tokenize("key_events: rollback, restart!")
	has := func(want string) bool {
		for _, tok := range toks {
			if tok == want {
				return true
			}
		}
		return false
	}
	for _, want := range []string{"key", "events", "rollback", "restart"} {
		if !has(want) {
			t.Errorf("missing %q in %v", want, toks)
		}
	}
}

func TestTokenizeEmpty(t *testing.T) {
	if toks := Tokenize(""); len(toks) != 0 {
		t.Errorf("Tokenize(\"\") = %v, want empty", toks)
	}
	if toks := Tokenize("a I of"); len(toks) != 0 {
		t.Errorf("Tokenize(stopwords only) = %v, want empty", toks)
	}
}

func TestBigrams(t *testing.T) {
	grams := Bigrams("deploy failed badly")
	want := []string{"deploy_fail", "fail_badly"}
	if !reflect.DeepEqual(grams, want) {
		t.Errorf("Bigrams() = %v, want %v", grams, want)
	}

	if grams := Bigrams("deploy"); len(grams) != 0 {
		t.Errorf("single token should yield no bigrams, got %v", grams)
	}
}

func TestExtractHintText(t *testing.T) {
	hint := map[string]any{
		"content":   "deploy failed",
		"zeta":      "custom note",
		"alpha":     "another note",
		"origin":    "agent-1", // system field, ignored
		"timestamp": "12345",   // system field, ignored
		"count":     3,         // non-string, ignored
	}

	got := ExtractHintText(hint)
	want := "deploy failed another note custom note"
	if got != want {
		t.Errorf("ExtractHintText() = %q, want %q", got, want)
	}
}

func TestExtractHintTextPriorityOrder(t *testing.T) {
	hint := map[string]any{
		"summary": "second",
		"content": "first",
		"event":   "third",
	}
	if got := ExtractHintText(hint); got != "first second third" {
		t.Errorf("ExtractHintText() = %q, want priority order", got)
	}
}

func TestExtractHintTextLists(t *testing.T) {
	hint := map[string]any{
		"key_events": []string{"rollback", "restart"},
		"tags":       []any{"infra", 42, "deploy"},
	}
	got := ExtractHintText(hint)
	if got != "rollback restart infra deploy" {
		t.Errorf("ExtractHintText() = %q", got)
	}
}

func TestTokenizeHintByField(t *testing.T) {
	hint := map[string]any{
		"content": "deploy failed",
		"summary": "rolled back",
	}
	fields := TokenizeHintByField(hint)
	if len(fields) != 2 {
		t.Fatalf("got %d field groups, want 2", len(fields))
	}
	if fields[0].Field != "content" || fields[1].Field != "summary" {
		t.Errorf("field order = %s, %s", fields[0].Field, fields[1].Field)
	}
	if len(fields[0].Tokens) == 0 {
		t.Error("content field should yield tokens")
	}
}

func TestTokenizeHintByFieldOmitsEmpty(t *testing.T) {
	hint := map[string]any{
		"content": "",
		"note":    "deploy",
	}
	fields := TokenizeHintByField(hint)
	if len(fields) != 1 || fields[0].Field != "note" {
		t.Errorf("TokenizeHintByField() = %v, want only note", fields)
	}
}

func TestIsStopword(t *testing.T) {
	if !IsStopword("the") {
		t.Error("the should be a stopword")
	}
	if IsStopword("deploy") {
		t.Error("deploy should not be a stopword")
	}
}
