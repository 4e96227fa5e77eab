// Package token turns trace reconstruction hints and free text into stemmed
// token lists. The pipeline is deterministic and side-effect free: the same
// hint always yields the same tokens, which is what lets independent agents
// derive the same seed vectors from shared content.
package token

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// priorityFields are hint fields read first, in order, when extracting
// text. These are the keys trace producers conventionally write.
var priorityFields = []string{"content", "summary", "key_events", "event", "description"}

// systemFields are structural hint fields that never contribute text.
var systemFields = map[string]bool{
	"id":         true,
	"trace_id":   true,
	"origin":     true,
	"purpose":    true,
	"path":       true,
	"timestamp":  true,
	"clock":      true,
	"node_id":    true,
	"session_id": true,
	"created_at": true,
	"vector":     true,
}

var (
	camelBoundary = regexp.MustCompile(`([a-z0-9])([A-Z])`)
	nonWord       = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)
)

// FieldTokens pairs a hint field name with the tokens extracted from it.
type FieldTokens struct {
	Field  string
	Tokens []string
}

// Tokenize runs the full pipeline over free text: normalize, split, drop
// stop-words and short tokens, deduplicate, stem. The output is the union
// of raw and stemmed forms, both kept, in first-occurrence order.
func Tokenize(text string) []string {
	raw := splitWords(text)

	out := make([]string, 0, len(raw)*2)
	seen := make(map[string]bool, len(raw)*2)
	for _, w := range raw {
		if !seen[w] {
			seen[w] = true
			out = append(out, w)
		}
		if s := Stem(w); !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}

// Bigrams returns consecutive stemmed tokens joined with "_", over the
// surviving token sequence in original order.
func Bigrams(text string) []string {
	raw := splitWords(text)
	stems := make([]string, len(raw))
	for i, w := range raw {
		stems[i] = Stem(w)
	}

	var grams []string
	for i := 0; i+1 < len(stems); i++ {
		grams = append(grams, stems[i]+"_"+stems[i+1])
	}
	return grams
}

// TokenizeHint extracts text from a hint map and tokenizes it as one list.
func TokenizeHint(hint map[string]any) []string {
	return Tokenize(ExtractHintText(hint))
}

// TokenizeHintByField tokenizes each contributing hint field independently
// and returns (field, tokens) pairs: priority fields first in their fixed
// order, then remaining non-system fields sorted by name. Fields that yield
// no tokens are omitted.
func TokenizeHintByField(hint map[string]any) []FieldTokens {
	var out []FieldTokens
	emit := func(field string, value any) {
		if toks := Tokenize(valueText(value)); len(toks) > 0 {
			out = append(out, FieldTokens{Field: field, Tokens: toks})
		}
	}

	for _, field := range priorityFields {
		if v, ok := hint[field]; ok {
			emit(field, v)
		}
	}
	for _, field := range remainingFields(hint) {
		emit(field, hint[field])
	}
	return out
}

// ExtractHintText concatenates the stringified values of the priority
// fields, then every remaining non-system field as a fallback.
func ExtractHintText(hint map[string]any) string {
	var parts []string
	add := func(v any) {
		if s := valueText(v); s != "" {
			parts = append(parts, s)
		}
	}

	for _, field := range priorityFields {
		if v, ok := hint[field]; ok {
			add(v)
		}
	}
	for _, field := range remainingFields(hint) {
		add(hint[field])
	}
	return strings.Join(parts, " ")
}

// remainingFields lists hint fields that are neither priority nor system
// fields, sorted for determinism.
func remainingFields(hint map[string]any) []string {
	skip := make(map[string]bool, len(priorityFields))
	for _, f := range priorityFields {
		skip[f] = true
	}

	var fields []string
	for field := range hint {
		if !skip[field] && !systemFields[field] {
			fields = append(fields, field)
		}
	}
	sort.Strings(fields)
	return fields
}

// valueText stringifies a hint value. Strings pass through, lists stringify
// each element joined with spaces, and everything else (numbers, booleans,
// nil, nested maps) contributes no text.
func valueText(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case []string:
		return strings.Join(val, " ")
	case []any:
		parts := make([]string, 0, len(val))
		for _, item := range val {
			if s := valueText(item); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, " ")
	case fmt.Stringer:
		return val.String()
	default:
		return ""
	}
}

// splitWords normalizes text and returns surviving raw tokens: lowercased,
// camelCase boundaries split, underscores treated as spaces, stop-words and
// tokens shorter than two characters dropped, duplicates removed, original
// order preserved.
func splitWords(text string) []string {
	if text == "" {
		return nil
	}

	text = camelBoundary.ReplaceAllString(text, "$1 $2")
	text = strings.ToLower(text)
	text = nonWord.ReplaceAllString(text, " ")
	text = strings.ReplaceAll(text, "_", " ")

	var out []string
	seen := make(map[string]bool)
	for _, w := range strings.Fields(text) {
		w = strings.Trim(w, "-")
		if len(w) < 2 || stopwords[w] || seen[w] {
			continue
		}
		seen[w] = true
		out = append(out, w)
	}
	return out
}
