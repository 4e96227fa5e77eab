package token

// stopwords is a fixed closed list of common function words excluded from
// tokenization. Derived from the usual English stop list; intentionally
// small and case-normalized.
var stopwords = map[string]bool{
	"the": true, "a": true, "an": true, "is": true, "are": true,
	"was": true, "were": true, "do": true, "does": true, "did": true,
	"have": true, "has": true, "had": true, "be": true, "been": true,
	"being": true, "will": true, "would": true, "could": true, "should": true,
	"may": true, "might": true, "can": true, "shall": true, "must": true,
	"not": true, "no": true, "and": true, "or": true, "but": true,
	"if": true, "then": true, "than": true, "so": true, "as": true,
	"at": true, "by": true, "for": true, "from": true, "in": true,
	"into": true, "of": true, "on": true, "to": true, "with": true,
	"about": true, "up": true, "out": true, "over": true, "under": true,
	"it": true, "its": true, "this": true, "that": true, "these": true,
	"those": true, "what": true, "which": true, "who": true, "whom": true,
	"how": true, "when": true, "where": true, "why": true, "there": true,
	"here": true, "you": true, "your": true, "i": true, "me": true,
	"my": true, "we": true, "our": true, "they": true, "them": true,
	"their": true, "he": true, "she": true, "her": true, "him": true,
	"his": true, "us": true, "also": true, "very": true, "just": true,
}

// IsStopword reports whether w is on the stop list.
func IsStopword(w string) bool {
	return stopwords[w]
}
