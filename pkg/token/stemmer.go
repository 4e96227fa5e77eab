package token

import "strings"

// minStemLen is the shortest stem any rule is allowed to produce. Rules
// that would shrink a token below this length are skipped.
const minStemLen = 4

// suffixRule maps a suffix to its replacement. Rules are tried in order,
// longest suffix first, and the first applicable rule wins for that pass.
type suffixRule struct {
	suffix  string
	replace string
}

// suffixRules is the ordered stemming table. Two passes over this table
// converge compound suffixes ("carefulness" -> "careful" -> "care"). This
// is a lightweight suffix stripper, not a full Porter stemmer: good enough
// to make "observed", "observing", and "observation" collide.
var suffixRules = []suffixRule{
	// 7+ characters
	{"ization", ""},
	{"ational", ""},
	{"ibility", "ible"},
	{"ability", "able"},
	{"iveness", "ive"},
	{"ousness", "ous"},
	{"fulness", "ful"},
	{"ically", "ic"},
	{"ations", ""},
	{"encies", "ence"},
	{"ancies", "ance"},
	{"ements", ""},
	{"nesses", "ness"},
	// 5 characters
	{"ation", ""},
	{"ement", ""},
	{"ities", "ity"},
	{"iness", "y"},
	{"ingly", ""},
	{"ively", "ive"},
	{"ances", "ance"},
	{"ences", "ence"},
	{"istic", "ist"},
	{"alism", "al"},
	{"ality", "al"},
	{"arily", "ary"},
	{"fully", "ful"},
	{"ments", "ment"},
	// 4 characters
	{"ings", ""},
	{"ness", ""},
	{"ions", "ion"},
	{"ance", ""},
	{"ence", ""},
	{"able", ""},
	{"ible", ""},
	{"ally", "al"},
	{"ized", "ize"},
	{"izes", "ize"},
	{"izer", "ize"},
	{"ator", ""},
	{"ical", "ic"},
	{"ment", ""},
	{"less", ""},
	{"ship", ""},
	{"hood", ""},
	{"iest", "y"},
	// 3 characters
	{"ies", "y"},
	{"ied", "y"},
	{"ing", ""},
	{"ely", "e"},
	{"ous", ""},
	{"ive", ""},
	{"ize", ""},
	{"ate", ""},
	{"ful", ""},
	{"est", ""},
	{"ity", ""},
	{"ers", ""},
	{"ial", ""},
	{"ism", ""},
	{"ist", ""},
	// 2 characters and shorter
	{"ly", ""},
	{"ed", ""},
	{"er", ""},
	{"es", ""},
	{"al", ""},
	{"s", ""},
}

// Stem reduces a token to its stem by ordered suffix stripping. The rule
// table is applied twice so compound suffixes converge; a rule is skipped
// whenever it would shrink the token below minStemLen.
func Stem(tok string) string {
	return stemOnce(stemOnce(tok))
}

func stemOnce(tok string) string {
	for _, rule := range suffixRules {
		if !strings.HasSuffix(tok, rule.suffix) {
			continue
		}
		candidate := tok[:len(tok)-len(rule.suffix)] + rule.replace
		if len(candidate) < minStemLen {
			continue
		}
		return candidate
	}
	return tok
}
