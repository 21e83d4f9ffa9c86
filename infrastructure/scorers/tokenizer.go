package scorers

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"

	"github.com/hireo/scoring-engine/internal/ports"
)

// foldCaser is a package-level Unicode case folder.
// This avoids creating a new caser for each tokenization call.
var foldCaser = cases.Fold()

// wordPattern matches word tokens: a letter or digit followed by letters,
// digits, and the joining characters common in skill names, so tokens
// like "node.js", "ci/cd" halves, and "c++" survive tokenization intact.
var wordPattern = regexp.MustCompile(`[\p{L}\p{N}][\p{L}\p{N}'+#\-.]*`)

// RegexTokenizer is the built-in ports.Tokenizer. It case-folds the
// input and extracts word tokens with a single linear-time regular
// expression. It carries no state and is safe for concurrent use.
type RegexTokenizer struct{}

var _ ports.Tokenizer = RegexTokenizer{}

// NewRegexTokenizer returns the default tokenizer used by every scorer
// unless the caller injects a replacement.
func NewRegexTokenizer() RegexTokenizer { return RegexTokenizer{} }

// Tokenize implements ports.Tokenizer. Empty input yields nil.
// Trailing joiner characters are stripped so a sentence-final "AWS."
// yields the same token as "AWS", while interior ones keep "node.js"
// and "c++" intact.
func (RegexTokenizer) Tokenize(text string) []string {
	if text == "" {
		return nil
	}
	tokens := wordPattern.FindAllString(foldCaser.String(text), -1)
	for i, tok := range tokens {
		tokens[i] = strings.TrimRight(tok, ".'-")
	}
	return tokens
}

// tokenSet builds a membership set from a token slice.
func tokenSet(tokens []string) map[string]struct{} {
	set := make(map[string]struct{}, len(tokens))
	for _, tok := range tokens {
		set[tok] = struct{}{}
	}
	return set
}

// fold lower-cases text with full Unicode case folding, the shared
// normalization for every case-insensitive comparison in this package.
func fold(s string) string { return foldCaser.String(s) }

// containsFold reports whether haystack (already folded) contains the
// needle after folding it.
func containsFold(foldedHaystack, needle string) bool {
	return strings.Contains(foldedHaystack, fold(needle))
}
