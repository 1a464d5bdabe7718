// Package keyword holds the text helpers shared by the planner, the workers
// and the memory store: tokenization, stop words, whole-word matching and
// term extraction.
package keyword

import (
	"strings"
	"unicode"
)

var stopWords = map[string]struct{}{}

func init() {
	for _, w := range strings.Fields(`a about above after again against all am an and any are as at be because been
		before being below between both but by can could did do does doing down during each few for from further had
		has have having he her here hers herself him himself his how i if in into is it its itself just me more most
		my myself no nor not now of off on once only or other our ours ourselves out over own same she should so some
		such than that the their theirs them themselves then there these they this those through to too under until
		up very was we were what when where which while who whom why will with would you your yours yourself
		yourselves s t don tell please`) {
		stopWords[w] = struct{}{}
	}
}

func IsStopWord(w string) bool {
	_, ok := stopWords[strings.ToLower(w)]
	return ok
}

// Tokenize lower-cases text and splits it on every rune that is not a
// letter or a digit.
func Tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// ContainsWord reports whether word occurs in text as a whole token.
// Multi-word phrases match as a consecutive token run.
func ContainsWord(text string, word string) bool {
	return containsTokens(Tokenize(text), Tokenize(word))
}

func ContainsAny(text string, words ...string) bool {
	tokens := Tokenize(text)
	for _, w := range words {
		if containsTokens(tokens, Tokenize(w)) {
			return true
		}
	}
	return false
}

func containsTokens(tokens []string, phrase []string) bool {
	if len(phrase) == 0 || len(phrase) > len(tokens) {
		return false
	}
	for i := 0; i+len(phrase) <= len(tokens); i++ {
		match := true
		for j, p := range phrase {
			if tokens[i+j] != p {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}

// Terms returns distinct non-stop-word tokens longer than two runes, in
// order of first appearance, capped at limit (no cap when limit <= 0).
func Terms(text string, limit int) []string {
	return collect(text, limit, func(tok string) bool {
		return len([]rune(tok)) > 2 && !IsStopWord(tok)
	})
}

// Keywords returns distinct alphabetic non-stop-word tokens longer than
// three runes, capped at limit.
func Keywords(text string, limit int) []string {
	return collect(text, limit, func(tok string) bool {
		if len([]rune(tok)) <= 3 || IsStopWord(tok) {
			return false
		}
		for _, r := range tok {
			if !unicode.IsLetter(r) {
				return false
			}
		}
		return true
	})
}

func collect(text string, limit int, keep func(string) bool) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, tok := range Tokenize(text) {
		if !keep(tok) {
			continue
		}
		if _, ok := seen[tok]; ok {
			continue
		}
		seen[tok] = struct{}{}
		out = append(out, tok)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out
}

// Stem strips plural suffixes so that "transformers" and "transformer"
// compare equal.
func Stem(word string) string {
	w := strings.ToLower(word)
	switch {
	case len(w) > 4 && strings.HasSuffix(w, "ies"):
		return w[:len(w)-3] + "y"
	case len(w) > 3 && strings.HasSuffix(w, "s") && !strings.HasSuffix(w, "ss"):
		return w[:len(w)-1]
	default:
		return w
	}
}

// Overlap reports whether a and b share at least one stemmed term.
func Overlap(a []string, b []string) bool {
	if len(a) == 0 || len(b) == 0 {
		return false
	}
	set := make(map[string]struct{}, len(a))
	for _, w := range a {
		set[Stem(w)] = struct{}{}
	}
	for _, w := range b {
		if _, ok := set[Stem(w)]; ok {
			return true
		}
	}
	return false
}
