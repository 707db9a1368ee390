// Package matching scores supplier offers against catalog products.
// Everything in here is pure: no I/O, no persistence, no shared state.
package matching

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Package-level compiled regex pattern for performance
var nonAlnumRegex = regexp.MustCompile(`[^\p{L}\p{N}]+`)

// unitSuffixes are stripped from the end of every token.
var unitSuffixes = []string{"gb", "tb", "ml", "l", "g", "kg", "mm", "cm", "in", "inch", `"`, "'"}

// Tokenize turns free text into the normalized token sequence used for
// matching. Order and duplicates are preserved; empty input yields nil.
func Tokenize(s string) []string {
	// cases.Caser is stateful, so one per call.
	norm := cases.Lower(language.Und).String(s)
	norm = strings.ReplaceAll(norm, "&", " and ")
	norm = nonAlnumRegex.ReplaceAllString(norm, " ")

	var tokens []string
	for _, word := range strings.Fields(norm) {
		if t := StripUnitSuffix(word); t != "" {
			tokens = append(tokens, t)
		}
	}
	return tokens
}

// StripUnitSuffix removes trailing unit suffixes until none applies.
// Each pass cuts at the leftmost position whose remainder is a unit suffix,
// so "16kg" becomes "16" and "inch" becomes "". The result is a fixed point:
// StripUnitSuffix(StripUnitSuffix(t)) == StripUnitSuffix(t).
func StripUnitSuffix(token string) string {
	for {
		cut := suffixStart(token)
		if cut < 0 {
			return token
		}
		token = token[:cut]
	}
}

func suffixStart(token string) int {
	for i := range token {
		rest := token[i:]
		for _, suffix := range unitSuffixes {
			if rest == suffix {
				return i
			}
		}
	}
	return -1
}

// JoinTokens normalizes the non-empty parts as one text.
func JoinTokens(parts ...string) []string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			kept = append(kept, p)
		}
	}
	return Tokenize(strings.Join(kept, " "))
}

// Jaccard returns |A∩B| / |A∪B| over the deduplicated token sets.
// Two empty sets have similarity 0.
func Jaccard(a, b []string) float64 {
	setA := make(map[string]bool, len(a))
	for _, t := range a {
		setA[t] = true
	}
	setB := make(map[string]bool, len(b))
	for _, t := range b {
		setB[t] = true
	}

	union := len(setA)
	intersection := 0
	for t := range setB {
		if setA[t] {
			intersection++
		} else {
			union++
		}
	}
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}
