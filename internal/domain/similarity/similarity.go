// Package similarity provides the string-distance primitives used by entity
// resolution and duplicate detection: Levenshtein edit distance, Jaro-Winkler
// similarity, business-name normalization, and token-set (Jaccard)
// similarity. All functions are pure and deterministic.
package similarity

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
)

// businessSuffixes are dropped as whole words during normalization. They carry
// no identity: "ABC Construction LLC" and "ABC Construction" are the same
// vendor.
var businessSuffixes = map[string]struct{}{
	"inc":          {},
	"llc":          {},
	"corp":         {},
	"company":      {},
	"co":           {},
	"construction": {},
	"const":        {},
	"ltd":          {},
	"limited":      {},
}

// EditDistance returns the Levenshtein edit distance between a and b
// (insert, delete, substitute, unit cost each).
func EditDistance(a, b string) int {
	return levenshtein.ComputeDistance(a, b)
}

// EditRatio converts edit distance into a 0-1 similarity:
// (maxLen - distance) / maxLen over rune counts. Two empty strings are
// identical, so the ratio is 1.
func EditRatio(a, b string) float64 {
	maxLen := utf8.RuneCountInString(a)
	if n := utf8.RuneCountInString(b); n > maxLen {
		maxLen = n
	}
	if maxLen == 0 {
		return 1
	}
	return float64(maxLen-EditDistance(a, b)) / float64(maxLen)
}

// JaroWinkler returns the Jaro-Winkler similarity of a and b on a 0-1 scale:
// standard Jaro with a matching window of max(len)/2-1 and transposition
// counting, boosted by a common-prefix bonus capped at 4 runes with a 0.1
// scaling factor. Returns 0 if either string is empty and 1 for identical
// non-empty strings.
func JaroWinkler(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	if a == b {
		return 1
	}

	s1 := []rune(a)
	s2 := []rune(b)

	window := len(s1)
	if len(s2) > window {
		window = len(s2)
	}
	window = window/2 - 1
	if window < 0 {
		window = 0
	}

	matched1 := make([]bool, len(s1))
	matched2 := make([]bool, len(s2))

	matches := 0
	for i := range s1 {
		lo := i - window
		if lo < 0 {
			lo = 0
		}
		hi := i + window + 1
		if hi > len(s2) {
			hi = len(s2)
		}
		for j := lo; j < hi; j++ {
			if matched2[j] || s1[i] != s2[j] {
				continue
			}
			matched1[i] = true
			matched2[j] = true
			matches++
			break
		}
	}

	if matches == 0 {
		return 0
	}

	transpositions := 0
	j := 0
	for i := range s1 {
		if !matched1[i] {
			continue
		}
		for !matched2[j] {
			j++
		}
		if s1[i] != s2[j] {
			transpositions++
		}
		j++
	}

	m := float64(matches)
	jaro := (m/float64(len(s1)) + m/float64(len(s2)) + (m-float64(transpositions)/2)/m) / 3

	prefix := 0
	for i := 0; i < len(s1) && i < len(s2) && i < 4; i++ {
		if s1[i] != s2[i] {
			break
		}
		prefix++
	}

	return jaro + float64(prefix)*0.1*(1-jaro)
}

// NormalizeBusinessName lowercases, replaces punctuation with spaces, drops
// business suffix words (inc, llc, corp, ...), collapses whitespace, and
// trims. Normalization is idempotent.
func NormalizeBusinessName(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		} else {
			b.WriteRune(' ')
		}
	}

	fields := strings.Fields(b.String())
	kept := fields[:0]
	for _, f := range fields {
		if _, drop := businessSuffixes[f]; drop {
			continue
		}
		kept = append(kept, f)
	}
	return strings.Join(kept, " ")
}

// TokenSimilarity returns the Jaccard similarity of the normalized word sets
// of a and b. Tokens of length <= 1 are discarded; an empty union scores 0.
func TokenSimilarity(a, b string) float64 {
	setA := tokenSet(NormalizeBusinessName(a))
	setB := tokenSet(NormalizeBusinessName(b))

	union := len(setA)
	intersection := 0
	for tok := range setB {
		if _, ok := setA[tok]; ok {
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

func tokenSet(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, tok := range strings.Fields(s) {
		if utf8.RuneCountInString(tok) <= 1 {
			continue
		}
		set[tok] = struct{}{}
	}
	return set
}

// AlphaNumeric strips s down to its lowercase letters and digits. Used for
// prefix comparisons where spacing and punctuation are noise.
func AlphaNumeric(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
