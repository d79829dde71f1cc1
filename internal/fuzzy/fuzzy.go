// Package fuzzy provides person-name normalization and similarity scoring.
package fuzzy

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/agext/levenshtein"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	multiSpaceRe = regexp.MustCompile(`\s{2,}`)

	punctReplacer = strings.NewReplacer(
		",", " ",
		".", " ",
		"'", "",
		"’", "",
		"\"", "",
		"-", " ",
		"(", " ",
		")", " ",
	)
)

// fold strips combining marks so "Zoë" and "Zoe" compare equal.
func fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// NormalizePerson standardizes a person name for matching by:
//  1. Folding diacritics
//  2. Lowercasing
//  3. Stripping punctuation (apostrophes join, hyphens split)
//  4. Collapsing whitespace
func NormalizePerson(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	name = strings.ToLower(fold(name))
	name = punctReplacer.Replace(name)
	name = multiSpaceRe.ReplaceAllString(name, " ")
	return strings.TrimSpace(name)
}

// Tokens returns the normalized tokens of a name.
func Tokens(name string) []string {
	return strings.Fields(NormalizePerson(name))
}

func tokenSet(name string) map[string]bool {
	toks := Tokens(name)
	set := make(map[string]bool, len(toks))
	for _, t := range toks {
		set[t] = true
	}
	return set
}

// TokenOverlap computes Jaccard similarity on normalized token sets.
func TokenOverlap(a, b string) float64 {
	setA, setB := tokenSet(a), tokenSet(b)
	if len(setA) == 0 || len(setB) == 0 {
		return 0
	}

	intersection := 0
	for w := range setA {
		if setB[w] {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	return float64(intersection) / float64(union)
}

// ContainmentOverlap is the share of the shorter name's tokens that appear
// in the longer one.
func ContainmentOverlap(a, b string) float64 {
	setA, setB := tokenSet(a), tokenSet(b)
	if len(setA) == 0 || len(setB) == 0 {
		return 0
	}
	if len(setA) > len(setB) {
		setA, setB = setB, setA
	}
	hit := 0
	for w := range setA {
		if setB[w] {
			hit++
		}
	}
	return float64(hit) / float64(len(setA))
}

// EditRatio returns 1 - levenshtein(a, b)/max(len) over normalized names.
func EditRatio(a, b string) float64 {
	na, nb := NormalizePerson(a), NormalizePerson(b)
	if na == "" || nb == "" {
		return 0
	}
	if na == nb {
		return 1
	}
	return levenshtein.Similarity(na, nb, nil)
}

// Similarity is the identity score used for deduplication: the larger of
// token overlap and edit ratio.
func Similarity(a, b string) float64 {
	tok := TokenOverlap(a, b)
	edit := EditRatio(a, b)
	if edit > tok {
		return edit
	}
	return tok
}

// Same reports whether two names are at least threshold similar.
func Same(a, b string, threshold float64) bool {
	return Similarity(a, b) >= threshold
}
