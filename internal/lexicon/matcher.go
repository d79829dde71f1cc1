// Package lexicon implements word-bounded multi-phrase matching over
// curated term lists.
package lexicon

import (
	"sort"
	"strings"

	ahocorasick "github.com/cloudflare/ahocorasick"
)

// Hit is one word-bounded occurrence of a phrase in a text. Start and End
// are byte offsets into the original text.
type Hit struct {
	Phrase string
	Index  int
	Start  int
	End    int
}

// Matcher finds dictionary phrases in text in a single automaton pass,
// then confirms word boundaries at each candidate offset. It is safe for
// concurrent use.
type Matcher struct {
	phrases []string
	set     map[string]int
	ac      *ahocorasick.Matcher
}

// New builds a Matcher over phrases. Phrases are compared case-insensitively;
// empty and duplicate phrases are dropped.
func New(phrases []string) *Matcher {
	m := &Matcher{set: make(map[string]int, len(phrases))}
	for _, p := range phrases {
		p = strings.TrimSpace(lowerASCII(p))
		if p == "" {
			continue
		}
		if _, dup := m.set[p]; dup {
			continue
		}
		m.set[p] = len(m.phrases)
		m.phrases = append(m.phrases, p)
	}
	if len(m.phrases) > 0 {
		m.ac = ahocorasick.NewStringMatcher(m.phrases)
	}
	return m
}

// Len returns the number of distinct phrases.
func (m *Matcher) Len() int { return len(m.phrases) }

// Phrase returns the phrase at dictionary index i.
func (m *Matcher) Phrase(i int) string { return m.phrases[i] }

// Has reports whether token is exactly a dictionary phrase.
func (m *Matcher) Has(token string) bool {
	_, ok := m.set[strings.TrimSpace(lowerASCII(token))]
	return ok
}

// Find returns every word-bounded occurrence of any phrase in text,
// ordered by start offset then longest first.
func (m *Matcher) Find(text string) []Hit {
	if m.ac == nil || text == "" {
		return nil
	}
	lower := lowerASCII(text)

	seen := make(map[int]bool)
	var hits []Hit
	for _, idx := range m.ac.MatchThreadSafe([]byte(lower)) {
		if idx < 0 || idx >= len(m.phrases) || seen[idx] {
			continue
		}
		seen[idx] = true
		phrase := m.phrases[idx]
		for off := 0; off < len(lower); {
			i := strings.Index(lower[off:], phrase)
			if i < 0 {
				break
			}
			start := off + i
			end := start + len(phrase)
			if bounded(lower, start, end) {
				hits = append(hits, Hit{Phrase: phrase, Index: idx, Start: start, End: end})
			}
			off = start + 1
		}
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Start != hits[j].Start {
			return hits[i].Start < hits[j].Start
		}
		return len(hits[i].Phrase) > len(hits[j].Phrase)
	})
	return hits
}

// Contains reports whether text has at least one word-bounded hit.
func (m *Matcher) Contains(text string) bool {
	return len(m.Find(text)) > 0
}

// Longest returns the longest phrase hit in text. Ties go to the earliest.
func (m *Matcher) Longest(text string) (Hit, bool) {
	var best Hit
	found := false
	for _, h := range m.Find(text) {
		if !found || len(h.Phrase) > len(best.Phrase) {
			best = h
			found = true
		}
	}
	return best, found
}

// Unique returns the distinct phrases hit in text in first-seen order.
func (m *Matcher) Unique(text string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, h := range m.Find(text) {
		if !seen[h.Phrase] {
			seen[h.Phrase] = true
			out = append(out, h.Phrase)
		}
	}
	return out
}

// bounded reports whether [start,end) in s sits on word boundaries.
func bounded(s string, start, end int) bool {
	if start > 0 && isWordByte(s[start-1]) {
		return false
	}
	if end < len(s) && isWordByte(s[end]) {
		return false
	}
	return true
}

func isWordByte(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= '0' && b <= '9' || b >= 0x80
}

// lowerASCII lowercases ASCII letters only, keeping byte offsets stable.
func lowerASCII(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}
