package lexicon

import "strings"

// Occurrences returns the byte offsets of every word-bounded,
// ASCII-case-insensitive occurrence of term in text.
func Occurrences(text, term string) []int {
	term = strings.TrimSpace(lowerASCII(term))
	if term == "" || text == "" {
		return nil
	}
	lower := lowerASCII(text)

	var out []int
	for off := 0; off < len(lower); {
		i := strings.Index(lower[off:], term)
		if i < 0 {
			break
		}
		start := off + i
		if bounded(lower, start, start+len(term)) {
			out = append(out, start)
		}
		off = start + 1
	}
	return out
}

// Window returns text[start-radius : end+radius] clamped to the text, along
// with the offset of the window start.
func Window(text string, start, end, radius int) (string, int) {
	lo := start - radius
	if lo < 0 {
		lo = 0
	}
	hi := end + radius
	if hi > len(text) {
		hi = len(text)
	}
	return text[lo:hi], lo
}

// Distance is the number of bytes between two spans, zero when they overlap.
func Distance(aStart, aEnd, bStart, bEnd int) int {
	switch {
	case bStart >= aEnd:
		return bStart - aEnd
	case aStart >= bEnd:
		return aStart - bEnd
	default:
		return 0
	}
}
