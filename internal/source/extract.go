package source

import (
	"regexp"
	"strings"

	"github.com/sells-group/exec-enrich/internal/fuzzy"
	"github.com/sells-group/exec-enrich/internal/lexicon"
	"github.com/sells-group/exec-enrich/internal/model"
	"github.com/sells-group/exec-enrich/internal/seniority"
)

// nameWord is a capitalised word ending in lower case, so "McDonald" and
// "O'Brien" match but shouted headings do not.
const nameWord = `\p{Lu}[\p{L}'’\-]*\p{Ll}`

// nameRe matches runs of two to four name words, allowing initials.
var nameRe = regexp.MustCompile(nameWord + `(?:[ \t]+(?:\p{Lu}\.|` + nameWord + `)){1,3}`)

// nonNameWords end or break a capitalised run; they never appear in a
// person's name on a company page.
var nonNameWords = map[string]bool{
	"ltd": true, "limited": true, "plc": true, "llp": true, "group": true,
	"our": true, "the": true, "team": true, "meet": true, "us": true,
	"about": true, "contact": true, "read": true, "more": true, "home": true,
	"services": true, "email": true, "call": true, "phone": true, "view": true,
	"profile": true, "linkedin": true, "and": true, "of": true, "at": true,
}

const snippetRadius = 160

// Extractor pulls name and title pairs out of page text. A candidate needs
// a title phrase on its own line or on an adjacent line that has no other
// name.
type Extractor struct {
	titles *lexicon.Matcher
}

// NewExtractor builds an Extractor over the seniority title lexicon.
func NewExtractor() *Extractor {
	return &Extractor{titles: lexicon.New(seniority.Phrases())}
}

type lineNames struct {
	names  []span
	titles []lexicon.Hit
}

type span struct {
	text       string
	start, end int
}

// Extract returns candidates found in text, one per distinct name, in
// first-seen order.
func (e *Extractor) Extract(text, sourceID string, confidence float64) []model.CandidateRecord {
	lines := strings.Split(text, "\n")
	parsed := make([]lineNames, len(lines))
	for i, l := range lines {
		parsed[i] = e.parse(l)
	}

	var out []model.CandidateRecord
	seen := make(map[string]bool)
	for i, pl := range parsed {
		for _, n := range pl.names {
			title, ok := e.titleFor(lines, parsed, i, n)
			if !ok {
				continue
			}
			key := fuzzy.NormalizePerson(n.text)
			if seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, model.CandidateRecord{
				Name:                 n.text,
				Title:                title,
				SourceID:             sourceID,
				ExtractionConfidence: confidence,
				ContextSnippet:       snippet(lines, i),
			})
		}
	}
	return out
}

func (e *Extractor) parse(line string) lineNames {
	pl := lineNames{titles: e.titles.Find(line)}
	for _, loc := range nameRe.FindAllStringIndex(line, -1) {
		if n, ok := e.trim(line, loc[0], loc[1], pl.titles); ok {
			pl.names = append(pl.names, n)
		}
	}
	return pl
}

// trim drops title phrases and non-name words around a capitalised run
// and keeps it when at least two words remain.
func (e *Extractor) trim(line string, start, end int, titles []lexicon.Hit) (span, bool) {
	for _, h := range titles {
		if h.End <= start {
			continue
		}
		if h.Start <= start {
			start = h.End
			continue
		}
		if h.Start < end {
			end = h.Start
		}
		break
	}
	if start >= end {
		return span{}, false
	}

	words := strings.Fields(line[start:end])
	for len(words) > 0 && nonName(words[0]) {
		words = words[1:]
	}
	kept := 0
	for _, w := range words {
		if nonName(w) {
			break
		}
		kept++
	}
	if kept < 2 {
		return span{}, false
	}
	text := strings.Join(words[:kept], " ")
	at := start + strings.Index(line[start:end], words[0])
	return span{text: text, start: at, end: at + len(text)}, true
}

func nonName(w string) bool {
	return nonNameWords[strings.ToLower(strings.Trim(w, ".,:;"))]
}

// titleFor picks the nearest title phrase in the name's line, else in the
// next or previous line when that line names nobody.
func (e *Extractor) titleFor(lines []string, parsed []lineNames, i int, n span) (string, bool) {
	if h, ok := nearest(parsed[i].titles, n, parsed[i].names); ok {
		return titleText(lines[i], h), true
	}
	for _, j := range []int{i + 1, i - 1} {
		if j < 0 || j >= len(parsed) || len(parsed[j].names) > 0 || len(parsed[j].titles) == 0 {
			continue
		}
		return titleText(lines[j], longest(parsed[j].titles)), true
	}
	return "", false
}

// nearest returns the closest title hit to n that no other name on the
// line sits closer to.
func nearest(hits []lexicon.Hit, n span, names []span) (lexicon.Hit, bool) {
	var best lexicon.Hit
	bestDist := -1
	for _, h := range hits {
		d := lexicon.Distance(n.start, n.end, h.Start, h.End)
		owned := true
		for _, o := range names {
			if o != n && lexicon.Distance(o.start, o.end, h.Start, h.End) < d {
				owned = false
				break
			}
		}
		if !owned {
			continue
		}
		if bestDist < 0 || d < bestDist || (d == bestDist && len(h.Phrase) > len(best.Phrase)) {
			best, bestDist = h, d
		}
	}
	return best, bestDist >= 0
}

func longest(hits []lexicon.Hit) lexicon.Hit {
	best := hits[0]
	for _, h := range hits[1:] {
		if len(h.Phrase) > len(best.Phrase) {
			best = h
		}
	}
	return best
}

// titleText returns the hit in its original casing, capitalised when the
// page wrote it in lower case. Short single words are taken as acronyms.
func titleText(line string, h lexicon.Hit) string {
	t := line[h.Start:h.End]
	if t != strings.ToLower(t) {
		return t
	}
	words := strings.Fields(t)
	if len(words) == 1 && len(t) <= 3 {
		return strings.ToUpper(t)
	}
	for i, w := range words {
		if w == "of" || w == "and" || w == "the" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// snippet returns the line with neighbours, capped around the line.
func snippet(lines []string, i int) string {
	from, to := i-1, i+2
	if from < 0 {
		from = 0
	}
	if to > len(lines) {
		to = len(lines)
	}
	s := strings.Join(lines[from:to], "\n")
	if len(s) > 2*snippetRadius {
		s = strings.ToValidUTF8(s[:2*snippetRadius], "")
	}
	return s
}
