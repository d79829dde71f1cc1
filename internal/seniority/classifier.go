// Package seniority maps job titles to a fixed seniority hierarchy and
// decision-maker flag.
package seniority

import (
	"math"
	"strings"

	"github.com/sells-group/exec-enrich/internal/lexicon"
	"github.com/sells-group/exec-enrich/internal/model"
)

// Classification methods.
const (
	MethodLexicon  = "lexicon"
	MethodOverlap  = "token_overlap"
	MethodContext  = "context"
	MethodDefault  = "default"
	MethodFallback = "fallback"
)

const (
	lexiconBase    = 0.6
	overlapWeight  = 0.8
	defaultBase    = 0.2
	fallbackScore  = 0.2
	keywordStep    = 0.1
	keywordCap     = 0.3
	proximityNear  = 0.2 // <= 50 chars
	proximityFar   = 0.1 // <= 100 chars
	contextRadius  = 100
	minOverlap     = 0.5
	defaultAuthLvl = 2
)

// Classifier assigns seniority from a title, or from context around a
// name when the title is unknown. Safe for concurrent use.
type Classifier struct {
	titles   *lexicon.Matcher
	keywords *lexicon.Matcher
	dm       *lexicon.Matcher
	phrases  []string
}

// New builds a Classifier over the built-in title lexicon.
func New() *Classifier {
	phrases := Phrases()
	return &Classifier{
		titles:   lexicon.New(phrases),
		keywords: lexicon.New(contextKeywords),
		dm:       lexicon.New(dmKeywords),
		phrases:  phrases,
	}
}

// Classify returns the seniority of title for name. When title is empty or
// the staff placeholder, the title is searched for in context near name.
func (c *Classifier) Classify(title, name, context string) model.Seniority {
	title = strings.TrimSpace(title)
	spans := nameSpans(context, name)

	var (
		out   model.Seniority
		score model.SeniorityScore
	)

	if title == "" || title == model.StaffMemberTitle {
		hit, dist, ok := c.fromContext(context, spans)
		if !ok {
			return model.Seniority{
				Title:      model.StaffMemberTitle,
				Tier:       model.Tier3,
				Authority:  defaultAuthLvl,
				Confidence: fallbackScore,
				Method:     MethodFallback,
				Breakdown:  model.SeniorityScore{Lexicon: fallbackScore},
			}
		}
		e := titles[hit.Phrase]
		out = model.Seniority{
			Title:     context[hit.Start:hit.End],
			Tier:      e.tier,
			Authority: e.authority,
			Method:    MethodContext,
		}
		out.IsDecisionMaker = c.decisionMaker(e, hit.Phrase)
		score.Lexicon = lexiconBase
		score.Proximity = proximity(dist)
	} else {
		out, score.Lexicon = c.fromTitle(title)
		if d, ok := c.titleDistance(context, title, spans); ok {
			score.Proximity = proximity(d)
		}
	}

	score.Context = c.keywordScore(context, spans)
	out.Breakdown = score
	out.Confidence = round3(model.Clamp01(score.Lexicon + score.Context + score.Proximity))
	return out
}

// fromTitle classifies a known title string.
func (c *Classifier) fromTitle(title string) (model.Seniority, float64) {
	if hit, ok := c.titles.Longest(title); ok {
		e := titles[hit.Phrase]
		return model.Seniority{
			Title:           title,
			Tier:            e.tier,
			Authority:       e.authority,
			IsDecisionMaker: c.decisionMaker(e, title),
			Method:          MethodLexicon,
		}, lexiconBase
	}

	if phrase, ok := c.bestOverlap(title); ok {
		e := titles[phrase]
		auth := int(math.Round(float64(e.authority) * overlapWeight))
		if auth < 1 {
			auth = 1
		}
		return model.Seniority{
			Title:           title,
			Tier:            e.tier,
			Authority:       auth,
			IsDecisionMaker: c.decisionMaker(e, title),
			Method:          MethodOverlap,
		}, lexiconBase * overlapWeight
	}

	return model.Seniority{
		Title:     title,
		Tier:      model.Tier3,
		Authority: defaultAuthLvl,
		Method:    MethodDefault,
	}, defaultBase
}

// bestOverlap finds the phrase sharing at least half its tokens with title.
// Ties prefer higher authority, then the lexically smaller phrase.
func (c *Classifier) bestOverlap(title string) (string, bool) {
	tt := tokenSet(title)
	if len(tt) == 0 {
		return "", false
	}
	best, bestRatio, found := "", 0.0, false
	for _, p := range c.phrases {
		pt := strings.Fields(p)
		hit := 0
		for _, w := range pt {
			if tt[w] {
				hit++
			}
		}
		ratio := float64(hit) / float64(len(pt))
		if ratio < minOverlap || hit == 0 {
			continue
		}
		switch {
		case !found, ratio > bestRatio,
			ratio == bestRatio && titles[p].authority > titles[best].authority:
			best, bestRatio, found = p, ratio, true
		}
	}
	return best, found
}

// fromContext finds the title phrase nearest to any name occurrence.
func (c *Classifier) fromContext(context string, spans [][2]int) (lexicon.Hit, int, bool) {
	var (
		best     lexicon.Hit
		bestDist = math.MaxInt
		found    bool
	)
	hits := c.titles.Find(context)
	for _, sp := range spans {
		for _, h := range hits {
			d := lexicon.Distance(sp[0], sp[1], h.Start, h.End)
			if d > contextRadius {
				continue
			}
			if !found || d < bestDist || (d == bestDist && len(h.Phrase) > len(best.Phrase)) {
				best, bestDist, found = h, d, true
			}
		}
	}
	return best, bestDist, found
}

// titleDistance is the distance from a name occurrence to the nearest
// occurrence of title's lexicon phrase in context.
func (c *Classifier) titleDistance(context, title string, spans [][2]int) (int, bool) {
	if len(spans) == 0 {
		return 0, false
	}
	needle := title
	if hit, ok := c.titles.Longest(title); ok {
		needle = hit.Phrase
	}
	best, found := math.MaxInt, false
	for _, at := range lexicon.Occurrences(context, needle) {
		for _, sp := range spans {
			if d := lexicon.Distance(sp[0], sp[1], at, at+len(needle)); d < best {
				best, found = d, true
			}
		}
	}
	return best, found
}

func (c *Classifier) keywordScore(context string, spans [][2]int) float64 {
	seen := make(map[string]bool)
	for _, sp := range spans {
		w, _ := lexicon.Window(context, sp[0], sp[1], contextRadius)
		for _, k := range c.keywords.Unique(w) {
			seen[k] = true
		}
	}
	return math.Min(float64(len(seen))*keywordStep, keywordCap)
}

func (c *Classifier) decisionMaker(e entry, title string) bool {
	if e.tier == model.Tier1 || e.tier == model.Tier2 {
		return e.dm
	}
	return e.dm || c.dm.Contains(title)
}

func nameSpans(context, name string) [][2]int {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil
	}
	var out [][2]int
	for _, at := range lexicon.Occurrences(context, name) {
		out = append(out, [2]int{at, at + len(name)})
	}
	return out
}

func proximity(d int) float64 {
	switch {
	case d <= 50:
		return proximityNear
	case d <= 100:
		return proximityFar
	default:
		return 0
	}
}

func tokenSet(s string) map[string]bool {
	set := make(map[string]bool)
	for _, w := range strings.Fields(strings.ToLower(s)) {
		w = strings.Trim(w, ".,;:()&/")
		if w != "" {
			set[w] = true
		}
	}
	return set
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
