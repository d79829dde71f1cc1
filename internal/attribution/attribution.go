// Package attribution links page-level contact details to the specific
// named people they most likely belong to.
package attribution

import (
	"regexp"
	"sort"
	"strings"

	"github.com/sells-group/exec-enrich/internal/contact"
	"github.com/sells-group/exec-enrich/internal/fuzzy"
	"github.com/sells-group/exec-enrich/internal/lexicon"
	"github.com/sells-group/exec-enrich/internal/model"
)

// DefaultMinConfidence drops attributions scoring below it.
const DefaultMinConfidence = 0.3

// Window is the search radius around each name occurrence.
const Window = 200

const (
	proximityNear = 0.50 // < 50 chars
	proximityMid  = 0.35 // < 100 chars
	proximityFar  = 0.20 // < 200 chars
	proximityEdge = 0.10

	separatorBonus = 0.20
	signatureBonus = 0.15
	handleBonus    = 0.20
	keywordBonus   = 0.10
)

// Attribution methods, named after the strongest contributing rule.
const (
	MethodProximity = "proximity"
	MethodSeparator = "separator"
	MethodSignature = "signature"
	MethodHandle    = "name_in_handle"
	MethodKeyword   = "contact_keyword"
)

var (
	// name: contact | name, contact | name - contact | name (t) contact
	afterSepRe = regexp.MustCompile(`(?i)^\s*[:,\-–|]\s*(?:(?:e-?mail|tel|telephone|phone|mobile|mob|t|m|e)\s*[:.]?\s*)?$|^\s*(?:e-?mail|tel|telephone|phone|mobile|mob)\s*[:.]\s*$`)

	// contact - name | contact, name
	beforeSepRe = regexp.MustCompile(`^\s*[\-–|,]\s*$`)

	signatureTerms = []string{"regards", "kind regards", "best regards", "warm regards", "sincerely", "yours sincerely", "yours faithfully", "best wishes", "many thanks", "thanks", "cheers"}
	keywordTerms   = []string{"contact", "contact us", "email", "e-mail", "tel", "telephone", "phone", "call", "mobile", "mob", "direct line", "direct dial", "reach", "get in touch"}
)

// RankedName is a candidate name with its validation confidence, used to
// break attribution ties.
type RankedName struct {
	Name       string
	Confidence float64
}

// ScoreBreakdown holds the per-rule contributions to an attribution score.
type ScoreBreakdown struct {
	Proximity float64 `json:"proximity"`
	Separator float64 `json:"separator"`
	Signature float64 `json:"signature"`
	Handle    float64 `json:"name_in_handle"`
	Keyword   float64 `json:"contact_keyword"`
}

// Total returns the clamped sum of all rules.
func (b ScoreBreakdown) Total() float64 {
	return model.Clamp01(b.Proximity + b.Separator + b.Signature + b.Handle + b.Keyword)
}

// Method names the strongest rule. Ties prefer the more specific rule.
func (b ScoreBreakdown) Method() string {
	best, method := b.Proximity, MethodProximity
	for _, c := range []struct {
		v float64
		m string
	}{
		{b.Keyword, MethodKeyword},
		{b.Signature, MethodSignature},
		{b.Handle, MethodHandle},
		{b.Separator, MethodSeparator},
	} {
		if c.v > 0 && c.v >= best {
			best, method = c.v, c.m
		}
	}
	return method
}

// Attribution is one contact linked to one name.
type Attribution struct {
	Kind       contact.Kind   `json:"kind"`
	Value      string         `json:"value"`
	Confidence float64        `json:"confidence"`
	Method     string         `json:"method"`
	Distance   int            `json:"distance"`
	Breakdown  ScoreBreakdown `json:"breakdown"`
}

// NameContacts holds the best contact of each kind for one name.
type NameContacts struct {
	Name     string       `json:"name"`
	Email    *Attribution `json:"email,omitempty"`
	Phone    *Attribution `json:"phone,omitempty"`
	LinkedIn *Attribution `json:"linkedin,omitempty"`
}

// Confidence returns the highest confidence across kept contacts.
func (n NameContacts) Confidence() float64 {
	c := 0.0
	for _, a := range []*Attribution{n.Email, n.Phone, n.LinkedIn} {
		if a != nil && a.Confidence > c {
			c = a.Confidence
		}
	}
	return c
}

// Method returns the method of the most confident kept contact.
func (n NameContacts) Method() string {
	var best *Attribution
	for _, a := range []*Attribution{n.Email, n.Phone, n.LinkedIn} {
		if a != nil && (best == nil || a.Confidence > best.Confidence) {
			best = a
		}
	}
	if best == nil {
		return ""
	}
	return best.Method
}

// Result is the outcome of attributing one piece of content.
type Result struct {
	PerName      map[string]NameContacts `json:"per_name"`
	Unattributed model.Unattributed      `json:"unattributed"`
}

// Option configures an Engine.
type Option func(*Engine)

// WithMinConfidence overrides the minimum kept attribution score.
func WithMinConfidence(c float64) Option {
	return func(e *Engine) {
		if c >= 0 {
			e.minConfidence = c
		}
	}
}

// Engine attributes contacts to names. It is stateless and safe for
// concurrent use.
type Engine struct {
	minConfidence float64
	signatures    *lexicon.Matcher
	keywords      *lexicon.Matcher
}

// New creates an Engine.
func New(opts ...Option) *Engine {
	e := &Engine{
		minConfidence: DefaultMinConfidence,
		signatures:    lexicon.New(signatureTerms),
		keywords:      lexicon.New(keywordTerms),
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Attribute links contacts in content to names, treating every name as
// equally confident.
func (e *Engine) Attribute(content string, names []string) Result {
	ranked := make([]RankedName, len(names))
	for i, n := range names {
		ranked[i] = RankedName{Name: n}
	}
	return e.AttributeRanked(content, ranked)
}

type contactKey struct {
	kind  contact.Kind
	value string
}

type ownedContact struct {
	key   contactKey
	claim claim
}

type claim struct {
	name     RankedName
	score    ScoreBreakdown
	distance int
}

func (c claim) total() float64 { return c.score.Total() }

// beats orders claims on one contact: higher score, then higher name
// confidence, then lexical name order.
func (c claim) beats(o claim) bool {
	if c.total() != o.total() {
		return c.total() > o.total()
	}
	if c.name.Confidence != o.name.Confidence {
		return c.name.Confidence > o.name.Confidence
	}
	return strings.ToLower(c.name.Name) < strings.ToLower(o.name.Name)
}

// AttributeRanked links contacts in content to names. Each contact has at
// most one owner; ties go to the higher-confidence name, then the
// lexically smaller name.
func (e *Engine) AttributeRanked(content string, names []RankedName) Result {
	res := Result{PerName: make(map[string]NameContacts)}
	mentions := contact.Extract(content)
	if len(mentions) == 0 {
		return res
	}

	// first appearance order for stable unattributed output
	var order []contactKey
	seen := make(map[contactKey]bool)
	for _, m := range mentions {
		if m.Value == "" {
			continue
		}
		k := contactKey{m.Kind, m.Value}
		if !seen[k] {
			seen[k] = true
			order = append(order, k)
		}
	}

	// best claim per (contact, name)
	best := make(map[contactKey]map[string]claim)
	for _, rn := range dedupeNames(names) {
		for _, at := range lexicon.Occurrences(content, rn.Name) {
			end := at + len(rn.Name)
			win, _ := lexicon.Window(content, at, end, Window)
			hasKeyword := e.keywords.Contains(win)
			before, _ := lexicon.Window(content, at, at, Window)
			hasSignature := e.signatures.Contains(before)

			for _, m := range mentions {
				if m.Value == "" {
					continue
				}
				d := lexicon.Distance(at, end, m.Start, m.End)
				if d > Window {
					continue
				}
				sb := ScoreBreakdown{Proximity: proximityScore(d)}
				if separated(content, at, end, m) {
					sb.Separator = separatorBonus
				}
				if m.Kind == contact.KindEmail && hasSignature {
					sb.Signature = signatureBonus
				}
				if nameInHandle(rn.Name, m) {
					sb.Handle = handleBonus
				}
				if hasKeyword {
					sb.Keyword = keywordBonus
				}

				k := contactKey{m.Kind, m.Value}
				c := claim{name: rn, score: sb, distance: d}
				if best[k] == nil {
					best[k] = make(map[string]claim)
				}
				if prev, ok := best[k][rn.Name]; !ok || c.total() > prev.total() {
					best[k][rn.Name] = c
				}
			}
		}
	}

	// single owner per contact
	owned := make(map[string][]ownedContact)
	for _, k := range order {
		var winner claim
		found := false
		for _, c := range best[k] {
			if !found || c.beats(winner) {
				winner, found = c, true
			}
		}
		if !found || winner.total() < e.minConfidence {
			continue
		}
		owned[winner.name.Name] = append(owned[winner.name.Name], ownedContact{key: k, claim: winner})
	}

	// best contact of each kind per owner
	kept := make(map[contactKey]bool)
	for name, list := range owned {
		nc := NameContacts{Name: name}
		for _, o := range list {
			a := &Attribution{
				Kind:       o.key.kind,
				Value:      o.key.value,
				Confidence: round3(o.claim.total()),
				Method:     o.claim.score.Method(),
				Distance:   o.claim.distance,
				Breakdown:  o.claim.score,
			}
			slot := nc.slot(o.key.kind)
			if *slot == nil || a.Confidence > (*slot).Confidence {
				*slot = a
			}
		}
		for _, a := range []*Attribution{nc.Email, nc.Phone, nc.LinkedIn} {
			if a != nil {
				kept[contactKey{a.Kind, a.Value}] = true
			}
		}
		res.PerName[name] = nc
	}

	for _, k := range order {
		if kept[k] {
			continue
		}
		switch k.kind {
		case contact.KindEmail:
			res.Unattributed.Emails = append(res.Unattributed.Emails, k.value)
		case contact.KindPhone:
			res.Unattributed.Phones = append(res.Unattributed.Phones, k.value)
		case contact.KindLinkedIn:
			res.Unattributed.LinkedIn = append(res.Unattributed.LinkedIn, k.value)
		}
	}
	return res
}

func (n *NameContacts) slot(k contact.Kind) **Attribution {
	switch k {
	case contact.KindEmail:
		return &n.Email
	case contact.KindPhone:
		return &n.Phone
	default:
		return &n.LinkedIn
	}
}

func dedupeNames(names []RankedName) []RankedName {
	out := make([]RankedName, 0, len(names))
	idx := make(map[string]int)
	for _, n := range names {
		n.Name = strings.TrimSpace(n.Name)
		if n.Name == "" {
			continue
		}
		if i, ok := idx[n.Name]; ok {
			if n.Confidence > out[i].Confidence {
				out[i].Confidence = n.Confidence
			}
			continue
		}
		idx[n.Name] = len(out)
		out = append(out, n)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func proximityScore(d int) float64 {
	switch {
	case d < 50:
		return proximityNear
	case d < 100:
		return proximityMid
	case d < 200:
		return proximityFar
	default:
		return proximityEdge
	}
}

// separated reports whether only a direct separator sits between the name
// span and the contact.
func separated(content string, start, end int, m contact.Mention) bool {
	switch {
	case m.Start >= end:
		return afterSepRe.MatchString(content[end:m.Start])
	case m.End <= start:
		return beforeSepRe.MatchString(content[m.End:start])
	default:
		return false
	}
}

// nameInHandle reports whether an email local part or LinkedIn slug carries
// the person's name.
func nameInHandle(name string, m contact.Mention) bool {
	var handle string
	switch m.Kind {
	case contact.KindEmail:
		handle = contact.EmailLocalPart(m.Value)
	case contact.KindLinkedIn:
		handle = contact.LinkedInSlug(m.Value)
	default:
		return false
	}
	if handle == "" {
		return false
	}
	toks := fuzzy.Tokens(name)
	for _, t := range toks {
		if len(t) >= 3 && strings.Contains(handle, t) {
			return true
		}
	}
	// initial + surname, e.g. jsmith
	if len(toks) >= 2 {
		last := toks[len(toks)-1]
		if len(last) >= 2 && strings.Contains(handle, toks[0][:1]+last) {
			return true
		}
	}
	return false
}

func round3(v float64) float64 {
	return float64(int64(v*1000+0.5)) / 1000
}
