// Package validate filters candidate name strings down to real human names.
package validate

import (
	"math"
	"regexp"
	"sort"
	"strings"
	"unicode"

	"github.com/sells-group/exec-enrich/internal/contact"
	"github.com/sells-group/exec-enrich/internal/lexicon"
	"github.com/sells-group/exec-enrich/internal/model"
)

// DefaultThreshold is the minimum confidence for a name to be valid.
const DefaultThreshold = 0.6

// Score increments. Each group is capped by construction.
const (
	shapeTokenCount  = 0.20
	shapeSingleToken = 0.05
	shapeCapitalised = 0.10
	shapeCleanChars  = 0.10

	lexiconFirstName = 0.25
	lexiconSurname   = 0.15

	contextTitleNear   = 0.15
	contextContactNear = 0.10
	contextTeamSection = 0.05
	contextRecordNear  = 0.15
	contextMax         = 0.30

	titleRadius   = 100
	contactRadius = 150

	minNameLen = 3
	maxNameLen = 50
)

var (
	multiSpaceRe  = regexp.MustCompile(`\s+`)
	upperRunRe    = regexp.MustCompile(`[A-Z]{3,}`)
	markupCharsRe = regexp.MustCompile(`[<>{}=]`)
	wrappingPunct = ".,;:!?\"'()[]*|/\\-–•·"
	titleKeywords = []string{
		"ceo", "chief executive", "chief executive officer", "chief technology officer", "chief operating officer",
		"chief financial officer", "cto", "cfo", "coo", "md", "managing director", "director", "owner", "founder",
		"co-founder", "chairman", "chair", "partner", "proprietor", "president", "head of", "manager",
		"general manager", "company secretary", "principal", "officer", "vice president", "vp",
	}
)

// Option configures a Validator.
type Option func(*Validator)

// WithThreshold overrides the validity threshold.
func WithThreshold(t float64) Option {
	return func(v *Validator) {
		if t > 0 {
			v.threshold = t
		}
	}
}

// Validator scores candidate names against structural rules, curated
// lexicons and surrounding context. It holds no mutable state and is safe
// for concurrent use.
type Validator struct {
	threshold  float64
	markup     *lexicon.Matcher
	service    *lexicon.Matcher
	places     *lexicon.Matcher
	firstNames *lexicon.Matcher
	surnames   *lexicon.Matcher
	titles     *lexicon.Matcher
	team       *lexicon.Matcher
	records    *lexicon.Matcher
}

// New builds a Validator over the built-in lexicons.
func New(opts ...Option) *Validator {
	v := &Validator{
		threshold:  DefaultThreshold,
		markup:     lexicon.New(markupTerms),
		service:    lexicon.New(serviceTerms),
		places:     lexicon.New(placeNames),
		firstNames: lexicon.New(firstNames),
		surnames:   lexicon.New(surnames),
		titles:     lexicon.New(titleKeywords),
		team:       lexicon.New(teamKeywords),
		records:    lexicon.New(recordKeywords),
	}
	for _, o := range opts {
		o(v)
	}
	return v
}

// Threshold returns the configured validity threshold.
func (v *Validator) Threshold() float64 { return v.threshold }

// Normalize trims and collapses whitespace, strips wrapping punctuation and
// removes leading honorifics. It is idempotent.
func Normalize(name string) string {
	name = multiSpaceRe.ReplaceAllString(strings.TrimSpace(name), " ")
	name = strings.Trim(name, wrappingPunct+" ")
	for {
		fields := strings.Fields(name)
		if len(fields) < 2 {
			break
		}
		first := strings.ToLower(strings.TrimSuffix(fields[0], "."))
		if !honorifics[first] {
			break
		}
		name = strings.Trim(strings.Join(fields[1:], " "), wrappingPunct+" ")
	}
	return name
}

// Validate scores name in context. It never fails: empty or garbage input
// scores near zero.
func (v *Validator) Validate(name, context string) model.ValidatedName {
	clean := Normalize(name)
	out := model.ValidatedName{Name: clean, NameType: model.NameTypeUncertain}

	if nt, reason, rejected := v.structural(clean); rejected {
		out.NameType = nt
		out.Reasons = []string{reason}
		return out
	}

	tokens := strings.Fields(strings.ToLower(clean))
	firstHit := len(tokens) > 0 && v.firstNames.Has(tokens[0])

	if nt, reason, rejected := v.lexical(clean, tokens, firstHit); rejected {
		out.NameType = nt
		out.Reasons = []string{reason}
		return out
	}

	var reasons []string
	score := model.NameScore{
		Shape:   v.shapeScore(clean, &reasons),
		Lexicon: v.lexiconScore(tokens, firstHit, &reasons),
		Context: v.contextScore(clean, context, &reasons),
	}
	out.Breakdown = score
	out.Confidence = score.Total()
	out.Reasons = reasons
	if out.Confidence >= v.threshold {
		out.IsValid = true
		out.NameType = model.NameTypeExecutive
	} else {
		out.Reasons = append(out.Reasons, "below threshold")
	}
	return out
}

// ValidateBatch validates each name in the same context and returns the
// results sorted by confidence, highest first. Equal scores keep input order.
func (v *Validator) ValidateBatch(names []string, context string) []model.ValidatedName {
	out := make([]model.ValidatedName, 0, len(names))
	for _, n := range names {
		out = append(out, v.Validate(n, context))
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Confidence > out[j].Confidence })
	return out
}

func (v *Validator) structural(name string) (model.NameType, string, bool) {
	n := len([]rune(name))
	if n < minNameLen || n > maxNameLen {
		return model.NameTypeUncertain, "length out of range", true
	}
	if !strings.ContainsFunc(name, unicode.IsLetter) {
		return model.NameTypeUncertain, "no letters", true
	}
	if markupCharsRe.MatchString(name) {
		return model.NameTypeHTMLArtifact, "markup characters", true
	}
	if upperRunRe.MatchString(name) {
		return model.NameTypeHTMLArtifact, "uppercase run", true
	}
	if specialCount(name) > 2 {
		return model.NameTypeHTMLArtifact, "too many special characters", true
	}
	return "", "", false
}

func (v *Validator) lexical(name string, tokens []string, firstHit bool) (model.NameType, string, bool) {
	for _, t := range tokens {
		t = strings.Trim(t, ".,'")
		if v.markup.Has(t) && !v.inCensus(t) {
			return model.NameTypeHTMLArtifact, "markup term: " + t, true
		}
	}
	for _, t := range tokens {
		t = strings.Trim(t, ".,'")
		if v.service.Has(t) {
			return model.NameTypeService, "business term: " + t, true
		}
	}

	lower := strings.ToLower(name)
	if v.places.Has(lower) && !v.inCensus(lower) {
		return model.NameTypeLocation, "place name: " + lower, true
	}
	if firstHit {
		return "", "", false
	}
	for _, h := range v.places.Find(lower) {
		if v.inCensus(h.Phrase) {
			continue
		}
		return model.NameTypeLocation, "place name: " + h.Phrase, true
	}
	for _, t := range tokens {
		t = strings.Trim(t, ".,'")
		if v.inCensus(t) {
			continue
		}
		if placeSuffixRe.MatchString(t) {
			return model.NameTypeLocation, "place suffix: " + t, true
		}
	}
	return "", "", false
}

func (v *Validator) inCensus(token string) bool {
	return v.firstNames.Has(token) || v.surnames.Has(token)
}

func (v *Validator) shapeScore(name string, reasons *[]string) float64 {
	fields := strings.Fields(name)
	s := 0.0
	switch {
	case len(fields) >= 2 && len(fields) <= 4:
		s += shapeTokenCount
		*reasons = append(*reasons, "shape: token count")
	case len(fields) == 1:
		s += shapeSingleToken
	}
	if capitalised(fields) {
		s += shapeCapitalised
		*reasons = append(*reasons, "shape: capitalised")
	}
	if specialCount(name) == 0 {
		s += shapeCleanChars
	}
	return s
}

func (v *Validator) lexiconScore(tokens []string, firstHit bool, reasons *[]string) float64 {
	s := 0.0
	if firstHit {
		s += lexiconFirstName
		*reasons = append(*reasons, "lexicon: first name")
	}
	if len(tokens) > 1 && v.surnames.Has(strings.Trim(tokens[len(tokens)-1], ".,")) {
		s += lexiconSurname
		*reasons = append(*reasons, "lexicon: surname")
	}
	return s
}

func (v *Validator) contextScore(name, context string, reasons *[]string) float64 {
	if strings.TrimSpace(context) == "" {
		return 0
	}
	s := 0.0
	titleNear, contactNear, recordNear := false, false, false
	for _, at := range lexicon.Occurrences(context, name) {
		end := at + len(name)
		if !titleNear {
			w, _ := lexicon.Window(context, at, end, titleRadius)
			titleNear = v.titles.Contains(w)
		}
		if !contactNear || !recordNear {
			w, _ := lexicon.Window(context, at, end, contactRadius)
			contactNear = contactNear || contact.HasContact(w)
			recordNear = recordNear || v.records.Contains(w)
		}
	}
	if titleNear {
		s += contextTitleNear
		*reasons = append(*reasons, "context: title nearby")
	}
	if contactNear {
		s += contextContactNear
		*reasons = append(*reasons, "context: contact nearby")
	}
	// Registry officer listings carry no contact details.
	if recordNear {
		s += contextRecordNear
		*reasons = append(*reasons, "context: official record")
	}
	if v.team.Contains(context) {
		s += contextTeamSection
		*reasons = append(*reasons, "context: team section")
	}
	return math.Min(s, contextMax)
}

// specialCount counts runes that cannot appear in a personal name.
func specialCount(name string) int {
	n := 0
	for _, r := range name {
		if unicode.IsLetter(r) || r == ' ' || r == '\'' || r == '-' || r == '.' || r == '’' {
			continue
		}
		n++
	}
	return n
}

func capitalised(fields []string) bool {
	if len(fields) == 0 {
		return false
	}
	for i, f := range fields {
		if i > 0 && nameParticles[strings.ToLower(f)] {
			continue
		}
		r := []rune(f)
		if !unicode.IsUpper(r[0]) {
			return false
		}
	}
	return true
}
