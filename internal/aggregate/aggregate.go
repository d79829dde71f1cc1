// Package aggregate groups candidate records by identity and merges each
// group into one executive profile.
package aggregate

import (
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/exec-enrich/internal/contact"
	"github.com/sells-group/exec-enrich/internal/fuzzy"
	"github.com/sells-group/exec-enrich/internal/model"
)

// DefaultThreshold is the name similarity at which two candidates are
// treated as the same person.
const DefaultThreshold = 0.8

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithThreshold overrides the identity similarity threshold.
func WithThreshold(t float64) Option {
	return func(a *Aggregator) {
		if t > 0 {
			a.threshold = t
		}
	}
}

// Aggregator merges candidates from all sources into executive profiles.
type Aggregator struct {
	threshold float64
}

// New creates an Aggregator.
func New(opts ...Option) *Aggregator {
	a := &Aggregator{threshold: DefaultThreshold}
	for _, o := range opts {
		o(a)
	}
	return a
}

// Threshold returns the configured similarity threshold.
func (a *Aggregator) Threshold() float64 { return a.threshold }

// Aggregate groups candidates by fuzzy name identity and merges each group.
// Output order follows group creation order and is not sorted.
func (a *Aggregator) Aggregate(cands []model.CandidateRecord) []model.ExecutiveProfile {
	groups := a.Group(cands)
	out := make([]model.ExecutiveProfile, 0, len(groups))
	for _, g := range groups {
		out = append(out, Merge(g))
	}
	return out
}

// Group clusters candidates in a single greedy pass: each candidate joins
// the first group holding a similar member, else starts a new group. The
// result depends on input order. A closure pass then merges groups whose
// representative names are still similar so that no two groups describe
// the same identity.
func (a *Aggregator) Group(cands []model.CandidateRecord) [][]model.CandidateRecord {
	var groups [][]model.CandidateRecord
	for _, c := range cands {
		if strings.TrimSpace(displayName(c)) == "" {
			continue
		}
		placed := false
		for gi := range groups {
			if a.joins(groups[gi], c) {
				groups[gi] = append(groups[gi], c)
				placed = true
				break
			}
		}
		if !placed {
			groups = append(groups, []model.CandidateRecord{c})
		}
	}

	for merged := true; merged; {
		merged = false
		for i := 0; i < len(groups) && !merged; i++ {
			for j := i + 1; j < len(groups); j++ {
				ri, rj := representative(groups[i]), representative(groups[j])
				if fuzzy.Similarity(ri, rj) < a.threshold {
					continue
				}
				zap.L().Debug("aggregate: closure merge",
					zap.String("into", ri),
					zap.String("from", rj),
				)
				groups[i] = append(groups[i], groups[j]...)
				groups = append(groups[:j], groups[j+1:]...)
				merged = true
				break
			}
		}
	}
	return groups
}

func (a *Aggregator) joins(group []model.CandidateRecord, c model.CandidateRecord) bool {
	name := displayName(c)
	for _, m := range group {
		if fuzzy.Similarity(displayName(m), name) >= a.threshold {
			return true
		}
	}
	return false
}

// rank orders members by extraction confidence then completeness, highest
// first. Equal members keep input order.
func rank(group []model.CandidateRecord) []model.CandidateRecord {
	out := append([]model.CandidateRecord(nil), group...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].ExtractionConfidence != out[j].ExtractionConfidence {
			return out[i].ExtractionConfidence > out[j].ExtractionConfidence
		}
		return out[i].Completeness() > out[j].Completeness()
	})
	return out
}

func representative(group []model.CandidateRecord) string {
	return displayName(rank(group)[0])
}

// displayName prefers the validator's normalized name.
func displayName(c model.CandidateRecord) string {
	if c.Validation != nil && c.Validation.Name != "" {
		return c.Validation.Name
	}
	return strings.TrimSpace(c.Name)
}

// Merge collapses one identity group into a profile. The top-ranked member
// is the base; missing fields are backfilled in rank order and a tier_1
// title from any member replaces a base title that is not tier_1.
func Merge(group []model.CandidateRecord) model.ExecutiveProfile {
	ranked := rank(group)
	base := ranked[0]

	p := model.ExecutiveProfile{
		Director: model.Director{FullName: displayName(base)},
	}

	for _, m := range ranked {
		if nc := m.NameConfidence(); nc > p.NameConfidence {
			p.NameConfidence = nc
		}
	}

	if titled := pickTitle(ranked); titled != nil {
		applyTitle(&p, *titled)
	} else {
		p.Director.Title = model.StaffMemberTitle
		p.Director.SeniorityTier = model.Tier3
		p.Director.AuthorityLevel = 2
	}

	for _, m := range ranked {
		if p.Director.Email == "" && m.Email != "" {
			p.Director.Email = contact.NormalizeEmail(m.Email)
			p.Director.EmailConfidence = fieldConfidence(m.EmailConfidence, m.ExtractionConfidence)
			if p.AttributionMethod == "" {
				p.AttributionMethod = m.AttributionMethod
			}
		}
		if p.Director.Phone == "" && m.Phone != "" {
			p.Director.Phone = contact.NormalizePhone(m.Phone)
			p.Director.PhoneConfidence = fieldConfidence(m.PhoneConfidence, m.ExtractionConfidence)
			if p.AttributionMethod == "" {
				p.AttributionMethod = m.AttributionMethod
			}
		}
		if p.Director.LinkedInURL == "" && m.LinkedInURL != "" {
			if u := contact.NormalizeLinkedIn(m.LinkedInURL); u != "" {
				p.Director.LinkedInURL = u
			}
		}
	}
	p.Director.LinkedInVerified = LinkedInVerified(p.Director.FullName, p.Director.LinkedInURL)

	p.DiscoverySources = sources(group)
	p.Recompute()
	return p
}

// pickTitle returns the member whose title the profile should carry.
func pickTitle(ranked []model.CandidateRecord) *model.CandidateRecord {
	var first *model.CandidateRecord
	for i := range ranked {
		m := &ranked[i]
		if !hasTitle(*m) {
			continue
		}
		if first == nil {
			first = m
		}
		if m.Seniority != nil && m.Seniority.Tier == model.Tier1 {
			if first.Seniority == nil || first.Seniority.Tier != model.Tier1 {
				return m
			}
			return first
		}
	}
	return first
}

func hasTitle(c model.CandidateRecord) bool {
	t := strings.TrimSpace(c.Title)
	if c.Seniority != nil && c.Seniority.Title != "" {
		t = c.Seniority.Title
	}
	return t != "" && t != model.StaffMemberTitle
}

func applyTitle(p *model.ExecutiveProfile, m model.CandidateRecord) {
	p.Director.Title = strings.TrimSpace(m.Title)
	if m.Seniority == nil {
		p.Director.SeniorityTier = model.Tier3
		p.Director.AuthorityLevel = 2
		p.TitleConfidence = m.ExtractionConfidence
		return
	}
	if p.Director.Title == "" {
		p.Director.Title = m.Seniority.Title
	}
	p.Director.SeniorityTier = m.Seniority.Tier
	p.Director.AuthorityLevel = m.Seniority.Authority
	p.Director.IsDecisionMaker = m.Seniority.IsDecisionMaker
	p.TitleConfidence = m.Seniority.Confidence
}

func fieldConfidence(attributed, extraction float64) float64 {
	if attributed > 0 {
		return model.Clamp01(attributed)
	}
	return model.Clamp01(extraction)
}

func sources(group []model.CandidateRecord) []string {
	set := make(map[string]bool)
	for _, m := range group {
		if m.SourceID != "" {
			set[m.SourceID] = true
		}
	}
	out := make([]string, 0, len(set))
	for s := range set {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// LinkedInVerified reports whether the profile slug carries every name token.
func LinkedInVerified(name, url string) bool {
	slug := contact.LinkedInSlug(url)
	if slug == "" {
		return false
	}
	toks := fuzzy.Tokens(name)
	if len(toks) == 0 {
		return false
	}
	for _, t := range toks {
		if !strings.Contains(slug, t) {
			return false
		}
	}
	return true
}
