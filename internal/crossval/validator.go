// Package crossval compares profile fields across independent sources and
// resolves disagreements by source authority.
package crossval

import (
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/exec-enrich/internal/aggregate"
	"github.com/sells-group/exec-enrich/internal/contact"
	"github.com/sells-group/exec-enrich/internal/fuzzy"
	"github.com/sells-group/exec-enrich/internal/model"
)

const (
	// DefaultAgreement is the share of sources that must agree on a field.
	DefaultAgreement = 0.7

	agreeBoost    = 0.1
	conflictScale = 0.8
)

var fields = []string{FieldName, FieldTitle, FieldEmail, FieldPhone, FieldLinkedIn}

// Option configures a Validator.
type Option func(*Validator)

// WithWeights sets the source type ranking.
func WithWeights(w Weights) Option {
	return func(v *Validator) { v.weights = w }
}

// WithAgreementThreshold sets the agreement share required to validate a field.
func WithAgreementThreshold(t float64) Option {
	return func(v *Validator) {
		if t > 0 {
			v.agreement = t
		}
	}
}

// WithMatchThreshold sets the name similarity used to find a profile's
// record in each source.
func WithMatchThreshold(t float64) Option {
	return func(v *Validator) {
		if t > 0 {
			v.match = t
		}
	}
}

// Validator cross-checks aggregated profiles against raw per-source data.
type Validator struct {
	weights   Weights
	agreement float64
	match     float64
}

// New creates a Validator with default weights.
func New(opts ...Option) *Validator {
	v := &Validator{
		weights:   DefaultWeights(),
		agreement: DefaultAgreement,
		match:     aggregate.DefaultThreshold,
	}
	for _, o := range opts {
		o(v)
	}
	return v
}

// Result is the cross-validation outcome for one profile.
type Result struct {
	Profile         model.ExecutiveProfile
	Status          model.ValidationStatus
	Conflicts       []model.FieldConflict
	ValidatedFields []string
}

type evidence struct {
	sourceID string
	weight   float64
	rec      model.CandidateRecord
}

// Validate checks every profile against the raw records keyed by source id.
// Profiles are copied; the returned profiles carry the resolved values, the
// CrossValidation summary and recomputed confidence.
func (v *Validator) Validate(profiles []model.ExecutiveProfile, raw map[string][]model.CandidateRecord) []Result {
	out := make([]Result, 0, len(profiles))
	for _, p := range profiles {
		out = append(out, v.validateOne(p, raw))
	}
	return out
}

func (v *Validator) validateOne(p model.ExecutiveProfile, raw map[string][]model.CandidateRecord) Result {
	ev := v.collect(p.Director.FullName, raw)
	res := Result{}

	checked := 0
	for _, field := range fields {
		vals := fieldValues(field, ev)
		if len(vals) < 2 {
			continue
		}
		checked++

		agreeing, share := v.largestCluster(field, vals)
		if share >= v.agreement {
			chosen := agreeing[0]
			for _, e := range agreeing {
				if Equivalent(field, currentValue(&p, field), value(field, e.rec)) {
					chosen = e
					break
				}
			}
			apply(&p, field, chosen)
			adjust(&p, field, func(c float64) float64 { return c + agreeBoost })
			res.ValidatedFields = append(res.ValidatedFields, field)
			continue
		}

		winner := vals[0]
		for _, e := range vals[1:] {
			if e.weight > winner.weight {
				winner = e
			}
		}
		conflict := model.FieldConflict{
			Field:        field,
			ChosenValue:  value(field, winner.rec),
			ChosenSource: winner.sourceID,
			Agreement:    share,
		}
		for _, e := range vals {
			conflict.Values = append(conflict.Values, model.SourceValue{
				SourceID:   e.sourceID,
				SourceType: v.weights.TypeOf(e.sourceID),
				Value:      value(field, e.rec),
				Weight:     e.weight,
			})
		}
		zap.L().Warn("crossval: field conflict",
			zap.String("name", p.Director.FullName),
			zap.String("field", field),
			zap.String("chosen", conflict.ChosenValue),
			zap.String("source", winner.sourceID),
		)
		apply(&p, field, winner)
		adjust(&p, field, func(c float64) float64 { return c * conflictScale })
		res.Conflicts = append(res.Conflicts, conflict)
	}

	res.Status = status(len(ev), checked, len(res.Conflicts))
	p.CrossValidation = &model.CrossValidation{
		Status:          res.Status,
		SourcesChecked:  len(ev),
		FieldsChecked:   checked,
		ValidatedFields: res.ValidatedFields,
		Conflicts:       res.Conflicts,
	}
	p.Recompute()
	res.Profile = p
	return res
}

// status maps the check counts onto a verdict. Two or more sources with
// some conflicts at or under half the checked fields count as partially
// validated.
func status(sources, checked, conflicts int) model.ValidationStatus {
	switch {
	case sources == 0:
		return model.ValidationInsufficientData
	case sources == 1 || checked == 0:
		return model.ValidationPartiallyValidated
	case conflicts*2 > checked:
		return model.ValidationConflicting
	case conflicts == 0:
		return model.ValidationValidated
	default:
		return model.ValidationPartiallyValidated
	}
}

// collect picks, per source, the most confident record naming the person.
func (v *Validator) collect(name string, raw map[string][]model.CandidateRecord) []evidence {
	ids := make([]string, 0, len(raw))
	for id := range raw {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var out []evidence
	for _, id := range ids {
		var best *model.CandidateRecord
		for i := range raw[id] {
			r := &raw[id][i]
			if !v.sameName(name, recordName(*r)) {
				continue
			}
			if best == nil || r.ExtractionConfidence > best.ExtractionConfidence {
				best = r
			}
		}
		if best != nil {
			out = append(out, evidence{sourceID: id, weight: v.weights.Of(id), rec: *best})
		}
	}
	return out
}

func (v *Validator) sameName(a, b string) bool {
	return fuzzy.Similarity(a, b) >= v.match || Equivalent(FieldName, a, b)
}

func recordName(r model.CandidateRecord) string {
	if r.Validation != nil && r.Validation.Name != "" {
		return r.Validation.Name
	}
	return r.Name
}

func value(field string, r model.CandidateRecord) string {
	switch field {
	case FieldName:
		return recordName(r)
	case FieldTitle:
		if strings.TrimSpace(r.Title) == model.StaffMemberTitle {
			return ""
		}
		return strings.TrimSpace(r.Title)
	case FieldEmail:
		return r.Email
	case FieldPhone:
		return r.Phone
	case FieldLinkedIn:
		return r.LinkedInURL
	}
	return ""
}

func fieldValues(field string, ev []evidence) []evidence {
	var out []evidence
	for _, e := range ev {
		if value(field, e.rec) != "" {
			out = append(out, e)
		}
	}
	return out
}

// largestCluster returns the biggest group of equivalent values, ties going
// to the group with the heaviest source, and its share of all values. The
// heaviest member is first.
func (v *Validator) largestCluster(field string, vals []evidence) ([]evidence, float64) {
	var best []evidence
	bestWeight := -1.0
	for _, anchor := range vals {
		var group []evidence
		weight := -1.0
		for _, e := range vals {
			if Equivalent(field, value(field, anchor.rec), value(field, e.rec)) {
				group = append(group, e)
				if e.weight > weight {
					weight = e.weight
				}
			}
		}
		if len(group) > len(best) || (len(group) == len(best) && weight > bestWeight) {
			best, bestWeight = group, weight
		}
	}
	sort.SliceStable(best, func(i, j int) bool { return best[i].weight > best[j].weight })
	return best, float64(len(best)) / float64(len(vals))
}

func currentValue(p *model.ExecutiveProfile, field string) string {
	switch field {
	case FieldName:
		return p.Director.FullName
	case FieldTitle:
		return p.Director.Title
	case FieldEmail:
		return p.Director.Email
	case FieldPhone:
		return p.Director.Phone
	case FieldLinkedIn:
		return p.Director.LinkedInURL
	}
	return ""
}

// apply writes the chosen value onto the profile unless it is already an
// equivalent of the current one.
func apply(p *model.ExecutiveProfile, field string, e evidence) {
	val := value(field, e.rec)
	if Equivalent(field, currentValue(p, field), val) {
		return
	}
	switch field {
	case FieldName:
		p.Director.FullName = val
	case FieldTitle:
		p.Director.Title = val
		if s := e.rec.Seniority; s != nil {
			p.Director.SeniorityTier = s.Tier
			p.Director.AuthorityLevel = s.Authority
			p.Director.IsDecisionMaker = s.IsDecisionMaker
		}
	case FieldEmail:
		p.Director.Email = contact.NormalizeEmail(val)
	case FieldPhone:
		p.Director.Phone = contact.NormalizePhone(val)
	case FieldLinkedIn:
		p.Director.LinkedInURL = contact.NormalizeLinkedIn(val)
	}
	p.Director.LinkedInVerified = aggregate.LinkedInVerified(p.Director.FullName, p.Director.LinkedInURL)
}

// adjust rescales the confidence backing a field.
func adjust(p *model.ExecutiveProfile, field string, f func(float64) float64) {
	switch field {
	case FieldName:
		p.NameConfidence = model.Clamp01(f(p.NameConfidence))
	case FieldTitle:
		p.TitleConfidence = model.Clamp01(f(p.TitleConfidence))
	case FieldEmail:
		p.Director.EmailConfidence = model.Clamp01(f(p.Director.EmailConfidence))
	case FieldPhone:
		p.Director.PhoneConfidence = model.Clamp01(f(p.Director.PhoneConfidence))
	}
}
