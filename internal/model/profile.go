package model

import (
	"math"
	"strings"
)

// Weights applied to field confidences when deriving overall confidence.
const (
	weightName     = 0.50
	weightTitle    = 0.20
	weightEmail    = 0.15
	weightPhone    = 0.10
	weightLinkedIn = 0.05

	// sourceBoostStep is added per corroborating source beyond the first.
	sourceBoostStep = 0.10
	// sourceBoostCap bounds the total corroboration boost.
	sourceBoostCap = 0.30

	linkedInVerifiedConfidence   = 1.0
	linkedInUnverifiedConfidence = 0.6

	// StaffMemberTitle is the placeholder used when no title could be found.
	StaffMemberTitle = "Staff Member"
)

// Director holds the person-level fields of an executive profile.
type Director struct {
	FullName         string        `json:"full_name"`
	Title            string        `json:"title"`
	SeniorityTier    SeniorityTier `json:"seniority_tier"`
	AuthorityLevel   int           `json:"authority_level"`
	IsDecisionMaker  bool          `json:"is_decision_maker"`
	Email            string        `json:"email,omitempty"`
	EmailConfidence  float64       `json:"email_confidence"`
	Phone            string        `json:"phone,omitempty"`
	PhoneConfidence  float64       `json:"phone_confidence"`
	LinkedInURL      string        `json:"linkedin_url,omitempty"`
	LinkedInVerified bool          `json:"linkedin_verified"`
}

// ConfidenceBreakdown explains how overall confidence was derived.
type ConfidenceBreakdown struct {
	FieldScore  float64 `json:"field_score"`
	SourceBoost float64 `json:"source_boost"`
	SourceCount int     `json:"source_count"`
}

// ExecutiveProfile is the canonical deduplicated record for one person.
type ExecutiveProfile struct {
	Director              Director            `json:"director"`
	NameConfidence        float64             `json:"name_confidence"`
	TitleConfidence       float64             `json:"title_confidence"`
	OverallConfidence     float64             `json:"overall_confidence"`
	Breakdown             ConfidenceBreakdown `json:"confidence_breakdown"`
	DiscoverySources      []string            `json:"discovery_sources"`
	AttributionMethod     string              `json:"attribution_method,omitempty"`
	DataCompletenessScore float64             `json:"data_completeness_score"`
	CrossValidation       *CrossValidation    `json:"cross_validation,omitempty"`
}

// LinkedInConfidence returns the confidence contribution of the LinkedIn URL.
func (p *ExecutiveProfile) LinkedInConfidence() float64 {
	switch {
	case p.Director.LinkedInURL == "":
		return 0
	case p.Director.LinkedInVerified:
		return linkedInVerifiedConfidence
	default:
		return linkedInUnverifiedConfidence
	}
}

// HasTitle reports whether the profile carries a real (non placeholder) title.
func (p *ExecutiveProfile) HasTitle() bool {
	t := strings.TrimSpace(p.Director.Title)
	return t != "" && t != StaffMemberTitle
}

// ProfileConfidence derives overall confidence from field confidences and
// the number of distinct corroborating sources.
func ProfileConfidence(p *ExecutiveProfile) ConfidenceBreakdown {
	email, phone := 0.0, 0.0
	if p.Director.Email != "" {
		email = p.Director.EmailConfidence
	}
	if p.Director.Phone != "" {
		phone = p.Director.PhoneConfidence
	}
	title := 0.0
	if p.Director.Title != "" {
		title = p.TitleConfidence
	}

	fieldScore := weightName*Clamp01(p.NameConfidence) +
		weightTitle*Clamp01(title) +
		weightEmail*Clamp01(email) +
		weightPhone*Clamp01(phone) +
		weightLinkedIn*p.LinkedInConfidence()

	n := len(p.DiscoverySources)
	boost := 0.0
	if n > 1 {
		boost = math.Min(sourceBoostStep*float64(n-1), sourceBoostCap)
	}
	return ConfidenceBreakdown{
		FieldScore:  round3(fieldScore),
		SourceBoost: round3(boost),
		SourceCount: n,
	}
}

// Completeness returns the fraction of populated fields among name, title,
// email, phone, linkedin and sources.
func Completeness(p *ExecutiveProfile) float64 {
	populated := 0
	if strings.TrimSpace(p.Director.FullName) != "" {
		populated++
	}
	if p.HasTitle() {
		populated++
	}
	if p.Director.Email != "" {
		populated++
	}
	if p.Director.Phone != "" {
		populated++
	}
	if p.Director.LinkedInURL != "" {
		populated++
	}
	if len(p.DiscoverySources) > 0 {
		populated++
	}
	return round3(float64(populated) / 6)
}

// Recompute refreshes every derived score on the profile. It is the only
// place OverallConfidence is written.
func (p *ExecutiveProfile) Recompute() {
	b := ProfileConfidence(p)
	p.Breakdown = b
	p.OverallConfidence = round3(Clamp01(b.FieldScore + b.SourceBoost))
	p.DataCompletenessScore = Completeness(p)
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
