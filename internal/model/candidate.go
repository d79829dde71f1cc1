package model

// NameType classifies what a candidate name string actually is.
type NameType string

const (
	NameTypeExecutive    NameType = "executive"
	NameTypeLocation     NameType = "location"
	NameTypeService      NameType = "service"
	NameTypeHTMLArtifact NameType = "html_artifact"
	NameTypeUncertain    NameType = "uncertain"
)

// NameScore is the per-rule breakdown behind a validation confidence.
type NameScore struct {
	Shape   float64 `json:"shape"`
	Lexicon float64 `json:"lexicon"`
	Context float64 `json:"context"`
}

// Total returns the clamped sum of all components.
func (s NameScore) Total() float64 {
	return Clamp01(s.Shape + s.Lexicon + s.Context)
}

// ValidatedName is the outcome of name validation.
type ValidatedName struct {
	Name       string    `json:"name"`
	IsValid    bool      `json:"is_valid"`
	NameType   NameType  `json:"name_type"`
	Confidence float64   `json:"validation_confidence"`
	Reasons    []string  `json:"reasons,omitempty"`
	Breakdown  NameScore `json:"breakdown"`
}

// SeniorityTier is the fixed seniority hierarchy.
type SeniorityTier string

const (
	Tier1 SeniorityTier = "tier_1"
	Tier2 SeniorityTier = "tier_2"
	Tier3 SeniorityTier = "tier_3"
)

// Rank orders tiers so that tier_1 sorts highest.
func (t SeniorityTier) Rank() int {
	switch t {
	case Tier1:
		return 3
	case Tier2:
		return 2
	case Tier3:
		return 1
	default:
		return 0
	}
}

// SeniorityScore is the per-rule breakdown behind a classification confidence.
type SeniorityScore struct {
	Lexicon   float64 `json:"lexicon"`
	Context   float64 `json:"context"`
	Proximity float64 `json:"proximity"`
}

// Seniority is the outcome of title classification.
type Seniority struct {
	Title           string         `json:"title"`
	Tier            SeniorityTier  `json:"tier"`
	Authority       int            `json:"authority_level"`
	IsDecisionMaker bool           `json:"is_decision_maker"`
	Confidence      float64        `json:"confidence"`
	Method          string         `json:"method"`
	Breakdown       SeniorityScore `json:"breakdown"`
}

// CandidateRecord is the raw output of one source adapter for one
// person-like entity. Fields after ContextSnippet are written by pipeline
// stages as the record moves through validation, attribution and
// classification.
type CandidateRecord struct {
	Name                 string  `json:"name"`
	Title                string  `json:"title,omitempty"`
	Email                string  `json:"email,omitempty"`
	Phone                string  `json:"phone,omitempty"`
	LinkedInURL          string  `json:"linkedin_url,omitempty"`
	SourceID             string  `json:"source_id"`
	ExtractionConfidence float64 `json:"extraction_confidence"`
	ContextSnippet       string  `json:"raw_context_snippet,omitempty"`

	Validation        *ValidatedName `json:"validation,omitempty"`
	Seniority         *Seniority     `json:"seniority,omitempty"`
	EmailConfidence   float64        `json:"email_confidence,omitempty"`
	PhoneConfidence   float64        `json:"phone_confidence,omitempty"`
	AttributionMethod string         `json:"attribution_method,omitempty"`
}

// Completeness counts populated contact-bearing fields, used to rank
// records that share an identity.
func (c CandidateRecord) Completeness() int {
	n := 0
	for _, v := range []string{c.Name, c.Title, c.Email, c.Phone, c.LinkedInURL} {
		if v != "" {
			n++
		}
	}
	return n
}

// NameConfidence blends extraction and validation confidence.
func (c CandidateRecord) NameConfidence() float64 {
	if c.Validation == nil {
		return Clamp01(c.ExtractionConfidence)
	}
	return Clamp01((c.ExtractionConfidence + c.Validation.Confidence) / 2)
}

// Clamp01 bounds v to [0, 1].
func Clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
