package model

import (
	"strings"
	"time"
)

// PriorityTier is the caller-assigned lead priority bucket.
type PriorityTier string

const (
	PriorityA PriorityTier = "A"
	PriorityB PriorityTier = "B"
	PriorityC PriorityTier = "C"
)

// ParsePriorityTier normalizes a priority string. Unknown values map to C.
func ParsePriorityTier(s string) PriorityTier {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "A":
		return PriorityA
	case "B":
		return PriorityB
	default:
		return PriorityC
	}
}

// Lead is the inbound request for a single enrichment call.
type Lead struct {
	CompanyName  string       `json:"company_name" csv:"company_name"`
	LeadScore    float64      `json:"lead_score" csv:"lead_score"`
	PriorityTier PriorityTier `json:"priority_tier" csv:"priority_tier"`
	Website      string       `json:"website,omitempty" csv:"website,omitempty"`
}

// EnrichmentStatus is the terminal state of an enrichment call.
type EnrichmentStatus string

const (
	StatusCompleted EnrichmentStatus = "completed"
	StatusPartial   EnrichmentStatus = "partial"
	StatusFailed    EnrichmentStatus = "failed"
	StatusSkipped   EnrichmentStatus = "skipped"
)

// PhaseStatus represents the outcome of a pipeline phase.
type PhaseStatus string

const (
	PhaseStatusComplete PhaseStatus = "complete"
	PhaseStatusFailed   PhaseStatus = "failed"
	PhaseStatusSkipped  PhaseStatus = "skipped"
)

// PhaseResult holds the outcome of one pipeline phase.
type PhaseResult struct {
	Name     string         `json:"name"`
	Status   PhaseStatus    `json:"status"`
	Duration int64          `json:"duration_ms"`
	Error    string         `json:"error,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// DiscardedName records a candidate dropped by name validation.
type DiscardedName struct {
	Name     string   `json:"name"`
	SourceID string   `json:"source_id"`
	NameType NameType `json:"name_type"`
	Reasons  []string `json:"reasons,omitempty"`
}

// ConfidenceReport summarizes how trustworthy a result is.
type ConfidenceReport struct {
	OverallConfidence   float64           `json:"overall_confidence"`
	ProfilesFound       int               `json:"profiles_found"`
	HighConfidenceCount int               `json:"high_confidence_count"`
	DecisionMakers      int               `json:"decision_makers"`
	SourcesSucceeded    []string          `json:"sources_succeeded"`
	SourcesFailed       []string          `json:"sources_failed"`
	SourceErrors        map[string]string `json:"source_errors,omitempty"`
	DiscardedNames      []DiscardedName   `json:"discarded_names,omitempty"`
	Unattributed        *Unattributed     `json:"unattributed,omitempty"`
	CrossValidation     map[string]int    `json:"cross_validation,omitempty"`
	DeadlineExceeded    bool              `json:"deadline_exceeded,omitempty"`
	Notes               []string          `json:"notes,omitempty"`
}

// CompanyEnrichmentResult is the single output of an enrichment call.
type CompanyEnrichmentResult struct {
	ID                   string             `json:"id,omitempty"`
	CompanyName          string             `json:"company_name"`
	Website              string             `json:"website,omitempty"`
	LeadScore            float64            `json:"lead_score"`
	PriorityTier         PriorityTier       `json:"priority_tier"`
	ExecutiveProfiles    []ExecutiveProfile `json:"director_profiles"`
	PrimaryDecisionMaker *ExecutiveProfile  `json:"primary_decision_maker,omitempty"`
	TierDecision         *TierDecision      `json:"enrichment_decision,omitempty"`
	ConfidenceReport     ConfidenceReport   `json:"confidence_report"`
	TotalCost            float64            `json:"total_cost"`
	ProcessingTimeMS     int64              `json:"processing_time_ms"`
	Status               EnrichmentStatus   `json:"status"`
	ErrorMessage         string             `json:"error_message,omitempty"`
	Phases               []PhaseResult      `json:"phases,omitempty"`
	CreatedAt            time.Time          `json:"created_at"`
}
