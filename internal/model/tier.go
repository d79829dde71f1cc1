package model

import (
	"encoding/json"
	"time"
)

// Tier is the enrichment tier chosen for a company.
type Tier string

const (
	TierA Tier = "A"
	TierB Tier = "B"
	TierC Tier = "C"
	TierD Tier = "D"
)

// TierDecision authorizes sources and sets the time/cost ceiling for one
// company. It is computed once and read by the orchestrator.
type TierDecision struct {
	Tier              Tier          `json:"tier"`
	Budget            float64       `json:"budget"`
	AllowedSources    []string      `json:"allowed_sources"`
	MaxProcessingTime time.Duration `json:"-"`
	EstimatedCost     float64       `json:"estimated_cost"`
	Downgraded        bool          `json:"downgraded,omitempty"`
	Reason            string        `json:"reason,omitempty"`
}

// Allows reports whether sourceID is authorized by the decision.
func (d *TierDecision) Allows(sourceID string) bool {
	if d == nil {
		return false
	}
	for _, s := range d.AllowedSources {
		if s == sourceID {
			return true
		}
	}
	return false
}

type tierDecisionJSON struct {
	Tier              Tier     `json:"tier"`
	Budget            float64  `json:"budget"`
	AllowedSources    []string `json:"allowed_sources"`
	MaxProcessingTime float64  `json:"max_processing_time"`
	EstimatedCost     float64  `json:"estimated_cost"`
	Downgraded        bool     `json:"downgraded,omitempty"`
	Reason            string   `json:"reason,omitempty"`
}

// MarshalJSON encodes MaxProcessingTime in seconds.
func (d TierDecision) MarshalJSON() ([]byte, error) {
	return json.Marshal(tierDecisionJSON{
		Tier:              d.Tier,
		Budget:            d.Budget,
		AllowedSources:    d.AllowedSources,
		MaxProcessingTime: d.MaxProcessingTime.Seconds(),
		EstimatedCost:     d.EstimatedCost,
		Downgraded:        d.Downgraded,
		Reason:            d.Reason,
	})
}

// UnmarshalJSON decodes MaxProcessingTime from seconds.
func (d *TierDecision) UnmarshalJSON(b []byte) error {
	var raw tierDecisionJSON
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*d = TierDecision{
		Tier:              raw.Tier,
		Budget:            raw.Budget,
		AllowedSources:    raw.AllowedSources,
		MaxProcessingTime: time.Duration(raw.MaxProcessingTime * float64(time.Second)),
		EstimatedCost:     raw.EstimatedCost,
		Downgraded:        raw.Downgraded,
		Reason:            raw.Reason,
	}
	return nil
}
