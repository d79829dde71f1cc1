package pipeline

import (
	"sort"

	"github.com/sells-group/exec-enrich/internal/model"
)

// SortProfiles orders profiles by overall confidence, then seniority, then
// name. The sort is stable so equal profiles keep aggregation order.
func SortProfiles(profiles []model.ExecutiveProfile) {
	sort.SliceStable(profiles, func(i, j int) bool {
		a, b := profiles[i], profiles[j]
		if a.OverallConfidence != b.OverallConfidence {
			return a.OverallConfidence > b.OverallConfidence
		}
		if ra, rb := a.Director.SeniorityTier.Rank(), b.Director.SeniorityTier.Rank(); ra != rb {
			return ra > rb
		}
		return a.Director.FullName < b.Director.FullName
	})
}

// SelectPrimary picks the decision maker to contact first: the most
// confident tier_1 profile at or above floor, otherwise the most confident
// profile overall. Profiles must already be sorted. The returned profile is
// a copy.
func SelectPrimary(profiles []model.ExecutiveProfile, floor float64) *model.ExecutiveProfile {
	if len(profiles) == 0 {
		return nil
	}
	for _, p := range profiles {
		if p.Director.SeniorityTier == model.Tier1 && p.OverallConfidence >= floor {
			return &p
		}
	}
	p := profiles[0]
	return &p
}
