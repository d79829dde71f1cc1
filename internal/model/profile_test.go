package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfileRecompute(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		profile ExecutiveProfile
		want    float64
	}{
		{
			name: "name only",
			profile: ExecutiveProfile{
				Director:         Director{FullName: "John Smith"},
				NameConfidence:   0.8,
				DiscoverySources: []string{"website"},
			},
			want: 0.4,
		},
		{
			name: "all fields single source",
			profile: ExecutiveProfile{
				Director: Director{
					FullName: "John Smith", Title: "CEO",
					Email: "john@acme.co.uk", EmailConfidence: 1,
					Phone: "02071234567", PhoneConfidence: 1,
					LinkedInURL: "https://www.linkedin.com/in/john-smith", LinkedInVerified: true,
				},
				NameConfidence:   1,
				TitleConfidence:  1,
				DiscoverySources: []string{"website"},
			},
			want: 1,
		},
		{
			name: "two sources add boost",
			profile: ExecutiveProfile{
				Director:         Director{FullName: "John Smith", Title: "CEO"},
				NameConfidence:   0.8,
				TitleConfidence:  0.5,
				DiscoverySources: []string{"companies_house", "website"},
			},
			want: 0.6,
		},
		{
			name: "boost capped",
			profile: ExecutiveProfile{
				Director:         Director{FullName: "John Smith"},
				NameConfidence:   0.2,
				DiscoverySources: []string{"a", "b", "c", "d", "e", "f"},
			},
			want: 0.4,
		},
		{
			name: "unverified linkedin",
			profile: ExecutiveProfile{
				Director:         Director{FullName: "Jane Doe", LinkedInURL: "https://www.linkedin.com/in/x"},
				NameConfidence:   1,
				DiscoverySources: []string{"linkedin_search"},
			},
			want: 0.53,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			p := tt.profile
			p.Recompute()
			assert.InDelta(t, tt.want, p.OverallConfidence, 0.001)
			assert.GreaterOrEqual(t, p.OverallConfidence, 0.0)
			assert.LessOrEqual(t, p.OverallConfidence, 1.0)
			assert.Equal(t, len(p.DiscoverySources), p.Breakdown.SourceCount)
		})
	}
}

func TestProfileRecompute_MonotonicInSources(t *testing.T) {
	t.Parallel()

	base := ExecutiveProfile{
		Director:         Director{FullName: "John Smith", Title: "Director", Email: "j@x.com", EmailConfidence: 0.7},
		NameConfidence:   0.7,
		TitleConfidence:  0.6,
		DiscoverySources: []string{"website"},
	}
	base.Recompute()

	prev := base.OverallConfidence
	sources := []string{"website"}
	for _, s := range []string{"companies_house", "search_engine", "email_finder", "linkedin_search"} {
		sources = append(sources, s)
		p := base
		p.DiscoverySources = append([]string(nil), sources...)
		p.Recompute()
		assert.GreaterOrEqual(t, p.OverallConfidence, prev)
		prev = p.OverallConfidence
	}
}

func TestCompleteness(t *testing.T) {
	t.Parallel()

	p := ExecutiveProfile{
		Director:         Director{FullName: "John Smith", Title: StaffMemberTitle, Email: "j@x.com"},
		DiscoverySources: []string{"website"},
	}
	assert.InDelta(t, 0.5, Completeness(&p), 0.001)

	p.Director.Title = "CEO"
	p.Director.Phone = "0207"
	p.Director.LinkedInURL = "https://www.linkedin.com/in/js"
	assert.InDelta(t, 1.0, Completeness(&p), 0.001)
}

func TestExecutiveProfileJSON(t *testing.T) {
	t.Parallel()

	p := ExecutiveProfile{
		Director:         Director{FullName: "Emily Davis", Title: "CTO", SeniorityTier: Tier1},
		NameConfidence:   0.9,
		DiscoverySources: []string{"website"},
	}
	p.Recompute()

	b, err := json.Marshal(p)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(b, &raw))
	director, ok := raw["director"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Emily Davis", director["full_name"])
	assert.Equal(t, "tier_1", director["seniority_tier"])
	assert.Contains(t, raw, "overall_confidence")
}
