package attribution

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAttribute_ContactTriggerPhrase(t *testing.T) {
	t.Parallel()

	e := New()
	res := e.Attribute("Contact: Jane Doe, jane@acme.com, or call 0207 123 4567", []string{"Jane Doe"})

	jane, ok := res.PerName["Jane Doe"]
	require.True(t, ok)
	require.NotNil(t, jane.Email)
	require.NotNil(t, jane.Phone)

	assert.Equal(t, "jane@acme.com", jane.Email.Value)
	assert.InDelta(t, 1.0, jane.Email.Confidence, 0.001)
	assert.InDelta(t, 0.5, jane.Email.Breakdown.Proximity, 0.001)
	assert.InDelta(t, 0.2, jane.Email.Breakdown.Separator, 0.001)
	assert.InDelta(t, 0.1, jane.Email.Breakdown.Keyword, 0.001)
	assert.Less(t, jane.Email.Distance, 50)

	assert.Equal(t, "02071234567", jane.Phone.Value)
	assert.InDelta(t, 0.6, jane.Phone.Confidence, 0.001)
	assert.Less(t, jane.Phone.Distance, 50)
	assert.InDelta(t, 0.1, jane.Phone.Breakdown.Keyword, 0.001)

	assert.True(t, res.Unattributed.Empty())
	assert.InDelta(t, 1.0, jane.Confidence(), 0.001)
}

func TestAttribute_Exclusivity(t *testing.T) {
	t.Parallel()

	contents := []string{
		"John Smith and Jane Doe can be reached on 0207 123 4567 or info@acme.com",
		"Jane Doe - jane@acme.com. John Smith - john@acme.com. Office: 01632 960001",
		"Alan Reed 0207 123 4567 Beth Cole, beth@acme.com, Alan Reed alan@acme.com",
	}
	names := []string{"John Smith", "Jane Doe", "Alan Reed", "Beth Cole"}

	e := New()
	for _, c := range contents {
		res := e.Attribute(c, names)
		owners := make(map[string]string)
		for name, nc := range res.PerName {
			for _, a := range []*Attribution{nc.Email, nc.Phone, nc.LinkedIn} {
				if a == nil {
					continue
				}
				prev, dup := owners[a.Value]
				assert.False(t, dup, "%s attributed to %s and %s", a.Value, prev, name)
				owners[a.Value] = name
			}
		}
		for _, u := range append(res.Unattributed.Emails, res.Unattributed.Phones...) {
			_, attributed := owners[u]
			assert.False(t, attributed, "%s both attributed and unattributed", u)
		}
	}
}

func TestAttributeRanked_TieBreak(t *testing.T) {
	t.Parallel()

	content := "Alan Reed 0207 123 4567 Beth Cole"
	e := New()

	t.Run("higher name confidence wins", func(t *testing.T) {
		t.Parallel()
		res := e.AttributeRanked(content, []RankedName{
			{Name: "Alan Reed", Confidence: 0.7},
			{Name: "Beth Cole", Confidence: 0.9},
		})
		require.Contains(t, res.PerName, "Beth Cole")
		assert.Equal(t, "02071234567", res.PerName["Beth Cole"].Phone.Value)
		assert.NotContains(t, res.PerName, "Alan Reed")
	})

	t.Run("lexical order on equal confidence", func(t *testing.T) {
		t.Parallel()
		res := e.Attribute(content, []string{"Beth Cole", "Alan Reed"})
		require.Contains(t, res.PerName, "Alan Reed")
		assert.NotContains(t, res.PerName, "Beth Cole")
	})
}

func TestAttribute_KeepsBestPerKind(t *testing.T) {
	t.Parallel()

	e := New()
	res := e.Attribute("Jane Doe: jane@acme.com or info@acme.com", []string{"Jane Doe"})

	require.Contains(t, res.PerName, "Jane Doe")
	assert.Equal(t, "jane@acme.com", res.PerName["Jane Doe"].Email.Value)
	assert.InDelta(t, 0.9, res.PerName["Jane Doe"].Email.Confidence, 0.001)
	assert.Equal(t, []string{"info@acme.com"}, res.Unattributed.Emails)
}

func TestAttribute_OutOfWindowIsUnattributed(t *testing.T) {
	t.Parallel()

	filler := ""
	for i := 0; i < 30; i++ {
		filler += "lorem ipsum "
	}
	e := New()
	res := e.Attribute("Jane Doe is our founder. "+filler+"Write to hello@acme.com", []string{"Jane Doe"})

	assert.Empty(t, res.PerName)
	assert.Equal(t, []string{"hello@acme.com"}, res.Unattributed.Emails)
}

func TestAttribute_SignatureAndLinkedIn(t *testing.T) {
	t.Parallel()

	e := New()
	content := "Kind regards,\nTom Hardy\ntom.h@acme.com\nlinkedin.com/in/tom-hardy-123"
	res := e.Attribute(content, []string{"Tom Hardy"})

	tom, ok := res.PerName["Tom Hardy"]
	require.True(t, ok)
	require.NotNil(t, tom.Email)
	assert.InDelta(t, 0.15, tom.Email.Breakdown.Signature, 0.001)
	assert.InDelta(t, 0.2, tom.Email.Breakdown.Handle, 0.001)

	require.NotNil(t, tom.LinkedIn)
	assert.Equal(t, "https://www.linkedin.com/in/tom-hardy-123", tom.LinkedIn.Value)
	assert.InDelta(t, 0.0, tom.LinkedIn.Breakdown.Signature, 0.001)
}

func TestAttribute_MinConfidence(t *testing.T) {
	t.Parallel()

	e := New(WithMinConfidence(0.95))
	res := e.Attribute("Jane Doe 0207 123 4567", []string{"Jane Doe"})
	assert.Empty(t, res.PerName)
	assert.Equal(t, []string{"02071234567"}, res.Unattributed.Phones)
}

func TestAttribute_NoContacts(t *testing.T) {
	t.Parallel()

	res := New().Attribute("Jane Doe is the owner", []string{"Jane Doe"})
	assert.Empty(t, res.PerName)
	assert.True(t, res.Unattributed.Empty())
}

func TestScoreBreakdownMethod(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		b    ScoreBreakdown
		want string
	}{
		{"proximity only", ScoreBreakdown{Proximity: 0.5}, MethodProximity},
		{"separator beats far proximity", ScoreBreakdown{Proximity: 0.1, Separator: 0.2}, MethodSeparator},
		{"tie prefers specific rule", ScoreBreakdown{Proximity: 0.2, Handle: 0.2}, MethodHandle},
		{"empty", ScoreBreakdown{}, MethodProximity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.b.Method())
		})
	}
}
