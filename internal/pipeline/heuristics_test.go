package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBusinessNameCandidates(t *testing.T) {
	t.Parallel()

	tests := []struct {
		company string
		want    string
	}{
		{"John Smith Plumbing Ltd", "John Smith"},
		{"JAMES WILSON ELECTRICAL LTD", "James Wilson"},
		{"The Sarah Jones Clinic", "Sarah Jones"},
		{"Mary O'Brien Interiors", "Mary O'Brien"},
		{"Acme Ltd", ""},
		{"Smith & Sons Ltd", ""},
		{"Smith and Jones", ""},
		{"123 Builders Ltd", ""},
		{"plumbing solutions", ""},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.company, func(t *testing.T) {
			t.Parallel()

			got := BusinessNameCandidates(tt.company)
			if tt.want == "" {
				assert.Empty(t, got)
				return
			}
			require.Len(t, got, 1)
			assert.Equal(t, tt.want, got[0].Name)
			assert.Equal(t, "Owner", got[0].Title)
			assert.Equal(t, BusinessNameSource, got[0].SourceID)
			assert.Equal(t, tt.company, got[0].ContextSnippet)
			assert.InDelta(t, businessNameConfidence, got[0].ExtractionConfidence, 1e-9)
		})
	}
}
