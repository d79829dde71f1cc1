package crossval

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/exec-enrich/internal/model"
)

func profile() model.ExecutiveProfile {
	p := model.ExecutiveProfile{
		Director: model.Director{
			FullName:        "John Smith",
			Title:           "Managing Director",
			SeniorityTier:   model.Tier1,
			AuthorityLevel:  9,
			IsDecisionMaker: true,
			Email:           "john@acme.co.uk",
			EmailConfidence: 0.8,
		},
		NameConfidence:   0.9,
		TitleConfidence:  0.7,
		DiscoverySources: []string{"companies_house", "email_finder", "website"},
	}
	p.Recompute()
	return p
}

func cand(name, title, email, phone string, conf float64) model.CandidateRecord {
	return model.CandidateRecord{Name: name, Title: title, Email: email, Phone: phone, ExtractionConfidence: conf}
}

func TestValidate_AllSourcesAgree(t *testing.T) {
	t.Parallel()

	raw := map[string][]model.CandidateRecord{
		"companies_house": {cand("John Smith", "Managing Director", "", "", 0.95)},
		"website":         {cand("John Smith", "MD", "john@acme.co.uk", "", 0.8)},
		"email_finder":    {cand("John Smith", "", "JOHN@acme.co.uk", "", 0.7)},
	}

	res := New().Validate([]model.ExecutiveProfile{profile()}, raw)
	require.Len(t, res, 1)
	r := res[0]

	assert.Equal(t, model.ValidationValidated, r.Status)
	assert.Empty(t, r.Conflicts)
	assert.Equal(t, []string{FieldName, FieldTitle, FieldEmail}, r.ValidatedFields)
	assert.InDelta(t, 1.0, r.Profile.NameConfidence, 0.001)
	assert.InDelta(t, 0.8, r.Profile.TitleConfidence, 0.001)
	assert.InDelta(t, 0.9, r.Profile.Director.EmailConfidence, 0.001)
	assert.Equal(t, "Managing Director", r.Profile.Director.Title)

	require.NotNil(t, r.Profile.CrossValidation)
	assert.Equal(t, 3, r.Profile.CrossValidation.SourcesChecked)
	assert.Equal(t, 3, r.Profile.CrossValidation.FieldsChecked)
	want := model.ProfileConfidence(&r.Profile)
	assert.InDelta(t, model.Clamp01(want.FieldScore+want.SourceBoost), r.Profile.OverallConfidence, 0.001)
}

func TestValidate_ConflictPicksHighestWeightedSource(t *testing.T) {
	t.Parallel()

	raw := map[string][]model.CandidateRecord{
		"companies_house": {cand("John Smith", "Managing Director", "", "", 0.95)},
		"website":         {cand("John Smith", "Managing Director", "j.smith@acme.co.uk", "", 0.8)},
		"email_finder":    {cand("John Smith", "", "john@acme.co.uk", "", 0.7)},
	}

	res := New().Validate([]model.ExecutiveProfile{profile()}, raw)
	r := res[0]

	assert.Equal(t, model.ValidationPartiallyValidated, r.Status)
	require.Len(t, r.Conflicts, 1)
	c := r.Conflicts[0]
	assert.Equal(t, FieldEmail, c.Field)
	assert.Equal(t, "j.smith@acme.co.uk", c.ChosenValue)
	assert.Equal(t, "website", c.ChosenSource)
	assert.InDelta(t, 0.5, c.Agreement, 0.001)
	assert.Len(t, c.Values, 2)

	assert.Equal(t, "j.smith@acme.co.uk", r.Profile.Director.Email)
	assert.InDelta(t, 0.64, r.Profile.Director.EmailConfidence, 0.001)
}

func TestValidate_Conflicting(t *testing.T) {
	t.Parallel()

	raw := map[string][]model.CandidateRecord{
		"companies_house": {cand("John Smith", "Company Secretary", "", "0161 496 0000", 0.95)},
		"search_engine":   {cand("John Smith", "Sales Manager", "", "020 7946 0000", 0.6)},
	}
	p := profile()
	p.Director.Title = "Sales Manager"

	res := New().Validate([]model.ExecutiveProfile{p}, raw)
	r := res[0]

	assert.Equal(t, model.ValidationConflicting, r.Status)
	assert.Len(t, r.Conflicts, 2)
	assert.Equal(t, "Company Secretary", r.Profile.Director.Title)
	assert.Equal(t, "01614960000", r.Profile.Director.Phone)
}

func TestValidate_SourceCounts(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  map[string][]model.CandidateRecord
		want model.ValidationStatus
	}{
		{
			name: "no matching source",
			raw:  map[string][]model.CandidateRecord{"website": {cand("Emily Davis", "", "", "", 0.8)}},
			want: model.ValidationInsufficientData,
		},
		{
			name: "nil raw",
			want: model.ValidationInsufficientData,
		},
		{
			name: "one source",
			raw:  map[string][]model.CandidateRecord{"website": {cand("John Smith", "MD", "", "", 0.8)}},
			want: model.ValidationPartiallyValidated,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			res := New().Validate([]model.ExecutiveProfile{profile()}, tt.raw)
			require.Len(t, res, 1)
			assert.Equal(t, tt.want, res[0].Status)
			assert.Empty(t, res[0].Conflicts)
		})
	}
}

func TestValidate_CustomWeightsChangeWinner(t *testing.T) {
	t.Parallel()

	w := FromMaps(map[string]float64{"third_party_directory": 0.95}, nil)
	raw := map[string][]model.CandidateRecord{
		"website":      {cand("John Smith", "", "j.smith@acme.co.uk", "", 0.8)},
		"email_finder": {cand("John Smith", "", "john@acme.co.uk", "", 0.7)},
	}

	res := New(WithWeights(w)).Validate([]model.ExecutiveProfile{profile()}, raw)
	require.Len(t, res[0].Conflicts, 1)
	assert.Equal(t, "email_finder", res[0].Conflicts[0].ChosenSource)
	assert.Equal(t, "john@acme.co.uk", res[0].Profile.Director.Email)
}

func TestEquivalent(t *testing.T) {
	t.Parallel()

	tests := []struct {
		field string
		a, b  string
		want  bool
	}{
		{FieldEmail, "John@Acme.co.uk", "john@acme.co.uk", true},
		{FieldEmail, "john@acme.co.uk", "jsmith@acme.co.uk", false},
		{FieldPhone, "+44 161 496 0000", "0161-496-0000", true},
		{FieldPhone, "0161 496 0000", "0161 496 0001", false},
		{FieldLinkedIn, "linkedin.com/in/Jane-Doe/", "https://www.linkedin.com/in/jane-doe", true},
		{FieldName, "John Smith", "John Michael Smith", true},
		{FieldName, "John Smith", "Jon Smith", false},
		{FieldTitle, "CEO", "Chief Executive Officer", true},
		{FieldTitle, "Director of Sales", "Sales Director", true},
		{FieldTitle, "Finance Manager", "Head of Marketing", false},
	}
	for _, tt := range tests {
		t.Run(tt.field+"/"+tt.a+"/"+tt.b, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Equivalent(tt.field, tt.a, tt.b))
		})
	}
}
