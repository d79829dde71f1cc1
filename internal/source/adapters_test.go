package source

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/exec-enrich/internal/model"
	"github.com/sells-group/exec-enrich/internal/resilience"
	"github.com/sells-group/exec-enrich/pkg/companieshouse"
	chmocks "github.com/sells-group/exec-enrich/pkg/companieshouse/mocks"
	"github.com/sells-group/exec-enrich/pkg/google"
	googlemocks "github.com/sells-group/exec-enrich/pkg/google/mocks"
	"github.com/sells-group/exec-enrich/pkg/hunter"
	huntermocks "github.com/sells-group/exec-enrich/pkg/hunter/mocks"
	"github.com/sells-group/exec-enrich/pkg/webpage"
)

var noRetry = WithRetry(resilience.RetryConfig{MaxAttempts: 1})

func TestCompaniesHouse_Fetch(t *testing.T) {
	t.Parallel()

	client := chmocks.NewMockClient(t)
	client.On("SearchCompanies", mock.Anything, "Acme Plumbing Ltd", 5).Return(&companieshouse.SearchResponse{
		Items: []companieshouse.CompanySearch{
			{CompanyNumber: "00000001", Title: "ACME PLUMBING SUPPLIES LIMITED", CompanyStatus: "active"},
			{CompanyNumber: "00000002", Title: "ACME PLUMBING LIMITED", CompanyStatus: "dissolved"},
			{CompanyNumber: "00000003", Title: "ACME PLUMBING LTD", CompanyStatus: "active"},
		},
	}, nil)
	client.On("Officers", mock.Anything, "00000003").Return(&companieshouse.OfficersResponse{
		Items: []companieshouse.Officer{
			{Name: "JONES, Sarah Anne", OfficerRole: "director", AppointedOn: "2005-04-01", Occupation: "Plumber"},
			{Name: "O'BRIEN, Mary", OfficerRole: "secretary"},
			{Name: "BROWN, Tom", OfficerRole: "director", ResignedOn: "2019-01-01"},
			{Name: "ACME HOLDINGS LIMITED", OfficerRole: "corporate-director"},
		},
	}, nil)

	res := NewCompaniesHouse(client, noRetry).Fetch(context.Background(), acme)

	assert.Empty(t, res.Errors)
	assert.Equal(t, []string{IDCompaniesHouse}, res.SourcesUsed)
	require.Len(t, res.Candidates, 2)

	first := res.Candidates[0]
	assert.Equal(t, "Sarah Anne Jones", first.Name)
	assert.Equal(t, "Director", first.Title)
	assert.InDelta(t, 0.95, first.ExtractionConfidence, 1e-9)
	assert.Equal(t, "Sarah Anne Jones, Director of ACME PLUMBING LTD, appointed 2005-04-01. Occupation: Plumber", first.ContextSnippet)

	assert.Equal(t, "Mary O'Brien", res.Candidates[1].Name)
	assert.Equal(t, "Company Secretary", res.Candidates[1].Title)
	assert.Equal(t, "Mary O'Brien, Company Secretary of ACME PLUMBING LTD, listed at Companies House", res.Candidates[1].ContextSnippet)
}

func TestCompaniesHouse_NoMatch(t *testing.T) {
	t.Parallel()

	client := chmocks.NewMockClient(t)
	client.On("SearchCompanies", mock.Anything, "Acme Plumbing Ltd", 5).Return(&companieshouse.SearchResponse{
		Items: []companieshouse.CompanySearch{{CompanyNumber: "9", Title: "ZENITH BAKERY LTD", CompanyStatus: "active"}},
	}, nil)

	res := NewCompaniesHouse(client, noRetry).Fetch(context.Background(), acme)
	assert.Empty(t, res.Errors)
	assert.Empty(t, res.Candidates)
	assert.False(t, res.Failed())
}

func TestCompaniesHouse_SearchError(t *testing.T) {
	t.Parallel()

	client := chmocks.NewMockClient(t)
	client.On("SearchCompanies", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, &resilience.HTTPError{Service: "companies_house", StatusCode: 401})

	res := NewCompaniesHouse(client, noRetry).Fetch(context.Background(), acme)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, "companies_house: search: companies_house: http 401", res.Errors[0])
	assert.True(t, res.Failed())
}

func TestCompaniesHouse_RetriesTransient(t *testing.T) {
	t.Parallel()

	client := chmocks.NewMockClient(t)
	client.On("SearchCompanies", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, &resilience.HTTPError{StatusCode: 503}).Once()
	client.On("SearchCompanies", mock.Anything, mock.Anything, mock.Anything).
		Return(&companieshouse.SearchResponse{}, nil).Once()

	retry := WithRetry(resilience.RetryConfig{MaxAttempts: 2, InitialBackoff: 1, MaxBackoff: 1})
	res := NewCompaniesHouse(client, retry).Fetch(context.Background(), acme)
	assert.Empty(t, res.Errors)
}

func TestOfficerName(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"SMITH, John Michael": "John Michael Smith",
		"SMITH-JONES, Ann":    "Ann Smith-Jones",
		"O'NEILL, Liam":       "Liam O'Neill",
		"MADONNA":             "Madonna",
		"  LEE,  Wei ":        "Wei Lee",
		"":                    "",
	}
	for raw, want := range tests {
		assert.Equal(t, want, OfficerName(raw), raw)
	}
}

func TestOfficerTitle(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Director", OfficerTitle("director"))
	assert.Equal(t, "Designated Member", OfficerTitle("llp-designated-member"))
	assert.Equal(t, "Corporate Nominee Secretary", OfficerTitle("corporate-nominee-secretary"))
}

func TestNormalizeCompany(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "smith and sons plumbing", NormalizeCompany("Smith & Sons (Plumbing) Ltd."))
	assert.Equal(t, "acme", NormalizeCompany("THE ACME COMPANY LIMITED"))
}

// fakeFetcher serves pages by URL.
type fakeFetcher struct {
	pages map[string]*webpage.Page
	errs  map[string]error
	calls []string
}

func (f *fakeFetcher) Fetch(_ context.Context, rawURL string) (*webpage.Page, error) {
	f.calls = append(f.calls, rawURL)
	if err, ok := f.errs[rawURL]; ok {
		return nil, err
	}
	if p, ok := f.pages[rawURL]; ok {
		return p, nil
	}
	return nil, &resilience.HTTPError{Service: "website", StatusCode: 404}
}

func TestWebsite_Fetch(t *testing.T) {
	t.Parallel()

	f := &fakeFetcher{
		pages: map[string]*webpage.Page{
			"https://acmeplumbing.co.uk/": {
				URL:   "https://acmeplumbing.co.uk/",
				Title: "Acme Plumbing",
				Text:  "Family plumbers in Leeds\nCall 0113 496 0000",
				Links: []string{"https://acmeplumbing.co.uk/people", "https://acmeplumbing.co.uk/blog"},
			},
			"https://acmeplumbing.co.uk/people": {
				URL:      "https://acmeplumbing.co.uk/people",
				Text:     "Our People\nSarah Jones\nManaging Director\nsarah@acmeplumbing.co.uk",
				TeamText: []string{"Our People\nSarah Jones\nManaging Director\nsarah@acmeplumbing.co.uk"},
			},
		},
		errs: map[string]error{
			"https://acmeplumbing.co.uk/about": webpage.ErrDisallowed,
		},
	}
	w := NewWebsite(f, []WebsiteOption{WithPaths([]string{"/", "/about", "/team"}), WithMaxPages(5)}, noRetry)

	res := w.Fetch(context.Background(), acme)

	assert.Empty(t, res.Errors)
	assert.Equal(t, []string{
		"https://acmeplumbing.co.uk/",
		"https://acmeplumbing.co.uk/about",
		"https://acmeplumbing.co.uk/team",
		"https://acmeplumbing.co.uk/people",
	}, f.calls)

	require.Len(t, res.Documents, 2)
	assert.Equal(t, model.PageKindHome, res.Documents[0].Kind)
	assert.Equal(t, model.PageKindTeam, res.Documents[1].Kind)

	require.Len(t, res.Candidates, 1)
	assert.Equal(t, "Sarah Jones", res.Candidates[0].Name)
	assert.Equal(t, "Managing Director", res.Candidates[0].Title)
	assert.InDelta(t, teamConfidence, res.Candidates[0].ExtractionConfidence, 1e-9)
}

func TestWebsite_HomeFailure(t *testing.T) {
	t.Parallel()

	f := &fakeFetcher{errs: map[string]error{
		"https://acme.test/": errors.New("dial tcp: no such host"),
	}}
	w := NewWebsite(f, []WebsiteOption{WithPaths([]string{"/", "/team"})}, noRetry)

	res := w.Fetch(context.Background(), model.Query{CompanyName: "Acme", Website: "acme.test"})
	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0], "website: page https://acme.test/")
	assert.True(t, res.Failed())
}

func TestWebsite_MaxPagesAndEligibility(t *testing.T) {
	t.Parallel()

	f := &fakeFetcher{}
	w := NewWebsite(f, []WebsiteOption{WithMaxPages(2)}, noRetry)

	assert.False(t, w.Eligible(model.Query{CompanyName: "Acme"}))
	assert.True(t, w.Eligible(acme))

	res := w.Fetch(context.Background(), model.Query{CompanyName: "Acme"})
	assert.Empty(t, res.SourcesUsed)
	assert.Empty(t, f.calls)

	w.Fetch(context.Background(), acme)
	assert.Len(t, f.calls, 2)
}

func TestSearchEngine_Fetch(t *testing.T) {
	t.Parallel()

	client := googlemocks.NewMockClient(t)
	client.On("Search", mock.Anything, mock.MatchedBy(func(r google.SearchRequest) bool {
		return r.Query == `"Acme Plumbing Ltd" director OR owner OR "managing director"` && r.Num == 5 && r.SiteSearch == ""
	})).Return(&google.SearchResponse{Items: []google.Item{
		{
			Title:   "Sarah Jones - Managing Director - Acme Plumbing Ltd",
			Link:    "https://example.com/a",
			Snippet: "Sarah Jones has run the firm since 2005.",
		},
		{
			Title:   "Acme Plumbing Ltd - Reviews",
			Link:    "https://example.com/b",
			Snippet: "Tom Brown, Operations Manager, said the van fleet doubled.",
		},
	}}, nil)

	res := NewSearchEngine(client, 5, noRetry).Fetch(context.Background(), acme)

	assert.Empty(t, res.Errors)
	require.Len(t, res.Documents, 2)
	assert.Equal(t, model.PageKindSearch, res.Documents[0].Kind)
	require.Len(t, res.Candidates, 2)
	assert.Equal(t, "Sarah Jones", res.Candidates[0].Name)
	assert.Equal(t, "Managing Director", res.Candidates[0].Title)
	assert.InDelta(t, resultTitleConfidence, res.Candidates[0].ExtractionConfidence, 1e-9)
	assert.Equal(t, "Tom Brown", res.Candidates[1].Name)
	assert.InDelta(t, snippetConfidence, res.Candidates[1].ExtractionConfidence, 1e-9)
}

func TestParseResultTitle(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in         string
		name, role string
		ok         bool
	}{
		{"Sarah Jones - Managing Director - Acme Plumbing Ltd | LinkedIn", "Sarah Jones", "Managing Director", true},
		{"Tom Brown | Owner", "Tom Brown", "Owner", true},
		{"Mary O'Brien – Founder – Acme", "Mary O'Brien", "Founder", true},
		{"Acme Plumbing Ltd - Contact Us", "", "", false},
		{"Sarah Jones", "", "", false},
		{"plumbers in leeds - acme", "", "", false},
	}
	for _, tt := range tests {
		name, role, ok := ParseResultTitle(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.name, name, tt.in)
		assert.Equal(t, tt.role, role, tt.in)
	}
}

func TestLinkedInSearch_Fetch(t *testing.T) {
	t.Parallel()

	client := googlemocks.NewMockClient(t)
	client.On("Search", mock.Anything, mock.MatchedBy(func(r google.SearchRequest) bool {
		return r.SiteSearch == "linkedin.com/in"
	})).Return(&google.SearchResponse{Items: []google.Item{
		{
			Title:   "Sarah Jones - Managing Director - Acme Plumbing Ltd | LinkedIn",
			Link:    "https://uk.linkedin.com/in/Sarah-Jones-Acme",
			Snippet: "Leeds · Managing Director at Acme Plumbing",
		},
		{
			Title:   "Sarah Jones - Director - Zenith Bakery | LinkedIn",
			Link:    "https://uk.linkedin.com/in/sarah-jones-zenith",
			Snippet: "Bakery owner in York",
		},
		{
			Title: "Acme Plumbing Ltd | LinkedIn",
			Link:  "https://www.linkedin.com/company/acme-plumbing",
		},
	}}, nil)

	res := NewLinkedInSearch(client, 10, noRetry).Fetch(context.Background(), acme)

	assert.Empty(t, res.Errors)
	require.Len(t, res.Candidates, 1)
	c := res.Candidates[0]
	assert.Equal(t, "Sarah Jones", c.Name)
	assert.Equal(t, "https://www.linkedin.com/in/sarah-jones-acme", c.LinkedInURL)
	assert.Equal(t, IDLinkedInSearch, c.SourceID)
}

func TestLinkedInSearch_Error(t *testing.T) {
	t.Parallel()

	client := googlemocks.NewMockClient(t)
	client.On("Search", mock.Anything, mock.Anything).Return(nil, errors.New("quota exceeded"))

	res := NewLinkedInSearch(client, 10, noRetry).Fetch(context.Background(), acme)
	assert.Equal(t, []string{"linkedin_search: search: quota exceeded"}, res.Errors)
}

func TestEmailFinder_Fetch(t *testing.T) {
	t.Parallel()

	client := huntermocks.NewMockClient(t)
	client.On("DomainSearch", mock.Anything, "acmeplumbing.co.uk", 10).Return(&hunter.DomainSearchResponse{
		Data: hunter.DomainData{
			Organization: "Acme Plumbing",
			Emails: []hunter.Email{
				{Value: "sarah@acmeplumbing.co.uk", Type: "personal", Confidence: 97, FirstName: "Sarah", LastName: "Jones", Position: "Managing Director", PhoneNumber: "0113 496 0000"},
				{Value: "tom@acmeplumbing.co.uk", Type: "personal", Confidence: 60, FirstName: "Tom", LastName: "Brown"},
				{Value: "info@acmeplumbing.co.uk", Type: "generic", Confidence: 90},
				{Value: "ops@acmeplumbing.co.uk", Type: "personal", FirstName: "Ops"},
			},
		},
	}, nil)

	f := NewEmailFinder(client, noRetry)
	assert.True(t, f.Eligible(acme))
	assert.False(t, f.Eligible(model.Query{CompanyName: "Acme"}))

	res := f.Fetch(context.Background(), acme)

	require.Len(t, res.Candidates, 2)
	assert.Equal(t, "Sarah Jones", res.Candidates[0].Name)
	assert.Equal(t, "sarah@acmeplumbing.co.uk", res.Candidates[0].Email)
	assert.Equal(t, "0113 496 0000", res.Candidates[0].Phone)
	assert.InDelta(t, 0.9, res.Candidates[0].ExtractionConfidence, 1e-9)
	assert.InDelta(t, 0.6, res.Candidates[1].ExtractionConfidence, 1e-9)

	require.Len(t, res.Documents, 1)
	assert.Equal(t, "info@acmeplumbing.co.uk\nops@acmeplumbing.co.uk", res.Documents[0].Text)
}

func TestEmailFinder_NoDomain(t *testing.T) {
	t.Parallel()

	client := huntermocks.NewMockClient(t)
	res := NewEmailFinder(client, noRetry).Fetch(context.Background(), model.Query{CompanyName: "Acme"})
	assert.Empty(t, res.Candidates)
	assert.Empty(t, res.Errors)
	client.AssertNotCalled(t, "DomainSearch", mock.Anything, mock.Anything, mock.Anything)
}
