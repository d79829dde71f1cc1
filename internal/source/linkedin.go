package source

import (
	"context"
	"fmt"
	"strings"

	"github.com/sells-group/exec-enrich/internal/contact"
	"github.com/sells-group/exec-enrich/internal/model"
	"github.com/sells-group/exec-enrich/internal/resilience"
	"github.com/sells-group/exec-enrich/pkg/google"
)

const (
	profileConfidence = 0.75
	// minCompanyMention is the share of company name words a profile result
	// must mention to count as an employee.
	minCompanyMention = 0.5
)

// LinkedInSearch finds public profile pages of the company's people through
// a site-restricted web search. It is a paid source.
type LinkedInSearch struct {
	base
	client     google.Client
	maxResults int
}

// NewLinkedInSearch creates the professional network adapter.
func NewLinkedInSearch(client google.Client, maxResults int, opts ...AdapterOption) *LinkedInSearch {
	return &LinkedInSearch{base: newBase(IDLinkedInSearch, opts), client: client, maxResults: maxResults}
}

// Fetch returns one candidate per profile that mentions the company.
func (l *LinkedInSearch) Fetch(ctx context.Context, q model.Query) model.SourceResult {
	res := l.result()
	if strings.TrimSpace(q.CompanyName) == "" {
		return res
	}

	req := google.SearchRequest{
		Query:      fmt.Sprintf(`"%s" (director OR owner OR founder OR manager)`, q.CompanyName),
		SiteSearch: "linkedin.com/in",
		Num:        l.maxResults,
		Region:     "uk",
	}
	resp, err := resilience.DoVal(ctx, l.retryFor("search"), func(ctx context.Context) (*google.SearchResponse, error) {
		return l.client.Search(ctx, req)
	})
	if err != nil {
		return l.fail(res, "search", err)
	}

	company := NormalizeCompany(q.CompanyName)
	for _, it := range resp.Items {
		profile := contact.NormalizeLinkedIn(it.Link)
		if profile == "" {
			continue
		}
		name, title, ok := ParseResultTitle(it.Title)
		if !ok || mentionShare(company, it.Title+" "+it.Snippet) < minCompanyMention {
			continue
		}
		res.Candidates = mergeCandidates(res.Candidates, []model.CandidateRecord{{
			Name:                 name,
			Title:                title,
			LinkedInURL:          profile,
			SourceID:             l.id,
			ExtractionConfidence: profileConfidence,
			ContextSnippet:       it.Title + "\n" + it.Snippet,
		}})
	}
	return res
}

// mentionShare returns the share of the normalized company's words found
// in text.
func mentionShare(company, text string) float64 {
	words := strings.Fields(company)
	if len(words) == 0 {
		return 0
	}
	hay := " " + NormalizeCompany(text) + " "
	n := 0
	for _, w := range words {
		if strings.Contains(hay, " "+w+" ") {
			n++
		}
	}
	return float64(n) / float64(len(words))
}
