package source

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/sells-group/exec-enrich/internal/model"
	"github.com/sells-group/exec-enrich/internal/resilience"
	"github.com/sells-group/exec-enrich/pkg/google"
)

const (
	// resultTitleConfidence applies to names parsed from a result title.
	resultTitleConfidence = 0.6
	// snippetConfidence applies to names found in result snippets.
	snippetConfidence = 0.5
)

var titleSepRe = regexp.MustCompile(`\s+[-–—|]\s+`)

var fullNameRe = regexp.MustCompile(`^` + nameWord + `(?:\s+(?:\p{Lu}\.|` + nameWord + `)){1,3}$`)

// SearchEngine looks for named executives in web search results.
type SearchEngine struct {
	base
	client     google.Client
	maxResults int
	extractor  *Extractor
}

// NewSearchEngine creates the web search adapter.
func NewSearchEngine(client google.Client, maxResults int, opts ...AdapterOption) *SearchEngine {
	return &SearchEngine{
		base:       newBase(IDSearchEngine, opts),
		client:     client,
		maxResults: maxResults,
		extractor:  NewExtractor(),
	}
}

// Fetch searches for the company's directors and owners. Snippets become
// Documents so their contacts can be attributed.
func (s *SearchEngine) Fetch(ctx context.Context, q model.Query) model.SourceResult {
	res := s.result()
	if strings.TrimSpace(q.CompanyName) == "" {
		return res
	}

	req := google.SearchRequest{
		Query:  fmt.Sprintf(`"%s" director OR owner OR "managing director"`, q.CompanyName),
		Num:    s.maxResults,
		Region: "uk",
	}
	resp, err := resilience.DoVal(ctx, s.retryFor("search"), func(ctx context.Context) (*google.SearchResponse, error) {
		return s.client.Search(ctx, req)
	})
	if err != nil {
		return s.fail(res, "search", err)
	}

	for _, it := range resp.Items {
		text := it.Title + "\n" + it.Snippet
		res.Documents = append(res.Documents, model.Document{
			SourceID: s.id,
			URL:      it.Link,
			Title:    it.Title,
			Kind:     model.PageKindSearch,
			Text:     text,
		})
		if name, title, ok := ParseResultTitle(it.Title); ok && title != "" {
			res.Candidates = mergeCandidates(res.Candidates, []model.CandidateRecord{{
				Name:                 name,
				Title:                title,
				SourceID:             s.id,
				ExtractionConfidence: resultTitleConfidence,
				ContextSnippet:       text,
			}})
		}
		res.Candidates = mergeCandidates(res.Candidates, s.extractor.Extract(it.Snippet, s.id, snippetConfidence))
	}
	return res
}

// ParseResultTitle splits result titles of the form
// "Name - Title - Company" or "Name | Title". It fails unless the first
// part looks like a person's name.
func ParseResultTitle(title string) (name, role string, ok bool) {
	title = strings.TrimSpace(title)
	for _, suffix := range []string{"| LinkedIn", "- LinkedIn", "... "} {
		title = strings.TrimSpace(strings.TrimSuffix(title, suffix))
	}
	parts := titleSepRe.Split(title, -1)
	if len(parts) < 2 {
		return "", "", false
	}
	name = strings.TrimSpace(parts[0])
	if !fullNameRe.MatchString(name) {
		return "", "", false
	}
	for _, w := range strings.Fields(name) {
		if nonName(w) {
			return "", "", false
		}
	}
	return name, strings.TrimSpace(parts[1]), true
}
