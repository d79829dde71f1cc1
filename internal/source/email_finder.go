package source

import (
	"context"
	"strings"

	"github.com/sells-group/exec-enrich/internal/model"
	"github.com/sells-group/exec-enrich/internal/resilience"
	"github.com/sells-group/exec-enrich/pkg/hunter"
)

const (
	maxFinderConfidence = 0.9
	finderLimit         = 10
)

// Eligible is implemented by adapters that cannot run for every query.
// Paid adapters are not charged for queries they are not eligible for.
type Eligible interface {
	Eligible(q model.Query) bool
}

// EmailFinder looks up people and addresses on the company's email domain.
// It is a paid source and needs a website.
type EmailFinder struct {
	base
	client hunter.Client
}

// NewEmailFinder creates the email finder adapter.
func NewEmailFinder(client hunter.Client, opts ...AdapterOption) *EmailFinder {
	return &EmailFinder{base: newBase(IDEmailFinder, opts), client: client}
}

// Eligible reports whether q has a domain to search.
func (f *EmailFinder) Eligible(q model.Query) bool {
	return q.Domain() != ""
}

// Fetch returns named people with their addresses. Role mailboxes such as
// info@ are returned as a Document for the unattributed contact report.
func (f *EmailFinder) Fetch(ctx context.Context, q model.Query) model.SourceResult {
	res := f.result()
	domain := q.Domain()
	if domain == "" {
		res.SourcesUsed = nil
		return res
	}

	resp, err := resilience.DoVal(ctx, f.retryFor("domain_search"), func(ctx context.Context) (*hunter.DomainSearchResponse, error) {
		return f.client.DomainSearch(ctx, domain, finderLimit)
	})
	if err != nil {
		return f.fail(res, "domain_search", err)
	}

	var generic []string
	for _, e := range resp.Data.Emails {
		name := e.FullName()
		if !e.Personal() || name == "" || !strings.Contains(name, " ") {
			if e.Value != "" {
				generic = append(generic, e.Value)
			}
			continue
		}
		conf := float64(e.Confidence) / 100
		if conf > maxFinderConfidence {
			conf = maxFinderConfidence
		}
		res.Candidates = append(res.Candidates, model.CandidateRecord{
			Name:                 name,
			Title:                e.Position,
			Email:                e.Value,
			Phone:                e.PhoneNumber,
			LinkedInURL:          e.LinkedIn,
			SourceID:             f.id,
			ExtractionConfidence: model.Clamp01(conf),
			ContextSnippet:       strings.TrimSpace(name + ", " + e.Position + " at " + resp.Data.Organization),
		})
	}
	if len(generic) > 0 {
		res.Documents = append(res.Documents, model.Document{
			SourceID: f.id,
			URL:      "https://" + domain,
			Kind:     model.PageKindContact,
			Text:     strings.Join(generic, "\n"),
		})
	}
	return res
}
