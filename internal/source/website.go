package source

import (
	"context"
	"errors"
	"net/url"
	"strings"

	"github.com/sells-group/exec-enrich/internal/model"
	"github.com/sells-group/exec-enrich/internal/resilience"
	"github.com/sells-group/exec-enrich/pkg/webpage"
)

const (
	pageConfidence  = 0.7
	teamConfidence  = 0.8
	defaultMaxPages = 6
)

// DefaultPaths are the site paths tried when none are configured.
var DefaultPaths = []string{"/", "/about", "/about-us", "/team", "/our-team", "/contact", "/contact-us"}

// PageFetcher fetches one web page.
type PageFetcher interface {
	Fetch(ctx context.Context, rawURL string) (*webpage.Page, error)
}

// Website reads the company's own site: home, team, about and contact
// pages. Every page is returned as a Document for contact attribution.
type Website struct {
	base
	fetcher   PageFetcher
	paths     []string
	maxPages  int
	extractor *Extractor
}

// WebsiteOption configures the website adapter.
type WebsiteOption func(*Website)

// WithPaths sets the paths tried on every site.
func WithPaths(paths []string) WebsiteOption {
	return func(w *Website) {
		if len(paths) > 0 {
			w.paths = paths
		}
	}
}

// WithMaxPages caps pages fetched per company.
func WithMaxPages(n int) WebsiteOption {
	return func(w *Website) {
		if n > 0 {
			w.maxPages = n
		}
	}
}

// NewWebsite creates the website adapter.
func NewWebsite(fetcher PageFetcher, wopts []WebsiteOption, opts ...AdapterOption) *Website {
	w := &Website{
		base:      newBase(IDWebsite, opts),
		fetcher:   fetcher,
		paths:     DefaultPaths,
		maxPages:  defaultMaxPages,
		extractor: NewExtractor(),
	}
	for _, o := range wopts {
		o(w)
	}
	return w
}

// Fetch crawls the configured paths plus team-like links found on the way.
// Missing optional pages are not errors; a failed home page is.
func (w *Website) Fetch(ctx context.Context, q model.Query) model.SourceResult {
	res := w.result()
	root, ok := siteRoot(q.Website)
	if !ok {
		res.SourcesUsed = nil
		return res
	}

	queue := make([]string, 0, len(w.paths))
	queued := make(map[string]bool)
	push := func(u string) {
		key := strings.TrimSuffix(u, "/")
		if !queued[key] {
			queued[key] = true
			queue = append(queue, u)
		}
	}
	for _, p := range w.paths {
		push(root + "/" + strings.TrimPrefix(p, "/"))
	}

	seen := make(map[string]bool)
	fetched := 0
	for i := 0; i < len(queue) && fetched < w.maxPages; i++ {
		if ctx.Err() != nil {
			return w.fail(res, "crawl", ctx.Err())
		}
		target := queue[i]
		page, err := resilience.DoVal(ctx, w.retryFor("page"), func(ctx context.Context) (*webpage.Page, error) {
			return w.fetcher.Fetch(ctx, target)
		})
		fetched++
		if err != nil {
			if i == 0 || !optionalMiss(err) {
				res = w.fail(res, "page "+target, err)
			}
			continue
		}

		key := strings.TrimSuffix(page.URL, "/")
		if seen[key] {
			continue
		}
		seen[key] = true

		kind := kindOf(page.URL)
		if len(page.TeamText) > 0 && kind != model.PageKindHome {
			kind = model.PageKindTeam
		}
		res.Documents = append(res.Documents, model.Document{
			SourceID: w.id,
			URL:      page.URL,
			Title:    page.Title,
			Kind:     kind,
			Text:     page.Text,
		})
		res.Candidates = mergeCandidates(res.Candidates, w.candidates(page))

		for _, link := range page.Links {
			if k := kindOf(link); k == model.PageKindTeam || k == model.PageKindAbout {
				push(link)
			}
		}
	}

	if len(res.Documents) == 0 && len(res.Errors) == 0 {
		res.SourcesUsed = nil
	}
	return res
}

func (w *Website) candidates(page *webpage.Page) []model.CandidateRecord {
	var out []model.CandidateRecord
	for _, section := range page.TeamText {
		out = mergeCandidates(out, w.extractor.Extract(section, w.id, teamConfidence))
	}
	return mergeCandidates(out, w.extractor.Extract(page.Text, w.id, pageConfidence))
}

// optionalMiss reports errors that just mean a guessed path is absent or
// off limits.
func optionalMiss(err error) bool {
	var he *resilience.HTTPError
	if errors.As(err, &he) {
		return he.StatusCode == 404 || he.StatusCode == 410 || he.StatusCode == 403
	}
	return errors.Is(err, webpage.ErrDisallowed) || errors.Is(err, webpage.ErrNotHTML)
}

// siteRoot normalizes a website to scheme://host.
func siteRoot(website string) (string, bool) {
	website = strings.TrimSpace(website)
	if website == "" {
		return "", false
	}
	if !strings.Contains(website, "://") {
		website = "https://" + website
	}
	u, err := url.Parse(website)
	if err != nil || u.Host == "" {
		return "", false
	}
	return u.Scheme + "://" + u.Host, true
}

func kindOf(rawURL string) model.PageKind {
	u, err := url.Parse(rawURL)
	if err != nil {
		return model.PageKindOther
	}
	return model.ClassifyPath(u.Path)
}

// mergeCandidates appends add to into, skipping names already present.
func mergeCandidates(into, add []model.CandidateRecord) []model.CandidateRecord {
	have := make(map[string]bool, len(into))
	for _, c := range into {
		have[strings.ToLower(c.Name)] = true
	}
	for _, c := range add {
		if k := strings.ToLower(c.Name); !have[k] {
			have[k] = true
			into = append(into, c)
		}
	}
	return into
}

// Eligible reports whether q names a website.
func (w *Website) Eligible(q model.Query) bool {
	_, ok := siteRoot(q.Website)
	return ok
}
