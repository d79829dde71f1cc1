package source

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"unicode"

	"go.uber.org/zap"

	"github.com/sells-group/exec-enrich/internal/fuzzy"
	"github.com/sells-group/exec-enrich/internal/model"
	"github.com/sells-group/exec-enrich/internal/resilience"
	"github.com/sells-group/exec-enrich/pkg/companieshouse"
)

const (
	// registryConfidence is the extraction confidence of a registered officer.
	registryConfidence = 0.95
	// minCompanyMatch is the lowest name similarity accepted for a search hit.
	minCompanyMatch = 0.75
	searchLimit     = 5
)

var companySuffixes = map[string]bool{
	"ltd": true, "limited": true, "plc": true, "llp": true, "lp": true,
	"co": true, "company": true, "the": true, "uk": true, "cic": true,
}

var officerTitles = map[string]string{
	"director":              "Director",
	"secretary":             "Company Secretary",
	"llp-member":            "Member",
	"llp-designated-member": "Designated Member",
	"member":                "Member",
	"managing-officer":      "Managing Officer",
	"nominee-director":      "Director",
	"judicial-factor":       "Judicial Factor",
	"receiver-and-manager":  "Receiver and Manager",
	"cic-manager":           "CIC Manager",
}

// CompaniesHouse reads active officers from the UK company register.
type CompaniesHouse struct {
	base
	client companieshouse.Client
}

// NewCompaniesHouse creates the registry adapter.
func NewCompaniesHouse(client companieshouse.Client, opts ...AdapterOption) *CompaniesHouse {
	return &CompaniesHouse{base: newBase(IDCompaniesHouse, opts), client: client}
}

// Fetch finds the best-matching company and returns its active individual
// officers. No match is an empty result, not an error.
func (c *CompaniesHouse) Fetch(ctx context.Context, q model.Query) model.SourceResult {
	res := c.result()
	if strings.TrimSpace(q.CompanyName) == "" {
		return res
	}

	search, err := resilience.DoVal(ctx, c.retryFor("search"), func(ctx context.Context) (*companieshouse.SearchResponse, error) {
		return c.client.SearchCompanies(ctx, q.CompanyName, searchLimit)
	})
	if err != nil {
		return c.fail(res, "search", err)
	}

	company, ok := BestCompany(q.CompanyName, search.Items)
	if !ok {
		zap.L().Debug("source: no registry match", zap.String("company", q.CompanyName))
		return res
	}

	officers, err := resilience.DoVal(ctx, c.retryFor("officers"), func(ctx context.Context) (*companieshouse.OfficersResponse, error) {
		return c.client.Officers(ctx, company.CompanyNumber)
	})
	if err != nil {
		if resilience.IsNotFound(err) {
			return res
		}
		return c.fail(res, "officers", err)
	}

	for _, o := range officers.Items {
		if !o.Active() || strings.HasPrefix(o.OfficerRole, "corporate-") {
			continue
		}
		name := OfficerName(o.Name)
		if name == "" {
			continue
		}
		title := OfficerTitle(o.OfficerRole)
		snippet := fmt.Sprintf("%s, %s of %s", name, title, company.Title)
		if o.AppointedOn != "" {
			snippet += ", appointed " + o.AppointedOn
		} else {
			snippet += ", listed at Companies House"
		}
		if o.Occupation != "" {
			snippet += ". Occupation: " + o.Occupation
		}
		res.Candidates = append(res.Candidates, model.CandidateRecord{
			Name:                 name,
			Title:                title,
			SourceID:             c.id,
			ExtractionConfidence: registryConfidence,
			ContextSnippet:       snippet,
		})
	}
	return res
}

// BestCompany picks the search hit whose name best matches name, preferring
// active companies. Hits below the match floor are ignored.
func BestCompany(name string, items []companieshouse.CompanySearch) (companieshouse.CompanySearch, bool) {
	type scored struct {
		item  companieshouse.CompanySearch
		score float64
	}
	want := NormalizeCompany(name)
	var hits []scored
	for _, it := range items {
		got := NormalizeCompany(it.Title)
		s := fuzzy.EditRatio(want, got)
		if o := fuzzy.TokenOverlap(want, got); o > s {
			s = o
		}
		if s >= minCompanyMatch {
			hits = append(hits, scored{it, s})
		}
	}
	if len(hits) == 0 {
		return companieshouse.CompanySearch{}, false
	}
	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].item.Active() != hits[j].item.Active() {
			return hits[i].item.Active()
		}
		return hits[i].score > hits[j].score
	})
	return hits[0].item, true
}

// NormalizeCompany lowercases a company name, spells out "&" and drops
// legal suffixes and punctuation.
func NormalizeCompany(name string) string {
	name = strings.ToLower(strings.ReplaceAll(name, "&", " and "))
	name = strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			return r
		}
		return ' '
	}, name)
	var out []string
	for _, w := range strings.Fields(name) {
		if !companySuffixes[w] {
			out = append(out, w)
		}
	}
	return strings.Join(out, " ")
}

// OfficerName turns the register's "SURNAME, Given Names" into
// "Given Names Surname".
func OfficerName(raw string) string {
	raw = strings.TrimSpace(raw)
	surname, given, ok := strings.Cut(raw, ",")
	if !ok {
		return titleCase(raw)
	}
	surname, given = strings.TrimSpace(surname), strings.TrimSpace(given)
	if given == "" {
		return titleCase(surname)
	}
	return strings.TrimSpace(given + " " + titleCase(surname))
}

// OfficerTitle maps an officer role to a job title.
func OfficerTitle(role string) string {
	if t, ok := officerTitles[role]; ok {
		return t
	}
	return titleCase(strings.ReplaceAll(role, "-", " "))
}

// titleCase capitalises each word, including after hyphens and apostrophes.
func titleCase(s string) string {
	rs := []rune(strings.ToLower(s))
	upper := true
	for i, r := range rs {
		if upper && unicode.IsLetter(r) {
			rs[i] = unicode.ToUpper(r)
		}
		upper = r == ' ' || r == '-' || r == '\'' || r == '’'
	}
	return string(rs)
}
