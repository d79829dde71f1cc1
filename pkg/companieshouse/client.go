// Package companieshouse is a client for the Companies House public data API.
package companieshouse

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/sells-group/exec-enrich/internal/resilience"
)

const defaultBaseURL = "https://api.company-information.service.gov.uk"

// Client performs Companies House API operations.
type Client interface {
	SearchCompanies(ctx context.Context, query string, limit int) (*SearchResponse, error)
	Officers(ctx context.Context, companyNumber string) (*OfficersResponse, error)
}

// SearchResponse is the response from company search.
type SearchResponse struct {
	TotalResults int             `json:"total_results"`
	Items        []CompanySearch `json:"items"`
}

// CompanySearch is one company search hit.
type CompanySearch struct {
	CompanyNumber  string `json:"company_number"`
	Title          string `json:"title"`
	CompanyStatus  string `json:"company_status"`
	CompanyType    string `json:"company_type"`
	AddressSnippet string `json:"address_snippet"`
	DateOfCreation string `json:"date_of_creation"`
}

// Active reports whether the company is trading.
func (c CompanySearch) Active() bool {
	return c.CompanyStatus == "active"
}

// OfficersResponse is the officer list for one company.
type OfficersResponse struct {
	ActiveCount   int       `json:"active_count"`
	ResignedCount int       `json:"resigned_count"`
	Items         []Officer `json:"items"`
}

// Officer is a director, secretary or member of a company.
type Officer struct {
	Name        string `json:"name"`
	OfficerRole string `json:"officer_role"`
	Occupation  string `json:"occupation"`
	AppointedOn string `json:"appointed_on"`
	ResignedOn  string `json:"resigned_on,omitempty"`
	Nationality string `json:"nationality"`
}

// Active reports whether the officer has not resigned.
func (o Officer) Active() bool {
	return o.ResignedOn == ""
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(u string) Option {
	return func(c *httpClient) {
		if u != "" {
			c.baseURL = u
		}
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithRateLimit caps requests per second. Zero or less disables the limit.
func WithRateLimit(rps float64) Option {
	return func(c *httpClient) {
		if rps <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 1)
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
}

type httpClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
}

// NewClient creates a Companies House client. The API key is sent as the
// basic-auth username.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		http:    &http.Client{Timeout: 15 * time.Second},
		limiter: rate.NewLimiter(rate.Limit(2), 1),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *httpClient) SearchCompanies(ctx context.Context, query string, limit int) (*SearchResponse, error) {
	if limit <= 0 {
		limit = 5
	}
	q := url.Values{}
	q.Set("q", query)
	q.Set("items_per_page", strconv.Itoa(limit))

	var out SearchResponse
	if err := c.get(ctx, "/search/companies?"+q.Encode(), &out); err != nil {
		return nil, eris.Wrapf(err, "companieshouse: search %q", query)
	}
	return &out, nil
}

func (c *httpClient) Officers(ctx context.Context, companyNumber string) (*OfficersResponse, error) {
	path := "/company/" + url.PathEscape(companyNumber) + "/officers?items_per_page=100"

	var out OfficersResponse
	if err := c.get(ctx, path, &out); err != nil {
		return nil, eris.Wrapf(err, "companieshouse: officers %s", companyNumber)
	}
	return &out, nil
}

func (c *httpClient) get(ctx context.Context, path string, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return eris.Wrap(err, "rate limit wait")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, http.NoBody)
	if err != nil {
		return eris.Wrap(err, "create request")
	}
	req.SetBasicAuth(c.apiKey, "")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return eris.Wrap(err, "send request")
	}
	defer resp.Body.Close() //nolint:errcheck

	if err := resilience.CheckResponse("companies_house", resp); err != nil {
		return err
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return eris.Wrap(err, "decode response")
	}
	return nil
}
