// Package hunter is a client for the Hunter.io domain search API.
package hunter

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/exec-enrich/internal/resilience"
)

const defaultBaseURL = "https://api.hunter.io/v2"

// Client performs Hunter API operations.
type Client interface {
	DomainSearch(ctx context.Context, domain string, limit int) (*DomainSearchResponse, error)
}

// DomainSearchResponse is the response from domain search.
type DomainSearchResponse struct {
	Data DomainData `json:"data"`
}

// DomainData holds the organization and the people found on a domain.
type DomainData struct {
	Domain       string  `json:"domain"`
	Organization string  `json:"organization"`
	Pattern      string  `json:"pattern"`
	Emails       []Email `json:"emails"`
}

// Email is one person-level result. Confidence is 0-100.
type Email struct {
	Value       string `json:"value"`
	Type        string `json:"type"`
	Confidence  int    `json:"confidence"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Position    string `json:"position"`
	Seniority   string `json:"seniority"`
	Department  string `json:"department"`
	LinkedIn    string `json:"linkedin"`
	PhoneNumber string `json:"phone_number"`
}

// FullName joins the first and last names.
func (e Email) FullName() string {
	switch {
	case e.FirstName == "":
		return e.LastName
	case e.LastName == "":
		return e.FirstName
	default:
		return e.FirstName + " " + e.LastName
	}
}

// Personal reports whether the address belongs to a person rather than a
// role mailbox such as info@.
func (e Email) Personal() bool {
	return e.Type == "personal"
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

type httpClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

// NewClient creates a Hunter client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *httpClient) DomainSearch(ctx context.Context, domain string, limit int) (*DomainSearchResponse, error) {
	if domain == "" {
		return nil, eris.New("hunter: empty domain")
	}
	if limit <= 0 {
		limit = 10
	}
	q := url.Values{}
	q.Set("domain", domain)
	q.Set("limit", strconv.Itoa(limit))
	q.Set("api_key", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/domain-search?"+q.Encode(), http.NoBody)
	if err != nil {
		return nil, eris.Wrap(err, "hunter: create request")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "hunter: send request")
	}
	defer resp.Body.Close() //nolint:errcheck

	if err := resilience.CheckResponse("hunter", resp); err != nil {
		return nil, err
	}

	var out DomainSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, eris.Wrap(err, "hunter: decode response")
	}
	return &out, nil
}
