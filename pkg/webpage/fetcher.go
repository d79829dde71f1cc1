// Package webpage fetches company web pages politely and reduces them to
// text for contact extraction.
package webpage

import (
	"context"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/exec-enrich/internal/resilience"
)

const (
	defaultUserAgent = "exec-enrich/1.0"
	maxBody          = 1 << 20
	hostTTL          = time.Hour
)

var (
	// ErrDisallowed is returned when robots.txt forbids a URL.
	ErrDisallowed = eris.New("webpage: disallowed by robots.txt")
	// ErrBlocked is returned when a page is an anti-bot challenge.
	ErrBlocked = eris.New("webpage: blocked")
	// ErrNotHTML is returned for non-HTML responses.
	ErrNotHTML = eris.New("webpage: not html")
)

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(f *Fetcher) { f.http = hc }
}

// WithUserAgent sets the User-Agent sent with every request.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		if ua != "" {
			f.userAgent = ua
		}
	}
}

// WithRateLimit caps requests per second to any single host. Zero or less
// disables the limit.
func WithRateLimit(rps float64) Option {
	return func(f *Fetcher) { f.rps = rps }
}

// WithRobots toggles robots.txt checks.
func WithRobots(respect bool) Option {
	return func(f *Fetcher) { f.respectRobots = respect }
}

// Fetcher downloads pages with a per-host rate limit and robots.txt checks.
// It is safe for concurrent use.
type Fetcher struct {
	http          *http.Client
	userAgent     string
	rps           float64
	respectRobots bool
	robots        *robots
	limiters      *gocache.Cache
}

// New creates a Fetcher. Robots checks are on by default.
func New(opts ...Option) *Fetcher {
	f := &Fetcher{
		http:          &http.Client{Timeout: 15 * time.Second},
		userAgent:     defaultUserAgent,
		rps:           1,
		respectRobots: true,
		limiters:      gocache.New(hostTTL, 2*hostTTL),
	}
	for _, o := range opts {
		o(f)
	}
	f.robots = newRobots(f.http, f.userAgent, hostTTL)
	return f
}

// Fetch downloads rawURL and parses it. Non-2xx responses come back as
// *resilience.HTTPError so callers can retry transient ones.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*Page, error) {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, eris.Errorf("webpage: invalid url %q", rawURL)
	}

	if f.respectRobots && !f.robots.Allowed(ctx, u) {
		return nil, eris.Wrapf(ErrDisallowed, "webpage: %s", rawURL)
	}
	if err := f.limiter(ctx, u).Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "webpage: rate limit wait")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), http.NoBody)
	if err != nil {
		return nil, eris.Wrap(err, "webpage: create request")
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := f.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "webpage: fetch")
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, eris.Wrap(err, "webpage: read body")
	}

	if blocked, kind := DetectBlock(resp, body); blocked {
		return nil, eris.Wrapf(ErrBlocked, "webpage: %s (%s)", rawURL, kind)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &resilience.HTTPError{Service: "website", StatusCode: resp.StatusCode}
	}
	if ct := resp.Header.Get("Content-Type"); ct != "" {
		if mt, _, _ := mime.ParseMediaType(ct); mt != "text/html" && mt != "application/xhtml+xml" {
			return nil, eris.Wrapf(ErrNotHTML, "webpage: %s is %s", rawURL, mt)
		}
	}

	final := rawURL
	if resp.Request != nil && resp.Request.URL != nil {
		final = resp.Request.URL.String()
	}
	page, err := Parse(final, body)
	if err != nil {
		return nil, err
	}
	page.StatusCode = resp.StatusCode

	zap.L().Debug("webpage: fetched",
		zap.String("url", final),
		zap.Int("bytes", len(body)),
		zap.Int("team_sections", len(page.TeamText)),
	)
	return page, nil
}

// limiter returns the host's limiter, slowed to the robots crawl-delay when
// that is stricter.
func (f *Fetcher) limiter(ctx context.Context, u *url.URL) *rate.Limiter {
	host := strings.ToLower(u.Host)
	if v, ok := f.limiters.Get(host); ok {
		return v.(*rate.Limiter)
	}

	limit := rate.Inf
	if f.rps > 0 {
		limit = rate.Limit(f.rps)
	}
	if f.respectRobots {
		if d := f.robots.CrawlDelay(ctx, u); d > 0 {
			if every := rate.Every(d); every < limit {
				limit = every
			}
		}
	}

	l := rate.NewLimiter(limit, 1)
	if err := f.limiters.Add(host, l, gocache.DefaultExpiration); err != nil {
		if v, ok := f.limiters.Get(host); ok {
			return v.(*rate.Limiter)
		}
	}
	return l
}
