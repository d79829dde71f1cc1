package webpage

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/temoto/robotstxt"
)

const maxRobotsBody = 256 * 1024

// robotsEntry is a parsed robots.txt. A nil data means allow all.
type robotsEntry struct {
	data *robotstxt.RobotsData
}

// robots checks and caches robots.txt rules per host. Missing or unreadable
// files allow everything.
type robots struct {
	http      *http.Client
	userAgent string
	cache     *gocache.Cache
}

func newRobots(hc *http.Client, userAgent string, ttl time.Duration) *robots {
	return &robots{
		http:      hc,
		userAgent: userAgent,
		cache:     gocache.New(ttl, 2*ttl),
	}
}

// Allowed reports whether the user agent may fetch u.
func (r *robots) Allowed(ctx context.Context, u *url.URL) bool {
	e := r.entry(ctx, u)
	if e.data == nil {
		return true
	}
	path := u.EscapedPath()
	if path == "" {
		path = "/"
	}
	return e.data.TestAgent(path, r.userAgent)
}

// CrawlDelay returns the host's crawl-delay for the user agent, or zero.
func (r *robots) CrawlDelay(ctx context.Context, u *url.URL) time.Duration {
	e := r.entry(ctx, u)
	if e.data == nil {
		return 0
	}
	if g := e.data.FindGroup(r.userAgent); g != nil {
		return g.CrawlDelay
	}
	return 0
}

func (r *robots) entry(ctx context.Context, u *url.URL) robotsEntry {
	host := strings.ToLower(u.Host)
	if v, ok := r.cache.Get(host); ok {
		return v.(robotsEntry)
	}
	e := r.fetch(ctx, u.Scheme, host)
	r.cache.SetDefault(host, e)
	return e
}

func (r *robots) fetch(ctx context.Context, scheme, host string) robotsEntry {
	if scheme == "" {
		scheme = "https"
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, scheme+"://"+host+"/robots.txt", http.NoBody)
	if err != nil {
		return robotsEntry{}
	}
	req.Header.Set("User-Agent", r.userAgent)

	resp, err := r.http.Do(req)
	if err != nil {
		return robotsEntry{}
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return robotsEntry{}
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxRobotsBody))
	if err != nil {
		return robotsEntry{}
	}
	data, err := robotstxt.FromBytes(body)
	if err != nil {
		return robotsEntry{}
	}
	return robotsEntry{data: data}
}
