package source

import (
	"context"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/sells-group/exec-enrich/internal/model"
)

// Peeker is implemented by adapters that can answer from memory without
// calling, and so without cost.
type Peeker interface {
	Peek(q model.Query) (model.SourceResult, bool)
}

// CachedAdapter memoizes successful results per company for a TTL.
type CachedAdapter struct {
	Adapter
	cache *gocache.Cache
}

// Cached wraps a with a per-company result cache. Results with errors are
// never cached.
func Cached(a Adapter, ttl time.Duration) *CachedAdapter {
	return &CachedAdapter{Adapter: a, cache: gocache.New(ttl, 2*ttl)}
}

// Timeout forwards the wrapped adapter's limit.
func (c *CachedAdapter) Timeout() time.Duration {
	if t, ok := c.Adapter.(Timeouter); ok {
		return t.Timeout()
	}
	return 0
}

// Eligible forwards the wrapped adapter's eligibility check.
func (c *CachedAdapter) Eligible(q model.Query) bool {
	if e, ok := c.Adapter.(Eligible); ok {
		return e.Eligible(q)
	}
	return true
}

// Peek returns a cached result for q, if any.
func (c *CachedAdapter) Peek(q model.Query) (model.SourceResult, bool) {
	v, ok := c.cache.Get(cacheKey(q))
	if !ok {
		return model.SourceResult{}, false
	}
	res := clone(v.(model.SourceResult))
	res.Cost = 0
	return res, true
}

// Fetch serves from cache or calls the wrapped adapter.
func (c *CachedAdapter) Fetch(ctx context.Context, q model.Query) model.SourceResult {
	if res, ok := c.Peek(q); ok {
		return res
	}
	res := c.Adapter.Fetch(ctx, q)
	if len(res.Errors) == 0 {
		c.cache.SetDefault(cacheKey(q), clone(res))
	}
	return res
}

func cacheKey(q model.Query) string {
	return strings.ToLower(strings.Join(strings.Fields(q.CompanyName), " ")) + "|" + q.Domain()
}

// clone copies the slices later stages annotate in place.
func clone(r model.SourceResult) model.SourceResult {
	r.Candidates = append([]model.CandidateRecord(nil), r.Candidates...)
	r.Documents = append([]model.Document(nil), r.Documents...)
	r.SourcesUsed = append([]string(nil), r.SourcesUsed...)
	r.Errors = append([]string(nil), r.Errors...)
	return r
}
