// Package source defines the candidate source adapter contract, the
// concrete adapters and the concurrent runner that fans a company query out
// to them.
package source

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/exec-enrich/internal/model"
	"github.com/sells-group/exec-enrich/internal/resilience"
)

// Source identifiers.
const (
	IDCompaniesHouse = "companies_house"
	IDWebsite        = "website"
	IDSearchEngine   = "search_engine"
	IDLinkedInSearch = "linkedin_search"
	IDEmailFinder    = "email_finder"
)

// Adapter fetches candidate records for one company from one source. Fetch
// never panics or returns an error past its boundary: failures are carried
// in SourceResult.Errors.
type Adapter interface {
	ID() string
	Fetch(ctx context.Context, q model.Query) model.SourceResult
}

// Timeouter is implemented by adapters that carry their own time limit.
type Timeouter interface {
	Timeout() time.Duration
}

// Registry holds the configured adapters by id.
type Registry struct {
	mu       sync.RWMutex
	adapters map[string]Adapter
}

// NewRegistry creates a registry holding adapters.
func NewRegistry(adapters ...Adapter) *Registry {
	r := &Registry{adapters: make(map[string]Adapter, len(adapters))}
	for _, a := range adapters {
		r.Register(a)
	}
	return r
}

// Register adds an adapter, replacing any with the same id.
func (r *Registry) Register(a Adapter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.adapters[a.ID()] = a
}

// Get returns the adapter for id.
func (r *Registry) Get(id string) (Adapter, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.adapters[id]
	return a, ok
}

// IDs returns all registered ids, sorted.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.adapters))
	for id := range r.adapters {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Select returns the adapters for ids in the given order, skipping ids
// that are not registered.
func (r *Registry) Select(ids []string) []Adapter {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Adapter, 0, len(ids))
	for _, id := range ids {
		if a, ok := r.adapters[id]; ok {
			out = append(out, a)
		}
	}
	return out
}

// AdapterOption configures the shared settings of a concrete adapter.
type AdapterOption func(*base)

// WithTimeout sets the adapter's own time limit.
func WithTimeout(d time.Duration) AdapterOption {
	return func(b *base) { b.timeout = d }
}

// WithRetry sets the retry policy for the adapter's API calls.
func WithRetry(cfg resilience.RetryConfig) AdapterOption {
	return func(b *base) { b.retry = cfg }
}

// base holds settings common to every concrete adapter.
type base struct {
	id      string
	timeout time.Duration
	retry   resilience.RetryConfig
}

func newBase(id string, opts []AdapterOption) base {
	b := base{id: id, retry: resilience.DefaultRetryConfig()}
	for _, o := range opts {
		o(&b)
	}
	return b
}

func (b base) ID() string { return b.id }

// Timeout returns the adapter's own limit, or zero for the runner default.
func (b base) Timeout() time.Duration { return b.timeout }

// retryFor returns the retry policy with logging for one operation.
func (b base) retryFor(op string) resilience.RetryConfig {
	cfg := b.retry
	cfg.OnRetry = resilience.LogRetries(b.id, op)
	return cfg
}

func (b base) result() model.SourceResult {
	return model.SourceResult{SourceID: b.id, SourcesUsed: []string{b.id}}
}

func (b base) fail(res model.SourceResult, op string, err error) model.SourceResult {
	zap.L().Warn("source: fetch failed",
		zap.String("source", b.id),
		zap.String("operation", op),
		zap.Error(err),
	)
	res.Errors = append(res.Errors, fmt.Sprintf("%s: %s: %v", b.id, op, err))
	return res
}
