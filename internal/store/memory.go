package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sells-group/exec-enrich/internal/budget"
	"github.com/sells-group/exec-enrich/internal/model"
)

// MemoryStore is a process-local Store for single runs and tests.
type MemoryStore struct {
	*budget.MemoryStore

	mu      sync.RWMutex
	results map[string]model.CompanyEnrichmentResult
}

// NewMemory creates an empty MemoryStore.
func NewMemory() *MemoryStore {
	return &MemoryStore{
		MemoryStore: budget.NewMemoryStore(),
		results:     make(map[string]model.CompanyEnrichmentResult),
	}
}

func (m *MemoryStore) Migrate(context.Context) error { return nil }

func (m *MemoryStore) Close() error { return nil }

func (m *MemoryStore) SaveResult(_ context.Context, r *model.CompanyEnrichmentResult) error {
	prepareResult(r)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results[r.ID] = *r
	return nil
}

func (m *MemoryStore) GetResult(_ context.Context, id string) (*model.CompanyEnrichmentResult, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.results[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &r, nil
}

func (m *MemoryStore) ListResults(_ context.Context, filter ResultFilter) ([]model.CompanyEnrichmentResult, error) {
	m.mu.RLock()
	var out []model.CompanyEnrichmentResult
	for _, r := range m.results {
		if filter.Status != "" && r.Status != filter.Status {
			continue
		}
		if filter.CompanyName != "" && r.CompanyName != filter.CompanyName {
			continue
		}
		out = append(out, r)
	}
	m.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if filter.Offset >= len(out) {
		return nil, nil
	}
	out = out[filter.Offset:]
	if limit := listLimit(filter.Limit); len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// prepareResult assigns an id and creation time when missing.
func prepareResult(r *model.CompanyEnrichmentResult) {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
}
