package store

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/exec-enrich/internal/budget"
	"github.com/sells-group/exec-enrich/internal/model"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = eris.New("store: not found")

// ResultFilter specifies criteria for listing enrichment results.
type ResultFilter struct {
	Status      model.EnrichmentStatus `json:"status,omitempty"`
	CompanyName string                 `json:"company_name,omitempty"`
	Limit       int                    `json:"limit,omitempty"`
	Offset      int                    `json:"offset,omitempty"`
}

// Store defines the persistence interface for enrichment results and the
// budget ledger.
type Store interface {
	budget.EntryStore

	// Results
	SaveResult(ctx context.Context, r *model.CompanyEnrichmentResult) error
	GetResult(ctx context.Context, id string) (*model.CompanyEnrichmentResult, error)
	ListResults(ctx context.Context, filter ResultFilter) ([]model.CompanyEnrichmentResult, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

// Config selects and locates a store.
type Config struct {
	Driver      string
	DatabaseURL string
}

// Open creates the store named by cfg.Driver and migrates it.
func Open(ctx context.Context, cfg Config) (Store, error) {
	var (
		s   Store
		err error
	)
	switch cfg.Driver {
	case "memory":
		s = NewMemory()
	case "sqlite", "":
		s, err = NewSQLite(cfg.DatabaseURL)
	case "postgres":
		s, err = NewPostgres(ctx, cfg.DatabaseURL, nil)
	default:
		return nil, eris.Errorf("store: unknown driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, err
	}
	if err := s.Migrate(ctx); err != nil {
		s.Close() //nolint:errcheck
		return nil, err
	}
	return s, nil
}

const defaultListLimit = 100

func listLimit(n int) int {
	if n <= 0 {
		return defaultListLimit
	}
	return n
}
