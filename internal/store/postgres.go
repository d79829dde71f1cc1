package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/exec-enrich/internal/model"
)

// Pool is the subset of pgxpool.Pool used by PostgresStore. pgxmock pools
// satisfy it in tests.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// queries holds the statements shared by the hot paths.
var queries = map[string]string{
	"insert_cost_entry": `INSERT INTO cost_entries (id, month, company_name, source_id, tier, amount, created_at) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
	"list_cost_entries": `SELECT id, month, company_name, source_id, tier, amount, created_at FROM cost_entries WHERE month = $1 ORDER BY created_at ASC`,
	"get_result":        `SELECT result FROM enrichment_results WHERE id = $1`,
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS cost_entries (
	id           TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	month        TEXT NOT NULL,
	company_name TEXT NOT NULL,
	source_id    TEXT NOT NULL,
	tier         TEXT NOT NULL,
	amount       NUMERIC(10,4) NOT NULL CHECK (amount >= 0),
	created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS enrichment_results (
	id           TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	company_name TEXT NOT NULL,
	status       TEXT NOT NULL,
	tier         TEXT,
	result       JSONB NOT NULL,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_cost_entries_month ON cost_entries(month);
CREATE INDEX IF NOT EXISTS idx_results_status ON enrichment_results(status);
CREATE INDEX IF NOT EXISTS idx_results_company ON enrichment_results(company_name);
CREATE INDEX IF NOT EXISTS idx_results_created_at ON enrichment_results(created_at DESC);
`

func (s *PostgresStore) Ping(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, "SELECT 1")
	return eris.Wrap(err, "postgres: ping")
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) AppendCostEntry(ctx context.Context, e model.CostEntry) error {
	_, err := s.pool.Exec(ctx, queries["insert_cost_entry"],
		e.ID, e.Month, e.CompanyName, e.SourceID, string(e.Tier), e.Amount, e.CreatedAt.UTC(),
	)
	return eris.Wrapf(err, "postgres: insert cost entry %s", e.ID)
}

func (s *PostgresStore) ListCostEntries(ctx context.Context, month string) ([]model.CostEntry, error) {
	rows, err := s.pool.Query(ctx, queries["list_cost_entries"], month)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list cost entries")
	}
	defer rows.Close()

	var out []model.CostEntry
	for rows.Next() {
		var e model.CostEntry
		var tier string
		if err := rows.Scan(&e.ID, &e.Month, &e.CompanyName, &e.SourceID, &tier, &e.Amount, &e.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan cost entry")
		}
		e.Tier = model.Tier(tier)
		out = append(out, e)
	}
	return out, eris.Wrap(rows.Err(), "postgres: list cost entries iterate")
}

func (s *PostgresStore) SaveResult(ctx context.Context, r *model.CompanyEnrichmentResult) error {
	prepareResult(r)
	resultJSON, err := json.Marshal(r)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal result")
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO enrichment_results (id, company_name, status, tier, result, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (id) DO UPDATE SET status = EXCLUDED.status, tier = EXCLUDED.tier, result = EXCLUDED.result`,
		r.ID, r.CompanyName, string(r.Status), resultTier(r), resultJSON, r.CreatedAt,
	)
	return eris.Wrapf(err, "postgres: save result %s", r.ID)
}

func (s *PostgresStore) GetResult(ctx context.Context, id string) (*model.CompanyEnrichmentResult, error) {
	var raw []byte
	err := s.pool.QueryRow(ctx, queries["get_result"], id).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get result %s", id)
	}
	var r model.CompanyEnrichmentResult
	if err := json.Unmarshal(raw, &r); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal result")
	}
	return &r, nil
}

func (s *PostgresStore) ListResults(ctx context.Context, filter ResultFilter) ([]model.CompanyEnrichmentResult, error) {
	query := `SELECT result FROM enrichment_results WHERE true`
	args := []any{}
	argIdx := 1

	if filter.Status != "" {
		query += fmt.Sprintf(` AND status = $%d`, argIdx)
		args = append(args, string(filter.Status))
		argIdx++
	}
	if filter.CompanyName != "" {
		query += fmt.Sprintf(` AND company_name = $%d`, argIdx)
		args = append(args, filter.CompanyName)
		argIdx++
	}
	query += fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d`, argIdx)
	args = append(args, listLimit(filter.Limit))
	argIdx++

	if filter.Offset > 0 {
		query += fmt.Sprintf(` OFFSET $%d`, argIdx)
		args = append(args, filter.Offset)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list results")
	}
	defer rows.Close()

	var out []model.CompanyEnrichmentResult
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, eris.Wrap(err, "postgres: scan result")
		}
		var r model.CompanyEnrichmentResult
		if err := json.Unmarshal(raw, &r); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal result")
		}
		out = append(out, r)
	}
	return out, eris.Wrap(rows.Err(), "postgres: list results iterate")
}
