package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/exec-enrich/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS cost_entries (
	id           TEXT PRIMARY KEY,
	month        TEXT NOT NULL,
	company_name TEXT NOT NULL,
	source_id    TEXT NOT NULL,
	tier         TEXT NOT NULL,
	amount       REAL NOT NULL,
	created_at   DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS enrichment_results (
	id           TEXT PRIMARY KEY,
	company_name TEXT NOT NULL,
	status       TEXT NOT NULL,
	tier         TEXT,
	result       TEXT NOT NULL,
	created_at   DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_cost_entries_month ON cost_entries(month);
CREATE INDEX IF NOT EXISTS idx_results_status ON enrichment_results(status);
CREATE INDEX IF NOT EXISTS idx_results_company ON enrichment_results(company_name);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) AppendCostEntry(ctx context.Context, e model.CostEntry) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO cost_entries (id, month, company_name, source_id, tier, amount, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Month, e.CompanyName, e.SourceID, string(e.Tier), e.Amount, e.CreatedAt.UTC(),
	)
	return eris.Wrapf(err, "sqlite: insert cost entry %s", e.ID)
}

func (s *SQLiteStore) ListCostEntries(ctx context.Context, month string) ([]model.CostEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, month, company_name, source_id, tier, amount, created_at FROM cost_entries WHERE month = ? ORDER BY created_at ASC`,
		month,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list cost entries")
	}
	defer rows.Close()

	var out []model.CostEntry
	for rows.Next() {
		var e model.CostEntry
		var tier string
		if err := rows.Scan(&e.ID, &e.Month, &e.CompanyName, &e.SourceID, &tier, &e.Amount, &e.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan cost entry")
		}
		e.Tier = model.Tier(tier)
		out = append(out, e)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: list cost entries iterate")
}

func (s *SQLiteStore) SaveResult(ctx context.Context, r *model.CompanyEnrichmentResult) error {
	prepareResult(r)
	resultJSON, err := json.Marshal(r)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal result")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO enrichment_results (id, company_name, status, tier, result, created_at) VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET status = excluded.status, tier = excluded.tier, result = excluded.result`,
		r.ID, r.CompanyName, string(r.Status), resultTier(r), string(resultJSON), r.CreatedAt,
	)
	return eris.Wrapf(err, "sqlite: save result %s", r.ID)
}

func (s *SQLiteStore) GetResult(ctx context.Context, id string) (*model.CompanyEnrichmentResult, error) {
	row := s.db.QueryRowContext(ctx, `SELECT result FROM enrichment_results WHERE id = ?`, id)
	return scanResult(row)
}

func (s *SQLiteStore) ListResults(ctx context.Context, filter ResultFilter) ([]model.CompanyEnrichmentResult, error) {
	query := `SELECT result FROM enrichment_results WHERE 1=1`
	var args []any

	if filter.Status != "" {
		query += ` AND status = ?`
		args = append(args, string(filter.Status))
	}
	if filter.CompanyName != "" {
		query += ` AND company_name = ?`
		args = append(args, filter.CompanyName)
	}
	query += ` ORDER BY created_at DESC LIMIT ?`
	args = append(args, listLimit(filter.Limit))

	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list results")
	}
	defer rows.Close()

	var out []model.CompanyEnrichmentResult
	for rows.Next() {
		r, err := scanResult(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *r)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: list results iterate")
}

// helpers

type scannable interface {
	Scan(dest ...any) error
}

func scanResult(row scannable) (*model.CompanyEnrichmentResult, error) {
	var raw string
	err := row.Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: scan result")
	}
	var r model.CompanyEnrichmentResult
	if err := json.Unmarshal([]byte(raw), &r); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal result")
	}
	return &r, nil
}

func resultTier(r *model.CompanyEnrichmentResult) string {
	if r.TierDecision == nil {
		return ""
	}
	return string(r.TierDecision.Tier)
}
