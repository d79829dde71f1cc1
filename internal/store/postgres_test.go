package store

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/exec-enrich/internal/model"
)

// newMockPostgresStore creates a PostgresStore backed by pgxmock for unit testing.
func newMockPostgresStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	s := &PostgresStore{pool: mock}
	return s, mock
}

func TestPostgresStore_Migrate(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS cost_entries`).
		WillReturnResult(pgxmock.NewResult("CREATE", 0))

	require.NoError(t, s.Migrate(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_AppendCostEntry(t *testing.T) {
	s, mock := newMockPostgresStore(t)
	created := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	mock.ExpectExec(`INSERT INTO cost_entries`).
		WithArgs("e1", "2026-03", "Acme Ltd", "email_finder", "A", 0.10, created).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := s.AppendCostEntry(context.Background(), model.CostEntry{
		ID: "e1", Month: "2026-03", CompanyName: "Acme Ltd", SourceID: "email_finder",
		Tier: model.TierA, Amount: 0.10, CreatedAt: created,
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ListCostEntries(t *testing.T) {
	s, mock := newMockPostgresStore(t)
	created := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	rows := pgxmock.NewRows([]string{"id", "month", "company_name", "source_id", "tier", "amount", "created_at"}).
		AddRow("e1", "2026-03", "Acme Ltd", "email_finder", "A", 0.10, created).
		AddRow("e2", "2026-03", "Acme Ltd", "linkedin_search", "A", 0.05, created.Add(time.Minute))
	mock.ExpectQuery(`SELECT id, month, company_name, source_id, tier, amount, created_at FROM cost_entries WHERE month = \$1`).
		WithArgs("2026-03").
		WillReturnRows(rows)

	got, err := s.ListCostEntries(context.Background(), "2026-03")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "linkedin_search", got[1].SourceID)
	assert.Equal(t, model.TierA, got[1].Tier)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetResult_NotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT result FROM enrichment_results WHERE id = \$1`).
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	_, err := s.GetResult(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetResult(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	raw, err := json.Marshal(model.CompanyEnrichmentResult{ID: "r1", CompanyName: "Acme Ltd", Status: model.StatusPartial})
	require.NoError(t, err)
	mock.ExpectQuery(`SELECT result FROM enrichment_results`).
		WithArgs("r1").
		WillReturnRows(pgxmock.NewRows([]string{"result"}).AddRow(raw))

	got, err := s.GetResult(context.Background(), "r1")
	require.NoError(t, err)
	assert.Equal(t, "Acme Ltd", got.CompanyName)
	assert.Equal(t, model.StatusPartial, got.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_SaveResult_Upsert(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`ON CONFLICT \(id\) DO UPDATE`).
		WithArgs(pgxmock.AnyArg(), "Acme Ltd", "completed", "A", pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	r := sampleResult("Acme Ltd", model.StatusCompleted, time.Time{})
	require.NoError(t, s.SaveResult(context.Background(), r))
	assert.NotEmpty(t, r.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ListResults_Filters(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	raw, err := json.Marshal(model.CompanyEnrichmentResult{ID: "r1", CompanyName: "Acme Ltd", Status: model.StatusSkipped})
	require.NoError(t, err)
	mock.ExpectQuery(`AND status = \$1 AND company_name = \$2 ORDER BY created_at DESC LIMIT \$3 OFFSET \$4`).
		WithArgs("skipped", "Acme Ltd", 10, 20).
		WillReturnRows(pgxmock.NewRows([]string{"result"}).AddRow(raw))

	got, err := s.ListResults(context.Background(), ResultFilter{
		Status: model.StatusSkipped, CompanyName: "Acme Ltd", Limit: 10, Offset: 20,
	})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "r1", got[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
