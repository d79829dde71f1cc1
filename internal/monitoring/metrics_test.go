package monitoring

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/exec-enrich/internal/model"
	"github.com/sells-group/exec-enrich/internal/resilience"
)

func TestObserveSource(t *testing.T) {
	t.Parallel()

	m := NewMetrics(nil)
	m.ObserveSource(model.SourceResult{SourceID: "website", Candidates: make([]model.CandidateRecord, 3)}, 200*time.Millisecond)
	m.ObserveSource(model.SourceResult{SourceID: "website", Errors: []string{"website: boom"}}, time.Second)

	assert.InDelta(t, 1, testutil.ToFloat64(m.SourceFetches.WithLabelValues("website", "ok")), 1e-9)
	assert.InDelta(t, 1, testutil.ToFloat64(m.SourceFetches.WithLabelValues("website", "error")), 1e-9)
	assert.InDelta(t, 3, testutil.ToFloat64(m.SourceCands.WithLabelValues("website")), 1e-9)
}

func TestObserveCharge(t *testing.T) {
	t.Parallel()

	m := NewMetrics(nil)
	m.ObserveCharge("email_finder", model.TierA, 0.10, true)
	m.ObserveCharge("email_finder", model.TierA, 0.10, true)
	m.ObserveCharge("linkedin_search", model.TierB, 0.05, false)

	assert.InDelta(t, 0.20, testutil.ToFloat64(m.BudgetSpend.WithLabelValues("email_finder", "A")), 1e-9)
	assert.InDelta(t, 1, testutil.ToFloat64(m.BudgetRefused.WithLabelValues("linkedin_search")), 1e-9)
}

func TestObserveEnrichment(t *testing.T) {
	t.Parallel()

	m := NewMetrics(nil)
	m.ObserveEnrichment(&model.CompanyEnrichmentResult{
		Status:            model.StatusPartial,
		TierDecision:      &model.TierDecision{Tier: model.TierB},
		ExecutiveProfiles: make([]model.ExecutiveProfile, 2),
		ConfidenceReport:  model.ConfidenceReport{DeadlineExceeded: true},
		ProcessingTimeMS:  1500,
	})
	m.ObserveEnrichment(&model.CompanyEnrichmentResult{Status: model.StatusSkipped})
	m.ObserveEnrichment(nil)

	assert.InDelta(t, 1, testutil.ToFloat64(m.Enrichments.WithLabelValues("partial", "B")), 1e-9)
	assert.InDelta(t, 1, testutil.ToFloat64(m.Enrichments.WithLabelValues("skipped", "none")), 1e-9)
	assert.InDelta(t, 1, testutil.ToFloat64(m.DeadlineExceeded), 1e-9)
}

func TestBreakerChanged(t *testing.T) {
	t.Parallel()

	m := NewMetrics(nil)
	m.BreakerChanged("google", resilience.Closed, resilience.Open)
	assert.InDelta(t, 2, testutil.ToFloat64(m.BreakerState.WithLabelValues("google")), 1e-9)
	m.BreakerChanged("google", resilience.Open, resilience.HalfOpen)
	assert.InDelta(t, 1, testutil.ToFloat64(m.BreakerState.WithLabelValues("google")), 1e-9)
	m.BreakerChanged("google", resilience.HalfOpen, resilience.Closed)
	assert.InDelta(t, 0, testutil.ToFloat64(m.BreakerState.WithLabelValues("google")), 1e-9)
}

func TestNilMetricsIsNoop(t *testing.T) {
	t.Parallel()

	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveSource(model.SourceResult{SourceID: "x"}, time.Second)
		m.ObserveCharge("x", model.TierA, 1, true)
		m.ObserveEnrichment(&model.CompanyEnrichmentResult{})
		m.BreakerChanged("x", resilience.Closed, resilience.Open)
	})
}

func TestHandler(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	m.ObserveCharge("email_finder", model.TierA, 0.10, true)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Equal(t, 200, rec.Code)
	assert.Contains(t, string(body), `exec_enrich_budget_spend_total{source="email_finder",tier="A"} 0.1`)
}
