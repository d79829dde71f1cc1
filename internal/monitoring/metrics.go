// Package monitoring exposes Prometheus metrics for enrichment runs and
// summarises stored results into health snapshots.
package monitoring

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sells-group/exec-enrich/internal/model"
	"github.com/sells-group/exec-enrich/internal/resilience"
)

const namespace = "exec_enrich"

// Metrics holds the enrichment Prometheus metrics.
type Metrics struct {
	// Enrichment metrics
	Enrichments        *prometheus.CounterVec
	EnrichmentDuration *prometheus.HistogramVec
	ProfilesFound      prometheus.Histogram
	DeadlineExceeded   prometheus.Counter

	// Source metrics
	SourceFetches  *prometheus.CounterVec
	SourceDuration *prometheus.HistogramVec
	SourceCands    *prometheus.CounterVec
	BreakerState   *prometheus.GaugeVec

	// Budget metrics
	BudgetSpend   *prometheus.CounterVec
	BudgetRefused *prometheus.CounterVec

	gatherer prometheus.Gatherer
}

// NewMetrics registers the metrics with reg. A nil reg uses a fresh
// registry, which keeps tests independent of the global one.
func NewMetrics(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	f := promauto.With(reg)
	m := &Metrics{gatherer: reg}
	initEnrichmentMetrics(f, m)
	initSourceMetrics(f, m)
	initBudgetMetrics(f, m)
	return m
}

func initEnrichmentMetrics(f promauto.Factory, m *Metrics) {
	m.Enrichments = f.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "enrichments_total",
		Help:      "Enrichment calls by final status and tier",
	}, []string{"status", "tier"})

	m.EnrichmentDuration = f.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "enrichment_duration_seconds",
		Help:      "Wall time of one company enrichment",
		Buckets:   []float64{0.5, 1, 2.5, 5, 10, 20, 30, 60, 90, 120},
	}, []string{"tier"})

	m.ProfilesFound = f.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "profiles_per_company",
		Help:      "Executive profiles returned per enrichment",
		Buckets:   []float64{0, 1, 2, 3, 5, 8, 13, 21},
	})

	m.DeadlineExceeded = f.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "deadline_exceeded_total",
		Help:      "Enrichments that hit the tier processing ceiling",
	})
}

func initSourceMetrics(f promauto.Factory, m *Metrics) {
	m.SourceFetches = f.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "source_fetches_total",
		Help:      "Source adapter fetches by outcome (ok, error)",
	}, []string{"source", "outcome"})

	m.SourceDuration = f.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "source_fetch_duration_seconds",
		Help:      "Time spent in one source adapter fetch",
		Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20},
	}, []string{"source"})

	m.SourceCands = f.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "source_candidates_total",
		Help:      "Raw candidate records returned per source",
	}, []string{"source"})

	m.BreakerState = f.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "source_breaker_state",
		Help:      "Circuit breaker state per source (0 closed, 1 half-open, 2 open)",
	}, []string{"source"})
}

func initBudgetMetrics(f promauto.Factory, m *Metrics) {
	m.BudgetSpend = f.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "budget_spend_total",
		Help:      "Paid source spend recorded in the ledger",
	}, []string{"source", "tier"})

	m.BudgetRefused = f.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "budget_refused_total",
		Help:      "Paid source calls skipped because the ledger refused the charge",
	}, []string{"source"})
}

// Handler returns the HTTP handler for the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// ObserveSource records one adapter fetch.
func (m *Metrics) ObserveSource(res model.SourceResult, elapsed time.Duration) {
	if m == nil {
		return
	}
	outcome := "ok"
	if len(res.Errors) > 0 {
		outcome = "error"
	}
	m.SourceFetches.WithLabelValues(res.SourceID, outcome).Inc()
	m.SourceDuration.WithLabelValues(res.SourceID).Observe(elapsed.Seconds())
	m.SourceCands.WithLabelValues(res.SourceID).Add(float64(len(res.Candidates)))
}

// ObserveCharge records a ledger charge, or a refusal when charged is false.
func (m *Metrics) ObserveCharge(sourceID string, tier model.Tier, amount float64, charged bool) {
	if m == nil {
		return
	}
	if !charged {
		m.BudgetRefused.WithLabelValues(sourceID).Inc()
		return
	}
	m.BudgetSpend.WithLabelValues(sourceID, string(tier)).Add(amount)
}

// ObserveEnrichment records a finished enrichment.
func (m *Metrics) ObserveEnrichment(r *model.CompanyEnrichmentResult) {
	if m == nil || r == nil {
		return
	}
	tier := "none"
	if r.TierDecision != nil {
		tier = string(r.TierDecision.Tier)
	}
	m.Enrichments.WithLabelValues(string(r.Status), tier).Inc()
	if r.Status == model.StatusSkipped {
		return
	}
	m.EnrichmentDuration.WithLabelValues(tier).Observe(float64(r.ProcessingTimeMS) / 1000)
	m.ProfilesFound.Observe(float64(len(r.ExecutiveProfiles)))
	if r.ConfidenceReport.DeadlineExceeded {
		m.DeadlineExceeded.Inc()
	}
}

// BreakerChanged records a breaker transition. Its signature matches the
// callback taken by resilience.NewBreakers.
func (m *Metrics) BreakerChanged(name string, _, to resilience.State) {
	if m == nil {
		return
	}
	v := 0.0
	switch to {
	case resilience.HalfOpen:
		v = 1
	case resilience.Open:
		v = 2
	}
	m.BreakerState.WithLabelValues(name).Set(v)
}
