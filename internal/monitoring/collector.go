package monitoring

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/exec-enrich/internal/model"
	"github.com/sells-group/exec-enrich/internal/store"
)

// maxScan bounds how many stored results one snapshot reads.
const maxScan = 10000

// Snapshot holds a point-in-time view of enrichment health.
type Snapshot struct {
	// Result metrics (within lookback window).
	Total            int     `json:"total"`
	Completed        int     `json:"completed"`
	Partial          int     `json:"partial"`
	Failed           int     `json:"failed"`
	Skipped          int     `json:"skipped"`
	FailRate         float64 `json:"fail_rate"`
	AvgProfiles      float64 `json:"avg_profiles"`
	AvgConfidence    float64 `json:"avg_confidence"`
	WithPrimary      int     `json:"with_primary"`
	DeadlineExceeded int     `json:"deadline_exceeded"`
	CostTotal        float64 `json:"cost_total"`

	// Budget for the current month.
	Budget *model.MonthlyBudgetReport `json:"budget,omitempty"`

	// Metadata.
	LookbackHours int       `json:"lookback_hours"`
	CollectedAt   time.Time `json:"collected_at"`
}

// BudgetReporter is the report side of the budget ledger.
type BudgetReporter interface {
	Report(ctx context.Context, month string) (*model.MonthlyBudgetReport, error)
}

// Collector gathers snapshots from the result store and budget ledger.
type Collector struct {
	store  store.Store
	budget BudgetReporter
	now    func() time.Time
}

// NewCollector creates a new snapshot collector. budget may be nil.
func NewCollector(st store.Store, budget BudgetReporter) *Collector {
	return &Collector{store: st, budget: budget, now: time.Now}
}

// Collect gathers a snapshot over the given lookback window.
func (c *Collector) Collect(ctx context.Context, lookbackHours int) (*Snapshot, error) {
	now := c.now().UTC()
	snap := &Snapshot{
		LookbackHours: lookbackHours,
		CollectedAt:   now,
	}
	cutoff := now.Add(-time.Duration(lookbackHours) * time.Hour)

	results, err := c.store.ListResults(ctx, store.ResultFilter{Limit: maxScan})
	if err != nil {
		return nil, eris.Wrap(err, "monitoring: list results")
	}

	var profiles int
	var confidence float64
	var enriched int
	for _, r := range results {
		if r.CreatedAt.Before(cutoff) {
			continue
		}
		snap.Total++
		switch r.Status {
		case model.StatusCompleted:
			snap.Completed++
		case model.StatusPartial:
			snap.Partial++
		case model.StatusFailed:
			snap.Failed++
		case model.StatusSkipped:
			snap.Skipped++
			continue
		}
		enriched++
		profiles += len(r.ExecutiveProfiles)
		confidence += r.ConfidenceReport.OverallConfidence
		snap.CostTotal += r.TotalCost
		if r.PrimaryDecisionMaker != nil {
			snap.WithPrimary++
		}
		if r.ConfidenceReport.DeadlineExceeded {
			snap.DeadlineExceeded++
		}
	}

	if enriched > 0 {
		snap.FailRate = float64(snap.Failed) / float64(enriched)
		snap.AvgProfiles = float64(profiles) / float64(enriched)
		snap.AvgConfidence = confidence / float64(enriched)
	}

	if c.budget != nil {
		report, err := c.budget.Report(ctx, model.MonthKey(now))
		if err != nil {
			return nil, eris.Wrap(err, "monitoring: budget report")
		}
		snap.Budget = report
	}
	return snap, nil
}
