package pipeline

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/exec-enrich/internal/budget"
	"github.com/sells-group/exec-enrich/internal/cost"
	"github.com/sells-group/exec-enrich/internal/model"
	"github.com/sells-group/exec-enrich/internal/monitoring"
	"github.com/sells-group/exec-enrich/internal/resilience"
	"github.com/sells-group/exec-enrich/internal/source"
	"github.com/sells-group/exec-enrich/internal/store"
)

var fixedNow = time.Date(2026, 5, 14, 9, 0, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

// stubDecider returns a fixed decision for every lead.
type stubDecider struct {
	decision *model.TierDecision
	panics   bool
}

func (s stubDecider) Decide(context.Context, model.Lead) *model.TierDecision {
	if s.panics {
		panic("decider exploded")
	}
	if s.decision == nil {
		return nil
	}
	d := *s.decision
	return &d
}

type stubAdapter struct {
	id    string
	calls atomic.Int32
	fn    func(ctx context.Context, q model.Query) model.SourceResult
}

func (a *stubAdapter) ID() string { return a.id }

func (a *stubAdapter) Fetch(ctx context.Context, q model.Query) model.SourceResult {
	a.calls.Add(1)
	if a.fn == nil {
		return model.SourceResult{SourceID: a.id}
	}
	return a.fn(ctx, q)
}

type eligibleAdapter struct {
	*stubAdapter
	ok bool
}

func (a eligibleAdapter) Eligible(model.Query) bool { return a.ok }

func returns(res model.SourceResult) func(context.Context, model.Query) model.SourceResult {
	return func(context.Context, model.Query) model.SourceResult { return res }
}

var acmeLead = model.Lead{
	CompanyName:  "Acme Plumbing Ltd",
	LeadScore:    88,
	PriorityTier: model.PriorityA,
	Website:      "https://acmeplumbing.co.uk",
}

func tierA(sources ...string) *model.TierDecision {
	return &model.TierDecision{
		Tier:              model.TierA,
		Budget:            1.00,
		AllowedSources:    sources,
		MaxProcessingTime: 5 * time.Second,
	}
}

func registryWith(adapters ...source.Adapter) *source.Registry {
	return source.NewRegistry(adapters...)
}

func officers() *stubAdapter {
	return &stubAdapter{id: source.IDCompaniesHouse, fn: returns(model.SourceResult{
		Candidates: []model.CandidateRecord{{
			Name:                 "Sarah Jones",
			Title:                "Managing Director",
			ExtractionConfidence: 0.95,
			ContextSnippet:       "Sarah Jones, Managing Director",
		}},
		SourcesUsed: []string{source.IDCompaniesHouse},
	})}
}

func website() *stubAdapter {
	return &stubAdapter{id: source.IDWebsite, fn: returns(model.SourceResult{
		Candidates: []model.CandidateRecord{{
			Name:                 "Sarah Jones",
			Title:                "Managing Director",
			ExtractionConfidence: 0.8,
			ContextSnippet:       "Meet the team. Sarah Jones, Managing Director",
		}},
		Documents: []model.Document{{
			SourceID: source.IDWebsite,
			Kind:     model.PageKindTeam,
			Text:     "Meet the team. Contact: Sarah Jones, sarah@acmeplumbing.co.uk. General enquiries hello@acmeplumbing.co.uk",
		}},
		SourcesUsed: []string{source.IDWebsite},
	})}
}

func newOrchestrator(d TierDecider, ledger budget.Ledger, reg *source.Registry, opts ...Option) *Orchestrator {
	opts = append([]Option{WithClock(clock), WithBusinessNameHeuristics(false)}, opts...)
	return New(d, ledger, reg, opts...)
}

func phaseNames(r *model.CompanyEnrichmentResult) []string {
	var out []string
	for _, p := range r.Phases {
		out = append(out, p.Name)
	}
	return out
}

func TestEnrich_Completed(t *testing.T) {
	t.Parallel()

	o := newOrchestrator(
		stubDecider{decision: tierA(source.IDCompaniesHouse, source.IDWebsite)},
		budget.NewTracker(budget.NewMemoryStore(), 100),
		registryWith(officers(), website()),
	)

	res := o.Enrich(context.Background(), acmeLead)
	require.NotNil(t, res)

	assert.Equal(t, model.StatusCompleted, res.Status)
	assert.Empty(t, res.ErrorMessage)
	assert.Equal(t, []string{
		PhaseDecideTier, PhaseFanOut, PhaseValidateNames, PhaseAttribute,
		PhaseClassify, PhaseAggregate, PhaseCrossValidate, PhaseSelectPrimary,
	}, phaseNames(res))

	require.Len(t, res.ExecutiveProfiles, 1)
	sarah := res.ExecutiveProfiles[0]
	assert.Equal(t, "Sarah Jones", sarah.Director.FullName)
	assert.Equal(t, model.Tier1, sarah.Director.SeniorityTier)
	assert.Equal(t, "sarah@acmeplumbing.co.uk", sarah.Director.Email)
	assert.ElementsMatch(t, []string{source.IDCompaniesHouse, source.IDWebsite}, sarah.DiscoverySources)

	require.NotNil(t, res.PrimaryDecisionMaker)
	assert.Equal(t, "Sarah Jones", res.PrimaryDecisionMaker.Director.FullName)

	report := res.ConfidenceReport
	assert.Equal(t, 1, report.ProfilesFound)
	assert.Equal(t, []string{source.IDCompaniesHouse, source.IDWebsite}, report.SourcesSucceeded)
	assert.Empty(t, report.SourcesFailed)
	assert.InDelta(t, res.PrimaryDecisionMaker.OverallConfidence, report.OverallConfidence, 1e-9)
	require.NotNil(t, report.Unattributed)
	assert.Equal(t, []string{"hello@acmeplumbing.co.uk"}, report.Unattributed.Emails)
	assert.Zero(t, res.TotalCost)
	assert.Equal(t, model.TierA, res.TierDecision.Tier)
}

func TestEnrich_Skipped(t *testing.T) {
	t.Parallel()

	adapter := officers()
	o := newOrchestrator(stubDecider{}, nil, registryWith(adapter))

	res := o.Enrich(context.Background(), model.Lead{CompanyName: "Tiny Co", LeadScore: 20, PriorityTier: "c"})

	assert.Equal(t, model.StatusSkipped, res.Status)
	require.NotNil(t, res.TierDecision)
	assert.Equal(t, model.TierD, res.TierDecision.Tier)
	assert.Empty(t, res.TierDecision.AllowedSources)
	assert.Contains(t, res.TierDecision.Reason, "does not qualify")
	assert.NotNil(t, res.ExecutiveProfiles)
	assert.Empty(t, res.ExecutiveProfiles)
	assert.Equal(t, []string{PhaseDecideTier}, phaseNames(res))
	assert.Zero(t, adapter.calls.Load())
}

func TestEnrich_EmptyCompanyName(t *testing.T) {
	t.Parallel()

	o := newOrchestrator(stubDecider{decision: tierA()}, nil, nil)
	res := o.Enrich(context.Background(), model.Lead{CompanyName: "   ", LeadScore: 90})

	assert.Equal(t, model.StatusFailed, res.Status)
	assert.Contains(t, res.ErrorMessage, "company name is required")
	assert.NotNil(t, res.ExecutiveProfiles)
}

func TestEnrich_DeciderPanicFails(t *testing.T) {
	t.Parallel()

	o := newOrchestrator(stubDecider{panics: true}, nil, nil)
	res := o.Enrich(context.Background(), acmeLead)

	assert.Equal(t, model.StatusFailed, res.Status)
	assert.Contains(t, res.ErrorMessage, "decider exploded")
	require.Len(t, res.Phases, 1)
	assert.Equal(t, model.PhaseStatusFailed, res.Phases[0].Status)
}

func TestEnrich_PartialOnSourceFailure(t *testing.T) {
	t.Parallel()

	broken := &stubAdapter{id: source.IDSearchEngine, fn: returns(model.SourceResult{
		Errors: []string{"search_engine: http 503"},
	})}
	panicky := &stubAdapter{id: source.IDWebsite, fn: func(context.Context, model.Query) model.SourceResult {
		panic("parser bug")
	}}
	o := newOrchestrator(
		stubDecider{decision: tierA(source.IDCompaniesHouse, source.IDSearchEngine, source.IDWebsite)},
		nil,
		registryWith(officers(), broken, panicky),
	)

	res := o.Enrich(context.Background(), acmeLead)

	assert.Equal(t, model.StatusPartial, res.Status)
	assert.Equal(t, []string{source.IDCompaniesHouse}, res.ConfidenceReport.SourcesSucceeded)
	assert.Equal(t, []string{source.IDSearchEngine, source.IDWebsite}, res.ConfidenceReport.SourcesFailed)
	assert.Contains(t, res.ConfidenceReport.SourceErrors[source.IDSearchEngine], "http 503")
	assert.Contains(t, res.ConfidenceReport.SourceErrors[source.IDWebsite], "panic")
	require.Len(t, res.ExecutiveProfiles, 1)
	assert.Equal(t, "Sarah Jones", res.ExecutiveProfiles[0].Director.FullName)
}

func TestEnrich_DeadlineKeepsPartialData(t *testing.T) {
	t.Parallel()

	slow := &stubAdapter{id: source.IDSearchEngine, fn: func(ctx context.Context, _ model.Query) model.SourceResult {
		<-ctx.Done()
		return model.SourceResult{Errors: []string{"search_engine: " + ctx.Err().Error()}}
	}}
	d := tierA(source.IDCompaniesHouse, source.IDSearchEngine)
	d.MaxProcessingTime = 50 * time.Millisecond
	o := New(stubDecider{decision: d}, nil, registryWith(officers(), slow), WithBusinessNameHeuristics(false))

	res := o.Enrich(context.Background(), acmeLead)

	assert.Equal(t, model.StatusPartial, res.Status)
	assert.True(t, res.ConfidenceReport.DeadlineExceeded)
	assert.Contains(t, res.ConfidenceReport.SourcesFailed, source.IDSearchEngine)
	require.Len(t, res.ExecutiveProfiles, 1)
}

func TestEnrich_ChargesPaidSources(t *testing.T) {
	t.Parallel()

	tracker := budget.NewTracker(budget.NewMemoryStore(), 100, budget.WithClock(clock))
	finder := &stubAdapter{id: source.IDEmailFinder, fn: returns(model.SourceResult{
		Candidates: []model.CandidateRecord{{
			Name:                 "Sarah Jones",
			Title:                "Director",
			Email:                "sarah@acmeplumbing.co.uk",
			ExtractionConfidence: 0.9,
		}},
	})}
	o := newOrchestrator(
		stubDecider{decision: tierA(source.IDCompaniesHouse, source.IDEmailFinder)},
		tracker,
		registryWith(officers(), finder),
		WithCalculator(cost.NewCalculator(cost.DefaultRates())),
	)

	res := o.Enrich(context.Background(), acmeLead)

	assert.Equal(t, model.StatusCompleted, res.Status)
	assert.InDelta(t, 0.10, res.TotalCost, 1e-9)
	assert.Equal(t, int32(1), finder.calls.Load())

	report, err := tracker.Report(context.Background(), "")
	require.NoError(t, err)
	assert.InDelta(t, 0.10, report.Spent, 1e-9)
	assert.InDelta(t, 0.10, report.BySource[source.IDEmailFinder], 1e-9)
	assert.InDelta(t, 0.10, report.ByTier[model.TierA], 1e-9)
}

func TestEnrich_BudgetRefusalSkipsPaidSource(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		limit   float64
		budget  float64
		wantErr string
	}{
		{name: "monthly ledger exhausted", limit: 0.05, budget: 1.0, wantErr: "monthly budget exhausted"},
		{name: "company tier budget exhausted", limit: 100, budget: 0.05, wantErr: "tier budget 0.05 exhausted"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			tracker := budget.NewTracker(budget.NewMemoryStore(), tt.limit, budget.WithClock(clock))
			finder := &stubAdapter{id: source.IDEmailFinder}
			d := tierA(source.IDCompaniesHouse, source.IDEmailFinder)
			d.Budget = tt.budget
			metrics := monitoring.NewMetrics(nil)
			o := newOrchestrator(stubDecider{decision: d}, tracker, registryWith(officers(), finder), WithMetrics(metrics))

			res := o.Enrich(context.Background(), acmeLead)

			assert.Equal(t, model.StatusPartial, res.Status)
			assert.Zero(t, finder.calls.Load())
			assert.Zero(t, res.TotalCost)
			assert.Equal(t, []string{source.IDEmailFinder}, res.ConfidenceReport.SourcesFailed)
			assert.Contains(t, res.ConfidenceReport.SourceErrors[source.IDEmailFinder], tt.wantErr)
			assert.InDelta(t, 1, testutil.ToFloat64(metrics.BudgetRefused.WithLabelValues(source.IDEmailFinder)), 1e-9)

			remaining, err := tracker.Remaining(context.Background(), "")
			require.NoError(t, err)
			assert.InDelta(t, tt.limit, remaining, 1e-9)
		})
	}
}

func TestEnrich_FailedPaidSourceIsNotCharged(t *testing.T) {
	t.Parallel()

	tracker := budget.NewTracker(budget.NewMemoryStore(), 100, budget.WithClock(clock))
	finder := &stubAdapter{id: source.IDEmailFinder, fn: returns(model.SourceResult{
		Errors: []string{"email_finder: http 502"},
	})}
	breakers := resilience.NewBreakers(resilience.BreakerConfig{FailureThreshold: 1, ResetTimeout: time.Hour}, nil)
	metrics := monitoring.NewMetrics(nil)
	o := newOrchestrator(
		stubDecider{decision: tierA(source.IDCompaniesHouse, source.IDEmailFinder)},
		tracker,
		registryWith(officers(), finder),
		WithRunOptions(source.RunOptions{Breakers: breakers}),
		WithMetrics(metrics),
	)

	var last *model.CompanyEnrichmentResult
	for i := 0; i < 3; i++ {
		last = o.Enrich(context.Background(), acmeLead)

		assert.Equal(t, model.StatusPartial, last.Status)
		assert.Zero(t, last.TotalCost)
		assert.Equal(t, []string{source.IDEmailFinder}, last.ConfidenceReport.SourcesFailed)
		for _, res := range last.ConfidenceReport.SourcesSucceeded {
			assert.NotEqual(t, source.IDEmailFinder, res)
		}

		remaining, err := tracker.Remaining(context.Background(), "")
		require.NoError(t, err)
		assert.InDelta(t, 100, remaining, 1e-9, "run %d", i)
	}

	// The first call trips the breaker; later runs never reach the source.
	assert.Equal(t, int32(1), finder.calls.Load())
	assert.Contains(t, last.ConfidenceReport.SourceErrors[source.IDEmailFinder], "circuit open")

	report, err := tracker.Report(context.Background(), "")
	require.NoError(t, err)
	assert.Zero(t, report.Entries)
	assert.Zero(t, testutil.ToFloat64(metrics.BudgetSpend.WithLabelValues(source.IDEmailFinder, string(model.TierA))))
}

func TestEnrich_TimedOutPaidSourceIsNotCharged(t *testing.T) {
	t.Parallel()

	tracker := budget.NewTracker(budget.NewMemoryStore(), 100, budget.WithClock(clock))
	slow := &stubAdapter{id: source.IDEmailFinder, fn: func(ctx context.Context, _ model.Query) model.SourceResult {
		<-ctx.Done()
		return model.SourceResult{}
	}}
	o := newOrchestrator(
		stubDecider{decision: tierA(source.IDCompaniesHouse, source.IDEmailFinder)},
		tracker,
		registryWith(officers(), slow),
		WithRunOptions(source.RunOptions{Timeouts: map[string]time.Duration{source.IDEmailFinder: 20 * time.Millisecond}}),
	)

	res := o.Enrich(context.Background(), acmeLead)

	assert.Equal(t, model.StatusPartial, res.Status)
	assert.Contains(t, res.ConfidenceReport.SourceErrors[source.IDEmailFinder], "timed out")
	assert.Zero(t, res.TotalCost)
	remaining, err := tracker.Remaining(context.Background(), "")
	require.NoError(t, err)
	assert.InDelta(t, 100, remaining, 1e-9)
}

func TestEnrich_StageFailureKeepsPartialData(t *testing.T) {
	t.Parallel()

	tracker := budget.NewTracker(budget.NewMemoryStore(), 100, budget.WithClock(clock))
	finder := &stubAdapter{id: source.IDEmailFinder, fn: returns(model.SourceResult{
		Candidates: []model.CandidateRecord{{Name: "Sarah Jones", Email: "sarah@acmeplumbing.co.uk", ExtractionConfidence: 0.9}},
	})}
	// A missing validator makes the stage after fan-out panic.
	o := newOrchestrator(
		stubDecider{decision: tierA(source.IDCompaniesHouse, source.IDEmailFinder)},
		tracker,
		registryWith(officers(), finder),
		WithNameValidator(nil),
	)

	res := o.Enrich(context.Background(), acmeLead)

	assert.Equal(t, model.StatusFailed, res.Status)
	assert.Contains(t, res.ErrorMessage, "panic")
	require.NotNil(t, res.TierDecision)
	assert.Equal(t, model.TierA, res.TierDecision.Tier)
	assert.Equal(t, []string{source.IDCompaniesHouse, source.IDEmailFinder}, res.ConfidenceReport.SourcesSucceeded)
	assert.Empty(t, res.ConfidenceReport.SourcesFailed)
	assert.InDelta(t, 0.10, res.TotalCost, 1e-9)
	assert.Empty(t, res.ExecutiveProfiles)

	assert.Equal(t, []string{PhaseDecideTier, PhaseFanOut, PhaseValidateNames}, phaseNames(res))
	assert.Equal(t, model.PhaseStatusComplete, res.Phases[1].Status)
	assert.Equal(t, model.PhaseStatusFailed, res.Phases[2].Status)
	assert.Contains(t, res.Phases[2].Error, "panic")

	// The paid call ran, so its charge stands.
	report, err := tracker.Report(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, 1, report.Entries)
}

func TestEnrich_CachedPaidSourceIsFree(t *testing.T) {
	t.Parallel()

	tracker := budget.NewTracker(budget.NewMemoryStore(), 100, budget.WithClock(clock))
	inner := &stubAdapter{id: source.IDEmailFinder, fn: returns(model.SourceResult{
		Candidates: []model.CandidateRecord{{Name: "Sarah Jones", Email: "sarah@acmeplumbing.co.uk", ExtractionConfidence: 0.9}},
	})}
	cached := source.Cached(inner, time.Hour)
	o := newOrchestrator(stubDecider{decision: tierA(source.IDEmailFinder)}, tracker, registryWith(cached))

	first := o.Enrich(context.Background(), acmeLead)
	second := o.Enrich(context.Background(), acmeLead)

	assert.InDelta(t, 0.10, first.TotalCost, 1e-9)
	assert.Zero(t, second.TotalCost)
	assert.Equal(t, int32(1), inner.calls.Load())
	require.Len(t, second.ExecutiveProfiles, 1)
	assert.Equal(t, "sarah@acmeplumbing.co.uk", second.ExecutiveProfiles[0].Director.Email)

	report, err := tracker.Report(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, 1, report.Entries)
}

func TestEnrich_RegistryOfficerOutsideNameLexicon(t *testing.T) {
	t.Parallel()

	registry := &stubAdapter{id: source.IDCompaniesHouse, fn: returns(model.SourceResult{
		Candidates: []model.CandidateRecord{
			{
				Name:                 "Oluwaseun Adeyemi",
				Title:                "Director",
				ExtractionConfidence: 0.95,
				ContextSnippet:       "Oluwaseun Adeyemi, Director of ACME PLUMBING LTD, appointed 2019-03-01",
			},
			{
				Name:                 "Li Wei",
				Title:                "Company Secretary",
				ExtractionConfidence: 0.95,
				ContextSnippet:       "Li Wei, Company Secretary of ACME PLUMBING LTD, listed at Companies House",
			},
		},
		SourcesUsed: []string{source.IDCompaniesHouse},
	})}
	o := newOrchestrator(stubDecider{decision: tierA(source.IDCompaniesHouse)}, nil, registryWith(registry))

	res := o.Enrich(context.Background(), acmeLead)

	assert.Equal(t, model.StatusCompleted, res.Status)
	assert.Empty(t, res.ConfidenceReport.DiscardedNames)
	var names []string
	for _, p := range res.ExecutiveProfiles {
		names = append(names, p.Director.FullName)
	}
	assert.ElementsMatch(t, []string{"Oluwaseun Adeyemi", "Li Wei"}, names)
	assert.NotNil(t, res.PrimaryDecisionMaker)
}

func TestEnrich_IneligibleAndUnconfiguredSources(t *testing.T) {
	t.Parallel()

	site := eligibleAdapter{stubAdapter: &stubAdapter{id: source.IDWebsite}, ok: false}
	o := newOrchestrator(
		stubDecider{decision: tierA(source.IDCompaniesHouse, source.IDWebsite, source.IDSearchEngine)},
		nil,
		registryWith(officers(), site),
	)

	res := o.Enrich(context.Background(), model.Lead{CompanyName: "Acme Plumbing Ltd", LeadScore: 88, PriorityTier: "A"})

	assert.Equal(t, model.StatusCompleted, res.Status)
	assert.Zero(t, site.calls.Load())
	assert.Equal(t, []string{source.IDCompaniesHouse}, res.ConfidenceReport.SourcesSucceeded)
	assert.Contains(t, res.ConfidenceReport.Notes, "website: skipped, no website")
	assert.Contains(t, res.ConfidenceReport.Notes, "search_engine: not configured")
}

func TestEnrich_DiscardsInvalidNames(t *testing.T) {
	t.Parallel()

	noisy := &stubAdapter{id: source.IDSearchEngine, fn: returns(model.SourceResult{
		Candidates: []model.CandidateRecord{
			{Name: "Contact Us", ExtractionConfidence: 0.5},
			{Name: "Emergency Plumbing", ExtractionConfidence: 0.5},
		},
	})}
	o := newOrchestrator(stubDecider{decision: tierA(source.IDCompaniesHouse, source.IDSearchEngine)}, nil, registryWith(officers(), noisy))

	res := o.Enrich(context.Background(), acmeLead)

	require.Len(t, res.ExecutiveProfiles, 1)
	discarded := res.ConfidenceReport.DiscardedNames
	require.Len(t, discarded, 2)
	for _, d := range discarded {
		assert.Equal(t, source.IDSearchEngine, d.SourceID)
		assert.NotEmpty(t, d.Reasons)
	}
}

func TestEnrich_NoProfilesSkipsCrossValidation(t *testing.T) {
	t.Parallel()

	empty := &stubAdapter{id: source.IDCompaniesHouse}
	o := newOrchestrator(stubDecider{decision: tierA(source.IDCompaniesHouse)}, nil, registryWith(empty))

	res := o.Enrich(context.Background(), acmeLead)

	assert.Equal(t, model.StatusCompleted, res.Status)
	assert.NotContains(t, phaseNames(res), PhaseCrossValidate)
	assert.NotNil(t, res.ExecutiveProfiles)
	assert.Empty(t, res.ExecutiveProfiles)
	assert.Nil(t, res.PrimaryDecisionMaker)
	assert.Zero(t, res.ConfidenceReport.OverallConfidence)
}

func TestEnrich_CrossValidationDisabled(t *testing.T) {
	t.Parallel()

	o := newOrchestrator(
		stubDecider{decision: tierA(source.IDCompaniesHouse, source.IDWebsite)},
		nil,
		registryWith(officers(), website()),
		WithCrossValidation(false),
	)

	res := o.Enrich(context.Background(), acmeLead)

	assert.NotContains(t, phaseNames(res), PhaseCrossValidate)
	assert.Nil(t, res.ConfidenceReport.CrossValidation)
	require.Len(t, res.ExecutiveProfiles, 1)
}

func TestEnrich_SavesResultAndRecordsMetrics(t *testing.T) {
	t.Parallel()

	st := store.NewMemory()
	metrics := monitoring.NewMetrics(nil)
	o := newOrchestrator(
		stubDecider{decision: tierA(source.IDCompaniesHouse)},
		nil,
		registryWith(officers()),
		WithStore(st),
		WithMetrics(metrics),
	)

	res := o.Enrich(context.Background(), acmeLead)
	require.NotEmpty(t, res.ID)

	saved, err := st.GetResult(context.Background(), res.ID)
	require.NoError(t, err)
	assert.Equal(t, res.CompanyName, saved.CompanyName)
	assert.Equal(t, res.Status, saved.Status)

	assert.InDelta(t, 1, testutil.ToFloat64(metrics.Enrichments.WithLabelValues("completed", "A")), 1e-9)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.SourceFetches.WithLabelValues(source.IDCompaniesHouse, "ok")), 1e-9)
}

func TestEnrich_BusinessNameOwner(t *testing.T) {
	t.Parallel()

	empty := &stubAdapter{id: source.IDCompaniesHouse}
	o := New(stubDecider{decision: tierA(source.IDCompaniesHouse)}, nil, registryWith(empty))

	res := o.Enrich(context.Background(), model.Lead{CompanyName: "JAMES WILSON ELECTRICAL LTD", LeadScore: 85, PriorityTier: "A"})

	require.Len(t, res.ExecutiveProfiles, 1)
	assert.Equal(t, "James Wilson", res.ExecutiveProfiles[0].Director.FullName)
	assert.Equal(t, []string{BusinessNameSource}, res.ExecutiveProfiles[0].DiscoverySources)
	assert.Equal(t, []string{source.IDCompaniesHouse}, res.ConfidenceReport.SourcesSucceeded)
}
