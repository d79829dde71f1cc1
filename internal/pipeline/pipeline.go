// Package pipeline runs one company through tier decision, source fan-out,
// name validation, contact attribution, seniority classification,
// aggregation, cross-validation and primary selection.
package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/exec-enrich/internal/aggregate"
	"github.com/sells-group/exec-enrich/internal/attribution"
	"github.com/sells-group/exec-enrich/internal/budget"
	"github.com/sells-group/exec-enrich/internal/cost"
	"github.com/sells-group/exec-enrich/internal/crossval"
	"github.com/sells-group/exec-enrich/internal/model"
	"github.com/sells-group/exec-enrich/internal/monitoring"
	"github.com/sells-group/exec-enrich/internal/seniority"
	"github.com/sells-group/exec-enrich/internal/source"
	"github.com/sells-group/exec-enrich/internal/validate"
)

// Phase names, in execution order.
const (
	PhaseDecideTier    = "decide_tier"
	PhaseFanOut        = "fan_out"
	PhaseValidateNames = "validate_names"
	PhaseAttribute     = "attribute_contacts"
	PhaseClassify      = "classify_seniority"
	PhaseAggregate     = "aggregate"
	PhaseCrossValidate = "cross_validate"
	PhaseSelectPrimary = "select_primary"
)

// Default selection parameters.
const (
	DefaultPrimaryFloor   = 0.6
	DefaultHighConfidence = 0.7
)

// TierDecider maps a lead onto a tier decision; nil means skip.
type TierDecider interface {
	Decide(ctx context.Context, lead model.Lead) *model.TierDecision
}

// ResultSaver persists finished results.
type ResultSaver interface {
	SaveResult(ctx context.Context, r *model.CompanyEnrichmentResult) error
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithCalculator sets source pricing. Sources without a price are free.
func WithCalculator(c *cost.Calculator) Option {
	return func(o *Orchestrator) { o.calc = c }
}

// WithNameValidator replaces the default name validator.
func WithNameValidator(v *validate.Validator) Option {
	return func(o *Orchestrator) { o.names = v }
}

// WithAttribution replaces the default attribution engine.
func WithAttribution(e *attribution.Engine) Option {
	return func(o *Orchestrator) { o.attrib = e }
}

// WithAggregator replaces the default aggregator.
func WithAggregator(a *aggregate.Aggregator) Option {
	return func(o *Orchestrator) { o.aggregator = a }
}

// WithCrossValidator replaces the default cross-validator.
func WithCrossValidator(v *crossval.Validator) Option {
	return func(o *Orchestrator) { o.crossval = v }
}

// WithCrossValidation toggles the cross-validation stage.
func WithCrossValidation(on bool) Option {
	return func(o *Orchestrator) { o.crossValidate = on }
}

// WithBusinessNameHeuristics toggles owner candidates derived from the
// company name itself.
func WithBusinessNameHeuristics(on bool) Option {
	return func(o *Orchestrator) { o.businessNames = on }
}

// WithPrimaryFloor sets the confidence a tier_1 profile needs to be
// preferred as primary decision maker.
func WithPrimaryFloor(f float64) Option {
	return func(o *Orchestrator) { o.primaryFloor = f }
}

// WithHighConfidence sets the threshold for the high confidence count.
func WithHighConfidence(f float64) Option {
	return func(o *Orchestrator) { o.highConfidence = f }
}

// WithRunOptions sets source timeouts and breakers for the fan-out.
func WithRunOptions(ro source.RunOptions) Option {
	return func(o *Orchestrator) { o.run = ro }
}

// WithStore persists every finished result.
func WithStore(s ResultSaver) Option {
	return func(o *Orchestrator) { o.store = s }
}

// WithMetrics records enrichment metrics.
func WithMetrics(m *monitoring.Metrics) Option {
	return func(o *Orchestrator) { o.metrics = m }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) { o.now = now }
}

// Orchestrator enriches one company at a time. It is safe for concurrent
// use; the ledger is the only state shared between calls.
type Orchestrator struct {
	decider  TierDecider
	ledger   budget.Ledger
	registry *source.Registry

	calc       *cost.Calculator
	names      *validate.Validator
	attrib     *attribution.Engine
	classifier *seniority.Classifier
	aggregator *aggregate.Aggregator
	crossval   *crossval.Validator

	crossValidate  bool
	businessNames  bool
	primaryFloor   float64
	highConfidence float64
	run            source.RunOptions

	store   ResultSaver
	metrics *monitoring.Metrics
	now     func() time.Time
}

// New creates an Orchestrator over the given tier decider, budget ledger
// and source registry.
func New(decider TierDecider, ledger budget.Ledger, registry *source.Registry, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		decider:        decider,
		ledger:         ledger,
		registry:       registry,
		calc:           cost.NewCalculator(cost.DefaultRates()),
		names:          validate.New(),
		attrib:         attribution.New(),
		classifier:     seniority.New(),
		aggregator:     aggregate.New(),
		crossval:       crossval.New(),
		crossValidate:  true,
		businessNames:  true,
		primaryFloor:   DefaultPrimaryFloor,
		highConfidence: DefaultHighConfidence,
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.registry == nil {
		o.registry = source.NewRegistry()
	}
	if o.run.Observe == nil && o.metrics != nil {
		o.run.Observe = o.metrics.ObserveSource
	}
	return o
}

// runState carries the per-call state through the stages.
type runState struct {
	lead     model.Lead
	query    model.Query
	decision *model.TierDecision
	log      *zap.Logger

	results    []model.SourceResult
	candidates []model.CandidateRecord
	raw        map[string][]model.CandidateRecord
	documents  []model.Document
	profiles   []model.ExecutiveProfile
}

// Enrich runs the full pipeline for one lead. It never returns nil and never
// panics: failures are reported through Status and ErrorMessage with
// whatever partial data was gathered.
func (o *Orchestrator) Enrich(ctx context.Context, lead model.Lead) *model.CompanyEnrichmentResult {
	start := o.now()
	lead.CompanyName = strings.TrimSpace(lead.CompanyName)
	lead.PriorityTier = model.ParsePriorityTier(string(lead.PriorityTier))

	result := &model.CompanyEnrichmentResult{
		CompanyName:       lead.CompanyName,
		Website:           lead.Website,
		LeadScore:         lead.LeadScore,
		PriorityTier:      lead.PriorityTier,
		ExecutiveProfiles: []model.ExecutiveProfile{},
		CreatedAt:         start.UTC(),
	}
	log := zap.L().With(zap.String("company", lead.CompanyName))
	log.Info("pipeline: starting enrichment")

	o.enrich(ctx, lead, result, log)

	result.ProcessingTimeMS = o.now().Sub(start).Milliseconds()
	if o.store != nil {
		if err := o.store.SaveResult(context.WithoutCancel(ctx), result); err != nil {
			log.Warn("pipeline: failed to save result", zap.Error(err))
		}
	}
	o.metrics.ObserveEnrichment(result)

	log.Info("pipeline: enrichment finished",
		zap.String("status", string(result.Status)),
		zap.Int("profiles", len(result.ExecutiveProfiles)),
		zap.Float64("cost", result.TotalCost),
		zap.Int64("duration_ms", result.ProcessingTimeMS),
	)
	return result
}

func (o *Orchestrator) enrich(ctx context.Context, lead model.Lead, result *model.CompanyEnrichmentResult, log *zap.Logger) {
	defer func() {
		if r := recover(); r != nil {
			result.Status = model.StatusFailed
			result.ErrorMessage = fmt.Sprintf("pipeline: unexpected failure: %v", r)
			log.Error("pipeline: recovered from panic", zap.Any("panic", r))
		}
	}()

	if lead.CompanyName == "" {
		result.Status = model.StatusFailed
		result.ErrorMessage = "pipeline: company name is required"
		return
	}

	// Phase tracking helper. A panicking phase is reported as a failed
	// phase and stops the run.
	trackPhase := func(name string, fn func() (map[string]any, error)) error {
		start := o.now()
		meta, err := safePhase(fn)
		duration := o.now().Sub(start).Milliseconds()

		pr := model.PhaseResult{Name: name, Duration: duration, Metadata: meta}
		if err != nil {
			pr.Status = model.PhaseStatusFailed
			pr.Error = err.Error()
			log.Error("pipeline: phase failed",
				zap.String("phase", name),
				zap.Int64("duration_ms", duration),
				zap.Error(err),
			)
		} else {
			pr.Status = model.PhaseStatusComplete
			log.Debug("pipeline: phase complete",
				zap.String("phase", name),
				zap.Int64("duration_ms", duration),
			)
		}
		result.Phases = append(result.Phases, pr)
		return err
	}
	fail := func(err error) {
		result.Status = model.StatusFailed
		result.ErrorMessage = err.Error()
	}

	r := &runState{
		lead:  lead,
		query: model.Query{CompanyName: lead.CompanyName, Website: lead.Website},
		log:   log,
	}

	// ===== decide_tier =====
	if err := trackPhase(PhaseDecideTier, func() (map[string]any, error) {
		r.decision = o.decider.Decide(ctx, lead)
		if r.decision == nil {
			return map[string]any{"qualified": false}, nil
		}
		return map[string]any{
			"tier":            r.decision.Tier,
			"budget":          r.decision.Budget,
			"allowed_sources": r.decision.AllowedSources,
			"downgraded":      r.decision.Downgraded,
		}, nil
	}); err != nil {
		fail(err)
		return
	}
	if r.decision == nil {
		result.Status = model.StatusSkipped
		result.TierDecision = &model.TierDecision{
			Tier:           model.TierD,
			AllowedSources: []string{},
			Reason:         fmt.Sprintf("score %.0f priority %s does not qualify", lead.LeadScore, lead.PriorityTier),
		}
		log.Info("pipeline: lead skipped", zap.String("reason", result.TierDecision.Reason))
		return
	}
	result.TierDecision = r.decision

	runCtx := ctx
	if d := r.decision.MaxProcessingTime; d > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, d)
		defer cancel()
	}

	// ===== fan_out =====
	if err := trackPhase(PhaseFanOut, func() (map[string]any, error) {
		o.fanOut(runCtx, r, result)
		cands := 0
		for _, res := range r.results {
			cands += len(res.Candidates)
		}
		return map[string]any{
			"sources":    len(r.results),
			"candidates": cands,
			"cost":       result.TotalCost,
		}, nil
	}); err != nil {
		fail(err)
		return
	}
	report := &result.ConfidenceReport
	if ctx.Err() == nil && runCtx.Err() == context.DeadlineExceeded {
		report.DeadlineExceeded = true
	}

	// ===== validate_names =====
	if err := trackPhase(PhaseValidateNames, func() (map[string]any, error) {
		report.DiscardedNames = o.validateNames(r)
		return map[string]any{
			"kept":      len(r.candidates),
			"discarded": len(report.DiscardedNames),
		}, nil
	}); err != nil {
		fail(err)
		return
	}

	// ===== attribute_contacts =====
	if err := trackPhase(PhaseAttribute, func() (map[string]any, error) {
		assigned, un := o.attribute(r)
		if !un.Empty() {
			report.Unattributed = &un
		}
		return map[string]any{
			"documents": len(r.documents),
			"assigned":  assigned,
		}, nil
	}); err != nil {
		fail(err)
		return
	}

	// ===== classify_seniority =====
	if err := trackPhase(PhaseClassify, func() (map[string]any, error) {
		dms := o.classify(r)
		return map[string]any{"decision_makers": dms}, nil
	}); err != nil {
		fail(err)
		return
	}

	// ===== aggregate =====
	if err := trackPhase(PhaseAggregate, func() (map[string]any, error) {
		r.profiles = o.aggregator.Aggregate(r.candidates)
		result.ExecutiveProfiles = r.profiles
		return map[string]any{"profiles": len(r.profiles)}, nil
	}); err != nil {
		fail(err)
		return
	}

	// ===== cross_validate =====
	if o.crossValidate && len(r.profiles) > 0 {
		if err := trackPhase(PhaseCrossValidate, func() (map[string]any, error) {
			counts := o.crossValidateProfiles(r)
			report.CrossValidation = counts
			result.ExecutiveProfiles = r.profiles
			return map[string]any{"statuses": counts}, nil
		}); err != nil {
			fail(err)
			return
		}
	}

	// ===== select_primary =====
	if err := trackPhase(PhaseSelectPrimary, func() (map[string]any, error) {
		if r.profiles == nil {
			r.profiles = []model.ExecutiveProfile{}
		}
		SortProfiles(r.profiles)
		result.ExecutiveProfiles = r.profiles
		result.PrimaryDecisionMaker = SelectPrimary(r.profiles, o.primaryFloor)
		o.summarize(result)
		meta := map[string]any{"profiles": len(r.profiles)}
		if p := result.PrimaryDecisionMaker; p != nil {
			meta["primary"] = p.Director.FullName
		}
		return meta, nil
	}); err != nil {
		fail(err)
		return
	}

	result.Status = model.StatusCompleted
	if len(report.SourcesFailed) > 0 || report.DeadlineExceeded {
		result.Status = model.StatusPartial
	}
}

// safePhase runs fn, converting a panic into an error.
func safePhase(fn func() (map[string]any, error)) (meta map[string]any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = eris.Errorf("panic: %v", r)
		}
	}()
	return fn()
}

// summarize fills the confidence report from the final profiles and
// source results.
func (o *Orchestrator) summarize(result *model.CompanyEnrichmentResult) {
	report := &result.ConfidenceReport
	report.ProfilesFound = len(result.ExecutiveProfiles)
	report.HighConfidenceCount = 0
	report.DecisionMakers = 0
	for _, p := range result.ExecutiveProfiles {
		if p.OverallConfidence >= o.highConfidence {
			report.HighConfidenceCount++
		}
		if p.Director.IsDecisionMaker {
			report.DecisionMakers++
		}
	}
	if p := result.PrimaryDecisionMaker; p != nil {
		report.OverallConfidence = p.OverallConfidence
	}
}
