package pipeline

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/exec-enrich/internal/budget"
	"github.com/sells-group/exec-enrich/internal/model"
	"github.com/sells-group/exec-enrich/internal/source"
)

// fanOut reserves budget for paid sources, runs the authorized adapters
// concurrently and records per-source outcomes in the confidence report.
// A paid call is charged only when it returns usable data; any other
// outcome releases its reservation. Results keep
// the order of the decision's allowed sources.
func (o *Orchestrator) fanOut(ctx context.Context, r *runState, result *model.CompanyEnrichmentResult) {
	report := &result.ConfidenceReport

	var (
		order    []string
		runnable []source.Adapter
		done     = make(map[string]model.SourceResult)
		holds    = make(map[string]*budget.Hold)
		reserved float64
	)
	for _, id := range r.decision.AllowedSources {
		a, ok := o.registry.Get(id)
		if !ok {
			report.Notes = append(report.Notes, id+": not configured")
			continue
		}
		if e, ok := a.(source.Eligible); ok && !e.Eligible(r.query) {
			report.Notes = append(report.Notes, id+": skipped, no website")
			continue
		}
		order = append(order, id)

		if !o.calc.IsPaid(id) {
			runnable = append(runnable, a)
			continue
		}
		if p, ok := a.(source.Peeker); ok {
			if res, hit := p.Peek(r.query); hit {
				r.log.Debug("pipeline: cached paid source, not charged", zap.String("source", id))
				done[id] = res
				continue
			}
		}
		hold, err := o.reserve(ctx, r, id, o.calc.Call(id), reserved)
		if err != nil {
			done[id] = model.SourceResult{
				SourceID: id,
				Errors:   []string{fmt.Sprintf("%s: %v", id, err)},
			}
			continue
		}
		reserved += hold.Amount()
		holds[id] = hold
		runnable = append(runnable, a)
	}

	for _, res := range source.RunAll(ctx, runnable, r.query, o.run) {
		done[res.SourceID] = res
	}

	var spent float64
	for _, id := range order {
		res := done[id]
		res.SourceID = id
		if hold, ok := holds[id]; ok {
			res.Cost = o.settle(ctx, r, id, hold, res.Failed())
			spent += res.Cost
		}
		r.results = append(r.results, res)

		if len(res.Errors) > 0 {
			report.SourcesFailed = append(report.SourcesFailed, id)
			if report.SourceErrors == nil {
				report.SourceErrors = make(map[string]string)
			}
			report.SourceErrors[id] = strings.Join(res.Errors, "; ")
		} else {
			report.SourcesSucceeded = append(report.SourcesSucceeded, id)
		}
	}
	if report.SourcesSucceeded == nil {
		report.SourcesSucceeded = []string{}
	}
	if report.SourcesFailed == nil {
		report.SourcesFailed = []string{}
	}
	result.TotalCost = round2(spent)

	if o.businessNames {
		if cands := BusinessNameCandidates(r.query.CompanyName); len(cands) > 0 {
			r.results = append(r.results, model.SourceResult{
				SourceID:    BusinessNameSource,
				Candidates:  cands,
				SourcesUsed: []string{BusinessNameSource},
			})
		}
	}
}

// reserve sets amount aside for one paid source call. The company's tier
// budget is checked first, then the shared ledger, which refuses holds past
// the monthly limit.
func (o *Orchestrator) reserve(ctx context.Context, r *runState, sourceID string, amount, reserved float64) (*budget.Hold, error) {
	if reserved+amount > r.decision.Budget+1e-9 {
		o.metrics.ObserveCharge(sourceID, r.decision.Tier, amount, false)
		return nil, eris.Errorf("budget: tier budget %.2f exhausted", r.decision.Budget)
	}
	if o.ledger == nil {
		o.metrics.ObserveCharge(sourceID, r.decision.Tier, amount, false)
		return nil, eris.New("budget: no ledger configured")
	}
	hold, err := o.ledger.Reserve(ctx, model.CostEntry{
		CompanyName: r.lead.CompanyName,
		SourceID:    sourceID,
		Tier:        r.decision.Tier,
		Amount:      amount,
	})
	if err != nil {
		r.log.Warn("pipeline: paid source refused",
			zap.String("source", sourceID),
			zap.Float64("amount", amount),
			zap.Error(err),
		)
		o.metrics.ObserveCharge(sourceID, r.decision.Tier, amount, false)
		return nil, err
	}
	return hold, nil
}

// settle commits a successful call's hold and releases a failed one. It
// returns the amount charged.
func (o *Orchestrator) settle(ctx context.Context, r *runState, sourceID string, hold *budget.Hold, failed bool) float64 {
	if failed {
		hold.Release()
		r.log.Debug("pipeline: paid source failed, not charged", zap.String("source", sourceID))
		return 0
	}
	// The call already ran; a cancelled run must still record what it cost.
	if err := hold.Commit(context.WithoutCancel(ctx)); err != nil {
		r.log.Error("pipeline: paid source ran but was not recorded",
			zap.String("source", sourceID),
			zap.Float64("amount", hold.Amount()),
			zap.Error(err),
		)
		return 0
	}
	o.metrics.ObserveCharge(sourceID, r.decision.Tier, hold.Amount(), true)
	return hold.Amount()
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
