// Package tiering decides how much budget and which sources a lead earns.
package tiering

import (
	"context"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/exec-enrich/internal/cost"
	"github.com/sells-group/exec-enrich/internal/model"
)

// Default decision parameters.
const (
	DefaultFloor        = 0.10
	DefaultQualifyScore = 50.0
)

// DefaultFreeSources are always authorized for a qualifying lead.
var DefaultFreeSources = []string{"companies_house", "website", "search_engine"}

// RemainingReader is the read side of the budget ledger.
type RemainingReader interface {
	Remaining(ctx context.Context, month string) (float64, error)
}

// TierSpec is the nominal allowance for one tier.
type TierSpec struct {
	Budget            float64
	MaxProcessingTime time.Duration
}

// DefaultTiers returns the nominal allowances in GBP.
func DefaultTiers() map[model.Tier]TierSpec {
	return map[model.Tier]TierSpec{
		model.TierA: {Budget: 1.00, MaxProcessingTime: 90 * time.Second},
		model.TierB: {Budget: 0.40, MaxProcessingTime: 60 * time.Second},
		model.TierC: {Budget: 0, MaxProcessingTime: 30 * time.Second},
	}
}

// Option configures a Decider.
type Option func(*Decider)

// WithTiers overrides tier allowances.
func WithTiers(tiers map[model.Tier]TierSpec) Option {
	return func(d *Decider) {
		for k, v := range tiers {
			d.tiers[k] = v
		}
	}
}

// WithFloor sets the minimum budget an A or B lead needs to keep its tier.
func WithFloor(f float64) Option {
	return func(d *Decider) { d.floor = f }
}

// WithQualifyScore sets the lead score a tier C lead needs.
func WithQualifyScore(s float64) Option {
	return func(d *Decider) { d.qualifyC = s }
}

// WithFreeSources replaces the always-allowed source list.
func WithFreeSources(ids ...string) Option {
	return func(d *Decider) { d.free = append([]string(nil), ids...) }
}

// WithClock overrides the time source used to pick the budget month.
func WithClock(now func() time.Time) Option {
	return func(d *Decider) { d.now = now }
}

// Decider maps a lead onto a TierDecision. It reads the ledger but never
// spends from it.
type Decider struct {
	ledger   RemainingReader
	calc     *cost.Calculator
	tiers    map[model.Tier]TierSpec
	floor    float64
	qualifyC float64
	free     []string
	now      func() time.Time
}

// New creates a Decider.
func New(ledger RemainingReader, calc *cost.Calculator, opts ...Option) *Decider {
	if calc == nil {
		calc = cost.NewCalculator(cost.DefaultRates())
	}
	d := &Decider{
		ledger:   ledger,
		calc:     calc,
		tiers:    DefaultTiers(),
		floor:    DefaultFloor,
		qualifyC: DefaultQualifyScore,
		free:     append([]string(nil), DefaultFreeSources...),
		now:      time.Now,
	}
	for _, o := range opts {
		o(d)
	}
	return d
}

// Resolve maps a lead score and priority onto a tier.
func Resolve(score float64, priority model.PriorityTier) model.Tier {
	switch {
	case score >= 80 && priority == model.PriorityA:
		return model.TierA
	case score >= 60 && (priority == model.PriorityA || priority == model.PriorityB):
		return model.TierB
	case score >= 40:
		return model.TierC
	default:
		return model.TierD
	}
}

// Qualifies reports whether a resolved tier is worth enriching.
func Qualifies(tier model.Tier, score, qualifyC float64) bool {
	switch tier {
	case model.TierA, model.TierB:
		return true
	case model.TierC:
		return score >= qualifyC
	default:
		return false
	}
}

// Decide returns the tier decision for a lead, or nil when the lead should
// be skipped.
func (d *Decider) Decide(ctx context.Context, lead model.Lead) *model.TierDecision {
	tier := Resolve(lead.LeadScore, lead.PriorityTier)
	if !Qualifies(tier, lead.LeadScore, d.qualifyC) {
		zap.L().Debug("tiering: lead not qualified",
			zap.String("company", lead.CompanyName),
			zap.Float64("score", lead.LeadScore),
			zap.String("priority", string(lead.PriorityTier)),
			zap.String("tier", string(tier)),
		)
		return nil
	}

	spec := d.tiers[tier]
	available := math.Min(spec.Budget, d.remaining(ctx, lead.CompanyName))
	dec := &model.TierDecision{
		Tier:              tier,
		Budget:            available,
		MaxProcessingTime: spec.MaxProcessingTime,
		Reason:            fmt.Sprintf("score %.0f priority %s", lead.LeadScore, lead.PriorityTier),
	}

	if (tier == model.TierA || tier == model.TierB) && available < d.floor {
		c := d.tiers[model.TierC]
		dec.Tier = model.TierC
		dec.Budget = 0
		dec.MaxProcessingTime = c.MaxProcessingTime
		dec.Downgraded = true
		dec.Reason = fmt.Sprintf("%s; downgraded from %s, budget %.2f below floor %.2f", dec.Reason, tier, available, d.floor)
	}

	dec.AllowedSources, dec.EstimatedCost = d.authorize(dec.Budget)
	return dec
}

// authorize unlocks paid sources cheapest floor first while their floor and
// cumulative per-call cost fit in the budget.
func (d *Decider) authorize(budget float64) ([]string, float64) {
	allowed := append([]string(nil), d.free...)
	est := 0.0
	for _, id := range d.calc.Paid() {
		per := d.calc.Call(id)
		if budget >= d.calc.Floor(id) && est+per <= budget+1e-9 {
			allowed = append(allowed, id)
			est += per
		}
	}
	return allowed, math.Round(est*100) / 100
}

func (d *Decider) remaining(ctx context.Context, company string) float64 {
	if d.ledger == nil {
		return 0
	}
	rem, err := d.ledger.Remaining(ctx, model.MonthKey(d.now()))
	if err != nil {
		zap.L().Warn("tiering: ledger read failed, assuming no budget",
			zap.String("company", company),
			zap.Error(err),
		)
		return 0
	}
	return rem
}
