package cost

import "sort"

// SourceRate holds pricing for one paid source.
type SourceRate struct {
	PerCall float64 `yaml:"per_call" mapstructure:"per_call"`
	// Floor is the minimum available budget at which the source is unlocked.
	Floor float64 `yaml:"floor" mapstructure:"floor"`
}

// Rates maps source ids to pricing. Sources absent from the map are free.
type Rates map[string]SourceRate

// Calculator computes source costs and unlock floors.
type Calculator struct {
	rates Rates
}

// NewCalculator creates a Calculator with the given rates.
func NewCalculator(rates Rates) *Calculator {
	if rates == nil {
		rates = Rates{}
	}
	return &Calculator{rates: rates}
}

// Call returns the cost of one call to a source.
func (c *Calculator) Call(sourceID string) float64 {
	return c.rates[sourceID].PerCall
}

// Floor returns the budget floor that unlocks a source.
func (c *Calculator) Floor(sourceID string) float64 {
	r, ok := c.rates[sourceID]
	if !ok {
		return 0
	}
	if r.Floor < r.PerCall {
		return r.PerCall
	}
	return r.Floor
}

// IsPaid reports whether a source costs anything per call.
func (c *Calculator) IsPaid(sourceID string) bool {
	return c.rates[sourceID].PerCall > 0
}

// Paid returns paid source ids ordered by floor, cheapest first.
func (c *Calculator) Paid() []string {
	var out []string
	for id, r := range c.rates {
		if r.PerCall > 0 {
			out = append(out, id)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		fi, fj := c.Floor(out[i]), c.Floor(out[j])
		if fi != fj {
			return fi < fj
		}
		return out[i] < out[j]
	})
	return out
}

// Estimate sums the per-call cost of the given sources.
func (c *Calculator) Estimate(sources []string) float64 {
	total := 0.0
	for _, s := range sources {
		total += c.Call(s)
	}
	return total
}

// DefaultRates returns the default pricing rates in GBP.
func DefaultRates() Rates {
	return Rates{
		"email_finder":    {PerCall: 0.10, Floor: 0.10},
		"linkedin_search": {PerCall: 0.05, Floor: 0.25},
	}
}
