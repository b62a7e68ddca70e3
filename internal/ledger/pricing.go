package ledger

import (
	"fmt"
	"math"
)

// Rate is a price pair in USD per 1,000 units.
type Rate struct {
	Input  float64
	Output float64
}

func (r Rate) finite() bool {
	return isFinite(r.Input) && isFinite(r.Output)
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// Pricing maps model identifiers to rates. Unknown models are billed at
// the fallback rate, which is always dearer than every known rate.
type Pricing struct {
	rates    map[string]Rate
	fallback Rate
}

// DefaultPricing returns the built-in table.
func DefaultPricing() *Pricing {
	p, err := NewPricing(map[string]Rate{
		"gpt-4o":         {Input: 0.005, Output: 0.015},
		"deepseek-coder": {Input: 0.00014, Output: 0.00028},
		"llama3":         {Input: 0, Output: 0},
	}, Rate{Input: 0.01, Output: 0.03})
	if err != nil {
		panic(err)
	}
	return p
}

// NewPricing validates and copies rates.
func NewPricing(rates map[string]Rate, fallback Rate) (*Pricing, error) {
	if !fallback.finite() {
		return nil, fmt.Errorf("%w: fallback %+v", ErrNonFiniteRate, fallback)
	}
	copied := make(map[string]Rate, len(rates))
	for model, rate := range rates {
		if !rate.finite() {
			return nil, fmt.Errorf("%w: %s %+v", ErrNonFiniteRate, model, rate)
		}
		if fallback.Input <= rate.Input || fallback.Output <= rate.Output {
			return nil, &PricingError{Model: model, Rate: rate, Fallback: fallback}
		}
		copied[model] = rate
	}
	return &Pricing{rates: copied, fallback: fallback}, nil
}

// Rate returns the rate for model and whether it was a known entry.
func (p *Pricing) Rate(model string) (Rate, bool) {
	r, ok := p.rates[model]
	if !ok {
		return p.fallback, false
	}
	return r, true
}

// Estimate returns the USD cost of one call.
func (p *Pricing) Estimate(promptUnits, completionUnits int, model string) float64 {
	r, _ := p.Rate(model)
	return float64(promptUnits)/1000*r.Input + float64(completionUnits)/1000*r.Output
}
