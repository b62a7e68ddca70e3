// Package ledger tracks estimated model spend against a hard ceiling.
package ledger

import (
	"fmt"
	"math"
	"sync"
)

// Summary is a point-in-time view of the ledger.
type Summary struct {
	Spent   float64
	Ceiling float64
}

// Open reports whether spend has passed the ceiling. A NaN on either side
// counts as open.
func (s Summary) Open() bool { return !(s.Spent <= s.Ceiling) }

// Remaining returns the unspent budget, never negative.
func (s Summary) Remaining() float64 {
	return max(s.Ceiling-s.Spent, 0)
}

func (s Summary) String() string {
	status := "OK"
	if s.Open() {
		status = "CIRCUIT OPEN"
	}
	return fmt.Sprintf("API spend: $%.4f / $%.2f (remaining $%.4f) [%s]", s.Spent, s.Ceiling, s.Remaining(), status)
}

// Ledger accumulates spend for the lifetime of the process. Spent never
// decreases and there is no reset. Safe for concurrent use.
type Ledger struct {
	pricing *Pricing

	mu      sync.Mutex
	ceiling float64
	spent   float64
}

// New creates a ledger. A nil pricing uses DefaultPricing.
func New(ceiling float64, pricing *Pricing) *Ledger {
	if pricing == nil {
		pricing = DefaultPricing()
	}
	return &Ledger{pricing: pricing, ceiling: ceiling}
}

// Estimate returns the cost of a call without charging it.
func (l *Ledger) Estimate(promptUnits, completionUnits int, model string) float64 {
	return l.pricing.Estimate(promptUnits, completionUnits, model)
}

// Add charges amount. The check runs after the charge is applied: the call
// that crosses the ceiling is recorded and reported as *CircuitOpenError,
// and so is every later call.
func (l *Ledger) Add(amount float64) (Summary, error) {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return l.Summary(), fmt.Errorf("%w: %f", ErrNonFiniteAmount, amount)
	}
	if amount < 0 {
		return l.Summary(), fmt.Errorf("%w: %f", ErrNegativeAmount, amount)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.spent += amount
	s := Summary{Spent: l.spent, Ceiling: l.ceiling}
	if s.Open() {
		return s, &CircuitOpenError{Spent: s.Spent, Ceiling: s.Ceiling}
	}
	return s, nil
}

// Charge estimates and adds the cost of one call.
func (l *Ledger) Charge(promptUnits, completionUnits int, model string) (float64, Summary, error) {
	cost := l.Estimate(promptUnits, completionUnits, model)
	s, err := l.Add(cost)
	return cost, s, err
}

// Check fails with *CircuitOpenError when the breaker is already open.
func (l *Ledger) Check() error {
	s := l.Summary()
	if s.Open() {
		return &CircuitOpenError{Spent: s.Spent, Ceiling: s.Ceiling}
	}
	return nil
}

// Summary returns the current spend and ceiling.
func (l *Ledger) Summary() Summary {
	l.mu.Lock()
	defer l.mu.Unlock()
	return Summary{Spent: l.spent, Ceiling: l.ceiling}
}
