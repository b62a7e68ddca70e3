package ledger

import (
	"errors"
	"fmt"
)

// CircuitOpenError is returned once cumulative spend exceeds the ceiling.
// Spent includes the charge that tripped the breaker.
type CircuitOpenError struct {
	Spent   float64
	Ceiling float64
}

func (e *CircuitOpenError) Error() string {
	return fmt.Sprintf("spend ceiling breached: spent $%.4f of $%.2f", e.Spent, e.Ceiling)
}
func (e *CircuitOpenError) Is(target error) bool { return target == ErrCircuitOpen }

// PricingError is returned when a pricing table would let unknown models run cheaper than known ones.
type PricingError struct {
	Model    string
	Rate     Rate
	Fallback Rate
}

func (e *PricingError) Error() string {
	return fmt.Sprintf("fallback rate %+v must exceed %s rate %+v", e.Fallback, e.Model, e.Rate)
}

var (
	ErrCircuitOpen     = errors.New("circuit open")
	ErrNegativeAmount  = errors.New("negative charge")
	ErrNonFiniteAmount = errors.New("non-finite charge")
	ErrNonFiniteRate   = errors.New("non-finite rate")
)
