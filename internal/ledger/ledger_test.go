package ledger

import (
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdd_CeilingScenario(t *testing.T) {
	l := New(2.00, nil)

	s, err := l.Add(1.50)
	require.NoError(t, err)
	assert.InDelta(t, 1.50, s.Spent, 1e-9)

	s, err = l.Add(0.60)
	var open *CircuitOpenError
	require.ErrorAs(t, err, &open)
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.InDelta(t, 2.10, open.Spent, 1e-9)
	assert.Equal(t, 2.00, open.Ceiling)
	assert.InDelta(t, 2.10, s.Spent, 1e-9)

	// Post-hoc: the breaching charge stays on the books.
	assert.InDelta(t, 2.10, l.Summary().Spent, 1e-9)
}

func TestAdd_FirstBreachingCallFails(t *testing.T) {
	tests := []struct {
		name      string
		amounts   []float64
		failsFrom int
	}{
		{name: "exact ceiling is not a breach", amounts: []float64{1, 1, 0.01}, failsFrom: 2},
		{name: "single oversize call", amounts: []float64{5}, failsFrom: 0},
		{name: "never breached", amounts: []float64{0.5, 0.5, 0.5}, failsFrom: -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := New(2.00, nil)
			var sum float64
			for i, amount := range tt.amounts {
				sum += amount
				s, err := l.Add(amount)
				assert.InDelta(t, sum, s.Spent, 1e-9)
				if tt.failsFrom >= 0 && i >= tt.failsFrom {
					assert.ErrorIs(t, err, ErrCircuitOpen, "call %d", i)
				} else {
					assert.NoError(t, err, "call %d", i)
				}
			}
		})
	}
}

func TestAdd_ZeroAfterOpenStillFails(t *testing.T) {
	l := New(1, nil)
	_, _ = l.Add(2)

	_, err := l.Add(0)

	assert.ErrorIs(t, err, ErrCircuitOpen)
}

func TestAdd_NegativeRejected(t *testing.T) {
	l := New(1, nil)
	_, _ = l.Add(0.25)

	_, err := l.Add(-0.1)

	assert.ErrorIs(t, err, ErrNegativeAmount)
	assert.InDelta(t, 0.25, l.Summary().Spent, 1e-9)
}

func TestAdd_NonFiniteRejected(t *testing.T) {
	for _, amount := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		l := New(2.00, nil)
		_, _ = l.Add(0.5)

		_, err := l.Add(amount)
		assert.ErrorIs(t, err, ErrNonFiniteAmount)
		assert.InDelta(t, 0.5, l.Summary().Spent, 1e-9)

		// The breaker still trips normally afterwards.
		_, err = l.Add(100)
		assert.ErrorIs(t, err, ErrCircuitOpen)
		assert.ErrorIs(t, l.Check(), ErrCircuitOpen)
	}
}

func TestSummary_NaNCountsAsOpen(t *testing.T) {
	assert.True(t, Summary{Spent: math.NaN(), Ceiling: 2}.Open())
	assert.True(t, Summary{Spent: 0, Ceiling: math.NaN()}.Open())
	assert.False(t, Summary{Spent: 2, Ceiling: 2}.Open())
}

func TestCheck(t *testing.T) {
	l := New(1, nil)
	assert.NoError(t, l.Check())

	_, _ = l.Add(1)
	assert.NoError(t, l.Check())

	_, _ = l.Add(0.01)
	assert.ErrorIs(t, l.Check(), ErrCircuitOpen)
}

func TestCharge_UsesPricing(t *testing.T) {
	l := New(10, nil)

	cost, s, err := l.Charge(1000, 2000, "gpt-4o")

	require.NoError(t, err)
	assert.InDelta(t, 0.005+0.030, cost, 1e-12)
	assert.InDelta(t, cost, s.Spent, 1e-12)
}

func TestAdd_ConcurrentChargesAreSerialised(t *testing.T) {
	l := New(1000, nil)
	var wg sync.WaitGroup
	for range 100 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 100 {
				_, _ = l.Add(0.01)
			}
		}()
	}
	wg.Wait()

	assert.InDelta(t, 100.0, l.Summary().Spent, 1e-6)
}

func TestAdd_ConcurrentBreachReportedOnce(t *testing.T) {
	// Every call after the crossing one also fails, but exactly one call
	// observes the transition from closed to open.
	l := New(0.5, nil)
	var (
		wg          sync.WaitGroup
		mu          sync.Mutex
		transitions int
	)
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s, err := l.Add(0.125)
			if err != nil && s.Spent-0.125 <= s.Ceiling {
				mu.Lock()
				transitions++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, transitions)
	assert.Equal(t, 6.25, l.Summary().Spent)
}

func TestSummary_String(t *testing.T) {
	s := Summary{Spent: 0.12, Ceiling: 2}
	assert.Equal(t, "API spend: $0.1200 / $2.00 (remaining $1.8800) [OK]", s.String())

	s = Summary{Spent: 2.1, Ceiling: 2}
	assert.Contains(t, s.String(), "CIRCUIT OPEN")
	assert.Equal(t, 0.0, s.Remaining())
}
