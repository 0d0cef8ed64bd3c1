package metric

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMean(t *testing.T) {
	assert.Equal(t, 0.0, Mean(nil))
	assert.Equal(t, 2.0, Mean([]float64{1, 2, 3}))
}

func TestPayoff(t *testing.T) {
	// Average win 4, average loss 2
	values := []float64{4, 4, -2, -2}
	assert.InDelta(t, 2.0, Payoff(values), 1e-9)

	// No losses falls back to the default ratio
	assert.Equal(t, 10.0, Payoff([]float64{1, 2, 3}))
}

func TestProfitFactor(t *testing.T) {
	values := []float64{6, 3, -3}
	assert.InDelta(t, 3.0, ProfitFactor(values), 1e-9)
	assert.Equal(t, 10.0, ProfitFactor([]float64{5}))
}

func TestMaxDrawdown(t *testing.T) {
	// Worked example: peak 10500, trough 9800 -> -6.667%
	equity := []float64{10000, 10500, 10200, 9800, 10100}
	assert.InDelta(t, -6.667, MaxDrawdown(equity), 0.001)
}

func TestMaxDrawdownMonotonicCurve(t *testing.T) {
	assert.Equal(t, 0.0, MaxDrawdown([]float64{100, 110, 120}))
	assert.Equal(t, 0.0, MaxDrawdown(nil))
}
