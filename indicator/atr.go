package indicator

import (
	"math"
)

// DefaultATRPeriod is the standard lookback window for volatility sizing
const DefaultATRPeriod = 14

// ATR returns the latest Average True Range computed as a simple rolling
// mean of true range over the lookback window.
//
// Returns NaN when the series is too short to fill the window, so callers
// can substitute a synthetic volatility proxy.
func ATR(high, low, close []float64, period int) float64 {
	// One extra bar is needed for the previous close of the first true range
	if len(close) <= period || len(high) != len(close) || len(low) != len(close) {
		return math.NaN()
	}

	// TRANGE has no previous close for the first bar; the length guard
	// above keeps that slot outside the final averaging window
	trueRange := TRANGE(high, low, close)
	smoothed := SMA(trueRange, period)
	return smoothed[len(smoothed)-1]
}
