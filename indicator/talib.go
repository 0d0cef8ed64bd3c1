// Package indicator wraps the technical indicators used by the
// calculator and the scoring engine
package indicator

import "github.com/markcheno/go-talib"

// SMA calculates Simple Moving Average
func SMA(input []float64, period int) []float64 {
	return talib.Sma(input, period)
}

// RSI calculates Relative Strength Index
func RSI(input []float64, period int) []float64 {
	return talib.Rsi(input, period)
}

// MACD calculates Moving Average Convergence/Divergence
// Returns MACD, signal, and histogram
func MACD(input []float64, fastPeriod int, slowPeriod int, signalPeriod int) ([]float64, []float64, []float64) {
	return talib.Macd(input, fastPeriod, slowPeriod, signalPeriod)
}

// ROC calculates Rate of Change: ((price/prevPrice)-1)*100
func ROC(input []float64, period int) []float64 {
	return talib.Roc(input, period)
}

// TRANGE calculates True Range: the maximum of high-low,
// |high-prevClose| and |low-prevClose|, zero for the first bar
func TRANGE(high []float64, low []float64, close []float64) []float64 {
	return talib.TRange(high, low, close)
}
