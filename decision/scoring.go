package decision

import (
	"math"

	"github.com/jmoneylabs/signalrun/core"
	"github.com/jmoneylabs/signalrun/indicator"
	"github.com/jmoneylabs/signalrun/metric"
)

// Minimum series lengths per score
const (
	minTechnicalBars = 50
	minTrapBars      = 20
	minTrendBars     = 200
)

// momentumLookback spans the last five closes
const momentumLookback = 4

// ScoreTechnical rates the technical posture of a series on a 0-10 scale.
// It starts from a neutral 5 and moves by fixed bands: RSI extremes,
// MACD line versus signal, the 50/200 SMA cross when enough history
// exists, and short-term momentum. Series under 50 bars score 0.
func ScoreTechnical(df *core.Dataframe) float64 {
	if df == nil || df.Length() < minTechnicalBars {
		return 0
	}

	close := df.Close.Values()
	score := 5.0

	rsi := last(indicator.RSI(close, 14))
	switch {
	case rsi > 70:
		score -= 2 // overbought
	case rsi < 30:
		score += 2 // oversold
	case rsi >= 40 && rsi <= 60:
		score += 1
	}

	macd, signal, _ := indicator.MACD(close, 12, 26, 9)
	if last(macd) > last(signal) {
		score += 1.5
	} else {
		score -= 1.5
	}

	if len(close) >= minTrendBars {
		ma50 := last(indicator.SMA(close, 50))
		ma200 := last(indicator.SMA(close, 200))
		if ma50 > ma200 {
			score += 1.5
		} else {
			score -= 1.5
		}
	}

	momentum := last(indicator.ROC(close, momentumLookback))
	if momentum > 2 {
		score += 1
	} else if momentum < -2 {
		score -= 1
	}

	return clampScore(math.Round(score))
}

// ScoreTrapRisk rates how likely a recent move is a trap, 0-10, higher
// is riskier. Rising price on shrinking volume is the classic trap shape;
// when the series carries no volume the score falls back to a pure
// volatility read. Series under 20 bars score the neutral 5.
func ScoreTrapRisk(df *core.Dataframe) float64 {
	if df == nil || df.Length() < minTrapBars {
		return 5
	}

	change := recentChange(df.Close.Values())

	historicalVolume := metric.Mean(df.Volume.LastValues(20))
	if historicalVolume <= 0 {
		return trapRiskFromVolatility(df, change)
	}

	volumeRatio := metric.Mean(df.Volume.LastValues(5)) / historicalVolume

	switch {
	case volumeRatio < 0.6 && change > 0.03:
		return 8 // price up, volume drying out
	case volumeRatio < 0.8 && change > 0.02:
		return 6
	case volumeRatio > 1.5 && change > 0.01:
		return 2 // strong volume confirmation
	case volumeRatio > 1.2 && change > 0:
		return 3
	case math.Abs(change) < 0.01:
		return 4 // sideways
	default:
		return 5
	}
}

func trapRiskFromVolatility(df *core.Dataframe, change float64) float64 {
	recent := df.Sample(10)
	volatility := metric.StdDev(recent.Close) / metric.Mean(recent.Close)

	switch {
	case volatility > 0.05 && math.Abs(change) > 0.03:
		return 7
	case volatility < 0.02:
		return 3
	default:
		return 5
	}
}

// ScoreSeries computes both local scores for a series. Macro, sentiment
// and catalyst stay at their zero values: they come from upstream analysis
// that has no local equivalent.
func ScoreSeries(df *core.Dataframe) Scores {
	return Scores{
		Technical: ScoreTechnical(df),
		TrapRisk:  ScoreTrapRisk(df),
	}
}

// recentChange is the fractional move across the last five closes
func recentChange(close []float64) float64 {
	reference := close[len(close)-1-momentumLookback]
	if reference == 0 {
		return 0
	}
	return (close[len(close)-1] - reference) / reference
}

func clampScore(score float64) float64 {
	return math.Min(10, math.Max(0, score))
}

func last(values []float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	return values[len(values)-1]
}
