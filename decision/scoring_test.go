package decision

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jmoneylabs/signalrun/core"
)

func seriesDataframe(t *testing.T, closes, volumes []float64) *core.Dataframe {
	t.Helper()

	df := &core.Dataframe{Ticker: "TEST"}
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, close := range closes {
		volume := 1000.0
		if volumes != nil {
			volume = volumes[i]
		}
		df.Append(core.Candle{
			Ticker: "TEST",
			Time:   start.AddDate(0, 0, i),
			Open:   close,
			High:   close + 1,
			Low:    close - 1,
			Close:  close,
			Volume: volume,
		})
	}
	return df
}

func trending(n int, start, ratio float64) []float64 {
	closes := make([]float64, n)
	price := start
	for i := range closes {
		closes[i] = price
		price *= ratio
	}
	return closes
}

func repeat(value float64, n int) []float64 {
	values := make([]float64, n)
	for i := range values {
		values[i] = value
	}
	return values
}

func TestScoreTechnicalInsufficientData(t *testing.T) {
	df := seriesDataframe(t, trending(49, 100, 1.01), nil)
	assert.Equal(t, 0.0, ScoreTechnical(df))
	assert.Equal(t, 0.0, ScoreTechnical(nil))
}

func TestScoreTechnicalSteadyUptrend(t *testing.T) {
	// RSI pinned overbought (-2), MACD above signal (+1.5), 50 SMA above
	// 200 SMA (+1.5), four-bar momentum above 2% (+1): 5 -> 7
	df := seriesDataframe(t, trending(210, 100, 1.01), nil)
	assert.Equal(t, 7.0, ScoreTechnical(df))
}

func TestScoreTechnicalBreakdown(t *testing.T) {
	// A long flat base followed by ten 3% down bars: RSI pinned oversold
	// (+2), MACD below signal (-1.5), 50 SMA dragged under the 200 SMA
	// (-1.5), momentum below -2% (-1): 5 -> 3
	closes := append(repeat(100, 200), trending(10, 97, 0.97)...)
	df := seriesDataframe(t, closes, nil)
	assert.Equal(t, 3.0, ScoreTechnical(df))
}

func TestScoreTrapRiskInsufficientData(t *testing.T) {
	df := seriesDataframe(t, trending(19, 100, 1.0), nil)
	assert.Equal(t, 5.0, ScoreTrapRisk(df))
	assert.Equal(t, 5.0, ScoreTrapRisk(nil))
}

func TestScoreTrapRiskVolumeDivergence(t *testing.T) {
	// Price up 4% over the last five closes while volume drops to less
	// than 60% of the 20-bar average
	closes := append(repeat(100, 20), 100, 101, 102, 103, 104)
	volumes := append(repeat(1000, 20), 300, 300, 300, 300, 300)

	df := seriesDataframe(t, closes, volumes)
	assert.Equal(t, 8.0, ScoreTrapRisk(df))
}

func TestScoreTrapRiskVolumeConfirmation(t *testing.T) {
	// Price up 2% on volume 1.6x the 20-bar average
	closes := append(repeat(100, 20), 100, 100.5, 101, 101.5, 102)
	volumes := append(repeat(1000, 20), 2000, 2000, 2000, 2000, 2000)

	df := seriesDataframe(t, closes, volumes)
	assert.Equal(t, 2.0, ScoreTrapRisk(df))
}

func TestScoreTrapRiskSideways(t *testing.T) {
	df := seriesDataframe(t, repeat(100, 25), nil)
	assert.Equal(t, 4.0, ScoreTrapRisk(df))
}

func TestScoreTrapRiskWithoutVolume(t *testing.T) {
	// No volume falls back to the volatility read

	calm := seriesDataframe(t, repeat(100, 25), repeat(0, 25))
	assert.Equal(t, 3.0, ScoreTrapRisk(calm))

	// A 15-point step in the last 10 closes: high volatility plus a
	// large five-close move
	closes := append(repeat(100, 16), 115, 115, 115, 115)
	volatile := seriesDataframe(t, closes, repeat(0, 20))
	assert.Equal(t, 7.0, ScoreTrapRisk(volatile))
}

func TestScoreSeriesLeavesUpstreamFieldsZero(t *testing.T) {
	df := seriesDataframe(t, trending(210, 100, 1.01), nil)

	scores := ScoreSeries(df)
	assert.Equal(t, 7.0, scores.Technical)
	assert.Zero(t, scores.Macro)
	assert.Zero(t, scores.Sentiment)
	assert.Empty(t, scores.Catalyst)
}
