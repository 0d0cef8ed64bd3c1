package backtest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmoneylabs/signalrun/core"
)

// stubFeeder serves pre-canned candles per ticker
type stubFeeder struct {
	candles map[string][]core.Candle
	err     error
}

func (f stubFeeder) LastQuote(_ context.Context, ticker string) (float64, error) {
	if f.err != nil {
		return 0, f.err
	}
	series := f.candles[ticker]
	if len(series) == 0 {
		return 0, core.ErrInsufficientData
	}
	return series[len(series)-1].Close, nil
}

func (f stubFeeder) CandlesByPeriod(_ context.Context, ticker, _ string, _, _ time.Time) ([]core.Candle, error) {
	return f.CandlesByLimit(context.Background(), ticker, "", 0)
}

func (f stubFeeder) CandlesByLimit(_ context.Context, ticker, _ string, _ int) ([]core.Candle, error) {
	if f.err != nil {
		return nil, f.err
	}
	series, ok := f.candles[ticker]
	if !ok {
		return nil, core.ErrInsufficientData
	}
	return series, nil
}

// winningSeries never touches the stop at 95 and hits 110 on the last bar
func winningSeries() []core.Candle {
	pairs := quietBars(MinSimulationBars)
	pairs = append(pairs, [2]float64{100, 111})
	return bars(pairs...)
}

// losingSeries trades through the stop at 95 on the last bar
func losingSeries() []core.Candle {
	pairs := quietBars(MinSimulationBars)
	pairs = append(pairs, [2]float64{94, 101})
	return bars(pairs...)
}

func buySignal(ticker string) core.TradeSignal {
	return core.TradeSignal{
		Ticker:     ticker,
		Direction:  core.DirectionBuy,
		Confidence: 7,
		Entry:      "$100.00",
		StopLoss:   "95",
		TakeProfit: "110.00 (ref)",
	}
}

func runConfig() Config {
	config := frictionlessConfig()
	config.InitialCapital = 10000
	config.RiskPerTradePct = 1.0
	return config
}

func TestRunSkipAccounting(t *testing.T) {
	feeder := stubFeeder{candles: map[string][]core.Candle{
		"AAA": winningSeries(),
		"BBB": winningSeries(),
		"CCC": losingSeries(),
	}}
	sim := NewSimulator(feeder, testLogger(), WithConfig(runConfig()))

	badEntry := buySignal("AAA")
	badEntry.Entry = "market open"
	badStop := buySignal("BBB")
	badStop.StopLoss = "??"

	signals := []core.TradeSignal{
		buySignal("AAA"),
		badEntry,
		buySignal("BBB"),
		badStop,
		buySignal("CCC"),
	}

	result := sim.Run(context.Background(), signals)
	assert.Equal(t, 2, result.Skipped)
	assert.Equal(t, 3, result.TotalTrades)
	assert.Equal(t, 2, result.Wins)
	assert.Equal(t, 1, result.Losses)
}

func TestRunEquityCurveAndROI(t *testing.T) {
	feeder := stubFeeder{candles: map[string][]core.Candle{
		"WIN":  winningSeries(),
		"LOSE": losingSeries(),
	}}
	sim := NewSimulator(feeder, testLogger(), WithConfig(runConfig()))

	result := sim.Run(context.Background(), []core.TradeSignal{
		buySignal("WIN"),
		buySignal("LOSE"),
	})

	// Risk budget $100: the win books +200%, the loss -100%
	require.Equal(t, []float64{10000, 10200, 10100}, result.EquityCurve)
	assert.InDelta(t, 1.0, result.ROI, 1e-9)
	assert.InDelta(t, 10100.0, result.FinalEquity, 1e-9)
	assert.InDelta(t, -100.0/10200*100, result.MaxDrawdown, 1e-9)
	assert.InDelta(t, 50.0, result.WinRate, 1e-9)
}

func TestRunNeverAborts(t *testing.T) {
	feeder := stubFeeder{err: errors.New("market data source down")}
	sim := NewSimulator(feeder, testLogger(), WithConfig(runConfig()))

	result := sim.Run(context.Background(), []core.TradeSignal{
		buySignal("AAA"),
		buySignal("BBB"),
	})

	assert.Equal(t, 0, result.TotalTrades)
	assert.Equal(t, 2, result.Skipped)
	assert.Zero(t, result.WinRate)
	assert.Equal(t, 10000.0, result.FinalEquity)
	assert.Zero(t, result.MaxDrawdown)
}

func TestRunSkipsNonActionableAndShortSeries(t *testing.T) {
	short := bars(quietBars(MinSimulationBars - 1)...)
	feeder := stubFeeder{candles: map[string][]core.Candle{
		"SHORT": short,
		"OK":    winningSeries(),
	}}
	sim := NewSimulator(feeder, testLogger(), WithConfig(runConfig()))

	hold := buySignal("OK")
	hold.Direction = core.DirectionHold

	result := sim.Run(context.Background(), []core.TradeSignal{
		hold,
		buySignal("SHORT"),
		buySignal("OK"),
	})
	assert.Equal(t, 2, result.Skipped)
	assert.Equal(t, 1, result.TotalTrades)
}

func TestResolveOrderNormalizesAnnotations(t *testing.T) {
	signal := core.TradeSignal{
		Ticker:     "EURUSD",
		Direction:  core.DirectionSell,
		Entry:      "$1,234.56 (ref)",
		StopLoss:   "1300",
		TakeProfit: "$1,100.00",
	}

	order, err := resolveOrder(signal, 50)
	require.NoError(t, err)
	assert.Equal(t, 1234.56, order.Entry)
	assert.Equal(t, 1300.0, order.StopLoss)
	assert.Equal(t, 1100.0, order.TakeProfit)
	assert.Equal(t, 50.0, order.RiskAmount)

	signal.TakeProfit = "tbd"
	_, err = resolveOrder(signal, 50)
	assert.ErrorIs(t, err, core.ErrMalformedPrice)
}
