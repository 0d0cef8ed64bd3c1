package feed

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	zl "github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmoneylabs/signalrun/core"
	"github.com/jmoneylabs/signalrun/logger/zerolog"
)

func testLogger() core.Logger {
	quiet := zl.New(io.Discard)
	return zerolog.NewAdapter(&quiet)
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestCSVFeedNormalizesHeaderCase(t *testing.T) {
	// Mixed-case headers and shuffled column order, as upstream exports
	// tend to produce
	path := writeFile(t, "aapl.csv",
		"Time,Close,High,Low,Open,Volume\n"+
			"1700000000,101,102,99,100,5000\n"+
			"1700003600,102,103,100,101,6000\n")

	csvFeed, err := NewCSVFeed("1h", TickerFeed{Ticker: "AAPL", File: path, Timeframe: "1h"})
	require.NoError(t, err)

	candles, err := csvFeed.CandlesByLimit(context.Background(), "AAPL", "1h", 10)
	require.NoError(t, err)
	require.Len(t, candles, 2)
	assert.Equal(t, 101.0, candles[0].Close)
	assert.Equal(t, 99.0, candles[0].Low)
	assert.True(t, candles[0].Time.Before(candles[1].Time))

	quote, err := csvFeed.LastQuote(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, 102.0, quote)
}

func TestCSVFeedSortsDescendingInput(t *testing.T) {
	path := writeFile(t, "btc.csv",
		"time,open,close,low,high,volume\n"+
			"1700003600,101,102,100,103,6000\n"+
			"1700000000,100,101,99,102,5000\n")

	csvFeed, err := NewCSVFeed("1h", TickerFeed{Ticker: "BTCUSDT", File: path, Timeframe: "1h"})
	require.NoError(t, err)

	candles, err := csvFeed.CandlesByLimit(context.Background(), "BTCUSDT", "1h", 10)
	require.NoError(t, err)
	require.Len(t, candles, 2)
	assert.True(t, candles[0].Time.Before(candles[1].Time))
}

func TestCSVFeedResample(t *testing.T) {
	// Four 1h bars collapse into one 4h bucket
	content := "time,open,close,low,high,volume\n" +
		"1704067200,100,100,98,101,10\n" +
		"1704070800,100,101,99,103,10\n" +
		"1704074400,101,99,97,102,10\n" +
		"1704078000,99,102,99,104,10\n"
	path := writeFile(t, "eth.csv", content)

	csvFeed, err := NewCSVFeed("4h", TickerFeed{Ticker: "ETHUSDT", File: path, Timeframe: "1h"})
	require.NoError(t, err)

	candles, err := csvFeed.CandlesByLimit(context.Background(), "ETHUSDT", "4h", 10)
	require.NoError(t, err)
	require.Len(t, candles, 1)
	assert.Equal(t, 100.0, candles[0].Open)
	assert.Equal(t, 102.0, candles[0].Close)
	assert.Equal(t, 97.0, candles[0].Low)
	assert.Equal(t, 104.0, candles[0].High)
	assert.Equal(t, 40.0, candles[0].Volume)
}

func TestCSVFeedUnknownTicker(t *testing.T) {
	path := writeFile(t, "one.csv",
		"time,open,close,low,high,volume\n1700000000,1,1,1,1,1\n")

	csvFeed, err := NewCSVFeed("1h", TickerFeed{Ticker: "ONE", File: path, Timeframe: "1h"})
	require.NoError(t, err)

	_, err = csvFeed.CandlesByLimit(context.Background(), "MISSING", "1h", 10)
	assert.ErrorIs(t, err, core.ErrInsufficientData)
}

func TestReadSignalsCSVAliases(t *testing.T) {
	path := writeFile(t, "signals.csv",
		"Ticker,Signal,Confidence Score,Entry,Stop Loss,TP1,Asset Type\n"+
			"aapl,Buy,8.5/10,$189.50,185.00,$198.00,stocks\n"+
			"EURUSD,sell,6.2,1.0850,1.0920,1.0700 (ref),forex\n"+
			"TSLA,Hold,,240.00,230.00,260.00,stocks\n"+
			"BROKEN,launch,5,1,1,1,stocks\n")

	signals, err := ReadSignalsCSV(path, testLogger())
	require.NoError(t, err)
	require.Len(t, signals, 3)

	assert.Equal(t, "AAPL", signals[0].Ticker)
	assert.Equal(t, core.DirectionBuy, signals[0].Direction)
	assert.Equal(t, 8.5, signals[0].Confidence)
	assert.Equal(t, "$189.50", signals[0].Entry)
	assert.Equal(t, core.AssetStocks, signals[0].AssetType)

	assert.Equal(t, core.DirectionSell, signals[1].Direction)
	assert.Equal(t, 6.2, signals[1].Confidence)

	// Missing confidence falls back to the neutral default
	assert.Equal(t, core.DirectionHold, signals[2].Direction)
	assert.Equal(t, 5.0, signals[2].Confidence)
}
