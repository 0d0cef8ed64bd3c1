// Package feed provides market-data collaborators. Everything
// source-specific (column naming, casing, ordering) is normalized here so
// the simulation core only ever sees strongly-typed candles.
package feed

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/xhit/go-str2duration/v2"

	"github.com/jmoneylabs/signalrun/core"
)

// defaultHeaderMap defines the column layout of headerless CSV inputs
var defaultHeaderMap = map[string]int{
	"time": 0, "open": 1, "close": 2, "low": 3, "high": 4, "volume": 5,
}

// TickerFeed describes one CSV-backed instrument
type TickerFeed struct {
	Ticker    string
	File      string
	Timeframe string
}

// CSVFeed implements core.Feeder over local CSV files
type CSVFeed struct {
	feeds   map[string]TickerFeed
	candles map[string][]core.Candle
}

// NewCSVFeed loads every feed file, normalizes the candles to ascending
// order and resamples them to the target timeframe
func NewCSVFeed(targetTimeframe string, feeds ...TickerFeed) (*CSVFeed, error) {
	csvFeed := &CSVFeed{
		feeds:   make(map[string]TickerFeed),
		candles: make(map[string][]core.Candle),
	}

	for _, feed := range feeds {
		csvFeed.feeds[feed.Ticker] = feed

		candles, err := readCandlesFromCSV(feed)
		if err != nil {
			return nil, fmt.Errorf("loading %s: %w", feed.File, err)
		}

		// The series contract is strictly ascending timestamps
		sort.Slice(candles, func(i, j int) bool {
			return candles[i].Time.Before(candles[j].Time)
		})

		if feed.Timeframe != targetTimeframe {
			candles, err = resampleCandles(candles, feed.Timeframe, targetTimeframe)
			if err != nil {
				return nil, fmt.Errorf("resampling %s: %w", feed.Ticker, err)
			}
		}

		csvFeed.candles[feed.Ticker] = candles
	}

	return csvFeed, nil
}

// Limit drops candles older than the given duration from the series end
func (c *CSVFeed) Limit(duration time.Duration) *CSVFeed {
	for ticker, candles := range c.candles {
		if len(candles) == 0 {
			continue
		}
		cutoff := candles[len(candles)-1].Time.Add(-duration)
		c.candles[ticker] = lo.Filter(candles, func(candle core.Candle, _ int) bool {
			return candle.Time.After(cutoff)
		})
	}
	return c
}

// LastQuote implements core.Feeder
func (c *CSVFeed) LastQuote(_ context.Context, ticker string) (float64, error) {
	candles, ok := c.candles[ticker]
	if !ok || len(candles) == 0 {
		return 0, core.ErrInsufficientData
	}
	return candles[len(candles)-1].Close, nil
}

// CandlesByPeriod implements core.Feeder
func (c *CSVFeed) CandlesByPeriod(_ context.Context, ticker, _ string, start, end time.Time) ([]core.Candle, error) {
	candles, ok := c.candles[ticker]
	if !ok {
		return nil, core.ErrInsufficientData
	}
	return lo.Filter(candles, func(candle core.Candle, _ int) bool {
		return !candle.Time.Before(start) && !candle.Time.After(end)
	}), nil
}

// CandlesByLimit implements core.Feeder
func (c *CSVFeed) CandlesByLimit(_ context.Context, ticker, _ string, limit int) ([]core.Candle, error) {
	candles, ok := c.candles[ticker]
	if !ok || len(candles) == 0 {
		return nil, core.ErrInsufficientData
	}
	if limit > 0 && len(candles) > limit {
		candles = candles[len(candles)-limit:]
	}
	return candles, nil
}

// readCandlesFromCSV reads and normalizes one CSV file
func readCandlesFromCSV(feed TickerFeed) ([]core.Candle, error) {
	csvFile, err := os.Open(feed.File)
	if err != nil {
		return nil, err
	}
	defer csvFile.Close()

	csvLines, err := csv.NewReader(csvFile).ReadAll()
	if err != nil {
		return nil, err
	}
	if len(csvLines) == 0 {
		return nil, core.ErrInsufficientData
	}

	headerMap, hasHeaders := parseHeaders(csvLines[0])
	if hasHeaders {
		csvLines = csvLines[1:]
	}

	candles := make([]core.Candle, 0, len(csvLines))
	for _, line := range csvLines {
		candle, err := parseCandleFromLine(line, headerMap, feed.Ticker)
		if err != nil {
			return nil, err
		}
		candles = append(candles, candle)
	}
	return candles, nil
}

// parseHeaders maps column names to indexes, case-insensitively, so
// "Close", "close" and "CLOSE" all land on the same candle field
func parseHeaders(headers []string) (map[string]int, bool) {
	// A numeric first cell means the file has no header row
	if _, err := strconv.Atoi(headers[0]); err == nil {
		return defaultHeaderMap, false
	}

	headerMap := make(map[string]int, len(headers))
	for index, header := range headers {
		headerMap[strings.ToLower(strings.TrimSpace(header))] = index
	}
	return headerMap, true
}

// parseCandleFromLine builds one candle from a CSV record
func parseCandleFromLine(line []string, headerMap map[string]int, ticker string) (core.Candle, error) {
	timestamp, err := strconv.ParseInt(line[headerMap["time"]], 10, 64)
	if err != nil {
		return core.Candle{}, err
	}

	candle := core.Candle{
		Ticker:   ticker,
		Time:     time.Unix(timestamp, 0).UTC(),
		Complete: true,
	}

	if candle.Open, err = strconv.ParseFloat(line[headerMap["open"]], 64); err != nil {
		return core.Candle{}, err
	}
	if candle.Close, err = strconv.ParseFloat(line[headerMap["close"]], 64); err != nil {
		return core.Candle{}, err
	}
	if candle.Low, err = strconv.ParseFloat(line[headerMap["low"]], 64); err != nil {
		return core.Candle{}, err
	}
	if candle.High, err = strconv.ParseFloat(line[headerMap["high"]], 64); err != nil {
		return core.Candle{}, err
	}
	if idx, ok := headerMap["volume"]; ok && idx < len(line) {
		if candle.Volume, err = strconv.ParseFloat(line[idx], 64); err != nil {
			return core.Candle{}, err
		}
	}
	return candle, nil
}

// resampleCandles aggregates candles from a finer timeframe into the
// target timeframe buckets
func resampleCandles(source []core.Candle, sourceTimeframe, targetTimeframe string) ([]core.Candle, error) {
	sourceDuration, err := str2duration.ParseDuration(sourceTimeframe)
	if err != nil {
		return nil, err
	}
	targetDuration, err := str2duration.ParseDuration(targetTimeframe)
	if err != nil {
		return nil, err
	}
	if targetDuration < sourceDuration {
		return nil, fmt.Errorf("cannot resample %s into finer %s", sourceTimeframe, targetTimeframe)
	}

	var resampled []core.Candle
	for _, candle := range source {
		bucket := candle.Time.Truncate(targetDuration)

		if len(resampled) == 0 || !resampled[len(resampled)-1].Time.Equal(bucket) {
			candle.Time = bucket
			resampled = append(resampled, candle)
			continue
		}

		last := &resampled[len(resampled)-1]
		last.Close = candle.Close
		last.Volume += candle.Volume
		if candle.High > last.High {
			last.High = candle.High
		}
		if candle.Low < last.Low {
			last.Low = candle.Low
		}
	}
	return resampled, nil
}
