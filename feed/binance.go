package feed

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/adshao/go-binance/v2"
	"github.com/jpillora/backoff"

	"github.com/jmoneylabs/signalrun/core"
)

const klineFetchAttempts = 3

// BinanceFeed implements core.Feeder against the Binance klines API.
// It is used by the download command to materialize candle CSVs; the
// simulation core itself never reaches the network.
type BinanceFeed struct {
	client *binance.Client
	log    core.Logger
	retry  *backoff.Backoff
}

// NewBinanceFeed creates a read-only Binance market data feed.
// Keys are optional for public kline endpoints.
func NewBinanceFeed(apiKey, secretKey string, log core.Logger) *BinanceFeed {
	return &BinanceFeed{
		client: binance.NewClient(apiKey, secretKey),
		log:    log,
		retry: &backoff.Backoff{
			Min: 100 * time.Millisecond,
			Max: 1 * time.Second,
		},
	}
}

// LastQuote implements core.Feeder
func (b *BinanceFeed) LastQuote(ctx context.Context, ticker string) (float64, error) {
	candles, err := b.CandlesByLimit(ctx, ticker, "1m", 1)
	if err != nil || len(candles) < 1 {
		return 0, err
	}
	return candles[0].Close, nil
}

// CandlesByPeriod implements core.Feeder
func (b *BinanceFeed) CandlesByPeriod(ctx context.Context, ticker, timeframe string, start, end time.Time) ([]core.Candle, error) {
	klines, err := b.fetchKlines(ctx, func(service *binance.KlinesService) *binance.KlinesService {
		return service.Symbol(ticker).
			Interval(timeframe).
			StartTime(start.UnixMilli()).
			EndTime(end.UnixMilli()).
			Limit(1000)
	})
	if err != nil {
		return nil, err
	}
	return convertKlines(ticker, klines, false), nil
}

// CandlesByLimit implements core.Feeder
func (b *BinanceFeed) CandlesByLimit(ctx context.Context, ticker, timeframe string, limit int) ([]core.Candle, error) {
	klines, err := b.fetchKlines(ctx, func(service *binance.KlinesService) *binance.KlinesService {
		// One extra candle so the incomplete last bar can be discarded
		return service.Symbol(ticker).Interval(timeframe).Limit(limit + 1)
	})
	if err != nil {
		return nil, err
	}
	return convertKlines(ticker, klines, true), nil
}

// fetchKlines runs a kline query with bounded retries
func (b *BinanceFeed) fetchKlines(ctx context.Context, build func(*binance.KlinesService) *binance.KlinesService) ([]*binance.Kline, error) {
	b.retry.Reset()

	var lastErr error
	for attempt := 0; attempt < klineFetchAttempts; attempt++ {
		klines, err := build(b.client.NewKlinesService()).Do(ctx)
		if err == nil {
			return klines, nil
		}
		lastErr = err
		b.log.Warnf("kline fetch attempt %d failed: %v", attempt+1, err)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(b.retry.Duration()):
		}
	}
	return nil, fmt.Errorf("kline fetch failed after %d attempts: %w", klineFetchAttempts, lastErr)
}

// convertKlines maps Binance klines to candles, optionally dropping the
// trailing incomplete bar
func convertKlines(ticker string, klines []*binance.Kline, dropLast bool) []core.Candle {
	if dropLast && len(klines) > 0 {
		klines = klines[:len(klines)-1]
	}

	candles := make([]core.Candle, 0, len(klines))
	for _, kline := range klines {
		candles = append(candles, convertKlineToCandle(ticker, kline))
	}
	return candles
}

func convertKlineToCandle(ticker string, kline *binance.Kline) core.Candle {
	candle := core.Candle{
		Ticker:   ticker,
		Time:     time.UnixMilli(kline.OpenTime).UTC(),
		Complete: true,
	}
	candle.Open = parsePrice(kline.Open)
	candle.High = parsePrice(kline.High)
	candle.Low = parsePrice(kline.Low)
	candle.Close = parsePrice(kline.Close)
	candle.Volume = parsePrice(kline.Volume)
	return candle
}

func parsePrice(value string) float64 {
	parsed, _ := strconv.ParseFloat(value, 64)
	return parsed
}
