package core

import (
	"context"
	"time"
)

// Feeder provides resolved historical market data.
// Implementations own all source-specific concerns (column naming, casing,
// ordering); consumers always receive ascending, normalized candles.
type Feeder interface {
	LastQuote(ctx context.Context, ticker string) (float64, error)
	CandlesByPeriod(ctx context.Context, ticker, timeframe string, start, end time.Time) ([]Candle, error)
	CandlesByLimit(ctx context.Context, ticker, timeframe string, limit int) ([]Candle, error)
}

// Notifier delivers user-facing messages about signals and results
type Notifier interface {
	Notify(string)
	OnSignal(signal TradeSignal, params TradeParameters)
	OnBacktest(result BacktestResult)
	OnError(err error)
}

// NotifierWithStart is a notifier with its own polling loop
type NotifierWithStart interface {
	Notifier
	Start()
}

// SignalFilter narrows the set of signals returned by a storage query
type SignalFilter func(signal TradeSignal) bool

// SignalStorage persists signals and their simulated outcomes
type SignalStorage interface {
	// CreateSignal stores a new signal
	CreateSignal(ctx context.Context, signal *TradeSignal) error

	// UpdateSignal updates an existing signal
	UpdateSignal(ctx context.Context, signal *TradeSignal) error

	// Signals retrieves signals matching the provided filters
	Signals(ctx context.Context, filters ...SignalFilter) ([]*TradeSignal, error)

	// SaveTrade stores the outcome of a simulated trade
	SaveTrade(ctx context.Context, trade *SimulatedTrade) error
}

// WithTicker filters signals by instrument
func WithTicker(ticker string) SignalFilter {
	return func(signal TradeSignal) bool {
		return signal.Ticker == ticker
	}
}

// WithDirection filters signals by trade side
func WithDirection(direction Direction) SignalFilter {
	return func(signal TradeSignal) bool {
		return signal.Direction == direction
	}
}

// WithActionable filters signals to those that open positions
func WithActionable() SignalFilter {
	return func(signal TradeSignal) bool {
		return signal.Direction.Actionable()
	}
}

// WithCreatedAfter filters signals created strictly after the given time
func WithCreatedAfter(t time.Time) SignalFilter {
	return func(signal TradeSignal) bool {
		return signal.CreatedAt.After(t)
	}
}
