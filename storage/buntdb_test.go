package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmoneylabs/signalrun/core"
)

func memoryStorage(t *testing.T) *BuntStorage {
	t.Helper()
	s, err := NewFromMemory()
	require.NoError(t, err)
	bunt := s.(*BuntStorage)
	t.Cleanup(func() { _ = bunt.Close() })
	return bunt
}

func TestBuntCreateAndQuerySignals(t *testing.T) {
	s := memoryStorage(t)
	ctx := context.Background()

	signals := []*core.TradeSignal{
		{Ticker: "AAPL", Direction: core.DirectionBuy, Confidence: 8, UpdatedAt: time.Now()},
		{Ticker: "TSLA", Direction: core.DirectionSell, Confidence: 6, UpdatedAt: time.Now()},
		{Ticker: "AAPL", Direction: core.DirectionHold, Confidence: 4, UpdatedAt: time.Now()},
	}
	for _, signal := range signals {
		require.NoError(t, s.CreateSignal(ctx, signal))
	}

	all, err := s.Signals(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	apple, err := s.Signals(ctx, core.WithTicker("AAPL"))
	require.NoError(t, err)
	assert.Len(t, apple, 2)

	actionable, err := s.Signals(ctx, core.WithTicker("AAPL"), core.WithActionable())
	require.NoError(t, err)
	require.Len(t, actionable, 1)
	assert.Equal(t, core.DirectionBuy, actionable[0].Direction)
}

func TestBuntUpdateSignal(t *testing.T) {
	s := memoryStorage(t)
	ctx := context.Background()

	signal := &core.TradeSignal{Ticker: "NVDA", Direction: core.DirectionBuy, UpdatedAt: time.Now()}
	require.NoError(t, s.CreateSignal(ctx, signal))
	require.NotZero(t, signal.ID)

	signal.Confidence = 9.5
	require.NoError(t, s.UpdateSignal(ctx, signal))

	stored, err := s.Signals(ctx, core.WithTicker("NVDA"))
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.InDelta(t, 9.5, stored[0].Confidence, 1e-9)
}

func TestBuntUpdateMissingSignal(t *testing.T) {
	s := memoryStorage(t)

	err := s.UpdateSignal(context.Background(), &core.TradeSignal{ID: 42, Ticker: "GME"})
	assert.Error(t, err)
}

func TestBuntSaveAndListTrades(t *testing.T) {
	s := memoryStorage(t)
	ctx := context.Background()

	require.NoError(t, s.SaveTrade(ctx, &core.SimulatedTrade{Ticker: "AAPL", PnLPct: 120}))
	require.NoError(t, s.SaveTrade(ctx, &core.SimulatedTrade{Ticker: "TSLA", PnLPct: -100}))

	trades, err := s.Trades(ctx)
	require.NoError(t, err)
	assert.Len(t, trades, 2)
}
