package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmoneylabs/signalrun/core"
)

func sqliteStorage(t *testing.T) *SQLStorage {
	t.Helper()
	s, err := NewFromSQLite(filepath.Join(t.TempDir(), "signals.sqlite"), DefaultConfig())
	require.NoError(t, err)
	sql := s.(*SQLStorage)
	t.Cleanup(func() { _ = sql.Close() })
	return sql
}

func TestSQLCreateAndQuerySignals(t *testing.T) {
	s := sqliteStorage(t)
	ctx := context.Background()

	signals := []*core.TradeSignal{
		{Ticker: "AAPL", Direction: core.DirectionBuy, Confidence: 8},
		{Ticker: "TSLA", Direction: core.DirectionSell, Confidence: 6},
		{Ticker: "AAPL", Direction: core.DirectionHold, Confidence: 4},
	}
	for _, signal := range signals {
		require.NoError(t, s.CreateSignal(ctx, signal))
		require.NotZero(t, signal.ID)
	}

	all, err := s.Signals(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	actionable, err := s.Signals(ctx, core.WithTicker("AAPL"), core.WithActionable())
	require.NoError(t, err)
	require.Len(t, actionable, 1)
	assert.Equal(t, core.DirectionBuy, actionable[0].Direction)
}

func TestSQLUpdateSignal(t *testing.T) {
	s := sqliteStorage(t)
	ctx := context.Background()

	signal := &core.TradeSignal{Ticker: "NVDA", Direction: core.DirectionBuy, CreatedAt: time.Now()}
	require.NoError(t, s.CreateSignal(ctx, signal))

	signal.Confidence = 9.5
	require.NoError(t, s.UpdateSignal(ctx, signal))

	stored, err := s.Signals(ctx, core.WithTicker("NVDA"))
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.InDelta(t, 9.5, stored[0].Confidence, 1e-9)
}

func TestSQLUpdateMissingSignal(t *testing.T) {
	s := sqliteStorage(t)

	err := s.UpdateSignal(context.Background(), &core.TradeSignal{ID: 42, Ticker: "GME"})
	assert.Error(t, err)
}

func TestSQLSaveTrade(t *testing.T) {
	s := sqliteStorage(t)
	ctx := context.Background()

	trade := &core.SimulatedTrade{
		Ticker:     "AAPL",
		Direction:  core.DirectionBuy,
		Entry:      100,
		ExitReason: core.ExitTakeProfit,
		PnLPct:     200,
	}
	require.NoError(t, s.SaveTrade(ctx, trade))
	assert.NotZero(t, trade.ID)
}
