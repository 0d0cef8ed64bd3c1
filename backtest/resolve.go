package backtest

import (
	"fmt"

	"github.com/jmoneylabs/signalrun/core"
)

// resolveOrder turns a raw signal into a fully numeric trade order.
// Monetary fields arrive as annotated strings; anything that fails to
// normalize is a skip condition for the batch, never a fatal error.
func resolveOrder(signal core.TradeSignal, riskAmount float64) (TradeOrder, error) {
	if signal.Ticker == "" {
		return TradeOrder{}, fmt.Errorf("signal without ticker: %w", core.ErrMalformedPrice)
	}
	if !signal.Direction.Actionable() {
		return TradeOrder{}, fmt.Errorf("%s: %w", signal.Ticker, core.ErrInvalidDirection)
	}

	entry, err := core.ParseMoney(signal.Entry)
	if err != nil {
		return TradeOrder{}, fmt.Errorf("%s entry %q: %w", signal.Ticker, signal.Entry, err)
	}
	stopLoss, err := core.ParseMoney(signal.StopLoss)
	if err != nil {
		return TradeOrder{}, fmt.Errorf("%s stop-loss %q: %w", signal.Ticker, signal.StopLoss, err)
	}
	takeProfit, err := core.ParseMoney(signal.TakeProfit)
	if err != nil {
		return TradeOrder{}, fmt.Errorf("%s take-profit %q: %w", signal.Ticker, signal.TakeProfit, err)
	}

	return TradeOrder{
		Ticker:     signal.Ticker,
		Direction:  signal.Direction,
		Entry:      entry,
		StopLoss:   stopLoss,
		TakeProfit: takeProfit,
		RiskAmount: riskAmount,
	}, nil
}
