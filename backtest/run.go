package backtest

import (
	"context"

	"github.com/schollz/progressbar/v3"

	"github.com/jmoneylabs/signalrun/core"
	"github.com/jmoneylabs/signalrun/metric"
)

// Run replays a batch of signals and aggregates their outcomes.
// A signal that cannot be resolved, fetched or simulated is counted as
// skipped and excluded from every statistic; the batch itself never aborts.
func (s *Simulator) Run(ctx context.Context, signals []core.TradeSignal) core.BacktestResult {
	riskAmount := s.config.InitialCapital * s.config.RiskPerTradePct / 100

	result := core.BacktestResult{
		InitialCapital: s.config.InitialCapital,
		EquityCurve:    []float64{s.config.InitialCapital},
	}

	var bar *progressbar.ProgressBar
	if s.config.ShowProgress {
		bar = progressbar.Default(int64(len(signals)))
	}

	for _, signal := range signals {
		if bar != nil {
			if err := bar.Add(1); err != nil {
				s.log.Warnf("update progressbar fail: %v", err)
			}
		}

		trade, ok := s.replaySignal(ctx, signal, riskAmount)
		if !ok {
			result.Skipped++
			continue
		}

		result.TotalTrades++
		if trade.Win() {
			result.Wins++
		} else if trade.Loss() {
			result.Losses++
		}

		// Equity compounds in signal order, one point per completed trade
		last := result.EquityCurve[len(result.EquityCurve)-1]
		result.EquityCurve = append(result.EquityCurve, last+riskAmount*trade.PnLPct/100)
		result.Trades = append(result.Trades, trade)

		if s.storage != nil {
			if err := s.storage.SaveTrade(ctx, &trade); err != nil {
				s.log.Warnf("failed to persist trade for %s: %v", trade.Ticker, err)
			}
		}
	}

	result.FinalEquity = result.EquityCurve[len(result.EquityCurve)-1]
	if result.TotalTrades > 0 {
		result.WinRate = float64(result.Wins) / float64(result.TotalTrades) * 100
	}
	if result.InitialCapital > 0 {
		result.ROI = (result.FinalEquity - result.InitialCapital) / result.InitialCapital * 100
	}
	result.MaxDrawdown = metric.MaxDrawdown(result.EquityCurve)

	s.log.Infof("backtest finished: %d trades, %d skipped, win rate %.1f%%, roi %.2f%%",
		result.TotalTrades, result.Skipped, result.WinRate, result.ROI)

	return result
}

// replaySignal resolves, fetches and simulates one signal.
// Any failure, including a panic inside the replay, yields ok=false.
func (s *Simulator) replaySignal(ctx context.Context, signal core.TradeSignal, riskAmount float64) (trade core.SimulatedTrade, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Errorf("trade simulation panicked for %s: %v", signal.Ticker, r)
			ok = false
		}
	}()

	order, err := resolveOrder(signal, riskAmount)
	if err != nil {
		s.log.Debugf("skipping signal: %v", err)
		return core.SimulatedTrade{}, false
	}

	candles, err := s.feeder.CandlesByLimit(ctx, order.Ticker, s.config.Timeframe, s.config.HistoryBars)
	if err != nil {
		s.log.Debugf("skipping %s: candle fetch failed: %v", order.Ticker, err)
		return core.SimulatedTrade{}, false
	}
	if len(candles) < MinSimulationBars {
		s.log.Debugf("skipping %s: only %d bars available", order.Ticker, len(candles))
		return core.SimulatedTrade{}, false
	}

	trade, err = s.SimulateTrade(candles, order)
	if err != nil {
		s.log.Debugf("skipping %s: %v", order.Ticker, err)
		return core.SimulatedTrade{}, false
	}
	return trade, true
}
