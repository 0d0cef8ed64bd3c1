// Package backtest replays historical signals bar-by-bar to score
// trade outcomes with slippage and transaction costs
package backtest

import (
	"math"

	"github.com/jmoneylabs/signalrun/core"
)

// MinSimulationBars is the shortest usable replay window
const MinSimulationBars = 20

// TieBreak selects the outcome when stop-loss and take-profit are touched
// inside the same bar. The intrabar path is unknown, so this is a policy,
// not a measurement; it materially changes results on volatile bars.
type TieBreak int

// Tie-break policies
const (
	// TieBreakStopLoss assumes the adverse move struck first (conservative default)
	TieBreakStopLoss TieBreak = iota
	// TieBreakTakeProfit assumes the favorable move struck first
	TieBreakTakeProfit
)

// FlatExit selects how a trade still open at series end is valued
type FlatExit int

// Flat-exit policies
const (
	// FlatExitZero marks unresolved trades as 0% P&L
	FlatExitZero FlatExit = iota
	// FlatExitMarkToMarket values unresolved trades against the last close
	FlatExitMarkToMarket
)

// Config holds the cost model and policies of one simulation run
type Config struct {
	InitialCapital     float64
	RiskPerTradePct    float64 // percent of capital risked per trade
	TransactionCostPct float64 // per-leg cost, charged round trip
	SlippagePct        float64 // adverse fill assumption on every leg
	TieBreak           TieBreak
	FlatExit           FlatExit
	Timeframe          string
	HistoryBars        int // bars fetched per signal
	ShowProgress       bool
}

// DefaultConfig returns the standard cost assumptions:
// $10k capital, 1% risk per trade, 10bps round-trip cost, 5bps slippage.
func DefaultConfig() Config {
	return Config{
		InitialCapital:     10000,
		RiskPerTradePct:    1.0,
		TransactionCostPct: 0.001,
		SlippagePct:        0.0005,
		TieBreak:           TieBreakStopLoss,
		FlatExit:           FlatExitZero,
		Timeframe:          "1d",
		HistoryBars:        90,
	}
}

// TradeOrder is a fully resolved trade ready for replay
type TradeOrder struct {
	Ticker     string
	Direction  core.Direction
	Entry      float64
	StopLoss   float64
	TakeProfit float64
	RiskAmount float64 // dollars lost if the stop is hit
}

// Simulator replays signals against historical candles
type Simulator struct {
	config  Config
	feeder  core.Feeder
	storage core.SignalStorage
	log     core.Logger
}

// Option configures a Simulator
type Option func(*Simulator)

// WithConfig replaces the default cost model
func WithConfig(config Config) Option {
	return func(s *Simulator) { s.config = config }
}

// WithStorage persists every simulated trade outcome
func WithStorage(storage core.SignalStorage) Option {
	return func(s *Simulator) { s.storage = storage }
}

// NewSimulator creates a simulator reading candles from the given feeder
func NewSimulator(feeder core.Feeder, log core.Logger, options ...Option) *Simulator {
	s := &Simulator{
		config: DefaultConfig(),
		feeder: feeder,
		log:    log,
	}
	for _, option := range options {
		option(s)
	}
	return s
}

// Config returns the active configuration
func (s *Simulator) Config() Config { return s.config }

// SimulateTrade replays one trade against a candle series and returns the
// realized outcome. P&L is expressed as a percentage of the risk budget,
// not of the entry price, so trades of different position sizes aggregate
// fairly. The function reads only its arguments and performs no I/O.
func (s *Simulator) SimulateTrade(candles []core.Candle, order TradeOrder) (core.SimulatedTrade, error) {
	if len(candles) == 0 {
		return core.SimulatedTrade{}, core.ErrInsufficientData
	}
	if !order.Direction.Actionable() {
		return core.SimulatedTrade{}, core.ErrInvalidDirection
	}
	if err := validateLevels(order); err != nil {
		return core.SimulatedTrade{}, err
	}

	isBuy := order.Direction == core.DirectionBuy

	// Entry slippage models adverse execution: longs pay up, shorts receive less
	effectiveEntry := order.Entry * (1 + s.config.SlippagePct)
	if !isBuy {
		effectiveEntry = order.Entry * (1 - s.config.SlippagePct)
	}

	trade := core.SimulatedTrade{
		Ticker:     order.Ticker,
		Direction:  order.Direction,
		Entry:      effectiveEntry,
		StopLoss:   order.StopLoss,
		TakeProfit: order.TakeProfit,
		ExitReason: core.ExitNone,
	}

	riskPerShare := math.Abs(effectiveEntry - order.StopLoss)
	if riskPerShare == 0 {
		// Stop equals entry: degenerate, settle flat instead of dividing by zero
		return trade, nil
	}
	trade.Size = order.RiskAmount / riskPerShare

	for _, candle := range candles {
		exitPrice, reason := s.checkTouches(candle, order, isBuy)
		if reason == core.ExitNone {
			continue
		}

		trade.ExitPrice = exitPrice
		trade.ExitReason = reason
		trade.PnLPct = s.settle(effectiveEntry, exitPrice, trade.Size, order.RiskAmount, isBuy)
		return trade, nil
	}

	// Neither level was touched by series end
	lastClose := candles[len(candles)-1].Close
	trade.ExitPrice = lastClose
	trade.ExitReason = core.ExitEndOfData
	if s.config.FlatExit == FlatExitMarkToMarket {
		trade.PnLPct = s.settle(effectiveEntry, lastClose, trade.Size, order.RiskAmount, isBuy)
	}
	return trade, nil
}

// checkTouches tests a single bar for intrabar stop/target hits,
// applying the tie-break policy when both trigger
func (s *Simulator) checkTouches(candle core.Candle, order TradeOrder, isBuy bool) (float64, core.ExitReason) {
	var stopHit, targetHit bool
	if isBuy {
		stopHit = candle.Low <= order.StopLoss
		targetHit = candle.High >= order.TakeProfit
	} else {
		stopHit = candle.High >= order.StopLoss
		targetHit = candle.Low <= order.TakeProfit
	}

	switch {
	case stopHit && targetHit:
		if s.config.TieBreak == TieBreakTakeProfit {
			return order.TakeProfit, core.ExitTakeProfit
		}
		return order.StopLoss, core.ExitStopLoss
	case stopHit:
		return order.StopLoss, core.ExitStopLoss
	case targetHit:
		return order.TakeProfit, core.ExitTakeProfit
	default:
		return 0, core.ExitNone
	}
}

// settle computes risk-normalized P&L for an exit at the given nominal
// price, charging exit slippage and round-trip commission
func (s *Simulator) settle(effectiveEntry, exitPrice, size, riskAmount float64, isBuy bool) float64 {
	// Exit fills are adverse too: longs sell lower, shorts cover higher
	effectiveExit := exitPrice * (1 - s.config.SlippagePct)
	if !isBuy {
		effectiveExit = exitPrice * (1 + s.config.SlippagePct)
	}

	profitPerShare := effectiveExit - effectiveEntry
	if !isBuy {
		profitPerShare = effectiveEntry - effectiveExit
	}

	commission := s.config.TransactionCostPct * (math.Abs(effectiveEntry) + math.Abs(effectiveExit)) * size
	profitDollars := profitPerShare*size - commission
	return profitDollars / riskAmount * 100
}

func validateLevels(order TradeOrder) error {
	for _, level := range []float64{order.Entry, order.StopLoss, order.TakeProfit} {
		if level <= 0 || math.IsNaN(level) || math.IsInf(level, 0) {
			return core.ErrInvalidLevel
		}
	}
	return nil
}
