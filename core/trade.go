package core

import (
	"strconv"
)

// TradeParameters holds the risk-managed levels derived for a signal.
// Valid is false when the calculator soft-failed (insufficient data); every
// formatter then renders "N/A". Reference marks hypothetical long-side levels
// computed for non-actionable signals, never tradeable.
type TradeParameters struct {
	Entry        float64 `json:"entry"`
	StopLoss     float64 `json:"stop_loss"`
	TakeProfit1  float64 `json:"tp1"`
	TakeProfit2  float64 `json:"tp2"`
	TPStrategy   string  `json:"tp_strategy"`
	PositionSize float64 `json:"position_size"`
	Decimals     int     `json:"decimals"`
	Reference    bool    `json:"reference"`
	Valid        bool    `json:"valid"`
}

// LevelString formats a price level for display, honoring the
// price-magnitude precision rule and the reference marker
func (p TradeParameters) LevelString(value float64) string {
	if !p.Valid {
		return "N/A"
	}

	formatted := strconv.FormatFloat(value, 'f', p.Decimals, 64)
	if p.Reference {
		return formatted + " (ref)"
	}
	return formatted
}

// PositionSizeString formats the position size, "N/A" when no position
// is taken (non-actionable signals or no account policy configured)
func (p TradeParameters) PositionSizeString() string {
	if !p.Valid || p.Reference || p.PositionSize == 0 {
		return "N/A"
	}
	return strconv.FormatFloat(p.PositionSize, 'f', 2, 64)
}

// ExitReason describes how a simulated trade was closed
type ExitReason string

// Possible trade exit reasons
const (
	ExitStopLoss   ExitReason = "stop_loss"
	ExitTakeProfit ExitReason = "take_profit"
	ExitEndOfData  ExitReason = "end_of_data"
	ExitNone       ExitReason = "none"
)

// SimulatedTrade is the outcome of replaying a single signal bar-by-bar
type SimulatedTrade struct {
	ID         int64      `json:"id"`
	Ticker     string     `json:"ticker"`
	Direction  Direction  `json:"direction"`
	Entry      float64    `json:"entry"`       // slippage-adjusted fill
	StopLoss   float64    `json:"stop_loss"`
	TakeProfit float64    `json:"take_profit"`
	Size       float64    `json:"size"`
	ExitPrice  float64    `json:"exit_price"`
	ExitReason ExitReason `json:"exit_reason"`
	PnLPct     float64    `json:"pnl_pct"` // normalized by the risk budget, not by entry
}

// Win reports whether the trade closed with a positive outcome.
// A zero-P&L degenerate trade is neither a win nor a loss.
func (t SimulatedTrade) Win() bool { return t.PnLPct > 0 }

// Loss reports whether the trade closed with a negative outcome
func (t SimulatedTrade) Loss() bool { return t.PnLPct < 0 }

// BacktestResult aggregates all simulated trades of one backtest run
type BacktestResult struct {
	TotalTrades    int              `json:"total_trades"`
	Wins           int              `json:"wins"`
	Losses         int              `json:"losses"`
	WinRate        float64          `json:"win_rate"`
	ROI            float64          `json:"return_on_investment"`
	MaxDrawdown    float64          `json:"max_drawdown"`
	Skipped        int              `json:"skipped_signals"`
	InitialCapital float64          `json:"initial_capital"`
	FinalEquity    float64          `json:"final_equity"`
	EquityCurve    []float64        `json:"equity_curve"`
	Trades         []SimulatedTrade `json:"trades"`
}
