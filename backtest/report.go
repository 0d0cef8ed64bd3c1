package backtest

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"

	"github.com/jmoneylabs/signalrun/core"
	"github.com/jmoneylabs/signalrun/metric"
)

// Report renders a backtest result for terminal output
type Report struct {
	Result core.BacktestResult
}

// Returns extracts the per-trade P&L percentages of the run
func (r Report) Returns() []float64 {
	returns := make([]float64, 0, len(r.Result.Trades))
	for _, trade := range r.Result.Trades {
		returns = append(returns, trade.PnLPct)
	}
	return returns
}

// String formats the result as a text table, one row per trade plus an
// aggregate block
func (r Report) String() string {
	builder := &strings.Builder{}

	table := tablewriter.NewWriter(builder)
	table.SetHeader([]string{"Ticker", "Side", "Entry", "Stop", "Target", "Exit", "P&L %"})
	table.SetColumnAlignment([]int{
		tablewriter.ALIGN_LEFT, tablewriter.ALIGN_LEFT, tablewriter.ALIGN_RIGHT,
		tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_LEFT,
		tablewriter.ALIGN_RIGHT,
	})

	for _, trade := range r.Result.Trades {
		table.Append([]string{
			trade.Ticker,
			string(trade.Direction),
			fmt.Sprintf("%.4f", trade.Entry),
			fmt.Sprintf("%.4f", trade.StopLoss),
			fmt.Sprintf("%.4f", trade.TakeProfit),
			string(trade.ExitReason),
			fmt.Sprintf("%.1f", trade.PnLPct),
		})
	}
	table.Render()

	returns := r.Returns()

	summary := tablewriter.NewWriter(builder)
	summary.SetColumnAlignment([]int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_RIGHT})
	summary.AppendBulk([][]string{
		{"Trades", strconv.Itoa(r.Result.TotalTrades)},
		{"Win", strconv.Itoa(r.Result.Wins)},
		{"Loss", strconv.Itoa(r.Result.Losses)},
		{"Skipped", strconv.Itoa(r.Result.Skipped)},
		{"% Win", fmt.Sprintf("%.1f", r.Result.WinRate)},
		{"Payoff", fmt.Sprintf("%.2f", metric.Payoff(returns))},
		{"Pr.Fact", fmt.Sprintf("%.2f", metric.ProfitFactor(returns))},
		{"ROI", fmt.Sprintf("%.2f %%", r.Result.ROI)},
		{"Max DD", fmt.Sprintf("%.2f %%", r.Result.MaxDrawdown)},
		{"Equity", fmt.Sprintf("%.2f", r.Result.FinalEquity)},
	})
	summary.Render()

	return builder.String()
}
