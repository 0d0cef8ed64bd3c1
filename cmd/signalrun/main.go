package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/jmoneylabs/signalrun"
	"github.com/jmoneylabs/signalrun/backtest"
	"github.com/jmoneylabs/signalrun/calculator"
	"github.com/jmoneylabs/signalrun/core"
	"github.com/jmoneylabs/signalrun/feed"
	"github.com/jmoneylabs/signalrun/storage"
)

const dateLayout = "2006-01-02"

// Command line flags
var (
	// Backtest command flags
	signalsFile  string
	candlesDir   string
	timeframe    string
	databaseFile string
	useSQL       bool
	showProgress bool

	// Params command flags
	candlesFile string
	ticker      string
	direction   string
	confidence  float64
	balance     float64
	riskPct     float64

	// Download command flags
	pair       string
	days       int
	startDate  string
	endDate    string
	outputFile string
)

func main() {
	// Optional: API keys and Telegram settings come from the environment
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:     "signalrun",
		Short:   "Trade parameter calculation and signal backtesting",
		Version: "1.0.0",
	}

	rootCmd.AddCommand(buildBacktestCmd())
	rootCmd.AddCommand(buildParamsCmd())
	rootCmd.AddCommand(buildDownloadCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func buildBacktestCmd() *cobra.Command {
	backtestCmd := &cobra.Command{
		Use:   "backtest",
		Short: "Replay a signal CSV against historical candles",
		RunE:  runBacktest,
	}

	backtestCmd.Flags().StringVarP(&signalsFile, "signals", "s", "", "Signals CSV file")
	backtestCmd.Flags().StringVarP(&candlesDir, "candles", "c", "", "Directory with one <TICKER>.csv per instrument")
	backtestCmd.Flags().StringVarP(&timeframe, "timeframe", "t", "1d", "Candle timeframe (e.g. 1d, 4h)")
	backtestCmd.Flags().StringVar(&databaseFile, "db", "", "Persist signals and trades to this database file")
	backtestCmd.Flags().BoolVar(&useSQL, "sql", false, "Use the sqlite store instead of buntdb for --db")
	backtestCmd.Flags().BoolVar(&showProgress, "progress", false, "Show a progress bar")

	backtestCmd.MarkFlagRequired("signals")
	backtestCmd.MarkFlagRequired("candles")

	return backtestCmd
}

func runBacktest(cmd *cobra.Command, args []string) error {
	signals, err := feed.ReadSignalsCSV(signalsFile, signalrun.DefaultLog)
	if err != nil {
		return err
	}
	if len(signals) == 0 {
		return fmt.Errorf("no parseable signals in %s", signalsFile)
	}

	tickers := uniqueTickers(signals)

	feeds := make([]feed.TickerFeed, 0, len(tickers))
	for _, ticker := range tickers {
		feeds = append(feeds, feed.TickerFeed{
			Ticker:    ticker,
			File:      filepath.Join(candlesDir, ticker+".csv"),
			Timeframe: timeframe,
		})
	}

	csvFeed, err := feed.NewCSVFeed(timeframe, feeds...)
	if err != nil {
		return err
	}

	signalStorage, err := openStorage()
	if err != nil {
		return err
	}

	config := backtest.DefaultConfig()
	config.Timeframe = timeframe
	config.ShowProgress = showProgress

	app, err := signalrun.New(
		cmd.Context(),
		settingsFromEnv(tickers),
		csvFeed,
		signalrun.WithStorage(signalStorage),
		signalrun.WithBacktestConfig(config),
	)
	if err != nil {
		return err
	}

	app.Backtest(cmd.Context(), signals)
	app.Summary()

	return nil
}

func buildParamsCmd() *cobra.Command {
	paramsCmd := &cobra.Command{
		Use:   "params",
		Short: "Compute trade parameters for one candle series",
		RunE:  runParams,
	}

	paramsCmd.Flags().StringVarP(&candlesFile, "csv", "c", "", "Candle CSV file")
	paramsCmd.Flags().StringVarP(&ticker, "ticker", "p", "", "Instrument symbol")
	paramsCmd.Flags().StringVarP(&direction, "direction", "d", "buy", "Trade direction (buy, sell, hold, neutral, avoid)")
	paramsCmd.Flags().Float64VarP(&confidence, "confidence", "n", calculator.DefaultConfidence, "Signal confidence, 0-10")
	paramsCmd.Flags().StringVarP(&timeframe, "timeframe", "t", "1d", "Candle timeframe")
	paramsCmd.Flags().Float64Var(&balance, "balance", 0, "Account balance for position sizing")
	paramsCmd.Flags().Float64Var(&riskPct, "risk", 1.0, "Percent of balance risked per trade")

	paramsCmd.MarkFlagRequired("csv")
	paramsCmd.MarkFlagRequired("ticker")

	return paramsCmd
}

func runParams(cmd *cobra.Command, args []string) error {
	side, err := core.ParseDirection(direction)
	if err != nil {
		return err
	}

	csvFeed, err := feed.NewCSVFeed(timeframe, feed.TickerFeed{
		Ticker:    ticker,
		File:      candlesFile,
		Timeframe: timeframe,
	})
	if err != nil {
		return err
	}

	candles, err := csvFeed.CandlesByLimit(cmd.Context(), ticker, timeframe, backtest.DefaultConfig().HistoryBars)
	if err != nil {
		return err
	}

	options := []calculator.Option{calculator.WithLogger(signalrun.DefaultLog)}
	if balance > 0 {
		options = append(options, calculator.WithAccountRisk(calculator.AccountRisk{
			Balance:      balance,
			RiskFraction: riskPct / 100,
		}))
	}

	calc := calculator.New(options...)
	params := calc.Calculate(core.NewDataframe(ticker, candles), side, confidence)

	fmt.Printf("Ticker:      %s\n", ticker)
	fmt.Printf("Direction:   %s\n", side)
	fmt.Printf("Entry:       %s\n", params.LevelString(params.Entry))
	fmt.Printf("Stop loss:   %s\n", params.LevelString(params.StopLoss))
	fmt.Printf("TP1:         %s\n", params.LevelString(params.TakeProfit1))
	fmt.Printf("TP2:         %s\n", params.LevelString(params.TakeProfit2))
	fmt.Printf("TP strategy: %s\n", params.TPStrategy)
	fmt.Printf("Size:        %s\n", params.PositionSizeString())

	return nil
}

func buildDownloadCmd() *cobra.Command {
	downloadCmd := &cobra.Command{
		Use:   "download",
		Short: "Download historical candles to CSV",
		RunE:  runDownload,
	}

	downloadCmd.Flags().StringVarP(&pair, "pair", "p", "", "Trading pair (e.g. BTCUSDT)")
	downloadCmd.Flags().IntVarP(&days, "days", "d", 0, "Number of days to download (default 90 days)")
	downloadCmd.Flags().StringVarP(&startDate, "start", "s", "", "Start date (e.g. 2025-12-01)")
	downloadCmd.Flags().StringVarP(&endDate, "end", "e", "", "End date (e.g. 2025-12-31)")
	downloadCmd.Flags().StringVarP(&timeframe, "timeframe", "t", "", "Timeframe (e.g. 1h)")
	downloadCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file path (e.g. ./btc.csv)")

	downloadCmd.MarkFlagRequired("pair")
	downloadCmd.MarkFlagRequired("timeframe")
	downloadCmd.MarkFlagRequired("output")

	return downloadCmd
}

func runDownload(cmd *cobra.Command, args []string) error {
	options, err := buildDownloadOptions()
	if err != nil {
		return err
	}

	binanceFeed := feed.NewBinanceFeed(
		os.Getenv("BINANCE_API_KEY"),
		os.Getenv("BINANCE_SECRET_KEY"),
		signalrun.DefaultLog,
	)

	return feed.NewDownloader(binanceFeed, signalrun.DefaultLog).Download(
		cmd.Context(),
		strings.ToUpper(pair),
		timeframe,
		outputFile,
		options...,
	)
}

func buildDownloadOptions() ([]feed.DownloadOption, error) {
	var options []feed.DownloadOption

	if days > 0 {
		options = append(options, feed.WithDays(days))
	}

	if startDate != "" || endDate != "" {
		if startDate == "" || endDate == "" {
			return nil, fmt.Errorf("start and end dates must be provided together")
		}

		start, err := time.Parse(dateLayout, startDate)
		if err != nil {
			return nil, fmt.Errorf("invalid start date format: %w", err)
		}

		end, err := time.Parse(dateLayout, endDate)
		if err != nil {
			return nil, fmt.Errorf("invalid end date format: %w", err)
		}

		options = append(options, feed.WithInterval(start, end))
	}

	return options, nil
}

func openStorage() (core.SignalStorage, error) {
	if databaseFile == "" {
		return storage.NewFromMemory()
	}
	if useSQL {
		return storage.NewFromSQLite(databaseFile, storage.DefaultConfig())
	}
	return storage.NewFromFile(databaseFile)
}

func uniqueTickers(signals []core.TradeSignal) []string {
	seen := make(map[string]bool)
	tickers := make([]string, 0)
	for _, signal := range signals {
		if !seen[signal.Ticker] {
			seen[signal.Ticker] = true
			tickers = append(tickers, signal.Ticker)
		}
	}
	return tickers
}

func settingsFromEnv(tickers []string) core.Settings {
	settings := core.Settings{Tickers: tickers}

	token := os.Getenv("TELEGRAM_TOKEN")
	if token == "" {
		return settings
	}

	settings.Telegram = core.TelegramSettings{
		Enabled: true,
		Token:   token,
		Users:   parseUserIDs(os.Getenv("TELEGRAM_USERS")),
	}
	return settings
}

func parseUserIDs(raw string) []int {
	users := make([]int, 0)
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if id, err := strconv.Atoi(part); err == nil {
			users = append(users, id)
		}
	}
	return users
}
