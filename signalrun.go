// Package signalrun wires feeds, the trade parameter calculator, the
// backtest simulator, storage and notifications into one runnable app.
package signalrun

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/aybabtme/uniplot/histogram"
	"github.com/olekukonko/tablewriter"

	"github.com/jmoneylabs/signalrun/backtest"
	"github.com/jmoneylabs/signalrun/calculator"
	"github.com/jmoneylabs/signalrun/core"
	"github.com/jmoneylabs/signalrun/notification"
	"github.com/jmoneylabs/signalrun/storage"

	"github.com/jmoneylabs/signalrun/logger/zerolog"
)

const defaultDatabase = "signalrun.db"

// SignalRun orchestrates the signal evaluation and backtesting pipeline
type SignalRun struct {
	settings   core.Settings
	feeder     core.Feeder
	calculator *calculator.Calculator
	simulator  *backtest.Simulator
	storage    core.SignalStorage
	notifier   core.Notifier
	telegram   core.NotifierWithStart
	logger     core.Logger

	backtestConfig backtest.Config
	calcOptions    []calculator.Option

	lastResult *core.BacktestResult
}

// Option is a functional option for configuring a SignalRun instance
type Option func(*SignalRun)

// New creates a SignalRun app with the provided settings and data feed
func New(ctx context.Context, settings core.Settings, feeder core.Feeder, options ...Option) (*SignalRun, error) {
	app := &SignalRun{
		settings:       settings,
		feeder:         feeder,
		backtestConfig: backtest.DefaultConfig(),
	}

	if len(settings.Tickers) == 0 {
		return nil, fmt.Errorf("no tickers configured")
	}

	for _, option := range options {
		option(app)
	}

	if err := initializeLogger(app); err != nil {
		return nil, err
	}

	if err := initializeStorage(app); err != nil {
		return nil, err
	}

	if err := initializeNotifications(app, settings); err != nil {
		return nil, err
	}

	app.calculator = calculator.New(append([]calculator.Option{
		calculator.WithLogger(app.logger),
	}, app.calcOptions...)...)

	app.simulator = backtest.NewSimulator(
		feeder,
		app.logger,
		backtest.WithConfig(app.backtestConfig),
		backtest.WithStorage(app.storage),
	)

	return app, nil
}

func initializeLogger(app *SignalRun) error {
	if app.logger != nil {
		return nil
	}
	log, err := zerolog.NewZerolog("info", "2006-01-02 15:04:05", true, false)
	if err != nil {
		return err
	}
	app.logger = zerolog.NewAdapter(log.Logger)
	return nil
}

func initializeStorage(app *SignalRun) error {
	var err error
	if app.storage == nil {
		app.storage, err = storage.NewFromFile(defaultDatabase)
		if err != nil {
			return err
		}
	}
	return nil
}

func initializeNotifications(app *SignalRun, settings core.Settings) error {
	if !settings.Telegram.Enabled {
		return nil
	}

	telegram, err := notification.NewTelegram(&settings, app.logger,
		notification.WithStorage(app.storage))
	if err != nil {
		return err
	}

	app.telegram = telegram
	if app.notifier == nil {
		app.notifier = telegram
	}
	return nil
}

// WithStorage sets the storage for the app, by default it uses a local
// file called signalrun.db
func WithStorage(s core.SignalStorage) Option {
	return func(app *SignalRun) {
		app.storage = s
	}
}

// WithNotifier registers a notifier for signals, results and errors
func WithNotifier(notifier core.Notifier) Option {
	return func(app *SignalRun) {
		app.notifier = notifier
	}
}

// WithLogger replaces the default console logger
func WithLogger(log core.Logger) Option {
	return func(app *SignalRun) {
		app.logger = log
	}
}

// WithLogLevel sets the log level of the default logger
func WithLogLevel(level core.Level) Option {
	return func(app *SignalRun) {
		if app.logger != nil {
			app.logger.SetLevel(level)
		}
	}
}

// WithBacktestConfig replaces the default simulation cost model
func WithBacktestConfig(config backtest.Config) Option {
	return func(app *SignalRun) {
		app.backtestConfig = config
	}
}

// WithRiskPolicy selects the risk policy used for trade parameters
func WithRiskPolicy(policy calculator.RiskPolicy) Option {
	return func(app *SignalRun) {
		app.calcOptions = append(app.calcOptions, calculator.WithPolicy(policy))
	}
}

// WithAccountRisk enables position sizing against an account budget
func WithAccountRisk(account calculator.AccountRisk) Option {
	return func(app *SignalRun) {
		app.calcOptions = append(app.calcOptions, calculator.WithAccountRisk(account))
	}
}

// Logger exposes the configured logger
func (s *SignalRun) Logger() core.Logger { return s.logger }

// Storage exposes the configured signal storage
func (s *SignalRun) Storage() core.SignalStorage { return s.storage }

// Start brings up the notification loop, if one is configured
func (s *SignalRun) Start() {
	if s.telegram != nil {
		s.telegram.Start()
	}
}

// Evaluate computes trade parameters for one signal from fresh market
// data, persists the signal and notifies subscribers. The returned
// parameters are always structurally complete; check Valid before trading.
func (s *SignalRun) Evaluate(ctx context.Context, signal core.TradeSignal) (core.TradeParameters, error) {
	candles, err := s.feeder.CandlesByLimit(ctx, signal.Ticker, s.backtestConfig.Timeframe, s.backtestConfig.HistoryBars)
	if err != nil {
		return core.TradeParameters{TPStrategy: "N/A"}, fmt.Errorf("failed to fetch candles for %s: %w", signal.Ticker, err)
	}

	df := core.NewDataframe(signal.Ticker, candles)
	params := s.calculator.Calculate(df, signal.Direction, signal.Confidence)

	if s.storage != nil {
		if err := s.storage.CreateSignal(ctx, &signal); err != nil {
			s.logger.Warnf("failed to persist signal for %s: %v", signal.Ticker, err)
		}
	}

	if s.notifier != nil {
		s.notifier.OnSignal(signal, params)
	}

	return params, nil
}

// Backtest replays a batch of signals and returns the aggregate result
func (s *SignalRun) Backtest(ctx context.Context, signals []core.TradeSignal) core.BacktestResult {
	result := s.simulator.Run(ctx, signals)
	s.lastResult = &result

	if s.notifier != nil {
		s.notifier.OnBacktest(result)
	}

	return result
}

// Summary prints the last backtest result to stdout: the trade table,
// aggregate metrics and a histogram of per-trade returns
func (s *SignalRun) Summary() {
	if s.lastResult == nil {
		fmt.Println("no backtest results yet")
		return
	}

	report := backtest.Report{Result: *s.lastResult}
	fmt.Println(report.String())

	returns := report.Returns()
	if len(returns) == 0 {
		return
	}

	fmt.Println("------ RETURN (% of risk budget) -------")
	hist := histogram.Hist(15, returns)
	if err := histogram.Fprint(os.Stdout, hist, histogram.Linear(10)); err != nil {
		s.logger.Warnf("failed to render histogram: %v", err)
	}
	fmt.Println()

	s.printEquityTable()
}

func (s *SignalRun) printEquityTable() {
	buffer := bytes.NewBuffer(nil)
	table := tablewriter.NewWriter(buffer)
	table.SetHeader([]string{"Point", "Equity"})
	table.SetColumnAlignment([]int{tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_RIGHT})

	curve := s.lastResult.EquityCurve
	for i, value := range curve {
		table.Append([]string{strconv.Itoa(i), fmt.Sprintf("%.2f", value)})
	}
	table.Render()

	fmt.Println("------ EQUITY CURVE -------")
	fmt.Println(buffer.String())
}
