// Package notification provides implementations for various notification services
package notification

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"slices"

	"github.com/jmoneylabs/signalrun/core"
	tb "gopkg.in/tucnak/telebot.v2"
)

const (
	pollingTimeout = 10 * time.Second

	// recentSignalWindow bounds the /signals listing
	recentSignalWindow = 7 * 24 * time.Hour
)

var signalsRegexp = regexp.MustCompile(`/signals(?:\s+(?P<ticker>\w+))?`)

// Telegram implements the core.NotifierWithStart interface
type Telegram struct {
	settings    *core.Settings
	storage     core.SignalStorage
	defaultMenu *tb.ReplyMarkup
	client      *tb.Bot
	log         core.Logger
}

// Option is a function that configures a telegram instance
type Option func(telegram *Telegram)

// WithStorage lets the bot answer /signals queries from persisted signals
func WithStorage(storage core.SignalStorage) Option {
	return func(telegram *Telegram) {
		telegram.storage = storage
	}
}

// NewTelegram creates and initializes a new Telegram service
func NewTelegram(settings *core.Settings, log core.Logger, options ...Option) (
	core.NotifierWithStart,
	error,
) {
	menu := &tb.ReplyMarkup{ResizeReplyKeyboard: true}
	poller := &tb.LongPoller{Timeout: pollingTimeout}
	userMiddleware := newAuthMiddleware(poller, settings, log)

	client, err := initializeBotClient(settings, userMiddleware)
	if err != nil {
		return nil, err
	}

	setupKeyboard(menu)
	if err := setupCommands(client); err != nil {
		return nil, fmt.Errorf("failed to set commands: %w", err)
	}

	bot := &Telegram{
		client:      client,
		settings:    settings,
		defaultMenu: menu,
		log:         log,
	}

	for _, option := range options {
		option(bot)
	}

	registerHandlers(client, bot)

	return bot, nil
}

// initializeBotClient creates and configures the Telegram bot client
func initializeBotClient(settings *core.Settings, middleware *tb.MiddlewarePoller) (*tb.Bot, error) {
	client, err := tb.NewBot(tb.Settings{
		ParseMode: tb.ModeMarkdown,
		Token:     settings.Telegram.Token,
		Poller:    middleware,
	})

	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	return client, nil
}

// newAuthMiddleware creates a middleware to validate authorized users
func newAuthMiddleware(poller *tb.LongPoller, settings *core.Settings, log core.Logger) *tb.MiddlewarePoller {
	return tb.NewMiddlewarePoller(poller, func(u *tb.Update) bool {
		if u.Message == nil || u.Message.Sender == nil {
			log.Error("message or sender is nil ", u)
			return false
		}

		if slices.Contains(settings.Telegram.Users, int(u.Message.Sender.ID)) {
			return true
		}

		log.Error("unauthorized user ", u.Message.Sender.ID)
		return false
	})
}

// setupKeyboard configures the reply keyboard layout
func setupKeyboard(menu *tb.ReplyMarkup) {
	var (
		helpBtn    = menu.Text("/help")
		signalsBtn = menu.Text("/signals")
		tickersBtn = menu.Text("/tickers")
	)

	menu.Reply(
		menu.Row(signalsBtn, tickersBtn, helpBtn),
	)
}

// setupCommands configures available bot commands
func setupCommands(client *tb.Bot) error {
	return client.SetCommands([]tb.Command{
		{Text: "/help", Description: "Display help instructions"},
		{Text: "/signals", Description: "List recent signals, optionally for one ticker"},
		{Text: "/tickers", Description: "List tracked tickers"},
	})
}

// registerHandlers registers all command handlers
func registerHandlers(client *tb.Bot, bot *Telegram) {
	client.Handle("/help", bot.HelpHandle)
	client.Handle("/signals", bot.SignalsHandle)
	client.Handle("/tickers", bot.TickersHandle)
}

// Start begins the Telegram bot and notifies all authorized users
func (t *Telegram) Start() {
	go t.client.Start()
	t.sendMessageWithOptions("Signal bot initialized.", t.defaultMenu)
}

// Notification methods
// -------------------

// Notify sends a message to all authorized users
func (t *Telegram) Notify(text string) {
	for _, user := range t.settings.Telegram.Users {
		_, err := t.client.Send(&tb.User{ID: int64(user)}, text)
		if err != nil {
			t.log.Errorf("failed to send notification: %v", err)
		}
	}
}

// sendMessageWithOptions sends a message to all authorized users with additional options
func (t *Telegram) sendMessageWithOptions(text string, options ...any) {
	for _, user := range t.settings.Telegram.Users {
		_, err := t.client.Send(&tb.User{ID: int64(user)}, text, options...)
		if err != nil {
			t.log.Errorf("failed to send notification with options: %v", err)
		}
	}
}

// sendMessage sends a message to a specific user
func (t *Telegram) sendMessage(to *tb.User, text string, options ...any) {
	_, err := t.client.Send(to, text, options...)
	if err != nil {
		t.log.Errorf("failed to send message: %v", err)
	}
}

// Command handlers
// ---------------

// HelpHandle displays available commands
func (t *Telegram) HelpHandle(m *tb.Message) {
	commands, err := t.client.GetCommands()
	if err != nil {
		t.log.Errorf("failed to get commands: %v", err)
		t.OnError(err)
		return
	}

	lines := make([]string, 0, len(commands))
	for _, command := range commands {
		lines = append(lines, fmt.Sprintf("/%s - %s", command.Text, command.Description))
	}

	t.sendMessage(m.Sender, strings.Join(lines, "\n"))
}

// SignalsHandle lists recent stored signals
func (t *Telegram) SignalsHandle(m *tb.Message) {
	if t.storage == nil {
		t.sendMessage(m.Sender, "No signal storage configured.")
		return
	}

	filters := []core.SignalFilter{core.WithCreatedAfter(time.Now().Add(-recentSignalWindow))}

	match := signalsRegexp.FindStringSubmatch(m.Text)
	if len(match) > 1 && match[1] != "" {
		filters = append(filters, core.WithTicker(strings.ToUpper(match[1])))
	}

	signals, err := t.storage.Signals(context.Background(), filters...)
	if err != nil {
		t.OnError(err)
		return
	}

	if len(signals) == 0 {
		t.sendMessage(m.Sender, "No recent signals.")
		return
	}

	lines := make([]string, 0, len(signals))
	for _, signal := range signals {
		lines = append(lines, fmt.Sprintf("`%s` %s (%.1f/10)", signal.Ticker, signal.Direction, signal.Confidence))
	}

	t.sendMessage(m.Sender, strings.Join(lines, "\n"))
}

// TickersHandle lists the configured tickers
func (t *Telegram) TickersHandle(m *tb.Message) {
	if len(t.settings.Tickers) == 0 {
		t.sendMessage(m.Sender, "No tickers configured.")
		return
	}
	t.sendMessage(m.Sender, "Tracked: `"+strings.Join(t.settings.Tickers, "`, `")+"`")
}

// Event handlers
// -------------

// OnSignal notifies users about a newly calculated signal
func (t *Telegram) OnSignal(signal core.TradeSignal, params core.TradeParameters) {
	var sb strings.Builder

	fmt.Fprintf(&sb, "%s %s - %s\n", directionEmoji(signal.Direction), strings.ToUpper(string(signal.Direction)), signal.Ticker)
	sb.WriteString("-----\n")
	fmt.Fprintf(&sb, "Confidence: `%.1f/10`\n", signal.Confidence)
	fmt.Fprintf(&sb, "Entry: `%s`\n", params.LevelString(params.Entry))
	fmt.Fprintf(&sb, "Stop loss: `%s`\n", params.LevelString(params.StopLoss))
	fmt.Fprintf(&sb, "TP1: `%s`\n", params.LevelString(params.TakeProfit1))
	fmt.Fprintf(&sb, "TP2: `%s`\n", params.LevelString(params.TakeProfit2))
	fmt.Fprintf(&sb, "Strategy: %s\n", params.TPStrategy)
	fmt.Fprintf(&sb, "Size: `%s`\n", params.PositionSizeString())

	t.Notify(sb.String())
}

// OnBacktest notifies users with a backtest summary
func (t *Telegram) OnBacktest(result core.BacktestResult) {
	var sb strings.Builder

	sb.WriteString("📊 BACKTEST COMPLETE\n")
	sb.WriteString("-----\n")
	fmt.Fprintf(&sb, "Trades: `%d` (skipped %d)\n", result.TotalTrades, result.Skipped)
	fmt.Fprintf(&sb, "Win rate: `%.1f%%`\n", result.WinRate)
	fmt.Fprintf(&sb, "ROI: `%.2f%%`\n", result.ROI)
	fmt.Fprintf(&sb, "Max drawdown: `%.2f%%`\n", result.MaxDrawdown)
	fmt.Fprintf(&sb, "Final equity: `%.2f`\n", result.FinalEquity)

	t.Notify(sb.String())
}

// OnError notifies users about errors
func (t *Telegram) OnError(err error) {
	var sb strings.Builder
	sb.WriteString("🛑 ERROR\n")
	sb.WriteString("-----\n")
	sb.WriteString(err.Error())

	t.Notify(sb.String())
}

func directionEmoji(direction core.Direction) string {
	switch direction {
	case core.DirectionBuy:
		return "🟢"
	case core.DirectionSell:
		return "🔴"
	case core.DirectionAvoid:
		return "⚠️"
	default:
		return "⚪"
	}
}
