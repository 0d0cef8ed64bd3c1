package calculator

import (
	"math"
	"math/rand"

	"github.com/jmoneylabs/signalrun/core"
	"github.com/jmoneylabs/signalrun/indicator"
)

// DefaultConfidence is assumed when the caller has no score for a signal
const DefaultConfidence = 5.0

// AccountRisk configures position sizing against an account balance
type AccountRisk struct {
	Balance      float64 // account equity in quote currency
	RiskFraction float64 // fraction of equity risked per trade, e.g. 0.01
}

// Calculator converts a price series and a signal's direction/confidence
// into concrete trade levels. It performs no I/O: the series must be
// fully resolved before the call.
type Calculator struct {
	policy  RiskPolicy
	account *AccountRisk
	rng     *rand.Rand
	log     core.Logger
}

// Option configures a Calculator
type Option func(*Calculator)

// WithPolicy selects the risk policy preset
func WithPolicy(policy RiskPolicy) Option {
	return func(c *Calculator) { c.policy = policy }
}

// WithAccountRisk enables position sizing from an account-risk budget
func WithAccountRisk(account AccountRisk) Option {
	return func(c *Calculator) { c.account = &account }
}

// WithExperimentalJitter enables the randomized TP-split exploration mode.
// The seed makes runs reproducible; without this option the split is a
// pure function of confidence.
func WithExperimentalJitter(seed int64) Option {
	return func(c *Calculator) { c.rng = rand.New(rand.NewSource(seed)) }
}

// WithLogger attaches a logger for fallback warnings
func WithLogger(log core.Logger) Option {
	return func(c *Calculator) { c.log = log }
}

// New creates a calculator with the confidence-scaled policy by default
func New(options ...Option) *Calculator {
	c := &Calculator{policy: PolicyConfidence()}
	for _, option := range options {
		option(c)
	}
	return c
}

// Calculate derives entry, stop-loss, both take-profit levels and the
// TP allocation for a signal. It never returns an error: series shorter
// than the policy minimum, NaN indicator values or any unexpected failure
// all degrade to a structurally complete "N/A" result that is safe to
// display directly.
func (c *Calculator) Calculate(df *core.Dataframe, direction core.Direction, confidence float64) (params core.TradeParameters) {
	params = core.TradeParameters{TPStrategy: "N/A"}

	// One malformed series must never take down a batch
	defer func() {
		if r := recover(); r != nil {
			if c.log != nil {
				c.log.Warnf("trade parameter calculation failed for %s: %v", tickerOf(df), r)
			}
			params = core.TradeParameters{TPStrategy: "N/A"}
		}
	}()

	if df == nil || df.Length() < c.policy.MinBars {
		return params
	}

	confidence = normalizeConfidence(confidence)

	atr := indicator.ATR(df.High, df.Low, df.Close, c.policy.ATRPeriod)
	entry := df.Close.Last(0)
	if math.IsNaN(atr) || atr == 0 {
		if c.log != nil {
			c.log.Warnf("ATR unavailable for %s, using %.0f%% of price as fallback",
				df.Ticker, c.policy.FallbackPct*100)
		}
		atr = entry * c.policy.FallbackPct
	}

	riskPerShare := atr * c.policy.Multiplier(confidence)
	tp1Distance := riskPerShare * c.policy.TP1Ratio(confidence)
	tp2Distance := riskPerShare * c.policy.TP2Ratio(confidence)

	// Low-priced instruments (penny stocks, forex pairs) need more precision
	decimals := 2
	if entry < 10 {
		decimals = 4
	}

	params.Valid = true
	params.Decimals = decimals
	params.Entry = roundTo(entry, decimals)

	switch direction {
	case core.DirectionSell:
		params.StopLoss = roundTo(entry+riskPerShare, decimals)
		params.TakeProfit1 = roundTo(entry-tp1Distance, decimals)
		params.TakeProfit2 = roundTo(entry-tp2Distance, decimals)
	case core.DirectionBuy:
		params.StopLoss = roundTo(entry-riskPerShare, decimals)
		params.TakeProfit1 = roundTo(entry+tp1Distance, decimals)
		params.TakeProfit2 = roundTo(entry+tp2Distance, decimals)
	default:
		// Hypothetical long-side levels, informational only
		params.Reference = true
		params.StopLoss = roundTo(entry-riskPerShare, decimals)
		params.TakeProfit1 = roundTo(entry+tp1Distance, decimals)
		params.TakeProfit2 = roundTo(entry+tp2Distance, decimals)
	}

	if params.Reference {
		params.TPStrategy = referenceStrategy(confidence)
	} else {
		tp1Pct, tp2Pct := TPSplit(confidence)
		if c.rng != nil {
			tp1Pct, tp2Pct = jitterSplit(c.rng, tp1Pct, tp2Pct)
		}
		params.TPStrategy = splitStrategy(tp1Pct, tp2Pct)
	}

	if c.account != nil && direction.Actionable() && riskPerShare > 0 {
		params.PositionSize = c.account.Balance * c.account.RiskFraction / riskPerShare
	}

	return params
}

// normalizeConfidence clamps the score to [0,10], substituting the
// default when the caller had none
func normalizeConfidence(confidence float64) float64 {
	if math.IsNaN(confidence) {
		return DefaultConfidence
	}
	return math.Min(10, math.Max(0, confidence))
}

func roundTo(value float64, decimals int) float64 {
	scale := math.Pow(10, float64(decimals))
	return math.Round(value*scale) / scale
}

func tickerOf(df *core.Dataframe) string {
	if df == nil {
		return "<nil>"
	}
	return df.Ticker
}
