package core

import (
	"fmt"
	"strings"
	"time"
)

// Direction is the trade side suggested by the upstream signal producer
type Direction string

// Available signal directions
const (
	DirectionBuy     Direction = "Buy"
	DirectionSell    Direction = "Sell"
	DirectionHold    Direction = "Hold"
	DirectionNeutral Direction = "Neutral"
	DirectionAvoid   Direction = "Avoid"
)

// Actionable reports whether the direction opens a position.
// Only Buy and Sell are sized and simulated; everything else is informational.
func (d Direction) Actionable() bool {
	return d == DirectionBuy || d == DirectionSell
}

// ParseDirection normalizes a free-form direction string
func ParseDirection(value string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "buy", "long":
		return DirectionBuy, nil
	case "sell", "short":
		return DirectionSell, nil
	case "hold":
		return DirectionHold, nil
	case "neutral":
		return DirectionNeutral, nil
	case "avoid":
		return DirectionAvoid, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidDirection, value)
	}
}

// AssetType identifies the market an instrument trades on.
// It only affects upstream routing, never the simulation math.
type AssetType string

// Known asset types
const (
	AssetStocks  AssetType = "stocks"
	AssetCrypto  AssetType = "crypto"
	AssetForex   AssetType = "forex"
	AssetIndices AssetType = "indices"
)

// TradeSignal is one actionable (or informational) record produced upstream.
// Price levels are kept as raw strings because upstream sources annotate them
// ("$12.34", "45.10 (ref)"); resolution to numbers happens at the
// simulation boundary.
type TradeSignal struct {
	ID         int64     `json:"id"`
	Ticker     string    `json:"ticker"`
	Direction  Direction `json:"direction"`
	Confidence float64   `json:"confidence"`
	AssetType  AssetType `json:"asset_type"`
	Strategy   string    `json:"strategy"`
	Entry      string    `json:"entry"`
	StopLoss   string    `json:"stop_loss"`
	TakeProfit string    `json:"take_profit"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
