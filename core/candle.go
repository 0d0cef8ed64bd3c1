package core

import (
	"fmt"
	"strconv"
	"time"
)

// Candle represents one OHLCV price bar
type Candle struct {
	Ticker   string
	Time     time.Time
	Open     float64
	High     float64
	Low      float64
	Close    float64
	Volume   float64
	Complete bool
}

// GetTicker returns the instrument identifier for the candle
func (c Candle) GetTicker() string { return c.Ticker }

// GetTime returns the timestamp of the candle
func (c Candle) GetTime() time.Time { return c.Time }

// IsEmpty checks if the candle contains no significant data
func (c Candle) IsEmpty() bool { return c.Ticker == "" && c.Close == 0 && c.Open == 0 && c.Volume == 0 }

// ToSlice converts a candle to a string slice for CSV serialization
// with the specified decimal precision
func (c Candle) ToSlice(precision int) []string {
	return []string{
		fmt.Sprintf("%d", c.Time.Unix()),
		strconv.FormatFloat(c.Open, 'f', precision, 64),
		strconv.FormatFloat(c.Close, 'f', precision, 64),
		strconv.FormatFloat(c.Low, 'f', precision, 64),
		strconv.FormatFloat(c.High, 'f', precision, 64),
		strconv.FormatFloat(c.Volume, 'f', precision, 64),
	}
}
