package core

import (
	"time"
)

// Dataframe is a strongly-typed time series container for OHLCV data.
// Column normalization happens at the ingestion boundary; consumers never
// need to guess column names.
type Dataframe struct {
	Ticker string

	Close  Series[float64]
	Open   Series[float64]
	High   Series[float64]
	Low    Series[float64]
	Volume Series[float64]

	Time       []time.Time
	LastUpdate time.Time
}

// NewDataframe builds a dataframe from a chronologically ordered candle slice
func NewDataframe(ticker string, candles []Candle) *Dataframe {
	df := &Dataframe{Ticker: ticker}
	for _, candle := range candles {
		df.Append(candle)
	}
	return df
}

// Append adds a new candle to the end of the dataframe
func (df *Dataframe) Append(candle Candle) {
	df.Open = append(df.Open, candle.Open)
	df.High = append(df.High, candle.High)
	df.Low = append(df.Low, candle.Low)
	df.Close = append(df.Close, candle.Close)
	df.Volume = append(df.Volume, candle.Volume)
	df.Time = append(df.Time, candle.Time)
	df.LastUpdate = candle.Time
}

// Length returns the number of bars in the dataframe
func (df Dataframe) Length() int {
	return len(df.Time)
}

// Sample returns a subset of the dataframe with the last 'positions' elements
// Used for windowing operations on a dataframe
func (df Dataframe) Sample(positions int) Dataframe {
	size := len(df.Time)
	start := size - positions

	// Return the entire dataframe if requested sample is larger than dataframe
	if start <= 0 {
		return df
	}

	return Dataframe{
		Ticker:     df.Ticker,
		Close:      df.Close.LastValues(positions),
		Open:       df.Open.LastValues(positions),
		High:       df.High.LastValues(positions),
		Low:        df.Low.LastValues(positions),
		Volume:     df.Volume.LastValues(positions),
		Time:       df.Time[start:],
		LastUpdate: df.LastUpdate,
	}
}
