package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync/atomic"

	"github.com/jmoneylabs/signalrun/core"
	"github.com/tidwall/buntdb"
)

const (
	// DefaultIndexName orders signals by their last update timestamp
	DefaultIndexName = "update_index"

	signalPrefix = "signal:"
	tradePrefix  = "trade:"
)

// BuntStorage implements core.SignalStorage using BuntDB
type BuntStorage struct {
	lastSignalID int64
	lastTradeID  int64
	db           *buntdb.DB
}

// BuntConfig holds configuration options for BuntDB
type BuntConfig struct {
	// Additional indexes to create beyond the default update_index
	AdditionalIndexes map[string]string
	// SyncPolicy determines how often data is synchronized to disk
	SyncPolicy buntdb.SyncPolicy
}

// DefaultBuntConfig returns the default configuration for BuntDB
func DefaultBuntConfig() BuntConfig {
	return BuntConfig{
		AdditionalIndexes: make(map[string]string),
		SyncPolicy:        buntdb.Never,
	}
}

// NewFromMemory creates an in-memory storage with default configuration
func NewFromMemory() (core.SignalStorage, error) {
	return NewBuntStorage(":memory:", DefaultBuntConfig())
}

// NewFromFile creates a file-based storage with default configuration
func NewFromFile(file string) (core.SignalStorage, error) {
	return NewBuntStorage(file, DefaultBuntConfig())
}

// NewBuntStorage creates a new BuntDB storage instance with the specified configuration
func NewBuntStorage(sourceFile string, config BuntConfig) (core.SignalStorage, error) {
	db, err := buntdb.Open(sourceFile)
	if err != nil {
		return nil, fmt.Errorf("failed to open buntdb: %w", err)
	}

	if err := db.SetConfig(buntdb.Config{
		SyncPolicy: config.SyncPolicy,
	}); err != nil {
		return nil, fmt.Errorf("failed to configure buntdb: %w", err)
	}

	if err := db.CreateIndex(DefaultIndexName, signalPrefix+"*", buntdb.IndexJSON("updated_at")); err != nil {
		return nil, fmt.Errorf("failed to create default index: %w", err)
	}

	for name, pattern := range config.AdditionalIndexes {
		if err := db.CreateIndex(name, signalPrefix+"*", buntdb.IndexJSON(pattern)); err != nil {
			return nil, fmt.Errorf("failed to create index %s: %w", name, err)
		}
	}

	return &BuntStorage{db: db}, nil
}

func (b *BuntStorage) nextSignalID() int64 {
	return atomic.AddInt64(&b.lastSignalID, 1)
}

func (b *BuntStorage) nextTradeID() int64 {
	return atomic.AddInt64(&b.lastTradeID, 1)
}

// CreateSignal stores a new signal in the database
func (b *BuntStorage) CreateSignal(_ context.Context, signal *core.TradeSignal) error {
	return b.db.Update(func(tx *buntdb.Tx) error {
		if signal.ID == 0 {
			signal.ID = b.nextSignalID()
		}

		content, err := json.Marshal(signal)
		if err != nil {
			return fmt.Errorf("failed to marshal signal: %w", err)
		}

		key := signalPrefix + strconv.FormatInt(signal.ID, 10)
		if _, _, err := tx.Set(key, string(content), nil); err != nil {
			return fmt.Errorf("failed to store signal: %w", err)
		}

		return nil
	})
}

// UpdateSignal updates an existing signal in the database
func (b *BuntStorage) UpdateSignal(_ context.Context, signal *core.TradeSignal) error {
	return b.db.Update(func(tx *buntdb.Tx) error {
		key := signalPrefix + strconv.FormatInt(signal.ID, 10)

		if _, err := tx.Get(key); err != nil {
			return fmt.Errorf("signal not found: %w", err)
		}

		content, err := json.Marshal(signal)
		if err != nil {
			return fmt.Errorf("failed to marshal signal: %w", err)
		}

		if _, _, err := tx.Set(key, string(content), nil); err != nil {
			return fmt.Errorf("failed to update signal: %w", err)
		}

		return nil
	})
}

// Signals retrieves signals from the database based on provided filters
func (b *BuntStorage) Signals(_ context.Context, filters ...core.SignalFilter) ([]*core.TradeSignal, error) {
	signals := make([]*core.TradeSignal, 0)

	err := b.db.View(func(tx *buntdb.Tx) error {
		err := tx.Ascend(DefaultIndexName, func(key, value string) bool {
			var signal core.TradeSignal
			if err := json.Unmarshal([]byte(value), &signal); err != nil {
				return true // skip unreadable records
			}

			for _, filter := range filters {
				if !filter(signal) {
					return true
				}
			}

			signals = append(signals, &signal)
			return true
		})

		if err != nil {
			return fmt.Errorf("failed to iterate over signals: %w", err)
		}

		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("failed to query signals: %w", err)
	}

	return signals, nil
}

// SaveTrade stores the outcome of one simulated trade
func (b *BuntStorage) SaveTrade(_ context.Context, trade *core.SimulatedTrade) error {
	return b.db.Update(func(tx *buntdb.Tx) error {
		if trade.ID == 0 {
			trade.ID = b.nextTradeID()
		}

		content, err := json.Marshal(trade)
		if err != nil {
			return fmt.Errorf("failed to marshal trade: %w", err)
		}

		key := tradePrefix + strconv.FormatInt(trade.ID, 10)
		if _, _, err := tx.Set(key, string(content), nil); err != nil {
			return fmt.Errorf("failed to store trade: %w", err)
		}

		return nil
	})
}

// Trades returns every stored trade outcome
func (b *BuntStorage) Trades(_ context.Context) ([]*core.SimulatedTrade, error) {
	trades := make([]*core.SimulatedTrade, 0)

	err := b.db.View(func(tx *buntdb.Tx) error {
		return tx.AscendKeys(tradePrefix+"*", func(key, value string) bool {
			var trade core.SimulatedTrade
			if err := json.Unmarshal([]byte(value), &trade); err != nil {
				return true
			}
			trades = append(trades, &trade)
			return true
		})
	})

	if err != nil {
		return nil, fmt.Errorf("failed to query trades: %w", err)
	}

	return trades, nil
}

// Close closes the database connection
func (b *BuntStorage) Close() error {
	if b.db != nil {
		return b.db.Close()
	}
	return nil
}
