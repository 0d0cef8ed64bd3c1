package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoneylabs/signalrun/core"
	"github.com/samber/lo"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// SQLStorage implements core.SignalStorage using a SQL database via GORM
type SQLStorage struct {
	db *gorm.DB
}

// Config holds the configuration for SQL database connections
type Config struct {
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
}

// DefaultConfig returns a default configuration for SQL connections
func DefaultConfig() Config {
	return Config{
		MaxIdleConns:    5,
		MaxOpenConns:    10,
		ConnMaxLifetime: time.Hour,
	}
}

// NewFromSQLite creates a new SQLite storage instance
func NewFromSQLite(dbPath string, config Config, opts ...gorm.Option) (core.SignalStorage, error) {
	dialect := sqlite.Open(dbPath)
	return newFromSQL(dialect, config, opts...)
}

func newFromSQL(dialect gorm.Dialector, config Config, opts ...gorm.Option) (core.SignalStorage, error) {
	db, err := gorm.Open(dialect, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	sqlDB.SetMaxIdleConns(config.MaxIdleConns)
	sqlDB.SetMaxOpenConns(config.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(config.ConnMaxLifetime)

	if err = db.AutoMigrate(&core.TradeSignal{}, &core.SimulatedTrade{}); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &SQLStorage{db: db}, nil
}

// CreateSignal creates a new signal in the SQL database
func (s *SQLStorage) CreateSignal(ctx context.Context, signal *core.TradeSignal) error {
	tx := s.db.WithContext(ctx)
	if result := tx.Create(signal); result.Error != nil {
		return fmt.Errorf("failed to create signal: %w", result.Error)
	}
	return nil
}

// UpdateSignal updates an existing signal in the SQL database
func (s *SQLStorage) UpdateSignal(ctx context.Context, signal *core.TradeSignal) error {
	tx := s.db.WithContext(ctx)

	var existing core.TradeSignal
	if result := tx.First(&existing, signal.ID); result.Error != nil {
		return fmt.Errorf("signal not found: %w", result.Error)
	}

	if result := tx.Save(signal); result.Error != nil {
		return fmt.Errorf("failed to update signal: %w", result.Error)
	}

	return nil
}

// Signals retrieves signals from the SQL database based on provided filters
func (s *SQLStorage) Signals(ctx context.Context, filters ...core.SignalFilter) ([]*core.TradeSignal, error) {
	tx := s.db.WithContext(ctx)

	var signals []*core.TradeSignal
	if result := tx.Find(&signals); result.Error != nil && result.Error != gorm.ErrRecordNotFound {
		return nil, fmt.Errorf("failed to fetch signals: %w", result.Error)
	}

	// Filters are in-memory predicates, applied after the fetch
	if len(filters) > 0 {
		signals = lo.Filter(signals, func(signal *core.TradeSignal, _ int) bool {
			for _, filter := range filters {
				if !filter(*signal) {
					return false
				}
			}
			return true
		})
	}

	return signals, nil
}

// SaveTrade stores a simulated trade outcome in the SQL database
func (s *SQLStorage) SaveTrade(ctx context.Context, trade *core.SimulatedTrade) error {
	tx := s.db.WithContext(ctx)
	if result := tx.Create(trade); result.Error != nil {
		return fmt.Errorf("failed to save trade: %w", result.Error)
	}
	return nil
}

// SignalsWithQuery allows for customized querying using GORM's query builder
func (s *SQLStorage) SignalsWithQuery(ctx context.Context, queryFn func(*gorm.DB) *gorm.DB) ([]*core.TradeSignal, error) {
	tx := s.db.WithContext(ctx)

	var signals []*core.TradeSignal
	result := queryFn(tx).Find(&signals)

	if result.Error != nil && result.Error != gorm.ErrRecordNotFound {
		return nil, fmt.Errorf("failed to execute query: %w", result.Error)
	}

	return signals, nil
}

// WithTransaction executes the given function within a database transaction
func (s *SQLStorage) WithTransaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return s.db.WithContext(ctx).Transaction(fn)
}

// Close closes the database connection
func (s *SQLStorage) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}
	return sqlDB.Close()
}
