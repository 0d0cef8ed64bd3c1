package feed

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/jmoneylabs/signalrun/core"
)

// Column aliases seen across upstream signal exports. Resolution is
// case-insensitive and first match wins.
var (
	tickerAliases     = []string{"ticker", "symbol", "pair"}
	directionAliases  = []string{"signal", "direction", "side"}
	confidenceAliases = []string{"confidence score", "confidence", "score"}
	entryAliases      = []string{"entry", "entry price", "entry_price"}
	stopAliases       = []string{"stop loss", "stop_loss", "sl"}
	targetAliases     = []string{"tp1", "take profit", "take_profit", "tp"}
	assetTypeAliases  = []string{"asset type", "asset_type"}
	strategyAliases   = []string{"strategy"}
)

// ReadSignalsCSV loads a signal sheet exported by the upstream pipeline.
// Rows with an unparseable direction are dropped with a count so one bad
// row never loses the batch; monetary fields stay raw strings and are
// normalized later at the simulation boundary.
func ReadSignalsCSV(file string, log core.Logger) ([]core.TradeSignal, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	lines, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(lines) < 2 {
		return nil, fmt.Errorf("%s: %w", file, core.ErrInsufficientData)
	}

	header := make(map[string]int, len(lines[0]))
	for index, name := range lines[0] {
		header[strings.ToLower(strings.TrimSpace(name))] = index
	}

	var (
		signals []core.TradeSignal
		dropped int
	)
	for _, line := range lines[1:] {
		signal, err := parseSignalRow(line, header)
		if err != nil {
			dropped++
			log.Debugf("dropping signal row: %v", err)
			continue
		}
		signals = append(signals, signal)
	}

	if dropped > 0 {
		log.Warnf("loaded %d signals from %s, dropped %d malformed rows", len(signals), file, dropped)
	}
	return signals, nil
}

func parseSignalRow(line []string, header map[string]int) (core.TradeSignal, error) {
	ticker := lookup(line, header, tickerAliases)
	if ticker == "" {
		return core.TradeSignal{}, fmt.Errorf("row without ticker")
	}

	direction, err := core.ParseDirection(lookup(line, header, directionAliases))
	if err != nil {
		return core.TradeSignal{}, fmt.Errorf("%s: %w", ticker, err)
	}

	signal := core.TradeSignal{
		Ticker:     strings.ToUpper(ticker),
		Direction:  direction,
		Confidence: parseConfidence(lookup(line, header, confidenceAliases)),
		AssetType:  core.AssetType(strings.ToLower(lookup(line, header, assetTypeAliases))),
		Strategy:   lookup(line, header, strategyAliases),
		Entry:      lookup(line, header, entryAliases),
		StopLoss:   lookup(line, header, stopAliases),
		TakeProfit: lookup(line, header, targetAliases),
		CreatedAt:  time.Now().UTC(),
	}
	return signal, nil
}

// lookup returns the first non-empty cell matching any alias
func lookup(line []string, header map[string]int, aliases []string) string {
	for _, alias := range aliases {
		if index, ok := header[alias]; ok && index < len(line) {
			if value := strings.TrimSpace(line[index]); value != "" {
				return value
			}
		}
	}
	return ""
}

// parseConfidence reads scores like "7.5" or "7.5/10", falling back to
// the neutral default when absent
func parseConfidence(value string) float64 {
	if value == "" {
		return 5.0
	}
	value = strings.TrimSpace(strings.TrimSuffix(value, "/10"))
	confidence, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 5.0
	}
	if confidence < 0 {
		return 0
	}
	if confidence > 10 {
		return 10
	}
	return confidence
}
