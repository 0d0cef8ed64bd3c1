// Package decision scores assets and maps the scores to trade directions
// through a fixed rule table. The technical and trap-risk scores are
// computed locally from the candle series; macro, sentiment and catalyst
// inputs come from upstream analysis.
package decision

import (
	"strings"

	"github.com/jmoneylabs/signalrun/core"
)

// Catalysts that qualify for the boost strategy
var boostCatalysts = map[string]bool{
	"fed":      true,
	"earnings": true,
	"cpi":      true,
	"jobs":     true,
}

// Scores carries the component scores of one asset, each on a 0-10
// scale. Technical and TrapRisk come from ScoreTechnical/ScoreTrapRisk;
// Macro, Sentiment and Catalyst are filled by upstream analysis.
// TrapRisk is inverted: higher means more likely a trap.
type Scores struct {
	Technical float64
	Macro     float64
	Sentiment float64
	TrapRisk  float64
	Catalyst  string
}

// Outcome is the mapped strategy for one asset
type Outcome struct {
	Strategy   string
	Direction  core.Direction
	Reasoning  string
	Confidence float64
}

// Confidence blends the component scores into a single 0-10 value.
// Trap risk subtracts: a perfect setup with maximum trap risk only
// scores 8.
func Confidence(scores Scores) float64 {
	return scores.Technical*0.4 + scores.Macro*0.4 + (10-scores.TrapRisk)*0.2
}

// Map applies the decision table to a scored asset
func Map(scores Scores) Outcome {
	outcome := Outcome{
		Strategy:   "Neutral",
		Direction:  core.DirectionNeutral,
		Reasoning:  "No clear signal",
		Confidence: Confidence(scores),
	}

	catalyst := strings.ToLower(scores.Catalyst)

	switch {
	case scores.TrapRisk >= 7:
		outcome.Strategy = "Short / Avoid"
		outcome.Direction = core.DirectionAvoid
		outcome.Reasoning = "High trap risk detected"

	case boostCatalysts[catalyst] && scores.TrapRisk < 5:
		outcome.Strategy = "Boost"
		outcome.Direction = core.DirectionSell
		if scores.Technical >= 6 {
			outcome.Direction = core.DirectionBuy
		}
		outcome.Reasoning = "Catalyst detected: " + scores.Catalyst

	case scores.Technical >= 8 && scores.Macro >= 6 && scores.TrapRisk < 4:
		outcome.Strategy = "Zen"
		outcome.Direction = core.DirectionBuy
		outcome.Reasoning = "Strong technical and macro confirmation, low trap risk"

	case scores.Technical < 5 && scores.Macro < 5:
		outcome.Strategy = "Neutral"
		outcome.Direction = core.DirectionNeutral
		outcome.Reasoning = "Weak technical and macro scores"

	case scores.Sentiment > 8 && scores.TrapRisk >= 4 && scores.TrapRisk < 7:
		outcome.Strategy = "Caution"
		outcome.Direction = core.DirectionHold
		outcome.Reasoning = "High retail sentiment with moderate trap risk"
	}

	return outcome
}
