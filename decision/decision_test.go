package decision

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jmoneylabs/signalrun/core"
)

func TestMapTrapRiskOverridesEverything(t *testing.T) {
	outcome := Map(Scores{Technical: 9, Macro: 9, Sentiment: 9, TrapRisk: 8, Catalyst: "fed"})
	assert.Equal(t, core.DirectionAvoid, outcome.Direction)
	assert.Equal(t, "Short / Avoid", outcome.Strategy)
}

func TestMapCatalystBoost(t *testing.T) {
	long := Map(Scores{Technical: 7, Macro: 5, TrapRisk: 2, Catalyst: "Earnings"})
	assert.Equal(t, "Boost", long.Strategy)
	assert.Equal(t, core.DirectionBuy, long.Direction)

	short := Map(Scores{Technical: 4, Macro: 5, TrapRisk: 2, Catalyst: "cpi"})
	assert.Equal(t, "Boost", short.Strategy)
	assert.Equal(t, core.DirectionSell, short.Direction)
}

func TestMapZenRequiresAllThree(t *testing.T) {
	zen := Map(Scores{Technical: 8, Macro: 6, TrapRisk: 3})
	assert.Equal(t, "Zen", zen.Strategy)
	assert.Equal(t, core.DirectionBuy, zen.Direction)

	notZen := Map(Scores{Technical: 8, Macro: 5, TrapRisk: 3})
	assert.NotEqual(t, "Zen", notZen.Strategy)
}

func TestMapCautionOnCrowdedSentiment(t *testing.T) {
	outcome := Map(Scores{Technical: 6, Macro: 6, Sentiment: 9, TrapRisk: 5})
	assert.Equal(t, "Caution", outcome.Strategy)
	assert.Equal(t, core.DirectionHold, outcome.Direction)
}

func TestMapNeutralDefault(t *testing.T) {
	outcome := Map(Scores{Technical: 4, Macro: 4, Sentiment: 5, TrapRisk: 3})
	assert.Equal(t, core.DirectionNeutral, outcome.Direction)
}

func TestConfidenceWeights(t *testing.T) {
	assert.InDelta(t, 10.0, Confidence(Scores{Technical: 10, Macro: 10, TrapRisk: 0}), 1e-9)
	assert.InDelta(t, 8.0, Confidence(Scores{Technical: 10, Macro: 10, TrapRisk: 10}), 1e-9)
	assert.InDelta(t, 5.0, Confidence(Scores{Technical: 5, Macro: 5, TrapRisk: 5}), 1e-9)
}
