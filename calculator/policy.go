// Package calculator derives risk-managed trade levels from market
// volatility and signal confidence
package calculator

// Defaults shared by all risk policies
const (
	DefaultATRPeriod   = 14
	DefaultMinBars     = 20
	DefaultFallbackPct = 0.02 // fraction of the latest close when ATR is unavailable
)

// RiskPolicy is a versioned set of stop/target sizing rules. Two presets
// exist because both appeared during the life of the system; the scaled
// preset is the canonical default.
type RiskPolicy struct {
	Name        string
	ATRPeriod   int
	MinBars     int
	FallbackPct float64

	// Fixed parameters, used when Scaled is false
	ATRMultiplier float64
	TP1RR         float64
	TP2RR         float64

	// Scaled derives the multiplier and reward ratios from the
	// confidence score instead of the fixed parameters above
	Scaled bool
}

// PolicyClassic is the original fixed-parameter policy:
// stop at 2 ATR, targets at 2R and 4R regardless of confidence.
func PolicyClassic() RiskPolicy {
	return RiskPolicy{
		Name:          "classic",
		ATRPeriod:     DefaultATRPeriod,
		MinBars:       DefaultMinBars,
		FallbackPct:   DefaultFallbackPct,
		ATRMultiplier: 2.0,
		TP1RR:         2.0,
		TP2RR:         4.0,
	}
}

// PolicyConfidence scales risk linearly with the confidence score:
// multiplier 1.5-2.5, TP1 at 1R-2R, TP2 at 2R-4R across confidence 0-10.
func PolicyConfidence() RiskPolicy {
	return RiskPolicy{
		Name:        "confidence",
		ATRPeriod:   DefaultATRPeriod,
		MinBars:     DefaultMinBars,
		FallbackPct: DefaultFallbackPct,
		Scaled:      true,
	}
}

// Multiplier returns the ATR multiplier that sets the stop distance
func (p RiskPolicy) Multiplier(confidence float64) float64 {
	if p.Scaled {
		return 1.5 + confidence/10
	}
	return p.ATRMultiplier
}

// TP1Ratio returns the reward-to-risk ratio of the first target
func (p RiskPolicy) TP1Ratio(confidence float64) float64 {
	if p.Scaled {
		return 1.0 + confidence/10
	}
	return p.TP1RR
}

// TP2Ratio returns the reward-to-risk ratio of the second target.
// Always beyond TP1 so partial exits trigger in order.
func (p RiskPolicy) TP2Ratio(confidence float64) float64 {
	if p.Scaled {
		return 2.0 + confidence/5
	}
	return p.TP2RR
}
