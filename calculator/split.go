package calculator

import (
	"fmt"
	"math/rand"
)

// TPSplit maps a confidence score to the percentage allocation between
// the first and second take-profit exits. Higher confidence shifts weight
// to TP2 to let winners run; the two percentages always sum to 100.
func TPSplit(confidence float64) (tp1Pct, tp2Pct float64) {
	switch {
	case confidence >= 8.5:
		return 30, 70
	case confidence >= 7.5:
		return 50, 50
	case confidence >= 6.0:
		return 70, 30
	default:
		return 80, 20
	}
}

// splitStrategy renders the allocation for actionable signals
func splitStrategy(tp1Pct, tp2Pct float64) string {
	return fmt.Sprintf("TP1 %.0f%% / TP2 %.0f%%", tp1Pct, tp2Pct)
}

// referenceStrategy renders the advisory text attached to
// non-actionable signals
func referenceStrategy(confidence float64) string {
	if confidence >= 6.0 {
		return fmt.Sprintf("If breakout: TP1 70%% / TP2 30%% (confidence: %.1f/10)", confidence)
	}
	return fmt.Sprintf("Monitor for signals (confidence: %.1f/10)", confidence)
}

// jitterSplit perturbs an allocation for the experimentation mode.
// The shift is drawn from the seeded source so runs stay reproducible,
// and the pair keeps summing to 100.
func jitterSplit(rng *rand.Rand, tp1Pct, tp2Pct float64) (float64, float64) {
	shift := float64(rng.Intn(21) - 10) // -10..+10 points
	tp1Pct += shift
	if tp1Pct < 0 {
		tp1Pct = 0
	}
	if tp1Pct > 100 {
		tp1Pct = 100
	}
	return tp1Pct, 100 - tp1Pct
}
