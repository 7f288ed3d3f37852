package risk

import (
	"math"

	"floodroute/internal/types"
)

// Fusion weighting: human-reported urgency and official warning severity
// contribute equally. The MET level (0..4) is normalized onto the urgency
// scale (0..10) before weighting.
const (
	urgencyWeight = 0.5
	metWeight     = 0.5
	metLevelScale = 2.5
)

// Score thresholds with inclusive upper bounds. Ordered: the first entry
// whose Max is >= score wins; scores above the last Max are Critical.
var scoreBands = []struct {
	Max   float64
	Level types.RiskLevel
	Color string
}{
	{3.0, types.RiskLow, "green"},
	{6.0, types.RiskModerate, "yellow"},
	{8.0, types.RiskHigh, "orange"},
}

// ComputeFinalRisk fuses a social-urgency score and a MET severity level into
// a normalized risk score, categorical level, and color tag.
//
// The urgency is clamped to [0,10] (NaN degrades to 0). The returned score is
// rounded to one decimal place and always lies in [0,10]. Classification uses
// inclusive upper bounds: 3.0 is still Low, 6.0 still Moderate, 8.0 still High.
func ComputeFinalRisk(urgency float64, metLevel types.SeverityLevel) (score float64, level types.RiskLevel, color string) {
	if math.IsNaN(urgency) {
		urgency = 0
	}
	urgency = clamp(urgency, 0, 10)
	metNorm := clamp(float64(metLevel)*metLevelScale, 0, 10)

	score = round1(urgency*urgencyWeight + metNorm*metWeight)

	for _, band := range scoreBands {
		if score <= band.Max {
			return score, band.Level, band.Color
		}
	}
	return score, types.RiskCritical, "red"
}

// ClampPersistedScore clamps a final score into the persisted [1,10] range.
// The fusion output may legitimately be below 1 (no urgency, no warnings);
// the store contract floors it at 1.
func ClampPersistedScore(score float64) float64 {
	return clamp(score, 1, 10)
}

// round1 rounds to one decimal place, ties to even: 5.25 -> 5.2, 5.35 -> 5.4.
func round1(v float64) float64 {
	return math.RoundToEven(v*10) / 10
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
