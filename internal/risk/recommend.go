package risk

import (
	"strings"

	"floodroute/internal/types"
)

// Recommendation texts per risk level. The category mapping (Critical gets
// the strongest evacuation language, High monitor/prepare, Moderate stay
// alert, Low no action) is part of the observable contract.
const (
	recommendCritical = "Danger: Avoid travel in affected areas; move to higher ground and follow official instructions."
	recommendHigh     = "High risk: Monitor official warnings, prepare evacuation plan, avoid low-lying areas."
	recommendModerate = "Moderate risk: Stay alert, check local advisories, avoid flood-prone roads."
	recommendLow      = "Low risk: No immediate action needed; stay informed of updates."
)

// RecommendationForLevel returns the recommendation text for a risk level.
// Matching is case-insensitive; unrecognized levels get the Low text.
func RecommendationForLevel(level types.RiskLevel) string {
	switch strings.ToLower(string(level)) {
	case "critical":
		return recommendCritical
	case "high":
		return recommendHigh
	case "moderate":
		return recommendModerate
	default:
		return recommendLow
	}
}
