// Package risk implements the severity/urgency fusion engine: normalizing
// heterogeneous warning severities to an ordinal level, combining that level
// with a social-urgency score into a single risk score, and mapping the score
// to a categorical level with a recommendation.
//
// Every function in this package is total: malformed or absent inputs degrade
// to safe defaults (level 0, urgency 0) rather than returning errors.
package risk

import (
	"math"
	"strconv"
	"strings"

	"floodroute/internal/types"
)

// severityNames maps named severity strings (case-insensitive) to levels.
// Additions are data changes here, not new control flow.
var severityNames = map[string]types.SeverityLevel{
	"red":         types.SeverityEmergency,
	"emergency":   types.SeverityEmergency,
	"severe":      types.SeverityEmergency,
	"orange":      types.SeverityWarning,
	"warning":     types.SeverityWarning,
	"amber":       types.SeverityWatch,
	"watch":       types.SeverityWatch,
	"yellow":      types.SeverityAdvisory,
	"advisory":    types.SeverityAdvisory,
	"info":        types.SeverityAdvisory,
	"information": types.SeverityAdvisory,
}

// SeverityToLevel normalizes a raw severity representation to an ordinal
// level in [0,4]. Accepted inputs: nil (level 0), any integer or float
// (clamped to [0,4]), a numeric string, or a named severity string.
// Unrecognized values degrade to level 0.
func SeverityToLevel(raw any) types.SeverityLevel {
	if raw == nil {
		return types.SeverityNone
	}

	switch v := raw.(type) {
	case int:
		return clampLevel(v)
	case int64:
		return clampLevel(int(v))
	case types.SeverityLevel:
		return clampLevel(int(v))
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return types.SeverityNone
		}
		return clampLevel(int(v))
	case string:
		s := strings.ToLower(strings.TrimSpace(v))
		if n, err := strconv.Atoi(s); err == nil {
			return clampLevel(n)
		}
		if lv, ok := severityNames[s]; ok {
			return lv
		}
		return types.SeverityNone
	default:
		return types.SeverityNone
	}
}

// MaxSeverityLevel returns the maximum severity level across all warning
// results. Each result's severity is read from whichever synonymous field is
// populated. An empty slice yields level 0; malformed entries degrade to 0.
func MaxSeverityLevel(results []types.WarningResult) types.SeverityLevel {
	maxLv := types.SeverityNone
	for _, r := range results {
		if lv := SeverityToLevel(r.RawSeverity()); lv > maxLv {
			maxLv = lv
		}
	}
	return maxLv
}

func clampLevel(n int) types.SeverityLevel {
	if n < 0 {
		return types.SeverityNone
	}
	if n > 4 {
		return types.SeverityEmergency
	}
	return types.SeverityLevel(n)
}
