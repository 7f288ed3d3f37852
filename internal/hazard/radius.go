// Package hazard derives metric exclusion radii for flood hazards. A hazard's
// base radius comes from its categorical risk level (preferred) or its numeric
// score, and is scaled by the current weather condition. Radii are recomputed
// on every request and never persisted, so re-annotation is idempotent.
package hazard

import (
	"math"
	"strings"

	"floodroute/internal/types"
)

// RadiusConfig holds the per-level base radii in meters.
type RadiusConfig struct {
	LowM      int
	ModerateM int
	HighM     int
	CriticalM int
}

// DefaultRadiusConfig returns the standard base radii.
func DefaultRadiusConfig() RadiusConfig {
	return RadiusConfig{
		LowM:      1500,
		ModerateM: 3000,
		HighM:     6000,
		CriticalM: 10000,
	}
}

// Model computes exclusion radii from risk levels, scores, and weather.
// The zero value is not usable; construct with NewModel.
type Model struct {
	cfg RadiusConfig
}

// NewModel creates a radius model. Non-positive radii in cfg fall back to the
// defaults so a partly-populated config cannot produce zero-size hazards.
func NewModel(cfg RadiusConfig) *Model {
	def := DefaultRadiusConfig()
	if cfg.LowM <= 0 {
		cfg.LowM = def.LowM
	}
	if cfg.ModerateM <= 0 {
		cfg.ModerateM = def.ModerateM
	}
	if cfg.HighM <= 0 {
		cfg.HighM = def.HighM
	}
	if cfg.CriticalM <= 0 {
		cfg.CriticalM = def.CriticalM
	}
	return &Model{cfg: cfg}
}

// levelClasses maps level name synonyms (lowercase) to a radius class.
// Synonym additions are data changes, not control-flow changes.
var levelClasses = map[string]string{
	"critical":  "critical",
	"very high": "critical",
	"severe":    "critical",
	"high":      "high",
	"medium":    "moderate",
	"moderate":  "moderate",
}

// RadiusFromLevel returns the base radius in meters for a level name.
// Matching is case-insensitive; unrecognized names get the Low radius as a
// safe default. Never errors.
func (m *Model) RadiusFromLevel(level types.RiskLevel) int {
	switch levelClasses[strings.ToLower(strings.TrimSpace(string(level)))] {
	case "critical":
		return m.cfg.CriticalM
	case "high":
		return m.cfg.HighM
	case "moderate":
		return m.cfg.ModerateM
	default:
		return m.cfg.LowM
	}
}

// RadiusFromScore is the numeric fallback for hazards that carry only a raw
// score. Persisted scores are on a 0-10 scale; legacy producers emitted 0-100
// percentages, so values above 10 are divided by 10 before classification.
// Thresholds: >=8 Critical, >=6 High, >=4 Moderate, else Low. NaN gets Low.
func (m *Model) RadiusFromScore(score float64) int {
	if math.IsNaN(score) {
		return m.cfg.LowM
	}
	if score > 10 {
		score /= 10
	}
	switch {
	case score >= 8:
		return m.cfg.CriticalM
	case score >= 6:
		return m.cfg.HighM
	case score >= 4:
		return m.cfg.ModerateM
	default:
		return m.cfg.LowM
	}
}

// weatherScales maps weather descriptors (lowercase) to radius multipliers.
var weatherScales = map[string]float64{
	"storm":          1.8,
	"thunderstorm":   1.8,
	"heavy rain":     1.8,
	"tropical storm": 1.8,
	"rain":           1.3,
	"fog":            1.3,
	"haze":           1.3,
	"drizzle":        1.3,
}

// WeatherScale returns the multiplicative radius factor for a weather
// descriptor. Unrecognized or empty weather scales by 1.0.
func WeatherScale(weather string) float64 {
	if s, ok := weatherScales[strings.ToLower(strings.TrimSpace(weather))]; ok {
		return s
	}
	return 1.0
}

// AnnotateWithRadius returns a copy of hazards with RadiusM computed for each:
// base radius from RiskLevel when present, else FinalScore, else the Low
// default, multiplied by the weather scale and rounded to the nearest meter.
// The level-before-score preference order is part of the contract. Input
// hazards are not mutated, and any prior RadiusM is ignored, so annotating an
// already-annotated list yields identical radii.
func (m *Model) AnnotateWithRadius(hazards []types.Hazard, weather string) []types.Hazard {
	scale := WeatherScale(weather)
	out := make([]types.Hazard, len(hazards))
	for i, hz := range hazards {
		base := m.cfg.LowM
		switch {
		case hz.RiskLevel != "":
			base = m.RadiusFromLevel(hz.RiskLevel)
		case hz.FinalScore != nil:
			base = m.RadiusFromScore(*hz.FinalScore)
		}
		hz.RadiusM = int(math.Round(float64(base) * scale))
		out[i] = hz
	}
	return out
}
