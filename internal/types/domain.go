// Package types defines the domain entities, DTOs, and error taxonomy shared
// across the FloodRoute platform. All handlers and services operate on these
// strongly-typed values; loosely-shaped upstream payloads are parsed into them
// at the process boundary and never travel further.
package types

import "time"

// Location represents a geographic coordinate with an optional display name.
type Location struct {
	Lat         float64 `json:"lat"`
	Lon         float64 `json:"lon"`
	DisplayName string  `json:"display_name,omitempty"`
}

// SeverityLevel is the ordinal strength of an official weather warning,
// 0 (none) through 4 (emergency).
type SeverityLevel int

const (
	SeverityNone      SeverityLevel = 0
	SeverityAdvisory  SeverityLevel = 1
	SeverityWatch     SeverityLevel = 2
	SeverityWarning   SeverityLevel = 3
	SeverityEmergency SeverityLevel = 4
)

// severityNames maps levels to their display names.
var severityNames = map[SeverityLevel]string{
	SeverityNone:      "None",
	SeverityAdvisory:  "Advisory",
	SeverityWatch:     "Watch",
	SeverityWarning:   "Warning",
	SeverityEmergency: "Emergency",
}

// Name returns the display name for the level. Out-of-range levels report "None".
func (l SeverityLevel) Name() string {
	if n, ok := severityNames[l]; ok {
		return n
	}
	return "None"
}

// WarningResult is one meteorological warning record as returned by the
// warning source. Upstream feeds are inconsistent about which field carries
// the severity, so all three synonyms are retained.
type WarningResult struct {
	Severity      any            `json:"severity,omitempty"`
	Level         any            `json:"level,omitempty"`
	SeverityLevel any            `json:"severity_level,omitempty"`
	Metadata      map[string]any `json:"metadata,omitempty"`
}

// RawSeverity returns the first populated severity field, or nil when the
// record carries none. The value may be an integer, a float, or a named
// string like "red"; callers normalize it via risk.SeverityToLevel.
func (w WarningResult) RawSeverity() any {
	if w.Severity != nil {
		return w.Severity
	}
	if w.Level != nil {
		return w.Level
	}
	return w.SeverityLevel
}

// RiskLevel is the categorical label derived from the fused risk score.
type RiskLevel string

const (
	RiskLow      RiskLevel = "Low"
	RiskModerate RiskLevel = "Moderate"
	RiskHigh     RiskLevel = "High"
	RiskCritical RiskLevel = "Critical"
)

// RiskAssessment is the persisted outcome of one scoring request.
// FinalScore is always clamped into [1,10] and rounded to one decimal;
// RiskLevel is a deterministic function of FinalScore.
type RiskAssessment struct {
	ID             int64     `json:"id"`
	District       string    `json:"district"`
	Latitude       float64   `json:"latitude"`
	Longitude      float64   `json:"longitude"`
	FinalScore     float64   `json:"final_score"`
	RiskLevel      RiskLevel `json:"risk_level"`
	Recommendation string    `json:"recommendation"`
	CalculatedAt   time.Time `json:"calculated_at"`
}

// Hazard is a geographic exclusion zone built from a persisted risk
// assessment. RadiusM is derived per request from the risk level (or score)
// and the current weather; it is never persisted.
type Hazard struct {
	ID             int64     `json:"id"`
	District       string    `json:"district,omitempty"`
	Lat            float64   `json:"lat"`
	Lon            float64   `json:"lng"`
	FinalScore     *float64  `json:"final_score,omitempty"`
	RiskLevel      RiskLevel `json:"risk_level,omitempty"`
	Recommendation string    `json:"recommendation,omitempty"`
	RadiusM        int       `json:"radius_m"`
}

// RoutePoint is one decoded vertex of a candidate route.
type RoutePoint struct {
	Lat float64
	Lon float64
}

// RouteCandidate is one precomputed route from the routing provider.
// Points is the decoded form of Polyline; both are immutable for the
// duration of a filtering request.
type RouteCandidate struct {
	Polyline  string
	Points    []RoutePoint
	DurationS int
	DistanceM int
}

// ScoredRoute is a RouteCandidate that passed the safety filter, annotated
// with the smallest haversine distance (meters) from any of its points to
// any hazard center. MinDist is nil when there are no hazards.
type ScoredRoute struct {
	RouteCandidate
	MinDist *float64
}

// Town is one row of the towns location cache used to resolve a request's
// place name or coordinates to a known location.
type Town struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	StateName string  `json:"state_name,omitempty"`
}
