package types

import "time"

// AssessRequest is the body of POST /v1/assessments. Either City or both Lat
// and Lon must be supplied; the handler rejects requests with neither before
// any computation is attempted.
type AssessRequest struct {
	City         string   `json:"city,omitempty" validate:"omitempty,max=120"`
	Lat          *float64 `json:"lat,omitempty" validate:"omitempty,latitude"`
	Lon          *float64 `json:"lon,omitempty" validate:"omitempty,longitude"`
	UrgencyScore float64  `json:"urgency_score" validate:"gte=0,lte=10"`
	Weather      string   `json:"weather,omitempty" validate:"omitempty,max=40"`
}

// HasLocation reports whether the request carries a resolvable location input.
func (r AssessRequest) HasLocation() bool {
	return r.City != "" || (r.Lat != nil && r.Lon != nil)
}

// AssessResponse is the body returned by POST /v1/assessments.
type AssessResponse struct {
	AssessmentID   int64      `json:"assessment_id"`
	City           string     `json:"city,omitempty"`
	State          string     `json:"state,omitempty"`
	Met            MetSummary `json:"met"`
	UrgencyScore   float64    `json:"urgency_score"`
	FinalScore     float64    `json:"final_score"`
	RiskLevel      RiskLevel  `json:"risk_level"`
	Color          string     `json:"color"`
	Recommendation string     `json:"recommendation"`
	CalculatedAt   time.Time  `json:"calculated_at"`
}

// SafeRouteResponse is the body of GET /v1/routes/safe when at least one
// candidate survives the safety filter.
type SafeRouteResponse struct {
	BestRoute    BestRoute          `json:"bestRoute"`
	Alternatives []AlternativeRoute `json:"alternatives"`
	Hazards      []Hazard           `json:"hazards"`
}

// BestRoute describes the selected route. MinDist is nil when the hazard set
// is empty (there is no distance to report, and infinity does not serialize).
type BestRoute struct {
	Polyline  string   `json:"polyline"`
	DurationS int      `json:"duration_s"`
	DistanceM int      `json:"distance_m"`
	MinDist   *float64 `json:"min_dist"`
}

// AlternativeRoute exposes the encoded path of a non-best safe route.
type AlternativeRoute struct {
	Polyline string `json:"polyline"`
}

// NoSafeRouteResponse is the body of GET /v1/routes/safe when every candidate
// intersects a hazard. The hazard list is still reported so the caller can
// reason about the exclusion.
type NoSafeRouteResponse struct {
	Message string   `json:"message"`
	Hazards []Hazard `json:"hazards"`
}

// NoSafeRoutesMessage is the fixed message of NoSafeRouteResponse.
const NoSafeRoutesMessage = "No safe routes found"

// ReportRequest is the body of POST /v1/reports: one analyzed flood report to
// enqueue for asynchronous scoring.
type ReportRequest struct {
	ReportID      string   `json:"report_id" validate:"required,max=64"`
	Text          string   `json:"text" validate:"required,max=2000"`
	FloodDetected bool     `json:"flood_detected"`
	UrgencyScore  float64  `json:"urgency_score" validate:"gte=0,lte=10"`
	Confidence    float64  `json:"confidence" validate:"gte=0,lte=1"`
	Cities        []string `json:"cities,omitempty" validate:"max=10,dive,max=120"`
	States        []string `json:"states,omitempty" validate:"max=17,dive,max=60"`
	Lat           *float64 `json:"lat,omitempty" validate:"omitempty,latitude"`
	Lon           *float64 `json:"lon,omitempty" validate:"omitempty,longitude"`
	Weather       string   `json:"weather,omitempty" validate:"omitempty,max=40"`
}

// ReportAccepted is the 202 body of POST /v1/reports.
type ReportAccepted struct {
	ReportID string `json:"report_id"`
	Status   string `json:"status"`
}
