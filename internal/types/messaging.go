package types

import "time"

// FloodReportMessage is the SQS payload carrying one analyzed social-media
// flood report from the ingestion pipeline to the scoring worker. JSON tags
// use snake_case to match the upstream analysis service output.
type FloodReportMessage struct {
	ReportID string `json:"report_id"`

	// Original report content, kept for traceability in downstream events.
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`

	// Analysis results from the urgency/flood classifier.
	FloodDetected bool     `json:"flood_detected"`
	UrgencyScore  float64  `json:"urgency_score"`
	Confidence    float64  `json:"confidence"`
	Cities        []string `json:"cities,omitempty"`
	States        []string `json:"states,omitempty"`

	// Optional direct coordinates when the report carried a geotag.
	Lat *float64 `json:"lat,omitempty"`
	Lon *float64 `json:"lon,omitempty"`

	// Weather descriptor observed at ingestion time ("storm", "rain", ...).
	Weather string `json:"weather,omitempty"`

	// RetryCount carries retry state across the SQS publish-subscribe cycle.
	RetryCount int `json:"retry_count"`
}

// AssessmentEvent is the Kafka message published after an assessment has been
// persisted, for downstream consumers (dashboards, alerting).
type AssessmentEvent struct {
	EventID      string         `json:"event_id"`
	AssessmentID int64          `json:"assessment_id"`
	District     string         `json:"district"`
	Latitude     float64        `json:"latitude"`
	Longitude    float64        `json:"longitude"`
	FinalScore   float64        `json:"final_score"`
	RiskLevel    RiskLevel      `json:"risk_level"`
	CalculatedAt time.Time      `json:"calculated_at"`
	Met          MetSummary     `json:"met"`
	Urgency      float64        `json:"urgency_score"`
	Report       *ReportSummary `json:"report,omitempty"`
}

// MetSummary condenses the warning-source result that fed an assessment.
type MetSummary struct {
	CategoryUsed     string `json:"category,omitempty"`
	WarningCount     int    `json:"warning_count"`
	MaxSeverityLevel int    `json:"max_severity_level"`
	MaxSeverityName  string `json:"max_severity_name"`
}

// ReportSummary echoes the originating report in an AssessmentEvent.
type ReportSummary struct {
	ReportID  string    `json:"id"`
	Text      string    `json:"text,omitempty"`
	Timestamp time.Time `json:"timestamp,omitzero"`
}
