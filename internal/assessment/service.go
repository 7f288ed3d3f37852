// Package assessment orchestrates risk scoring: it resolves the request
// location against the towns cache, pulls active official warnings, fuses
// urgency and warning severity into a final score, persists the result, and
// publishes an assessment event for downstream consumers.
package assessment

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"floodroute/internal/external"
	"floodroute/internal/observability"
	"floodroute/internal/risk"
	"floodroute/internal/types"
)

// TownResolver resolves place names or coordinates against the towns cache.
type TownResolver interface {
	FindByName(ctx context.Context, name string) (*types.Town, error)
	FindNearest(ctx context.Context, lat, lon float64) (*types.Town, error)
}

// Store persists completed assessments.
type Store interface {
	Insert(ctx context.Context, a *types.RiskAssessment) error
}

// EventPublisher emits assessment events. Publishing is best-effort; a failed
// publish never fails the assessment.
type EventPublisher interface {
	Publish(ctx context.Context, event types.AssessmentEvent) error
}

// Service computes and persists risk assessments.
type Service struct {
	towns     TownResolver
	warnings  external.WarningSource
	store     Store
	publisher EventPublisher // nil disables event publishing
	metrics   *observability.Metrics
	logger    *slog.Logger
}

// NewService creates an assessment Service. publisher may be nil when no
// Kafka brokers are configured.
func NewService(
	towns TownResolver,
	warnings external.WarningSource,
	store Store,
	publisher EventPublisher,
	metrics *observability.Metrics,
	logger *slog.Logger,
) *Service {
	return &Service{
		towns:     towns,
		warnings:  warnings,
		store:     store,
		publisher: publisher,
		metrics:   metrics,
		logger:    logger,
	}
}

// Assess scores one direct assessment request.
func (s *Service) Assess(ctx context.Context, req types.AssessRequest) (*types.AssessResponse, error) {
	if !req.HasLocation() {
		return nil, types.NewAppError(
			types.ErrCodeValidationMissingLocation,
			"provide city or (lat, lon)",
			nil,
		)
	}
	return s.assess(ctx, req.City, req.Lat, req.Lon, req.UrgencyScore, nil)
}

// ScoreReport scores one queued flood report. Reports without a detected
// flood are skipped: they return a nil response and no error.
func (s *Service) ScoreReport(ctx context.Context, msg types.FloodReportMessage) (*types.AssessResponse, error) {
	if !msg.FloodDetected {
		s.logger.InfoContext(ctx, "skipping non-flood report", "report_id", msg.ReportID)
		return nil, nil
	}

	city := ""
	if len(msg.Cities) > 0 {
		city = msg.Cities[0]
	}
	if city == "" && (msg.Lat == nil || msg.Lon == nil) {
		return nil, types.NewAppError(
			types.ErrCodeValidationMissingLocation,
			"report carries neither a city nor coordinates",
			nil,
		)
	}

	report := &types.ReportSummary{
		ReportID:  msg.ReportID,
		Text:      msg.Text,
		Timestamp: msg.Timestamp,
	}
	return s.assess(ctx, city, msg.Lat, msg.Lon, msg.UrgencyScore, report)
}

func (s *Service) assess(ctx context.Context, city string, lat, lon *float64, urgency float64, report *types.ReportSummary) (*types.AssessResponse, error) {
	town, err := s.resolveTown(ctx, city, lat, lon)
	if err != nil {
		return nil, err
	}

	// A warning-feed outage downgrades the MET contribution to zero rather
	// than blocking the assessment; the urgency signal still carries it.
	warnings, category, err := s.warnings.ActiveWarnings(ctx, town.ID)
	if err != nil {
		s.logger.WarnContext(ctx, "warning fetch failed, scoring without MET signal",
			"town_id", town.ID,
			"error", err.Error(),
		)
		if s.metrics != nil {
			s.metrics.UpstreamErrors.WithLabelValues("met").Inc()
		}
		warnings, category = nil, ""
	}

	metLevel := risk.MaxSeverityLevel(warnings)
	score, level, color := risk.ComputeFinalRisk(urgency, metLevel)
	recommendation := risk.RecommendationForLevel(level)

	a := &types.RiskAssessment{
		District:       town.StateName,
		Latitude:       town.Latitude,
		Longitude:      town.Longitude,
		FinalScore:     score,
		RiskLevel:      level,
		Recommendation: recommendation,
	}
	if err := s.store.Insert(ctx, a); err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.AssessmentsScored.WithLabelValues(string(level)).Inc()
	}

	met := types.MetSummary{
		CategoryUsed:     category,
		WarningCount:     len(warnings),
		MaxSeverityLevel: int(metLevel),
		MaxSeverityName:  metLevel.Name(),
	}

	s.publishEvent(ctx, a, met, urgency, report)

	s.logger.InfoContext(ctx, "assessment scored",
		"assessment_id", a.ID,
		"district", a.District,
		"final_score", a.FinalScore,
		"risk_level", string(a.RiskLevel),
		"warning_count", met.WarningCount,
	)

	return &types.AssessResponse{
		AssessmentID:   a.ID,
		City:           town.Name,
		State:          town.StateName,
		Met:            met,
		UrgencyScore:   urgency,
		FinalScore:     a.FinalScore,
		RiskLevel:      a.RiskLevel,
		Color:          color,
		Recommendation: recommendation,
		CalculatedAt:   a.CalculatedAt,
	}, nil
}

// resolveTown looks up the towns cache by name when a city is given,
// otherwise by nearest coordinates.
func (s *Service) resolveTown(ctx context.Context, city string, lat, lon *float64) (*types.Town, error) {
	if lat != nil && lon != nil {
		return s.towns.FindNearest(ctx, *lat, *lon)
	}
	return s.towns.FindByName(ctx, city)
}

func (s *Service) publishEvent(ctx context.Context, a *types.RiskAssessment, met types.MetSummary, urgency float64, report *types.ReportSummary) {
	if s.publisher == nil {
		return
	}

	event := types.AssessmentEvent{
		EventID:      uuid.NewString(),
		AssessmentID: a.ID,
		District:     a.District,
		Latitude:     a.Latitude,
		Longitude:    a.Longitude,
		FinalScore:   a.FinalScore,
		RiskLevel:    a.RiskLevel,
		CalculatedAt: a.CalculatedAt,
		Met:          met,
		Urgency:      urgency,
		Report:       report,
	}

	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.ErrorContext(ctx, "assessment event publish failed",
			"assessment_id", a.ID,
			"error", err.Error(),
		)
		return
	}
	if s.metrics != nil {
		s.metrics.EventsPublished.Inc()
	}
}
