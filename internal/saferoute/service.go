// Package saferoute orchestrates hazard-aware route selection: it resolves
// the origin and destination, fetches recent hazards and candidate routes in
// parallel, scales hazard radii by weather, and filters and ranks the
// candidates.
package saferoute

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"floodroute/internal/external"
	"floodroute/internal/georoute"
	"floodroute/internal/hazard"
	"floodroute/internal/observability"
	"floodroute/internal/types"
)

// AssessmentSource provides the recent assessments treated as hazards.
type AssessmentSource interface {
	GetRecent(ctx context.Context, limit int) ([]types.RiskAssessment, error)
}

// Query is one safe-route request after handler-level validation.
type Query struct {
	Origin      string
	Destination string
	TravelMode  string
	Weather     string
}

// Result carries the ranked routes plus the radius-annotated hazard set the
// ranking was computed against.
type Result struct {
	Best         *types.ScoredRoute
	Alternatives []types.ScoredRoute
	Hazards      []types.Hazard
}

// Service computes safe routes between two places.
type Service struct {
	assessments  AssessmentSource
	routes       external.RouteProvider
	geocoder     external.Geocoder
	radiusModel  *hazard.Model
	recentWindow int
	metrics      *observability.Metrics
	logger       *slog.Logger
}

// NewService creates a saferoute Service. recentWindow is the number of most
// recent assessments treated as active hazards.
func NewService(
	assessments AssessmentSource,
	routes external.RouteProvider,
	geocoder external.Geocoder,
	radiusModel *hazard.Model,
	recentWindow int,
	metrics *observability.Metrics,
	logger *slog.Logger,
) *Service {
	if recentWindow <= 0 {
		recentWindow = 5
	}
	return &Service{
		assessments:  assessments,
		routes:       routes,
		geocoder:     geocoder,
		radiusModel:  radiusModel,
		recentWindow: recentWindow,
		metrics:      metrics,
		logger:       logger,
	}
}

// SafeRoutes resolves the query endpoints, gathers hazards and candidate
// routes, and returns the filtered ranking. Result.Best is nil when every
// candidate intersects a hazard.
func (s *Service) SafeRoutes(ctx context.Context, q Query) (*Result, error) {
	origin, err := s.geocoder.Geocode(ctx, q.Origin)
	if err != nil {
		s.recordUpstreamError("geocode")
		return nil, err
	}
	dest, err := s.geocoder.Geocode(ctx, q.Destination)
	if err != nil {
		s.recordUpstreamError("geocode")
		return nil, err
	}

	// Hazards come from our own database and routes from the provider;
	// neither depends on the other, so fetch them concurrently.
	var (
		assessments []types.RiskAssessment
		candidates  []types.RouteCandidate
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		assessments, err = s.assessments.GetRecent(gctx, s.recentWindow)
		return err
	})
	g.Go(func() error {
		var err error
		candidates, err = s.routes.Routes(gctx, origin, dest, q.TravelMode)
		if err != nil {
			s.recordUpstreamError("routes")
		}
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	hazards := s.radiusModel.AnnotateWithRadius(hazardsFromAssessments(assessments), q.Weather)
	selection := georoute.SelectBest(candidates, hazards)

	if s.metrics != nil {
		s.metrics.RoutesFiltered.Observe(float64(len(candidates) - len(selection.Alternatives) - safeCount(selection.Best)))
		outcome := "none"
		if selection.Best != nil {
			outcome = "found"
		}
		s.metrics.SafeRouteQueries.WithLabelValues(outcome).Inc()
	}

	s.logger.InfoContext(ctx, "safe routes computed",
		"candidates", len(candidates),
		"hazards", len(hazards),
		"safe", safeCount(selection.Best)+len(selection.Alternatives),
		"weather", q.Weather,
	)

	return &Result{
		Best:         selection.Best,
		Alternatives: selection.Alternatives,
		Hazards:      hazards,
	}, nil
}

// hazardsFromAssessments projects persisted assessments into hazard zones.
// Radii are filled in by the caller afterwards.
func hazardsFromAssessments(assessments []types.RiskAssessment) []types.Hazard {
	hazards := make([]types.Hazard, len(assessments))
	for i, a := range assessments {
		score := a.FinalScore
		hazards[i] = types.Hazard{
			ID:             a.ID,
			District:       a.District,
			Lat:            a.Latitude,
			Lon:            a.Longitude,
			FinalScore:     &score,
			RiskLevel:      a.RiskLevel,
			Recommendation: a.Recommendation,
		}
	}
	return hazards
}

func safeCount(best *types.ScoredRoute) int {
	if best != nil {
		return 1
	}
	return 0
}

func (s *Service) recordUpstreamError(provider string) {
	if s.metrics != nil {
		s.metrics.UpstreamErrors.WithLabelValues(provider).Inc()
	}
}
