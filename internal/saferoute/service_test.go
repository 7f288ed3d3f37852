package saferoute

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"floodroute/internal/hazard"
	"floodroute/internal/observability"
	"floodroute/internal/types"
)

type mockAssessments struct {
	mock.Mock
}

func (m *mockAssessments) GetRecent(ctx context.Context, limit int) ([]types.RiskAssessment, error) {
	args := m.Called(ctx, limit)
	var res []types.RiskAssessment
	if args.Get(0) != nil {
		res = args.Get(0).([]types.RiskAssessment)
	}
	return res, args.Error(1)
}

type mockRoutes struct {
	mock.Mock
}

func (m *mockRoutes) Routes(ctx context.Context, origin, dest types.Location, travelMode string) ([]types.RouteCandidate, error) {
	args := m.Called(ctx, origin, dest, travelMode)
	var res []types.RouteCandidate
	if args.Get(0) != nil {
		res = args.Get(0).([]types.RouteCandidate)
	}
	return res, args.Error(1)
}

type mockGeocoder struct {
	mock.Mock
}

func (m *mockGeocoder) Geocode(ctx context.Context, place string) (types.Location, error) {
	args := m.Called(ctx, place)
	return args.Get(0).(types.Location), args.Error(1)
}

func newTestService(assessments *mockAssessments, routes *mockRoutes, geocoder *mockGeocoder) *Service {
	return NewService(
		assessments,
		routes,
		geocoder,
		hazard.NewModel(hazard.DefaultRadiusConfig()),
		5,
		observability.NewMetricsForTesting(),
		slog.Default(),
	)
}

// Hazard centered at (3.1, 101.6), High risk: base radius 6000 m.
func highHazard() types.RiskAssessment {
	return types.RiskAssessment{
		ID:             7,
		District:       "Selangor",
		Latitude:       3.1,
		Longitude:      101.6,
		FinalScore:     7.0,
		RiskLevel:      types.RiskHigh,
		Recommendation: "High risk: Monitor official warnings, prepare evacuation plan, avoid low-lying areas.",
	}
}

// farRoute stays roughly 11 km east of the hazard center.
func farRoute(durationS int) types.RouteCandidate {
	return types.RouteCandidate{
		Polyline:  "far-" + string(rune('0'+durationS%10)),
		Points:    []types.RoutePoint{{Lat: 3.1, Lon: 101.7}, {Lat: 3.15, Lon: 101.72}},
		DurationS: durationS,
		DistanceM: 12000,
	}
}

// nearRoute passes about 1.1 km from the hazard center.
func nearRoute() types.RouteCandidate {
	return types.RouteCandidate{
		Polyline:  "near",
		Points:    []types.RoutePoint{{Lat: 3.1, Lon: 101.61}},
		DurationS: 60,
		DistanceM: 9000,
	}
}

func stubGeocoder() *mockGeocoder {
	g := &mockGeocoder{}
	g.On("Geocode", mock.Anything, "KLCC").Return(types.Location{Lat: 3.1578, Lon: 101.7117}, nil)
	g.On("Geocode", mock.Anything, "Shah Alam").Return(types.Location{Lat: 3.0733, Lon: 101.5185}, nil)
	return g
}

func TestSafeRoutes_FiltersAndRanks(t *testing.T) {
	assessments := &mockAssessments{}
	routes := &mockRoutes{}
	geocoder := stubGeocoder()

	assessments.On("GetRecent", mock.Anything, 5).Return([]types.RiskAssessment{highHazard()}, nil)
	routes.On("Routes", mock.Anything, mock.Anything, mock.Anything, "DRIVE").
		Return([]types.RouteCandidate{farRoute(900), nearRoute(), farRoute(600)}, nil)

	svc := newTestService(assessments, routes, geocoder)

	result, err := svc.SafeRoutes(context.Background(), Query{
		Origin:      "KLCC",
		Destination: "Shah Alam",
		TravelMode:  "DRIVE",
		Weather:     "clear",
	})
	require.NoError(t, err)
	require.NotNil(t, result.Best)

	// The route through the hazard is dropped; the faster far route wins.
	assert.Equal(t, 600, result.Best.DurationS)
	require.Len(t, result.Alternatives, 1)
	assert.Equal(t, 900, result.Alternatives[0].DurationS)

	require.NotNil(t, result.Best.MinDist)
	assert.Greater(t, *result.Best.MinDist, 6000.0)

	require.Len(t, result.Hazards, 1)
	assert.Equal(t, 6000, result.Hazards[0].RadiusM)
	require.NotNil(t, result.Hazards[0].FinalScore)
	assert.Equal(t, 7.0, *result.Hazards[0].FinalScore)
}

func TestSafeRoutes_StormWidensExclusion(t *testing.T) {
	assessments := &mockAssessments{}
	routes := &mockRoutes{}
	geocoder := stubGeocoder()

	assessments.On("GetRecent", mock.Anything, 5).Return([]types.RiskAssessment{highHazard()}, nil)
	// About 10 km out: safe in clear weather, inside the 6000*1.8 m storm radius.
	midRoute := types.RouteCandidate{
		Polyline:  "mid",
		Points:    []types.RoutePoint{{Lat: 3.1, Lon: 101.69}},
		DurationS: 600,
		DistanceM: 11000,
	}
	routes.On("Routes", mock.Anything, mock.Anything, mock.Anything, "DRIVE").
		Return([]types.RouteCandidate{midRoute}, nil)

	svc := newTestService(assessments, routes, geocoder)

	calm, err := svc.SafeRoutes(context.Background(), Query{
		Origin: "KLCC", Destination: "Shah Alam", TravelMode: "DRIVE", Weather: "clear",
	})
	require.NoError(t, err)
	assert.NotNil(t, calm.Best)

	storm, err := svc.SafeRoutes(context.Background(), Query{
		Origin: "KLCC", Destination: "Shah Alam", TravelMode: "DRIVE", Weather: "storm",
	})
	require.NoError(t, err)
	assert.Nil(t, storm.Best, "storm scaling should swallow the route")
	assert.Equal(t, 10800, storm.Hazards[0].RadiusM)
}

func TestSafeRoutes_NoSafeRoutesKeepsHazards(t *testing.T) {
	assessments := &mockAssessments{}
	routes := &mockRoutes{}
	geocoder := stubGeocoder()

	assessments.On("GetRecent", mock.Anything, 5).Return([]types.RiskAssessment{highHazard()}, nil)
	routes.On("Routes", mock.Anything, mock.Anything, mock.Anything, "DRIVE").
		Return([]types.RouteCandidate{nearRoute()}, nil)

	svc := newTestService(assessments, routes, geocoder)

	result, err := svc.SafeRoutes(context.Background(), Query{
		Origin: "KLCC", Destination: "Shah Alam", TravelMode: "DRIVE",
	})
	require.NoError(t, err)
	assert.Nil(t, result.Best)
	assert.Empty(t, result.Alternatives)
	assert.Len(t, result.Hazards, 1)
}

func TestSafeRoutes_NoHazardsEverythingSafe(t *testing.T) {
	assessments := &mockAssessments{}
	routes := &mockRoutes{}
	geocoder := stubGeocoder()

	assessments.On("GetRecent", mock.Anything, 5).Return(nil, nil)
	routes.On("Routes", mock.Anything, mock.Anything, mock.Anything, "DRIVE").
		Return([]types.RouteCandidate{nearRoute(), farRoute(600)}, nil)

	svc := newTestService(assessments, routes, geocoder)

	result, err := svc.SafeRoutes(context.Background(), Query{
		Origin: "KLCC", Destination: "Shah Alam", TravelMode: "DRIVE",
	})
	require.NoError(t, err)
	require.NotNil(t, result.Best)
	assert.Equal(t, 60, result.Best.DurationS)
	assert.Nil(t, result.Best.MinDist, "min distance is undefined without hazards")
	assert.Empty(t, result.Hazards)
}

func TestSafeRoutes_GeocodeFailure(t *testing.T) {
	geocoder := &mockGeocoder{}
	geocoder.On("Geocode", mock.Anything, "Nowhere").
		Return(types.Location{}, types.NewAppError(types.ErrCodeNotFoundLocation, "could not geocode", nil))

	svc := newTestService(&mockAssessments{}, &mockRoutes{}, geocoder)

	_, err := svc.SafeRoutes(context.Background(), Query{Origin: "Nowhere", Destination: "Shah Alam"})
	var appErr *types.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, types.ErrCodeNotFoundLocation, appErr.Code)
}

func TestSafeRoutes_RouteProviderFailure(t *testing.T) {
	assessments := &mockAssessments{}
	routes := &mockRoutes{}
	geocoder := stubGeocoder()

	assessments.On("GetRecent", mock.Anything, 5).Return(nil, nil)
	routes.On("Routes", mock.Anything, mock.Anything, mock.Anything, "DRIVE").
		Return(nil, types.NewAppError(types.ErrCodeUpstreamRouting, "provider down", errors.New("503")))

	svc := newTestService(assessments, routes, geocoder)

	_, err := svc.SafeRoutes(context.Background(), Query{
		Origin: "KLCC", Destination: "Shah Alam", TravelMode: "DRIVE",
	})
	var appErr *types.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, types.ErrCodeUpstreamRouting, appErr.Code)
}

func TestSafeRoutes_HazardFetchFailure(t *testing.T) {
	assessments := &mockAssessments{}
	routes := &mockRoutes{}
	geocoder := stubGeocoder()

	assessments.On("GetRecent", mock.Anything, 5).
		Return(nil, types.NewAppError(types.ErrCodeInternalDB, "query failed", errors.New("conn refused")))
	routes.On("Routes", mock.Anything, mock.Anything, mock.Anything, "DRIVE").Return(nil, nil)

	svc := newTestService(assessments, routes, geocoder)

	_, err := svc.SafeRoutes(context.Background(), Query{
		Origin: "KLCC", Destination: "Shah Alam", TravelMode: "DRIVE",
	})
	var appErr *types.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, types.ErrCodeInternalDB, appErr.Code)
}
