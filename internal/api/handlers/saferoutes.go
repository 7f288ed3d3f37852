package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"floodroute/internal/core"
	"floodroute/internal/saferoute"
	"floodroute/internal/types"
)

// SafeRouteFinder computes the hazard-filtered route ranking for a query.
type SafeRouteFinder interface {
	SafeRoutes(ctx context.Context, q saferoute.Query) (*saferoute.Result, error)
}

// SafeRouteHandler serves GET /v1/routes/safe.
type SafeRouteHandler struct {
	finder SafeRouteFinder
	logger *slog.Logger
}

// NewSafeRouteHandler creates a SafeRouteHandler.
func NewSafeRouteHandler(finder SafeRouteFinder, l *slog.Logger) *SafeRouteHandler {
	if l == nil {
		l = slog.Default()
	}
	return &SafeRouteHandler{finder: finder, logger: l}
}

// RegisterRoutes mounts route-planning routes on the provided chi.Router.
func (h *SafeRouteHandler) RegisterRoutes(r chi.Router) {
	r.Get("/routes/safe", h.Get)
}

// Get handles GET /v1/routes/safe. Query parameters:
//
//	origin      - place name or "lat,lon" (required)
//	destination - place name or "lat,lon" (required)
//	travelMode  - routing travel mode, defaults to DRIVE
//	weather     - current weather descriptor, widens hazard radii
//
// When at least one candidate clears every hazard, the response carries the
// fastest safe route plus the remaining safe alternatives. When none do, the
// response still lists the hazards alongside a fixed message.
func (h *SafeRouteHandler) Get(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	origin := cleanParam(q.Get("origin"))
	destination := cleanParam(q.Get("destination"))

	if origin == "" || destination == "" {
		core.Error(w, r, types.NewAppErrorWithDetails(
			types.ErrCodeValidationMissingField,
			"origin and destination query parameters are required",
			nil,
			map[string]any{"origin": origin, "destination": destination},
		))
		return
	}

	result, err := h.finder.SafeRoutes(r.Context(), saferoute.Query{
		Origin:      origin,
		Destination: destination,
		TravelMode:  cleanParam(q.Get("travelMode")),
		Weather:     cleanParam(q.Get("weather")),
	})
	if err != nil {
		core.Error(w, r, err)
		return
	}

	hazards := result.Hazards
	if hazards == nil {
		hazards = []types.Hazard{}
	}

	if result.Best == nil {
		core.JSON(w, r, http.StatusOK, types.NoSafeRouteResponse{
			Message: types.NoSafeRoutesMessage,
			Hazards: hazards,
		})
		return
	}

	alternatives := make([]types.AlternativeRoute, 0, len(result.Alternatives))
	for _, alt := range result.Alternatives {
		alternatives = append(alternatives, types.AlternativeRoute{Polyline: alt.Polyline})
	}

	core.JSON(w, r, http.StatusOK, types.SafeRouteResponse{
		BestRoute: types.BestRoute{
			Polyline:  result.Best.Polyline,
			DurationS: result.Best.DurationS,
			DistanceM: result.Best.DistanceM,
			MinDist:   result.Best.MinDist,
		},
		Alternatives: alternatives,
		Hazards:      hazards,
	})
}

// cleanParam trims whitespace and one layer of surrounding quotes. Clients
// assembling URLs by hand tend to leave quotes around place names.
func cleanParam(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 {
		first, last := s[0], s[len(s)-1]
		if (first == '"' && last == '"') || (first == '\'' && last == '\'') {
			s = s[1 : len(s)-1]
		}
	}
	return strings.TrimSpace(s)
}
