package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"floodroute/internal/core"
	"floodroute/internal/hazard"
	"floodroute/internal/types"
)

// HazardHandler serves GET /v1/hazards: the recent assessments projected as
// exclusion zones, with radii scaled by the current weather.
type HazardHandler struct {
	lister      AssessmentLister
	radiusModel *hazard.Model
	window      int
	logger      *slog.Logger
}

// NewHazardHandler creates a HazardHandler. window is the number of recent
// assessments treated as active hazards.
func NewHazardHandler(lister AssessmentLister, radiusModel *hazard.Model, window int, l *slog.Logger) *HazardHandler {
	if window <= 0 {
		window = defaultRecentLimit
	}
	if l == nil {
		l = slog.Default()
	}
	return &HazardHandler{
		lister:      lister,
		radiusModel: radiusModel,
		window:      window,
		logger:      l,
	}
}

// RegisterRoutes mounts hazard routes on the provided chi.Router.
func (h *HazardHandler) RegisterRoutes(r chi.Router) {
	r.Get("/hazards", h.List)
}

// List handles GET /v1/hazards. The optional weather query parameter widens
// each hazard's exclusion radius the same way the safe-route filter does.
func (h *HazardHandler) List(w http.ResponseWriter, r *http.Request) {
	assessments, err := h.lister.GetRecent(r.Context(), h.window)
	if err != nil {
		core.Error(w, r, err)
		return
	}

	hazards := make([]types.Hazard, 0, len(assessments))
	for _, a := range assessments {
		score := a.FinalScore
		hazards = append(hazards, types.Hazard{
			ID:             a.ID,
			District:       a.District,
			Lat:            a.Latitude,
			Lon:            a.Longitude,
			FinalScore:     &score,
			RiskLevel:      a.RiskLevel,
			Recommendation: a.Recommendation,
		})
	}

	weather := cleanParam(r.URL.Query().Get("weather"))
	hazards = h.radiusModel.AnnotateWithRadius(hazards, weather)

	core.JSON(w, r, http.StatusOK, hazards)
}
