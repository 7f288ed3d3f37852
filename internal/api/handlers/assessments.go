// Package handlers contains the HTTP handler implementations for the
// FloodRoute API. Each handler depends on locally declared interfaces and
// registers its own routes on the /v1 router.
package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"floodroute/internal/core"
	"floodroute/internal/types"
)

// defaultRecentLimit is the number of assessments returned by the recent
// listing when the caller does not specify one. Matches the hazard window
// used by the safe-route filter.
const defaultRecentLimit = 5

// maxRecentLimit caps the recent listing to keep responses bounded.
const maxRecentLimit = 100

// Assessor computes and persists a risk assessment for a request.
type Assessor interface {
	Assess(ctx context.Context, req types.AssessRequest) (*types.AssessResponse, error)
}

// AssessmentLister provides read access to persisted assessments.
type AssessmentLister interface {
	GetRecent(ctx context.Context, limit int) ([]types.RiskAssessment, error)
}

// AssessmentHandler serves synchronous risk scoring and assessment listings.
type AssessmentHandler struct {
	assessor  Assessor
	lister    AssessmentLister
	validator *core.Validator
	logger    *slog.Logger
}

// NewAssessmentHandler creates an AssessmentHandler with the provided
// dependencies.
func NewAssessmentHandler(assessor Assessor, lister AssessmentLister, v *core.Validator, l *slog.Logger) *AssessmentHandler {
	if l == nil {
		l = slog.Default()
	}
	return &AssessmentHandler{
		assessor:  assessor,
		lister:    lister,
		validator: v,
		logger:    l,
	}
}

// RegisterRoutes mounts assessment routes on the provided chi.Router. The
// recent listing is operational tooling, so it sits behind adminOnly when one
// is supplied.
func (h *AssessmentHandler) RegisterRoutes(r chi.Router, adminOnly func(http.Handler) http.Handler) {
	r.Route("/assessments", func(r chi.Router) {
		r.Post("/", h.Create)
		if adminOnly != nil {
			r.With(adminOnly).Get("/", h.ListRecent)
		} else {
			r.Get("/", h.ListRecent)
		}
	})
}

// Create handles POST /v1/assessments. It scores one location synchronously:
// decode and validate, resolve the location, fuse the urgency score with
// active weather warnings, persist, and return the scored assessment.
func (h *AssessmentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req types.AssessRequest
	if err := core.DecodeJSON(w, r, &req); err != nil {
		core.Error(w, r, err)
		return
	}

	if err := h.validator.ValidateStruct(req); err != nil {
		core.Error(w, r, err)
		return
	}

	resp, err := h.assessor.Assess(r.Context(), req)
	if err != nil {
		core.Error(w, r, err)
		return
	}

	core.JSON(w, r, http.StatusCreated, resp)
}

// ListRecent handles GET /v1/assessments. The optional limit query
// parameter is clamped to [1, 100] and defaults to 5.
func (h *AssessmentHandler) ListRecent(w http.ResponseWriter, r *http.Request) {
	limit := defaultRecentLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			core.Error(w, r, types.NewAppErrorWithDetails(
				types.ErrCodeValidationInvalidField,
				"limit must be a positive integer",
				nil,
				map[string]any{"limit": raw},
			))
			return
		}
		limit = parsed
	}
	if limit > maxRecentLimit {
		limit = maxRecentLimit
	}

	assessments, err := h.lister.GetRecent(r.Context(), limit)
	if err != nil {
		core.Error(w, r, err)
		return
	}
	if assessments == nil {
		assessments = []types.RiskAssessment{}
	}

	core.JSON(w, r, http.StatusOK, assessments)
}
