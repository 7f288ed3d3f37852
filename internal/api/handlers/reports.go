package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"floodroute/internal/core"
	"floodroute/internal/types"
)

// ReportEnqueuer hands a flood report to the asynchronous scoring pipeline.
type ReportEnqueuer interface {
	Enqueue(ctx context.Context, msg types.FloodReportMessage) error
}

// ReportHandler accepts analyzed flood reports for asynchronous scoring.
type ReportHandler struct {
	enqueuer  ReportEnqueuer
	validator *core.Validator
	logger    *slog.Logger
	now       func() time.Time
}

// NewReportHandler creates a ReportHandler.
func NewReportHandler(enqueuer ReportEnqueuer, v *core.Validator, l *slog.Logger) *ReportHandler {
	if l == nil {
		l = slog.Default()
	}
	return &ReportHandler{
		enqueuer:  enqueuer,
		validator: v,
		logger:    l,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// RegisterRoutes mounts report ingestion routes on the provided chi.Router.
func (h *ReportHandler) RegisterRoutes(r chi.Router) {
	r.Post("/reports", h.Create)
}

// Create handles POST /v1/reports. The report is validated and enqueued for
// the ingest worker; scoring happens asynchronously, so the response is a
// 202 with the report ID echoed back.
func (h *ReportHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req types.ReportRequest
	if err := core.DecodeJSON(w, r, &req); err != nil {
		core.Error(w, r, err)
		return
	}

	if err := h.validator.ValidateStruct(req); err != nil {
		core.Error(w, r, err)
		return
	}

	msg := types.FloodReportMessage{
		ReportID:      req.ReportID,
		Text:          req.Text,
		Timestamp:     h.now(),
		FloodDetected: req.FloodDetected,
		UrgencyScore:  req.UrgencyScore,
		Confidence:    req.Confidence,
		Cities:        req.Cities,
		States:        req.States,
		Lat:           req.Lat,
		Lon:           req.Lon,
		Weather:       req.Weather,
	}

	if err := h.enqueuer.Enqueue(r.Context(), msg); err != nil {
		core.Error(w, r, err)
		return
	}

	core.JSON(w, r, http.StatusAccepted, types.ReportAccepted{
		ReportID: req.ReportID,
		Status:   "queued",
	})
}
