package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"floodroute/internal/core"
	"floodroute/internal/types"
)

// --- Mocks ---

type mockAssessor struct {
	gotReq types.AssessRequest
	resp   *types.AssessResponse
	err    error
}

func (m *mockAssessor) Assess(_ context.Context, req types.AssessRequest) (*types.AssessResponse, error) {
	m.gotReq = req
	return m.resp, m.err
}

type mockLister struct {
	gotLimit    int
	assessments []types.RiskAssessment
	err         error
}

func (m *mockLister) GetRecent(_ context.Context, limit int) ([]types.RiskAssessment, error) {
	m.gotLimit = limit
	return m.assessments, m.err
}

// --- Helpers ---

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func makeAssessmentRouter(h *AssessmentHandler) http.Handler {
	r := chi.NewRouter()
	r.Route("/v1", func(r chi.Router) {
		h.RegisterRoutes(r, nil)
	})
	return r
}

func sampleAssessResponse() *types.AssessResponse {
	return &types.AssessResponse{
		AssessmentID: 7,
		City:         "Shah Alam",
		State:        "Selangor",
		Met: types.MetSummary{
			CategoryUsed:     "RAINS",
			WarningCount:     1,
			MaxSeverityLevel: 3,
			MaxSeverityName:  "orange",
		},
		UrgencyScore:   8,
		FinalScore:     7.8,
		RiskLevel:      types.RiskHigh,
		Color:          "orange",
		Recommendation: "Avoid travel through affected areas",
		CalculatedAt:   time.Date(2025, 11, 3, 9, 0, 0, 0, time.UTC),
	}
}

// --- Create tests ---

func TestAssessmentCreate_Success(t *testing.T) {
	assessor := &mockAssessor{resp: sampleAssessResponse()}
	h := NewAssessmentHandler(assessor, &mockLister{}, core.NewValidator(), testLogger())
	router := makeAssessmentRouter(h)

	body := `{"city":"Shah Alam","urgency_score":8}`
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/v1/assessments", strings.NewReader(body))

	router.ServeHTTP(w, r)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	var resp types.AssessResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.AssessmentID != 7 || resp.RiskLevel != types.RiskHigh {
		t.Errorf("unexpected response: %+v", resp)
	}
	if assessor.gotReq.City != "Shah Alam" || assessor.gotReq.UrgencyScore != 8 {
		t.Errorf("service received unexpected request: %+v", assessor.gotReq)
	}
}

func TestAssessmentCreate_InvalidJSON(t *testing.T) {
	h := NewAssessmentHandler(&mockAssessor{}, &mockLister{}, core.NewValidator(), testLogger())
	router := makeAssessmentRouter(h)

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/v1/assessments", bytes.NewReader([]byte(`{"city":`)))

	router.ServeHTTP(w, r)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), string(types.ErrCodeValidationInvalidJSON)) {
		t.Errorf("expected invalid JSON code, got: %s", w.Body.String())
	}
}

func TestAssessmentCreate_UrgencyOutOfRange(t *testing.T) {
	h := NewAssessmentHandler(&mockAssessor{}, &mockLister{}, core.NewValidator(), testLogger())
	router := makeAssessmentRouter(h)

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/v1/assessments", strings.NewReader(`{"city":"Shah Alam","urgency_score":15}`))

	router.ServeHTTP(w, r)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), string(types.ErrCodeValidationInvalidField)) {
		t.Errorf("expected invalid field code, got: %s", w.Body.String())
	}
}

func TestAssessmentCreate_ServiceErrorPropagates(t *testing.T) {
	assessor := &mockAssessor{err: types.NewAppError(types.ErrCodeNotFoundLocation, "unknown town", nil)}
	h := NewAssessmentHandler(assessor, &mockLister{}, core.NewValidator(), testLogger())
	router := makeAssessmentRouter(h)

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/v1/assessments", strings.NewReader(`{"city":"Atlantis","urgency_score":5}`))

	router.ServeHTTP(w, r)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

// --- ListRecent tests ---

func TestListRecent_DefaultLimit(t *testing.T) {
	lister := &mockLister{assessments: []types.RiskAssessment{
		{ID: 1, District: "Shah Alam", FinalScore: 7.8, RiskLevel: types.RiskHigh},
	}}
	h := NewAssessmentHandler(&mockAssessor{}, lister, core.NewValidator(), testLogger())
	router := makeAssessmentRouter(h)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/assessments", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if lister.gotLimit != defaultRecentLimit {
		t.Errorf("expected default limit %d, got %d", defaultRecentLimit, lister.gotLimit)
	}

	var resp []types.RiskAssessment
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp) != 1 || resp[0].District != "Shah Alam" {
		t.Errorf("unexpected response: %+v", resp)
	}
}

func TestListRecent_LimitClampedToMax(t *testing.T) {
	lister := &mockLister{}
	h := NewAssessmentHandler(&mockAssessor{}, lister, core.NewValidator(), testLogger())
	router := makeAssessmentRouter(h)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/assessments?limit=5000", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if lister.gotLimit != maxRecentLimit {
		t.Errorf("expected limit clamped to %d, got %d", maxRecentLimit, lister.gotLimit)
	}
}

func TestListRecent_InvalidLimit(t *testing.T) {
	h := NewAssessmentHandler(&mockAssessor{}, &mockLister{}, core.NewValidator(), testLogger())
	router := makeAssessmentRouter(h)

	for _, limit := range []string{"abc", "0", "-3"} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/assessments?limit="+limit, nil))

		if w.Code != http.StatusBadRequest {
			t.Errorf("limit=%s: expected 400, got %d", limit, w.Code)
		}
	}
}

func TestListRecent_AdminMiddlewareGuardsRoute(t *testing.T) {
	h := NewAssessmentHandler(&mockAssessor{}, &mockLister{}, core.NewValidator(), testLogger())

	deny := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		})
	}

	r := chi.NewRouter()
	r.Route("/v1", func(r chi.Router) {
		h.RegisterRoutes(r, deny)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/assessments", nil))
	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected recent listing guarded, got %d", w.Code)
	}

	// Create stays public.
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/v1/assessments", strings.NewReader(`{"city":`)))
	if w.Code == http.StatusUnauthorized {
		t.Error("expected create route unguarded")
	}
}

func TestListRecent_EmptyIsJSONArray(t *testing.T) {
	h := NewAssessmentHandler(&mockAssessor{}, &mockLister{}, core.NewValidator(), testLogger())
	router := makeAssessmentRouter(h)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/assessments", nil))

	if got := strings.TrimSpace(w.Body.String()); got != "[]" {
		t.Errorf("expected empty JSON array, got %q", got)
	}
}
