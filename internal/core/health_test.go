package core

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

type stubProbe struct {
	name  string
	err   error
	delay time.Duration
}

func (p stubProbe) Name() string { return p.name }

func (p stubProbe) Check(ctx context.Context) error {
	if p.delay > 0 {
		select {
		case <-time.After(p.delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return p.err
}

func doHealthCheck(t *testing.T, s *Server) (int, healthResponse) {
	t.Helper()

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/health", nil)
	s.HandleHealth(w, r)

	var body healthResponse
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode health response: %v", err)
	}
	return w.Code, body
}

func TestHandleHealth_NoProbes(t *testing.T) {
	s := newTestServer(t)

	code, body := doHealthCheck(t, s)
	if code != http.StatusOK {
		t.Errorf("expected 200, got %d", code)
	}
	if body.Status != "healthy" {
		t.Errorf("expected healthy, got %s", body.Status)
	}
}

func TestHandleHealth_AllHealthy(t *testing.T) {
	s := newTestServer(t)
	s.HealthProbes = []HealthProbe{
		stubProbe{name: "database"},
		stubProbe{name: "queue"},
	}

	code, body := doHealthCheck(t, s)
	if code != http.StatusOK {
		t.Errorf("expected 200, got %d", code)
	}
	for _, name := range []string{"database", "queue"} {
		if body.Components[name].Status != "healthy" {
			t.Errorf("expected %s healthy, got %+v", name, body.Components[name])
		}
	}
}

func TestHandleHealth_OneUnhealthy(t *testing.T) {
	s := newTestServer(t)
	s.HealthProbes = []HealthProbe{
		stubProbe{name: "database"},
		stubProbe{name: "queue", err: errors.New("connection refused")},
	}

	code, body := doHealthCheck(t, s)
	if code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", code)
	}
	if body.Status != "unhealthy" {
		t.Errorf("expected unhealthy overall, got %s", body.Status)
	}
	if body.Components["database"].Status != "healthy" {
		t.Errorf("expected database healthy, got %+v", body.Components["database"])
	}
	if body.Components["queue"].Status != "unhealthy" {
		t.Errorf("expected queue unhealthy, got %+v", body.Components["queue"])
	}
}

func TestHandleHealth_ProbeTimeout(t *testing.T) {
	s := newTestServer(t)
	s.HealthProbes = []HealthProbe{
		stubProbe{name: "slow", delay: 10 * time.Second},
	}

	code, body := doHealthCheck(t, s)
	if code != http.StatusServiceUnavailable {
		t.Errorf("expected 503 for a timed-out probe, got %d", code)
	}
	if body.Components["slow"].Status != "unhealthy" {
		t.Errorf("expected slow probe unhealthy, got %+v", body.Components["slow"])
	}
}

func TestHandleHealth_ProbePanic(t *testing.T) {
	s := newTestServer(t)
	s.HealthProbes = []HealthProbe{
		panicProbe{},
		stubProbe{name: "database"},
	}

	code, body := doHealthCheck(t, s)
	if code != http.StatusServiceUnavailable {
		t.Errorf("expected 503 for a panicking probe, got %d", code)
	}
	if body.Components["panicky"].Status != "unhealthy" {
		t.Errorf("expected panicky probe unhealthy, got %+v", body.Components["panicky"])
	}
	if body.Components["database"].Status != "healthy" {
		t.Errorf("expected healthy probes unaffected, got %+v", body.Components["database"])
	}
}

type panicProbe struct{}

func (panicProbe) Name() string { return "panicky" }

func (panicProbe) Check(ctx context.Context) error {
	panic("boom")
}
