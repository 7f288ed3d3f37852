// Package observability holds the metric surfaces for the FloodRoute
// processes: a Prometheus registry for the long-running API server and a
// CloudWatch emitter for the Lambda ingest worker, which has no scrapable
// endpoint.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the API
// server.
type Metrics struct {
	RequestsTotal   *prometheus.CounterVec   // labels: method, route, status
	RequestDuration *prometheus.HistogramVec // labels: method, route

	AssessmentsScored *prometheus.CounterVec // labels: risk_level
	SafeRouteQueries  *prometheus.CounterVec // labels: outcome={found,none}
	RoutesFiltered    prometheus.Histogram   // unsafe routes dropped per query

	UpstreamErrors  *prometheus.CounterVec // labels: provider={met,routes,geocode}
	EventsPublished prometheus.Counter
}

// NewMetrics creates and registers all API metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.RequestsTotal,
		m.RequestDuration,
		m.AssessmentsScored,
		m.SafeRouteQueries,
		m.RoutesFiltered,
		m.UpstreamErrors,
		m.EventsPublished,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "floodroute",
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route, and status class.",
		}, []string{"method", "route", "status"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "floodroute",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"method", "route"}),
		AssessmentsScored: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "floodroute",
			Name:      "assessments_scored_total",
			Help:      "Risk assessments persisted, by resulting risk level.",
		}, []string{"risk_level"}),
		SafeRouteQueries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "floodroute",
			Name:      "safe_route_queries_total",
			Help:      "Safe-route queries by outcome.",
		}, []string{"outcome"}),
		RoutesFiltered: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "floodroute",
			Name:      "routes_filtered_per_query",
			Help:      "Candidate routes rejected as unsafe per query.",
			Buckets:   []float64{0, 1, 2, 3, 4, 5, 8, 12},
		}),
		UpstreamErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "floodroute",
			Name:      "upstream_errors_total",
			Help:      "Failed upstream provider calls by provider.",
		}, []string{"provider"}),
		EventsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "floodroute",
			Name:      "assessment_events_published_total",
			Help:      "Assessment events successfully published to Kafka.",
		}),
	}
}
