// Package metrics provides Prometheus metrics for the catalogue.
//
// There is no HTTP endpoint; metrics are written to a node-exporter
// textfile at the end of a run when a path is configured.
package metrics

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	OutcomeFound    = "found"
	OutcomeNotFound = "not_found"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Registry is the Prometheus registry for this metrics instance
	Registry *prometheus.Registry

	StatRequestsTotal  *prometheus.CounterVec
	RouteQueryDuration prometheus.Histogram
	RouteCacheHits     prometheus.Counter
	RouteCacheMisses   prometheus.Counter

	GraphVertices      prometheus.Gauge
	GraphEdges         prometheus.Gauge
	GraphBuildDuration prometheus.Gauge

	CatalogueStops prometheus.Gauge
	CatalogueBuses prometheus.Gauge

	logger *slog.Logger
}

// New creates and registers all application metrics with a new registry.
func New() *Metrics {
	return NewWithLogger(nil)
}

// NewWithLogger creates metrics with a logger for error reporting.
func NewWithLogger(logger *slog.Logger) *Metrics {
	registry := prometheus.NewRegistry()

	statRequestsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalogue_stat_requests_total",
			Help: "Total number of stat requests answered",
		},
		[]string{"type", "outcome"},
	)

	routeQueryDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "catalogue_route_query_duration_seconds",
		Help:    "Route query latency distribution",
		Buckets: prometheus.ExponentialBuckets(0.00001, 4, 10),
	})

	routeCacheHits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "catalogue_route_cache_hits_total",
		Help: "Route queries answered from the cache",
	})

	routeCacheMisses := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "catalogue_route_cache_misses_total",
		Help: "Route queries that ran a graph search",
	})

	graphVertices := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "catalogue_graph_vertices",
		Help: "Number of vertices in the routing graph",
	})

	graphEdges := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "catalogue_graph_edges",
		Help: "Number of edges in the routing graph",
	})

	graphBuildDuration := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "catalogue_graph_build_duration_seconds",
		Help: "Time spent building the routing graph",
	})

	catalogueStops := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "catalogue_stops",
		Help: "Number of stops loaded",
	})

	catalogueBuses := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "catalogue_buses",
		Help: "Number of bus lines loaded",
	})

	registry.MustRegister(
		statRequestsTotal,
		routeQueryDuration,
		routeCacheHits,
		routeCacheMisses,
		graphVertices,
		graphEdges,
		graphBuildDuration,
		catalogueStops,
		catalogueBuses,
	)

	return &Metrics{
		Registry:           registry,
		StatRequestsTotal:  statRequestsTotal,
		RouteQueryDuration: routeQueryDuration,
		RouteCacheHits:     routeCacheHits,
		RouteCacheMisses:   routeCacheMisses,
		GraphVertices:      graphVertices,
		GraphEdges:         graphEdges,
		GraphBuildDuration: graphBuildDuration,
		CatalogueStops:     catalogueStops,
		CatalogueBuses:     catalogueBuses,
		logger:             logger,
	}
}

// ObserveStatRequest counts one answered stat request.
func (m *Metrics) ObserveStatRequest(requestType string, found bool) {
	outcome := OutcomeFound
	if !found {
		outcome = OutcomeNotFound
	}
	m.StatRequestsTotal.WithLabelValues(requestType, outcome).Inc()
}

// ObserveRouteQuery records one route query.
func (m *Metrics) ObserveRouteQuery(d time.Duration, cacheHit bool) {
	m.RouteQueryDuration.Observe(d.Seconds())
	if cacheHit {
		m.RouteCacheHits.Inc()
	} else {
		m.RouteCacheMisses.Inc()
	}
}

// ObserveGraph records the size of a freshly built graph.
func (m *Metrics) ObserveGraph(vertices, edges int, buildTime time.Duration) {
	m.GraphVertices.Set(float64(vertices))
	m.GraphEdges.Set(float64(edges))
	m.GraphBuildDuration.Set(buildTime.Seconds())
}

// ObserveCatalogue records the size of the loaded network.
func (m *Metrics) ObserveCatalogue(stops, buses int) {
	m.CatalogueStops.Set(float64(stops))
	m.CatalogueBuses.Set(float64(buses))
}

// WriteTextfile writes every registered metric to path in the Prometheus
// text format. An empty path is a no-op.
func (m *Metrics) WriteTextfile(path string) error {
	if path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, m.Registry); err != nil {
		if m.logger != nil {
			m.logger.Error("failed to write metrics textfile", "path", path, "error", err)
		}
		return fmt.Errorf("error writing metrics to %s: %w", path, err)
	}
	return nil
}
