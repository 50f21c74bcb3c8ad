package infrastructure

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics collects the application's Prometheus instruments on a private
// registry so tests can create independent instances.
type Metrics struct {
	registry *prometheus.Registry

	// Catalog pipeline
	CatalogLoads    *prometheus.CounterVec
	CatalogRows     prometheus.Gauge
	ParseWarnings   prometheus.Counter
	FilesDiscovered prometheus.Gauge

	// Favorites persistence
	FavoritesReads  *prometheus.CounterVec
	FavoritesSaves  *prometheus.CounterVec
	SaveConflicts   prometheus.Counter
}

// NewMetrics creates and registers all application metrics.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		CatalogLoads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "catalog_loads_total",
			Help: "Catalog load cycles by outcome (reload, cached)",
		}, []string{"result"}),
		CatalogRows: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "catalog_rows",
			Help: "Card rows in the aggregated catalog table",
		}),
		ParseWarnings: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "catalog_parse_warnings_total",
			Help: "Per-file load failures skipped during aggregation",
		}),
		FilesDiscovered: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "catalog_files_discovered",
			Help: "Spreadsheet files found in the data directory",
		}),
		FavoritesReads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "favorites_reads_total",
			Help: "Favorites document reads by backend",
		}, []string{"backend", "result"}),
		FavoritesSaves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "favorites_saves_total",
			Help: "Favorites document writes by backend",
		}, []string{"backend", "result"}),
		SaveConflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "favorites_save_conflicts_total",
			Help: "Writes rejected because the version token was stale",
		}),
	}

	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.CatalogLoads,
		m.CatalogRows,
		m.ParseWarnings,
		m.FilesDiscovered,
		m.FavoritesReads,
		m.FavoritesSaves,
		m.SaveConflicts,
	)

	return m
}

// Handler exposes the registry in Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
