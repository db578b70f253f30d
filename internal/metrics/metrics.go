// Package metrics registers the Prometheus collectors of the query server
// and exposes them for scraping.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mmr-tortoise/mapserver/internal/mapstore"
)

// Query label values.
const (
	QueryMarking   = "marking"
	QueryForbidden = "forbidden"
)

// Result label values.
const (
	ResultFound     = "found"
	ResultNotFound  = "not_found"
	ResultForbidden = "forbidden"
	ResultAllowed   = "allowed"
)

var (
	QueriesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "mapserver_queries_total",
		Help: "Total number of map queries by query and result",
	}, []string{"query", "result"})
	QueryDurationSeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "mapserver_query_duration_seconds",
		Help:    "Map query evaluation time in seconds",
		Buckets: []float64{0.000001, 0.00001, 0.0001, 0.001, 0.01, 0.1},
	}, []string{"query"})
	MapEntities = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "mapserver_map_entities",
		Help: "Entities in the loaded map by kind and status",
	}, []string{"kind", "status"})
	MapIssues = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "mapserver_map_issues",
		Help: "Recoverable problems found while parsing the loaded map",
	})
)

func init() {
	prometheus.MustRegister(QueriesTotal)
	prometheus.MustRegister(QueryDurationSeconds)
	prometheus.MustRegister(MapEntities)
	prometheus.MustRegister(MapIssues)
}

// ObserveMarkingLookup records one marking lookup.
func ObserveMarkingLookup(found bool, d time.Duration) {
	result := ResultNotFound
	if found {
		result = ResultFound
	}
	QueriesTotal.WithLabelValues(QueryMarking, result).Inc()
	QueryDurationSeconds.WithLabelValues(QueryMarking).Observe(d.Seconds())
}

// ObserveForbidden records one forbidden-position query.
func ObserveForbidden(forbidden bool, d time.Duration) {
	result := ResultAllowed
	if forbidden {
		result = ResultForbidden
	}
	QueriesTotal.WithLabelValues(QueryForbidden, result).Inc()
	QueryDurationSeconds.WithLabelValues(QueryForbidden).Observe(d.Seconds())
}

// SetMap publishes the entity counts of a freshly loaded map.
func SetMap(s mapstore.Stats, issues int) {
	MapEntities.WithLabelValues("polygon", "valid").Set(float64(s.Polygons - s.InvalidPolygons))
	MapEntities.WithLabelValues("polygon", "invalid").Set(float64(s.InvalidPolygons))
	MapEntities.WithLabelValues("marking", "valid").Set(float64(s.Markings - s.InvalidMarkings))
	MapEntities.WithLabelValues("marking", "invalid").Set(float64(s.InvalidMarkings))
	MapIssues.Set(float64(issues))
}

// Handler returns the Prometheus scrape handler for /metrics.
func Handler() http.Handler { return promhttp.Handler() }
