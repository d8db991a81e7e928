package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "restaurant_map_http_requests_total",
		Help: "Total number of API requests",
	}, []string{"method", "route", "status"})
	RequestDurationMs = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "restaurant_map_http_request_duration_ms",
		Help:    "Request duration in milliseconds",
		Buckets: []float64{1, 5, 10, 20, 50, 100, 200, 500, 1000},
	}, []string{"route"})
	StatsCacheHitsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "restaurant_map_stats_cache_hits_total",
		Help: "Total score-by-cuisine cache hits",
	})
	StatsCacheMissesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "restaurant_map_stats_cache_misses_total",
		Help: "Total score-by-cuisine cache misses",
	})
	MutationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "restaurant_map_mutations_total",
		Help: "Successful create/update/delete operations",
	}, []string{"op"})
	NearbyResults = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "restaurant_map_nearby_results",
		Help:    "Number of records returned by proximity searches",
		Buckets: []float64{0, 1, 5, 10, 25, 50, 100, 250, 500, 1000},
	})
)

func init() {
	prometheus.MustRegister(RequestsTotal)
	prometheus.MustRegister(RequestDurationMs)
	prometheus.MustRegister(StatsCacheHitsTotal)
	prometheus.MustRegister(StatsCacheMissesTotal)
	prometheus.MustRegister(MutationsTotal)
	prometheus.MustRegister(NearbyResults)
}

// Handler exposes every registered collector for scraping at /metrics.
func Handler() http.Handler { return promhttp.Handler() }
