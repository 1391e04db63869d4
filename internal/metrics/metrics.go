package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	ImportsProcessed  *prometheus.CounterVec
	ImportsInFlight   prometheus.Gauge
	APIErrors         prometheus.Counter
	RequestSeconds    *prometheus.HistogramVec
	StoredPoints      prometheus.Gauge
	StorageRecoveries prometheus.Counter
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		ImportsProcessed: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "waypoint_imports_processed_total",
			Help: "Total number of document imports by final status.",
		}, []string{"status"}),
		ImportsInFlight: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "waypoint_imports_in_flight",
			Help: "Number of imports currently running (0 or 1).",
		}),
		APIErrors: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "waypoint_geocoding_provider_api_errors_total",
			Help: "Total number of errors received from the geocoding provider API.",
		}),
		RequestSeconds: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "waypoint_geocoding_provider_request_duration_seconds",
			Help:    "Duration of requests to the geocoding provider API.",
			Buckets: prometheus.DefBuckets,
		}, []string{"provider"}),
		StoredPoints: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "waypoint_stored_points",
			Help: "Number of points in the store after the last read or write.",
		}),
		StorageRecoveries: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "waypoint_storage_read_recoveries_total",
			Help: "Number of unreadable store reads replaced by an empty collection.",
		}),
	}
}
