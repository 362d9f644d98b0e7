package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Collector struct {
	AppointmentsCreatedTotal prometheus.Counter
	SeriesVisitsGenerated    prometheus.Counter
	RegistrationsAllocated   prometheus.Counter
	StatusTransitionsTotal   *prometheus.CounterVec
	ValidationFailuresTotal  prometheus.Counter
	HistoryBufferDropped     prometheus.Counter

	DBQueryDuration *prometheus.HistogramVec
	DBConnections   prometheus.Gauge
}

func NewCollector(serviceName string) *Collector {
	return &Collector{
		AppointmentsCreatedTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: serviceName,
			Subsystem: "scheduling",
			Name:      "appointments_created_total",
			Help:      "Total appointments created, root and series visits included.",
		}),

		SeriesVisitsGenerated: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: serviceName,
			Subsystem: "scheduling",
			Name:      "series_visits_generated_total",
			Help:      "Total follow-up visits materialized from multi-visit packages.",
		}),

		RegistrationsAllocated: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: serviceName,
			Subsystem: "scheduling",
			Name:      "registrations_allocated_total",
			Help:      "Total registration numbers handed out.",
		}),

		StatusTransitionsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: serviceName,
			Subsystem: "scheduling",
			Name:      "status_transitions_total",
			Help:      "Committed status transitions by target status.",
		}, []string{"to"}),

		ValidationFailuresTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: serviceName,
			Subsystem: "scheduling",
			Name:      "validation_failures_total",
			Help:      "Saves rejected by the conflict or sequence validators.",
		}),

		HistoryBufferDropped: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: serviceName,
			Subsystem: "audit",
			Name:      "buffer_dropped_total",
			Help:      "Status-history entries dropped due to full buffer. Alert if non-zero.",
		}),

		DBQueryDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: serviceName,
			Subsystem: "db",
			Name:      "query_duration_seconds",
			Help:      "Database query latency distribution.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0},
		}, []string{"operation", "table"}),

		DBConnections: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: serviceName,
			Subsystem: "db",
			Name:      "open_connections",
			Help:      "Current number of open database connections.",
		}),
	}
}

func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
