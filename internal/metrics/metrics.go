// Package metrics exposes the Prometheus instruments of the eCoA service.
package metrics

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"
)

var (
	apiRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ecoa_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "route", "status"},
	)

	apiRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ecoa_api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	ownerActionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ecoa_owner_actions_total",
			Help: "Total number of document owner actions",
		},
		[]string{"action"}, // assign, approve, reject, retry
	)

	requestsCreatedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "ecoa_requests_created_total",
			Help: "Total number of request envelopes ingested",
		},
	)

	requestsByStatus = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "ecoa_requests_by_status",
			Help: "Number of request envelopes by aggregate status, as of the last dashboard refresh",
		},
		[]string{"status"},
	)

	databaseConnectionsActive = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "ecoa_database_connections_active",
		Help: "Number of active database connections",
	})
	databaseConnectionsIdle = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "ecoa_database_connections_idle",
		Help: "Number of idle database connections",
	})
)

// Registry holds every eCoA instrument plus the Go and process collectors.
var Registry = prometheus.NewRegistry()

func init() {
	Registry.MustRegister(
		apiRequestsTotal,
		apiRequestDuration,
		ownerActionsTotal,
		requestsCreatedTotal,
		requestsByStatus,
		databaseConnectionsActive,
		databaseConnectionsIdle,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}

// Handler serves the registry in the Prometheus exposition format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// RecordAPIRequest records one served request. route is the matched route pattern.
func RecordAPIRequest(method, route string, status int, seconds float64) {
	if route == "" {
		route = "unmatched"
	}
	apiRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	apiRequestDuration.WithLabelValues(method, route).Observe(seconds)
}

// RecordOwnerAction counts an assign, approve, reject or retry.
func RecordOwnerAction(action string) {
	ownerActionsTotal.WithLabelValues(action).Inc()
}

// RecordRequestCreated counts an ingested envelope.
func RecordRequestCreated() {
	requestsCreatedTotal.Inc()
}

// SetRequestsByStatus publishes the envelope status distribution.
func SetRequestsByStatus(counts map[string]int) {
	requestsByStatus.Reset()
	for status, n := range counts {
		requestsByStatus.WithLabelValues(status).Set(float64(n))
	}
}

// UpdateDatabaseConnections publishes the connection pool statistics of db.
func UpdateDatabaseConnections(db *gorm.DB) error {
	if db == nil {
		return fmt.Errorf("database connection is nil")
	}
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB: %w", err)
	}
	stats := sqlDB.Stats()
	databaseConnectionsActive.Set(float64(stats.InUse))
	databaseConnectionsIdle.Set(float64(stats.Idle))
	return nil
}
