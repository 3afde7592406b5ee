package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestTotal counts HTTP requests by method, route template and status.
	RequestTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mongo_admin_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)
	// RequestDuration is the latency of HTTP requests.
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mongo_admin_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
	// StoreOperations counts document store calls by operation and outcome.
	StoreOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mongo_admin_store_operations_total",
			Help: "Total number of document store operations",
		},
		[]string{"operation", "outcome"},
	)
	// AuditWrites counts audit log appends.
	AuditWrites = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mongo_admin_audit_writes_total",
			Help: "Total number of audit log writes",
		},
		[]string{"outcome"},
	)
)

// ObserveStore records the outcome of one store operation.
func ObserveStore(operation string, err error) {
	StoreOperations.WithLabelValues(operation, outcome(err)).Inc()
}

// ObserveAudit records the outcome of one audit append.
func ObserveAudit(err error) {
	AuditWrites.WithLabelValues(outcome(err)).Inc()
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
