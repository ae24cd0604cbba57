package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	bookingOperations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "staybook",
			Name:      "booking_operations_total",
			Help:      "Coordinator operations by name and outcome.",
		},
		[]string{"operation", "outcome"},
	)

	catalogRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "staybook",
			Name:      "catalog_requests_total",
			Help:      "Catalog reads by resource.",
		},
		[]string{"resource"},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(bookingOperations, catalogRequests)
	})
}

// IncOperation increments the counter for a coordinator operation outcome.
func IncOperation(operation, outcome string) {
	bookingOperations.WithLabelValues(operation, outcome).Inc()
}

// IncCatalog increments the counter for a catalog resource read.
func IncCatalog(resource string) {
	catalogRequests.WithLabelValues(resource).Inc()
}
