package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "shareit",
			Name:      "http_requests_total",
			Help:      "HTTP requests by endpoint and status.",
		},
		[]string{"endpoint", "status"},
	)

	bookingOperations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "shareit",
			Name:      "booking_operations_total",
			Help:      "Booking engine operations by name and result.",
		},
		[]string{"operation", "result"},
	)

	eventsPublished = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "shareit",
			Name:      "events_published_total",
			Help:      "Outbox events by publish outcome.",
		},
		[]string{"outcome"},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(httpRequests, bookingOperations, eventsPublished)
	})
}

// IncHTTP increments the request counter for an endpoint/status pair.
func IncHTTP(endpoint, status string) {
	httpRequests.WithLabelValues(endpoint, status).Inc()
}

// IncBookingOp increments the booking operation counter.
func IncBookingOp(operation, result string) {
	bookingOperations.WithLabelValues(operation, result).Inc()
}

// IncEventPublished increments the outbox publish counter.
func IncEventPublished(outcome string) {
	eventsPublished.WithLabelValues(outcome).Inc()
}
