package httpclient

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storerate_api_requests_total",
			Help: "Total number of API requests issued by the client",
		},
		[]string{"method", "route", "status"},
	)

	requestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "storerate_api_request_duration_seconds",
			Help:    "API request round-trip duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	requestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "storerate_api_requests_in_flight",
			Help: "Current number of API requests awaiting a response",
		},
	)
)

type routeKey struct{}

// WithRoute tags outgoing requests made with ctx with a route template
// (e.g. "/admin/users/:id") so metrics don't explode on ids.
func WithRoute(ctx context.Context, route string) context.Context {
	return context.WithValue(ctx, routeKey{}, route)
}

// RouteFromContext returns the route template set by WithRoute.
func RouteFromContext(ctx context.Context) string {
	if r, ok := ctx.Value(routeKey{}).(string); ok {
		return r
	}
	return ""
}

func observe(method, route, status string, d time.Duration) {
	requestsTotal.WithLabelValues(method, route, status).Inc()
	requestDuration.WithLabelValues(method, route, status).Observe(d.Seconds())
}
