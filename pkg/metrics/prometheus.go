package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all prometheus metrics
type Metrics struct {
	Ticks           prometheus.Counter
	TickFailures    prometheus.Counter
	TickDuration    prometheus.Histogram
	TripsDue        prometheus.Gauge
	ETAUpdates      prometheus.Counter
	TripFailures    *prometheus.CounterVec
	ProviderLatency prometheus.Histogram
}

// NewMetrics creates new prometheus metrics on the default registerer
func NewMetrics(namespace string) *Metrics {
	return NewMetricsWithRegisterer(namespace, prometheus.DefaultRegisterer)
}

// NewMetricsWithRegisterer creates metrics on reg. A nil reg leaves them unregistered.
func NewMetricsWithRegisterer(namespace string, reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		Ticks: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ticks_total",
			Help:      "The total number of scheduling ticks started",
		}),
		TickFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tick_failures_total",
			Help:      "The total number of ticks aborted because the trip snapshot could not be read",
		}),
		TickDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "tick_duration_seconds",
			Help:      "Time taken to process one batch of trips",
			Buckets:   prometheus.DefBuckets,
		}),
		TripsDue: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "trips_due",
			Help:      "Number of trips due for an ETA refresh in the last tick",
		}),
		ETAUpdates: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "eta_updates_total",
			Help:      "The total number of ETA estimates written back to trips",
		}),
		TripFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "trip_failures_total",
			Help:      "The total number of skipped or failed trip refreshes",
		}, []string{"reason"}),
		ProviderLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "provider_request_duration_seconds",
			Help:      "Latency of flight tracking provider requests",
			Buckets:   prometheus.DefBuckets,
		}),
	}
}
