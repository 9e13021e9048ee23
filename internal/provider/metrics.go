// Package provider – Prometheus instrumentation
//
// Every adapter records each upstream call through observe(), labeled by
// provider name, operation, and a coarse outcome. Outcomes are a closed set
// (success, error, quota, not_configured) so cardinality stays bounded.
package provider

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// upstreamCalls counts provider calls by outcome.
	upstreamCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "provider_calls_total",
			Help: "Total number of upstream provider calls.",
		},
		[]string{"provider", "op", "outcome"},
	)

	// upstreamLat records provider call duration in seconds. Buckets skew
	// high because generation latency is dominated by the model, not the
	// network.
	upstreamLat = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "provider_call_duration_seconds",
			Help:    "Duration of upstream provider calls in seconds.",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 20, 30, 60},
		},
		[]string{"provider", "op"},
	)
)

func init() {
	prometheus.MustRegister(upstreamCalls, upstreamLat)
}

// observe records one finished upstream call. Call it via defer with a named
// error return so the final classification is captured.
func observe(providerName, op string, start time.Time, err error) {
	outcome := "success"
	switch {
	case err == nil:
	case errors.Is(err, ErrQuotaExhausted):
		outcome = "quota"
	case errors.Is(err, ErrNotConfigured):
		outcome = "not_configured"
	default:
		outcome = "error"
	}
	upstreamCalls.WithLabelValues(providerName, op, outcome).Inc()
	upstreamLat.WithLabelValues(providerName, op).Observe(time.Since(start).Seconds())
}
