package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prediction outcome labels.
const (
	OutcomeUpstream = "upstream"
	OutcomeFallback = "fallback"
	OutcomeInvalid  = "invalid"
)

var (
	// PredictionRequests counts served predictions by outcome. Absorbed
	// upstream failures surface here as "fallback" rather than as errors.
	PredictionRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "agroyield_prediction_requests_total",
		Help: "Prediction requests by outcome (upstream, fallback, invalid).",
	}, []string{"outcome"})

	// UpstreamFailures counts model service failures by reason.
	UpstreamFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "agroyield_upstream_failures_total",
		Help: "Model service delegation failures by reason.",
	}, []string{"reason"})

	// PredictionDuration observes end-to-end broker latency.
	PredictionDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "agroyield_prediction_duration_seconds",
		Help:    "Prediction broker latency, fallback paths included.",
		Buckets: prometheus.DefBuckets,
	})
)
