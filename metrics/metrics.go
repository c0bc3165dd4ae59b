// Package metrics provides Prometheus collectors for routing steps and fallbacks.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// LLMBuckets defines histogram buckets suited for vendor call latencies,
// ranging from 100ms to 120s.
var LLMBuckets = []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120}

// Step outcomes recorded on StepAttempts.
const (
	OutcomeSuccess   = "success"
	OutcomeCongested = "congested"
	OutcomeAuth      = "auth"
	OutcomeTimeout   = "timeout"
	OutcomeAborted   = "aborted"
	OutcomeError     = "error"
)

// Collector groups the router's collectors. A nil *Collector is valid and
// records nothing.
type Collector struct {
	// StepAttempts counts adapter calls by provider, model and outcome.
	StepAttempts *prometheus.CounterVec

	// Fallbacks counts congestion fallbacks by the provider that was skipped
	// and the status code that caused it.
	Fallbacks *prometheus.CounterVec

	// StepDuration records adapter call latency in seconds.
	StepDuration *prometheus.HistogramVec
}

// New creates the collectors and registers them with reg. A nil reg leaves
// them unregistered, which is convenient in tests.
func New(reg prometheus.Registerer) *Collector {
	c := &Collector{
		StepAttempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tlrouter_step_attempts_total",
				Help: "Adapter calls made while executing routing plans",
			},
			[]string{"provider", "model", "outcome"},
		),
		Fallbacks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tlrouter_fallbacks_total",
				Help: "Congestion fallbacks to the next routing step",
			},
			[]string{"provider", "status"},
		),
		StepDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "tlrouter_step_duration_seconds",
				Help:    "Adapter call duration",
				Buckets: LLMBuckets,
			},
			[]string{"provider", "model"},
		),
	}

	if reg != nil {
		reg.MustRegister(c.StepAttempts, c.Fallbacks, c.StepDuration)
	}
	return c
}

// ObserveStep records one adapter call.
func (c *Collector) ObserveStep(provider, model, outcome string, elapsed time.Duration) {
	if c == nil {
		return
	}
	c.StepAttempts.WithLabelValues(provider, model, outcome).Inc()
	c.StepDuration.WithLabelValues(provider, model).Observe(elapsed.Seconds())
}

// ObserveFallback records that provider was skipped because of status.
func (c *Collector) ObserveFallback(provider string, status int) {
	if c == nil {
		return
	}
	c.Fallbacks.WithLabelValues(provider, strconv.Itoa(status)).Inc()
}
