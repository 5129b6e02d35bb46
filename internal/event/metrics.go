package event

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors for event delivery.
type Metrics struct {
	PublishTotal        *prometheus.CounterVec
	PublishLatency      *prometheus.HistogramVec
	CircuitBreakerState prometheus.Gauge
	CircuitTransitions  *prometheus.CounterVec
}

// NewMetrics registers the event delivery collectors on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		PublishTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "servicedesk",
				Subsystem: "events",
				Name:      "publish_total",
				Help:      "Publish attempts by event type and outcome",
			},
			[]string{"event_type", "outcome"},
		),
		PublishLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "servicedesk",
				Subsystem: "events",
				Name:      "publish_latency_seconds",
				Help:      "Backend send latency in seconds",
				Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
			},
			[]string{"outcome"},
		),
		CircuitBreakerState: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "servicedesk",
				Subsystem: "events",
				Name:      "circuit_breaker_state",
				Help:      "Current state of the event circuit breaker (0=closed, 1=open, 2=half-open)",
			},
		),
		CircuitTransitions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "servicedesk",
				Subsystem: "events",
				Name:      "circuit_transitions_total",
				Help:      "Circuit breaker transitions by target state",
			},
			[]string{"to"},
		),
	}
}

func (m *Metrics) observeTransition(to State) {
	if m == nil {
		return
	}
	m.CircuitBreakerState.Set(float64(to))
	m.CircuitTransitions.WithLabelValues(to.String()).Inc()
}
