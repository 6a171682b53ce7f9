// Package metrics records gateway operation counts and latencies.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Outcome labels.
const (
	OutcomeOK          = "ok"
	OutcomeValidation  = "validation"
	OutcomeNotFound    = "not_found"
	OutcomePersistence = "persistence"
)

// Gateway holds the collectors for gateway operations. A nil *Gateway is a
// valid no-op recorder.
type Gateway struct {
	ops      *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewGateway registers the gateway collectors on reg.
func NewGateway(reg prometheus.Registerer) (*Gateway, error) {
	g := &Gateway{
		ops: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "planforge",
			Subsystem: "gateway",
			Name:      "operations_total",
			Help:      "Gateway operations by entity kind, operation and outcome.",
		}, []string{"kind", "op", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "planforge",
			Subsystem: "gateway",
			Name:      "operation_duration_seconds",
			Help:      "Gateway operation latency.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 14),
		}, []string{"kind", "op"}),
	}
	for _, c := range []prometheus.Collector{g.ops, g.duration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return g, nil
}

// Observe records one finished operation.
func (g *Gateway) Observe(kind, op, outcome string, elapsed time.Duration) {
	if g == nil {
		return
	}
	g.ops.WithLabelValues(kind, op, outcome).Inc()
	g.duration.WithLabelValues(kind, op).Observe(elapsed.Seconds())
}
