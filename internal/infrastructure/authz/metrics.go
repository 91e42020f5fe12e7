package authz

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	decisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "municipal_ops",
		Subsystem: "authz",
		Name:      "decisions_total",
		Help:      "Total de decisiones de autorización por vía y resultado.",
	}, []string{"path", "result"})

	decisionLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "municipal_ops",
		Subsystem: "authz",
		Name:      "decision_latency_seconds",
		Help:      "Latencia de las decisiones de autorización.",
		Buckets: []float64{
			0.0005, 0.001, 0.002, 0.005,
			0.01, 0.02, 0.05, 0.1,
			0.2, 0.5, 1,
		},
	}, []string{"path", "result"})

	buildLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "municipal_ops",
		Subsystem: "authz",
		Name:      "enforcer_build_seconds",
		Help:      "Tiempo de construcción del enforcer de un tenant.",
		Buckets:   prometheus.DefBuckets,
	})

	cacheInvalidations = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "municipal_ops",
		Subsystem: "authz",
		Name:      "cache_invalidations_total",
		Help:      "Invalidaciones del enforcer cacheado.",
	})
)

func recordDecision(path string, allowed bool, latency time.Duration) {
	result := "denied"
	if allowed {
		result = "allowed"
	}
	labels := prometheus.Labels{"path": path, "result": result}
	decisions.With(labels).Inc()
	decisionLatency.With(labels).Observe(latency.Seconds())
}
