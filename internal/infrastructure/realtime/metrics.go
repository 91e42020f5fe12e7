package realtime

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	subscribers = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "municipal_ops",
		Subsystem: "realtime",
		Name:      "subscribers",
		Help:      "Suscriptores SSE activos en esta instancia.",
	})

	delivered = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "municipal_ops",
		Subsystem: "realtime",
		Name:      "events_total",
		Help:      "Eventos repartidos por el hub local.",
	})

	dropped = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "municipal_ops",
		Subsystem: "realtime",
		Name:      "events_dropped_total",
		Help:      "Eventos descartados por suscriptores lentos o cola llena.",
	})

	resubscribes = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "municipal_ops",
		Subsystem: "realtime",
		Name:      "broker_resubscribes_total",
		Help:      "Suscripciones al broker perdidas o rechazadas.",
	})
)
