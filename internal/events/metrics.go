package events

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	publishedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cortex_bridge",
			Subsystem: "bus",
			Name:      "published_total",
			Help:      "Values published on the bus.",
		},
		[]string{"bus"},
	)

	droppedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cortex_bridge",
			Subsystem: "bus",
			Name:      "dropped_total",
			Help:      "Undelivered values discarded because a subscriber backlog was full.",
		},
		[]string{"bus", "consumer"},
	)

	subscribersGauge = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "cortex_bridge",
			Subsystem: "bus",
			Name:      "subscribers",
			Help:      "Currently attached subscriptions.",
		},
		[]string{"bus"},
	)
)
