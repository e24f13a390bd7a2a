package api

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Ingestion metrics. transport is "http" or "ws"; result is "accepted" or "rejected".
var (
	ingestTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cortex_bridge_ingest_messages_total",
		Help: "Extension messages received, by transport and result",
	}, []string{"transport", "result"})

	wsConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "cortex_bridge_ws_connections",
		Help: "Open extension WebSocket connections",
	})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "cortex_bridge_http_request_duration_seconds",
		Help:    "HTTP request latency by method and status",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "status"})
)
