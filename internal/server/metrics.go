package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "geodna",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total HTTP requests processed",
	}, []string{"method", "route", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "geodna",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency in seconds",
		Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
	}, []string{"method", "route"})

	codecOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "geodna",
		Subsystem: "codec",
		Name:      "operations_total",
		Help:      "Codec operations by result",
	}, []string{"operation", "result"})

	tilesServed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "geodna",
		Subsystem: "tiles",
		Name:      "served_total",
		Help:      "Overlay tiles served by source",
	}, []string{"source"})
)

func observeCodec(op string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	codecOperations.WithLabelValues(op, result).Inc()
}
