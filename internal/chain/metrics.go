package chain

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type metrics struct {
	chunks *prometheus.CounterVec
}

// scannerMetrics counts scanned and skipped chunks per event type.
var scannerMetrics = &metrics{
	chunks: promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mesh_scanner_chunks_total",
			Help: "Block-range chunks processed by the event scanner",
		},
		[]string{"event", "result"}, // result: ok, failed
	),
}
