package reputation

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type metrics struct {
	refreshes prometheus.Counter
}

var compMetrics = &metrics{
	refreshes: promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "mesh_reputation_pagerank_refreshes_total",
			Help: "Trust PageRank snapshot refreshes",
		},
	),
}
