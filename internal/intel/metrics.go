package intel

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type metrics struct {
	fallbacks *prometheus.CounterVec
}

var queryMetrics = &metrics{
	fallbacks: promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mesh_intel_fallbacks_total",
			Help: "Queries rerouted from the indexed source to the event fallback",
		},
		[]string{"query"},
	),
}
