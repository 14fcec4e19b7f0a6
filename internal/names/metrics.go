package names

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type metrics struct {
	lookups *prometheus.CounterVec
}

var nameMetrics = &metrics{
	lookups: promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mesh_name_cache_lookups_total",
			Help: "Name resolution cache lookups",
		},
		[]string{"cache", "result"}, // cache: forward, reverse; result: hit, miss
	),
}
