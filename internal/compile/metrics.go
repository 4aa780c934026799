package compile

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	metricCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "lexhir",
		Subsystem: "compile",
		Name:      "cache_hits_total",
		Help:      "Total number of compilations answered from the cache",
	})
	metricCacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "lexhir",
		Subsystem: "compile",
		Name:      "cache_misses_total",
		Help:      "Total number of compilations that ran the pipeline",
	})

	metricCompiles = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "lexhir",
		Subsystem: "compile",
		Name:      "patterns_total",
		Help:      "Total number of patterns compiled, per outcome (ok/syntax/unsupported/unavailable/invalid/too_large)",
	}, []string{"outcome"})
)
