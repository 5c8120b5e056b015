package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	StandingsRebuilds = promauto.NewCounter(prometheus.CounterOpts{
		Name: "judgeboard_standings_rebuilds_total",
		Help: "Number of full ledger scans performed to rebuild contest standings.",
	})
	StandingsCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "judgeboard_standings_cache_hits_total",
		Help: "Number of standings reads served from a cached snapshot.",
	})
	StandingsRebuildFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "judgeboard_standings_rebuild_failures_total",
		Help: "Number of standings rebuilds that failed against the solution ledger.",
	})
	IDAllocations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "judgeboard_id_allocations_total",
		Help: "Number of IDs handed out, per entity namespace.",
	}, []string{"namespace"})
)
