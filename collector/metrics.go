package collector

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	snapshotsStored = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ivao_stats_snapshots_stored_total",
		Help: "Snapshots successfully written to all partitions.",
	})

	fetchErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ivao_stats_fetch_errors_total",
		Help: "Failed whazzup feed fetches.",
	})
)
