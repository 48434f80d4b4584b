package db

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var partitionWriteFailures = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "ivao_stats_partition_write_failures_total",
	Help: "Snapshot writes that failed, by partition.",
}, []string{"partition"})
