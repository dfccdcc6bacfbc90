package antifraud

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	assessmentsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "antifraud_assessments_total",
		Help: "Risk assessments by final recommendation",
	}, []string{"recommendation"})

	probeFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "antifraud_probe_failures_total",
		Help: "Probe evaluations degraded to zero after an error or timeout",
	}, []string{"probe"})

	blacklistHitsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "antifraud_blacklist_hits_total",
		Help: "Registration checks vetoed by an active blacklist entry",
	}, []string{"type"})

	blacklistCleanupTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "antifraud_blacklist_cleanup_deleted_total",
		Help: "Expired blacklist entries removed by the janitor",
	})
)
